package server

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/me/planline/internal/config"
	"github.com/me/planline/internal/project"
	"github.com/me/planline/internal/store"
	"github.com/me/planline/pkg/model"
)

func testServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}))

	st, err := store.NewSQLiteStore(":memory:", logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	if err := st.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	ed := project.NewEditor(st, logger)
	if err := ed.Hydrate(context.Background()); err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	return New(config.DefaultServerConfig(), ed, logger, opts...)
}

// envelope is used to decode the standard response envelope.
type envelope struct {
	Status     string            `json:"status"`
	RequestID  string            `json:"request_id"`
	Timestamp  string            `json:"timestamp"`
	Data       json.RawMessage   `json:"data"`
	Pagination *model.Pagination `json:"pagination"`
	Error      *model.APIError   `json:"error"`
}

func do(t *testing.T, srv *Server, method, path, body string, wantStatus int) envelope {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != wantStatus {
		t.Fatalf("%s %s: status=%d, want %d, body=%s", method, path, w.Code, wantStatus, w.Body.String())
	}
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s %s: invalid JSON: %v", method, path, err)
	}
	return env
}

func createTask(t *testing.T, srv *Server, body string) model.Task {
	t.Helper()
	env := do(t, srv, "POST", "/api/v1/tasks/", body, http.StatusCreated)
	var task model.Task
	if err := json.Unmarshal(env.Data, &task); err != nil {
		t.Fatalf("decode task: %v", err)
	}
	return task
}

func link(t *testing.T, srv *Server, from, to string) envelope {
	t.Helper()
	body := `{"fromTaskId":"` + from + `","toTaskId":"` + to + `"}`
	req := httptest.NewRequest("POST", "/api/v1/dependencies/", strings.NewReader(body))
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	var env envelope
	json.Unmarshal(w.Body.Bytes(), &env)
	return env
}

func getSchedule(t *testing.T, srv *Server) model.Schedule {
	t.Helper()
	env := do(t, srv, "GET", "/api/v1/schedule", "", http.StatusOK)
	var sched model.Schedule
	if err := json.Unmarshal(env.Data, &sched); err != nil {
		t.Fatalf("decode schedule: %v", err)
	}
	return sched
}

func TestDiscovery(t *testing.T) {
	srv := testServer(t)
	env := do(t, srv, "GET", "/api/v1/", "", http.StatusOK)
	if env.Status != "ok" {
		t.Errorf("status = %q, want ok", env.Status)
	}
	if env.RequestID == "" {
		t.Error("request_id is empty")
	}

	var data discoveryResponse
	json.Unmarshal(env.Data, &data)
	if data.Name != "planline API" {
		t.Errorf("name = %q, want planline API", data.Name)
	}
	if len(data.Endpoints) < 10 {
		t.Errorf("endpoints count = %d, want >= 10", len(data.Endpoints))
	}
}

func TestHealth(t *testing.T) {
	srv := testServer(t)
	env := do(t, srv, "GET", "/api/v1/health", "", http.StatusOK)

	var data healthResponse
	json.Unmarshal(env.Data, &data)
	if data.Status != "healthy" {
		t.Errorf("health status = %q, want healthy", data.Status)
	}
	if data.Version != Version {
		t.Errorf("version = %q, want %s", data.Version, Version)
	}
	if data.LastSavedAt != nil {
		t.Errorf("last_saved_at = %v before any edit, want nil", data.LastSavedAt)
	}

	createTask(t, srv, `{}`)
	env = do(t, srv, "GET", "/api/v1/health", "", http.StatusOK)
	json.Unmarshal(env.Data, &data)
	if data.Tasks != 1 || data.LastSavedAt == nil {
		t.Errorf("tasks=%d last_saved_at=%v, want 1 and a time", data.Tasks, data.LastSavedAt)
	}
}

func TestRequestIDPropagation(t *testing.T) {
	srv := testServer(t)
	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	req.Header.Set("X-Request-ID", "cli-1234")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-ID"); got != "cli-1234" {
		t.Errorf("X-Request-ID = %q, want cli-1234", got)
	}
}

func TestUnknownRoute(t *testing.T) {
	srv := testServer(t)
	env := do(t, srv, "GET", "/api/v1/nope", "", http.StatusNotFound)
	if env.Error == nil || env.Error.Code != model.ErrNotFound {
		t.Errorf("error = %v, want NOT_FOUND", env.Error)
	}
}

func TestProject(t *testing.T) {
	srv := testServer(t)

	env := do(t, srv, "GET", "/api/v1/project/", "", http.StatusOK)
	var p model.Project
	json.Unmarshal(env.Data, &p)
	if p.Name != "Project 01" {
		t.Errorf("name = %q, want Project 01", p.Name)
	}

	env = do(t, srv, "PUT", "/api/v1/project/", `{"name":"Launch"}`, http.StatusOK)
	json.Unmarshal(env.Data, &p)
	if p.Name != "Launch" {
		t.Errorf("name = %q, want Launch", p.Name)
	}

	env = do(t, srv, "PUT", "/api/v1/project/", `{"epoch":"not-a-date"}`, http.StatusBadRequest)
	if env.Error.Code != model.ErrValidation {
		t.Errorf("code = %s, want VALIDATION_ERROR", env.Error.Code)
	}
}

func TestTaskCRUD(t *testing.T) {
	srv := testServer(t)

	task := createTask(t, srv, `{"name":"Design","startDayIndex":4,"durationDays":2}`)
	if !strings.HasPrefix(task.ID, "task_") {
		t.Errorf("id = %q, want task_ prefix", task.ID)
	}
	if task.StartDayIndex != 4 || task.DurationDays != 2 {
		t.Errorf("task = %+v", task)
	}

	env := do(t, srv, "GET", "/api/v1/tasks/"+task.ID, "", http.StatusOK)
	var got model.Task
	json.Unmarshal(env.Data, &got)
	if got.Name != "Design" {
		t.Errorf("name = %q, want Design", got.Name)
	}

	env = do(t, srv, "PATCH", "/api/v1/tasks/"+task.ID, `{"durationDays":6}`, http.StatusOK)
	json.Unmarshal(env.Data, &got)
	if got.DurationDays != 6 || got.Name != "Design" {
		t.Errorf("patched task = %+v", got)
	}

	env = do(t, srv, "PATCH", "/api/v1/tasks/"+task.ID, `{"durationDays":0}`, http.StatusBadRequest)
	if env.Error.Code != model.ErrValidation {
		t.Errorf("code = %s, want VALIDATION_ERROR", env.Error.Code)
	}

	do(t, srv, "DELETE", "/api/v1/tasks/"+task.ID, "", http.StatusOK)
	env = do(t, srv, "GET", "/api/v1/tasks/"+task.ID, "", http.StatusNotFound)
	if env.Error.Code != model.ErrNotFound {
		t.Errorf("code = %s, want NOT_FOUND", env.Error.Code)
	}
	do(t, srv, "DELETE", "/api/v1/tasks/"+task.ID, "", http.StatusNotFound)
}

func TestCreateTask_InvalidJSON(t *testing.T) {
	srv := testServer(t)
	env := do(t, srv, "POST", "/api/v1/tasks/", "not json", http.StatusBadRequest)
	if env.Status != "error" {
		t.Errorf("status = %q, want error", env.Status)
	}
	if env.Error == nil || env.Error.Code != model.ErrValidation {
		t.Errorf("error code = %v, want VALIDATION_ERROR", env.Error)
	}
}

func TestListTasks_Pagination(t *testing.T) {
	srv := testServer(t)
	for i := 0; i < 5; i++ {
		createTask(t, srv, `{}`)
	}

	env := do(t, srv, "GET", "/api/v1/tasks/?limit=2&offset=1", "", http.StatusOK)
	if env.Pagination == nil {
		t.Fatal("expected pagination")
	}
	if env.Pagination.Total != 5 || !env.Pagination.HasMore {
		t.Errorf("pagination = %+v", env.Pagination)
	}
	var tasks []model.Task
	json.Unmarshal(env.Data, &tasks)
	if len(tasks) != 2 || tasks[0].SortOrder != 1 {
		t.Errorf("tasks = %+v", tasks)
	}
}

func TestScheduleCascade(t *testing.T) {
	srv := testServer(t)
	a := createTask(t, srv, `{"startDayIndex":0,"durationDays":3}`)
	b := createTask(t, srv, `{"startDayIndex":0,"durationDays":2}`)
	c := createTask(t, srv, `{"startDayIndex":0,"durationDays":1}`)

	for _, pair := range [][2]string{{a.ID, b.ID}, {b.ID, c.ID}} {
		if env := link(t, srv, pair[0], pair[1]); env.Status != "ok" {
			t.Fatalf("link %v: %+v", pair, env.Error)
		}
	}

	sched := getSchedule(t, srv)
	if !sched.OK {
		t.Fatalf("schedule not ok: %+v", sched)
	}
	if sched.Starts[b.ID] != 3 || sched.Starts[c.ID] != 5 {
		t.Errorf("starts = %v, want b=3 c=5", sched.Starts)
	}
	if sched.Ends[c.ID] != 6 {
		t.Errorf("end of c = %d, want 6", sched.Ends[c.ID])
	}

	do(t, srv, "PATCH", "/api/v1/tasks/"+a.ID, `{"startDayIndex":10}`, http.StatusOK)
	sched = getSchedule(t, srv)
	if sched.Starts[b.ID] != 13 || sched.Starts[c.ID] != 15 {
		t.Errorf("starts after move = %v, want b=13 c=15", sched.Starts)
	}
}

func TestDependencyRejections(t *testing.T) {
	srv := testServer(t)
	a := createTask(t, srv, `{}`)
	b := createTask(t, srv, `{}`)

	if env := link(t, srv, a.ID, b.ID); env.Status != "ok" {
		t.Fatalf("link: %+v", env.Error)
	}

	tests := []struct {
		name     string
		from, to string
		code     model.ErrorCode
		message  string
	}{
		{"self", a.ID, a.ID, model.ErrValidation, "cannot create self-dependency"},
		{"duplicate", a.ID, b.ID, model.ErrConflict, "dependency already exists"},
		{"cycle", b.ID, a.ID, model.ErrConflict, "dependency would create a cycle"},
		{"unknown", a.ID, "task_missing", model.ErrNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := link(t, srv, tt.from, tt.to)
			if env.Error == nil || env.Error.Code != tt.code {
				t.Fatalf("error = %+v, want %s", env.Error, tt.code)
			}
			if tt.message != "" && env.Error.Message != tt.message {
				t.Errorf("message = %q, want %q", env.Error.Message, tt.message)
			}
		})
	}

	// The rejected cycle reports the tasks involved.
	env := link(t, srv, b.ID, a.ID)
	ids := env.Error.TaskIDs
	sort.Strings(ids)
	want := []string{a.ID, b.ID}
	sort.Strings(want)
	if strings.Join(ids, ",") != strings.Join(want, ",") {
		t.Errorf("task_ids = %v, want %v", ids, want)
	}

	env = do(t, srv, "GET", "/api/v1/dependencies/", "", http.StatusOK)
	if env.Pagination.Total != 1 {
		t.Errorf("dependencies = %d, want 1", env.Pagination.Total)
	}
}

func TestDeleteDependency(t *testing.T) {
	srv := testServer(t)
	a := createTask(t, srv, `{"startDayIndex":0,"durationDays":3}`)
	b := createTask(t, srv, `{"startDayIndex":1,"durationDays":1}`)

	env := link(t, srv, a.ID, b.ID)
	var dep model.Dependency
	json.Unmarshal(env.Data, &dep)

	do(t, srv, "DELETE", "/api/v1/dependencies/"+dep.ID, "", http.StatusOK)
	if got := getSchedule(t, srv).Starts[b.ID]; got != 1 {
		t.Errorf("start of b = %d, want 1", got)
	}
	do(t, srv, "DELETE", "/api/v1/dependencies/"+dep.ID, "", http.StatusNotFound)
}

func TestMoveTasksAndGroups(t *testing.T) {
	srv := testServer(t)
	a := createTask(t, srv, `{"name":"a"}`)
	b := createTask(t, srv, `{"name":"b"}`)

	env := do(t, srv, "POST", "/api/v1/groups/", `{"name":"Phase 1"}`, http.StatusCreated)
	var g model.Group
	json.Unmarshal(env.Data, &g)

	body := `{"taskIds":["` + b.ID + `"],"targetIndex":0,"groupId":"` + g.ID + `"}`
	env = do(t, srv, "POST", "/api/v1/tasks/move", body, http.StatusOK)
	var tasks []model.Task
	json.Unmarshal(env.Data, &tasks)
	if len(tasks) != 2 || tasks[0].ID != b.ID || tasks[1].ID != a.ID {
		t.Fatalf("order = %+v", tasks)
	}
	if !tasks[0].InGroup(g.ID) {
		t.Errorf("moved task group = %v, want %s", tasks[0].GroupID, g.ID)
	}

	env = do(t, srv, "GET", "/api/v1/tasks/?group_id="+g.ID, "", http.StatusOK)
	if env.Pagination.Total != 1 {
		t.Errorf("tasks in group = %d, want 1", env.Pagination.Total)
	}

	do(t, srv, "PATCH", "/api/v1/groups/"+g.ID, `{"collapsed":true}`, http.StatusOK)
	do(t, srv, "DELETE", "/api/v1/groups/"+g.ID, "", http.StatusOK)

	env = do(t, srv, "GET", "/api/v1/tasks/"+b.ID, "", http.StatusOK)
	var moved model.Task
	json.Unmarshal(env.Data, &moved)
	if moved.GroupID != nil {
		t.Errorf("group after removal = %v, want nil", *moved.GroupID)
	}

	do(t, srv, "POST", "/api/v1/tasks/move", `{"taskIds":[]}`, http.StatusBadRequest)
	do(t, srv, "POST", "/api/v1/tasks/move", `{"taskIds":["task_missing"]}`, http.StatusNotFound)
}

func TestExportImport(t *testing.T) {
	srv := testServer(t)
	a := createTask(t, srv, `{"name":"A","startDayIndex":0,"durationDays":3}`)
	b := createTask(t, srv, `{"name":"B","startDayIndex":0,"durationDays":2}`)
	link(t, srv, a.ID, b.ID)

	for _, format := range []string{"json", "yaml"} {
		t.Run(format, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/v1/export?format="+format, nil)
			w := httptest.NewRecorder()
			srv.ServeHTTP(w, req)
			if w.Code != http.StatusOK {
				t.Fatalf("export: status=%d body=%s", w.Code, w.Body.String())
			}
			if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "planline-project-01."+format) {
				t.Errorf("Content-Disposition = %q", cd)
			}

			target := testServer(t)
			req = httptest.NewRequest("POST", "/api/v1/import?format="+format, bytes.NewReader(w.Body.Bytes()))
			w = httptest.NewRecorder()
			target.ServeHTTP(w, req)
			if w.Code != http.StatusOK {
				t.Fatalf("import: status=%d body=%s", w.Code, w.Body.String())
			}

			sched := getSchedule(t, target)
			if sched.Starts[b.ID] != 3 {
				t.Errorf("imported start of B = %d, want 3", sched.Starts[b.ID])
			}
		})
	}
}

func TestImport_CycleAndInvalid(t *testing.T) {
	srv := testServer(t)

	cyclic := `{"version":1,"project":{"id":"p","name":"Cyclic"},
		"tasks":[{"id":"A","startDayIndex":0,"durationDays":1},{"id":"B","startDayIndex":0,"durationDays":1}],
		"dependencies":[{"id":"d1","fromTaskId":"A","toTaskId":"B"},{"id":"d2","fromTaskId":"B","toTaskId":"A"}],
		"groups":[]}`
	env := do(t, srv, "POST", "/api/v1/import", cyclic, http.StatusOK)
	var resp importResponse
	json.Unmarshal(env.Data, &resp)
	if resp.ScheduleOK {
		t.Error("schedule_ok = true, want false for a cyclic import")
	}

	sched := getSchedule(t, srv)
	if sched.OK || sched.Error != "cycle" || len(sched.CycleTaskIDs) != 2 {
		t.Errorf("schedule = %+v, want cycle over A and B", sched)
	}

	invalid := `{"version":1,"project":{"id":"p","name":"n"},"tasks":[{"id":"A","startDayIndex":0,"durationDays":0}]}`
	env = do(t, srv, "POST", "/api/v1/import", invalid, http.StatusBadRequest)
	if !strings.Contains(env.Error.Message, "durationDays must be positive") {
		t.Errorf("message = %q", env.Error.Message)
	}

	do(t, srv, "POST", "/api/v1/import?format=xml", cyclic, http.StatusBadRequest)
}

func TestImport_TooLarge(t *testing.T) {
	srv := testServer(t, WithMaxImportBytes(64))

	doc := `{"version":1,"project":{"id":"p","name":"` + strings.Repeat("x", 200) + `"},"tasks":[]}`
	for _, format := range []string{"json", "yaml"} {
		env := do(t, srv, "POST", "/api/v1/import?format="+format, doc, http.StatusRequestEntityTooLarge)
		if env.Error == nil || env.Error.Code != model.ErrTooLarge {
			t.Errorf("%s: error = %+v, want PAYLOAD_TOO_LARGE", format, env.Error)
		}
	}

	// Still accepts documents under the limit.
	do(t, srv, "POST", "/api/v1/import", `{"version":1,"project":{"id":"p","name":"n"}}`, http.StatusOK)
}

func TestSampleAndReset(t *testing.T) {
	srv := testServer(t)

	sizes := []struct {
		size string
		want int
	}{{"", 8}, {"small", 8}, {"medium", 30}, {"large", 100}}
	for _, tt := range sizes {
		size, want := tt.size, tt.want
		env := do(t, srv, "POST", "/api/v1/sample?size="+size, "", http.StatusOK)
		var resp importResponse
		json.Unmarshal(env.Data, &resp)
		if resp.Tasks != want || !resp.ScheduleOK || resp.Dependencies == 0 {
			t.Errorf("sample %q: %+v, want %d tasks, a valid schedule and some dependencies", size, resp, want)
		}
		if !strings.HasPrefix(resp.Project.Name, "Sample Project") {
			t.Errorf("sample %q: project = %q", size, resp.Project.Name)
		}
	}
	if sched := getSchedule(t, srv); !sched.OK || len(sched.Starts) != 100 {
		t.Errorf("schedule after large sample: ok=%v starts=%d", sched.OK, len(sched.Starts))
	}

	env := do(t, srv, "POST", "/api/v1/sample?size=huge", "", http.StatusBadRequest)
	if !strings.Contains(env.Error.Message, "unknown sample size") {
		t.Errorf("message = %q", env.Error.Message)
	}

	env = do(t, srv, "POST", "/api/v1/reset", "", http.StatusOK)
	var resp importResponse
	json.Unmarshal(env.Data, &resp)
	if resp.Tasks != 0 || resp.Dependencies != 0 || resp.Groups != 0 || resp.Project.Name != "Project 01" {
		t.Errorf("after reset: %+v", resp)
	}
	env = do(t, srv, "GET", "/api/v1/tasks", "", http.StatusOK)
	if env.Pagination.Total != 0 {
		t.Errorf("tasks after reset = %d, want 0", env.Pagination.Total)
	}
}

func TestClearDependencies(t *testing.T) {
	srv := testServer(t)
	a := createTask(t, srv, `{"name":"A","startDayIndex":0,"durationDays":3}`)
	b := createTask(t, srv, `{"name":"B","startDayIndex":0,"durationDays":2}`)
	c := createTask(t, srv, `{"name":"C","startDayIndex":0,"durationDays":1}`)
	link(t, srv, a.ID, b.ID)
	link(t, srv, b.ID, c.ID)

	env := do(t, srv, "DELETE", "/api/v1/dependencies", "", http.StatusOK)
	var resp map[string]int
	json.Unmarshal(env.Data, &resp)
	if resp["deleted"] != 2 {
		t.Errorf("deleted = %d, want 2", resp["deleted"])
	}

	env = do(t, srv, "GET", "/api/v1/dependencies", "", http.StatusOK)
	if env.Pagination.Total != 0 {
		t.Errorf("dependencies left = %d", env.Pagination.Total)
	}
	if sched := getSchedule(t, srv); sched.Starts[c.ID] != 0 {
		t.Errorf("start of C = %d, want 0 once unlinked", sched.Starts[c.ID])
	}
}

func TestEditorLogsCarryRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	st, err := store.NewSQLiteStore(":memory:", logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	if err := st.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	srv := New(config.DefaultServerConfig(), project.NewEditor(st, logger), logger)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tasks", strings.NewReader(`{"name":"A","durationDays":2}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", "req_trace")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}

	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.Contains(line, "task added") {
			if !strings.Contains(line, "request_id=req_trace") || !strings.Contains(line, "component=editor") {
				t.Errorf("editor log missing request context: %s", line)
			}
			return
		}
	}
	t.Errorf("no 'task added' log line in: %s", buf.String())
}
