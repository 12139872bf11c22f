// Package sample generates demo projects of a few fixed sizes. Dependencies
// only point forward in task order, so every generated project schedules
// without a cycle.
package sample

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"

	"github.com/me/planline/internal/timeline"
	"github.com/me/planline/pkg/model"
)

// Size selects a preset.
type Size string

const (
	Small  Size = "small"
	Medium Size = "medium"
	Large  Size = "large"
)

// ErrUnknownSize is returned for a size other than small, medium or large.
var ErrUnknownSize = errors.New("unknown sample size")

// ParseSize maps a name to a Size. The empty string is Small.
func ParseSize(name string) (Size, error) {
	switch Size(strings.ToLower(strings.TrimSpace(name))) {
	case "", Small:
		return Small, nil
	case Medium:
		return Medium, nil
	case Large:
		return Large, nil
	default:
		return "", fmt.Errorf("%w: %q (want small, medium or large)", ErrUnknownSize, name)
	}
}

type preset struct {
	label  string
	groups int
	tasks  int
	deps   int
	pool   []string
}

var presets = map[Size]preset{
	Small: {"Small", 2, 8, 5,
		[]string{"Design", "Backend", "Frontend", "QA", "DevOps"}},
	Medium: {"Medium", 5, 30, 20,
		[]string{"Planning", "Design", "Backend", "Frontend", "QA", "DevOps", "Data"}},
	Large: {"Large", 10, 100, 60,
		[]string{"Planning", "Design", "Backend", "Frontend", "QA", "DevOps", "Data", "Mobile", "Design", "Backend"}},
}

var taskNames = map[string][]string{
	"Design": {
		"User research interviews", "Design mockups", "Design system audit",
		"Wireframe review", "Visual polish pass", "Icon & asset export",
		"Accessibility review", "Prototype walkthrough", "Color palette refinement",
		"Typography selection",
	},
	"Backend": {
		"Database schema design", "API endpoint scaffolding", "Authentication service",
		"Rate limiter middleware", "Data migration script", "Cache layer setup",
		"Logging infrastructure", "Background job queue", "REST to GraphQL adapter",
		"Webhook handler",
	},
	"Frontend": {
		"Component library setup", "Routing & navigation", "Form validation logic",
		"State management wiring", "Responsive layout pass", "Dark mode support",
		"Error boundary setup", "Loading skeleton screens", "Animations & transitions",
		"Search autocomplete widget",
	},
	"QA": {
		"QA test plan", "Regression test suite", "Smoke tests",
		"Performance benchmarks", "Cross-browser testing", "Mobile device testing",
		"Accessibility audit", "Edge-case coverage", "Load testing",
		"Security scan",
	},
	"DevOps": {
		"CI/CD pipeline setup", "Docker containerization", "Staging env provisioning",
		"SSL certificate config", "Monitoring dashboards", "Alerting rules",
		"CDN configuration", "Backup & restore drill", "Infrastructure as code",
		"Log aggregation setup",
	},
	"Planning": {
		"Sprint planning", "Backlog grooming", "Stakeholder demo",
		"Retrospective", "Roadmap review", "Risk assessment",
		"Capacity planning", "Release checklist", "Kick-off meeting",
		"Post-mortem analysis",
	},
	"Data": {
		"ETL pipeline design", "Data warehouse modeling", "Analytics dashboard",
		"Report generation", "Data quality checks", "A/B test setup",
		"Metrics instrumentation", "Data retention policy", "ML model training run",
		"Feature flag rollout",
	},
	"Mobile": {
		"Push notification setup", "Offline sync logic", "App store submission",
		"Deep linking config", "Crash reporting setup", "Gesture navigation",
		"Biometric auth flow", "In-app purchase flow", "App performance audit",
		"Tablet layout adaptation",
	},
}

// Generate builds a project of the given size with tasks starting between
// five days before and twenty days after today. A nil rng uses a randomly
// seeded source.
func Generate(size Size, today int, rng *rand.Rand) (*model.Snapshot, error) {
	p, ok := presets[size]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSize, size)
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	between := func(lo, hi int) int { return lo + rng.IntN(hi-lo+1) }

	groups := make([]model.Group, p.groups)
	for i := range groups {
		groups[i] = model.Group{
			ID:        "grp_" + uuid.New().String(),
			Name:      p.pool[i%len(p.pool)],
			SortOrder: i,
		}
	}

	tasks := make([]model.Task, p.tasks)
	for i := range tasks {
		g := groups[i%len(groups)]
		names, ok := taskNames[g.Name]
		if !ok {
			names = taskNames["Frontend"]
		}
		tasks[i] = model.Task{
			ID:            "task_" + uuid.New().String(),
			Name:          names[(i/len(groups))%len(names)],
			StartDayIndex: today + between(-5, 20),
			DurationDays:  between(1, 15),
			GroupID:       &g.ID,
			Color:         timeline.ColorFor(i),
			SortOrder:     i,
		}
	}

	deps := make([]model.Dependency, 0, p.deps)
	used := make(map[[2]int]bool, p.deps)
	for attempt := 0; len(deps) < p.deps && attempt < p.deps*5; attempt++ {
		from := between(0, len(tasks)-2)
		to := between(from+1, len(tasks)-1)
		if used[[2]int{from, to}] {
			continue
		}
		used[[2]int{from, to}] = true
		deps = append(deps, model.Dependency{
			ID:         "dep_" + uuid.New().String(),
			FromTaskID: tasks[from].ID,
			ToTaskID:   tasks[to].ID,
		})
	}

	return &model.Snapshot{
		Project: model.Project{
			ID:    timeline.DefaultProjectID,
			Name:  "Sample Project (" + p.label + ")",
			Epoch: timeline.EpochDate,
		},
		Tasks:        tasks,
		Dependencies: deps,
		Groups:       groups,
	}, nil
}
