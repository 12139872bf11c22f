package model

import "time"

// Response is the standard API response envelope.
type Response struct {
	Status     string      `json:"status"`
	RequestID  string      `json:"request_id"`
	Timestamp  time.Time   `json:"timestamp"`
	Data       any         `json:"data"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Error      *APIError   `json:"error"`
}

// Pagination holds pagination metadata for list endpoints.
type Pagination struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

// ListOptions configures list queries with pagination.
type ListOptions struct {
	Limit  int
	Offset int
}

// DefaultListOptions returns sensible defaults.
func DefaultListOptions() ListOptions {
	return ListOptions{Limit: 100, Offset: 0}
}

// Clamp enforces limits (max 1000, min 1).
func (o *ListOptions) Clamp() {
	if o.Limit <= 0 {
		o.Limit = 100
	}
	if o.Limit > 1000 {
		o.Limit = 1000
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
}

// Page applies the options to a slice length and returns the [start, end)
// window together with its pagination metadata.
func (o ListOptions) Page(total int) (start, end int, pg *Pagination) {
	o.Clamp()
	start = min(o.Offset, total)
	end = min(start+o.Limit, total)
	return start, end, &Pagination{
		Total:   total,
		Limit:   o.Limit,
		Offset:  o.Offset,
		HasMore: end < total,
	}
}

// Schedule is the computed layout returned by the API. When OK is false
// Starts is empty and CycleTaskIDs lists the tasks that could not be
// ordered.
type Schedule struct {
	OK           bool           `json:"ok"`
	Starts       map[string]int `json:"starts"`
	Ends         map[string]int `json:"ends"`
	Error        string         `json:"error,omitempty"`
	CycleTaskIDs []string       `json:"cycle_task_ids"`
}
