package model

import "time"

// WorkLogEntry is one row of the work-log spreadsheet.
type WorkLogEntry struct {
	ID          string    `json:"id"`
	Date        time.Time `json:"date"`
	Hours       float64   `json:"hours"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// File is a stored document or blob, addressed by an ID in its backend.
type File struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Trigger is a persisted daily schedule for a named handler.
type Trigger struct {
	ID        string    `json:"id"`
	Handler   string    `json:"handler"`
	Hour      int       `json:"hour"`
	CreatedAt time.Time `json:"created_at"`
	// LastRun is the local date (YYYY-MM-DD) the trigger last fired on.
	LastRun string `json:"last_run"`
}

// RunStatus is the outcome of one invocation.
type RunStatus string

const (
	RunSuccess RunStatus = "success"
	RunFailure RunStatus = "failure"
	RunSkipped RunStatus = "skipped"
)

// Run records one invocation of invoice generation.
type Run struct {
	ID         string    `json:"id"`
	Period     string    `json:"period"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Status     RunStatus `json:"status"`
	URL        string    `json:"url"`
	Error      string    `json:"error"`
}
