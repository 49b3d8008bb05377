package core

import "time"

// HistoryStore records build runs.
type HistoryStore interface {
	Close() error

	CreateRun(documents int) (*BuildRun, error)
	CompleteRun(id string, status RunStatus, errMsg string) error
	GetRun(id string) (*BuildRun, error)
	ListRuns(limit int) ([]*BuildRun, error)

	RecordDocumentRun(run *DocumentRun) error
	GetDocumentRuns(runID string) ([]*DocumentRun, error)
	GetLatestDocumentRun(document string) (*DocumentRun, error)
}

// RunStatus represents the status of a build run.
type RunStatus string

// Run status constants.
const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusPartial   RunStatus = "partial"
	RunStatusFailed    RunStatus = "failed"
)

// BuildRun is one batch compile.
type BuildRun struct {
	ID          string
	Status      RunStatus
	Documents   int
	StartedAt   time.Time
	CompletedAt *time.Time
	Error       string
}

// DocumentStatus is the outcome of compiling one document.
type DocumentStatus string

// Document status constants.
const (
	DocumentStatusSuccess DocumentStatus = "success"
	DocumentStatusFailed  DocumentStatus = "failed"
	DocumentStatusSkipped DocumentStatus = "skipped"
)

// DocumentRun is one document's outcome within a run.
type DocumentRun struct {
	ID         string
	RunID      string
	Document   string
	Status     DocumentStatus
	Reason     StaleReason
	ErrorKind  ErrorKind
	Error      string
	Warnings   int
	Artifacts  int
	StartedAt  time.Time
	DurationMS int64
}
