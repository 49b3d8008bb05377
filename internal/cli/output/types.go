package output

// BuildEvent is one JSON line emitted by build --json.
type BuildEvent struct {
	Event     string   `json:"event"` // build_start, document_complete, build_complete
	Timestamp string   `json:"timestamp"`
	RunID     string   `json:"run_id,omitempty"`
	Documents []string `json:"documents,omitempty"`

	Document   string   `json:"document,omitempty"`
	Status     string   `json:"status,omitempty"`
	Reason     string   `json:"reason,omitempty"`
	ErrorKind  string   `json:"error_kind,omitempty"`
	Error      string   `json:"error,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`
	Artifacts  []string `json:"artifacts,omitempty"`
	DurationMS int64    `json:"duration_ms,omitempty"`

	Compiled int      `json:"compiled,omitempty"`
	Failed   int      `json:"failed,omitempty"`
	Skipped  int      `json:"skipped,omitempty"`
	Pruned   []string `json:"pruned,omitempty"`
	TotalMS  int64    `json:"total_ms,omitempty"`
}

// DocumentStatus is one row of status --output json.
type DocumentStatus struct {
	Document   string `json:"document"`
	Stale      bool   `json:"stale"`
	Reason     string `json:"reason"`
	Detail     string `json:"detail,omitempty"`
	CompiledAt string `json:"compiled_at,omitempty"`
}

// StatusOutput is the JSON form of the status command.
type StatusOutput struct {
	LastBuild string           `json:"last_build,omitempty"`
	Documents []DocumentStatus `json:"documents"`
}

// DepsNode is one graph node in deps --output json.
type DepsNode struct {
	ID           string   `json:"id"`
	Dependencies []string `json:"dependencies"`
	Dependents   []string `json:"dependents"`
}

// RunInfo is one build run in history --output json.
type RunInfo struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	Documents   int    `json:"documents"`
	StartedAt   string `json:"started_at"`
	CompletedAt string `json:"completed_at,omitempty"`
	Error       string `json:"error,omitempty"`
}
