package domain

import "time"

// SyncStatus is the outcome of a single synchronization attempt.
type SyncStatus string

const (
	// SyncStatusOK means fetch, merge, persist and push all succeeded.
	SyncStatusOK SyncStatus = "ok"

	// SyncStatusPartial means the merge was applied but the push failed.
	SyncStatusPartial SyncStatus = "partial"

	// SyncStatusFailed means the attempt aborted before the merge was persisted.
	SyncStatusFailed SyncStatus = "failed"

	// SyncStatusAlreadySyncing means another attempt was in flight and this one did nothing.
	SyncStatusAlreadySyncing SyncStatus = "already_syncing"
)

// SyncSummary reports what one synchronization attempt did.
type SyncSummary struct {
	Status     SyncStatus    `json:"status"`
	StartedAt  time.Time     `json:"startedAt"`
	FinishedAt time.Time     `json:"finishedAt"`
	Duration   time.Duration `json:"duration"`

	Fetched   int            `json:"fetched"`
	Added     int            `json:"added"`
	Updated   int            `json:"updated"`
	Malformed int            `json:"malformed"`
	Conflicts []ConflictNote `json:"conflicts,omitempty"`

	Pushed int  `json:"pushed"`
	PushOK bool `json:"pushOk"`

	// Step names the pipeline step that failed, if any.
	Step      string `json:"step,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorKind string `json:"errorKind,omitempty"`
}

// Failed reports whether the attempt aborted before changing local state.
func (s SyncSummary) Failed() bool {
	return s.Status == SyncStatusFailed
}
