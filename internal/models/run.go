package models

import (
	"fmt"
	"strings"
	"time"
)

// RunStatus is the terminal state of a recorded sync run.
type RunStatus string

const (
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// ListOutcome holds the per-list counts recorded for a run.
type ListOutcome struct {
	Name       string
	AddedLeft  int
	AddedRight int
	TotalLeft  int
	TotalRight int
	Changed    bool
}

// SyncRun is the persisted record of one sync invocation.
//
// Records are written after a run finishes and are never consulted by later runs.
type SyncRun struct {
	id         string
	sequence   int
	leftName   string
	rightName  string
	status     RunStatus
	summary    string
	errMessage string
	startedAt  time.Time
	finishedAt time.Time
	createdAt  time.Time
	updatedAt  time.Time
	outcomes   []ListOutcome
}

// NewSyncRun creates a run record for the two account labels.
func NewSyncRun(sequence int, leftName, rightName string, startedAt time.Time) *SyncRun {
	now := time.Now()
	return &SyncRun{
		sequence:  sequence,
		leftName:  leftName,
		rightName: rightName,
		status:    RunSucceeded,
		startedAt: startedAt,
		createdAt: now,
		updatedAt: now,
	}
}

func (r *SyncRun) ID() string              { return r.id }
func (r *SyncRun) Sequence() int           { return r.sequence }
func (r *SyncRun) LeftName() string        { return r.leftName }
func (r *SyncRun) RightName() string       { return r.rightName }
func (r *SyncRun) Status() RunStatus       { return r.status }
func (r *SyncRun) Summary() string         { return r.summary }
func (r *SyncRun) ErrorMessage() string    { return r.errMessage }
func (r *SyncRun) StartedAt() time.Time    { return r.startedAt }
func (r *SyncRun) FinishedAt() time.Time   { return r.finishedAt }
func (r *SyncRun) CreatedAt() time.Time    { return r.createdAt }
func (r *SyncRun) UpdatedAt() time.Time    { return r.updatedAt }
func (r *SyncRun) Outcomes() []ListOutcome { return r.outcomes }

func (r *SyncRun) SetID(id string)                    { r.id = id }
func (r *SyncRun) SetSequence(seq int)                { r.sequence = seq }
func (r *SyncRun) SetCreatedAt(t time.Time)           { r.createdAt = t }
func (r *SyncRun) SetUpdatedAt(t time.Time)           { r.updatedAt = t }
func (r *SyncRun) SetOutcomes(outcomes []ListOutcome) { r.outcomes = outcomes }
func (r *SyncRun) AddOutcome(outcome ListOutcome)     { r.outcomes = append(r.outcomes, outcome) }

// SetResult restores the terminal fields of a run loaded from storage.
func (r *SyncRun) SetResult(status RunStatus, summary, errMessage string, finishedAt time.Time) {
	r.status = status
	r.summary = summary
	r.errMessage = errMessage
	r.finishedAt = finishedAt
}

// Finish marks the run as done, recording err (if any) as the failure reason.
func (r *SyncRun) Finish(summary string, finishedAt time.Time, err error) {
	r.summary = summary
	r.finishedAt = finishedAt
	r.updatedAt = finishedAt
	if err != nil {
		r.status = RunFailed
		r.errMessage = err.Error()
	}
}

// ChangedLists returns the names of lists that received new members in this run.
func (r *SyncRun) ChangedLists() []string {
	var names []string
	for _, o := range r.outcomes {
		if o.Changed {
			names = append(names, o.Name)
		}
	}
	return names
}

// Validate checks required fields.
func (r *SyncRun) Validate() error {
	var missing []string
	if r.leftName == "" {
		missing = append(missing, "left_name")
	}
	if r.rightName == "" {
		missing = append(missing, "right_name")
	}
	if r.startedAt.IsZero() {
		missing = append(missing, "started_at")
	}
	if r.status != RunSucceeded && r.status != RunFailed {
		return fmt.Errorf("invalid status %q", r.status)
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}
