// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus is the terminal state of a calorie job.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
)

// Job asks for one asynchronous calorie prediction for a subject.
type Job struct {
	ID          uuid.UUID // unique id, assigned at submission
	SubjectID   string    // whose biometric store to read
	SubmittedAt time.Time
}

// NewJob assigns a fresh random ID.
func NewJob(subjectID string, now time.Time) Job {
	return Job{ID: uuid.New(), SubjectID: subjectID, SubmittedAt: now}
}

// JobResult is what a client polls for.
type JobResult struct {
	JobID       uuid.UUID `json:"job_id"`
	SubjectID   string    `json:"subject_id"`
	Status      JobStatus `json:"status"`
	Prediction  *float64  `json:"prediction,omitempty"`
	Vector      []float64 `json:"vector,omitempty"`
	Error       string    `json:"error,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
	CompletedAt time.Time `json:"completed_at,omitzero"`
}

// Pending is the placeholder result stored at submission.
func Pending(j Job) JobResult {
	return JobResult{JobID: j.ID, SubjectID: j.SubjectID, Status: JobPending, SubmittedAt: j.SubmittedAt}
}

// Done reports whether the job reached a terminal state.
func (r JobResult) Done() bool {
	return r.Status == JobSucceeded || r.Status == JobFailed
}
