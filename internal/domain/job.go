package domain

import "strings"

// JobStatus enumerates the image job lifecycle. Pending is the only
// non-terminal state.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
)

// Terminal reports whether no further transition can occur.
func (s JobStatus) Terminal() bool {
	return s == JobStatusSucceeded || s == JobStatusFailed
}

// ParseJobStatus maps a provider status string onto JobStatus. The second
// return value is false when the provider sent no status at all.
func ParseJobStatus(raw string) (JobStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return "", false
	case "succeeded":
		return JobStatusSucceeded, true
	case "failed", "canceled", "cancelled":
		return JobStatusFailed, true
	default:
		// starting, processing and anything newer the provider adds
		return JobStatusPending, true
	}
}

// ImageJob is the latest snapshot of an asynchronous image generation job.
// Outputs is only populated once Status is JobStatusSucceeded.
type ImageJob struct {
	ID      string
	Status  JobStatus
	Outputs []string
	Error   string
}
