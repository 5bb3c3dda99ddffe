package domain

// JobStatus enumerates the lifecycle states shared by training models and
// generated images. Pending is the only non-terminal state; a provider
// callback moves a record to Generated or Failed and re-deliveries of a
// terminal event are no-ops.
type JobStatus string

const (
	JobStatusPending   JobStatus = "Pending"
	JobStatusGenerated JobStatus = "Generated"
	JobStatusFailed    JobStatus = "Failed"
)

// Terminal reports whether the status admits no further transitions.
func (s JobStatus) Terminal() bool {
	return s == JobStatusGenerated || s == JobStatusFailed
}
