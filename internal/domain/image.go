package domain

import "time"

// GeneratedImage tracks one rendered image, created individually or as part
// of a pack fan-out. Like TrainingModel it is inserted in Pending before the
// generation request is dispatched.
type GeneratedImage struct {
	ID                string
	UserID            string
	ModelID           string
	Prompt            string
	ProviderRequestID string
	Status            JobStatus
	ImageURL          string
	ErrorMessage      string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
