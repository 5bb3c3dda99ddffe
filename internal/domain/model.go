package domain

import "time"

// ModelType enumerates supported subject types.
type ModelType string

const (
	ModelTypeMan    ModelType = "Man"
	ModelTypeWoman  ModelType = "Woman"
	ModelTypeOthers ModelType = "Others"
)

// TrainingModel tracks one externally-executed training run. The record is
// created in Pending before the dispatch request leaves the process, so the
// provider callback always has an id to correlate against.
type TrainingModel struct {
	ID                string
	UserID            string
	Name              string
	Type              ModelType
	Age               int
	Ethnicity         string
	EyeColor          string
	Bald              bool
	ZipURL            string
	TriggerWord       string
	ProviderRequestID string
	Status            JobStatus
	TensorPath        string
	ThumbnailURL      string
	ErrorMessage      string
	Open              bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Ready reports whether the model has a trained artifact that generation
// requests can reference.
func (m TrainingModel) Ready() bool {
	return m.Status == JobStatusGenerated && m.TensorPath != ""
}
