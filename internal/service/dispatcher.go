package service

import "context"

// Job kind labels used for dispatch tasks, logs and metrics.
const (
	KindTrain    = "train"
	KindGenerate = "generate"
)

// Dispatcher submits jobs to the compute provider. Implementations must only
// report whether the provider accepted the request; results arrive later via
// webhook, and the dispatcher never mutates stored job state.
type Dispatcher interface {
	SubmitTraining(ctx context.Context, zipURL, triggerWord, modelID string) error
	SubmitGeneration(ctx context.Context, prompt, modelID, imageID string) error
}
