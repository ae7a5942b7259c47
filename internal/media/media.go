// internal/media/media.go
// Package media holds the clients for the generation backends: still
// images, video clips, narration audio and image upscaling. Services
// depend on the interfaces here, never on the concrete clients.
package media

import "context"

// ImageRequest describes a single still-image generation.
type ImageRequest struct {
	Prompt      string
	AspectRatio string
}

// ImageGenerator produces a still image and returns it as a data URI.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, req ImageRequest) (string, error)
}

// VideoRequest describes a single video clip generation. ImageDataURI
// optionally seeds the clip with a previously generated still.
type VideoRequest struct {
	Prompt       string
	ImageDataURI string
	AspectRatio  string
}

// VideoGenerator produces a short video clip and returns it as a data URI.
type VideoGenerator interface {
	GenerateVideo(ctx context.Context, req VideoRequest) (string, error)
}

// SpeechSynthesizer turns narration text into audio, returned as a data URI.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string) (string, error)
}

// Upscale job states as reported by CheckUpscale.
const (
	UpscaleStatusQueued     = "queued"
	UpscaleStatusInProgress = "in_progress"
	UpscaleStatusCompleted  = "completed"
	UpscaleStatusFailed     = "failed"
)

// UpscaleJob identifies a submitted upscale request.
type UpscaleJob struct {
	RequestID string
}

// UpscaleStatus is a point-in-time view of an upscale job.
type UpscaleStatus struct {
	Status   string
	ImageURL string
	Error    string
}

// Upscaler runs asynchronous image upscaling. The caller owns the poll
// loop: submit once, then check until the job completes or fails.
type Upscaler interface {
	SubmitUpscale(ctx context.Context, imageURL string) (*UpscaleJob, error)
	CheckUpscale(ctx context.Context, job *UpscaleJob) (*UpscaleStatus, error)
}
