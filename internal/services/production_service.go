// internal/services/production_service.go
package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	apperrors "github.com/hyeonlab/sceneforge/internal/errors"
	"github.com/hyeonlab/sceneforge/internal/media"
	"github.com/hyeonlab/sceneforge/internal/models"
	"github.com/hyeonlab/sceneforge/internal/retry"
	"github.com/hyeonlab/sceneforge/internal/utils"
)

// Pacing gaps between sequential vendor calls in batch runs.
const (
	DefaultImagePacing = 2 * time.Second
	DefaultAudioPacing = 500 * time.Millisecond
)

// UpscalePolicy is the poll schedule for upscale jobs: one check per
// second for up to two minutes.
var UpscalePolicy = retry.Policy{MaxRetries: 119, Delay: time.Second}

// BatchResult summarizes a batch production run.
type BatchResult struct {
	Total     int  `json:"total"`
	Succeeded int  `json:"succeeded"`
	Failed    int  `json:"failed"`
	Cancelled bool `json:"cancelled"`
}

// ProductionService owns the live scene list and drives media
// generation against it. Reads always get a deep copy; mutations swap
// in a fresh slice under the mutex, so an in-flight reader never sees a
// half-applied update. Per-scene operations are serialized by the lock
// manager while different scenes proceed independently.
type ProductionService struct {
	state    sceneState
	projects *ProjectService
	locks    *LockManager

	clientsMu sync.RWMutex
	imageGen  media.ImageGenerator
	videoGen  media.VideoGenerator
	speech    media.SpeechSynthesizer
	upscaler  media.Upscaler

	ImagePacing   time.Duration
	AudioPacing   time.Duration
	ImagePolicy   retry.Policy
	UpscalePolicy retry.Policy
}

func NewProductionService(
	imageGen media.ImageGenerator,
	videoGen media.VideoGenerator,
	speech media.SpeechSynthesizer,
	upscaler media.Upscaler,
	projects *ProjectService,
) *ProductionService {
	return &ProductionService{
		imageGen: imageGen,
		videoGen: videoGen,
		speech:   speech,
		upscaler: upscaler,
		projects: projects,
		locks:    NewLockManager(),

		ImagePacing:   DefaultImagePacing,
		AudioPacing:   DefaultAudioPacing,
		ImagePolicy:   retry.AnalysisPolicy,
		UpscalePolicy: UpscalePolicy,
	}
}

// SetMediaClients swaps the vendor clients, used when media credentials
// change at runtime. In-flight generations finish on the old clients.
func (s *ProductionService) SetMediaClients(
	imageGen media.ImageGenerator,
	videoGen media.VideoGenerator,
	speech media.SpeechSynthesizer,
	upscaler media.Upscaler,
) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()

	s.imageGen = imageGen
	s.videoGen = videoGen
	s.speech = speech
	s.upscaler = upscaler
}

func (s *ProductionService) getImageGen() media.ImageGenerator {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return s.imageGen
}

func (s *ProductionService) getVideoGen() media.VideoGenerator {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return s.videoGen
}

func (s *ProductionService) getSpeech() media.SpeechSynthesizer {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return s.speech
}

func (s *ProductionService) getUpscaler() media.Upscaler {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return s.upscaler
}

// Initialize replaces the scene list with fresh media state built from
// scene plans. Any previous production state is discarded.
func (s *ProductionService) Initialize(script string, plans []models.ScenePlan) {
	scenes := make([]models.SceneMedia, len(plans))
	for i, plan := range plans {
		scenes[i] = models.SceneMedia{ScenePlan: plan}
	}

	s.state.set(script, scenes, models.DefaultAspectRatio, models.DefaultArtStyle)
}

// Restore loads a saved snapshot as the live production state.
func (s *ProductionService) Restore(snapshot *models.ProjectSnapshot) {
	aspectRatio := snapshot.AspectRatio
	if aspectRatio == "" {
		aspectRatio = models.DefaultAspectRatio
	}
	artStyle := snapshot.ArtStyle
	if artStyle == "" {
		artStyle = models.DefaultArtStyle
	}

	s.state.set(snapshot.Script, models.CloneSceneMedia(snapshot.Media), aspectRatio, artStyle)
}

// Scenes returns a deep copy of the current scene list.
func (s *ProductionService) Scenes() []models.SceneMedia {
	return s.state.scenes()
}

// SetAspectRatio changes the aspect ratio used by subsequent generations.
func (s *ProductionService) SetAspectRatio(aspectRatio string) {
	s.state.setAspectRatio(aspectRatio)
}

// AspectRatio returns the active aspect ratio.
func (s *ProductionService) AspectRatio() string {
	return s.state.aspectRatio()
}

func (s *ProductionService) sceneByIndex(index int) (models.SceneMedia, error) {
	scene, ok := s.state.find(index)
	if !ok {
		return models.SceneMedia{}, apperrors.NewNotFoundError(fmt.Sprintf("scene %d not found", index), nil)
	}
	return scene, nil
}

// GenerateImage produces the still image for one scene and stores its
// data URI on the scene. A successful generation also saves a snapshot.
func (s *ProductionService) GenerateImage(ctx context.Context, index int) (string, error) {
	var url string
	err := s.locks.ExecuteWithSceneLock(index, "image", func() error {
		var err error
		url, err = s.produceImage(ctx, index)
		return err
	})
	if err != nil {
		return "", err
	}

	s.saveSnapshot()
	return url, nil
}

// produceImage runs the actual generation without snapshotting, shared
// by the single-scene path and the batch loop.
func (s *ProductionService) produceImage(ctx context.Context, index int) (string, error) {
	scene, err := s.sceneByIndex(index)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(scene.Prompt) == "" {
		return "", apperrors.NewValidationError(fmt.Sprintf("scene %d has no image prompt", index), nil)
	}

	gen := s.getImageGen()
	if gen == nil {
		return "", apperrors.NewConfigurationError("image generation is not configured, add an API key in settings")
	}

	s.state.update(index, func(sc *models.SceneMedia) { sc.IsProcessing = true })
	defer s.state.update(index, func(sc *models.SceneMedia) { sc.IsProcessing = false })

	req := media.ImageRequest{Prompt: scene.Prompt, AspectRatio: s.state.aspectRatio()}

	var url string
	err = s.ImagePolicy.Do(ctx, func() error {
		var genErr error
		url, genErr = gen.GenerateImage(ctx, req)
		return genErr
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", apperrors.NewUpstreamError(fmt.Sprintf("image generation failed for scene %d", index), err)
	}

	s.state.update(index, func(sc *models.SceneMedia) { sc.MediaURL = url })
	return url, nil
}

// RunImageBatch generates images for every scene that has none yet, in
// index order. Scenes that fail are skipped and the run continues;
// cancellation is honored at scene boundaries, leaving already-stored
// URLs in place. A snapshot is saved only when the run finishes without
// being cancelled.
func (s *ProductionService) RunImageBatch(ctx context.Context, tracker *ProgressTracker) (*BatchResult, error) {
	scenes := s.Scenes()
	if len(scenes) == 0 {
		return nil, apperrors.NewValidationError("no scenes to produce", nil)
	}

	var pending []models.SceneMedia
	for _, scene := range scenes {
		if scene.MediaURL == "" {
			pending = append(pending, scene)
		}
	}

	result := &BatchResult{Total: len(pending)}
	if len(pending) == 0 {
		if tracker != nil {
			tracker.Complete("Every scene already has an image")
		}
		return result, nil
	}

	// Progress counts every scene, so resuming a half-produced project
	// starts where the last run left off instead of at zero.
	total := len(scenes)
	done := total - len(pending)

	for i, scene := range pending {
		if ctx.Err() != nil {
			result.Cancelled = true
			if tracker != nil {
				tracker.CancelDone(fmt.Sprintf("Stopped after %d of %d scenes", done, total))
			}
			return result, nil
		}

		if i > 0 {
			select {
			case <-time.After(s.ImagePacing):
			case <-ctx.Done():
				result.Cancelled = true
				if tracker != nil {
					tracker.CancelDone(fmt.Sprintf("Stopped after %d of %d scenes", done, total))
				}
				return result, nil
			}
		}

		if tracker != nil {
			tracker.UpdateProgress(roundPercent(done, total),
				fmt.Sprintf("Producing scene %d of %d", done+1, total))
		}

		err := s.locks.ExecuteWithSceneLock(scene.Index, "image", func() error {
			_, produceErr := s.produceImage(ctx, scene.Index)
			return produceErr
		})
		if err != nil {
			if ctx.Err() != nil {
				result.Cancelled = true
				if tracker != nil {
					tracker.CancelDone(fmt.Sprintf("Stopped after %d of %d scenes", done, total))
				}
				return result, nil
			}
			result.Failed++
			utils.GetLogger().Warn("batch image generation failed for scene", map[string]interface{}{
				"scene": scene.Index,
				"error": err.Error(),
			})
		} else {
			result.Succeeded++
		}
		done++
	}

	s.saveSnapshot()
	if tracker != nil {
		tracker.Complete(fmt.Sprintf("Produced %d scenes, %d failed", result.Succeeded, result.Failed))
	}
	return result, nil
}

func roundPercent(done, total int) int {
	return (done*100 + total/2) / total
}

// GenerateVideo animates one scene from its still image. The image must
// exist first; a scene that already has a video keeps it, regenerating
// the clip is deliberate and goes through the image first.
func (s *ProductionService) GenerateVideo(ctx context.Context, index int) (string, error) {
	var url string
	err := s.locks.ExecuteWithSceneLock(index, "video", func() error {
		scene, err := s.sceneByIndex(index)
		if err != nil {
			return err
		}
		if scene.MediaURL == "" {
			return apperrors.NewValidationError(fmt.Sprintf("scene %d has no image yet, generate the image first", index), nil)
		}
		if scene.VideoURL != "" {
			url = scene.VideoURL
			return nil
		}

		gen := s.getVideoGen()
		if gen == nil {
			return apperrors.NewConfigurationError("video generation is not configured, add an API key in settings")
		}

		motionPrompt := scene.VideoMotionPrompt
		if strings.TrimSpace(motionPrompt) == "" {
			motionPrompt = FallbackMotionPrompt
		}

		s.state.update(index, func(sc *models.SceneMedia) { sc.IsVideoProcessing = true })
		defer s.state.update(index, func(sc *models.SceneMedia) { sc.IsVideoProcessing = false })

		url, err = gen.GenerateVideo(ctx, media.VideoRequest{
			Prompt:       motionPrompt,
			ImageDataURI: scene.MediaURL,
			AspectRatio:  s.state.aspectRatio(),
		})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return apperrors.NewUpstreamError(fmt.Sprintf("video generation failed for scene %d", index), err)
		}

		s.state.update(index, func(sc *models.SceneMedia) { sc.VideoURL = url })
		return nil
	})
	if err != nil {
		return "", err
	}

	s.saveSnapshot()
	return url, nil
}

// GenerateAudio narrates one scene's script segment.
func (s *ProductionService) GenerateAudio(ctx context.Context, index int) (string, error) {
	var url string
	err := s.locks.ExecuteWithSceneLock(index, "audio", func() error {
		var produceErr error
		url, produceErr = s.produceAudio(ctx, index)
		return produceErr
	})
	if err != nil {
		return "", err
	}

	s.saveSnapshot()
	return url, nil
}

func (s *ProductionService) produceAudio(ctx context.Context, index int) (string, error) {
	scene, err := s.sceneByIndex(index)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(scene.OriginalScriptSegment) == "" {
		return "", apperrors.NewValidationError(fmt.Sprintf("scene %d has no script text", index), nil)
	}

	speech := s.getSpeech()
	if speech == nil {
		return "", apperrors.NewConfigurationError("voice synthesis is not configured, add an API key in settings")
	}

	s.state.update(index, func(sc *models.SceneMedia) { sc.IsAudioProcessing = true })
	defer s.state.update(index, func(sc *models.SceneMedia) { sc.IsAudioProcessing = false })

	url, err := speech.Synthesize(ctx, scene.OriginalScriptSegment)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", apperrors.NewUpstreamError(fmt.Sprintf("speech synthesis failed for scene %d", index), err)
	}

	s.state.update(index, func(sc *models.SceneMedia) { sc.AudioURL = url })
	return url, nil
}

// GenerateAllAudio narrates every scene that lacks audio, in index
// order. Unlike the image batch, the first failure aborts the run: a
// gap in narration makes the whole voice track unusable, so later
// scenes are not attempted.
func (s *ProductionService) GenerateAllAudio(ctx context.Context, tracker *ProgressTracker) error {
	scenes := s.Scenes()
	if len(scenes) == 0 {
		return apperrors.NewValidationError("no scenes to narrate", nil)
	}

	var pending []models.SceneMedia
	for _, scene := range scenes {
		if scene.AudioURL == "" {
			pending = append(pending, scene)
		}
	}
	if len(pending) == 0 {
		if tracker != nil {
			tracker.Complete("Every scene already has narration")
		}
		return nil
	}

	total := len(scenes)
	done := total - len(pending)

	for i, scene := range pending {
		if err := ctx.Err(); err != nil {
			if tracker != nil {
				tracker.CancelDone(fmt.Sprintf("Stopped after %d of %d scenes", done, total))
			}
			return err
		}

		if i > 0 {
			select {
			case <-time.After(s.AudioPacing):
			case <-ctx.Done():
				if tracker != nil {
					tracker.CancelDone(fmt.Sprintf("Stopped after %d of %d scenes", done, total))
				}
				return ctx.Err()
			}
		}

		if tracker != nil {
			tracker.UpdateProgress(roundPercent(done, total),
				fmt.Sprintf("Narrating scene %d of %d", done+1, total))
		}

		err := s.locks.ExecuteWithSceneLock(scene.Index, "audio", func() error {
			_, produceErr := s.produceAudio(ctx, scene.Index)
			return produceErr
		})
		if err != nil {
			if tracker != nil {
				tracker.Fail(fmt.Sprintf("narration failed at scene %d", scene.Index))
			}
			return err
		}
		done++
	}

	s.saveSnapshot()
	if tracker != nil {
		tracker.Complete("Narration complete")
	}
	return nil
}

// UpscaleImage submits a scene's image to the upscaler and polls until
// the job finishes. On timeout or failure the stored image URL is left
// untouched.
func (s *ProductionService) UpscaleImage(ctx context.Context, index int) (string, error) {
	var url string
	err := s.locks.ExecuteWithSceneLock(index, "image", func() error {
		scene, err := s.sceneByIndex(index)
		if err != nil {
			return err
		}
		if scene.MediaURL == "" {
			return apperrors.NewValidationError(fmt.Sprintf("scene %d has no image to upscale", index), nil)
		}

		upscaler := s.getUpscaler()
		if upscaler == nil {
			return apperrors.NewConfigurationError("upscaling is not configured, add an API key in settings")
		}

		s.state.update(index, func(sc *models.SceneMedia) { sc.IsUpscaling = true })
		defer s.state.update(index, func(sc *models.SceneMedia) { sc.IsUpscaling = false })

		job, err := upscaler.SubmitUpscale(ctx, scene.MediaURL)
		if err != nil {
			return apperrors.NewUpstreamError(fmt.Sprintf("upscale submission failed for scene %d", index), err)
		}

		timedOut, err := s.UpscalePolicy.Poll(ctx, func() (bool, error) {
			status, checkErr := upscaler.CheckUpscale(ctx, job)
			if checkErr != nil {
				return false, checkErr
			}
			switch status.Status {
			case media.UpscaleStatusCompleted:
				url = status.ImageURL
				return true, nil
			case media.UpscaleStatusFailed:
				return false, apperrors.NewUpstreamError(fmt.Sprintf("upscale failed for scene %d: %s", index, status.Error), nil)
			default:
				return false, nil
			}
		})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		if timedOut {
			return apperrors.NewTimeoutError(fmt.Sprintf("upscale timed out for scene %d", index), nil)
		}

		s.state.update(index, func(sc *models.SceneMedia) { sc.MediaURL = url })
		return nil
	})
	if err != nil {
		return "", err
	}

	s.saveSnapshot()
	return url, nil
}

// SnapshotNow explicitly saves the current state and returns the new
// snapshot record.
func (s *ProductionService) SnapshotNow() (*models.ProjectSnapshot, error) {
	script, scenes, aspectRatio, artStyle := s.state.state()
	return s.projects.SaveSnapshot(script, scenes, aspectRatio, artStyle)
}

// saveSnapshot persists the current state. Snapshot failures are
// logged, never propagated: the generated media already sits on the
// live scene list.
func (s *ProductionService) saveSnapshot() {
	script, scenes, aspectRatio, artStyle := s.state.state()
	if len(scenes) == 0 {
		return
	}

	if _, err := s.projects.SaveSnapshot(script, scenes, aspectRatio, artStyle); err != nil {
		utils.GetLogger().Warn("failed to save project snapshot", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
