// internal/app/services.go
// Package app builds the service graph and registers it in the DI
// container, in dependency order.
package app

import (
	"fmt"
	"path/filepath"

	"github.com/hyeonlab/sceneforge/internal/config"
	"github.com/hyeonlab/sceneforge/internal/di"
	"github.com/hyeonlab/sceneforge/internal/media"
	"github.com/hyeonlab/sceneforge/internal/services"
	"github.com/hyeonlab/sceneforge/internal/storage"
	"github.com/hyeonlab/sceneforge/internal/utils"

	// Register the text providers.
	_ "github.com/hyeonlab/sceneforge/internal/llm/providers/google"
)

// InitServices wires every service into the container. Must run after
// config.InitConfig.
func InitServices() error {
	cfg := config.GetCurrentConfig()
	if cfg == nil {
		return fmt.Errorf("configuration not initialized")
	}

	if err := utils.InitLogger(filepath.Join(cfg.LogDir, "sceneforge.log")); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	fileStorage, err := storage.NewFileStorage(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	container := di.GetContainer()

	llmService := services.NewLLMService()
	progressService := services.NewProgressService()
	projectService := services.NewProjectService(fileStorage)
	scriptService := services.NewScriptService(llmService)
	plannerService := services.NewPlannerService(llmService)
	workflowService := services.NewWorkflowService()
	exportService := services.NewExportService()

	imageGen, videoGen, speech, upscaler := buildMediaClients(cfg.MediaConfig)
	productionService := services.NewProductionService(imageGen, videoGen, speech, upscaler, projectService)

	settingsService := services.NewSettingsService(llmService)
	settingsService.OnMediaConfigChange = func(mediaConfig map[string]string) {
		productionService.SetMediaClients(buildMediaClients(mediaConfig))
	}

	container.Register("storage", fileStorage)
	container.Register("llm", llmService)
	container.Register("progress", progressService)
	container.Register("project", projectService)
	container.Register("script", scriptService)
	container.Register("planner", plannerService)
	container.Register("workflow", workflowService)
	container.Register("export", exportService)
	container.Register("production", productionService)
	container.Register("settings", settingsService)

	return nil
}

// buildMediaClients returns nil for any vendor whose credential is not
// configured; the production service fails fast on nil clients instead
// of sending unauthenticated requests.
func buildMediaClients(mediaConfig map[string]string) (media.ImageGenerator, media.VideoGenerator, media.SpeechSynthesizer, media.Upscaler) {
	var (
		imageGen media.ImageGenerator
		videoGen media.VideoGenerator
		speech   media.SpeechSynthesizer
		upscaler media.Upscaler
	)

	if key := mediaConfig["gemini_api_key"]; key != "" {
		imageGen = media.NewGeminiImageClient(key, mediaConfig["image_model"])
		videoGen = media.NewVeoVideoClient(key, mediaConfig["video_model"])
	}
	if key := mediaConfig["elevenlabs_key"]; key != "" {
		speech = media.NewElevenLabsClient(key, mediaConfig["elevenlabs_voice"])
	}
	if key := mediaConfig["fal_key"]; key != "" {
		upscaler = media.NewFalUpscaleClient(key)
	}

	return imageGen, videoGen, speech, upscaler
}
