// internal/api/router.go
package api

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/hyeonlab/sceneforge/internal/config"
	"github.com/hyeonlab/sceneforge/internal/di"
	"github.com/hyeonlab/sceneforge/internal/services"
)

// SetupRouter wires the HTTP routes. Services come from the DI
// container; the container must be populated before this runs.
func SetupRouter() (*gin.Engine, error) {
	cfg := config.GetCurrentConfig()
	if cfg != nil && !cfg.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	container := di.GetContainer()

	scriptService, ok := container.Get("script").(*services.ScriptService)
	if !ok {
		return nil, fmt.Errorf("script service not initialized")
	}

	plannerService, ok := container.Get("planner").(*services.PlannerService)
	if !ok {
		return nil, fmt.Errorf("planner service not initialized")
	}

	productionService, ok := container.Get("production").(*services.ProductionService)
	if !ok {
		return nil, fmt.Errorf("production service not initialized")
	}

	projectService, ok := container.Get("project").(*services.ProjectService)
	if !ok {
		return nil, fmt.Errorf("project service not initialized")
	}

	workflowService, ok := container.Get("workflow").(*services.WorkflowService)
	if !ok {
		return nil, fmt.Errorf("workflow service not initialized")
	}

	settingsService, ok := container.Get("settings").(*services.SettingsService)
	if !ok {
		return nil, fmt.Errorf("settings service not initialized")
	}

	exportService, ok := container.Get("export").(*services.ExportService)
	if !ok {
		return nil, fmt.Errorf("export service not initialized")
	}

	progressService, ok := container.Get("progress").(*services.ProgressService)
	if !ok {
		return nil, fmt.Errorf("progress service not initialized")
	}

	llmService, ok := container.Get("llm").(*services.LLMService)
	if !ok {
		return nil, fmt.Errorf("llm service not initialized")
	}

	handler := NewHandler(
		scriptService,
		plannerService,
		productionService,
		projectService,
		workflowService,
		settingsService,
		exportService,
		progressService,
		llmService,
	)

	r := gin.Default()
	r.Use(corsMiddleware())
	r.Use(requestIDMiddleware())

	r.GET("/health", handler.Health)

	// Progress streaming
	r.GET("/ws/progress/:task_id", handler.ProgressWebSocket)

	apiGroup := r.Group("/api")
	{
		// Script writing
		apiGroup.POST("/ideas", handler.GenerateIdeas)
		apiGroup.POST("/script", handler.GenerateScript)
		apiGroup.POST("/script/refine", handler.RefineScript)
		apiGroup.POST("/thumbnail", handler.GenerateThumbnailText)

		// Workflow
		apiGroup.GET("/workflow", handler.GetWorkflow)
		apiGroup.POST("/workflow/topic", handler.SetWorkflowTopic)
		apiGroup.POST("/workflow/idea", handler.SelectWorkflowIdea)
		apiGroup.POST("/workflow/script", handler.CommitWorkflowScript)
		apiGroup.POST("/workflow/step", handler.GoToWorkflowStep)
		apiGroup.POST("/workflow/reset", handler.ResetWorkflow)

		// Planning and scenes
		apiGroup.POST("/plan", handler.PlanScenes)
		apiGroup.GET("/scenes", handler.GetScenes)
		apiGroup.POST("/scenes/aspect-ratio", handler.SetAspectRatio)
		apiGroup.POST("/scenes/:index/image", handler.GenerateSceneImage)
		apiGroup.POST("/scenes/:index/video", handler.GenerateSceneVideo)
		apiGroup.POST("/scenes/:index/audio", handler.GenerateSceneAudio)
		apiGroup.POST("/scenes/:index/upscale", handler.UpscaleSceneImage)

		// Batch production
		apiGroup.POST("/production/images", handler.RunImageBatch)
		apiGroup.POST("/production/audio", handler.RunAudioBatch)

		// Tasks
		apiGroup.GET("/tasks/:task_id", handler.GetTask)
		apiGroup.POST("/tasks/:task_id/cancel", handler.CancelTask)

		// Projects
		apiGroup.POST("/projects", handler.SaveProject)
		apiGroup.GET("/projects", handler.ListProjects)
		apiGroup.GET("/projects/:id", handler.GetProject)
		apiGroup.POST("/projects/:id/restore", handler.RestoreProject)
		apiGroup.DELETE("/projects/:id", handler.DeleteProject)

		// Export
		apiGroup.GET("/export", handler.ExportProject)

		// Settings
		apiGroup.GET("/settings", handler.GetSettings)
		apiGroup.PUT("/settings/llm", handler.UpdateLLMSettings)
		apiGroup.PUT("/settings/media", handler.UpdateMediaSettings)
	}

	return r, nil
}
