// internal/api/handlers.go
package api

import (
	"context"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hyeonlab/sceneforge/internal/models"
	"github.com/hyeonlab/sceneforge/internal/services"
	"github.com/hyeonlab/sceneforge/internal/utils"
)

// Handler carries the services behind the HTTP API.
type Handler struct {
	ScriptService     *services.ScriptService
	PlannerService    *services.PlannerService
	ProductionService *services.ProductionService
	ProjectService    *services.ProjectService
	WorkflowService   *services.WorkflowService
	SettingsService   *services.SettingsService
	ExportService     *services.ExportService
	ProgressService   *services.ProgressService
	LLMService        *services.LLMService
	Response          *ResponseHelper
}

func NewHandler(
	scriptService *services.ScriptService,
	plannerService *services.PlannerService,
	productionService *services.ProductionService,
	projectService *services.ProjectService,
	workflowService *services.WorkflowService,
	settingsService *services.SettingsService,
	exportService *services.ExportService,
	progressService *services.ProgressService,
	llmService *services.LLMService,
) *Handler {
	return &Handler{
		ScriptService:     scriptService,
		PlannerService:    plannerService,
		ProductionService: productionService,
		ProjectService:    projectService,
		WorkflowService:   workflowService,
		SettingsService:   settingsService,
		ExportService:     exportService,
		ProgressService:   progressService,
		LLMService:        llmService,
		Response:          NewResponseHelper(),
	}
}

// Health reports server and provider readiness.
func (h *Handler) Health(c *gin.Context) {
	ready, state := h.LLMService.GetProviderStatus()
	h.Response.Success(c, gin.H{
		"status":    "ok",
		"llm_ready": ready,
		"llm_state": state,
	})
}

// ------------------------------------------------
// Script endpoints

type topicRequest struct {
	Topic string `json:"topic"`
}

func (h *Handler) GenerateIdeas(c *gin.Context) {
	var req topicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "invalid request body")
		return
	}

	ideas, err := h.ScriptService.GenerateIdeas(c.Request.Context(), req.Topic)
	if err != nil {
		h.Response.HandleError(c, err)
		return
	}

	h.Response.Success(c, ideas)
}

type scriptRequest struct {
	Title string `json:"title"`
	Hook  string `json:"hook"`
}

func (h *Handler) GenerateScript(c *gin.Context) {
	var req scriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "invalid request body")
		return
	}

	script, err := h.ScriptService.GenerateFullScript(c.Request.Context(), req.Title, req.Hook)
	if err != nil {
		h.Response.HandleError(c, err)
		return
	}

	h.Response.Success(c, script)
}

type refineRequest struct {
	Script      string `json:"script"`
	Instruction string `json:"instruction"`
}

func (h *Handler) RefineScript(c *gin.Context) {
	var req refineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "invalid request body")
		return
	}

	revised, err := h.ScriptService.RefineScript(c.Request.Context(), req.Script, req.Instruction)
	if err != nil {
		h.Response.HandleError(c, err)
		return
	}

	h.Response.Success(c, gin.H{"script": revised})
}

type thumbnailRequest struct {
	Script string `json:"script"`
}

func (h *Handler) GenerateThumbnailText(c *gin.Context) {
	var req thumbnailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "invalid request body")
		return
	}

	text, err := h.ScriptService.GenerateThumbnailText(c.Request.Context(), req.Script)
	if err != nil {
		h.Response.HandleError(c, err)
		return
	}

	h.Response.Success(c, text)
}

// ------------------------------------------------
// Workflow endpoints

func (h *Handler) GetWorkflow(c *gin.Context) {
	h.Response.Success(c, h.WorkflowService.State())
}

func (h *Handler) SetWorkflowTopic(c *gin.Context) {
	var req topicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "invalid request body")
		return
	}

	if err := h.WorkflowService.SetTopic(req.Topic); err != nil {
		h.Response.HandleError(c, err)
		return
	}

	h.Response.Success(c, h.WorkflowService.State())
}

func (h *Handler) SelectWorkflowIdea(c *gin.Context) {
	var idea models.ContentIdea
	if err := c.ShouldBindJSON(&idea); err != nil {
		h.Response.BadRequest(c, "invalid request body")
		return
	}

	if err := h.WorkflowService.SelectIdea(idea); err != nil {
		h.Response.HandleError(c, err)
		return
	}

	h.Response.Success(c, h.WorkflowService.State())
}

func (h *Handler) CommitWorkflowScript(c *gin.Context) {
	var script models.FullScript
	if err := c.ShouldBindJSON(&script); err != nil {
		h.Response.BadRequest(c, "invalid request body")
		return
	}

	if err := h.WorkflowService.SetScript(script); err != nil {
		h.Response.HandleError(c, err)
		return
	}

	h.Response.Success(c, h.WorkflowService.State())
}

type stepRequest struct {
	Step int `json:"step"`
}

func (h *Handler) GoToWorkflowStep(c *gin.Context) {
	var req stepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "invalid request body")
		return
	}

	if err := h.WorkflowService.GoToStep(models.WorkflowStep(req.Step)); err != nil {
		h.Response.HandleError(c, err)
		return
	}

	h.Response.Success(c, h.WorkflowService.State())
}

func (h *Handler) ResetWorkflow(c *gin.Context) {
	h.WorkflowService.Reset()
	h.Response.Success(c, h.WorkflowService.State())
}

// ------------------------------------------------
// Planning and production

type planRequest struct {
	Intro    string `json:"intro"`
	Body     string `json:"body"`
	ArtStyle string `json:"art_style"`
}

// PlanScenes segments the script and derives prompts in the background.
// Progress streams over the task's websocket; the scenes land in the
// production state when the task completes.
func (h *Handler) PlanScenes(c *gin.Context) {
	var req planRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "invalid request body")
		return
	}

	// Fall back to the committed workflow script.
	if strings.TrimSpace(req.Intro) == "" && strings.TrimSpace(req.Body) == "" {
		script, err := h.WorkflowService.Script()
		if err != nil {
			h.Response.HandleError(c, err)
			return
		}
		req.Intro = script.Intro
		req.Body = script.Body
	}

	taskID := uuid.New().String()
	tracker := h.ProgressService.CreateTracker(taskID)

	ctx, cancel := context.WithCancel(context.Background())
	tracker.RegisterCancel(cancel)

	go func() {
		defer cancel()

		plans, err := h.PlannerService.PlanScenes(ctx, req.Intro, req.Body, req.ArtStyle, tracker)
		if err != nil {
			if ctx.Err() != nil {
				tracker.CancelDone("Planning cancelled")
			} else {
				tracker.Fail(err.Error())
			}
			return
		}
		if len(plans) == 0 {
			tracker.Fail("script produced no segments")
			return
		}

		script := strings.TrimSpace(req.Intro + "\n" + req.Body)
		h.ProductionService.Initialize(script, plans)
		if err := h.WorkflowService.EnterPlanning(); err != nil {
			// Planning outside the workflow (direct API use) is fine.
			utils.GetLogger().Debug("workflow not advanced", map[string]interface{}{
				"reason": err.Error(),
			})
		}
		tracker.Complete("Planning complete")
	}()

	h.Response.Success(c, gin.H{"task_id": taskID})
}

func (h *Handler) GetScenes(c *gin.Context) {
	h.Response.Success(c, h.ProductionService.Scenes())
}

type aspectRatioRequest struct {
	AspectRatio string `json:"aspect_ratio"`
}

func (h *Handler) SetAspectRatio(c *gin.Context) {
	var req aspectRatioRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.AspectRatio) == "" {
		h.Response.BadRequest(c, "aspect_ratio is required")
		return
	}

	h.ProductionService.SetAspectRatio(req.AspectRatio)
	h.Response.Success(c, gin.H{"aspect_ratio": req.AspectRatio})
}

func (h *Handler) sceneIndex(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 1 {
		h.Response.BadRequest(c, "invalid scene index")
		return 0, false
	}
	return index, true
}

func (h *Handler) GenerateSceneImage(c *gin.Context) {
	index, ok := h.sceneIndex(c)
	if !ok {
		return
	}

	url, err := h.ProductionService.GenerateImage(c.Request.Context(), index)
	if err != nil {
		h.Response.HandleError(c, err)
		return
	}

	h.Response.Success(c, gin.H{"index": index, "media_url": url})
}

func (h *Handler) GenerateSceneVideo(c *gin.Context) {
	index, ok := h.sceneIndex(c)
	if !ok {
		return
	}

	url, err := h.ProductionService.GenerateVideo(c.Request.Context(), index)
	if err != nil {
		h.Response.HandleError(c, err)
		return
	}

	h.Response.Success(c, gin.H{"index": index, "video_url": url})
}

func (h *Handler) GenerateSceneAudio(c *gin.Context) {
	index, ok := h.sceneIndex(c)
	if !ok {
		return
	}

	url, err := h.ProductionService.GenerateAudio(c.Request.Context(), index)
	if err != nil {
		h.Response.HandleError(c, err)
		return
	}

	h.Response.Success(c, gin.H{"index": index, "audio_url": url})
}

func (h *Handler) UpscaleSceneImage(c *gin.Context) {
	index, ok := h.sceneIndex(c)
	if !ok {
		return
	}

	url, err := h.ProductionService.UpscaleImage(c.Request.Context(), index)
	if err != nil {
		h.Response.HandleError(c, err)
		return
	}

	h.Response.Success(c, gin.H{"index": index, "media_url": url})
}

// RunImageBatch produces images for every scene in the background.
func (h *Handler) RunImageBatch(c *gin.Context) {
	taskID := uuid.New().String()
	tracker := h.ProgressService.CreateTracker(taskID)

	ctx, cancel := context.WithCancel(context.Background())
	tracker.RegisterCancel(cancel)

	go func() {
		defer cancel()
		if _, err := h.ProductionService.RunImageBatch(ctx, tracker); err != nil {
			tracker.Fail(err.Error())
		}
	}()

	h.Response.Success(c, gin.H{"task_id": taskID})
}

// RunAudioBatch narrates every scene in the background.
func (h *Handler) RunAudioBatch(c *gin.Context) {
	taskID := uuid.New().String()
	tracker := h.ProgressService.CreateTracker(taskID)

	ctx, cancel := context.WithCancel(context.Background())
	tracker.RegisterCancel(cancel)

	go func() {
		defer cancel()
		if err := h.ProductionService.GenerateAllAudio(ctx, tracker); err != nil && ctx.Err() == nil {
			tracker.Fail(err.Error())
		}
	}()

	h.Response.Success(c, gin.H{"task_id": taskID})
}

// ------------------------------------------------
// Task endpoints

func (h *Handler) GetTask(c *gin.Context) {
	tracker, exists := h.ProgressService.GetTracker(c.Param("task_id"))
	if !exists {
		h.Response.NotFound(c, "task not found")
		return
	}

	h.Response.Success(c, gin.H{
		"task_id":  tracker.TaskID,
		"progress": tracker.Progress,
		"message":  tracker.Message,
		"status":   tracker.Status,
	})
}

func (h *Handler) CancelTask(c *gin.Context) {
	taskID := c.Param("task_id")
	if !h.ProgressService.Cancel(taskID) {
		h.Response.NotFound(c, "no running task with that id")
		return
	}

	h.Response.Success(c, gin.H{"task_id": taskID, "cancelled": true})
}

// ------------------------------------------------
// Project endpoints

func (h *Handler) SaveProject(c *gin.Context) {
	snapshot, err := h.ProductionService.SnapshotNow()
	if err != nil {
		h.Response.HandleError(c, err)
		return
	}

	h.Response.Created(c, snapshot)
}

func (h *Handler) ListProjects(c *gin.Context) {
	snapshots, err := h.ProjectService.ListSnapshots()
	if err != nil {
		h.Response.HandleError(c, err)
		return
	}

	h.Response.Success(c, snapshots)
}

func (h *Handler) GetProject(c *gin.Context) {
	snapshot, err := h.ProjectService.GetSnapshot(c.Param("id"))
	if err != nil {
		h.Response.HandleError(c, err)
		return
	}

	h.Response.Success(c, snapshot)
}

func (h *Handler) RestoreProject(c *gin.Context) {
	snapshot, err := h.ProjectService.GetSnapshot(c.Param("id"))
	if err != nil {
		h.Response.HandleError(c, err)
		return
	}

	h.ProductionService.Restore(snapshot)
	h.Response.Success(c, h.ProductionService.Scenes(), "project restored")
}

func (h *Handler) DeleteProject(c *gin.Context) {
	if err := h.ProjectService.DeleteSnapshot(c.Param("id")); err != nil {
		h.Response.HandleError(c, err)
		return
	}

	h.Response.Success(c, gin.H{"deleted": true})
}

// ------------------------------------------------
// Export

func (h *Handler) ExportProject(c *gin.Context) {
	result, err := h.ExportService.ExportScenes(c.Request.Context(), h.ProductionService.Scenes())
	if err != nil {
		h.Response.HandleError(c, err)
		return
	}

	h.Response.DownloadResponse(c, result.Data, result.FileName, result.ContentType)
}

// ------------------------------------------------
// Settings endpoints

func (h *Handler) GetSettings(c *gin.Context) {
	h.Response.Success(c, h.SettingsService.GetSettings())
}

type llmSettingsRequest struct {
	Provider string `json:"provider"`
	APIKey   string `json:"api_key"`
	Model    string `json:"model"`
	BaseURL  string `json:"base_url"`
}

func (h *Handler) UpdateLLMSettings(c *gin.Context) {
	var req llmSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "invalid request body")
		return
	}

	providerConfig := map[string]string{"api_key": req.APIKey}
	if req.Model != "" {
		providerConfig["default_model"] = req.Model
	}
	if req.BaseURL != "" {
		providerConfig["base_url"] = req.BaseURL
	}

	if err := h.SettingsService.UpdateLLMSettings(req.Provider, providerConfig); err != nil {
		h.Response.HandleError(c, err)
		return
	}

	h.Response.Success(c, h.SettingsService.GetSettings(), "provider updated")
}

func (h *Handler) UpdateMediaSettings(c *gin.Context) {
	var updates map[string]string
	if err := c.ShouldBindJSON(&updates); err != nil {
		h.Response.BadRequest(c, "invalid request body")
		return
	}

	if err := h.SettingsService.UpdateMediaSettings(updates); err != nil {
		h.Response.HandleError(c, err)
		return
	}

	h.Response.Success(c, h.SettingsService.GetSettings(), "media settings updated")
}
