// internal/services/project_service.go
package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/hyeonlab/sceneforge/internal/errors"
	"github.com/hyeonlab/sceneforge/internal/models"
	"github.com/hyeonlab/sceneforge/internal/storage"
)

const projectsDir = "projects"

// ProjectService persists and recalls project snapshots. Snapshots are
// immutable: saving always writes a new record under a fresh id.
type ProjectService struct {
	storage *storage.FileStorage
}

func NewProjectService(fs *storage.FileStorage) *ProjectService {
	return &ProjectService{storage: fs}
}

// SaveSnapshot writes a timestamped copy of the scene list. The stored
// media is a deep copy with the transient processing flags cleared, so
// a snapshot taken mid-task never restores as "stuck processing".
func (s *ProjectService) SaveSnapshot(script string, media []models.SceneMedia, aspectRatio, artStyle string) (*models.ProjectSnapshot, error) {
	if len(media) == 0 {
		return nil, apperrors.NewValidationError("cannot save a snapshot without scenes", nil)
	}

	stored := models.CloneSceneMedia(media)
	for i := range stored {
		stored[i].IsProcessing = false
		stored[i].IsVideoProcessing = false
		stored[i].IsAudioProcessing = false
		stored[i].IsUpscaling = false
	}

	snapshot := &models.ProjectSnapshot{
		ID:          uuid.New().String(),
		Timestamp:   time.Now().UnixMilli(),
		Script:      script,
		Media:       stored,
		AspectRatio: aspectRatio,
		ArtStyle:    artStyle,
	}

	if err := s.storage.SaveJSONFile(projectsDir, snapshot.ID+".json", snapshot); err != nil {
		return nil, apperrors.NewProcessingError("failed to save project snapshot", err)
	}

	return snapshot, nil
}

// ListSnapshots returns every saved snapshot, newest first.
func (s *ProjectService) ListSnapshots() ([]models.ProjectSnapshot, error) {
	files, err := s.storage.ListFiles(projectsDir, ".json")
	if err != nil {
		return nil, apperrors.NewProcessingError("failed to list project snapshots", err)
	}

	snapshots := make([]models.ProjectSnapshot, 0, len(files))
	for _, name := range files {
		var snapshot models.ProjectSnapshot
		if err := s.storage.LoadJSONFile(projectsDir, name, &snapshot); err != nil {
			// Unreadable records are skipped, not fatal.
			continue
		}
		snapshots = append(snapshots, snapshot)
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].Timestamp > snapshots[j].Timestamp
	})

	return snapshots, nil
}

// GetSnapshot loads one snapshot by id.
func (s *ProjectService) GetSnapshot(id string) (*models.ProjectSnapshot, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.NewValidationError("snapshot id is required", nil)
	}

	var snapshot models.ProjectSnapshot
	if err := s.storage.LoadJSONFile(projectsDir, id+".json", &snapshot); err != nil {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("snapshot %s not found", id), err)
	}

	return &snapshot, nil
}

// DeleteSnapshot removes one snapshot by id.
func (s *ProjectService) DeleteSnapshot(id string) error {
	if strings.TrimSpace(id) == "" {
		return apperrors.NewValidationError("snapshot id is required", nil)
	}

	if !s.storage.FileExists(projectsDir, id+".json") {
		return apperrors.NewNotFoundError(fmt.Sprintf("snapshot %s not found", id), nil)
	}

	if err := s.storage.DeleteFile(projectsDir, id+".json"); err != nil {
		return apperrors.NewProcessingError("failed to delete project snapshot", err)
	}

	return nil
}
