// internal/services/project_service_test.go
package services

import (
	"testing"
	"time"

	apperrors "github.com/hyeonlab/sceneforge/internal/errors"
	"github.com/hyeonlab/sceneforge/internal/models"
)

func snapshotMedia() []models.SceneMedia {
	return []models.SceneMedia{
		{
			ScenePlan: models.ScenePlan{
				OriginalScriptSegment: "A line of narration.",
				Prompt:                "A scene visual",
				Index:                 1,
			},
			MediaURL: "data:image/png;base64,abc",
		},
	}
}

func TestSaveSnapshot_AssignsFreshIDs(t *testing.T) {
	svc := testProjectService(t)

	first, err := svc.SaveSnapshot("the script", snapshotMedia(), "16:9", "Stylized 3D cinematic")
	if err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}
	second, err := svc.SaveSnapshot("the script", snapshotMedia(), "16:9", "Stylized 3D cinematic")
	if err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}

	if first.ID == "" || second.ID == "" {
		t.Fatal("snapshot saved without an id")
	}
	if first.ID == second.ID {
		t.Errorf("two saves share id %s, want distinct ids", first.ID)
	}

	snapshots, err := svc.ListSnapshots()
	if err != nil {
		t.Fatalf("ListSnapshots() error = %v", err)
	}
	if len(snapshots) != 2 {
		t.Errorf("got %d snapshots, want 2", len(snapshots))
	}
}

func TestSaveSnapshot_ClearsTransientFlags(t *testing.T) {
	svc := testProjectService(t)

	media := snapshotMedia()
	media[0].IsProcessing = true
	media[0].IsVideoProcessing = true
	media[0].IsAudioProcessing = true
	media[0].IsUpscaling = true

	saved, err := svc.SaveSnapshot("the script", media, "16:9", "Stylized 3D cinematic")
	if err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}

	stored, err := svc.GetSnapshot(saved.ID)
	if err != nil {
		t.Fatalf("GetSnapshot() error = %v", err)
	}

	scene := stored.Media[0]
	if scene.IsProcessing || scene.IsVideoProcessing || scene.IsAudioProcessing || scene.IsUpscaling {
		t.Error("stored snapshot kept transient processing flags")
	}
	if scene.MediaURL != "data:image/png;base64,abc" {
		t.Errorf("stored MediaURL = %q, want original", scene.MediaURL)
	}

	// The caller's slice is untouched: the snapshot stores a copy.
	if !media[0].IsProcessing {
		t.Error("SaveSnapshot mutated the caller's scene list")
	}
}

func TestSaveSnapshot_RejectsEmptyMedia(t *testing.T) {
	svc := testProjectService(t)

	if _, err := svc.SaveSnapshot("the script", nil, "16:9", ""); !apperrors.IsValidationError(err) {
		t.Fatalf("SaveSnapshot(nil media) error = %v, want validation error", err)
	}
}

func TestListSnapshots_NewestFirst(t *testing.T) {
	svc := testProjectService(t)

	var ids []string
	for i := 0; i < 3; i++ {
		saved, err := svc.SaveSnapshot("the script", snapshotMedia(), "16:9", "")
		if err != nil {
			t.Fatalf("SaveSnapshot() error = %v", err)
		}
		ids = append(ids, saved.ID)
		// Timestamps have millisecond precision.
		time.Sleep(2 * time.Millisecond)
	}

	snapshots, err := svc.ListSnapshots()
	if err != nil {
		t.Fatalf("ListSnapshots() error = %v", err)
	}
	if len(snapshots) != 3 {
		t.Fatalf("got %d snapshots, want 3", len(snapshots))
	}
	if snapshots[0].ID != ids[2] {
		t.Errorf("first listed = %s, want the most recent %s", snapshots[0].ID, ids[2])
	}
	if snapshots[2].ID != ids[0] {
		t.Errorf("last listed = %s, want the oldest %s", snapshots[2].ID, ids[0])
	}
}

func TestGetSnapshot_RoundTrip(t *testing.T) {
	svc := testProjectService(t)

	saved, err := svc.SaveSnapshot("the full script", snapshotMedia(), "9:16", "Watercolor")
	if err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}

	got, err := svc.GetSnapshot(saved.ID)
	if err != nil {
		t.Fatalf("GetSnapshot() error = %v", err)
	}
	if got.Script != "the full script" {
		t.Errorf("Script = %q", got.Script)
	}
	if got.AspectRatio != "9:16" || got.ArtStyle != "Watercolor" {
		t.Errorf("got aspect=%q style=%q, want 9:16/Watercolor", got.AspectRatio, got.ArtStyle)
	}
	if len(got.Media) != 1 || got.Media[0].Prompt != "A scene visual" {
		t.Errorf("stored media = %+v", got.Media)
	}
}

func TestGetSnapshot_UnknownID(t *testing.T) {
	svc := testProjectService(t)

	if _, err := svc.GetSnapshot("no-such-id"); !apperrors.IsNotFoundError(err) {
		t.Fatalf("GetSnapshot(unknown) error = %v, want not-found error", err)
	}
	if _, err := svc.GetSnapshot("  "); !apperrors.IsValidationError(err) {
		t.Fatalf("GetSnapshot(blank) error = %v, want validation error", err)
	}
}

func TestDeleteSnapshot(t *testing.T) {
	svc := testProjectService(t)

	saved, err := svc.SaveSnapshot("the script", snapshotMedia(), "16:9", "")
	if err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}

	if err := svc.DeleteSnapshot(saved.ID); err != nil {
		t.Fatalf("DeleteSnapshot() error = %v", err)
	}
	if _, err := svc.GetSnapshot(saved.ID); !apperrors.IsNotFoundError(err) {
		t.Errorf("GetSnapshot(deleted) error = %v, want not-found error", err)
	}
	if err := svc.DeleteSnapshot(saved.ID); !apperrors.IsNotFoundError(err) {
		t.Errorf("DeleteSnapshot(twice) error = %v, want not-found error", err)
	}
}
