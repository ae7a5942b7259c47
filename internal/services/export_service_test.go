// internal/services/export_service_test.go
package services

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "github.com/hyeonlab/sceneforge/internal/errors"
	"github.com/hyeonlab/sceneforge/internal/models"
)

func dataURI(mimeType string, payload []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(payload)
}

func readZip(t *testing.T, data []byte) map[string][]byte {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("zip.NewReader() error = %v", err)
	}

	entries := make(map[string][]byte, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read %s: %v", f.Name, err)
		}
		entries[f.Name] = content
	}
	return entries
}

func TestExportScenes_BundlesAssetsAndScript(t *testing.T) {
	scenes := []models.SceneMedia{
		{
			ScenePlan: models.ScenePlan{Index: 1, OriginalScriptSegment: "First line of narration."},
			MediaURL:  dataURI("image/png", []byte("png-bytes-1")),
			AudioURL:  dataURI("audio/mpeg", []byte("mp3-bytes-1")),
		},
		{
			ScenePlan: models.ScenePlan{Index: 2, OriginalScriptSegment: "Second line of narration."},
			MediaURL:  dataURI("image/png", []byte("png-bytes-2")),
			VideoURL:  dataURI("video/mp4", []byte("mp4-bytes-2")),
		},
	}

	result, err := NewExportService().ExportScenes(context.Background(), scenes)
	if err != nil {
		t.Fatalf("ExportScenes() error = %v", err)
	}
	if result.SceneCount != 2 {
		t.Errorf("SceneCount = %d, want 2", result.SceneCount)
	}
	if result.SkippedURLs != 0 {
		t.Errorf("SkippedURLs = %d, want 0", result.SkippedURLs)
	}
	if result.ContentType != "application/zip" {
		t.Errorf("ContentType = %q, want application/zip", result.ContentType)
	}
	if !strings.HasPrefix(result.FileName, "sceneforge-export-") || !strings.HasSuffix(result.FileName, ".zip") {
		t.Errorf("FileName = %q, want sceneforge-export-*.zip", result.FileName)
	}

	entries := readZip(t, result.Data)
	if got := string(entries["scene-1.png"]); got != "png-bytes-1" {
		t.Errorf("scene-1.png content = %q", got)
	}
	if got := string(entries["scene-2.mp4"]); got != "mp4-bytes-2" {
		t.Errorf("scene-2.mp4 content = %q", got)
	}
	if _, ok := entries["scene-1.mp3"]; !ok {
		t.Error("scene-1.mp3 missing from archive")
	}
	if _, ok := entries["scene-2.mp3"]; ok {
		t.Error("scene-2.mp3 present but scene 2 has no audio")
	}

	script := string(entries["script.txt"])
	if !strings.Contains(script, "First line of narration.") || !strings.Contains(script, "Second line of narration.") {
		t.Errorf("script.txt missing narration text: %q", script)
	}
}

func TestExportScenes_FetchesPlainURLs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("upscaled-bytes"))
	}))
	defer server.Close()

	scenes := []models.SceneMedia{
		{ScenePlan: models.ScenePlan{Index: 1}, MediaURL: server.URL + "/upscaled.png"},
	}

	result, err := NewExportService().ExportScenes(context.Background(), scenes)
	if err != nil {
		t.Fatalf("ExportScenes() error = %v", err)
	}

	entries := readZip(t, result.Data)
	if got := string(entries["scene-1.png"]); got != "upscaled-bytes" {
		t.Errorf("scene-1.png content = %q, want fetched bytes", got)
	}
}

func TestExportScenes_SkipsUnresolvableAssets(t *testing.T) {
	scenes := []models.SceneMedia{
		{
			ScenePlan: models.ScenePlan{Index: 1},
			MediaURL:  dataURI("image/png", []byte("good")),
			AudioURL:  "data:audio/mpeg;base64,!!!not-base64!!!",
		},
	}

	result, err := NewExportService().ExportScenes(context.Background(), scenes)
	if err != nil {
		t.Fatalf("ExportScenes() error = %v", err)
	}
	if result.SkippedURLs != 1 {
		t.Errorf("SkippedURLs = %d, want 1", result.SkippedURLs)
	}

	entries := readZip(t, result.Data)
	if _, ok := entries["scene-1.png"]; !ok {
		t.Error("scene-1.png missing, good asset should survive a bad sibling")
	}
	if _, ok := entries["scene-1.mp3"]; ok {
		t.Error("scene-1.mp3 present for an unresolvable asset")
	}
}

func TestExportScenes_NoMediaAnywhere(t *testing.T) {
	scenes := []models.SceneMedia{
		{ScenePlan: models.ScenePlan{Index: 1, OriginalScriptSegment: "text only"}},
	}

	_, err := NewExportService().ExportScenes(context.Background(), scenes)
	if !apperrors.IsValidationError(err) {
		t.Fatalf("ExportScenes() with no media error = %v, want validation error", err)
	}
}

func TestExportScenes_EmptySceneList(t *testing.T) {
	_, err := NewExportService().ExportScenes(context.Background(), nil)
	if !apperrors.IsValidationError(err) {
		t.Fatalf("ExportScenes(nil) error = %v, want validation error", err)
	}
}
