// internal/services/export_service.go
package services

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/hyeonlab/sceneforge/internal/errors"
	"github.com/hyeonlab/sceneforge/internal/media"
	"github.com/hyeonlab/sceneforge/internal/models"
)

// ExportResult is a finished export archive ready to stream to the client.
type ExportResult struct {
	FileName    string
	ContentType string
	Data        []byte
	SceneCount  int
	SkippedURLs int
}

// ExportService bundles produced scene assets into a zip archive:
// scene-N.png for images, scene-N.mp4 for clips, scene-N.mp3 for
// narration, plus script.txt with the full narration text.
type ExportService struct {
	httpClient *http.Client
}

func NewExportService() *ExportService {
	return &ExportService{
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// ExportScenes writes every available asset of the scene list into a
// zip. Data URIs decode locally; plain URLs (upscaled images) are
// fetched. Scenes with no media at all are skipped, an asset that fails
// to resolve is skipped and counted rather than failing the archive.
func (s *ExportService) ExportScenes(ctx context.Context, scenes []models.SceneMedia) (*ExportResult, error) {
	if len(scenes) == 0 {
		return nil, apperrors.NewValidationError("nothing to export", nil)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	result := &ExportResult{
		FileName:    fmt.Sprintf("sceneforge-export-%s.zip", time.Now().Format("20060102-150405")),
		ContentType: "application/zip",
	}

	var script strings.Builder
	exported := false

	for _, scene := range scenes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if scene.OriginalScriptSegment != "" {
			script.WriteString(scene.OriginalScriptSegment)
			script.WriteString("\n\n")
		}

		sceneExported := false
		assets := []struct {
			url  string
			name string
		}{
			{scene.MediaURL, fmt.Sprintf("scene-%d.png", scene.Index)},
			{scene.VideoURL, fmt.Sprintf("scene-%d.mp4", scene.Index)},
			{scene.AudioURL, fmt.Sprintf("scene-%d.mp3", scene.Index)},
		}

		for _, asset := range assets {
			if asset.url == "" {
				continue
			}

			data, err := s.resolveAsset(ctx, asset.url)
			if err != nil {
				result.SkippedURLs++
				continue
			}

			if err := writeZipEntry(zw, asset.name, data); err != nil {
				zw.Close()
				return nil, apperrors.NewProcessingError("failed to write export archive", err)
			}
			sceneExported = true
		}

		if sceneExported {
			result.SceneCount++
			exported = true
		}
	}

	if !exported {
		zw.Close()
		return nil, apperrors.NewValidationError("no scene has produced media to export", nil)
	}

	if script.Len() > 0 {
		if err := writeZipEntry(zw, "script.txt", []byte(script.String())); err != nil {
			zw.Close()
			return nil, apperrors.NewProcessingError("failed to write export archive", err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, apperrors.NewProcessingError("failed to finalize export archive", err)
	}

	result.Data = buf.Bytes()
	return result, nil
}

func (s *ExportService) resolveAsset(ctx context.Context, url string) ([]byte, error) {
	if strings.HasPrefix(url, "data:") {
		_, data, err := media.DecodeDataURI(url)
		return data, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("asset fetch failed (%d)", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

func writeZipEntry(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
