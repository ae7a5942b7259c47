// internal/media/gemini_image.go
package media

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiImageClient generates still images through the Gemini
// generateContent API and returns them as data URIs.
type GeminiImageClient struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewGeminiImageClient builds a client for the given key and image model.
func NewGeminiImageClient(apiKey, model string) *GeminiImageClient {
	return &GeminiImageClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultGeminiBaseURL,
		client:  &http.Client{},
	}
}

// SetBaseURL overrides the API endpoint, used by tests.
func (c *GeminiImageClient) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

func (c *GeminiImageClient) GenerateImage(ctx context.Context, req ImageRequest) (string, error) {
	if c.apiKey == "" {
		return "", errors.New("gemini api key not configured")
	}

	requestBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{"role": "user", "parts": []map[string]string{{"text": req.Prompt}}},
		},
		"generationConfig": map[string]interface{}{
			"responseModalities": []string{"IMAGE"},
			"imageConfig": map[string]string{
				"aspectRatio": req.AspectRatio,
			},
		},
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return "", err
	}

	apiURL := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(httpResp.Body)
		return "", fmt.Errorf("gemini image API error (%d): %s", httpResp.StatusCode, string(body))
	}

	var response struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					InlineData *struct {
						MimeType string `json:"mimeType"`
						Data     string `json:"data"`
					} `json:"inlineData"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}

	if err := json.NewDecoder(httpResp.Body).Decode(&response); err != nil {
		return "", err
	}

	for _, candidate := range response.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && part.InlineData.Data != "" {
				mimeType := part.InlineData.MimeType
				if mimeType == "" {
					mimeType = "image/png"
				}
				return fmt.Sprintf("data:%s;base64,%s", mimeType, part.InlineData.Data), nil
			}
		}
	}

	return "", errors.New("gemini returned no image data")
}
