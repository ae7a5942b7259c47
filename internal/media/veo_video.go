// internal/media/veo_video.go
package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// VeoVideoClient generates short video clips through the Veo
// long-running operation API. GenerateVideo blocks until the operation
// finishes, polling at pollInterval.
type VeoVideoClient struct {
	apiKey       string
	model        string
	baseURL      string
	client       *http.Client
	pollInterval time.Duration
}

// NewVeoVideoClient builds a client for the given key and video model.
func NewVeoVideoClient(apiKey, model string) *VeoVideoClient {
	return &VeoVideoClient{
		apiKey:       apiKey,
		model:        model,
		baseURL:      defaultGeminiBaseURL,
		client:       &http.Client{},
		pollInterval: 10 * time.Second,
	}
}

// SetBaseURL overrides the API endpoint, used by tests.
func (c *VeoVideoClient) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

// SetPollInterval overrides the operation poll cadence, used by tests.
func (c *VeoVideoClient) SetPollInterval(d time.Duration) {
	c.pollInterval = d
}

func (c *VeoVideoClient) GenerateVideo(ctx context.Context, req VideoRequest) (string, error) {
	if c.apiKey == "" {
		return "", errors.New("gemini api key not configured")
	}

	operationName, err := c.startOperation(ctx, req)
	if err != nil {
		return "", err
	}

	videoURI, err := c.waitForOperation(ctx, operationName)
	if err != nil {
		return "", err
	}

	return c.fetchVideo(ctx, videoURI)
}

func (c *VeoVideoClient) startOperation(ctx context.Context, req VideoRequest) (string, error) {
	instance := map[string]interface{}{"prompt": req.Prompt}
	if req.ImageDataURI != "" {
		mimeType, data, err := DecodeDataURI(req.ImageDataURI)
		if err != nil {
			return "", fmt.Errorf("decoding seed image: %w", err)
		}
		instance["image"] = map[string]string{
			"bytesBase64Encoded": base64.StdEncoding.EncodeToString(data),
			"mimeType":           mimeType,
		}
	}

	requestBody := map[string]interface{}{
		"instances": []map[string]interface{}{instance},
		"parameters": map[string]string{
			"aspectRatio": req.AspectRatio,
		},
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return "", err
	}

	apiURL := fmt.Sprintf("%s/models/%s:predictLongRunning?key=%s", c.baseURL, c.model, c.apiKey)

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
		return "", fmt.Errorf("veo API error (%d): %s", httpResp.StatusCode, string(body))
	}

	var response struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(httpResp.Body).Decode(&response); err != nil {
		return "", err
	}
	if response.Name == "" {
		return "", errors.New("veo returned no operation name")
	}

	return response.Name, nil
}

func (c *VeoVideoClient) waitForOperation(ctx context.Context, operationName string) (string, error) {
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(c.pollInterval):
		}

		apiURL := fmt.Sprintf("%s/%s?key=%s", c.baseURL, operationName, c.apiKey)

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
		if err != nil {
			return "", err
		}

		httpResp, err := c.client.Do(httpReq)
		if err != nil {
			return "", err
		}

		var response struct {
			Done  bool `json:"done"`
			Error *struct {
				Message string `json:"message"`
			} `json:"error"`
			Response struct {
				GenerateVideoResponse struct {
					GeneratedSamples []struct {
						Video struct {
							URI string `json:"uri"`
						} `json:"video"`
					} `json:"generatedSamples"`
				} `json:"generateVideoResponse"`
			} `json:"response"`
		}
		err = json.NewDecoder(httpResp.Body).Decode(&response)
		httpResp.Body.Close()
		if err != nil {
			return "", err
		}

		if !response.Done {
			continue
		}
		if response.Error != nil {
			return "", fmt.Errorf("veo operation failed: %s", response.Error.Message)
		}

		samples := response.Response.GenerateVideoResponse.GeneratedSamples
		if len(samples) == 0 || samples[0].Video.URI == "" {
			return "", errors.New("veo operation finished without a video")
		}
		return samples[0].Video.URI, nil
	}
}

func (c *VeoVideoClient) fetchVideo(ctx context.Context, videoURI string) (string, error) {
	apiURL := fmt.Sprintf("%s&key=%s", videoURI, c.apiKey)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return "", err
	}

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("downloading video failed (%d)", httpResp.StatusCode)
	}

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", err
	}

	return EncodeDataURI("video/mp4", data), nil
}
