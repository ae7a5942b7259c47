// internal/media/fal.go
package media

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	defaultFalBaseURL = "https://queue.fal.run"
	falUpscaleModel   = "fal-ai/aura-sr"
)

// FalUpscaleClient submits upscale jobs to the fal.ai queue API. Jobs
// run asynchronously; callers poll CheckUpscale for the result.
type FalUpscaleClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewFalUpscaleClient builds a client for the given key.
func NewFalUpscaleClient(apiKey string) *FalUpscaleClient {
	return &FalUpscaleClient{
		apiKey:  apiKey,
		baseURL: defaultFalBaseURL,
		client:  &http.Client{},
	}
}

// SetBaseURL overrides the API endpoint, used by tests.
func (c *FalUpscaleClient) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

func (c *FalUpscaleClient) SubmitUpscale(ctx context.Context, imageURL string) (*UpscaleJob, error) {
	if c.apiKey == "" {
		return nil, errors.New("fal api key not configured")
	}

	requestBody := map[string]string{"image_url": imageURL}
	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return nil, err
	}

	apiURL := fmt.Sprintf("%s/%s", c.baseURL, falUpscaleModel)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Key "+c.apiKey)

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK && httpResp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(httpResp.Body)
		return nil, fmt.Errorf("fal API error (%d): %s", httpResp.StatusCode, string(body))
	}

	var response struct {
		RequestID string `json:"request_id"`
	}
	if err := json.NewDecoder(httpResp.Body).Decode(&response); err != nil {
		return nil, err
	}
	if response.RequestID == "" {
		return nil, errors.New("fal returned no request id")
	}

	return &UpscaleJob{RequestID: response.RequestID}, nil
}

func (c *FalUpscaleClient) CheckUpscale(ctx context.Context, job *UpscaleJob) (*UpscaleStatus, error) {
	statusURL := fmt.Sprintf("%s/%s/requests/%s/status", c.baseURL, falUpscaleModel, job.RequestID)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, statusURL, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Key "+c.apiKey)

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(httpResp.Body)
		return nil, fmt.Errorf("fal status error (%d): %s", httpResp.StatusCode, string(body))
	}

	var response struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(httpResp.Body).Decode(&response); err != nil {
		return nil, err
	}

	switch strings.ToUpper(response.Status) {
	case "COMPLETED":
		imageURL, err := c.fetchResult(ctx, job)
		if err != nil {
			return nil, err
		}
		return &UpscaleStatus{Status: UpscaleStatusCompleted, ImageURL: imageURL}, nil
	case "FAILED":
		return &UpscaleStatus{Status: UpscaleStatusFailed, Error: "upscale job failed"}, nil
	case "IN_QUEUE":
		return &UpscaleStatus{Status: UpscaleStatusQueued}, nil
	default:
		return &UpscaleStatus{Status: UpscaleStatusInProgress}, nil
	}
}

func (c *FalUpscaleClient) fetchResult(ctx context.Context, job *UpscaleJob) (string, error) {
	resultURL := fmt.Sprintf("%s/%s/requests/%s", c.baseURL, falUpscaleModel, job.RequestID)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, resultURL, nil)
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Authorization", "Key "+c.apiKey)

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(httpResp.Body)
		return "", fmt.Errorf("fal result error (%d): %s", httpResp.StatusCode, string(body))
	}

	var response struct {
		Image struct {
			URL string `json:"url"`
		} `json:"image"`
	}
	if err := json.NewDecoder(httpResp.Body).Decode(&response); err != nil {
		return "", err
	}
	if response.Image.URL == "" {
		return "", errors.New("fal result carried no image url")
	}

	return response.Image.URL, nil
}
