// internal/media/elevenlabs.go
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

const defaultElevenLabsBaseURL = "https://api.elevenlabs.io/v1"

// ElevenLabsClient synthesizes narration audio through the ElevenLabs
// text-to-speech API and returns it as a data URI.
type ElevenLabsClient struct {
	apiKey  string
	voiceID string
	baseURL string
	client  *http.Client
}

// NewElevenLabsClient builds a client for the given key and voice.
func NewElevenLabsClient(apiKey, voiceID string) *ElevenLabsClient {
	return &ElevenLabsClient{
		apiKey:  apiKey,
		voiceID: voiceID,
		baseURL: defaultElevenLabsBaseURL,
		client:  &http.Client{},
	}
}

// SetBaseURL overrides the API endpoint, used by tests.
func (c *ElevenLabsClient) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

func (c *ElevenLabsClient) Synthesize(ctx context.Context, text string) (string, error) {
	if c.apiKey == "" {
		return "", errors.New("elevenlabs api key not configured")
	}

	requestBody := map[string]interface{}{
		"text":     text,
		"model_id": "eleven_multilingual_v2",
		"voice_settings": map[string]float64{
			"stability":        0.5,
			"similarity_boost": 0.75,
		},
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return "", err
	}

	apiURL := fmt.Sprintf("%s/text-to-speech/%s", c.baseURL, c.voiceID)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("xi-api-key", c.apiKey)

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(httpResp.Body)
		return "", fmt.Errorf("elevenlabs API error (%d): %s", httpResp.StatusCode, string(body))
	}

	audioData, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", err
	}
	if len(audioData) == 0 {
		return "", errors.New("elevenlabs returned no audio data")
	}

	return EncodeDataURI("audio/mpeg", audioData), nil
}
