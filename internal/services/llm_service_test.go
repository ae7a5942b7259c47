// internal/services/llm_service_test.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func TestCleanLLMJSONResponse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "markdown fence stripped",
			input: "```json\n{\"title\": \"Opening\"}\n```",
			want:  `{"title": "Opening"}`,
		},
		{
			name:  "preamble and trailing prose removed",
			input: "Here is the result you asked for:\n{\"prompt\": \"A red door\"}\nLet me know if you need changes.",
			want:  `{"prompt": "A red door"}`,
		},
		{
			name:  "array response kept whole",
			input: "```json\n[{\"prompt\": \"one\"}, {\"prompt\": \"two\"}]\n```",
			want:  `[{"prompt": "one"}, {"prompt": "two"}]`,
		},
		{
			name:  "full width punctuation normalized",
			input: "{“prompt”： “A quiet street”， “video_motion_prompt”： “Slow pan”}",
			want:  `{"prompt": "A quiet street", "video_motion_prompt": "Slow pan"}`,
		},
		{
			name:  "garbage after closing brace removed",
			input: `{"prompt": "cut off"} trailing {`,
			want:  `{"prompt": "cut off"}`,
		},
		{
			name:  "zero width characters dropped",
			input: "​{\"ok\":‍ true}⁠",
			want:  `{"ok": true}`,
		},
		{
			name:  "no json at all returned as-is",
			input: "I cannot answer that.",
			want:  "I cannot answer that.",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CleanLLMJSONResponse(tt.input)
			if got != tt.want {
				t.Errorf("CleanLLMJSONResponse(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCleanLLMJSONResponse_ResultParses(t *testing.T) {
	inputs := []string{
		"```json\n[{\"prompt\": \"a\", \"video_motion_prompt\": \"b\"}]\n```",
		"Sure! {\"prompt\": \"nested {braces} in text\", \"n\": 3}",
		"{“title”：“Fully wide”，“hook”：“quotes and commas”}",
		"[1, 2, 3] and some commentary afterwards",
	}

	for _, input := range inputs {
		cleaned := CleanLLMJSONResponse(input)
		var out interface{}
		if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
			t.Errorf("cleaned output of %q does not parse: %v\ncleaned: %s", input, err, cleaned)
		}
	}
}

func TestCreateStructuredCompletion_NotReady(t *testing.T) {
	service := newBaseLLMService()

	var out struct{}
	err := service.CreateStructuredCompletion(context.Background(), "prompt", "", &out)
	if !errors.Is(err, ErrLLMNotReady) {
		t.Fatalf("CreateStructuredCompletion() on unconfigured service error = %v, want ErrLLMNotReady", err)
	}
}

func TestGetProviderStatus_NotReadyCarriesReason(t *testing.T) {
	service := newBaseLLMService()
	service.readyState = "API key not configured"

	ready, state := service.GetProviderStatus()
	if ready {
		t.Error("GetProviderStatus() ready = true for unconfigured service")
	}
	if state != "API key not configured" {
		t.Errorf("GetProviderStatus() state = %q, want the configured reason", state)
	}
}
