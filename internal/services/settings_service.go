// internal/services/settings_service.go
package services

import (
	"strings"

	"github.com/hyeonlab/sceneforge/internal/config"
	apperrors "github.com/hyeonlab/sceneforge/internal/errors"
	"github.com/hyeonlab/sceneforge/internal/llm"
)

// Settings is the outward-facing settings view. API keys are masked;
// the raw values never leave the server.
type Settings struct {
	LLMProvider string            `json:"llm_provider"`
	LLMModel    string            `json:"llm_model"`
	MediaConfig map[string]string `json:"media_config"`
	DebugMode   bool              `json:"debug_mode"`
}

// SettingsService reads and updates the vendor configuration at
// runtime. LLM changes are pushed into the live LLM service;
// media-client changes are announced through OnMediaConfigChange so the
// server can rebuild its vendor clients.
type SettingsService struct {
	llmService *LLMService

	// OnMediaConfigChange, when set, runs after a successful media
	// settings update with the merged media configuration.
	OnMediaConfigChange func(mediaConfig map[string]string)
}

func NewSettingsService(llmService *LLMService) *SettingsService {
	return &SettingsService{llmService: llmService}
}

// GetSettings returns the current configuration with credentials masked.
func (s *SettingsService) GetSettings() *Settings {
	cfg := config.GetCurrentConfig()
	if cfg == nil {
		return &Settings{}
	}

	masked := make(map[string]string, len(cfg.MediaConfig))
	for k, v := range cfg.MediaConfig {
		if strings.Contains(k, "key") {
			masked[k] = maskKey(v)
		} else {
			masked[k] = v
		}
	}

	return &Settings{
		LLMProvider: cfg.LLMProvider,
		LLMModel:    cfg.LLMConfig["default_model"],
		MediaConfig: masked,
		DebugMode:   cfg.DebugMode,
	}
}

// UpdateLLMSettings switches the text-analysis provider. The provider
// is initialized before anything is persisted, so a bad key never
// replaces a working configuration.
func (s *SettingsService) UpdateLLMSettings(provider string, providerConfig map[string]string) error {
	if strings.TrimSpace(provider) == "" {
		return apperrors.NewValidationError("provider name is required", nil)
	}
	if providerConfig == nil || providerConfig["api_key"] == "" {
		return apperrors.NewValidationError("api_key is required", nil)
	}

	if err := s.llmService.UpdateProvider(provider, providerConfig); err != nil {
		if err == llm.ErrUnknownProvider {
			return apperrors.NewValidationError("unknown provider: "+provider, err)
		}
		return apperrors.NewProcessingError("failed to configure provider", err)
	}

	if err := config.UpdateLLMConfig(provider, providerConfig); err != nil {
		return apperrors.NewProcessingError("failed to persist settings", err)
	}

	return nil
}

// UpdateMediaSettings merges new media-vendor settings into the stored
// configuration. Empty values leave the existing entry untouched.
func (s *SettingsService) UpdateMediaSettings(updates map[string]string) error {
	if len(updates) == 0 {
		return apperrors.NewValidationError("no settings provided", nil)
	}

	cfg := config.GetCurrentConfig()
	if cfg == nil {
		return apperrors.NewProcessingError("configuration not initialized", nil)
	}

	merged := make(map[string]string, len(cfg.MediaConfig))
	for k, v := range cfg.MediaConfig {
		merged[k] = v
	}
	for k, v := range updates {
		if strings.TrimSpace(v) != "" {
			merged[k] = v
		}
	}

	if err := config.UpdateMediaConfig(merged); err != nil {
		return apperrors.NewProcessingError("failed to persist settings", err)
	}

	if s.OnMediaConfigChange != nil {
		s.OnMediaConfigChange(merged)
	}

	return nil
}

func maskKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "****" + key[len(key)-4:]
}
