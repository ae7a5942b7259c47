// internal/config/config.go
package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"
)

var (
	currentConfig *AppConfig
	configMutex   sync.RWMutex
	configFile    string
)

// AppConfig holds the full application configuration. Vendor credentials
// from the environment act as server-level defaults; per-user credentials
// stored by the settings service take precedence at call time.
type AppConfig struct {
	Port      string `json:"port"`
	DataDir   string `json:"data_dir"`
	LogDir    string `json:"log_dir"`
	DebugMode bool   `json:"debug_mode"`

	// Text-analysis provider selection plus its key/value options
	// (api_key, default_model, base_url).
	LLMProvider string            `json:"llm_provider"`
	LLMConfig   map[string]string `json:"llm_config"`

	// Media vendor credentials and model names.
	MediaConfig map[string]string `json:"media_config"`
}

// Config is the base environment-derived configuration.
type Config struct {
	Port          string
	GeminiAPIKey  string
	ElevenLabsKey string
	FalKey        string
	DataDir       string
	LogDir        string
	DebugMode     bool
}

// Load reads configuration from the environment, with an optional .env file.
func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		Port:          getEnv("PORT", "8080"),
		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		ElevenLabsKey: getEnv("ELEVENLABS_API_KEY", ""),
		FalKey:        getEnv("FAL_API_KEY", ""),
		DataDir:       getEnvPath("DATA_DIR", "data"),
		LogDir:        getEnvPath("LOG_DIR", "logs"),
		DebugMode:     getEnvBool("DEBUG_MODE", false),
	}

	if config.GeminiAPIKey == "" {
		log.Println("warning: GEMINI_API_KEY not set; configure a key in settings before planning or production")
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvPath(key, defaultValue string) string {
	path := getEnv(key, defaultValue)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.MkdirAll(path, 0755); err != nil {
			fmt.Printf("warning: failed to create directory %s: %v\n", path, err)
		}
	}

	return path
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// InitConfig initializes the configuration singleton, merging any previously
// saved config file with the current environment.
func InitConfig(dataDir string) error {
	configFile = filepath.Join(dataDir, "config.json")

	baseConfig, err := Load()
	if err != nil {
		return err
	}

	configMutex.Lock()
	defer configMutex.Unlock()

	currentConfig = &AppConfig{
		Port:        baseConfig.Port,
		DataDir:     baseConfig.DataDir,
		LogDir:      baseConfig.LogDir,
		DebugMode:   baseConfig.DebugMode,
		LLMProvider: "google",
		LLMConfig: map[string]string{
			"api_key":       baseConfig.GeminiAPIKey,
			"default_model": "gemini-3-flash-preview",
		},
		MediaConfig: map[string]string{
			"gemini_api_key":   baseConfig.GeminiAPIKey,
			"image_model":      "gemini-3-pro-image-preview",
			"video_model":      "veo-3.1-fast-generate-preview",
			"elevenlabs_key":   baseConfig.ElevenLabsKey,
			"elevenlabs_voice": "nPczCjzI2devNBz1zWbc",
			"fal_key":          baseConfig.FalKey,
		},
	}

	if _, err := os.Stat(configFile); !os.IsNotExist(err) {
		data, err := os.ReadFile(configFile)
		if err == nil {
			var savedConfig AppConfig
			if json.Unmarshal(data, &savedConfig) == nil {
				// Keep vendor settings from the file, environment wins for
				// server basics.
				savedConfig.Port = baseConfig.Port
				savedConfig.DataDir = baseConfig.DataDir
				savedConfig.LogDir = baseConfig.LogDir
				savedConfig.DebugMode = baseConfig.DebugMode

				if savedConfig.LLMConfig != nil && savedConfig.LLMConfig["api_key"] == "" {
					savedConfig.LLMConfig["api_key"] = baseConfig.GeminiAPIKey
				}
				if savedConfig.MediaConfig == nil {
					savedConfig.MediaConfig = currentConfig.MediaConfig
				}

				currentConfig = &savedConfig
			}
		}
	}

	return saveConfigLocked()
}

// GetCurrentConfig returns a copy of the current configuration.
func GetCurrentConfig() *AppConfig {
	configMutex.RLock()
	defer configMutex.RUnlock()

	if currentConfig == nil {
		baseConfig, _ := Load()
		return &AppConfig{
			Port:        baseConfig.Port,
			DataDir:     baseConfig.DataDir,
			LogDir:      baseConfig.LogDir,
			DebugMode:   baseConfig.DebugMode,
			LLMProvider: "google",
			LLMConfig: map[string]string{
				"api_key": baseConfig.GeminiAPIKey,
			},
		}
	}

	configCopy := *currentConfig
	return &configCopy
}

// UpdateLLMConfig replaces the text-analysis provider configuration.
func UpdateLLMConfig(provider string, cfg map[string]string) error {
	configMutex.Lock()
	defer configMutex.Unlock()

	if currentConfig == nil {
		return fmt.Errorf("configuration not initialized")
	}

	currentConfig.LLMProvider = provider
	currentConfig.LLMConfig = cfg

	return saveConfigLocked()
}

// UpdateMediaConfig replaces the media vendor configuration.
func UpdateMediaConfig(cfg map[string]string) error {
	configMutex.Lock()
	defer configMutex.Unlock()

	if currentConfig == nil {
		return fmt.Errorf("configuration not initialized")
	}

	currentConfig.MediaConfig = cfg

	return saveConfigLocked()
}

// SaveConfig persists the current configuration to its file.
func SaveConfig() error {
	configMutex.Lock()
	defer configMutex.Unlock()
	return saveConfigLocked()
}

// saveConfigLocked requires the caller to hold configMutex.
func saveConfigLocked() error {
	if currentConfig == nil {
		return fmt.Errorf("no configuration to save")
	}

	dir := filepath.Dir(configFile)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(currentConfig, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	return os.WriteFile(configFile, data, 0644)
}
