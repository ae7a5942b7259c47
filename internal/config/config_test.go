package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func initTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("DATA_DIR", dir)
	t.Setenv("LOG_DIR", filepath.Join(dir, "logs"))
	t.Setenv("GEMINI_API_KEY", "test-key")
	if err := InitConfig(dir); err != nil {
		t.Fatalf("InitConfig() error = %v", err)
	}
	return dir
}

func TestInitConfig_WritesConfigFile(t *testing.T) {
	dir := initTestConfig(t)

	if _, err := os.Stat(filepath.Join(dir, "config.json")); err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	cfg := GetCurrentConfig()
	if cfg.LLMConfig["api_key"] != "test-key" {
		t.Errorf("api_key = %q, want %q", cfg.LLMConfig["api_key"], "test-key")
	}
}

// SaveConfig must serialize against concurrent settings updates; run
// with -race to catch unlocked access to the shared config.
func TestSaveConfig_ConcurrentWithUpdates(t *testing.T) {
	initTestConfig(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if err := SaveConfig(); err != nil {
				t.Errorf("SaveConfig() error = %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			if err := UpdateMediaConfig(map[string]string{"fal_key": "k"}); err != nil {
				t.Errorf("UpdateMediaConfig() error = %v", err)
			}
		}()
	}
	wg.Wait()
}
