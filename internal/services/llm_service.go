// internal/services/llm_service.go
package services

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/hyeonlab/sceneforge/internal/config"
	"github.com/hyeonlab/sceneforge/internal/llm"
)

var ErrLLMNotReady = errors.New("llm service not ready")

// LLMService wraps the configured text provider behind structured-output
// calls. The service starts in a not-ready state when no API key is
// configured and becomes ready once UpdateProvider succeeds.
type LLMService struct {
	providerMutex sync.RWMutex
	provider      llm.Provider
	providerName  string
	defaultModel  string
	isReady       bool
	readyState    string
	cache         *llmCache
}

type llmCache struct {
	mutex      sync.RWMutex
	entries    map[string]*cacheEntry
	expiration time.Duration
}

type cacheEntry struct {
	payload   []byte
	createdAt time.Time
}

// NewLLMService builds the service from the current configuration. A
// missing or invalid configuration yields a not-ready service, not an
// error, so the server can start and be configured through settings.
func NewLLMService() *LLMService {
	service := newBaseLLMService()

	cfg := config.GetCurrentConfig()
	if cfg == nil {
		service.readyState = "failed to retrieve configuration"
		return service
	}

	if cfg.LLMProvider == "" || cfg.LLMConfig == nil || cfg.LLMConfig["api_key"] == "" {
		service.readyState = "API key not configured"
		return service
	}

	provider, err := llm.GetProvider(cfg.LLMProvider, cfg.LLMConfig)
	if err != nil {
		service.readyState = fmt.Sprintf("initialization failed: %v", err)
		return service
	}

	service.provider = provider
	service.providerName = cfg.LLMProvider
	service.defaultModel = cfg.LLMConfig["default_model"]
	service.isReady = true
	service.readyState = "ready"

	return service
}

func newBaseLLMService() *LLMService {
	return &LLMService{
		readyState: "uninitialized",
		cache: &llmCache{
			entries:    make(map[string]*cacheEntry),
			expiration: 30 * time.Minute,
		},
	}
}

// IsReady reports whether a provider is configured and initialized.
func (s *LLMService) IsReady() bool {
	s.providerMutex.RLock()
	defer s.providerMutex.RUnlock()
	return s.provider != nil && s.isReady
}

// GetReadyState returns a human-readable readiness description.
func (s *LLMService) GetReadyState() string {
	s.providerMutex.RLock()
	defer s.providerMutex.RUnlock()
	return s.readyState
}

// GetProviderStatus returns readiness plus its description in one call.
func (s *LLMService) GetProviderStatus() (bool, string) {
	if s == nil {
		return false, "llm service not initialized"
	}
	if s.IsReady() {
		return true, "ready"
	}
	return false, s.GetReadyState()
}

// GetProviderName returns the active provider registry name.
func (s *LLMService) GetProviderName() string {
	s.providerMutex.RLock()
	defer s.providerMutex.RUnlock()
	return s.providerName
}

// UpdateProvider swaps the active provider. The completion cache is
// dropped because cached responses belong to the previous provider.
func (s *LLMService) UpdateProvider(providerName string, providerConfig map[string]string) error {
	provider, err := llm.GetProvider(providerName, providerConfig)
	if err != nil {
		s.providerMutex.Lock()
		s.isReady = false
		s.readyState = fmt.Sprintf("configuration failed: %v", err)
		s.providerMutex.Unlock()
		return err
	}

	s.providerMutex.Lock()
	defer s.providerMutex.Unlock()

	s.provider = provider
	s.providerName = providerName
	s.defaultModel = providerConfig["default_model"]
	s.isReady = true
	s.readyState = "ready"

	s.cache = &llmCache{
		entries:    make(map[string]*cacheEntry),
		expiration: 30 * time.Minute,
	}

	return nil
}

func (s *LLMService) cacheKey(prompt, systemPrompt, model string) string {
	s.providerMutex.RLock()
	providerName := s.providerName
	s.providerMutex.RUnlock()

	hashInput := fmt.Sprintf("%s:::%s:::%s:::%s", prompt, systemPrompt, model, providerName)
	return fmt.Sprintf("%x", md5.Sum([]byte(hashInput)))
}

func (c *llmCache) get(key string) ([]byte, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entry, exists := c.entries[key]
	if !exists || time.Since(entry.createdAt) > c.expiration {
		return nil, false
	}
	return entry.payload, true
}

func (c *llmCache) put(key string, payload []byte) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.entries[key] = &cacheEntry{payload: payload, createdAt: time.Now()}
}

// CreateStructuredCompletion runs a completion and parses the response
// body into outputSchema. The raw text goes through cleanJSONString
// first so fenced or noisy model output still parses.
func (s *LLMService) CreateStructuredCompletion(ctx context.Context, prompt, systemPrompt string, outputSchema interface{}) error {
	s.providerMutex.RLock()
	if !s.isReady || s.provider == nil {
		readyState := s.readyState
		s.providerMutex.RUnlock()
		return fmt.Errorf("%w: %s", ErrLLMNotReady, readyState)
	}
	provider := s.provider
	model := s.defaultModel
	s.providerMutex.RUnlock()

	key := s.cacheKey(prompt, systemPrompt, model)
	if payload, ok := s.cache.get(key); ok {
		if json.Unmarshal(payload, outputSchema) == nil {
			return nil
		}
	}

	structuredSystemPrompt := systemPrompt
	if structuredSystemPrompt != "" {
		structuredSystemPrompt += "\n\n"
	}
	structuredSystemPrompt += "Return your response in valid JSON format, following the provided output schema, without adding explanations or preambles."

	req := llm.CompletionRequest{
		Prompt:       prompt,
		SystemPrompt: structuredSystemPrompt,
		Temperature:  0.3,
		Model:        model,
		ForceJSON:    true,
	}

	resp, err := provider.CompleteText(ctx, req)
	if err != nil {
		return err
	}

	text := cleanJSONString(resp.Text)
	if err := json.Unmarshal([]byte(text), outputSchema); err != nil {
		return fmt.Errorf("failed to parse model response into structured data: %w\nmodel returned: %s", err, text)
	}

	s.cache.put(key, []byte(text))
	return nil
}

var jsonNoiseReplacer = strings.NewReplacer(
	"```json", "",
	"```", "",
	"\ufeff", "",
	" ", " ",
	" ", "\n",
	" ", "\n",
)

var structuralPunctuationMap = map[rune]rune{
	'：': ':',
	'﹕': ':',
	'，': ',',
	'﹐': ',',
	'；': ';',
	'﹔': ';',
	'【': '[',
	'】': ']',
	'［': '[',
	'］': ']',
	'｛': '{',
	'｝': '}',
	'（': '(',
	'）': ')',
}

var quotePairs = map[rune]rune{
	'"': '"',
	'“': '”',
	'”': '”',
	'„': '”',
	'‟': '”',
	'「': '」',
	'」': '」',
	'『': '』',
	'﹁': '﹂',
	'﹂': '﹂',
}

// normalizeJSONStructure rewrites full-width structural punctuation and
// exotic quote pairs to their ASCII JSON equivalents, and drops stray
// non-ASCII runes that appear outside strings.
func normalizeJSONStructure(s string) string {
	if s == "" {
		return s
	}

	var builder strings.Builder
	builder.Grow(len(s))
	inString := false
	escaped := false
	currentClosing := '"'

	for _, r := range s {
		if inString {
			if !escaped && r == '\\' {
				escaped = true
				builder.WriteRune(r)
				continue
			}

			if escaped {
				escaped = false
				builder.WriteRune(r)
				continue
			}

			if r == currentClosing || r == '"' {
				inString = false
				currentClosing = '"'
				builder.WriteRune('"')
				continue
			}

			builder.WriteRune(r)
			continue
		}

		if replacement, ok := structuralPunctuationMap[r]; ok {
			r = replacement
		} else if closing, ok := quotePairs[r]; ok {
			inString = true
			currentClosing = closing
			builder.WriteRune('"')
			continue
		} else if r == '"' {
			inString = true
			currentClosing = '"'
			builder.WriteRune(r)
			continue
		} else if r > unicode.MaxASCII && !unicode.IsSpace(r) {
			continue
		}

		builder.WriteRune(r)
	}

	return builder.String()
}

// cleanJSONString strips markdown fences and surrounding prose from a
// model response, then cuts the text down to the first balanced JSON
// value it contains.
func cleanJSONString(s string) string {
	if s == "" {
		return s
	}

	s = jsonNoiseReplacer.Replace(s)
	s = strings.TrimSpace(s)

	// Zero-width characters and control characters other than
	// newline/tab break json.Unmarshal.
	s = strings.Map(func(r rune) rune {
		switch r {
		case '​', '‌', '‍', '⁠', '\ufeff':
			return -1
		}
		if unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t' {
			return -1
		}
		return r
	}, s)

	// Everything before the first { or [ is preamble.
	start := strings.IndexAny(s, "[{")
	if start == -1 {
		return s
	}

	s = strings.TrimSpace(s[start:])
	if s == "" {
		return s
	}

	s = normalizeJSONStructure(s)

	isArray := len(s) > 0 && s[0] == '['

	// Bracket counting to find the matching close of the opening value.
	balance := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		char := s[i]

		if escaped {
			escaped = false
			continue
		}

		if char == '\\' {
			escaped = true
			continue
		}

		if char == '"' {
			inString = !inString
			continue
		}

		if !inString {
			if isArray {
				if char == '[' {
					balance++
				} else if char == ']' {
					balance--
				}
			} else {
				if char == '{' {
					balance++
				} else if char == '}' {
					balance--
				}
			}

			if balance == 0 {
				return strings.TrimSpace(s[:i+1])
			}
		}
	}

	// No matching close found, fall back to the last plausible one.
	var end int
	if isArray {
		end = strings.LastIndex(s, "]")
	} else {
		end = strings.LastIndex(s, "}")
	}

	if end != -1 {
		return strings.TrimSpace(s[:end+1])
	}

	return strings.TrimSpace(s)
}

// CleanLLMJSONResponse exposes the JSON repair helper.
func CleanLLMJSONResponse(raw string) string {
	return cleanJSONString(raw)
}
