// internal/services/script_service.go
package services

import (
	"context"
	"fmt"
	"strings"

	apperrors "github.com/hyeonlab/sceneforge/internal/errors"
	"github.com/hyeonlab/sceneforge/internal/models"
)

// ScriptService covers the writing side of the workflow: topic
// ideation, full script generation, targeted refinement and thumbnail
// copy.
type ScriptService struct {
	LLM StructuredCompleter
}

func NewScriptService(llm StructuredCompleter) *ScriptService {
	return &ScriptService{LLM: llm}
}

// GenerateIdeas suggests video concepts for a topic, each with a title
// and an opening hook.
func (s *ScriptService) GenerateIdeas(ctx context.Context, topic string) ([]models.ContentIdea, error) {
	if strings.TrimSpace(topic) == "" {
		return nil, apperrors.NewValidationError("topic is required", nil)
	}

	prompt := fmt.Sprintf(
		`Suggest 10 short-form video concepts about the topic: %q.
Answer in the same language as the topic.
Return a JSON array of objects with "title" (a punchy video title) and "hook" (the first sentence that grabs the viewer).`,
		topic)
	systemPrompt := "You are a content strategist for short-form video."

	var ideas []models.ContentIdea
	if err := s.LLM.CreateStructuredCompletion(ctx, prompt, systemPrompt, &ideas); err != nil {
		return nil, apperrors.NewUpstreamError("idea generation failed", err)
	}
	if len(ideas) == 0 {
		return nil, apperrors.NewUpstreamError("idea generation returned nothing", nil)
	}

	return ideas, nil
}

// GenerateFullScript writes a complete narration script for a chosen
// idea, split into the intro hook and the main body.
func (s *ScriptService) GenerateFullScript(ctx context.Context, title, hook string) (*models.FullScript, error) {
	if strings.TrimSpace(title) == "" {
		return nil, apperrors.NewValidationError("title is required", nil)
	}

	prompt := fmt.Sprintf(
		`Write a narration script for a short video titled %q.
Open with this hook or a close variation of it: %q.
Aim for roughly 8000 characters of narration in total.
Return a JSON object with "intro" (the opening hook, 1-2 sentences) and "body" (the rest of the narration).`,
		title, hook)
	systemPrompt := "You are a scriptwriter for narrated short-form video. Write tight, spoken-word prose."

	var script models.FullScript
	if err := s.LLM.CreateStructuredCompletion(ctx, prompt, systemPrompt, &script); err != nil {
		return nil, apperrors.NewUpstreamError("script generation failed", err)
	}
	if strings.TrimSpace(script.Intro) == "" && strings.TrimSpace(script.Body) == "" {
		return nil, apperrors.NewUpstreamError("script generation returned nothing", nil)
	}

	return &script, nil
}

// RefineScript rewrites an existing script following a free-form
// instruction, returning the full revised text.
func (s *ScriptService) RefineScript(ctx context.Context, current, instruction string) (string, error) {
	if strings.TrimSpace(current) == "" {
		return "", apperrors.NewValidationError("script text is required", nil)
	}
	if strings.TrimSpace(instruction) == "" {
		return "", apperrors.NewValidationError("refinement instruction is required", nil)
	}

	prompt := fmt.Sprintf(
		"Revise the following narration script.\n\nInstruction: %s\n\nScript:\n%s\n\nReturn a JSON object with \"script\" holding the full revised text.",
		instruction, current)
	systemPrompt := "You are a script editor. Apply the instruction while keeping the original voice and length."

	var result struct {
		Script string `json:"script"`
	}
	if err := s.LLM.CreateStructuredCompletion(ctx, prompt, systemPrompt, &result); err != nil {
		return "", apperrors.NewUpstreamError("script refinement failed", err)
	}
	if strings.TrimSpace(result.Script) == "" {
		return "", apperrors.NewUpstreamError("script refinement returned nothing", nil)
	}

	return result.Script, nil
}

// GenerateThumbnailText writes the two-line thumbnail overlay for a
// finished script.
func (s *ScriptService) GenerateThumbnailText(ctx context.Context, script string) (*models.ThumbnailText, error) {
	if strings.TrimSpace(script) == "" {
		return nil, apperrors.NewValidationError("script text is required", nil)
	}

	prompt := fmt.Sprintf(
		"Write thumbnail overlay text for a video with this script:\n\n%s\n\nReturn a JSON object with \"top_text\" and \"bottom_text\", each at most 5 words, in the script's language.",
		script)
	systemPrompt := "You write high-contrast thumbnail copy that makes people click without misleading them."

	var text models.ThumbnailText
	if err := s.LLM.CreateStructuredCompletion(ctx, prompt, systemPrompt, &text); err != nil {
		return nil, apperrors.NewUpstreamError("thumbnail text generation failed", err)
	}

	return &text, nil
}
