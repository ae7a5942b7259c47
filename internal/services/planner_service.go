// internal/services/planner_service.go
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/hyeonlab/sceneforge/internal/models"
	"github.com/hyeonlab/sceneforge/internal/retry"
	"github.com/hyeonlab/sceneforge/internal/segment"
)

// Fallback prompts used when a batch analysis keeps failing or comes
// back short. Planning never fails outright: every segment gets a
// usable prompt pair.
const (
	FallbackImagePrompt  = "A stylized 3D animation scene."
	FallbackMotionPrompt = "Cinematic pan"
)

// DefaultAnalysisBatchSize is how many segments go into one analysis call.
const DefaultAnalysisBatchSize = 4

// StructuredCompleter is the slice of LLMService the planner needs.
type StructuredCompleter interface {
	CreateStructuredCompletion(ctx context.Context, prompt, systemPrompt string, outputSchema interface{}) error
}

// PlannerService turns script text into an ordered list of scene plans:
// split into segments, then derive an image prompt and a video motion
// prompt for each segment in batches.
type PlannerService struct {
	LLM       StructuredCompleter
	BatchSize int
	Policy    retry.Policy
}

func NewPlannerService(llm StructuredCompleter) *PlannerService {
	return &PlannerService{
		LLM:       llm,
		BatchSize: DefaultAnalysisBatchSize,
		Policy:    retry.AnalysisPolicy,
	}
}

type scenePromptEntry struct {
	Prompt            string `json:"prompt"`
	VideoMotionPrompt string `json:"video_motion_prompt"`
}

// PlanScenes segments the intro and body scripts and derives prompts
// for every segment. The returned plans carry contiguous 1-based
// indexes; the first segments, those cut from the intro, are flagged.
func (s *PlannerService) PlanScenes(ctx context.Context, intro, body, artStyle string, tracker *ProgressTracker) ([]models.ScenePlan, error) {
	segments, introCount := segment.Partition(intro, body)
	if len(segments) == 0 {
		return nil, nil
	}

	if artStyle == "" {
		artStyle = models.DefaultArtStyle
	}

	plans := make([]models.ScenePlan, len(segments))
	for i, text := range segments {
		plans[i] = models.ScenePlan{
			OriginalScriptSegment: text,
			Index:                 i + 1,
			IsIntro:               i < introCount,
		}
	}

	batchSize := s.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultAnalysisBatchSize
	}

	for start := 0; start < len(segments); start += batchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := start + batchSize
		if end > len(segments) {
			end = len(segments)
		}
		batch := segments[start:end]

		entries := s.analyzeBatch(ctx, batch, artStyle)
		for i := range batch {
			plans[start+i].Prompt = entries[i].Prompt
			plans[start+i].VideoMotionPrompt = entries[i].VideoMotionPrompt
		}

		if tracker != nil {
			tracker.UpdateProgress(end*100/len(segments),
				fmt.Sprintf("Analyzed %d of %d segments", end, len(segments)))
		}
	}

	return plans, nil
}

// analyzeBatch asks the model for one prompt pair per segment. Entries
// merge back positionally; a short response leaves the tail on
// fallbacks, surplus entries are dropped. After the retry budget is
// spent the whole batch falls back.
func (s *PlannerService) analyzeBatch(ctx context.Context, batch []string, artStyle string) []scenePromptEntry {
	entries := make([]scenePromptEntry, len(batch))
	for i := range entries {
		entries[i] = scenePromptEntry{
			Prompt:            FallbackImagePrompt,
			VideoMotionPrompt: FallbackMotionPrompt,
		}
	}

	prompt := buildAnalysisPrompt(batch, artStyle)
	systemPrompt := "You are a visual director for short-form video. " +
		"For each numbered script segment, write a detailed still-image prompt " +
		"and a short camera-motion prompt for animating that image."

	var response []scenePromptEntry
	err := s.Policy.Do(ctx, func() error {
		response = nil
		return s.LLM.CreateStructuredCompletion(ctx, prompt, systemPrompt, &response)
	})
	if err != nil {
		return entries
	}

	for i := range entries {
		if i >= len(response) {
			break
		}
		if p := strings.TrimSpace(response[i].Prompt); p != "" {
			entries[i].Prompt = p
		}
		if m := strings.TrimSpace(response[i].VideoMotionPrompt); m != "" {
			entries[i].VideoMotionPrompt = m
		}
	}

	return entries
}

func buildAnalysisPrompt(batch []string, artStyle string) string {
	var sb strings.Builder
	sb.WriteString("Art style: ")
	sb.WriteString(artStyle)
	sb.WriteString("\n\nScript segments:\n")
	for i, text := range batch {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, text)
	}
	sb.WriteString("\nReturn a JSON array with exactly one object per segment, in order. ")
	sb.WriteString(`Each object has "prompt" (the image prompt, incorporating the art style) `)
	sb.WriteString(`and "video_motion_prompt" (one short sentence describing camera movement).`)
	return sb.String()
}
