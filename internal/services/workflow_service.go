// internal/services/workflow_service.go
package services

import (
	"fmt"
	"strings"
	"sync"

	apperrors "github.com/hyeonlab/sceneforge/internal/errors"
	"github.com/hyeonlab/sceneforge/internal/models"
)

// WorkflowState is a snapshot of where the user is in the pipeline and
// what has been decided so far.
type WorkflowState struct {
	Step   models.WorkflowStep `json:"step"`
	Topic  string              `json:"topic,omitempty"`
	Idea   *models.ContentIdea `json:"idea,omitempty"`
	Script *models.FullScript  `json:"script,omitempty"`
}

// WorkflowService tracks progress through the five pipeline steps:
// ideation, script, edit, plan, production. Each forward step requires
// the previous step's output. Stepping backward only moves the cursor;
// produced media lives in the production service and is never discarded
// by navigation.
type WorkflowService struct {
	mutex  sync.RWMutex
	step   models.WorkflowStep
	topic  string
	idea   *models.ContentIdea
	script *models.FullScript
}

func NewWorkflowService() *WorkflowService {
	return &WorkflowService{step: models.StepIdeation}
}

// State returns a copy of the current workflow state.
func (s *WorkflowService) State() WorkflowState {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	state := WorkflowState{Step: s.step, Topic: s.topic}
	if s.idea != nil {
		idea := *s.idea
		state.Idea = &idea
	}
	if s.script != nil {
		script := *s.script
		state.Script = &script
	}
	return state
}

// SetTopic records the topic being explored during ideation.
func (s *WorkflowService) SetTopic(topic string) error {
	if strings.TrimSpace(topic) == "" {
		return apperrors.NewValidationError("topic is required", nil)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.topic = topic
	return nil
}

// SelectIdea commits to one idea and moves the workflow to the script step.
func (s *WorkflowService) SelectIdea(idea models.ContentIdea) error {
	if strings.TrimSpace(idea.Title) == "" {
		return apperrors.NewValidationError("idea title is required", nil)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.idea = &idea
	if s.step < models.StepScript {
		s.step = models.StepScript
	}
	return nil
}

// SetScript stores the generated or edited script and moves the
// workflow to the edit step.
func (s *WorkflowService) SetScript(script models.FullScript) error {
	if strings.TrimSpace(script.Intro) == "" && strings.TrimSpace(script.Body) == "" {
		return apperrors.NewValidationError("script is empty", nil)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.script = &script
	if s.step < models.StepEdit {
		s.step = models.StepEdit
	}
	return nil
}

// Script returns the committed script, or an error when none exists yet.
func (s *WorkflowService) Script() (models.FullScript, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if s.script == nil {
		return models.FullScript{}, apperrors.NewValidationError("no script yet, finish the script step first", nil)
	}
	return *s.script, nil
}

// EnterPlanning moves to the plan step. Requires a committed script.
func (s *WorkflowService) EnterPlanning() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.script == nil {
		return apperrors.NewValidationError("cannot plan without a script", nil)
	}
	s.step = models.StepPlan
	return nil
}

// EnterProduction moves to the production step.
func (s *WorkflowService) EnterProduction() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.script == nil {
		return apperrors.NewValidationError("cannot produce without a script", nil)
	}
	s.step = models.StepProduction
	return nil
}

// GoToStep jumps backward to an earlier step. Forward jumps must go
// through the step-specific transitions so their preconditions hold.
func (s *WorkflowService) GoToStep(step models.WorkflowStep) error {
	if step < models.StepIdeation || step > models.StepProduction {
		return apperrors.NewValidationError(fmt.Sprintf("unknown step %d", step), nil)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if step > s.step {
		return apperrors.NewValidationError(fmt.Sprintf("cannot jump forward to %s", step), nil)
	}
	s.step = step
	return nil
}

// Reset returns the workflow to a blank ideation state.
func (s *WorkflowService) Reset() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.step = models.StepIdeation
	s.topic = ""
	s.idea = nil
	s.script = nil
}
