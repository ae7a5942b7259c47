// internal/services/workflow_service_test.go
package services

import (
	"testing"

	apperrors "github.com/hyeonlab/sceneforge/internal/errors"
	"github.com/hyeonlab/sceneforge/internal/models"
)

func committedWorkflow(t *testing.T) *WorkflowService {
	t.Helper()
	wf := NewWorkflowService()
	if err := wf.SetTopic("space elevators"); err != nil {
		t.Fatalf("SetTopic() error = %v", err)
	}
	if err := wf.SelectIdea(models.ContentIdea{Title: "Riding the cable", Hook: "What if stairs went to orbit?"}); err != nil {
		t.Fatalf("SelectIdea() error = %v", err)
	}
	if err := wf.SetScript(models.FullScript{Intro: "What if stairs went to orbit?", Body: "The cable has to be stronger than steel."}); err != nil {
		t.Fatalf("SetScript() error = %v", err)
	}
	return wf
}

func TestWorkflow_StartsAtIdeation(t *testing.T) {
	wf := NewWorkflowService()
	if got := wf.State().Step; got != models.StepIdeation {
		t.Errorf("initial step = %s, want %s", got, models.StepIdeation)
	}
}

func TestWorkflow_SelectIdeaAdvancesToScript(t *testing.T) {
	wf := NewWorkflowService()
	if err := wf.SelectIdea(models.ContentIdea{Title: "Riding the cable"}); err != nil {
		t.Fatalf("SelectIdea() error = %v", err)
	}
	if got := wf.State().Step; got != models.StepScript {
		t.Errorf("step after SelectIdea = %s, want %s", got, models.StepScript)
	}
}

func TestWorkflow_SetScriptAdvancesToEdit(t *testing.T) {
	wf := NewWorkflowService()
	if err := wf.SetScript(models.FullScript{Intro: "hook", Body: "body"}); err != nil {
		t.Fatalf("SetScript() error = %v", err)
	}
	if got := wf.State().Step; got != models.StepEdit {
		t.Errorf("step after SetScript = %s, want %s", got, models.StepEdit)
	}
}

func TestWorkflow_SetScriptDoesNotMoveBackward(t *testing.T) {
	wf := committedWorkflow(t)
	if err := wf.EnterPlanning(); err != nil {
		t.Fatalf("EnterPlanning() error = %v", err)
	}

	// Re-editing the script from the plan step keeps the cursor there.
	if err := wf.SetScript(models.FullScript{Intro: "revised hook", Body: "revised body"}); err != nil {
		t.Fatalf("SetScript() error = %v", err)
	}
	if got := wf.State().Step; got != models.StepPlan {
		t.Errorf("step after re-edit = %s, want %s", got, models.StepPlan)
	}
}

func TestWorkflow_PlanningRequiresScript(t *testing.T) {
	wf := NewWorkflowService()
	if err := wf.EnterPlanning(); !apperrors.IsValidationError(err) {
		t.Errorf("EnterPlanning() without script error = %v, want validation error", err)
	}
	if err := wf.EnterProduction(); !apperrors.IsValidationError(err) {
		t.Errorf("EnterProduction() without script error = %v, want validation error", err)
	}
}

func TestWorkflow_GoToStepRejectsForwardJumps(t *testing.T) {
	wf := NewWorkflowService()
	if err := wf.GoToStep(models.StepProduction); !apperrors.IsValidationError(err) {
		t.Errorf("GoToStep(production) from ideation error = %v, want validation error", err)
	}
}

func TestWorkflow_BackwardNavigationKeepsDecisions(t *testing.T) {
	wf := committedWorkflow(t)
	if err := wf.EnterPlanning(); err != nil {
		t.Fatalf("EnterPlanning() error = %v", err)
	}

	if err := wf.GoToStep(models.StepIdeation); err != nil {
		t.Fatalf("GoToStep(ideation) error = %v", err)
	}

	state := wf.State()
	if state.Step != models.StepIdeation {
		t.Errorf("step = %s, want %s", state.Step, models.StepIdeation)
	}
	if state.Idea == nil || state.Idea.Title != "Riding the cable" {
		t.Error("idea lost on backward navigation")
	}
	if state.Script == nil {
		t.Error("script lost on backward navigation")
	}
	if _, err := wf.Script(); err != nil {
		t.Errorf("Script() after backward navigation error = %v", err)
	}
}

func TestWorkflow_GoToStepRejectsUnknownStep(t *testing.T) {
	wf := NewWorkflowService()
	if err := wf.GoToStep(models.WorkflowStep(99)); !apperrors.IsValidationError(err) {
		t.Errorf("GoToStep(99) error = %v, want validation error", err)
	}
	if err := wf.GoToStep(models.WorkflowStep(0)); !apperrors.IsValidationError(err) {
		t.Errorf("GoToStep(0) error = %v, want validation error", err)
	}
}

func TestWorkflow_ValidationRejectsEmptyInputs(t *testing.T) {
	wf := NewWorkflowService()
	if err := wf.SetTopic("   "); !apperrors.IsValidationError(err) {
		t.Errorf("SetTopic(blank) error = %v, want validation error", err)
	}
	if err := wf.SelectIdea(models.ContentIdea{}); !apperrors.IsValidationError(err) {
		t.Errorf("SelectIdea(empty) error = %v, want validation error", err)
	}
	if err := wf.SetScript(models.FullScript{}); !apperrors.IsValidationError(err) {
		t.Errorf("SetScript(empty) error = %v, want validation error", err)
	}
}

func TestWorkflow_ResetClearsEverything(t *testing.T) {
	wf := committedWorkflow(t)
	wf.Reset()

	state := wf.State()
	if state.Step != models.StepIdeation {
		t.Errorf("step after Reset = %s, want %s", state.Step, models.StepIdeation)
	}
	if state.Topic != "" || state.Idea != nil || state.Script != nil {
		t.Error("Reset left previous decisions behind")
	}
	if _, err := wf.Script(); !apperrors.IsValidationError(err) {
		t.Errorf("Script() after Reset error = %v, want validation error", err)
	}
}

func TestWorkflow_StateReturnsCopies(t *testing.T) {
	wf := committedWorkflow(t)

	state := wf.State()
	state.Script.Intro = "mutated"

	fresh, err := wf.Script()
	if err != nil {
		t.Fatalf("Script() error = %v", err)
	}
	if fresh.Intro == "mutated" {
		t.Error("mutating the returned state leaked into the service")
	}
}
