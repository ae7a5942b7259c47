// internal/models/workflow.go
package models

// WorkflowStep enumerates the five-step linear production workflow. Moving
// backward through the steps never discards already-produced media.
type WorkflowStep int

const (
	StepIdeation   WorkflowStep = iota + 1 // pick a topic, collect ideas
	StepScript                             // generate the full script
	StepEdit                               // review and edit intro/body text
	StepPlan                               // review the generated scene plan
	StepProduction                         // produce images, video, audio
)

func (s WorkflowStep) String() string {
	switch s {
	case StepIdeation:
		return "ideation"
	case StepScript:
		return "script"
	case StepEdit:
		return "edit"
	case StepPlan:
		return "plan"
	case StepProduction:
		return "production"
	default:
		return "unknown"
	}
}
