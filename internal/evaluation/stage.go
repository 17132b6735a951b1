package evaluation

import (
	"context"

	"github.com/spigell/resume-evaluator/internal/document"
)

// Phase orders stages. Stages of the same phase are independent of each other.
type Phase int

const (
	// PhaseExtract stages read only the document and run concurrently.
	PhaseExtract Phase = iota
	// PhaseScore stages run after the extract phase and may read its results.
	PhaseScore
)

func (p Phase) String() string {
	switch p {
	case PhaseExtract:
		return "extract"
	case PhaseScore:
		return "score"
	default:
		return "unknown"
	}
}

// Stage is one unit of extraction, inference or scoring.
//
// Apply receives the immutable document content and a snapshot of the record
// as it was when the stage's phase began, and returns a patch holding only the
// fields the stage owns. Returning an empty patch means nothing was found.
// An error means something unexpected happened and fails the evaluation.
type Stage interface {
	Name() string
	Phase() Phase
	Disable(reason string)
	IsEnabled() bool

	Apply(ctx context.Context, content *document.Content, snapshot Record) (Record, error)
}

// Status represents runtime information about a stage.
type Status struct {
	Name    string            `json:"name"`
	Phase   string            `json:"phase"`
	Enabled bool              `json:"enabled"`
	Reason  string            `json:"reason,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// statusProvider is implemented by stages that can supply detailed status information.
type statusProvider interface {
	Status() Status
}

// DisableByName marks a stage with the provided name as disabled while keeping it in the list.
// It reports whether any stage matched.
func DisableByName(stages []Stage, name, reason string) bool {
	found := false
	for _, stage := range stages {
		if stage.Name() == name {
			stage.Disable(reason)
			found = true
		}
	}
	return found
}

// Describe returns status entries for the provided stages.
func Describe(stages []Stage) []Status {
	statuses := make([]Status, 0, len(stages))
	for _, stage := range stages {
		if reporter, ok := stage.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    stage.Name(),
			Phase:   stage.Phase().String(),
			Enabled: stage.IsEnabled(),
		})
	}
	return statuses
}

// toggle carries the enabled flag shared by the built-in stages.
type toggle struct {
	disabled bool
	reason   string
}

func (t *toggle) Disable(reason string) {
	t.disabled = true
	t.reason = reason
}

func (t *toggle) IsEnabled() bool { return !t.disabled }
