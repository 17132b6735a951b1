package ai

import (
	"context"

	"github.com/spigell/resume-evaluator/internal/document"
)

// RoleGuess is a classifier's best role label for a résumé.
type RoleGuess struct {
	Role       string  `json:"role" mapstructure:"role"`
	Confidence float64 `json:"confidence" mapstructure:"confidence"`
	Reason     string  `json:"reason,omitempty" mapstructure:"reason"`
	Raw        string  `json:"-" mapstructure:"-"`
}

// RoleInferrer classifies a résumé into a free-form role label.
// A nil guess with a nil error means no role could be inferred with enough confidence.
type RoleInferrer interface {
	InferRole(ctx context.Context, content *document.Content) (*RoleGuess, error)
}
