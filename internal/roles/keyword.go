// Package roles infers a candidate's role from the skill catalog without any remote model.
package roles

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/resume-evaluator/internal/ai"
	"github.com/spigell/resume-evaluator/internal/document"
	"github.com/spigell/resume-evaluator/internal/skills"
)

const (
	// DefaultMinimumConfidence is the threshold below which no role is reported.
	DefaultMinimumConfidence = 0.3

	titleBonus = 0.5
)

// KeywordInferrer scores every catalog role by how many of its reference
// skills the résumé mentions, with a bonus when the role title or one of its
// keywords appears verbatim.
type KeywordInferrer struct {
	catalog  *skills.Catalog
	minScore float64
	logger   *zap.Logger
}

func NewKeywordInferrer(catalog *skills.Catalog, minScore float64, logger *zap.Logger) *KeywordInferrer {
	if catalog == nil {
		catalog = skills.DefaultCatalog()
	}
	if minScore < 0 {
		minScore = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KeywordInferrer{catalog: catalog, minScore: minScore, logger: logger}
}

func (k *KeywordInferrer) InferRole(ctx context.Context, content *document.Content) (*ai.RoleGuess, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if content == nil || strings.TrimSpace(content.Text) == "" {
		return nil, nil
	}

	var best *ai.RoleGuess
	for _, role := range k.catalog.Roles() {
		guess := k.score(content.Text, role)
		if best == nil || guess.Confidence > best.Confidence {
			best = guess
		}
	}

	if best == nil || best.Confidence == 0 {
		return nil, nil
	}

	if best.Confidence < k.minScore {
		k.logger.Debug("best role is below confidence threshold",
			zap.String("role", best.Role),
			zap.Float64("confidence", best.Confidence),
			zap.Float64("threshold", k.minScore),
		)
		return nil, nil
	}

	return best, nil
}

func (k *KeywordInferrer) score(text string, role skills.Role) *ai.RoleGuess {
	matched := 0
	for _, skill := range role.Skills {
		if k.catalog.Mentions(text, skill) {
			matched++
		}
	}

	overlap := 0.0
	if len(role.Skills) > 0 {
		overlap = float64(matched) / float64(len(role.Skills))
	}

	confidence := overlap
	titled := false
	for _, term := range append([]string{role.Name}, role.Keywords...) {
		if k.catalog.Mentions(text, term) {
			titled = true
			break
		}
	}
	if titled {
		confidence += titleBonus
	}
	if confidence > 1 {
		confidence = 1
	}

	return &ai.RoleGuess{
		Role:       role.Name,
		Confidence: confidence,
		Reason:     fmt.Sprintf("%d of %d reference skills mentioned; title mentioned: %t", matched, len(role.Skills), titled),
	}
}
