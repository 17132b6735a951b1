package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/spigell/resume-evaluator/internal/ai"
	"github.com/spigell/resume-evaluator/internal/document"
	"github.com/spigell/resume-evaluator/internal/logger"
	"github.com/spigell/resume-evaluator/internal/utils"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
	Model() string
}

//go:embed prompt.md
var promptTemplate string

//go:embed system.md
var systemPrompt string

const (
	defaultMaxLogLength = 200
	providerName        = "gemini"
)

// RoleInferrer asks Gemini to label a résumé with a role.
type RoleInferrer struct {
	generator contentGenerator
	roles     []string
	minScore  float64
	logger    *zap.Logger
	maxLogLen int
}

// NewRoleInferrer builds an inferrer. roles are offered to the model as
// preferred labels; guesses under minScore are dropped.
func NewRoleInferrer(generator contentGenerator, roles []string, minScore float64, maxLogLength int, log *zap.Logger) *RoleInferrer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &RoleInferrer{
		generator: generator,
		roles:     roles,
		minScore:  minScore,
		logger:    logger.WithCommonFields(log, providerName, generator.Model()),
		maxLogLen: maxLogLength,
	}
}

func (r *RoleInferrer) InferRole(ctx context.Context, content *document.Content) (*ai.RoleGuess, error) {
	if content == nil || strings.TrimSpace(content.Text) == "" {
		return nil, nil
	}

	prompt := buildPrompt(r.roles, content.Text)

	r.logger.Debug("gemini generate content request",
		zap.String(logger.FieldDocument, content.Reference.String()),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, r.maxLogLen)),
	)

	raw, err := r.generator.GenerateContent(ctx, systemPrompt, prompt)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("gemini generate content response",
		zap.String(logger.FieldDocument, content.Reference.String()),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, r.maxLogLen)),
	)

	guess, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}

	if guess.Role == "" {
		return nil, nil
	}

	if guess.Confidence < r.minScore {
		r.logger.Debug("drop role by confidence threshold",
			zap.String("role", guess.Role),
			zap.Float64("confidence", guess.Confidence),
			zap.Float64("threshold", r.minScore),
		)
		return nil, nil
	}

	return guess, nil
}

func buildPrompt(roles []string, text string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Roles:\n{{ROLES}}\n\nRésumé:\n{{RESUME_TEXT}}\n\nJSON Response:"
	}

	list := "- any"
	if len(roles) > 0 {
		list = "- " + strings.Join(roles, "\n- ")
	}

	prompt := strings.ReplaceAll(template, "{{ROLES}}", list)
	return strings.ReplaceAll(prompt, "{{RESUME_TEXT}}", strings.TrimSpace(text))
}

func parseResponse(raw string) (*ai.RoleGuess, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	guess := &ai.RoleGuess{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           guess,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("build response decoder: %w", err)
	}
	if err := decoder.Decode(data); err != nil {
		return nil, fmt.Errorf("decode gemini response: %w", err)
	}

	guess.Role = strings.TrimSpace(guess.Role)
	guess.Reason = strings.TrimSpace(guess.Reason)
	if math.IsNaN(guess.Confidence) {
		guess.Confidence = 0
	}
	guess.Confidence = math.Max(0, math.Min(1, guess.Confidence))
	guess.Raw = raw

	return guess, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}
