package cmd

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/resume-evaluator/internal/ai"
	"github.com/spigell/resume-evaluator/internal/ai/gemini"
	"github.com/spigell/resume-evaluator/internal/document"
	"github.com/spigell/resume-evaluator/internal/evaluation"
	"github.com/spigell/resume-evaluator/internal/roles"
	"github.com/spigell/resume-evaluator/internal/secrets"
	"github.com/spigell/resume-evaluator/internal/skills"
)

const (
	providerKeyword = "keyword"
	providerGemini  = "gemini"
)

// pipeline bundles everything a command needs to evaluate documents.
type pipeline struct {
	catalog   *skills.Catalog
	loader    *document.Loader
	stages    []evaluation.Stage
	evaluator *evaluation.Evaluator
}

func newPipeline(ctx context.Context, config *Config, logger *zap.Logger) (*pipeline, error) {
	catalog, err := skills.LoadCatalog(config.CatalogFile)
	if err != nil {
		return nil, fmt.Errorf("loading skill catalog: %w", err)
	}

	inferrer, provider := newRoleInferrer(ctx, config, catalog, logger)

	stages := evaluation.DefaultStages(inferrer, provider, skills.NewMatcher(catalog))
	for _, name := range config.Evaluation.Disable {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if !evaluation.DisableByName(stages, name, "disabled by configuration") {
			logger.Warn("unknown stage in evaluation.disable", zap.String("stage", name))
		}
	}

	loader := document.NewLoader()
	evaluator, err := evaluation.New(loader, stages, evaluation.Options{
		Timeout: config.Evaluation.Timeout,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("building evaluation pipeline: %w", err)
	}

	return &pipeline{catalog: catalog, loader: loader, stages: stages, evaluator: evaluator}, nil
}

// newRoleInferrer builds the configured inferrer. A Gemini inferrer that
// cannot be built falls back to keyword inference.
func newRoleInferrer(ctx context.Context, config *Config, catalog *skills.Catalog, logger *zap.Logger) (ai.RoleInferrer, string) {
	minScore := config.Role.MinimumConfidence

	provider := strings.TrimSpace(strings.ToLower(config.Role.Provider))
	if provider == providerGemini {
		inferrer, err := newGeminiInferrer(ctx, config, catalog, minScore, logger)
		if err == nil {
			return inferrer, providerGemini
		}
		logger.Warn("falling back to keyword role inference",
			zap.Error(err),
			zap.String("hint", "set GEMINI_API_KEY or ai.gemini.api-key-file"),
		)
	}

	return roles.NewKeywordInferrer(catalog, minScore, logger), providerKeyword
}

func newGeminiInferrer(ctx context.Context, config *Config, catalog *skills.Catalog, minScore float64, logger *zap.Logger) (ai.RoleInferrer, error) {
	geminiConfig := config.AI.gemini()

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: geminiConfig.APIKeyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, err
	}

	genLogger := logger.With(
		zap.String("provider", providerGemini),
		zap.String("model", geminiConfig.Model),
		zap.Int("ai_retry_attempts", geminiConfig.MaxRetries),
	)

	generator, err := gemini.NewGenerator(ctx, apiKey, geminiConfig.Model, geminiConfig.MaxRetries, genLogger)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(catalog.Roles()))
	for _, role := range catalog.Roles() {
		names = append(names, role.Name)
	}

	return gemini.NewRoleInferrer(generator, names, minScore, geminiConfig.MaxLogLength, logger), nil
}

func (c *AIConfig) gemini() *GeminiConfig {
	if c == nil || c.Gemini == nil {
		return &GeminiConfig{}
	}
	return c.Gemini
}
