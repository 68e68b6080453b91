package services

import (
	"context"

	"go.uber.org/zap"

	"kodkariyer/ats-engine/internal/metrics"
	"kodkariyer/ats-engine/internal/models"
	"kodkariyer/ats-engine/internal/repositories"
)

const DefaultAlgorithmVersion = "1.0.0"

var DefaultWeights = models.AlgorithmWeights{
	RuleWeight:          0.6,
	SemanticWeight:      0.4,
	SkillWeight:         0.5,
	ExperienceWeight:    0.25,
	EducationWeight:     0.15,
	OptionalBonusWeight: 0.1,
}

func DefaultAlgorithmConfig() models.AlgorithmConfig {
	return models.AlgorithmConfig{Version: DefaultAlgorithmVersion, Weights: DefaultWeights}
}

// AlgorithmConfigLoader never fails: any lookup error or missing row
// resolves to the built-in weights.
type AlgorithmConfigLoader interface {
	Load(ctx context.Context) models.AlgorithmConfig
	LoadVersion(ctx context.Context, version string) models.AlgorithmConfig
}

type algorithmConfigLoader struct {
	repo repositories.AlgorithmConfigRepository
	log  *zap.Logger
}

func NewAlgorithmConfigLoader(repo repositories.AlgorithmConfigRepository, log *zap.Logger) AlgorithmConfigLoader {
	return &algorithmConfigLoader{repo: repo, log: log}
}

func (l *algorithmConfigLoader) Load(ctx context.Context) models.AlgorithmConfig {
	if l.repo == nil {
		return DefaultAlgorithmConfig()
	}

	rec, err := l.repo.FindActive(ctx)
	if err != nil {
		l.log.Debug("using default algorithm config", zap.Error(err))
		metrics.ConfigFallbacks.Inc()
		return DefaultAlgorithmConfig()
	}

	return models.AlgorithmConfig{Version: rec.Version, Weights: rec.Weights()}
}

// LoadVersion resolves the weights of an explicitly requested version. An
// unknown version keeps the requested label with the default weights.
func (l *algorithmConfigLoader) LoadVersion(ctx context.Context, version string) models.AlgorithmConfig {
	if version == "" {
		return l.Load(ctx)
	}

	if l.repo != nil {
		rec, err := l.repo.FindByVersion(ctx, version)
		if err == nil {
			return models.AlgorithmConfig{Version: rec.Version, Weights: rec.Weights()}
		}
		l.log.Debug("using default weights for requested version", zap.String("version", version), zap.Error(err))
	}

	metrics.ConfigFallbacks.Inc()
	return models.AlgorithmConfig{Version: version, Weights: DefaultWeights}
}
