package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ScoreComputations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ats_score_computations_total",
			Help: "Score computations by outcome (cached, computed, failed)",
		},
		[]string{"outcome"},
	)

	ScoreDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ats_score_duration_seconds",
			Help:    "Duration of non-cached score computations",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
	)

	FinalScores = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ats_final_score",
			Help:    "Distribution of final scores",
			Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
	)

	SemanticSource = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ats_semantic_source_total",
			Help: "Semantic computations by embedding source",
		},
		[]string{"source"},
	)

	EmbeddingTokens = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ats_embedding_tokens_total",
			Help: "Tokens consumed by embedding requests",
		},
		[]string{"model"},
	)

	EmbeddingErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ats_embedding_errors_total",
			Help: "Failed embedding requests",
		},
		[]string{"model"},
	)

	EmbeddingCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ats_embedding_cache_total",
			Help: "Embedding cache lookups by result (hit, miss)",
		},
		[]string{"result"},
	)

	ConfigFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ats_config_fallbacks_total",
			Help: "Algorithm config lookups that fell back to the default weights",
		},
	)

	AuditFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ats_audit_failures_total",
			Help: "Matching log writes that failed and were skipped",
		},
	)

	BatchApplications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ats_batch_applications_total",
			Help: "Applications handled by batch recalculation by outcome",
		},
		[]string{"outcome"},
	)
)

func Init() {
	prometheus.MustRegister(ScoreComputations)
	prometheus.MustRegister(ScoreDuration)
	prometheus.MustRegister(FinalScores)
	prometheus.MustRegister(SemanticSource)
	prometheus.MustRegister(EmbeddingTokens)
	prometheus.MustRegister(EmbeddingErrors)
	prometheus.MustRegister(EmbeddingCache)
	prometheus.MustRegister(ConfigFallbacks)
	prometheus.MustRegister(AuditFailures)
	prometheus.MustRegister(BatchApplications)
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
