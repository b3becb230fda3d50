package service

import (
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"doccluster/internal/config"
	"doccluster/internal/domain"
)

var _ domain.ClusterService = (*ClusterServiceImpl)(nil)

// Options are the pipeline policy constants.
type Options struct {
	DefaultK       int
	StrictK        bool
	MaxIterations  int
	Restarts       int
	Seed           int64
	TopTerms       int
	ExtraStopwords []string
}

// DefaultOptions mirrors config.Default().
func DefaultOptions() Options {
	return OptionsFromConfig(config.Default())
}

// OptionsFromConfig extracts the pipeline options from an app config.
func OptionsFromConfig(cfg *config.AppConfig) Options {
	return Options{
		DefaultK:       cfg.Clustering.DefaultK,
		StrictK:        cfg.Clustering.StrictK,
		MaxIterations:  cfg.Clustering.MaxIterations,
		Restarts:       cfg.Clustering.Restarts,
		Seed:           cfg.Clustering.Seed,
		TopTerms:       cfg.Clustering.TopTerms,
		ExtraStopwords: append([]string(nil), cfg.Normalizer.ExtraStopwords...),
	}
}

// Stages are the pipeline components. Vectorizer and Summarizer hold no
// per-run state and are shared; normalizers and clusterers are built for
// each run from that run's options.
type Stages struct {
	NewNormalizer func(Options) domain.Normalizer
	Vectorizer    domain.Vectorizer
	NewClusterer  func(Options) domain.Clusterer
	Summarizer    domain.Summarizer
}

// ClusterServiceImpl runs the normalize, vectorize, cluster, summarize
// pipeline. Every run builds its own working state from an options
// snapshot, so one service may serve concurrent callers.
type ClusterServiceImpl struct {
	stages Stages
	opts   atomic.Pointer[Options]
	logger zerolog.Logger
}

// NewClusterService creates a service over the given stages.
func NewClusterService(stages Stages, opts Options, logger zerolog.Logger) *ClusterServiceImpl {
	s := &ClusterServiceImpl{stages: stages, logger: logger}
	s.SetOptions(opts)
	return s
}

// SetOptions replaces the options used by subsequent runs.
func (s *ClusterServiceImpl) SetOptions(opts Options) {
	s.opts.Store(&opts)
}

// Options returns the current options snapshot.
func (s *ClusterServiceImpl) Options() Options { return *s.opts.Load() }

// ResolveClusterCount parses a requested cluster count. Values that are not
// positive integers fall back to DefaultK, or fail with
// InvalidClusterCountError when StrictK is set.
func (s *ClusterServiceImpl) ResolveClusterCount(kRaw string) (int, error) {
	k, _, err := resolveClusterCount(s.Options(), kRaw)
	return k, err
}

func resolveClusterCount(opts Options, kRaw string) (k int, fallback bool, err error) {
	k, err = strconv.Atoi(strings.TrimSpace(kRaw))
	if err == nil && k > 0 {
		return k, false, nil
	}
	if opts.StrictK {
		return 0, false, &domain.InvalidClusterCountError{Raw: kRaw}
	}
	return opts.DefaultK, true, nil
}

// Run clusters rawDocs into k groups.
func (s *ClusterServiceImpl) Run(rawDocs []string, k int) (*domain.Result, error) {
	return s.run(s.Options(), rawDocs, strconv.Itoa(k))
}

// RunRaw is Run with an unparsed cluster count, e.g. a form field.
func (s *ClusterServiceImpl) RunRaw(rawDocs []string, kRaw string) (*domain.Result, error) {
	return s.run(s.Options(), rawDocs, kRaw)
}

func (s *ClusterServiceImpl) run(opts Options, rawDocs []string, kRaw string) (*domain.Result, error) {
	logger := s.logger.With().Str("run_id", uuid.NewString()).Logger()
	start := time.Now()

	result, err := s.pipeline(logger, opts, rawDocs, kRaw)
	if err != nil {
		logger.Warn().Err(err).Int("docs", len(rawDocs)).Str("k", kRaw).Msg("Clustering rejected")
		return nil, err
	}
	logger.Info().
		Int("docs", len(rawDocs)).
		Int("k", len(result.Clusters)).
		Dur("elapsed", time.Since(start)).
		Msg("Clustering finished")
	return result, nil
}

func (s *ClusterServiceImpl) pipeline(logger zerolog.Logger, opts Options, rawDocs []string, kRaw string) (*domain.Result, error) {
	if len(rawDocs) == 0 {
		return nil, domain.ErrEmptyInput
	}
	k, fallback, err := resolveClusterCount(opts, kRaw)
	if err != nil {
		return nil, err
	}
	if fallback {
		logger.Warn().Str("requested", kRaw).Int("k", k).Msg("Invalid cluster count, using default")
	}
	if len(rawDocs) < k {
		return nil, &domain.InsufficientDocumentsError{DocCount: len(rawDocs), KRequested: k}
	}

	tokens := s.stages.NewNormalizer(opts).NormalizeAll(rawDocs)
	total := 0
	for _, t := range tokens {
		total += len(t)
	}
	if total == 0 {
		return nil, domain.ErrDegenerateVocabulary
	}
	logger.Debug().Int("docs", len(rawDocs)).Int("tokens", total).Msg("Normalized documents")

	vocab, vectors := s.stages.Vectorizer.FitTransform(tokens)
	logger.Debug().Int("vocabulary", vocab.Len()).Msg("Vectorized documents")

	assignment, centroids := s.stages.NewClusterer(opts).Cluster(vectors, k, opts.Seed)
	members := assignment.Members(k)
	sizes := make([]int, k)
	for c := range members {
		sizes[c] = len(members[c])
	}
	logger.Debug().Ints("sizes", sizes).Int64("seed", opts.Seed).Msg("Clustered documents")

	result := &domain.Result{Clusters: make([]domain.ClusterSummary, k)}
	for c := 0; c < k; c++ {
		documents := make([]string, len(members[c]))
		for i, d := range members[c] {
			documents[i] = rawDocs[d]
		}
		result.Clusters[c] = domain.ClusterSummary{
			ID:        c,
			Documents: documents,
			Keywords:  s.stages.Summarizer.TopTerms(centroids[c], vocab, opts.TopTerms),
		}
	}
	return result, nil
}
