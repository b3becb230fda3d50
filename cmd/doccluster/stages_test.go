package main

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doccluster/internal/clusterer/kmeans"
	"doccluster/internal/config"
	"doccluster/internal/embedding/tfidf"
	"doccluster/internal/normalizer"
	"doccluster/internal/service"
	"doccluster/internal/summarizer"
)

func TestBuildStagesDefaults(t *testing.T) {
	stages, err := buildStages(config.Default())
	require.NoError(t, err)

	opts := service.DefaultOptions()
	assert.IsType(t, &normalizer.Normalizer{}, stages.NewNormalizer(opts))
	assert.IsType(t, &tfidf.Vectorizer{}, stages.Vectorizer)
	assert.IsType(t, &kmeans.Clusterer{}, stages.NewClusterer(opts))
	assert.IsType(t, &summarizer.CentroidSummarizer{}, stages.Summarizer)

	svc := service.NewClusterService(stages, opts, zerolog.Nop())
	res, err := svc.Run([]string{"cat dog", "dog puppy", "car engine", "engine wheel"}, 2)
	require.NoError(t, err)
	assert.Len(t, res.Clusters, 2)
}

func TestBuildStagesEmptyTypes(t *testing.T) {
	cfg := config.Default()
	cfg.Normalizer.Type = ""
	cfg.Vectorizer.Type = ""
	cfg.Clustering.Algorithm = ""
	cfg.Summarizer.Type = ""
	_, err := buildStages(cfg)
	assert.NoError(t, err)
}

func TestBuildStagesNormalizerUsesRunOptions(t *testing.T) {
	stages, err := buildStages(config.Default())
	require.NoError(t, err)
	opts := service.DefaultOptions()
	opts.ExtraStopwords = []string{"lorem"}
	assert.Equal(t, []string{"ipsum"}, stages.NewNormalizer(opts).Normalize("lorem ipsum"))
}

func TestBuildStagesUnknownType(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.AppConfig)
		want   string
	}{
		{name: "normalizer", mutate: func(c *config.AppConfig) { c.Normalizer.Type = "french" }, want: "unknown normalizer: french"},
		{name: "vectorizer", mutate: func(c *config.AppConfig) { c.Vectorizer.Type = "bm25" }, want: "unknown vectorizer: bm25"},
		{name: "clusterer", mutate: func(c *config.AppConfig) { c.Clustering.Algorithm = "dbscan" }, want: "unknown clustering algorithm: dbscan"},
		{name: "summarizer", mutate: func(c *config.AppConfig) { c.Summarizer.Type = "llm" }, want: "unknown summarizer: llm"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(cfg)
			_, err := buildStages(cfg)
			assert.EqualError(t, err, tt.want)
		})
	}
}
