package main

import (
	"fmt"

	"doccluster/internal/clusterer/kmeans"
	"doccluster/internal/config"
	"doccluster/internal/domain"
	"doccluster/internal/embedding/tfidf"
	"doccluster/internal/normalizer"
	"doccluster/internal/service"
	"doccluster/internal/summarizer"
)

// buildStages picks the pipeline components named in cfg. Stage types are
// fixed at startup; a config reload only swaps service options.
func buildStages(cfg *config.AppConfig) (service.Stages, error) {
	var stages service.Stages

	switch cfg.Normalizer.Type {
	case "english", "":
		stages.NewNormalizer = func(o service.Options) domain.Normalizer {
			return normalizer.New(o.ExtraStopwords...)
		}
	default:
		return stages, fmt.Errorf("unknown normalizer: %s", cfg.Normalizer.Type)
	}

	switch cfg.Vectorizer.Type {
	case "tfidf", "":
		stages.Vectorizer = tfidf.NewVectorizer()
	default:
		return stages, fmt.Errorf("unknown vectorizer: %s", cfg.Vectorizer.Type)
	}

	switch cfg.Clustering.Algorithm {
	case "kmeans", "":
		stages.NewClusterer = func(o service.Options) domain.Clusterer {
			return kmeans.New(kmeans.Options{MaxIterations: o.MaxIterations, Restarts: o.Restarts})
		}
	default:
		return stages, fmt.Errorf("unknown clustering algorithm: %s", cfg.Clustering.Algorithm)
	}

	switch cfg.Summarizer.Type {
	case "centroid", "":
		stages.Summarizer = summarizer.NewCentroidSummarizer()
	default:
		return stages, fmt.Errorf("unknown summarizer: %s", cfg.Summarizer.Type)
	}

	return stages, nil
}
