package service

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doccluster/internal/clusterer/kmeans"
	"doccluster/internal/domain"
	"doccluster/internal/embedding/tfidf"
	"doccluster/internal/normalizer"
	"doccluster/internal/summarizer"
)

func defaultStages() Stages {
	return Stages{
		NewNormalizer: func(o Options) domain.Normalizer { return normalizer.New(o.ExtraStopwords...) },
		Vectorizer:    tfidf.NewVectorizer(),
		NewClusterer: func(o Options) domain.Clusterer {
			return kmeans.New(kmeans.Options{MaxIterations: o.MaxIterations, Restarts: o.Restarts})
		},
		Summarizer: summarizer.NewCentroidSummarizer(),
	}
}

func newTestService(mutate ...func(*Options)) *ClusterServiceImpl {
	opts := DefaultOptions()
	for _, m := range mutate {
		m(&opts)
	}
	return NewClusterService(defaultStages(), opts, zerolog.Nop())
}

func clusterOf(t *testing.T, res *domain.Result, doc string) int {
	t.Helper()
	for _, c := range res.Clusters {
		for _, d := range c.Documents {
			if d == doc {
				return c.ID
			}
		}
	}
	t.Fatalf("document %q not in any cluster", doc)
	return -1
}

func TestRunSeparatesThemes(t *testing.T) {
	docs := []string{"cat dog", "dog puppy", "car engine", "engine wheel"}
	res, err := newTestService().Run(docs, 2)
	require.NoError(t, err)
	require.Len(t, res.Clusters, 2)

	assert.Equal(t, clusterOf(t, res, "cat dog"), clusterOf(t, res, "dog puppy"))
	assert.Equal(t, clusterOf(t, res, "car engine"), clusterOf(t, res, "engine wheel"))
	assert.NotEqual(t, clusterOf(t, res, "cat dog"), clusterOf(t, res, "car engine"))

	animals := res.Clusters[clusterOf(t, res, "cat dog")]
	assert.Equal(t, "dog", animals.Keywords[0])
	assert.Len(t, animals.Keywords, 5)
	vehicles := res.Clusters[clusterOf(t, res, "car engine")]
	assert.Equal(t, "engine", vehicles.Keywords[0])
}

func TestRunResultShape(t *testing.T) {
	docs := []string{"apple banana", "banana cherry", "rocket launch", "rocket orbit", "piano violin"}
	res, err := newTestService().Run(docs, 3)
	require.NoError(t, err)
	require.Len(t, res.Clusters, 3)

	total := 0
	for i, c := range res.Clusters {
		assert.Equal(t, i, c.ID)
		assert.NotNil(t, c.Documents)
		assert.LessOrEqual(t, len(c.Keywords), 5)
		total += len(c.Documents)
	}
	assert.Equal(t, len(docs), total)
}

func TestRunKeepsOriginalText(t *testing.T) {
	docs := []string{"The Cat, sat!", "Engines & Wheels"}
	res, err := newTestService().Run(docs, 2)
	require.NoError(t, err)
	clusterOf(t, res, "The Cat, sat!")
	clusterOf(t, res, "Engines & Wheels")
}

func TestRunDeterministic(t *testing.T) {
	docs := []string{"red green", "green blue", "blue red", "dog cat", "cat mouse", "mouse dog"}
	svc := newTestService()
	first, err := svc.Run(docs, 3)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := svc.Run(docs, 3)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestRunConcurrent(t *testing.T) {
	docs := []string{"cat dog", "dog puppy", "car engine", "engine wheel"}
	svc := newTestService()
	want, err := svc.Run(docs, 2)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]*domain.Result, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = svc.Run(docs, 2)
		}(i)
	}
	wg.Wait()
	for _, r := range results {
		assert.Equal(t, want, r)
	}
}

func TestRunValidationErrors(t *testing.T) {
	svc := newTestService()

	_, err := svc.Run(nil, 2)
	assert.ErrorIs(t, err, domain.ErrEmptyInput)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Run([]string{"only one doc"}, 2)
	var insufficient *domain.InsufficientDocumentsError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, 1, insufficient.DocCount)
	assert.Equal(t, 2, insufficient.KRequested)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "(1)")

	_, err = svc.Run([]string{"the", "a an", "!!!"}, 1)
	assert.ErrorIs(t, err, domain.ErrDegenerateVocabulary)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestRunKEqualsDocCount(t *testing.T) {
	docs := []string{"alpha", "beta", "gamma"}
	res, err := newTestService().Run(docs, 3)
	require.NoError(t, err)
	for _, c := range res.Clusters {
		assert.Len(t, c.Documents, 1)
		assert.Equal(t, c.Documents[0], c.Keywords[0])
	}
}

func TestRunEmptyDocumentAmongOthers(t *testing.T) {
	docs := []string{"cat dog", "!!!", "car engine"}
	res, err := newTestService().Run(docs, 2)
	require.NoError(t, err)
	clusterOf(t, res, "!!!")
}

func TestRunKeepsEmptyClusterKeywords(t *testing.T) {
	res, err := newTestService().Run([]string{"cat", "cat", "dog"}, 3)
	require.NoError(t, err)
	require.Len(t, res.Clusters, 3)

	var empty *domain.ClusterSummary
	for i := range res.Clusters {
		if len(res.Clusters[i].Documents) == 0 {
			empty = &res.Clusters[i]
		}
	}
	require.NotNil(t, empty, "two distinct vectors cannot fill three clusters")
	assert.NotNil(t, empty.Documents)
	assert.ElementsMatch(t, []string{"cat", "dog"}, empty.Keywords)

	raw, err := json.Marshal(empty)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"documents":[]`)
}

type fixedClusterer struct{}

func (fixedClusterer) Cluster(vectors [][]float64, k int, _ int64) (domain.Assignment, [][]float64) {
	centroids := make([][]float64, k)
	for c := range centroids {
		centroids[c] = make([]float64, len(vectors[0]))
	}
	return make(domain.Assignment, len(vectors)), centroids
}

type fixedSummarizer []string

func (s fixedSummarizer) TopTerms([]float64, *domain.Vocabulary, int) []string { return s }

func TestRunUsesInjectedStages(t *testing.T) {
	stages := defaultStages()
	var clustererOpts Options
	stages.NewClusterer = func(o Options) domain.Clusterer {
		clustererOpts = o
		return fixedClusterer{}
	}
	stages.Summarizer = fixedSummarizer{"label"}
	opts := DefaultOptions()
	opts.Seed = 7
	svc := NewClusterService(stages, opts, zerolog.Nop())

	res, err := svc.Run([]string{"cat dog", "car engine", "wheel"}, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"cat dog", "car engine", "wheel"}, res.Clusters[0].Documents)
	assert.Empty(t, res.Clusters[1].Documents)
	assert.Equal(t, []string{"label"}, res.Clusters[0].Keywords)
	assert.Equal(t, []string{"label"}, res.Clusters[1].Keywords)
	assert.Equal(t, int64(7), clustererOpts.Seed)
}

func TestRunExtraStopwords(t *testing.T) {
	svc := newTestService(func(o *Options) { o.ExtraStopwords = []string{"cat", "dog"} })
	_, err := svc.Run([]string{"cat", "dog"}, 1)
	assert.ErrorIs(t, err, domain.ErrDegenerateVocabulary)
}

func TestRunTopTermsOption(t *testing.T) {
	svc := newTestService(func(o *Options) { o.TopTerms = 2 })
	res, err := svc.Run([]string{"alpha beta gamma delta", "alpha beta"}, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, res.Clusters[0].Keywords)
}

func TestResolveClusterCount(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		strict  bool
		want    int
		wantErr bool
	}{
		{name: "valid", raw: "3", want: 3},
		{name: "padded", raw: " 4 ", want: 4},
		{name: "garbage permissive", raw: "abc", want: 2},
		{name: "zero permissive", raw: "0", want: 2},
		{name: "negative permissive", raw: "-5", want: 2},
		{name: "empty permissive", raw: "", want: 2},
		{name: "valid strict", raw: "3", strict: true, want: 3},
		{name: "garbage strict", raw: "abc", strict: true, wantErr: true},
		{name: "zero strict", raw: "0", strict: true, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(func(o *Options) { o.StrictK = tt.strict })
			k, err := svc.ResolveClusterCount(tt.raw)
			if tt.wantErr {
				var invalid *domain.InvalidClusterCountError
				require.True(t, errors.As(err, &invalid))
				assert.Equal(t, tt.raw, invalid.Raw)
				assert.ErrorIs(t, err, domain.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, k)
		})
	}
}

func TestRunRawPolicies(t *testing.T) {
	docs := []string{"cat dog", "dog puppy", "car engine", "engine wheel"}

	res, err := newTestService().RunRaw(docs, "not a number")
	require.NoError(t, err)
	assert.Len(t, res.Clusters, 2)

	_, err = newTestService(func(o *Options) { o.StrictK = true }).RunRaw(docs, "-1")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = newTestService(func(o *Options) { o.StrictK = true }).RunRaw(nil, "-1")
	assert.ErrorIs(t, err, domain.ErrEmptyInput)
}

func TestSetOptions(t *testing.T) {
	svc := newTestService()
	opts := svc.Options()
	opts.DefaultK = 3
	svc.SetOptions(opts)
	k, err := svc.ResolveClusterCount("")
	require.NoError(t, err)
	assert.Equal(t, 3, k)
}
