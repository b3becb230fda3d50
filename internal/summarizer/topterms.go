package summarizer

import (
	"sort"

	"doccluster/internal/domain"
)

var _ domain.Summarizer = (*CentroidSummarizer)(nil)

// DefaultTopTerms is the label length used when n <= 0.
const DefaultTopTerms = 5

// CentroidSummarizer labels a cluster with the highest weighted centroid terms.
type CentroidSummarizer struct{}

// NewCentroidSummarizer creates a centroid-based cluster labeller.
func NewCentroidSummarizer() *CentroidSummarizer { return &CentroidSummarizer{} }

// TopTerms returns up to n vocabulary terms ordered by descending centroid
// weight; equal weights keep the lower vocabulary index first.
func (s *CentroidSummarizer) TopTerms(centroid []float64, vocab *domain.Vocabulary, n int) []string {
	if n <= 0 {
		n = DefaultTopTerms
	}
	size := vocab.Len()
	if len(centroid) < size {
		size = len(centroid)
	}
	idxs := make([]int, size)
	for i := range idxs {
		idxs[i] = i
	}
	sort.SliceStable(idxs, func(i, j int) bool { return centroid[idxs[i]] > centroid[idxs[j]] })
	if n > len(idxs) {
		n = len(idxs)
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = vocab.Term(idxs[i])
	}
	return out
}
