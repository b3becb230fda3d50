package domain

// Vocabulary is the ordered set of distinct terms seen in a batch.
// A term's position is its coordinate in every term vector.
type Vocabulary struct {
	terms []string
	index map[string]int
}

// NewVocabulary returns an empty vocabulary.
func NewVocabulary() *Vocabulary {
	return &Vocabulary{index: make(map[string]int)}
}

// Add inserts term if unseen and returns its coordinate.
func (v *Vocabulary) Add(term string) int {
	if idx, ok := v.index[term]; ok {
		return idx
	}
	idx := len(v.terms)
	v.index[term] = idx
	v.terms = append(v.terms, term)
	return idx
}

// Term returns the term stored at coordinate idx.
func (v *Vocabulary) Term(idx int) string { return v.terms[idx] }

// Len returns the number of terms, i.e. the vector dimensionality.
func (v *Vocabulary) Len() int { return len(v.terms) }

// Assignment maps a document index to its cluster id.
type Assignment []int

// Members returns the document indices assigned to each of k clusters.
// Every id in [0, k) is present even when its slice is empty.
func (a Assignment) Members(k int) [][]int {
	out := make([][]int, k)
	for c := range out {
		out[c] = []int{}
	}
	for doc, c := range a {
		out[c] = append(out[c], doc)
	}
	return out
}

// ClusterSummary is the externally visible view of one cluster.
type ClusterSummary struct {
	ID        int      `json:"id"`
	Documents []string `json:"documents"`
	Keywords  []string `json:"keywords"`
}

// Result holds one summary per cluster; Clusters[i].ID == i.
type Result struct {
	Clusters []ClusterSummary `json:"clusters"`
}

// Normalizer cleans and tokenizes raw documents.
type Normalizer interface {
	Normalize(raw string) []string
	// NormalizeAll returns one token sequence per raw document, in order.
	NormalizeAll(raw []string) [][]string
}

// Vectorizer builds a vocabulary over a batch and maps each token
// sequence to a weighted term vector of len(vocabulary) components.
type Vectorizer interface {
	FitTransform(docs [][]string) (*Vocabulary, [][]float64)
}

// Clusterer partitions vectors into k groups.
// Identical (vectors, k, seed) must yield identical output.
type Clusterer interface {
	Cluster(vectors [][]float64, k int, seed int64) (Assignment, [][]float64)
}

// Summarizer labels a cluster from its centroid.
type Summarizer interface {
	TopTerms(centroid []float64, vocab *Vocabulary, n int) []string
}

// ClusterService is the single operation exposed by the application core.
type ClusterService interface {
	Run(rawDocs []string, k int) (*Result, error)
	RunRaw(rawDocs []string, kRaw string) (*Result, error)
}
