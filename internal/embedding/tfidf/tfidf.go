package tfidf

import (
	"math"

	"doccluster/internal/domain"
)

var _ domain.Vectorizer = (*Vectorizer)(nil)

// Vectorizer implements batch TF-IDF weighting over pre-tokenized documents.
// It holds no state between calls, so one value may be shared freely.
type Vectorizer struct{}

// NewVectorizer creates a TF-IDF vectorizer.
func NewVectorizer() *Vectorizer { return &Vectorizer{} }

// FitTransform builds the vocabulary in first-seen order and returns one
// L2-normalized vector per document. A document without tokens maps to the
// zero vector. If every document is empty the vocabulary is empty and each
// vector has zero components.
func (v *Vectorizer) FitTransform(docs [][]string) (*domain.Vocabulary, [][]float64) {
	vocab := domain.NewVocabulary()
	// Raw term counts per document, keyed by vocabulary index
	counts := make([]map[int]int, len(docs))
	var df []int
	for i, tokens := range docs {
		counts[i] = make(map[int]int)
		for _, tok := range tokens {
			idx := vocab.Add(tok)
			if idx == len(df) {
				df = append(df, 0)
			}
			if counts[i][idx] == 0 {
				df[idx]++
			}
			counts[i][idx]++
		}
	}

	idf := SmoothIDF(df, len(docs))
	vectors := make([][]float64, len(docs))
	for i := range docs {
		vec := make([]float64, vocab.Len())
		for idx, tf := range counts[i] {
			vec[idx] = float64(tf) * idf[idx]
		}
		Normalize(vec)
		vectors[i] = vec
	}
	return vocab, vectors
}

// SmoothIDF computes ln((1+n)/(1+df)) + 1 per term; always positive.
func SmoothIDF(df []int, n int) []float64 {
	out := make([]float64, len(df))
	N := float64(n)
	for i, d := range df {
		out[i] = math.Log((1+N)/(1+float64(d))) + 1.0
	}
	return out
}

// Normalize scales vec to unit L2 norm in place. Zero vectors are left as is.
func Normalize(vec []float64) {
	norm := 0.0
	for _, x := range vec {
		norm += x * x
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return
	}
	for i := range vec {
		vec[i] /= norm
	}
}
