package kmeans

import (
	"math"
	"math/rand"

	"doccluster/internal/domain"
)

var _ domain.Clusterer = (*Clusterer)(nil)

const (
	DefaultMaxIterations = 300
	DefaultRestarts      = 10
)

// Options tunes the Lloyd iterations.
type Options struct {
	MaxIterations int
	// Restarts is the number of seeded initialisations; the one with the
	// lowest inertia wins. 1 means a single draw.
	Restarts int
}

// Clusterer runs K-Means with seeded initialisation from input vectors.
type Clusterer struct {
	opts Options
}

// New creates a clusterer, filling zero options with defaults.
func New(opts Options) *Clusterer {
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultMaxIterations
	}
	if opts.Restarts <= 0 {
		opts.Restarts = DefaultRestarts
	}
	return &Clusterer{opts: opts}
}

// Run is the outcome of a single initialisation.
type Run struct {
	Assignment domain.Assignment
	Centroids  [][]float64
	Iterations int
	Inertia    float64
}

// Cluster partitions vectors into k clusters. It requires 0 < k <= len(vectors)
// and is deterministic for identical (vectors, k, seed).
func (c *Clusterer) Cluster(vectors [][]float64, k int, seed int64) (domain.Assignment, [][]float64) {
	best := c.ClusterRun(vectors, k, seed)
	return best.Assignment, best.Centroids
}

// ClusterRun is Cluster with iteration and inertia details of the winning run.
func (c *Clusterer) ClusterRun(vectors [][]float64, k int, seed int64) Run {
	rng := rand.New(rand.NewSource(seed))
	var best Run
	for r := 0; r < c.opts.Restarts; r++ {
		run := c.lloyd(vectors, initCentroids(vectors, k, rng))
		// Strict comparison keeps the earliest restart on ties.
		if r == 0 || run.Inertia < best.Inertia {
			best = run
		}
	}
	return best
}

func (c *Clusterer) lloyd(vectors [][]float64, centroids [][]float64) Run {
	labels := make(domain.Assignment, len(vectors))
	for i := range labels {
		labels[i] = -1
	}
	iter := 0
	for iter < c.opts.MaxIterations {
		iter++
		changed := assign(vectors, centroids, labels)
		update(vectors, centroids, labels)
		if !changed {
			break
		}
	}
	return Run{
		Assignment: labels,
		Centroids:  centroids,
		Iterations: iter,
		Inertia:    Inertia(vectors, centroids, labels),
	}
}

// initCentroids copies k distinct input vectors chosen by rng.
func initCentroids(vectors [][]float64, k int, rng *rand.Rand) [][]float64 {
	perm := rng.Perm(len(vectors))
	centroids := make([][]float64, k)
	for c := 0; c < k; c++ {
		centroids[c] = append([]float64(nil), vectors[perm[c]]...)
	}
	return centroids
}

// assign moves every vector to its nearest centroid, lowest id on ties,
// and reports whether any label changed.
func assign(vectors, centroids [][]float64, labels domain.Assignment) bool {
	changed := false
	for i, v := range vectors {
		minDist := math.Inf(1)
		bestCluster := 0
		for c, centroid := range centroids {
			d := SquaredDistance(v, centroid)
			if d < minDist {
				minDist = d
				bestCluster = c
			}
		}
		if labels[i] != bestCluster {
			labels[i] = bestCluster
			changed = true
		}
	}
	return changed
}

// update recomputes each centroid as the mean of its members.
// A centroid with no members keeps its previous position.
func update(vectors, centroids [][]float64, labels domain.Assignment) {
	dim := 0
	if len(centroids) > 0 {
		dim = len(centroids[0])
	}
	sums := make([][]float64, len(centroids))
	counts := make([]int, len(centroids))
	for c := range sums {
		sums[c] = make([]float64, dim)
	}
	for i, v := range vectors {
		c := labels[i]
		counts[c]++
		for j, x := range v {
			sums[c][j] += x
		}
	}
	for c := range centroids {
		if counts[c] == 0 {
			continue
		}
		for j := range sums[c] {
			sums[c][j] /= float64(counts[c])
		}
		centroids[c] = sums[c]
	}
}

// SquaredDistance is the squared Euclidean distance between a and b.
// Ordering by it matches ordering by Euclidean distance.
func SquaredDistance(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// Inertia is the sum of squared distances of vectors to their centroid.
func Inertia(vectors, centroids [][]float64, labels domain.Assignment) float64 {
	total := 0.0
	for i, v := range vectors {
		total += SquaredDistance(v, centroids[labels[i]])
	}
	return total
}
