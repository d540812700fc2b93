package cluster

import (
	"math"
	"math/rand"
)

const (
	// maxIterations bounds Lloyd's algorithm; assignments for this data
	// settle in far fewer passes.
	maxIterations = 100
	// initSeed fixes centroid initialization so a given input set always
	// produces the same partition. Labels still carry no identity across
	// different input sets.
	initSeed = 1
)

// standardize scales each dimension to zero mean and unit variance
// across the input set. Statistics are recomputed per call and never
// persisted; a dimension with zero variance is left at zero. The input
// vectors are not modified.
func standardize(vectors [][]float32) [][]float64 {
	if len(vectors) == 0 {
		return nil
	}
	dims := len(vectors[0])
	n := float64(len(vectors))

	means := make([]float64, dims)
	for _, v := range vectors {
		for d, x := range v {
			means[d] += float64(x)
		}
	}
	for d := range means {
		means[d] /= n
	}

	stddevs := make([]float64, dims)
	for _, v := range vectors {
		for d, x := range v {
			diff := float64(x) - means[d]
			stddevs[d] += diff * diff
		}
	}
	for d := range stddevs {
		stddevs[d] = math.Sqrt(stddevs[d] / n)
	}

	out := make([][]float64, len(vectors))
	for i, v := range vectors {
		row := make([]float64, dims)
		for d, x := range v {
			if stddevs[d] > 0 {
				row[d] = (float64(x) - means[d]) / stddevs[d]
			}
		}
		out[i] = row
	}
	return out
}

// kmeans partitions points into k clusters and returns one label per
// point. k is capped at the number of points. Points must be non-empty
// and share one dimensionality.
func kmeans(points [][]float64, k int) []int {
	if k > len(points) {
		k = len(points)
	}

	centroids := initialCentroids(points, k)
	labels := make([]int, len(points))

	for iter := 0; iter < maxIterations; iter++ {
		changed := false
		for i, p := range points {
			best := nearestCentroid(p, centroids)
			if best != labels[i] {
				labels[i] = best
				changed = true
			}
		}
		if !changed && iter > 0 {
			break
		}
		recomputeCentroids(points, labels, centroids)
	}
	return labels
}

// initialCentroids seeds k centroids kmeans++-style: the first is a
// seeded random point, each next is the point farthest from its nearest
// chosen centroid. Deterministic for a given input set.
func initialCentroids(points [][]float64, k int) [][]float64 {
	rng := rand.New(rand.NewSource(initSeed))
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, clone(points[rng.Intn(len(points))]))

	for len(centroids) < k {
		farthest := 0
		farthestDist := -1.0
		for i, p := range points {
			d := distToNearest(p, centroids)
			if d > farthestDist {
				farthestDist = d
				farthest = i
			}
		}
		centroids = append(centroids, clone(points[farthest]))
	}
	return centroids
}

func recomputeCentroids(points [][]float64, labels []int, centroids [][]float64) {
	dims := len(points[0])
	counts := make([]int, len(centroids))
	for c := range centroids {
		centroids[c] = make([]float64, dims)
	}
	for i, p := range points {
		c := labels[i]
		counts[c]++
		for d, x := range p {
			centroids[c][d] += x
		}
	}
	for c := range centroids {
		if counts[c] == 0 {
			continue // empty cluster keeps a zero centroid
		}
		for d := range centroids[c] {
			centroids[c][d] /= float64(counts[c])
		}
	}
}

func nearestCentroid(p []float64, centroids [][]float64) int {
	best := 0
	bestDist := math.Inf(1)
	for c, centroid := range centroids {
		if d := sqDist(p, centroid); d < bestDist {
			bestDist = d
			best = c
		}
	}
	return best
}

func distToNearest(p []float64, centroids [][]float64) float64 {
	nearest := math.Inf(1)
	for _, centroid := range centroids {
		if d := sqDist(p, centroid); d < nearest {
			nearest = d
		}
	}
	return nearest
}

func sqDist(a, b []float64) float64 {
	var sum float64
	for d := range a {
		diff := a[d] - b[d]
		sum += diff * diff
	}
	return sum
}

func clone(p []float64) []float64 {
	out := make([]float64, len(p))
	copy(out, p)
	return out
}
