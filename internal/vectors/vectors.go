// Package vectors provides the small amount of vector arithmetic the
// pipeline needs: cosine similarity for retrieval and duplicate detection,
// mean pooling for document-level embeddings, and L2 normalization.
package vectors

import "math"

// Cosine returns the cosine similarity between two vectors.
// Returns a value between -1 and 1, where 1 means identical, 0 means
// orthogonal. Mismatched lengths or zero-magnitude vectors yield 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}

	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

// Distance returns the cosine distance (1 - similarity) between two vectors.
func Distance(a, b []float32) float64 {
	return 1 - Cosine(a, b)
}

// Mean returns the element-wise mean of the given vectors.
// Vectors whose length differs from the first are skipped. Returns nil when
// no usable vectors remain.
func Mean(vs [][]float32) []float32 {
	var sum []float64
	var n int
	for _, v := range vs {
		if len(v) == 0 {
			continue
		}
		if sum == nil {
			sum = make([]float64, len(v))
		}
		if len(v) != len(sum) {
			continue
		}
		for i, x := range v {
			sum[i] += float64(x)
		}
		n++
	}
	if n == 0 {
		return nil
	}

	mean := make([]float32, len(sum))
	for i, x := range sum {
		mean[i] = float32(x / float64(n))
	}
	return mean
}

// NormalizeL2 scales the vector to unit length in place and returns it.
// Zero vectors are returned unchanged.
func NormalizeL2(v []float32) []float32 {
	var mag float64
	for _, x := range v {
		mag += float64(x) * float64(x)
	}
	if mag == 0 {
		return v
	}
	mag = math.Sqrt(mag)
	for i := range v {
		v[i] = float32(float64(v[i]) / mag)
	}
	return v
}
