package match

import "math"

// Cosine returns the cosine similarity of two vectors, clipped to [-1, 1].
// A zero-norm or empty vector on either side yields 0 rather than NaN.
func Cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n == 0 {
		return 0
	}

	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(na) * math.Sqrt(nb))
	if sim > 1 {
		return 1
	}
	if sim < -1 {
		return -1
	}
	return sim
}
