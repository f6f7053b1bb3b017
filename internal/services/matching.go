package services

import (
	"math"

	"github.com/google/uuid"
)

// SharedTagCount returns the size of the intersection of two tag id sets.
// This is the primary ranking signal when vector similarity is unavailable.
func SharedTagCount(a, b []uuid.UUID) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[uuid.UUID]struct{}, len(a))
	for _, id := range a {
		set[id] = struct{}{}
	}
	count := 0
	seen := make(map[uuid.UUID]struct{}, len(b))
	for _, id := range b {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := set[id]; ok {
			count++
		}
	}
	return count
}

// TagSimilarity normalizes the intersection by the larger set size rather
// than the union, which favors users with few highly-overlapping tags over
// users with many tags and proportionally fewer shared ones. Always in [0,1].
func TagSimilarity(a, b []uuid.UUID) float64 {
	larger := len(a)
	if len(b) > larger {
		larger = len(b)
	}
	if larger == 0 {
		return 0
	}
	return float64(SharedTagCount(a, b)) / float64(larger)
}

// CosineSimilarity is dot(a,b) / (|a| * |b|). Returns 0 for mismatched
// lengths or zero-norm vectors instead of erroring, since those only occur
// with degenerate embeddings.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
