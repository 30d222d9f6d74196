// Package similarity provides the in-process vector index used for semantic
// search over knowledge entry embeddings.
package similarity

import (
	"fmt"
	"math"
	"sort"
)

// SimilarityFloor is the minimum cosine similarity a search result must
// exceed to be returned. This is a recall floor internal to the index and is
// intentionally lower than the router's confidence threshold.
const SimilarityFloor = 0.3

// Candidate pairs an entry reference with its stored embedding.
type Candidate struct {
	ID     string
	Vector []float32
}

// Match is a single ranked search result.
type Match struct {
	ID         string
	Similarity float64
}

// Cosine computes the cosine similarity between two equal-length vectors.
// It returns an error on mismatched lengths, since that indicates mixed
// embedding model versions rather than a legitimate low similarity.
// If either vector has zero norm the result is defined as 0.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vector dimension mismatch: %d vs %d", len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// Search ranks candidates by cosine similarity to the query vector. Results
// are sorted descending (stable on ties), truncated to limit, then filtered
// to those above SimilarityFloor. It is a pure function over its inputs.
func Search(query []float32, candidates []Candidate, limit int) ([]Match, error) {
	matches := make([]Match, 0, len(candidates))
	for _, c := range candidates {
		score, err := Cosine(query, c.Vector)
		if err != nil {
			return nil, fmt.Errorf("candidate %s: %w", c.ID, err)
		}
		matches = append(matches, Match{ID: c.ID, Similarity: score})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})

	if limit >= 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	filtered := matches[:0]
	for _, m := range matches {
		if m.Similarity > SimilarityFloor {
			filtered = append(filtered, m)
		}
	}

	return filtered, nil
}
