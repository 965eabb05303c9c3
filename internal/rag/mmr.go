package rag

import "math"

// selectMMR runs greedy Maximal Marginal Relevance over the scored
// candidates, returning up to k entries ordered by selection. Relevance
// is the fused score; redundancy is the highest cosine similarity to an
// already-selected chunk. Ties break toward the candidate with the
// better fused score, then toward the earlier (closer) candidate, so
// the selection is fully deterministic.
func selectMMR(candidates []Candidate, k int, lambda float32) []Candidate {
	if k <= 0 || len(candidates) == 0 {
		return nil
	}
	if k > len(candidates) {
		k = len(candidates)
	}

	selected := make([]Candidate, 0, k)
	remaining := make([]int, len(candidates))
	for i := range remaining {
		remaining[i] = i
	}

	for len(selected) < k && len(remaining) > 0 {
		bestPos := 0
		bestScore := float32(math.Inf(-1))
		bestFused := float32(math.Inf(-1))

		for pos, idx := range remaining {
			c := candidates[idx]

			var redundancy float32
			for _, s := range selected {
				if sim := cosineSimilarity(c.Vector, s.Vector); sim > redundancy {
					redundancy = sim
				}
			}

			score := lambda*c.Fused - (1-lambda)*redundancy
			if score > bestScore || (score == bestScore && c.Fused > bestFused) {
				bestPos = pos
				bestScore = score
				bestFused = c.Fused
			}
		}

		selected = append(selected, candidates[remaining[bestPos]])
		remaining = append(remaining[:bestPos], remaining[bestPos+1:]...)
	}

	return selected
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Mismatched or zero-length vectors score 0 rather than erroring: a
// missing vector should never make a chunk look redundant.
func cosineSimilarity(a, b []float32) float32 {
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
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
