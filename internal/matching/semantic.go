package matching

import "math"

// SemanticThreshold is the cosine-similarity floor below which a candidate
// is rejected before any rule or LLM evaluation. 0.25 lets generic
// cross-language matches through ("Speaker" vs "Bocina") while blocking
// semantic opposites ("Cable" vs "Bocina").
const SemanticThreshold = 0.25

// semanticGateConfidence is attached to rejections made by the gate.
const semanticGateConfidence = 0.85

// CosineSimilarity computes the cosine similarity of two embedding vectors.
// Returns 0 for empty, mismatched, or zero-magnitude vectors.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0.0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// SemanticGate compares target and offer embeddings against the fixed
// threshold. It reports whether the candidate passes, along with the
// similarity value for reason strings.
func SemanticGate(target, offer []float32) (bool, float64) {
	similarity := CosineSimilarity(target, offer)
	return similarity >= SemanticThreshold, similarity
}
