package service

import (
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	pgvector "github.com/pgvector/pgvector-go"
)

// EmbeddingDimensions matches the vector(32) recipes.embedding column.
const EmbeddingDimensions = 32

// GenerateEmbedding returns a deterministic bag-of-words embedding: each
// lower-cased word is hashed into one of EmbeddingDimensions buckets and the
// result is L2-normalised. Texts sharing words end up close together.
func GenerateEmbedding(text string) pgvector.Vector {
	vec := make([]float32, EmbeddingDimensions)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		h := fnv.New32a()
		_, _ = h.Write([]byte(w))
		vec[h.Sum32()%EmbeddingDimensions]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}
	return pgvector.NewVector(vec)
}
