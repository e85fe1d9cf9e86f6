// Package vectorindex holds the in-memory similarity index built once per
// document. Brute-force cosine over normalized vectors; document corpora
// are small enough that nothing fancier pays for itself.
package vectorindex

import (
	"errors"
	"math"
	"sort"
	"sync"

	"github.com/Mokshithabhi/chatpdf/internal/models"
)

// Index is safe for concurrent readers once built. Each document owns
// exactly one Index; it is never shared across documents.
type Index struct {
	mu        sync.RWMutex
	dimension int
	vectors   [][]float32
	chunks    []models.Chunk
}

func New(dimension int) (*Index, error) {
	if dimension <= 0 {
		return nil, errors.New("invalid dimension")
	}
	return &Index{dimension: dimension}, nil
}

// Add appends chunks with their vectors. Vectors are normalized in place
// so Search can rank by dot product.
func (ix *Index) Add(chunks []models.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return errors.New("chunks and vectors length mismatch")
	}
	for _, v := range vectors {
		if len(v) != ix.dimension {
			return errors.New("vector dimension mismatch")
		}
	}
	ix.mu.Lock()
	defer ix.mu.Unlock()
	for _, v := range vectors {
		normalize(v)
	}
	ix.chunks = append(ix.chunks, chunks...)
	ix.vectors = append(ix.vectors, vectors...)
	return nil
}

// Search returns up to topK chunks ordered by descending cosine similarity
// to the query vector.
func (ix *Index) Search(query []float32, topK int) ([]models.ScoredChunk, error) {
	if len(query) != ix.dimension {
		return nil, errors.New("query dimension mismatch")
	}
	if topK <= 0 {
		topK = 4
	}
	q := make([]float32, len(query))
	copy(q, query)
	normalize(q)

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	results := make([]models.ScoredChunk, 0, len(ix.vectors))
	for i, v := range ix.vectors {
		results = append(results, models.ScoredChunk{Chunk: ix.chunks[i], Score: dot(v, q)})
	}
	sort.SliceStable(results, func(a, b int) bool { return results[a].Score > results[b].Score })
	if topK > len(results) {
		topK = len(results)
	}
	return results[:topK], nil
}

func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.chunks)
}

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	inv := float32(1 / math.Sqrt(sum))
	for i := range v {
		v[i] *= inv
	}
}
