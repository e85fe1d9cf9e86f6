package ingestion_engine

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/Mokshithabhi/chatpdf/internal/core"
	"github.com/Mokshithabhi/chatpdf/internal/core/vectorindex"
	"github.com/Mokshithabhi/chatpdf/internal/models"
)

// embedWorkers bounds concurrent provider calls during a build.
const embedWorkers = 4

// IndexBuilder embeds chunk texts in batches and assembles the in-memory
// similarity index for one document.
type IndexBuilder struct {
	embedder  core.EmbeddingProvider
	batchSize int
}

func NewIndexBuilder(embedder core.EmbeddingProvider, batchSize int) *IndexBuilder {
	if batchSize <= 0 {
		batchSize = 16
	}
	return &IndexBuilder{embedder: embedder, batchSize: batchSize}
}

// Build embeds every chunk and returns the populated index. Any provider
// failure or malformed vector set aborts the build with ErrIndexBuild;
// an unusable index cannot satisfy queries.
func (b *IndexBuilder) Build(ctx context.Context, chunks []models.Chunk) (*vectorindex.Index, error) {
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: no chunks to embed", core.ErrIndexBuild)
	}

	vectors := make([][]float32, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(embedWorkers)
	for start := 0; start < len(chunks); start += b.batchSize {
		end := start + b.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		start, end := start, end
		g.Go(func() error {
			texts := make([]string, 0, end-start)
			for _, c := range chunks[start:end] {
				texts = append(texts, c.Text)
			}
			vecs, err := b.embedder.EmbedTexts(gctx, texts)
			if err != nil {
				return fmt.Errorf("embed batch [%d:%d]: %w", start, end, err)
			}
			if len(vecs) != len(texts) {
				return fmt.Errorf("embed batch [%d:%d]: got %d vectors for %d texts", start, end, len(vecs), len(texts))
			}
			copy(vectors[start:end], vecs)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrIndexBuild, err)
	}

	dim := len(vectors[0])
	for i, v := range vectors {
		if len(v) != dim || dim == 0 {
			return nil, fmt.Errorf("%w: malformed vector at chunk %d (len %d, want %d)", core.ErrIndexBuild, i, len(v), dim)
		}
	}

	ix, err := vectorindex.New(dim)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrIndexBuild, err)
	}
	if err := ix.Add(chunks, vectors); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrIndexBuild, err)
	}
	return ix, nil
}
