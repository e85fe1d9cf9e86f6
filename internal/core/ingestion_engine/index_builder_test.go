package ingestion_engine

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mokshithabhi/chatpdf/internal/core"
	"github.com/Mokshithabhi/chatpdf/internal/models"
)

type stubEmbedder struct {
	mu     sync.Mutex
	calls  int
	err    error
	dim    int
	truncs bool // return one vector short to simulate a malformed reply
}

func (s *stubEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	n := len(texts)
	if s.truncs && n > 0 {
		n--
	}
	out := make([][]float32, n)
	for i := range out {
		v := make([]float32, s.dim)
		v[i%s.dim] = 1
		out[i] = v
	}
	return out, nil
}

func TestIndexBuilder_BuildsSearchableIndex(t *testing.T) {
	emb := &stubEmbedder{dim: 4}
	b := NewIndexBuilder(emb, 2)

	chunks := []models.Chunk{
		{Text: "alpha", SourcePage: 1, Position: 0},
		{Text: "beta", SourcePage: 1, Position: 1},
		{Text: "gamma", SourcePage: 2, Position: 2},
	}
	ix, err := b.Build(context.Background(), chunks)
	require.NoError(t, err)
	assert.Equal(t, 3, ix.Len())
	assert.Equal(t, 2, emb.calls, "three chunks at batch size 2 means two provider calls")
}

func TestIndexBuilder_EmbedderFailureIsIndexBuildError(t *testing.T) {
	emb := &stubEmbedder{err: errors.New("embedding service unreachable")}
	b := NewIndexBuilder(emb, 16)

	_, err := b.Build(context.Background(), []models.Chunk{{Text: "x"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrIndexBuild)
	assert.True(t, strings.Contains(err.Error(), "unreachable"))
}

func TestIndexBuilder_VectorCountMismatchIsIndexBuildError(t *testing.T) {
	emb := &stubEmbedder{dim: 4, truncs: true}
	b := NewIndexBuilder(emb, 16)

	_, err := b.Build(context.Background(), []models.Chunk{{Text: "a"}, {Text: "b"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrIndexBuild)
}

func TestIndexBuilder_NoChunks(t *testing.T) {
	b := NewIndexBuilder(&stubEmbedder{dim: 4}, 16)

	_, err := b.Build(context.Background(), nil)
	assert.ErrorIs(t, err, core.ErrIndexBuild)
}
