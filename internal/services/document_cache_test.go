package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mokshithabhi/chatpdf/internal/core"
)

func TestDocumentCache_GetOrBuild_CachesProcessedIndex(t *testing.T) {
	cache, deps := newTestCache([]string{"hello world page"}, nil)
	ctx := context.Background()

	first, err := cache.GetOrBuild(ctx, "doc-1", "/tmp/doc-1.pdf")
	require.NoError(t, err)
	require.NotNil(t, first)

	fetches := deps.fetcher.callCount()
	embeds := deps.embedder.callCount()

	second, err := cache.GetOrBuild(ctx, "doc-1", "/tmp/doc-1.pdf")
	require.NoError(t, err)
	assert.Same(t, first, second, "processed documents return the cached index")
	assert.Equal(t, fetches, deps.fetcher.callCount(), "no re-fetch on cache hit")
	assert.Equal(t, embeds, deps.embedder.callCount(), "no re-embedding on cache hit")
}

func TestDocumentCache_SingleFlight(t *testing.T) {
	cache, deps := newTestCache([]string{"page one content"}, nil)
	deps.embedder.gate = make(chan struct{})
	deps.embedder.started = make(chan struct{}, 1)

	done := make(chan error, 1)
	go func() {
		_, err := cache.GetOrBuild(context.Background(), "doc-1", "/tmp/doc-1.pdf")
		done <- err
	}()

	select {
	case <-deps.embedder.started:
	case <-time.After(2 * time.Second):
		t.Fatal("build never reached the embedder")
	}

	// A second request for the same id while the build is in flight must
	// not start a second build.
	_, err := cache.GetOrBuild(context.Background(), "doc-1", "/tmp/doc-1.pdf")
	assert.ErrorIs(t, err, core.ErrAlreadyProcessing)

	info := cache.ProcessingInfo("doc-1")
	assert.True(t, info.Processing)
	assert.False(t, info.Processed)

	close(deps.embedder.gate)
	require.NoError(t, <-done)

	assert.Equal(t, 1, deps.fetcher.callCount(), "exactly one build")
	assert.True(t, cache.ProcessingInfo("doc-1").Processed)
}

func TestDocumentCache_IndependentDocumentsProcessInParallel(t *testing.T) {
	cache, deps := newTestCache([]string{"slow-build page text"}, nil)
	deps.embedder.gate = make(chan struct{})
	deps.embedder.started = make(chan struct{}, 1)
	deps.embedder.gateToken = "slow-build"

	done := make(chan error, 1)
	go func() {
		_, err := cache.GetOrBuild(context.Background(), "doc-slow", "/tmp/slow.pdf")
		done <- err
	}()

	select {
	case <-deps.embedder.started:
	case <-time.After(2 * time.Second):
		t.Fatal("build never reached the embedder")
	}

	// The shared extractor fake feeds the same pages to every document, but
	// doc-fast is a different id, so its build must not wait on doc-slow.
	// Its chunks contain the gate token too, so gate it off first.
	deps.embedder.mu.Lock()
	deps.embedder.gateToken = "never-matches"
	deps.embedder.mu.Unlock()

	_, err := cache.GetOrBuild(context.Background(), "doc-fast", "/tmp/fast.pdf")
	require.NoError(t, err)
	assert.True(t, cache.ProcessingInfo("doc-fast").Processed)
	assert.True(t, cache.ProcessingInfo("doc-slow").Processing)

	close(deps.embedder.gate)
	require.NoError(t, <-done)
}

func TestDocumentCache_FailedBuildAllowsRetry(t *testing.T) {
	cache, deps := newTestCache([]string{"page content here"}, nil)
	deps.embedder.setErr(fmt.Errorf("embedding service down"))
	ctx := context.Background()

	_, err := cache.GetOrBuild(ctx, "doc-1", "/tmp/doc-1.pdf")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrIndexBuild)

	info := cache.ProcessingInfo("doc-1")
	assert.False(t, info.Processed)
	assert.False(t, info.Processing)
	assert.NotEmpty(t, info.FailureReason)

	// Retry transitions back through Processing and succeeds.
	deps.embedder.setErr(nil)
	retried, err := cache.Ingest(ctx, "doc-1", "")
	require.NoError(t, err)
	assert.True(t, retried.Processed)
	assert.Empty(t, retried.FailureReason)
}

func TestDocumentCache_FetchFailureLeavesRetryableState(t *testing.T) {
	cache, deps := newTestCache([]string{"irrelevant"}, nil)
	deps.fetcher.err = fmt.Errorf("%w: blob missing", core.ErrSourceUnavailable)

	_, err := cache.GetOrBuild(context.Background(), "doc-1", "/tmp/doc-1.pdf")
	assert.ErrorIs(t, err, core.ErrSourceUnavailable)
	info := cache.ProcessingInfo("doc-1")
	assert.False(t, info.Processed)
	assert.NotEmpty(t, info.FailureReason)
}

func TestDocumentCache_UnknownLocator(t *testing.T) {
	cache, _ := newTestCache([]string{"page"}, nil)

	_, err := cache.GetOrBuild(context.Background(), "ghost", "")
	assert.ErrorIs(t, err, core.ErrDocumentNotFound)
}

func TestDocumentCache_Ingest_Idempotent(t *testing.T) {
	cache, deps := newTestCache([]string{"some page text"}, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		info, err := cache.Ingest(ctx, "doc-1", "/tmp/doc-1.pdf")
		require.NoError(t, err)
		assert.True(t, info.Processed)
	}
	assert.Equal(t, 1, deps.fetcher.callCount(), "repeated ingest is a cache hit")
}

func TestDocumentCache_RegisterSourceEnablesLocatorlessBuild(t *testing.T) {
	cache, _ := newTestCache([]string{"registered page"}, nil)
	cache.RegisterSource("doc-1", "/tmp/registered.pdf", "registered.pdf")

	info := cache.ProcessingInfo("doc-1")
	assert.True(t, info.SourceKnown)
	assert.False(t, info.Processed)

	_, err := cache.GetOrBuild(context.Background(), "doc-1", "")
	require.NoError(t, err)
}

func TestDocumentCache_MetadataLifecycle(t *testing.T) {
	cache, _ := newTestCache([]string{"page one"}, map[string]string{"Title": "Report A"})

	_, ok := cache.Metadata("doc-1")
	assert.False(t, ok, "no metadata before processing")

	_, err := cache.GetOrBuild(context.Background(), "doc-1", "/tmp/doc-1.pdf")
	require.NoError(t, err)

	md, ok := cache.Metadata("doc-1")
	require.True(t, ok)
	assert.Equal(t, "Report A", md.Title)
	assert.Equal(t, 1, md.PageCount)

	// Mutating the returned copy must not leak into the cache.
	md.Title = "tampered"
	again, _ := cache.Metadata("doc-1")
	assert.Equal(t, "Report A", again.Title)
}
