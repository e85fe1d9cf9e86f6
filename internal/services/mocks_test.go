package services

import (
	"context"
	"strings"
	"sync"

	"github.com/Mokshithabhi/chatpdf/internal/core/ingestion_engine"
	"github.com/Mokshithabhi/chatpdf/internal/pkg/logger"
)

// fakeFetcher hands back canned bytes and counts calls.
type fakeFetcher struct {
	mu    sync.Mutex
	data  []byte
	err   error
	calls int
}

func (f *fakeFetcher) Fetch(_ context.Context, _ string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.data, nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeExtractor returns a fixed page sequence regardless of input.
type fakeExtractor struct {
	pages []string
	props map[string]string
}

func (f *fakeExtractor) ExtractPages(_ context.Context, _ []byte, _ string) ([]string, map[string]string) {
	return f.pages, f.props
}

// fakeEmbedder produces deterministic vectors: dimension markerDims, with
// component i set when the text mentions "topic-i". An optional gate lets
// tests hold a build in flight.
type fakeEmbedder struct {
	mu        sync.Mutex
	calls     int
	err       error
	started   chan struct{} // signaled once a gated call begins, if non-nil
	gate      chan struct{} // blocks gated calls until closed, if non-nil
	gateToken string        // only texts containing this token are gated; "" gates all
}

const markerDims = 12

func (f *fakeEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	f.calls++
	started := f.started
	gate := f.gate
	gateToken := f.gateToken
	err := f.err
	f.mu.Unlock()

	gated := gate != nil && (gateToken == "" || anyContains(texts, gateToken))
	if gated {
		if started != nil {
			select {
			case started <- struct{}{}:
			default:
			}
		}
		<-gate
	}
	if err != nil {
		return nil, err
	}

	out := make([][]float32, len(texts))
	for i, text := range texts {
		v := make([]float32, markerDims)
		for d := 0; d < markerDims; d++ {
			if strings.Contains(text, marker(d)) {
				v[d] = 1
			}
		}
		if isZero(v) {
			v[0] = 0.001 // keep unrelated chunks searchable but far away
		}
		out[i] = v
	}
	return out, nil
}

func (f *fakeEmbedder) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeEmbedder) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func marker(d int) string {
	return "topic-" + string(rune('a'+d))
}

func anyContains(texts []string, token string) bool {
	for _, t := range texts {
		if strings.Contains(t, token) {
			return true
		}
	}
	return false
}

func isZero(v []float32) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

// fakeLLM records prompts and replies with a fixed answer.
type fakeLLM struct {
	mu         sync.Mutex
	reply      string
	err        error
	calls      int
	lastSystem string
	lastUser   string
}

func (f *fakeLLM) Generate(_ context.Context, systemPrompt, userPrompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastSystem = systemPrompt
	f.lastUser = userPrompt
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeLLM) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// testDeps bundles the fakes wired into a cache under test.
type testDeps struct {
	fetcher  *fakeFetcher
	embedder *fakeEmbedder
	llm      *fakeLLM
}

// newTestCache builds a DocumentCache over fakes. Each page becomes one
// chunk (chunk size is set above the page length, no overlap carries
// across pages relevant for these inputs).
func newTestCache(pages []string, props map[string]string) (*DocumentCache, *testDeps) {
	deps := &testDeps{
		fetcher:  &fakeFetcher{data: []byte("raw-bytes")},
		embedder: &fakeEmbedder{},
		llm:      &fakeLLM{reply: "{}"},
	}
	log := logger.NewNop()
	cache := NewDocumentCache(
		deps.fetcher,
		&fakeExtractor{pages: pages, props: props},
		ingestion_engine.NewMetadataExtractor(deps.llm, log),
		ingestion_engine.NewChunkExtractor(24, 0),
		ingestion_engine.NewIndexBuilder(deps.embedder, 64),
		log,
	)
	return cache, deps
}
