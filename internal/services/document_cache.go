package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Mokshithabhi/chatpdf/internal/core"
	"github.com/Mokshithabhi/chatpdf/internal/core/ingestion_engine"
	"github.com/Mokshithabhi/chatpdf/internal/core/vectorindex"
	"github.com/Mokshithabhi/chatpdf/internal/models"
	"github.com/Mokshithabhi/chatpdf/internal/pkg/logger"
)

type docState int

const (
	stateIdle docState = iota
	stateProcessing
	stateProcessed
	stateFailed
)

// cacheEntry is the per-document record: {metadata, index, state} plus the
// locator and file name needed to (re)build.
type cacheEntry struct {
	state    docState
	reason   string // failure reason, set only in stateFailed
	locator  string
	fileName string
	metadata *models.DocumentMetadata
	index    *vectorindex.Index
}

// DocumentCache owns all per-document state and enforces single-flight
// processing: at most one build per document id at a time, independent ids
// in parallel. Processed entries are never evicted.
type DocumentCache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry

	fetcher   core.SourceFetcher
	extractor core.PageExtractor
	metadata  *ingestion_engine.MetadataExtractor
	chunker   *ingestion_engine.ChunkExtractor
	builder   *ingestion_engine.IndexBuilder
	log       *logger.Logger
}

func NewDocumentCache(
	fetcher core.SourceFetcher,
	extractor core.PageExtractor,
	metadata *ingestion_engine.MetadataExtractor,
	chunker *ingestion_engine.ChunkExtractor,
	builder *ingestion_engine.IndexBuilder,
	log *logger.Logger,
) *DocumentCache {
	return &DocumentCache{
		entries:   make(map[string]*cacheEntry),
		fetcher:   fetcher,
		extractor: extractor,
		metadata:  metadata,
		chunker:   chunker,
		builder:   builder,
		log:       log,
	}
}

// RegisterSource records where a document's bytes live so later queries can
// trigger a build without re-supplying the locator.
func (c *DocumentCache) RegisterSource(documentID, locator, fileName string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.ensureLocked(documentID)
	e.locator = locator
	e.fileName = fileName
}

// GetOrBuild returns the cached index for a Processed document, fails with
// ErrAlreadyProcessing while a build is in flight, and otherwise claims the
// Processing state and runs the full pipeline. Pass an empty locator to use
// the one registered at upload time.
func (c *DocumentCache) GetOrBuild(ctx context.Context, documentID, locator string) (*vectorindex.Index, error) {
	c.mu.Lock()
	e := c.ensureLocked(documentID)
	switch e.state {
	case stateProcessed:
		ix := e.index
		c.mu.Unlock()
		return ix, nil
	case stateProcessing:
		c.mu.Unlock()
		return nil, core.ErrAlreadyProcessing
	}
	if locator == "" {
		locator = e.locator
	}
	if locator == "" {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: no source registered for %s", core.ErrDocumentNotFound, documentID)
	}
	// Claim the build. The pipeline runs outside the lock so other documents
	// keep processing.
	e.state = stateProcessing
	e.reason = ""
	e.locator = locator
	fileName := e.fileName
	c.mu.Unlock()

	ix, md, err := c.runPipeline(ctx, documentID, locator, fileName)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		// Discard partial state; a later Ingest may retry.
		e.state = stateFailed
		e.reason = err.Error()
		e.metadata = nil
		e.index = nil
		return nil, err
	}
	e.state = stateProcessed
	e.metadata = md
	e.index = ix
	return ix, nil
}

// runPipeline executes fetch -> extract -> metadata -> chunk -> embed for
// one document. Stages run strictly in sequence.
func (c *DocumentCache) runPipeline(ctx context.Context, documentID, locator, fileName string) (*vectorindex.Index, *models.DocumentMetadata, error) {
	log := c.log.With("document_id", documentID)
	log.Info("processing document", "locator", locator)

	raw, err := c.fetcher.Fetch(ctx, locator)
	if err != nil {
		log.Error("source fetch failed", "err", err)
		return nil, nil, err
	}

	contentType := ingestion_engine.MimeTypeFor(fileName)
	pages, props := c.extractor.ExtractPages(ctx, raw, contentType)
	log.Info("extracted pages", "pages", len(pages))

	md := c.metadata.Extract(ctx, pages, props)

	chunks := c.chunker.Split(pages)
	log.Info("split chunks", "chunks", len(chunks))

	ix, err := c.builder.Build(ctx, chunks)
	if err != nil {
		log.Error("index build failed", "err", err)
		return nil, nil, err
	}

	log.Info("document processed", "chunks", ix.Len(), "pages", md.PageCount)
	return ix, &md, nil
}

// Ingest is the idempotent processing trigger: a Processed document is a
// no-op, an in-flight build is reported rather than failed, and anything
// else starts a build. The returned info reflects the state after the call.
func (c *DocumentCache) Ingest(ctx context.Context, documentID, locator string) (models.ProcessingInfo, error) {
	_, err := c.GetOrBuild(ctx, documentID, locator)
	if errors.Is(err, core.ErrAlreadyProcessing) {
		err = nil
	}
	return c.ProcessingInfo(documentID), err
}

// Metadata returns a copy of the document's metadata, if built. Callers
// must not rely on mutating the returned record.
func (c *DocumentCache) Metadata(documentID string) (*models.DocumentMetadata, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[documentID]
	if !ok || e.metadata == nil {
		return nil, false
	}
	md := *e.metadata
	return &md, true
}

// ProcessingInfo reports the caller-facing view of a document's state,
// usable for UI and poll decisions.
func (c *DocumentCache) ProcessingInfo(documentID string) models.ProcessingInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[documentID]
	if !ok {
		return models.ProcessingInfo{}
	}
	return models.ProcessingInfo{
		Processed:     e.state == stateProcessed,
		Processing:    e.state == stateProcessing,
		SourceKnown:   e.locator != "",
		HasMetadata:   e.metadata != nil,
		FailureReason: e.reason,
	}
}

func (c *DocumentCache) ensureLocked(documentID string) *cacheEntry {
	e, ok := c.entries[documentID]
	if !ok {
		e = &cacheEntry{}
		c.entries[documentID] = e
	}
	return e
}
