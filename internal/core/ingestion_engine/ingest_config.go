package ingestion_engine

// IngestConfig tunes the ingestion pipeline.
//
// ChunkSize:    target characters per chunk (e.g., 1000).
// ChunkOverlap: characters carried over between consecutive chunks (e.g., 200).
// EmbedBatch:   how many chunks to embed in one provider call.
type IngestConfig struct {
	ChunkSize    int
	ChunkOverlap int
	EmbedBatch   int
}

// PlaceholderPage is emitted when a source cannot be parsed, so the rest
// of the pipeline always sees at least one page.
const PlaceholderPage = "Could not extract text from this document."
