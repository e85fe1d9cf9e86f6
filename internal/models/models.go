package models

import (
	"time"
)

// Document represents one uploaded document known to the system.
// The ID is the sha256 hex digest of the raw bytes, so re-uploading the
// same file always resolves to the same cache entry.
type Document struct {
	ID            string    `json:"id"`
	FileName      string    `json:"file_name"`
	SourceLocator string    `json:"source_locator"` // s3://bucket/key, http(s) URL or local path
	PageCount     int       `json:"page_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// ExtractedInfo holds metadata inferred from document content when the
// structural properties are missing or thin. Populated by a single
// model call over the first pages; empty when inference fails.
type ExtractedInfo struct {
	PossibleTitles  []string `json:"possible_titles"`
	PossibleAuthors []string `json:"possible_authors"`
	FirstPageText   string   `json:"first_page_text"`
	DocumentSummary string   `json:"document_summary,omitempty"`
}

// DocumentMetadata is built once during ingestion and immutable afterward.
type DocumentMetadata struct {
	Title            string        `json:"title,omitempty"`
	Author           string        `json:"author,omitempty"`
	Creator          string        `json:"creator,omitempty"`
	Producer         string        `json:"producer,omitempty"`
	Subject          string        `json:"subject,omitempty"`
	Keywords         string        `json:"keywords,omitempty"`
	CreationDate     string        `json:"creation_date,omitempty"`
	ModificationDate string        `json:"modification_date,omitempty"`
	PageCount        int           `json:"page_count,omitempty"`
	ExtractedInfo    ExtractedInfo `json:"extracted_info"`
}

// Chunk is one contiguous text span cut from the page stream. SourcePage is
// the 1-based page of the chunk's first character; Position is the stable
// zero-based index of the chunk inside the document.
type Chunk struct {
	Text       string `json:"text"`
	SourcePage int    `json:"source_page"`
	Position   int    `json:"position"`
}

// ScoredChunk is a chunk returned from similarity search with its score.
type ScoredChunk struct {
	Chunk Chunk   `json:"chunk"`
	Score float32 `json:"score"`
}

// Answer source values.
const (
	SourceMetadata     = "metadata"
	SourceVectorSearch = "vectorsearch"
)

// Answer is the result of one question against a document.
type Answer struct {
	Text      string `json:"answer"`
	Citations []int  `json:"citations"` // page numbers, ascending, deduplicated
	Source    string `json:"source"`
}

// ProcessingInfo is the caller-facing view of a document's pipeline state.
type ProcessingInfo struct {
	Processed     bool   `json:"processed"`
	Processing    bool   `json:"processing"`
	SourceKnown   bool   `json:"source_known"`
	HasMetadata   bool   `json:"has_metadata"`
	FailureReason string `json:"failure_reason,omitempty"`
}

// Message is a single conversation turn. Ephemeral; the core keeps no
// session history.
type Message struct {
	ID        string `json:"id"`
	Role      string `json:"role"` // "user" or "assistant"
	Text      string `json:"text"`
	Citations []int  `json:"citations,omitempty"`
}
