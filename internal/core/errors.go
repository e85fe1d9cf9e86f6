package core

import "errors"

var (
	// ErrAlreadyProcessing signals that another request is building the same
	// document. Not a failure; callers should poll and retry.
	ErrAlreadyProcessing = errors.New("document is currently being processed")

	// ErrSourceUnavailable means the raw bytes for a locator could not be
	// fetched. Retryable after re-upload.
	ErrSourceUnavailable = errors.New("document source unavailable")

	// ErrDocumentNotFound means no source locator is registered for the id.
	ErrDocumentNotFound = errors.New("document not found, please re-upload")

	// ErrExtractionFailed is reported by extractors that could not parse a
	// source. The pipeline degrades to placeholder content instead of
	// surfacing it.
	ErrExtractionFailed = errors.New("text extraction failed")

	// ErrIndexBuild means embedding or index construction failed. Fatal to
	// the processing attempt; the document moves to Failed and may be
	// re-ingested.
	ErrIndexBuild = errors.New("index build failed")

	// ErrAnswerGeneration wraps completion failures at query time. Per
	// question only; document state is unaffected.
	ErrAnswerGeneration = errors.New("answer generation failed")
)
