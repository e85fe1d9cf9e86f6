package core

import "context"

// SourceFetcher resolves a source locator (s3://, http(s):// or a local
// path) to the document's raw bytes.
type SourceFetcher interface {
	Fetch(ctx context.Context, locator string) ([]byte, error)
}
