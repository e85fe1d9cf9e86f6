package core

import "context"

// PageExtractor converts raw document bytes into an ordered sequence of
// page texts plus whatever structural properties the format carries
// (title, author, dates and so on, keyed the way the converter names them).
//
// Implementations never fail the pipeline: when the source cannot be
// parsed they return at least one placeholder page so downstream stages
// always see a non-empty page list.
type PageExtractor interface {
	ExtractPages(ctx context.Context, raw []byte, contentType string) (pages []string, props map[string]string)
}
