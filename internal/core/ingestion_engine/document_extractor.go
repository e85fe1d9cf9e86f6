package ingestion_engine

import (
	"bytes"
	"context"
	"strings"

	"code.sajari.com/docconv"

	"github.com/Mokshithabhi/chatpdf/internal/core"
	"github.com/Mokshithabhi/chatpdf/internal/pkg/logger"
)

var _ core.PageExtractor = (*DocconvExtractor)(nil)

// DocconvExtractor implements core.PageExtractor using sajari/docconv.
type DocconvExtractor struct {
	log *logger.Logger
}

func NewDocconvExtractor(log *logger.Logger) *DocconvExtractor {
	return &DocconvExtractor{log: log}
}

// ExtractPages converts the raw bytes and splits the body into pages on the
// form feed separators pdftotext emits between PDF pages. Formats without
// page separators come back as a single page. Parse failures degrade to one
// placeholder page; ingestion never aborts here.
func (e *DocconvExtractor) ExtractPages(ctx context.Context, raw []byte, contentType string) ([]string, map[string]string) {
	res, err := docconv.Convert(bytes.NewReader(raw), contentType, false)
	if err != nil || res == nil || strings.TrimSpace(res.Body) == "" {
		e.log.Warn("extraction degraded to placeholder page", "content_type", contentType, "err", err)
		return []string{PlaceholderPage}, nil
	}

	if err := ctx.Err(); err != nil {
		return []string{PlaceholderPage}, res.Meta
	}

	pages := splitPages(res.Body)
	if len(pages) == 0 {
		pages = []string{PlaceholderPage}
	}
	return pages, res.Meta
}

// splitPages cuts the converted body on form feeds, trimming whitespace-only
// pages off the tail (pdftotext ends the last page with a trailing \f).
func splitPages(body string) []string {
	parts := strings.Split(body, "\f")
	for len(parts) > 0 && strings.TrimSpace(parts[len(parts)-1]) == "" {
		parts = parts[:len(parts)-1]
	}
	pages := make([]string, 0, len(parts))
	for _, p := range parts {
		pages = append(pages, strings.TrimSpace(p))
	}
	return pages
}

// MimeTypeFor maps a file name to the converter mime type. Unknown
// extensions default to PDF since that is what the upload surface accepts.
func MimeTypeFor(filename string) string {
	mt := docconv.MimeTypeByExtension(filename)
	if mt == "" || mt == "application/octet-stream" {
		return "application/pdf"
	}
	return mt
}
