package ingestion_engine

import (
	"strings"

	"github.com/Mokshithabhi/chatpdf/internal/models"
)

// ChunkExtractor cuts the page stream into fixed-size character windows
// with overlap. The same page input always yields the same chunk sequence.
type ChunkExtractor struct {
	size    int
	overlap int
}

func NewChunkExtractor(size, overlap int) *ChunkExtractor {
	if size <= 0 {
		size = 1000
	}
	if overlap < 0 || overlap >= size {
		overlap = size / 5
	}
	return &ChunkExtractor{size: size, overlap: overlap}
}

// Split flattens the pages into one rune stream (pages joined with a
// newline) and slides a window of c.size runes advancing by size-overlap.
// A chunk that spans a page boundary keeps the page of its first rune, so
// no chunk ever loses its provenance.
func (c *ChunkExtractor) Split(pages []string) []models.Chunk {
	if len(pages) == 0 {
		return nil
	}

	// pageStarts[i] is the rune offset where page i+1 begins in the joined text.
	var (
		joined     strings.Builder
		pageStarts = make([]int, 0, len(pages))
		offset     int
	)
	for i, p := range pages {
		if i > 0 {
			joined.WriteByte('\n')
			offset++
		}
		pageStarts = append(pageStarts, offset)
		joined.WriteString(p)
		offset += len([]rune(p))
	}

	runes := []rune(joined.String())
	if len(runes) == 0 {
		return nil
	}

	step := c.size - c.overlap
	chunks := make([]models.Chunk, 0, len(runes)/step+1)
	for start, pos := 0, 0; start < len(runes); start += step {
		end := start + c.size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, models.Chunk{
			Text:       string(runes[start:end]),
			SourcePage: pageAt(pageStarts, start),
			Position:   pos,
		})
		pos++
		if end == len(runes) {
			break
		}
	}
	return chunks
}

// pageAt returns the 1-based page owning the given rune offset.
func pageAt(pageStarts []int, offset int) int {
	page := 1
	for i, s := range pageStarts {
		if offset < s {
			break
		}
		page = i + 1
	}
	return page
}
