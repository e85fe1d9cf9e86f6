package services

import (
	"regexp"
	"sort"
	"strconv"

	"github.com/Mokshithabhi/chatpdf/internal/models"
)

var pageRefPattern = regexp.MustCompile(`(?i)\bpage\s+(\d+)\b`)

// resolveCitations maps retrieved chunks back to their source pages,
// deduplicated and ascending. Textual "page N" references in the answer are
// unioned in as advisory extras, bounded by the document's page count —
// the retrieval-derived pages are the ground truth floor, since the model's
// self-reported citations are unverified.
func resolveCitations(retrieved []models.ScoredChunk, answerText string, pageCount int) []int {
	seen := make(map[int]bool, len(retrieved))
	for _, sc := range retrieved {
		if sc.Chunk.SourcePage > 0 {
			seen[sc.Chunk.SourcePage] = true
		}
	}

	for _, m := range pageRefPattern.FindAllStringSubmatch(answerText, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 {
			continue
		}
		if pageCount > 0 && n > pageCount {
			continue
		}
		seen[n] = true
	}

	pages := make([]int, 0, len(seen))
	for p := range seen {
		pages = append(pages, p)
	}
	sort.Ints(pages)
	return pages
}
