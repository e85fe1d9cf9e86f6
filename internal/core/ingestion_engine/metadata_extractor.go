package ingestion_engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/Mokshithabhi/chatpdf/internal/core"
	"github.com/Mokshithabhi/chatpdf/internal/models"
	"github.com/Mokshithabhi/chatpdf/internal/pkg/logger"
)

// Character budgets for the content-inference pass.
const (
	firstPageCap  = 2000
	inferenceCap  = 4000
	inferencePages = 3
)

const inferenceSystemPrompt = `You extract document metadata. Respond with JSON only, no prose, no code fences.`

const inferencePromptTemplate = `Extract the following information from this document content:

1. Document title (look for title, heading, or document name)
2. Author name(s) (look for "by", "author", "written by", etc.)
3. Brief summary (1-2 sentences about what this document is about)

Content:
%s

Respond in JSON format:
{
  "titles": ["possible title 1", "possible title 2"],
  "authors": ["possible author 1", "possible author 2"],
  "summary": "brief document summary"
}`

// MetadataExtractor builds DocumentMetadata from structural document
// properties, enriched with a bounded model call over the first pages.
type MetadataExtractor struct {
	llm core.LLMProvider
	log *logger.Logger
}

func NewMetadataExtractor(llm core.LLMProvider, log *logger.Logger) *MetadataExtractor {
	return &MetadataExtractor{llm: llm, log: log}
}

// Extract never fails: a dead or rambling model degrades to an empty
// ExtractedInfo while the structural fields are kept.
func (m *MetadataExtractor) Extract(ctx context.Context, pages []string, props map[string]string) models.DocumentMetadata {
	md := models.DocumentMetadata{
		Title:            props["Title"],
		Author:           props["Author"],
		Creator:          props["Creator"],
		Producer:         props["Producer"],
		Subject:          props["Subject"],
		Keywords:         props["Keywords"],
		CreationDate:     props["CreationDate"],
		ModificationDate: props["ModDate"],
		PageCount:        len(pages),
	}
	if n, err := strconv.Atoi(strings.TrimSpace(props["Pages"])); err == nil && n > 0 {
		md.PageCount = n
	}

	md.ExtractedInfo = m.inferFromContent(ctx, pages)
	return md
}

// inferredFields is the shape the model is asked to return.
type inferredFields struct {
	Titles  []string `json:"titles"`
	Authors []string `json:"authors"`
	Summary string   `json:"summary"`
}

func (m *MetadataExtractor) inferFromContent(ctx context.Context, pages []string) models.ExtractedInfo {
	info := models.ExtractedInfo{
		PossibleTitles:  []string{},
		PossibleAuthors: []string{},
	}
	if len(pages) > 0 {
		info.FirstPageText = truncateRunes(pages[0], firstPageCap)
	}

	head := pages
	if len(head) > inferencePages {
		head = head[:inferencePages]
	}
	content := truncateRunes(strings.Join(head, "\n"), inferenceCap)
	if strings.TrimSpace(content) == "" {
		return info
	}

	reply, err := m.llm.Generate(ctx, inferenceSystemPrompt, fmt.Sprintf(inferencePromptTemplate, content))
	if err != nil {
		m.log.Warn("content metadata inference failed", "err", err)
		return info
	}

	fields, ok := parseInferredFields(reply)
	if !ok {
		m.log.Warn("could not parse metadata inference reply", "reply_len", len(reply))
		return info
	}

	if fields.Titles != nil {
		info.PossibleTitles = fields.Titles
	}
	if fields.Authors != nil {
		info.PossibleAuthors = fields.Authors
	}
	info.DocumentSummary = fields.Summary
	return info
}

// parseInferredFields tolerates code-fenced or prose-wrapped replies by
// parsing the outermost {...} span.
func parseInferredFields(reply string) (inferredFields, bool) {
	var fields inferredFields
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return fields, false
	}
	if err := json.Unmarshal([]byte(reply[start:end+1]), &fields); err != nil {
		return fields, false
	}
	return fields, true
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
