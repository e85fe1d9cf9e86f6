package services

import (
	"fmt"
	"strings"

	"github.com/Mokshithabhi/chatpdf/internal/models"
)

// metadataIntent maps a question category to the keywords that detect it
// and to the metadata fields that answer it. The answer func returns ""
// when the matched fields are empty, letting the question fall through to
// retrieval.
type metadataIntent struct {
	name     string
	keywords []string
	answer   func(md *models.DocumentMetadata) string
}

// The shortcut table. Matching is plain keyword containment on the
// lower-cased question; common factual questions skip the completion and
// embedding calls entirely.
var metadataIntents = []metadataIntent{
	{
		name:     "title",
		keywords: []string{"title", "name of", "what is this document", "document name"},
		answer: func(md *models.DocumentMetadata) string {
			if md.Title != "" {
				return fmt.Sprintf("The title is: %s", md.Title)
			}
			if len(md.ExtractedInfo.PossibleTitles) > 0 {
				return fmt.Sprintf("Possible title(s): %s", strings.Join(md.ExtractedInfo.PossibleTitles, ", "))
			}
			return ""
		},
	},
	{
		name:     "author",
		keywords: []string{"author", "written by", "who wrote", "creator"},
		answer: func(md *models.DocumentMetadata) string {
			if md.Author != "" {
				return fmt.Sprintf("The author is: %s", md.Author)
			}
			if md.Creator != "" {
				return fmt.Sprintf("Created by: %s", md.Creator)
			}
			if len(md.ExtractedInfo.PossibleAuthors) > 0 {
				return fmt.Sprintf("Possible author(s): %s", strings.Join(md.ExtractedInfo.PossibleAuthors, ", "))
			}
			return ""
		},
	},
	{
		name:     "page-count",
		keywords: []string{"how many pages", "page count", "number of pages"},
		answer: func(md *models.DocumentMetadata) string {
			if md.PageCount > 0 {
				return fmt.Sprintf("This document has %d pages.", md.PageCount)
			}
			return ""
		},
	},
	{
		name:     "summary",
		keywords: []string{"what is this about", "summary", "describe this document"},
		answer: func(md *models.DocumentMetadata) string {
			return md.ExtractedInfo.DocumentSummary
		},
	},
	{
		name:     "creation-date",
		keywords: []string{"when was this created", "creation date", "when was this written"},
		answer: func(md *models.DocumentMetadata) string {
			if md.CreationDate != "" {
				return fmt.Sprintf("Created on: %s", md.CreationDate)
			}
			return ""
		},
	},
	{
		name:     "keywords",
		keywords: []string{"keywords", "subject", "topics"},
		answer: func(md *models.DocumentMetadata) string {
			if md.Keywords != "" {
				return fmt.Sprintf("Keywords: %s", md.Keywords)
			}
			if md.Subject != "" {
				return fmt.Sprintf("Subject: %s", md.Subject)
			}
			return ""
		},
	},
}

// answerFromMetadata tries the shortcut table against the question. The
// second return is false when no intent with a non-empty field matched.
func answerFromMetadata(question string, md *models.DocumentMetadata) (string, bool) {
	q := strings.ToLower(question)
	for _, intent := range metadataIntents {
		if !containsAny(q, intent.keywords) {
			continue
		}
		if text := intent.answer(md); text != "" {
			return text, true
		}
	}
	return "", false
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
