package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/Mokshithabhi/chatpdf/internal/core"
	"github.com/Mokshithabhi/chatpdf/internal/models"
	"github.com/Mokshithabhi/chatpdf/internal/pkg/logger"
)

const answerSystemPrompt = `You are a helpful AI assistant that answers questions based on the provided document context.
Use the context below to answer the user's question accurately and concisely.
If the answer is not in the context, say 'I cannot find this in the document.'`

// QueryService routes each question either to the metadata shortcut or to
// similarity retrieval plus one completion call.
type QueryService struct {
	cache    *DocumentCache
	embedder core.EmbeddingProvider
	llm      core.LLMProvider
	topK     int
	log      *logger.Logger
}

func NewQueryService(cache *DocumentCache, embedder core.EmbeddingProvider, llm core.LLMProvider, topK int, log *logger.Logger) *QueryService {
	if topK <= 0 {
		topK = 4
	}
	return &QueryService{cache: cache, embedder: embedder, llm: llm, topK: topK, log: log}
}

// Answer ensures the document is processed, then answers the question.
// ErrAlreadyProcessing and build failures propagate as-is; completion
// failures come back wrapped in ErrAnswerGeneration with the question
// preserved for logging.
func (s *QueryService) Answer(ctx context.Context, documentID, question string) (*models.Answer, error) {
	ix, err := s.cache.GetOrBuild(ctx, documentID, "")
	if err != nil {
		return nil, err
	}

	md, _ := s.cache.Metadata(documentID)
	if md != nil {
		if text, ok := answerFromMetadata(question, md); ok {
			s.log.Info("answered from metadata", "document_id", documentID)
			return &models.Answer{Text: text, Citations: []int{}, Source: models.SourceMetadata}, nil
		}
	}

	vecs, err := s.embedder.EmbedTexts(ctx, []string{question})
	if err != nil || len(vecs) == 0 {
		return nil, fmt.Errorf("%w: embed question %q: %v", core.ErrAnswerGeneration, question, err)
	}

	hits, err := ix.Search(vecs[0], s.topK)
	if err != nil {
		return nil, fmt.Errorf("%w: retrieval for question %q: %v", core.ErrAnswerGeneration, question, err)
	}

	answer, err := s.llm.Generate(ctx, buildSystemPrompt(md), buildUserPrompt(hits, question))
	if err != nil {
		return nil, fmt.Errorf("%w: question %q: %v", core.ErrAnswerGeneration, question, err)
	}

	pageCount := 0
	if md != nil {
		pageCount = md.PageCount
	}
	citations := resolveCitations(hits, answer, pageCount)
	s.log.Info("answered from retrieval", "document_id", documentID, "citations", citations)

	return &models.Answer{Text: answer, Citations: citations, Source: models.SourceVectorSearch}, nil
}

// buildSystemPrompt folds the known document facts into the preamble so the
// model does not hallucinate title or author the retrieval misses.
func buildSystemPrompt(md *models.DocumentMetadata) string {
	if md == nil {
		return answerSystemPrompt
	}

	title := md.Title
	if title == "" && len(md.ExtractedInfo.PossibleTitles) > 0 {
		title = md.ExtractedInfo.PossibleTitles[0]
	}
	author := md.Author
	if author == "" && len(md.ExtractedInfo.PossibleAuthors) > 0 {
		author = md.ExtractedInfo.PossibleAuthors[0]
	}

	var b strings.Builder
	b.WriteString(answerSystemPrompt)
	b.WriteString("\n\nDocument Information:\n")
	fmt.Fprintf(&b, "- Title: %s\n", orUnknown(title))
	fmt.Fprintf(&b, "- Author: %s\n", orUnknown(author))
	if md.PageCount > 0 {
		fmt.Fprintf(&b, "- Pages: %d\n", md.PageCount)
	}
	if md.ExtractedInfo.DocumentSummary != "" {
		fmt.Fprintf(&b, "- Summary: %s\n", md.ExtractedInfo.DocumentSummary)
	}
	return b.String()
}

// buildUserPrompt concatenates the retrieved chunk texts with page markers
// so citations can be traced, followed by the question.
func buildUserPrompt(hits []models.ScoredChunk, question string) string {
	var b strings.Builder
	b.WriteString("Context from document:\n")
	for _, h := range hits {
		fmt.Fprintf(&b, "[page %d]\n%s\n---\n", h.Chunk.SourcePage, h.Chunk.Text)
	}
	fmt.Fprintf(&b, "\nQuestion: %s", question)
	return b.String()
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
