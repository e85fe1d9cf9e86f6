package handlers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Mokshithabhi/chatpdf/internal/config"
	"github.com/Mokshithabhi/chatpdf/internal/core"
	objectclient "github.com/Mokshithabhi/chatpdf/internal/core/object-client"
	"github.com/Mokshithabhi/chatpdf/internal/models"
	"github.com/Mokshithabhi/chatpdf/internal/pkg/logger"
	"github.com/Mokshithabhi/chatpdf/internal/services"
)

const maxUploadBytes = 52 << 20 // 52 MB

type DocumentHandler struct {
	cache   *services.DocumentCache
	objects objectclient.ObjectClient // nil when S3 is not configured
	cfg     *config.Config
	log     *logger.Logger
}

func NewDocumentHandler(cache *services.DocumentCache, objects objectclient.ObjectClient, cfg *config.Config, log *logger.Logger) *DocumentHandler {
	return &DocumentHandler{cache: cache, objects: objects, cfg: cfg, log: log}
}

// UploadDocument accepts a multipart file, derives the document id from the
// content hash, stages the bytes, and kicks off ingestion in the background.
// Re-uploading identical bytes lands on the same cache entry.
func (h *DocumentHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "invalid file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		http.Error(w, "could not read file", http.StatusBadRequest)
		return
	}
	if len(data) > maxUploadBytes {
		http.Error(w, "file too large", http.StatusRequestEntityTooLarge)
		return
	}

	sum := sha256.Sum256(data)
	docID := hex.EncodeToString(sum[:])
	fileName := filepath.Base(header.Filename)

	locator, err := h.stageSource(r.Context(), docID, fileName, data)
	if err != nil {
		h.log.Error("staging upload failed", "document_id", docID, "err", err)
		http.Error(w, "could not store upload", http.StatusInternalServerError)
		return
	}

	h.cache.RegisterSource(docID, locator, fileName)

	// Builds are shared and must survive the uploader walking away, so they
	// run on a detached context.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if _, err := h.cache.Ingest(ctx, docID, locator); err != nil {
			h.log.Error("background ingest failed", "document_id", docID, "err", err)
		}
	}()

	doc := models.Document{
		ID:            docID,
		FileName:      fileName,
		SourceLocator: locator,
		CreatedAt:     time.Now().UTC(),
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"document":   doc,
		"processing": h.cache.ProcessingInfo(docID),
	})
}

// stageSource writes the bytes to S3 when configured, otherwise to the
// local upload directory.
func (h *DocumentHandler) stageSource(ctx context.Context, docID, fileName string, data []byte) (string, error) {
	if h.objects != nil {
		key := fmt.Sprintf("documents/%s/%s", docID, fileName)
		return h.objects.UploadFile(ctx, h.cfg.BucketName, key, data, "application/pdf")
	}

	if err := os.MkdirAll(h.cfg.UploadDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(h.cfg.UploadDir, docID+filepath.Ext(fileName))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

type ingestRequest struct {
	DocumentID string `json:"document_id"`
	Locator    string `json:"locator,omitempty"`
}

// IngestDocument is the idempotent processing trigger. Safe to call
// repeatedly; a Processed document is a cache hit and an in-flight build is
// reported, not failed.
func (h *DocumentHandler) IngestDocument(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DocumentID == "" {
		http.Error(w, "missing document_id", http.StatusBadRequest)
		return
	}

	info, err := h.cache.Ingest(r.Context(), req.DocumentID, req.Locator)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, core.ErrDocumentNotFound):
			status = http.StatusNotFound
		case errors.Is(err, core.ErrSourceUnavailable):
			status = http.StatusBadGateway
		}
		writeJSON(w, status, map[string]any{
			"document_id": req.DocumentID,
			"processing":  info,
			"error":       err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"document_id": req.DocumentID,
		"processing":  info,
	})
}

// DescribeDocument reports metadata plus processing info, with the quick
// answers block the UI renders while the user types.
func (h *DocumentHandler) DescribeDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "documentID")
	if docID == "" {
		http.Error(w, "missing documentID", http.StatusBadRequest)
		return
	}

	info := h.cache.ProcessingInfo(docID)
	resp := map[string]any{
		"document_id": docID,
		"processing":  info,
	}
	if md, ok := h.cache.Metadata(docID); ok {
		resp["metadata"] = md
		resp["quick_answers"] = quickAnswers(md)
	}
	writeJSON(w, http.StatusOK, resp)
}

// quickAnswers resolves the common factual fields with inferred fallbacks.
func quickAnswers(md *models.DocumentMetadata) map[string]string {
	qa := make(map[string]string)

	title := md.Title
	if title == "" && len(md.ExtractedInfo.PossibleTitles) > 0 {
		title = md.ExtractedInfo.PossibleTitles[0]
	}
	if title != "" {
		qa["title"] = title
	}

	author := md.Author
	if author == "" && len(md.ExtractedInfo.PossibleAuthors) > 0 {
		author = md.ExtractedInfo.PossibleAuthors[0]
	}
	if author != "" {
		qa["author"] = author
	}

	if md.PageCount > 0 {
		qa["page_count"] = fmt.Sprintf("%d", md.PageCount)
	}
	if md.ExtractedInfo.DocumentSummary != "" {
		qa["summary"] = md.ExtractedInfo.DocumentSummary
	}
	if md.CreationDate != "" {
		qa["creation_date"] = md.CreationDate
	}
	return qa
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
