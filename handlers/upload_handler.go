package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/caseforge/caseforge/rag_service"
)

// maxUploadSize caps document uploads at 20MB.
const maxUploadSize = 20 << 20

type documentProcessor interface {
	ProcessDocument(ctx context.Context, id, filename string, content []byte) (*rag_service.IngestResult, error)
}

// UploadHandler accepts corpus documents over HTTP and feeds them to
// the ingestion pipeline.
type UploadHandler struct {
	processor documentProcessor
	logger    *slog.Logger
}

func NewUploadHandler(processor documentProcessor, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{processor: processor, logger: logger}
}

// Upload handles POST /documents: a multipart form with a "document"
// file field. The stored document id is generated here, so uploading
// the same file twice indexes two documents.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeJSONError(w, "File too large or invalid form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("document")
	if err != nil {
		writeJSONError(w, "No document file provided", http.StatusBadRequest)
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error("Failed to read uploaded file",
			slog.String("filename", header.Filename),
			slog.String("error", err.Error()))
		writeJSONError(w, "Failed to read uploaded file", http.StatusInternalServerError)
		return
	}

	docID := uuid.New().String()
	result, err := h.processor.ProcessDocument(r.Context(), docID, header.Filename, content)
	if err != nil {
		switch {
		case errors.Is(err, rag_service.ErrEmptyDocument):
			writeJSONError(w, "Document contains no extractable text", http.StatusUnprocessableEntity)
		case errors.Is(err, rag_service.ErrUnsupportedType):
			writeJSONError(w, "Unsupported document type", http.StatusUnsupportedMediaType)
		default:
			h.logger.Error("Document ingestion failed",
				slog.String("document_id", docID),
				slog.String("filename", header.Filename),
				slog.String("error", err.Error()))
			writeJSONError(w, "Failed to index document", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusCreated, result)
}
