package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"gopherai-docqa/internal/app"
	"gopherai-docqa/internal/model"
	"gopherai-docqa/internal/transport/http/response"
)

type DocumentService interface {
	Ingest(ctx context.Context, name string, data []byte) (*app.IngestResult, error)
	Current(withChunks bool) (*app.DocumentSummary, error)
}

type LedgerReader interface {
	ListRecent(ctx context.Context, limit int) ([]model.DocumentRecord, error)
}

type DocumentHandler struct {
	docs      DocumentService
	ledger    LedgerReader
	maxUpload int64
}

// NewDocumentHandler builds the handler; ledger may be nil when no ledger is
// configured.
func NewDocumentHandler(docs DocumentService, ledger LedgerReader, maxUpload int64) *DocumentHandler {
	return &DocumentHandler{docs: docs, ledger: ledger, maxUpload: maxUpload}
}

// Upload accepts a multipart form with "file" and an optional "name" and
// makes it the active document.
func (h *DocumentHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing file")
		return
	}
	if h.maxUpload > 0 && file.Size > h.maxUpload {
		response.Error(c, http.StatusRequestEntityTooLarge, response.CodePayloadTooLarge,
			fmt.Sprintf("file too large (max %d bytes)", h.maxUpload))
		return
	}

	f, err := file.Open()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "failed to read file")
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "failed to read file")
		return
	}

	name := strings.TrimSpace(c.PostForm("name"))
	if name == "" {
		name = file.Filename
	}

	result, err := h.docs.Ingest(c.Request.Context(), name, data)
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, result)
}

// Current describes the active document; ?chunks=true includes its chunks.
func (h *DocumentHandler) Current(c *gin.Context) {
	withChunks, _ := strconv.ParseBool(c.Query("chunks"))
	summary, err := h.docs.Current(withChunks)
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, summary)
}

func (h *DocumentHandler) History(c *gin.Context) {
	if h.ledger == nil {
		response.Error(c, http.StatusNotFound, response.CodeNotFound, "ingest ledger is not enabled")
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	records, err := h.ledger.ListRecent(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, records)
}
