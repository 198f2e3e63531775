package handler

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"gopherai-docqa/internal/ai"
	"gopherai-docqa/internal/app"
	"gopherai-docqa/internal/index"
	"gopherai-docqa/internal/ingest"
	"gopherai-docqa/internal/transport/http/response"
)

// writeError maps pipeline errors to HTTP statuses. Backend failures are
// reported verbatim so callers can see the upstream status and body.
func writeError(c *gin.Context, err error) {
	var (
		ingestErr   *ingest.IngestError
		notReady    *app.NotReadyError
		genErr      *ai.GenerationError
		repErr      *ai.RepresentationError
		retrieveErr *index.RetrievalError
	)

	switch {
	case errors.Is(err, ai.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		response.Error(c, http.StatusGatewayTimeout, response.CodeUpstreamTimeout, err.Error())
	case errors.As(err, &ingestErr):
		response.Error(c, http.StatusBadRequest, response.CodeIngestFailed, err.Error())
	case errors.As(err, &notReady):
		response.Error(c, http.StatusConflict, response.CodeNotReady, err.Error())
	case errors.Is(err, app.ErrInvalidInput):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
	case errors.As(err, &genErr), errors.As(err, &repErr), errors.As(err, &retrieveErr):
		response.Error(c, http.StatusBadGateway, response.CodeUpstreamFailed, err.Error())
	default:
		log.Printf("request %s failed: %v", c.GetString(response.RequestIDKey), err)
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "internal error")
	}
}
