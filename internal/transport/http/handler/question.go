package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"gopherai-docqa/internal/model"
	"gopherai-docqa/internal/transport/http/response"
)

type Asker interface {
	Ask(ctx context.Context, question string) (*model.Answer, error)
}

type QuestionHandler struct {
	asker Asker
}

type AskRequest struct {
	Question string `json:"question" binding:"required,max=4000"`
}

func NewQuestionHandler(asker Asker) *QuestionHandler {
	return &QuestionHandler{asker: asker}
}

func (h *QuestionHandler) Ask(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}
	answer, err := h.asker.Ask(c.Request.Context(), req.Question)
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, answer)
}
