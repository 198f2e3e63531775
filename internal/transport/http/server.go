package http

import (
	"github.com/gin-gonic/gin"

	"gopherai-docqa/internal/bootstrap"
	"gopherai-docqa/internal/transport/http/handler"
	"gopherai-docqa/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(middleware.RequestID(), gin.Logger(), gin.Recovery())
	router.MaxMultipartMemory = app.Config.MaxUploadBytes()

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	var ledger handler.LedgerReader
	if app.Ledger != nil {
		ledger = app.Ledger
	}
	documentHandler := handler.NewDocumentHandler(app.Orchestrator, ledger, app.Config.MaxUploadBytes())
	questionHandler := handler.NewQuestionHandler(app.Orchestrator)

	v1 := router.Group("/api/v1")
	documents := v1.Group("/documents")
	documents.POST("", documentHandler.Upload)
	documents.GET("/current", documentHandler.Current)
	documents.GET("/history", documentHandler.History)

	v1.POST("/questions", questionHandler.Ask)

	return router
}
