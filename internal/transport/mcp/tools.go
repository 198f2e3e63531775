// Package mcp exposes the question-answering pipeline as MCP tools over stdio.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"gopherai-docqa/internal/app"
	"gopherai-docqa/internal/model"
)

type Pipeline interface {
	Ingest(ctx context.Context, name string, data []byte) (*app.IngestResult, error)
	Ask(ctx context.Context, question string) (*model.Answer, error)
}

// RegisterTools adds ingest_document and ask_question to server.
func RegisterTools(server *mcpserver.MCPServer, pipeline Pipeline) *Handlers {
	handlers := &Handlers{pipeline: pipeline}

	server.AddTool(mcp.Tool{
		Name:        "ingest_document",
		Description: "Load a PDF or plain-text file and make it the document that questions are answered from. Re-loading identical content is a no-op.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Path of the document on the server's filesystem",
				},
			},
			Required: []string{"path"},
		},
	}, handlers.IngestDocument)

	server.AddTool(mcp.Tool{
		Name:        "ask_question",
		Description: "Answer a question using only the loaded document. Replies \"I don't know\" when the document does not contain the answer.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"question": map[string]interface{}{
					"type":        "string",
					"description": "Question about the loaded document",
				},
			},
			Required: []string{"question"},
		},
	}, handlers.AskQuestion)

	return handlers
}
