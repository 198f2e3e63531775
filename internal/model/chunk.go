package model

import "strings"

// Chunk is one retrievable unit of a document. Ordinal is the position in
// document order and never changes after ingestion.
type Chunk struct {
	Ordinal        int    `json:"ordinal"`
	Page           int    `json:"page"`
	Text           string `json:"text"`
	SourceDocument string `json:"source_document"`
}

// Blank reports whether the chunk carries no retrievable text.
func (c Chunk) Blank() bool {
	return strings.TrimSpace(c.Text) == ""
}

type ScoredChunk struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"`
}

// RetrievalResult is ranked best first. Truncated is set when a context
// budget cut part of the document.
type RetrievalResult struct {
	Chunks    []ScoredChunk `json:"chunks"`
	Truncated bool          `json:"truncated"`
}

// Texts returns the chunk contents in result order.
func (r RetrievalResult) Texts() []string {
	out := make([]string, len(r.Chunks))
	for i := range r.Chunks {
		out[i] = r.Chunks[i].Chunk.Text
	}
	return out
}

// ChunkList returns the chunks in result order without scores.
func (r RetrievalResult) ChunkList() []Chunk {
	out := make([]Chunk, len(r.Chunks))
	for i := range r.Chunks {
		out[i] = r.Chunks[i].Chunk
	}
	return out
}
