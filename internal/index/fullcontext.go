package index

import (
	"context"

	"gopherai-docqa/internal/model"
)

var _ Index = (*FullContextIndex)(nil)

type FullContextBuilder struct {
	maxChars int
}

// NewFullContextBuilder bounds the returned context to maxChars runes;
// zero or less means unbounded.
func NewFullContextBuilder(maxChars int) *FullContextBuilder {
	return &FullContextBuilder{maxChars: maxChars}
}

func (b *FullContextBuilder) Mode() string { return ModeFullContext }

func (b *FullContextBuilder) Build(_ context.Context, chunks []model.Chunk) (Index, error) {
	stored := make([]model.Chunk, len(chunks))
	copy(stored, chunks)
	return &FullContextIndex{chunks: stored, maxChars: b.maxChars}, nil
}

// FullContextIndex returns the whole document in order with score 0. When the
// document exceeds the budget the tail is cut and the result is flagged.
type FullContextIndex struct {
	chunks   []model.Chunk
	maxChars int
}

func (ix *FullContextIndex) Mode() string { return ModeFullContext }

func (ix *FullContextIndex) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.chunks)
}

func (ix *FullContextIndex) Retrieve(_ context.Context, _ string) (model.RetrievalResult, error) {
	if ix == nil || ix.chunks == nil {
		return model.RetrievalResult{}, &RetrievalError{Err: ErrNotBuilt}
	}

	result := model.RetrievalResult{Chunks: make([]model.ScoredChunk, 0, len(ix.chunks))}
	remaining := ix.maxChars
	for _, c := range ix.chunks {
		if ix.maxChars > 0 {
			runes := []rune(c.Text)
			if len(runes) > remaining {
				result.Truncated = true
				if remaining > 0 {
					c.Text = string(runes[:remaining])
					result.Chunks = append(result.Chunks, model.ScoredChunk{Chunk: c})
				}
				break
			}
			remaining -= len(runes)
		}
		result.Chunks = append(result.Chunks, model.ScoredChunk{Chunk: c})
	}
	return result, nil
}
