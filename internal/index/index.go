// Package index holds the in-memory retrieval structures built from one
// document's chunks.
package index

import (
	"context"
	"errors"
	"fmt"

	"gopherai-docqa/internal/model"
)

const (
	ModeVector      = "vector"
	ModeFullContext = "full_context"

	DefaultTopK            = 4
	DefaultMaxContextChars = 32000
)

var ErrNotBuilt = errors.New("index has not been built")

// RetrievalError reports a query that could not be answered by the index.
// An empty result is not an error.
type RetrievalError struct {
	Err error
}

func (e *RetrievalError) Error() string { return "retrieval failed: " + e.Err.Error() }

func (e *RetrievalError) Unwrap() error { return e.Err }

type Retriever interface {
	Retrieve(ctx context.Context, query string) (model.RetrievalResult, error)
}

// Index is an immutable, fully built retrieval structure over one document.
type Index interface {
	Retriever
	Mode() string
	Len() int
}

// Builder builds an Index for a chunk list. Builders for both modes share
// this interface so callers never branch on the mode.
type Builder interface {
	Build(ctx context.Context, chunks []model.Chunk) (Index, error)
	Mode() string
}

type Config struct {
	Mode            string
	TopK            int
	MaxContextChars int
}

// NewBuilder returns the builder for cfg.Mode. Vector mode requires a
// representer; full-context mode ignores it.
func NewBuilder(cfg Config, rep *Representer) (Builder, error) {
	switch cfg.Mode {
	case ModeVector:
		if rep == nil {
			return nil, fmt.Errorf("vector mode requires an embedding backend")
		}
		return NewVectorBuilder(rep, cfg.TopK), nil
	case ModeFullContext:
		return NewFullContextBuilder(cfg.MaxContextChars), nil
	default:
		return nil, fmt.Errorf("unknown retrieval mode %q", cfg.Mode)
	}
}
