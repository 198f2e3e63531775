package index

import (
	"context"
	"fmt"
	"math"
	"sort"

	"gopherai-docqa/internal/model"
)

var _ Index = (*VectorIndex)(nil)

type VectorBuilder struct {
	rep  *Representer
	topK int
}

func NewVectorBuilder(rep *Representer, topK int) *VectorBuilder {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &VectorBuilder{rep: rep, topK: topK}
}

func (b *VectorBuilder) Mode() string { return ModeVector }

func (b *VectorBuilder) Build(ctx context.Context, chunks []model.Chunk) (Index, error) {
	vecs, err := b.rep.EmbedChunks(ctx, chunks)
	if err != nil {
		return nil, err
	}
	ix := &VectorIndex{rep: b.rep, topK: b.topK, size: len(chunks)}
	for i, c := range chunks {
		if vecs[i] == nil {
			continue
		}
		ix.entries = append(ix.entries, vectorEntry{chunk: c, vector: vecs[i], norm: norm(vecs[i])})
		ix.dim = len(vecs[i])
	}
	return ix, nil
}

type vectorEntry struct {
	chunk  model.Chunk
	vector []float32
	norm   float64
}

// VectorIndex scores every stored vector against the query by cosine
// similarity and keeps the best topK. Equal scores keep document order.
type VectorIndex struct {
	rep     *Representer
	entries []vectorEntry
	topK    int
	dim     int
	size    int
}

func (ix *VectorIndex) Mode() string { return ModeVector }

func (ix *VectorIndex) Len() int {
	if ix == nil {
		return 0
	}
	return ix.size
}

func (ix *VectorIndex) Retrieve(ctx context.Context, query string) (model.RetrievalResult, error) {
	if ix == nil || ix.rep == nil {
		return model.RetrievalResult{}, &RetrievalError{Err: ErrNotBuilt}
	}
	if len(ix.entries) == 0 {
		return model.RetrievalResult{}, nil
	}

	q, err := ix.rep.EmbedQuery(ctx, query)
	if err != nil {
		return model.RetrievalResult{}, &RetrievalError{Err: err}
	}
	if len(q) != ix.dim {
		return model.RetrievalResult{}, &RetrievalError{
			Err: fmt.Errorf("query vector has dimension %d, index has %d", len(q), ix.dim),
		}
	}

	qNorm := norm(q)
	scored := make([]model.ScoredChunk, len(ix.entries))
	for i, e := range ix.entries {
		scored[i] = model.ScoredChunk{Chunk: e.chunk, Score: cosine(q, qNorm, e.vector, e.norm)}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Chunk.Ordinal < scored[j].Chunk.Ordinal
	})

	k := ix.topK
	if k > len(scored) {
		k = len(scored)
	}
	return model.RetrievalResult{Chunks: scored[:k]}, nil
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func cosine(a []float32, aNorm float64, b []float32, bNorm float64) float64 {
	if aNorm == 0 || bNorm == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot / (aNorm * bNorm)
}
