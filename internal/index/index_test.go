package index

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gopherai-docqa/internal/ai"
	"gopherai-docqa/internal/model"
)

// stubEmbedder returns fixed vectors per text and counts backend calls.
type stubEmbedder struct {
	mu      sync.Mutex
	vectors map[string][]float32
	calls   int
	texts   int
	fail    error
}

func (s *stubEmbedder) Model() string { return "stub" }

func (s *stubEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.texts += len(texts)
	if s.fail != nil {
		return nil, s.fail
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, ok := s.vectors[t]
		if !ok {
			return nil, &ai.RepresentationError{Backend: "stub", Err: fmt.Errorf("unknown text %q", t)}
		}
		out[i] = vec
	}
	return out, nil
}

func chunksOf(texts ...string) []model.Chunk {
	out := make([]model.Chunk, len(texts))
	for i, t := range texts {
		out[i] = model.Chunk{Ordinal: i, Page: i + 1, Text: t, SourceDocument: "doc"}
	}
	return out
}

func vectorIndex(t *testing.T, emb *stubEmbedder, topK int, chunks []model.Chunk) Index {
	t.Helper()
	b, err := NewBuilder(Config{Mode: ModeVector, TopK: topK}, NewRepresenter(emb, RepresenterConfig{BatchSize: 2}, nil))
	require.NoError(t, err)
	ix, err := b.Build(context.Background(), chunks)
	require.NoError(t, err)
	return ix
}

func TestVectorIndex_TopKProperties(t *testing.T) {
	emb := &stubEmbedder{vectors: map[string][]float32{
		"apples":  {1, 0, 0},
		"pears":   {0.9, 0.1, 0},
		"cars":    {0, 1, 0},
		"trucks":  {0, 0.9, 0.1},
		"weather": {0, 0, 1},
		"fruit?":  {1, 0.05, 0},
	}}
	chunks := chunksOf("apples", "pears", "cars", "trucks", "weather")

	for k := 1; k <= 7; k++ {
		t.Run(fmt.Sprintf("k=%d", k), func(t *testing.T) {
			ix := vectorIndex(t, emb, k, chunks)
			res, err := ix.Retrieve(context.Background(), "fruit?")
			require.NoError(t, err)

			assert.LessOrEqual(t, len(res.Chunks), k)
			assert.False(t, res.Truncated)
			seen := map[int]bool{}
			for i, sc := range res.Chunks {
				assert.False(t, seen[sc.Chunk.Ordinal], "duplicate chunk %d", sc.Chunk.Ordinal)
				seen[sc.Chunk.Ordinal] = true
				if i > 0 {
					assert.GreaterOrEqual(t, res.Chunks[i-1].Score, sc.Score)
				}
			}
			assert.Equal(t, "apples", res.Chunks[0].Chunk.Text)
		})
	}
}

func TestVectorIndex_DefaultTopKAndTies(t *testing.T) {
	emb := &stubEmbedder{vectors: map[string][]float32{
		"a": {1, 0}, "b": {1, 0}, "c": {1, 0}, "d": {1, 0}, "e": {1, 0}, "q": {1, 0},
	}}
	ix := vectorIndex(t, emb, 0, chunksOf("a", "b", "c", "d", "e"))

	res, err := ix.Retrieve(context.Background(), "q")
	require.NoError(t, err)
	require.Len(t, res.Chunks, DefaultTopK)
	for i, sc := range res.Chunks {
		assert.Equal(t, i, sc.Chunk.Ordinal)
		assert.InDelta(t, 1.0, sc.Score, 1e-9)
	}
}

func TestVectorIndex_SkipsBlankChunks(t *testing.T) {
	emb := &stubEmbedder{vectors: map[string][]float32{"text": {1, 0}, "q": {1, 0}}}
	chunks := chunksOf("text", "   ", "")

	ix := vectorIndex(t, emb, 4, chunks)
	assert.Equal(t, 3, ix.Len())
	assert.Equal(t, 1, emb.texts)

	res, err := ix.Retrieve(context.Background(), "q")
	require.NoError(t, err)
	require.Len(t, res.Chunks, 1)
	assert.Equal(t, 0, res.Chunks[0].Chunk.Ordinal)
}

func TestVectorBuilder_RepresentationFailure(t *testing.T) {
	emb := &stubEmbedder{fail: errors.New("connection refused")}
	b := NewVectorBuilder(NewRepresenter(emb, RepresenterConfig{}, nil), 4)

	ix, err := b.Build(context.Background(), chunksOf("x"))
	assert.Nil(t, ix)
	var repErr *ai.RepresentationError
	require.True(t, errors.As(err, &repErr))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestVectorIndex_QueryFailureIsRetrievalError(t *testing.T) {
	emb := &stubEmbedder{vectors: map[string][]float32{"x": {1}}}
	ix := vectorIndex(t, emb, 4, chunksOf("x"))

	_, err := ix.Retrieve(context.Background(), "not embeddable")
	var retErr *RetrievalError
	require.True(t, errors.As(err, &retErr))
	var repErr *ai.RepresentationError
	assert.True(t, errors.As(err, &repErr))
}

func TestRetrieve_UnbuiltIndex(t *testing.T) {
	var vec *VectorIndex
	_, err := vec.Retrieve(context.Background(), "q")
	assert.ErrorIs(t, err, ErrNotBuilt)

	var full *FullContextIndex
	_, err = full.Retrieve(context.Background(), "q")
	var retErr *RetrievalError
	assert.True(t, errors.As(err, &retErr))
	assert.ErrorIs(t, err, ErrNotBuilt)
}

func TestFullContextIndex_ReturnsWholeDocumentInOrder(t *testing.T) {
	b, err := NewBuilder(Config{Mode: ModeFullContext}, nil)
	require.NoError(t, err)
	ix, err := b.Build(context.Background(), chunksOf("one", "two", "three"))
	require.NoError(t, err)
	assert.Equal(t, ModeFullContext, ix.Mode())

	res, err := ix.Retrieve(context.Background(), "anything")
	require.NoError(t, err)
	assert.False(t, res.Truncated)
	require.Len(t, res.Chunks, 3)
	for i, sc := range res.Chunks {
		assert.Equal(t, i, sc.Chunk.Ordinal)
		assert.Zero(t, sc.Score)
	}
	assert.Equal(t, []string{"one", "two", "three"}, res.Texts())
}

func TestFullContextIndex_Budget(t *testing.T) {
	chunks := chunksOf(strings.Repeat("a", 10), strings.Repeat("b", 10), strings.Repeat("c", 10))

	tests := []struct {
		name      string
		budget    int
		want      []string
		truncated bool
	}{
		{name: "unbounded", budget: 0, want: []string{strings.Repeat("a", 10), strings.Repeat("b", 10), strings.Repeat("c", 10)}},
		{name: "exact fit", budget: 30, want: []string{strings.Repeat("a", 10), strings.Repeat("b", 10), strings.Repeat("c", 10)}},
		{name: "cut inside second", budget: 15, want: []string{strings.Repeat("a", 10), "bbbbb"}, truncated: true},
		{name: "cut on boundary", budget: 20, want: []string{strings.Repeat("a", 10), strings.Repeat("b", 10)}, truncated: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ix, err := NewFullContextBuilder(tt.budget).Build(context.Background(), chunks)
			require.NoError(t, err)
			res, err := ix.Retrieve(context.Background(), "q")
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Texts())
			assert.Equal(t, tt.truncated, res.Truncated)
		})
	}
	assert.Equal(t, strings.Repeat("b", 10), chunks[1].Text)
}

func TestNewBuilder_ModeIsExplicit(t *testing.T) {
	_, err := NewBuilder(Config{Mode: ModeVector}, nil)
	assert.Error(t, err)
	_, err = NewBuilder(Config{}, nil)
	assert.Error(t, err)
}
