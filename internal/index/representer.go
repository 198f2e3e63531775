package index

import (
	"context"
	"errors"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"gopherai-docqa/internal/ai"
	"gopherai-docqa/internal/model"
)

const (
	defaultBatchSize   = 10
	defaultConcurrency = 4
)

// VectorCache stores vectors by (model, text). Implementations may be remote,
// so every method can fail; failures only cost a backend call.
type VectorCache interface {
	Get(ctx context.Context, model, text string) ([]float32, bool, error)
	Set(ctx context.Context, model, text string, vec []float32) error
}

type RepresenterConfig struct {
	BatchSize         int
	Concurrency       int
	RequestsPerSecond float64
}

// Representer embeds chunks and queries with one embedding backend.
type Representer struct {
	embedder    ai.Embedder
	cache       VectorCache
	limiter     *rate.Limiter
	batchSize   int
	concurrency int
}

func NewRepresenter(embedder ai.Embedder, cfg RepresenterConfig, cache VectorCache) *Representer {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return &Representer{
		embedder:    embedder,
		cache:       cache,
		limiter:     limiter,
		batchSize:   cfg.BatchSize,
		concurrency: cfg.Concurrency,
	}
}

func (r *Representer) Model() string { return r.embedder.Model() }

// EmbedQuery returns the vector for a query string.
func (r *Representer) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vecs, err := r.embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedChunks returns one vector per chunk, aligned with chunks. Blank chunks
// get a nil vector and are never sent to the backend.
func (r *Representer) EmbedChunks(ctx context.Context, chunks []model.Chunk) ([][]float32, error) {
	out := make([][]float32, len(chunks))

	var pending []int
	for i, c := range chunks {
		if c.Blank() {
			continue
		}
		if vec, ok := r.cached(ctx, c.Text); ok {
			out[i] = vec
			continue
		}
		pending = append(pending, i)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for start := 0; start < len(pending); start += r.batchSize {
		end := start + r.batchSize
		if end > len(pending) {
			end = len(pending)
		}
		batch := pending[start:end]
		g.Go(func() error {
			texts := make([]string, len(batch))
			for j, idx := range batch {
				texts[j] = chunks[idx].Text
			}
			vecs, err := r.embed(gctx, texts)
			if err != nil {
				return err
			}
			for j, idx := range batch {
				out[idx] = vecs[j]
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	dim := 0
	for i, vec := range out {
		if vec == nil {
			continue
		}
		if dim == 0 {
			dim = len(vec)
		}
		if len(vec) != dim {
			return nil, &ai.RepresentationError{
				Backend: r.Model(),
				Err:     fmt.Errorf("vector dimension mismatch at chunk %d: %d != %d", chunks[i].Ordinal, len(vec), dim),
			}
		}
	}

	for _, idx := range pending {
		r.store(ctx, chunks[idx].Text, out[idx])
	}
	return out, nil
}

func (r *Representer) embed(ctx context.Context, texts []string) ([][]float32, error) {
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, &ai.RepresentationError{
				Backend: r.Model(),
				Timeout: errors.Is(err, context.DeadlineExceeded),
				Err:     fmt.Errorf("wait for embedding rate limit failed: %w", err),
			}
		}
	}

	vecs, err := r.embedder.Embed(ctx, texts)
	if err != nil {
		var repErr *ai.RepresentationError
		if errors.As(err, &repErr) {
			return nil, err
		}
		return nil, &ai.RepresentationError{Backend: r.Model(), Err: err}
	}
	if len(vecs) != len(texts) {
		return nil, &ai.RepresentationError{
			Backend: r.Model(),
			Err:     fmt.Errorf("embedding count mismatch: sent %d, got %d", len(texts), len(vecs)),
		}
	}
	for i := range vecs {
		if len(vecs[i]) == 0 {
			return nil, &ai.RepresentationError{Backend: r.Model(), Err: fmt.Errorf("empty embedding at position %d", i)}
		}
	}
	return vecs, nil
}

func (r *Representer) cached(ctx context.Context, text string) ([]float32, bool) {
	if r.cache == nil {
		return nil, false
	}
	vec, ok, err := r.cache.Get(ctx, r.Model(), text)
	if err != nil {
		log.Printf("embedding cache get failed: %v", err)
		return nil, false
	}
	if !ok || len(vec) == 0 {
		return nil, false
	}
	return vec, true
}

func (r *Representer) store(ctx context.Context, text string, vec []float32) {
	if r.cache == nil || len(vec) == 0 {
		return
	}
	if err := r.cache.Set(ctx, r.Model(), text, vec); err != nil {
		log.Printf("embedding cache set failed: %v", err)
	}
}
