package app

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"gopherai-docqa/internal/ai"
	"gopherai-docqa/internal/index"
	"gopherai-docqa/internal/ingest"
	"gopherai-docqa/internal/model"
	"gopherai-docqa/internal/prompt"
)

const defaultDocumentName = "document"

// IngestEventPublisher delivers ingest notifications. It is optional; a
// failed publish is logged and never undoes a completed ingest.
type IngestEventPublisher interface {
	Publish(ctx context.Context, event model.IngestEvent) error
}

type IngestResult struct {
	Name       string `json:"name"`
	Digest     string `json:"digest"`
	PageCount  int    `json:"page_count"`
	ChunkCount int    `json:"chunk_count"`
	Mode       string `json:"mode"`
	Rebuilt    bool   `json:"rebuilt"`
}

// DocumentSummary describes the active document.
type DocumentSummary struct {
	Name       string        `json:"name"`
	Digest     string        `json:"digest"`
	Size       int           `json:"size"`
	PageCount  int           `json:"page_count"`
	ChunkCount int           `json:"chunk_count"`
	Mode       string        `json:"mode"`
	IngestedAt time.Time     `json:"ingested_at"`
	Chunks     []model.Chunk `json:"chunks,omitempty"`
}

// ready is one published (document, index) pair. It is never mutated after
// it has been stored.
type ready struct {
	doc        model.Document
	pageCount  int
	chunks     []model.Chunk
	index      index.Index
	ingestedAt time.Time
}

// Orchestrator owns the active document and sequences ingestion and
// question answering over it.
type Orchestrator struct {
	ingestor  *ingest.Ingestor
	builder   index.Builder
	generator ai.Generator
	publisher IngestEventPublisher
	timeout   time.Duration

	ingestMu sync.Mutex
	current  atomic.Pointer[ready]
}

// NewOrchestrator wires the pipeline. publisher may be nil. timeout bounds
// Ask when the caller's context has no deadline; zero disables it.
func NewOrchestrator(
	ingestor *ingest.Ingestor,
	builder index.Builder,
	generator ai.Generator,
	publisher IngestEventPublisher,
	timeout time.Duration,
) *Orchestrator {
	return &Orchestrator{
		ingestor:  ingestor,
		builder:   builder,
		generator: generator,
		publisher: publisher,
		timeout:   timeout,
	}
}

func (o *Orchestrator) Mode() string { return o.builder.Mode() }

func (o *Orchestrator) Ready() bool { return o.current.Load() != nil }

// Ingest replaces the active document with data. Content identical to the
// active document is not re-chunked or re-indexed.
func (o *Orchestrator) Ingest(ctx context.Context, name string, data []byte) (*IngestResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = defaultDocumentName
	}
	doc := model.NewDocument(name, data)

	o.ingestMu.Lock()
	defer o.ingestMu.Unlock()

	if cur := o.current.Load(); cur != nil && cur.doc.Digest == doc.Digest {
		log.Printf("document %q unchanged (digest %s), keeping index", name, shortDigest(doc.Digest))
		return cur.result(false), nil
	}

	parsed, err := o.ingestor.Ingest(doc)
	if err != nil {
		return nil, err
	}
	ix, err := o.builder.Build(ctx, parsed.Chunks)
	if err != nil {
		return nil, fmt.Errorf("build index for %q failed: %w", name, err)
	}

	doc.Data = nil
	next := &ready{
		doc:        doc,
		pageCount:  parsed.PageCount,
		chunks:     parsed.Chunks,
		index:      ix,
		ingestedAt: time.Now().UTC(),
	}
	o.current.Store(next)
	log.Printf("document %q ingested: digest=%s pages=%d chunks=%d mode=%s",
		name, shortDigest(doc.Digest), next.pageCount, len(next.chunks), ix.Mode())

	o.publish(ctx, next)
	return next.result(true), nil
}

// Ask answers question from the active document.
func (o *Orchestrator) Ask(ctx context.Context, question string) (*model.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrInvalidInput
	}
	cur := o.current.Load()
	if cur == nil {
		return nil, &NotReadyError{}
	}

	if _, ok := ctx.Deadline(); !ok && o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	retrieved, err := cur.index.Retrieve(ctx, question)
	if err != nil {
		return nil, err
	}
	text, err := o.generator.Generate(ctx, prompt.Build(question, retrieved.ChunkList()))
	if err != nil {
		return nil, err
	}

	used := retrieved.Chunks
	if used == nil {
		used = []model.ScoredChunk{}
	}
	return &model.Answer{
		Text:      strings.TrimSpace(text),
		Context:   used,
		Truncated: retrieved.Truncated,
	}, nil
}

// Current describes the active document, optionally with its chunks.
func (o *Orchestrator) Current(withChunks bool) (*DocumentSummary, error) {
	cur := o.current.Load()
	if cur == nil {
		return nil, &NotReadyError{}
	}
	summary := &DocumentSummary{
		Name:       cur.doc.Name,
		Digest:     cur.doc.Digest,
		Size:       cur.doc.Size,
		PageCount:  cur.pageCount,
		ChunkCount: len(cur.chunks),
		Mode:       cur.index.Mode(),
		IngestedAt: cur.ingestedAt,
	}
	if withChunks {
		summary.Chunks = append([]model.Chunk(nil), cur.chunks...)
	}
	return summary, nil
}

func (o *Orchestrator) publish(ctx context.Context, r *ready) {
	if o.publisher == nil {
		return
	}
	event := model.IngestEvent{
		ID:         uuid.NewString(),
		Digest:     r.doc.Digest,
		Name:       r.doc.Name,
		PageCount:  r.pageCount,
		ChunkCount: len(r.chunks),
		Mode:       r.index.Mode(),
		IngestedAt: r.ingestedAt,
	}
	if err := o.publisher.Publish(ctx, event); err != nil {
		log.Printf("publish ingest event %s failed: %v", event.ID, err)
	}
}

func (r *ready) result(rebuilt bool) *IngestResult {
	return &IngestResult{
		Name:       r.doc.Name,
		Digest:     r.doc.Digest,
		PageCount:  r.pageCount,
		ChunkCount: len(r.chunks),
		Mode:       r.index.Mode(),
		Rebuilt:    rebuilt,
	}
}

func shortDigest(d string) string {
	if len(d) > 12 {
		return d[:12]
	}
	return d
}
