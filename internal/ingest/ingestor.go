// Package ingest turns uploaded document bytes into ordered chunks.
package ingest

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"gopherai-docqa/internal/model"
	"gopherai-docqa/internal/pkg/pdfextract"
)

const (
	ChunkByPage = "page"
	ChunkFixed  = "fixed"

	defaultChunkSize = 1000
	pageBreak        = "\f"
)

var (
	ErrEmptyDocument     = errors.New("document is empty")
	ErrNoText            = errors.New("document contains no extractable text")
	ErrUnsupportedFormat = errors.New("unsupported document format")
)

// IngestError reports a document that could not be turned into chunks.
type IngestError struct {
	Document string
	Err      error
}

func (e *IngestError) Error() string {
	if e.Document == "" {
		return "ingest failed: " + e.Err.Error()
	}
	return fmt.Sprintf("ingest %q failed: %v", e.Document, e.Err)
}

func (e *IngestError) Unwrap() error { return e.Err }

type Config struct {
	Chunking     string
	ChunkSize    int
	ChunkOverlap int
}

type Result struct {
	PageCount int
	Chunks    []model.Chunk
}

type Ingestor struct {
	chunking string
	size     int
	overlap  int
}

func New(cfg Config) (*Ingestor, error) {
	chunking := strings.TrimSpace(cfg.Chunking)
	if chunking == "" {
		chunking = ChunkByPage
	}
	if chunking != ChunkByPage && chunking != ChunkFixed {
		return nil, fmt.Errorf("unknown chunking strategy %q", cfg.Chunking)
	}
	size := cfg.ChunkSize
	if size <= 0 {
		size = defaultChunkSize
	}
	overlap := cfg.ChunkOverlap
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 2
	}
	return &Ingestor{chunking: chunking, size: size, overlap: overlap}, nil
}

func (i *Ingestor) Chunking() string { return i.chunking }

// Ingest splits doc into chunks numbered from 0 in document order.
func (i *Ingestor) Ingest(doc model.Document) (*Result, error) {
	if len(doc.Data) == 0 {
		return nil, &IngestError{Document: doc.Name, Err: ErrEmptyDocument}
	}
	pages, err := readPages(doc.Data)
	if err != nil {
		return nil, &IngestError{Document: doc.Name, Err: err}
	}

	hasText := false
	for _, p := range pages {
		if strings.TrimSpace(p) != "" {
			hasText = true
			break
		}
	}
	if !hasText {
		return nil, &IngestError{Document: doc.Name, Err: ErrNoText}
	}

	var chunks []model.Chunk
	for pageIdx, text := range pages {
		text = strings.TrimSpace(text)
		var parts []string
		if i.chunking == ChunkFixed && text != "" {
			parts = chunkText(text, i.size, i.overlap)
		} else {
			parts = []string{text}
		}
		for _, part := range parts {
			chunks = append(chunks, model.Chunk{
				Ordinal:        len(chunks),
				Page:           pageIdx + 1,
				Text:           part,
				SourceDocument: doc.Digest,
			})
		}
	}
	return &Result{PageCount: len(pages), Chunks: chunks}, nil
}

func readPages(data []byte) ([]string, error) {
	if pdfextract.IsPDF(data) {
		return pdfextract.ExtractPages(data)
	}
	if !utf8.Valid(data) {
		return nil, ErrUnsupportedFormat
	}
	text := strings.TrimSuffix(string(data), pageBreak)
	return strings.Split(text, pageBreak), nil
}

// chunkText splits text into overlapping windows by rune count.
func chunkText(text string, size, overlap int) []string {
	var chunks []string
	runes := []rune(text)
	for i := 0; i < len(runes); {
		end := i + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[i:end]))
		if end == len(runes) {
			break
		}
		i += size - overlap
	}
	return chunks
}
