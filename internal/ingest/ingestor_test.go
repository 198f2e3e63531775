package ingest

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gopherai-docqa/internal/model"
	"gopherai-docqa/internal/pkg/pdfextract/pdftest"
)

func newIngestor(t *testing.T, cfg Config) *Ingestor {
	t.Helper()
	ing, err := New(cfg)
	require.NoError(t, err)
	return ing
}

func TestIngest_PDFOneChunkPerPage(t *testing.T) {
	doc := model.NewDocument("three.pdf", pdftest.Build("Page one text", "Page two text", "Page three text"))

	res, err := newIngestor(t, Config{}).Ingest(doc)
	require.NoError(t, err)

	assert.Equal(t, 3, res.PageCount)
	require.Len(t, res.Chunks, 3)
	for i, c := range res.Chunks {
		assert.Equal(t, i, c.Ordinal)
		assert.Equal(t, i+1, c.Page)
		assert.Equal(t, doc.Digest, c.SourceDocument)
	}
	assert.Contains(t, res.Chunks[0].Text, "one")
	assert.Contains(t, res.Chunks[1].Text, "two")
	assert.Contains(t, res.Chunks[2].Text, "three")
}

func TestIngest_TextPagesKeepBlankPages(t *testing.T) {
	doc := model.NewDocument("notes.txt", []byte("first\f\fthird\f"))

	res, err := newIngestor(t, Config{Chunking: ChunkByPage}).Ingest(doc)
	require.NoError(t, err)

	require.Len(t, res.Chunks, 3)
	assert.Equal(t, "first", res.Chunks[0].Text)
	assert.True(t, res.Chunks[1].Blank())
	assert.Equal(t, "third", res.Chunks[2].Text)
}

func TestIngest_FixedChunkingPreservesOrder(t *testing.T) {
	page1 := strings.Repeat("a", 25)
	page2 := strings.Repeat("b", 5)
	doc := model.NewDocument("fixed.txt", []byte(page1+"\f"+page2))

	res, err := newIngestor(t, Config{Chunking: ChunkFixed, ChunkSize: 10, ChunkOverlap: 2}).Ingest(doc)
	require.NoError(t, err)

	var pages []int
	for i, c := range res.Chunks {
		assert.Equal(t, i, c.Ordinal)
		assert.LessOrEqual(t, len([]rune(c.Text)), 10)
		pages = append(pages, c.Page)
	}
	assert.Equal(t, []int{1, 1, 1, 2}, pages)
	assert.Equal(t, page2, res.Chunks[len(res.Chunks)-1].Text)
}

func TestIngest_FixedChunkingKeepsBlankPage(t *testing.T) {
	doc := model.NewDocument("gap.txt", []byte("first\f \fthird"))

	res, err := newIngestor(t, Config{Chunking: ChunkFixed, ChunkSize: 10}).Ingest(doc)
	require.NoError(t, err)

	require.Len(t, res.Chunks, 3)
	assert.Equal(t, 2, res.Chunks[1].Page)
	assert.Empty(t, res.Chunks[1].Text)
	assert.Equal(t, "third", res.Chunks[2].Text)
}

func TestIngest_Errors(t *testing.T) {
	ing := newIngestor(t, Config{})

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{name: "empty", data: nil, want: ErrEmptyDocument},
		{name: "whitespace only", data: []byte(" \n\f \t"), want: ErrNoText},
		{name: "binary", data: []byte{0xff, 0xfe, 0x00, 0x81}, want: ErrUnsupportedFormat},
		{name: "broken pdf", data: []byte("%PDF-1.7\ngarbage")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ing.Ingest(model.NewDocument(tt.name, tt.data))
			require.Error(t, err)
			assert.Nil(t, res)

			var ingestErr *IngestError
			require.True(t, errors.As(err, &ingestErr))
			assert.Equal(t, tt.name, ingestErr.Document)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestNew_RejectsUnknownStrategy(t *testing.T) {
	_, err := New(Config{Chunking: "sentences"})
	assert.Error(t, err)
}

func TestChunkText(t *testing.T) {
	assert.Equal(t, []string{"abcd", "cdef"}, chunkText("abcdef", 4, 2))
	assert.Equal(t, []string{"abcd", "cdef", "efg"}, chunkText("abcdefg", 4, 2))
	assert.Nil(t, chunkText("", 4, 2))
}
