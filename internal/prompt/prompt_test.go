package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"gopherai-docqa/internal/model"
)

func TestBuild_Template(t *testing.T) {
	chunks := []model.Chunk{
		{Ordinal: 2, Text: "Go was announced in 2009."},
		{Ordinal: 0, Text: "  keeps  spacing  "},
	}

	got := Build("When was Go announced?", chunks)

	want := "Answer the question using only the context below. If the answer is not\n" +
		"contained in the context, reply exactly \"I don't know\".\n\n" +
		"Context:\n" +
		"Go was announced in 2009.\n---\n  keeps  spacing  \n\n" +
		"Question:\n" +
		"When was Go announced?"
	assert.Equal(t, want, got)
}

func TestBuild_IsPure(t *testing.T) {
	chunks := []model.Chunk{{Text: "a"}, {Text: "b"}}
	first := Build("q", chunks)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Build("q", chunks))
	}
	assert.Equal(t, "a", chunks[0].Text)
}

func TestBuild_EmptyContext(t *testing.T) {
	for _, chunks := range [][]model.Chunk{nil, {}} {
		got := Build("What is the capital of France?", chunks)
		assert.Contains(t, got, "Context:\n\n\nQuestion:\nWhat is the capital of France?")
		assert.True(t, strings.HasPrefix(got, instruction))
		assert.NotContains(t, got, Separator)
	}
}
