// Package prompt renders the fixed question-answering template.
package prompt

import (
	"strings"

	"gopherai-docqa/internal/model"
)

const (
	instruction = "Answer the question using only the context below. If the answer is not\n" +
		"contained in the context, reply exactly \"I don't know\"."

	// Separator sits between consecutive context chunks.
	Separator = "\n---\n"
)

// Build renders the prompt for question over chunks, in the given order.
// Chunk text is inserted unmodified.
func Build(question string, chunks []model.Chunk) string {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	var b strings.Builder
	b.WriteString(instruction)
	b.WriteString("\n\nContext:\n")
	b.WriteString(strings.Join(texts, Separator))
	b.WriteString("\n\nQuestion:\n")
	b.WriteString(question)
	return b.String()
}
