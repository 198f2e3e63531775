package model

// Answer is the generated text plus the chunks that were supplied as context,
// in the order they appeared in the prompt.
type Answer struct {
	Text      string        `json:"answer"`
	Context   []ScoredChunk `json:"context_chunks"`
	Truncated bool          `json:"truncated"`
}
