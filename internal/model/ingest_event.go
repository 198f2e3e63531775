package model

import "time"

// IngestEvent is emitted after a new index has been published. It carries
// document metadata only.
type IngestEvent struct {
	ID         string    `json:"id"`
	Digest     string    `json:"digest"`
	Name       string    `json:"name"`
	PageCount  int       `json:"page_count"`
	ChunkCount int       `json:"chunk_count"`
	Mode       string    `json:"mode"`
	IngestedAt time.Time `json:"ingested_at"`
}
