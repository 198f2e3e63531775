package model

import "time"

// DocumentRecord is one row of the ingest ledger.
type DocumentRecord struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	EventID    string    `gorm:"size:36;not null;uniqueIndex" json:"event_id"`
	Digest     string    `gorm:"size:64;not null;index" json:"digest"`
	Name       string    `gorm:"size:256;not null" json:"name"`
	PageCount  int       `gorm:"not null" json:"page_count"`
	ChunkCount int       `gorm:"not null" json:"chunk_count"`
	Mode       string    `gorm:"size:32;not null" json:"mode"`
	IngestedAt time.Time `gorm:"index" json:"ingested_at"`
	CreatedAt  time.Time `json:"created_at"`
}

func NewDocumentRecord(ev IngestEvent) DocumentRecord {
	return DocumentRecord{
		EventID:    ev.ID,
		Digest:     ev.Digest,
		Name:       ev.Name,
		PageCount:  ev.PageCount,
		ChunkCount: ev.ChunkCount,
		Mode:       ev.Mode,
		IngestedAt: ev.IngestedAt,
	}
}
