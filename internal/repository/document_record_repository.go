package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gopherai-docqa/internal/model"
)

type DocumentRecordRepository struct {
	db *gorm.DB
}

func NewDocumentRecordRepository(db *gorm.DB) *DocumentRecordRepository {
	return &DocumentRecordRepository{db: db}
}

// Create inserts record. A redelivered event with an existing EventID is a
// no-op.
func (r *DocumentRecordRepository) Create(ctx context.Context, record *model.DocumentRecord) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "event_id"}}, DoNothing: true}).
		Create(record).Error
	if err != nil {
		return fmt.Errorf("create document record failed: %w", err)
	}
	return nil
}

// ListRecent returns the newest records first.
func (r *DocumentRecordRepository) ListRecent(ctx context.Context, limit int) ([]model.DocumentRecord, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var records []model.DocumentRecord
	if err := r.db.WithContext(ctx).Order("ingested_at DESC").Order("id DESC").Limit(limit).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list document records failed: %w", err)
	}
	return records, nil
}
