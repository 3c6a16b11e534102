package repository

import (
	"context"

	"relove/internal/models"

	"gorm.io/gorm"
)

// ReviewRepository defines the interface for the append-only review audit log.
// Records are never updated or deleted.
type ReviewRepository interface {
	Append(ctx context.Context, record *models.ReviewRecord) error
	ListByItem(ctx context.Context, itemID uint, limit, offset int) ([]*models.ReviewRecord, error)
}

// reviewRepository implements ReviewRepository
type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository creates a new review repository
func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Append(ctx context.Context, record *models.ReviewRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *reviewRepository) ListByItem(ctx context.Context, itemID uint, limit, offset int) ([]*models.ReviewRecord, error) {
	var records []*models.ReviewRecord
	q := r.db.WithContext(ctx).
		Preload("Reviewer").
		Where("item_id = ?", itemID).
		Order("created_at ASC, id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	if err := q.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
