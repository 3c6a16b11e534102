// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"

	"relove/internal/cache"
	"relove/internal/models"

	"gorm.io/gorm"
)

// ErrStatusConflict is returned by conditional updates when the listing exists
// but its approval status no longer matches the expected one, meaning a
// concurrent decision won the race.
var ErrStatusConflict = errors.New("approval status changed concurrently")

// ListingFilter narrows List queries. Nil pointer fields are not applied.
type ListingFilter struct {
	SellerID   *uint
	Status     *models.ApprovalStatus
	ActiveOnly bool
	Category   string
	Size       string
	Condition  string
	// OldestFirst orders by submitted_at ascending (review queue order)
	// instead of the default created_at descending.
	OldestFirst bool
	Limit       int
	Offset      int
}

// ListingRepository defines the interface for listing data operations
type ListingRepository interface {
	Create(ctx context.Context, listing *models.Listing) error
	GetByID(ctx context.Context, id uint) (*models.Listing, error)
	Update(ctx context.Context, id uint, fields map[string]any) error
	List(ctx context.Context, filter ListingFilter) ([]*models.Listing, error)
	// UpdateWhereStatus applies fields only if the listing is currently in the
	// expected approval status. Returns gorm.ErrRecordNotFound if the listing
	// does not exist and ErrStatusConflict if it exists in another status.
	UpdateWhereStatus(ctx context.Context, id uint, expected models.ApprovalStatus, fields map[string]any) error
	// ApplyDecision performs UpdateWhereStatus and appends the review record
	// in a single transaction, so a decision and its audit entry commit
	// together or not at all.
	ApplyDecision(ctx context.Context, id uint, expected models.ApprovalStatus, fields map[string]any, record *models.ReviewRecord) error
}

// listingRepository implements ListingRepository
type listingRepository struct {
	db *gorm.DB
}

// NewListingRepository creates a new listing repository
func NewListingRepository(db *gorm.DB) ListingRepository {
	return &listingRepository{db: db}
}

func (r *listingRepository) Create(ctx context.Context, listing *models.Listing) error {
	err := r.db.WithContext(ctx).Create(listing).Error
	if err == nil {
		cache.InvalidatePublicListings(ctx)
	}
	return err
}

func (r *listingRepository) GetByID(ctx context.Context, id uint) (*models.Listing, error) {
	var listing models.Listing
	err := cache.Aside(ctx, cache.ItemKey(id), &listing, cache.ItemTTL, func() error {
		return r.db.WithContext(ctx).Preload("Seller").First(&listing, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *listingRepository) Update(ctx context.Context, id uint, fields map[string]any) error {
	result := r.db.WithContext(ctx).
		Model(&models.Listing{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	r.invalidate(ctx, id)
	return nil
}

func (r *listingRepository) List(ctx context.Context, filter ListingFilter) ([]*models.Listing, error) {
	q := r.db.WithContext(ctx).Model(&models.Listing{}).Preload("Seller")

	if filter.SellerID != nil {
		q = q.Where("seller_id = ?", *filter.SellerID)
	}
	if filter.Status != nil {
		q = q.Where("approval_status = ?", *filter.Status)
	}
	if filter.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Size != "" {
		q = q.Where("size = ?", filter.Size)
	}
	if filter.Condition != "" {
		q = q.Where("condition = ?", filter.Condition)
	}

	if filter.OldestFirst {
		q = q.Order("submitted_at ASC")
	} else {
		q = q.Order("created_at DESC")
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	var listings []*models.Listing
	if err := q.Find(&listings).Error; err != nil {
		return nil, err
	}
	return listings, nil
}

func (r *listingRepository) UpdateWhereStatus(ctx context.Context, id uint, expected models.ApprovalStatus, fields map[string]any) error {
	err := r.updateWhereStatus(r.db.WithContext(ctx), id, expected, fields)
	if err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

func (r *listingRepository) updateWhereStatus(tx *gorm.DB, id uint, expected models.ApprovalStatus, fields map[string]any) error {
	result := tx.
		Model(&models.Listing{}).
		Where("id = ? AND approval_status = ?", id, expected).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Distinguish a missing listing from a lost race.
		var count int64
		if err := tx.Model(&models.Listing{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}
		return ErrStatusConflict
	}
	return nil
}

func (r *listingRepository) ApplyDecision(ctx context.Context, id uint, expected models.ApprovalStatus, fields map[string]any, record *models.ReviewRecord) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.updateWhereStatus(tx, id, expected, fields); err != nil {
			return err
		}
		if record != nil {
			if err := tx.Create(record).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

func (r *listingRepository) invalidate(ctx context.Context, id uint) {
	cache.InvalidateItem(ctx, id)
	cache.InvalidatePublicListings(ctx)
}
