// Package service contains the application's business logic.
package service

import (
	"context"
	"errors"

	"relove/internal/cache"
	"relove/internal/models"
	"relove/internal/repository"

	"gorm.io/gorm"
)

// VisibilityService answers listing queries with the correct visibility
// scoping applied. The load-bearing default is approved-unless-told-otherwise:
// every query narrows to approved+active listings unless the caller explicitly
// opts into a wider view it is entitled to.
type VisibilityService struct {
	listings repository.ListingRepository
	isAdmin  func(ctx context.Context, userID uint) (bool, error)
}

// NewVisibilityService creates a new visibility service.
func NewVisibilityService(
	listings repository.ListingRepository,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
) *VisibilityService {
	return &VisibilityService{listings: listings, isAdmin: isAdmin}
}

// PublicListingsInput narrows the storefront query. All fields are optional.
type PublicListingsInput struct {
	Category  string
	Size      string
	Condition string
	SellerID  *uint
	Limit     int
	Offset    int
}

const defaultPageSize = 20

// isDefaultFirstPage must only match the exact page the shared cache key
// stores; any other limit would be served someone else's page size.
func (in PublicListingsInput) isDefaultFirstPage() bool {
	return in.Category == "" && in.Size == "" && in.Condition == "" &&
		in.SellerID == nil && in.Offset == 0 && in.Limit == defaultPageSize
}

// PublicListings returns listings visible to anyone: approved and active,
// whatever other filters the caller adds.
func (s *VisibilityService) PublicListings(ctx context.Context, in PublicListingsInput) ([]*models.Listing, error) {
	if in.Limit <= 0 {
		in.Limit = defaultPageSize
	}

	status := models.ApprovalStatusApproved
	filter := repository.ListingFilter{
		Status:     &status,
		ActiveOnly: true,
		Category:   in.Category,
		Size:       in.Size,
		Condition:  in.Condition,
		SellerID:   in.SellerID,
		Limit:      in.Limit,
		Offset:     in.Offset,
	}

	var listings []*models.Listing
	if in.isDefaultFirstPage() {
		// The unfiltered first page is by far the hottest query; serve it
		// cache-aside and invalidate on every mutation.
		err := cache.Aside(ctx, cache.PublicListingsKey, &listings, cache.PublicListingsTTL, func() error {
			var fetchErr error
			listings, fetchErr = s.listings.List(ctx, filter)
			return fetchErr
		})
		return listings, err
	}
	return s.listings.List(ctx, filter)
}

// SellerListings returns a seller's own listings. Without includeAll the
// result silently narrows to approved+active, same as the public view; the
// seller dashboard must pass includeAll to see pending, rejected and
// deactivated items.
func (s *VisibilityService) SellerListings(ctx context.Context, sellerID uint, includeAll bool, limit, offset int) ([]*models.Listing, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	filter := repository.ListingFilter{
		SellerID: &sellerID,
		Limit:    limit,
		Offset:   offset,
	}
	if !includeAll {
		status := models.ApprovalStatusApproved
		filter.Status = &status
		filter.ActiveOnly = true
	}
	return s.listings.List(ctx, filter)
}

// PendingQueue returns listings awaiting review, oldest submission first.
// A different status can be requested to browse past decisions.
func (s *VisibilityService) PendingQueue(ctx context.Context, status models.ApprovalStatus, limit, offset int) ([]*models.Listing, error) {
	if status == "" {
		status = models.ApprovalStatusPending
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	return s.listings.List(ctx, repository.ListingFilter{
		Status:      &status,
		OldestFirst: true,
		Limit:       limit,
		Offset:      offset,
	})
}

// GetVisible returns a single listing if the viewer may see it: anyone sees
// approved+active listings, the seller and admins see everything. Listings
// the viewer may not see are reported as not found rather than forbidden, so
// the endpoint does not leak their existence.
func (s *VisibilityService) GetVisible(ctx context.Context, id uint, viewerID uint) (*models.Listing, error) {
	listing, err := s.listings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Listing", id)
		}
		return nil, models.NewInternalError(err)
	}

	if listing.PubliclyVisible() {
		return listing, nil
	}
	if viewerID != 0 {
		if viewerID == listing.SellerID {
			return listing, nil
		}
		admin, err := s.isAdmin(ctx, viewerID)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		if admin {
			return listing, nil
		}
	}
	return nil, models.NewNotFoundError("Listing", id)
}
