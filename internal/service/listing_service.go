package service

import (
	"context"
	"errors"
	"strings"

	"relove/internal/models"
	"relove/internal/repository"

	"gorm.io/gorm"
)

// ListingService handles the seller side of a listing's lifecycle: creation,
// content edits while awaiting review, and soft deletion. Every new or edited
// listing enters the review queue as pending and inactive.
type ListingService struct {
	listings repository.ListingRepository
	isAdmin  func(ctx context.Context, userID uint) (bool, error)
	now      nowFunc
}

// NewListingService creates a new listing service.
func NewListingService(
	listings repository.ListingRepository,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
) *ListingService {
	return &ListingService{listings: listings, isAdmin: isAdmin, now: utcNow}
}

// CreateListingInput is the seller's submission payload. SellerID is derived
// from the authenticated principal, never from the body.
type CreateListingInput struct {
	SellerID      uint
	Title         string
	Description   string
	Brand         string
	Category      string
	Size          string
	Condition     string
	Price         float64
	OriginalPrice *float64
	Color         string
	Material      string
	Style         string
	Images        []string
	Location      string
	Tags          []string
}

// UpdateListingInput carries a seller's content edit. Nil fields are left
// unchanged. Edits are only allowed while the listing is pending.
type UpdateListingInput struct {
	Title       *string
	Description *string
	Brand       *string
	Category    *string
	Size        *string
	Condition   *string
	Price       *float64
	Color       *string
	Material    *string
	Style       *string
	Images      []string
	Location    *string
	Tags        []string
}

const (
	maxTitleLen       = 300
	maxDescriptionLen = 10000
	maxImages         = 10
)

// CreateListing validates and stores a new listing as pending and inactive.
func (s *ListingService) CreateListing(ctx context.Context, in CreateListingInput) (*models.Listing, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if len(title) > maxTitleLen {
		return nil, models.NewValidationError("Title too long (max 300 characters)")
	}
	if len(in.Description) > maxDescriptionLen {
		return nil, models.NewValidationError("Description too long (max 10000 characters)")
	}
	if in.Price <= 0 {
		return nil, models.NewValidationError("Price must be greater than zero")
	}
	if in.OriginalPrice != nil && *in.OriginalPrice <= 0 {
		return nil, models.NewValidationError("Original price must be greater than zero")
	}
	if len(in.Images) > maxImages {
		return nil, models.NewValidationError("Too many images (max 10)")
	}

	listing := &models.Listing{
		SellerID:       in.SellerID,
		Title:          title,
		Description:    in.Description,
		Brand:          in.Brand,
		Category:       in.Category,
		Size:           in.Size,
		Condition:      in.Condition,
		Price:          in.Price,
		OriginalPrice:  in.OriginalPrice,
		Color:          in.Color,
		Material:       in.Material,
		Style:          in.Style,
		Images:         in.Images,
		Location:       in.Location,
		Tags:           in.Tags,
		SellStatus:     models.SellStatusAvailable,
		ApprovalStatus: models.ApprovalStatusPending,
		IsActive:       false,
		SubmittedAt:    s.now(),
	}
	if err := s.listings.Create(ctx, listing); err != nil {
		return nil, models.NewInternalError(err)
	}
	return listing, nil
}

// UpdateListing applies a seller's content edit. Only the owner may edit and
// only while the listing is still pending; decided listings go through
// resubmission instead.
func (s *ListingService) UpdateListing(ctx context.Context, itemID, sellerID uint, in UpdateListingInput) (*models.Listing, error) {
	listing, err := s.get(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if listing.SellerID != sellerID {
		return nil, models.NewUnauthorizedError("Only the listing's seller can edit it")
	}
	if listing.ApprovalStatus != models.ApprovalStatusPending {
		return nil, models.NewInvalidStateError("Only pending listings can be edited")
	}

	fields := map[string]any{}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, models.NewValidationError("Title is required")
		}
		if len(title) > maxTitleLen {
			return nil, models.NewValidationError("Title too long (max 300 characters)")
		}
		fields["title"] = title
	}
	if in.Description != nil {
		if len(*in.Description) > maxDescriptionLen {
			return nil, models.NewValidationError("Description too long (max 10000 characters)")
		}
		fields["description"] = *in.Description
	}
	if in.Price != nil {
		if *in.Price <= 0 {
			return nil, models.NewValidationError("Price must be greater than zero")
		}
		fields["price"] = *in.Price
	}
	if in.Brand != nil {
		fields["brand"] = *in.Brand
	}
	if in.Category != nil {
		fields["category"] = *in.Category
	}
	if in.Size != nil {
		fields["size"] = *in.Size
	}
	if in.Condition != nil {
		fields["condition"] = *in.Condition
	}
	if in.Color != nil {
		fields["color"] = *in.Color
	}
	if in.Material != nil {
		fields["material"] = *in.Material
	}
	if in.Style != nil {
		fields["style"] = *in.Style
	}
	if in.Location != nil {
		fields["location"] = *in.Location
	}
	if in.Images != nil {
		if len(in.Images) > maxImages {
			return nil, models.NewValidationError("Too many images (max 10)")
		}
		fields["images"] = in.Images
	}
	if in.Tags != nil {
		fields["tags"] = in.Tags
	}
	if len(fields) == 0 {
		return listing, nil
	}

	// Conditional on pending so an edit racing a decision loses cleanly.
	err = s.listings.UpdateWhereStatus(ctx, itemID, models.ApprovalStatusPending, fields)
	switch {
	case errors.Is(err, repository.ErrStatusConflict):
		return nil, models.NewConflictError("Listing was decided while editing, reload and retry")
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, models.NewNotFoundError("Listing", itemID)
	case err != nil:
		return nil, models.NewInternalError(err)
	}
	return s.get(ctx, itemID)
}

// DeleteListing deactivates a listing. The owner or an admin may delete;
// the approval status is left untouched and the flag is never flipped back.
func (s *ListingService) DeleteListing(ctx context.Context, itemID, callerID uint) error {
	listing, err := s.get(ctx, itemID)
	if err != nil {
		return err
	}
	if listing.SellerID != callerID {
		admin, err := s.isAdmin(ctx, callerID)
		if err != nil {
			return models.NewInternalError(err)
		}
		if !admin {
			return models.NewUnauthorizedError("Only the listing's seller or an admin can delete it")
		}
	}

	if err := s.listings.Update(ctx, itemID, map[string]any{"is_active": false}); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Listing", itemID)
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (s *ListingService) get(ctx context.Context, itemID uint) (*models.Listing, error) {
	listing, err := s.listings.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Listing", itemID)
		}
		return nil, models.NewInternalError(err)
	}
	return listing, nil
}
