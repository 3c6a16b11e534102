package service

import (
	"context"
	"testing"

	"relove/internal/models"
	"relove/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newListingService(repo repository.ListingRepository) *ListingService {
	return NewListingService(repo, adminChecker(reviewerID))
}

func TestListingService_CreateListing(t *testing.T) {
	t.Parallel()
	repo := newMemListingRepo()
	svc := newListingService(repo)

	got, err := svc.CreateListing(context.Background(), CreateListingInput{
		SellerID:  sellerID,
		Title:     "  Wool coat  ",
		Category:  "outerwear",
		Size:      "L",
		Condition: "very good",
		Price:     80,
		Images:    []string{"coat.jpg"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Wool coat", got.Title)
	assert.Equal(t, sellerID, got.SellerID)
	assert.Equal(t, models.ApprovalStatusPending, got.ApprovalStatus, "new listings always await review")
	assert.False(t, got.IsActive)
	assert.Equal(t, models.SellStatusAvailable, got.SellStatus)
	assert.False(t, got.SubmittedAt.IsZero())
	assert.Nil(t, got.ApprovedAt)
	assert.Nil(t, got.ApprovedBy)
}

func TestListingService_CreateListing_Validation(t *testing.T) {
	t.Parallel()
	svc := newListingService(newMemListingRepo())
	ctx := context.Background()

	tests := []struct {
		name  string
		input CreateListingInput
	}{
		{name: "empty title", input: CreateListingInput{SellerID: sellerID, Price: 10}},
		{name: "zero price", input: CreateListingInput{SellerID: sellerID, Title: "Coat"}},
		{name: "negative price", input: CreateListingInput{SellerID: sellerID, Title: "Coat", Price: -5}},
		{
			name: "too many images",
			input: CreateListingInput{
				SellerID: sellerID, Title: "Coat", Price: 10,
				Images: make([]string, 11),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateListing(ctx, tt.input)
			assertAppCode(t, err, models.CodeValidation)
		})
	}
}

func TestListingService_UpdateListing(t *testing.T) {
	t.Parallel()
	repo := newMemListingRepo(pendingListing(1))
	svc := newListingService(repo)

	title := "Silk scarf, navy"
	price := 15.0
	got, err := svc.UpdateListing(context.Background(), 1, sellerID, UpdateListingInput{
		Title: &title,
		Price: &price,
	})
	require.NoError(t, err)
	assert.Equal(t, title, got.Title)
	assert.Equal(t, price, got.Price)
	assert.Equal(t, models.ApprovalStatusPending, got.ApprovalStatus)
}

func TestListingService_UpdateListing_OwnerOnly(t *testing.T) {
	t.Parallel()
	svc := newListingService(newMemListingRepo(pendingListing(1)))

	title := "x"
	_, err := svc.UpdateListing(context.Background(), 1, strangerID, UpdateListingInput{Title: &title})
	assertAppCode(t, err, models.CodeUnauthorized)
}

func TestListingService_UpdateListing_PendingOnly(t *testing.T) {
	t.Parallel()
	approved := pendingListing(1)
	approved.ApprovalStatus = models.ApprovalStatusApproved
	approved.IsActive = true
	svc := newListingService(newMemListingRepo(approved, rejectedListing(2)))

	title := "x"
	_, err := svc.UpdateListing(context.Background(), 1, sellerID, UpdateListingInput{Title: &title})
	assertAppCode(t, err, models.CodeInvalidState)

	_, err = svc.UpdateListing(context.Background(), 2, sellerID, UpdateListingInput{Title: &title})
	assertAppCode(t, err, models.CodeInvalidState)
}

func TestListingService_UpdateListing_RaceWithDecision(t *testing.T) {
	t.Parallel()
	repo := noopListingRepo()
	repo.getByIDFn = func(_ context.Context, id uint) (*models.Listing, error) {
		return pendingListing(id), nil
	}
	repo.updateWhereStatusFn = func(_ context.Context, _ uint, _ models.ApprovalStatus, _ map[string]any) error {
		return repository.ErrStatusConflict
	}
	svc := newListingService(repo)

	title := "x"
	_, err := svc.UpdateListing(context.Background(), 1, sellerID, UpdateListingInput{Title: &title})
	assertAppCode(t, err, models.CodeConflict)
}

func TestListingService_DeleteListing(t *testing.T) {
	t.Parallel()
	approved := pendingListing(1)
	approved.ApprovalStatus = models.ApprovalStatusApproved
	approved.IsActive = true
	repo := newMemListingRepo(approved)
	svc := newListingService(repo)
	ctx := context.Background()

	require.NoError(t, svc.DeleteListing(ctx, 1, sellerID))

	got, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	assert.Equal(t, models.ApprovalStatusApproved, got.ApprovalStatus, "approval status untouched by deletion")
}

func TestListingService_DeleteListing_AdminAllowed(t *testing.T) {
	t.Parallel()
	repo := newMemListingRepo(pendingListing(1))
	svc := newListingService(repo)

	require.NoError(t, svc.DeleteListing(context.Background(), 1, reviewerID))
}

func TestListingService_DeleteListing_StrangerDenied(t *testing.T) {
	t.Parallel()
	svc := newListingService(newMemListingRepo(pendingListing(1)))

	err := svc.DeleteListing(context.Background(), 1, strangerID)
	assertAppCode(t, err, models.CodeUnauthorized)
}

func TestListingService_DeleteListing_NotFound(t *testing.T) {
	t.Parallel()
	svc := newListingService(newMemListingRepo())

	err := svc.DeleteListing(context.Background(), 99, sellerID)
	assertAppCode(t, err, models.CodeNotFound)
}
