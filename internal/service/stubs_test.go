package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"relove/internal/models"
	"relove/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// listingRepoStub is a stub for repository.ListingRepository.
type listingRepoStub struct {
	createFn            func(context.Context, *models.Listing) error
	getByIDFn           func(context.Context, uint) (*models.Listing, error)
	updateFn            func(context.Context, uint, map[string]any) error
	listFn              func(context.Context, repository.ListingFilter) ([]*models.Listing, error)
	updateWhereStatusFn func(context.Context, uint, models.ApprovalStatus, map[string]any) error
	applyDecisionFn     func(context.Context, uint, models.ApprovalStatus, map[string]any, *models.ReviewRecord) error
}

func (s *listingRepoStub) Create(ctx context.Context, listing *models.Listing) error {
	return s.createFn(ctx, listing)
}
func (s *listingRepoStub) GetByID(ctx context.Context, id uint) (*models.Listing, error) {
	return s.getByIDFn(ctx, id)
}
func (s *listingRepoStub) Update(ctx context.Context, id uint, fields map[string]any) error {
	return s.updateFn(ctx, id, fields)
}
func (s *listingRepoStub) List(ctx context.Context, filter repository.ListingFilter) ([]*models.Listing, error) {
	return s.listFn(ctx, filter)
}
func (s *listingRepoStub) UpdateWhereStatus(ctx context.Context, id uint, expected models.ApprovalStatus, fields map[string]any) error {
	return s.updateWhereStatusFn(ctx, id, expected, fields)
}
func (s *listingRepoStub) ApplyDecision(ctx context.Context, id uint, expected models.ApprovalStatus, fields map[string]any, record *models.ReviewRecord) error {
	return s.applyDecisionFn(ctx, id, expected, fields, record)
}

func noopListingRepo() *listingRepoStub {
	return &listingRepoStub{
		createFn:  func(_ context.Context, _ *models.Listing) error { return nil },
		getByIDFn: func(_ context.Context, _ uint) (*models.Listing, error) { return &models.Listing{}, nil },
		updateFn:  func(_ context.Context, _ uint, _ map[string]any) error { return nil },
		listFn: func(_ context.Context, _ repository.ListingFilter) ([]*models.Listing, error) {
			return nil, nil
		},
		updateWhereStatusFn: func(_ context.Context, _ uint, _ models.ApprovalStatus, _ map[string]any) error {
			return nil
		},
		applyDecisionFn: func(_ context.Context, _ uint, _ models.ApprovalStatus, _ map[string]any, _ *models.ReviewRecord) error {
			return nil
		},
	}
}

// reviewRepoStub is a stub for repository.ReviewRepository.
type reviewRepoStub struct {
	appendFn     func(context.Context, *models.ReviewRecord) error
	listByItemFn func(context.Context, uint, int, int) ([]*models.ReviewRecord, error)
}

func (s *reviewRepoStub) Append(ctx context.Context, record *models.ReviewRecord) error {
	return s.appendFn(ctx, record)
}
func (s *reviewRepoStub) ListByItem(ctx context.Context, itemID uint, limit, offset int) ([]*models.ReviewRecord, error) {
	return s.listByItemFn(ctx, itemID, limit, offset)
}

func noopReviewRepo() *reviewRepoStub {
	return &reviewRepoStub{
		appendFn: func(_ context.Context, _ *models.ReviewRecord) error { return nil },
		listByItemFn: func(_ context.Context, _ uint, _, _ int) ([]*models.ReviewRecord, error) {
			return nil, nil
		},
	}
}

// memListingRepo backs the stub with a map so decision flows can read back
// what they wrote. Field maps are applied to the stored listing the way the
// real GORM repository would.
type memListingRepo struct {
	listings map[uint]*models.Listing
	records  []*models.ReviewRecord
}

func newMemListingRepo(listings ...*models.Listing) *memListingRepo {
	m := &memListingRepo{listings: map[uint]*models.Listing{}}
	for _, l := range listings {
		cp := *l
		m.listings[l.ID] = &cp
	}
	return m
}

func (m *memListingRepo) Create(_ context.Context, listing *models.Listing) error {
	if listing.ID == 0 {
		listing.ID = uint(len(m.listings) + 1)
	}
	cp := *listing
	m.listings[listing.ID] = &cp
	return nil
}

func (m *memListingRepo) GetByID(_ context.Context, id uint) (*models.Listing, error) {
	l, ok := m.listings[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *l
	return &cp, nil
}

func (m *memListingRepo) Update(_ context.Context, id uint, fields map[string]any) error {
	l, ok := m.listings[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	applyFields(l, fields)
	return nil
}

func (m *memListingRepo) List(_ context.Context, filter repository.ListingFilter) ([]*models.Listing, error) {
	var out []*models.Listing
	for _, l := range m.listings {
		if filter.Status != nil && l.ApprovalStatus != *filter.Status {
			continue
		}
		if filter.ActiveOnly && !l.IsActive {
			continue
		}
		if filter.SellerID != nil && l.SellerID != *filter.SellerID {
			continue
		}
		cp := *l
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memListingRepo) UpdateWhereStatus(_ context.Context, id uint, expected models.ApprovalStatus, fields map[string]any) error {
	l, ok := m.listings[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if l.ApprovalStatus != expected {
		return repository.ErrStatusConflict
	}
	applyFields(l, fields)
	return nil
}

func (m *memListingRepo) ApplyDecision(ctx context.Context, id uint, expected models.ApprovalStatus, fields map[string]any, record *models.ReviewRecord) error {
	if err := m.UpdateWhereStatus(ctx, id, expected, fields); err != nil {
		return err
	}
	if record != nil {
		m.records = append(m.records, record)
	}
	return nil
}

func applyFields(l *models.Listing, fields map[string]any) {
	for k, v := range fields {
		switch k {
		case "approval_status":
			l.ApprovalStatus = v.(models.ApprovalStatus)
		case "is_active":
			l.IsActive = v.(bool)
		case "admin_notes":
			l.AdminNotes = v.(string)
		case "approved_at":
			at, _ := v.(*time.Time)
			l.ApprovedAt = at
		case "approved_by":
			by, _ := v.(*uint)
			l.ApprovedBy = by
		case "title":
			l.Title = v.(string)
		case "description":
			l.Description = v.(string)
		case "price":
			l.Price = v.(float64)
		case "images":
			l.Images = v.([]string)
		}
	}
}

func adminChecker(adminIDs ...uint) func(context.Context, uint) (bool, error) {
	return func(_ context.Context, userID uint) (bool, error) {
		for _, id := range adminIDs {
			if id == userID {
				return true, nil
			}
		}
		return false, nil
	}
}

// assertAppCode asserts that err is an AppError with the given code.
func assertAppCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}
