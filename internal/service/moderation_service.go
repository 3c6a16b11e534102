package service

import (
	"context"
	"errors"
	"strings"

	"relove/internal/approval"
	"relove/internal/models"
	"relove/internal/observability"
	"relove/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ModerationService applies moderation decisions to listings and keeps the
// review audit log. Decisions are guarded by a conditional status update, so
// two reviewers racing on the same listing produce exactly one decision and
// one CONFLICT error, never two audit entries.
type ModerationService struct {
	listings repository.ListingRepository
	reviews  repository.ReviewRepository
	isAdmin  func(ctx context.Context, userID uint) (bool, error)
	now      nowFunc
}

// NewModerationService returns a new ModerationService.
func NewModerationService(
	listings repository.ListingRepository,
	reviews repository.ReviewRepository,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
) *ModerationService {
	return &ModerationService{
		listings: listings,
		reviews:  reviews,
		isAdmin:  isAdmin,
		now:      utcNow,
	}
}

// ReviewOutcome is the per-item result of a bulk moderation call. Items are
// isolated: one failing item never aborts the others.
type ReviewOutcome struct {
	ItemID  uint
	Listing *models.Listing
	Err     error
}

// ApproveItem moves a pending listing to approved and makes it publicly
// visible. Notes are optional for approval.
func (s *ModerationService) ApproveItem(ctx context.Context, itemID, reviewerID uint, notes string) (*models.Listing, error) {
	actor, err := s.moderator(ctx, reviewerID)
	if err != nil {
		return nil, err
	}
	return s.decide(ctx, itemID, approval.Action{Kind: approval.KindApprove, Actor: actor, Notes: notes})
}

// RejectItem moves a pending listing to rejected. Notes are mandatory and
// validated before any store access, so a notes-less rejection can never
// touch the listing.
func (s *ModerationService) RejectItem(ctx context.Context, itemID, reviewerID uint, notes string) (*models.Listing, error) {
	if strings.TrimSpace(notes) == "" {
		return nil, models.NewMissingNotesError()
	}
	actor, err := s.moderator(ctx, reviewerID)
	if err != nil {
		return nil, err
	}
	return s.decide(ctx, itemID, approval.Action{Kind: approval.KindReject, Actor: actor, Notes: notes})
}

// BulkApprove approves each listed item independently and reports per-item
// outcomes. The reviewer's capability is checked once up front.
func (s *ModerationService) BulkApprove(ctx context.Context, itemIDs []uint, reviewerID uint, notes string) ([]ReviewOutcome, error) {
	if len(itemIDs) == 0 {
		return nil, models.NewValidationError("item_ids is required")
	}
	actor, err := s.moderator(ctx, reviewerID)
	if err != nil {
		return nil, err
	}
	return s.bulkDecide(ctx, "approve", itemIDs, approval.Action{Kind: approval.KindApprove, Actor: actor, Notes: notes}), nil
}

// BulkReject rejects each listed item independently with the shared notes.
// Missing notes fail the whole call before any item is touched.
func (s *ModerationService) BulkReject(ctx context.Context, itemIDs []uint, reviewerID uint, notes string) ([]ReviewOutcome, error) {
	if len(itemIDs) == 0 {
		return nil, models.NewValidationError("item_ids is required")
	}
	if strings.TrimSpace(notes) == "" {
		return nil, models.NewMissingNotesError()
	}
	actor, err := s.moderator(ctx, reviewerID)
	if err != nil {
		return nil, err
	}
	return s.bulkDecide(ctx, "reject", itemIDs, approval.Action{Kind: approval.KindReject, Actor: actor, Notes: notes}), nil
}

// ResubmitInput carries the seller's edits applied together with a
// resubmission. Nil fields are left unchanged.
type ResubmitInput struct {
	Title       *string
	Description *string
	Price       *float64
	Images      []string
}

// ResubmitItem moves a rejected listing back to pending for another review,
// clearing the previous decision and applying the seller's edits. Only the
// listing's original seller may resubmit.
func (s *ModerationService) ResubmitItem(ctx context.Context, itemID, sellerID uint, in ResubmitInput) (*models.Listing, error) {
	listing, err := s.load(ctx, itemID)
	if err != nil {
		return nil, err
	}

	act := approval.Action{Kind: approval.KindResubmit, Actor: approval.Actor{ID: sellerID}}
	next, err := approval.Transition(*listing, act, s.now())
	if err != nil {
		return nil, err
	}

	fields := map[string]any{
		"approval_status": next.ApprovalStatus,
		"is_active":       next.IsActive,
		"admin_notes":     "",
		"approved_at":     nil,
		"approved_by":     nil,
	}
	// Edits carry the same content rules as creation.
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
	if in.Images != nil {
		if len(in.Images) > maxImages {
			return nil, models.NewValidationError("Too many images (max 10)")
		}
		fields["images"] = in.Images
	}

	err = s.listings.UpdateWhereStatus(ctx, itemID, models.ApprovalStatusRejected, fields)
	if err != nil {
		return nil, s.mapStoreError(itemID, err)
	}

	observability.ResubmissionsTotal.Inc()
	return s.load(ctx, itemID)
}

// ReviewHistory returns the append-only decision log for a listing in
// chronological order.
func (s *ModerationService) ReviewHistory(ctx context.Context, itemID, reviewerID uint, limit, offset int) ([]*models.ReviewRecord, error) {
	if _, err := s.moderator(ctx, reviewerID); err != nil {
		return nil, err
	}
	if _, err := s.load(ctx, itemID); err != nil {
		return nil, err
	}
	records, err := s.reviews.ListByItem(ctx, itemID, limit, offset)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return records, nil
}

func (s *ModerationService) moderator(ctx context.Context, reviewerID uint) (approval.Actor, error) {
	admin, err := s.isAdmin(ctx, reviewerID)
	if err != nil {
		return approval.Actor{}, models.NewInternalError(err)
	}
	if !admin {
		return approval.Actor{}, models.NewUnauthorizedError("Moderator access required")
	}
	return approval.Actor{ID: reviewerID, Moderator: true}, nil
}

// decide runs the state machine against the current row, then persists the
// result with a conditional update plus audit record in one transaction.
func (s *ModerationService) decide(ctx context.Context, itemID uint, act approval.Action) (*models.Listing, error) {
	listing, err := s.load(ctx, itemID)
	if err != nil {
		return nil, err
	}

	next, err := approval.Transition(*listing, act, s.now())
	if err != nil {
		return nil, err
	}

	decision := models.ReviewDecisionApproved
	if act.Kind == approval.KindReject {
		decision = models.ReviewDecisionRejected
	}
	record := &models.ReviewRecord{
		RecordKey:  uuid.NewString(),
		ItemID:     itemID,
		Decision:   decision,
		ReviewerID: act.Actor.ID,
		Notes:      next.AdminNotes,
	}

	fields := map[string]any{
		"approval_status": next.ApprovalStatus,
		"is_active":       next.IsActive,
		"admin_notes":     next.AdminNotes,
		"approved_at":     next.ApprovedAt,
		"approved_by":     next.ApprovedBy,
	}
	if err := s.listings.ApplyDecision(ctx, itemID, listing.ApprovalStatus, fields, record); err != nil {
		return nil, s.mapStoreError(itemID, err)
	}

	observability.DecisionsTotal.WithLabelValues(string(decision)).Inc()
	return s.load(ctx, itemID)
}

func (s *ModerationService) bulkDecide(ctx context.Context, operation string, itemIDs []uint, act approval.Action) []ReviewOutcome {
	outcomes := make([]ReviewOutcome, 0, len(itemIDs))
	for _, id := range itemIDs {
		listing, err := s.decide(ctx, id, act)
		outcomes = append(outcomes, ReviewOutcome{ItemID: id, Listing: listing, Err: err})
		status := "ok"
		if err != nil {
			status = "error"
		}
		observability.BulkOutcomesTotal.WithLabelValues(operation, status).Inc()
	}
	return outcomes
}

func (s *ModerationService) load(ctx context.Context, itemID uint) (*models.Listing, error) {
	listing, err := s.listings.GetByID(ctx, itemID)
	if err != nil {
		return nil, s.mapStoreError(itemID, err)
	}
	return listing, nil
}

func (s *ModerationService) mapStoreError(itemID uint, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return models.NewNotFoundError("Listing", itemID)
	case errors.Is(err, repository.ErrStatusConflict):
		return models.NewConflictError("Listing was decided by another reviewer, reload and retry")
	default:
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		return models.NewInternalError(err)
	}
}
