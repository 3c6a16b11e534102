package server

import (
	"context"
	"strings"

	"relove/internal/models"
	"relove/internal/service"

	"github.com/gofiber/fiber/v2"
)

// decisionRequest is the body of single approve/reject calls.
type decisionRequest struct {
	AdminNotes string `json:"admin_notes"`
}

// bulkDecisionRequest is the body of bulk approve/reject calls. The notes are
// shared by every item in the batch.
type bulkDecisionRequest struct {
	ItemIDs    []uint `json:"item_ids"`
	AdminNotes string `json:"admin_notes"`
}

// bulkResultItem reports one item's outcome within a bulk call.
type bulkResultItem struct {
	ID     uint                  `json:"id"`
	Status string                `json:"status"`
	Error  *models.ErrorResponse `json:"error,omitempty"`
}

// GetAdminItems handles GET /api/admin/items
// @Summary List the review queue
// @Description List listings by approval status, oldest submission first. Defaults to the pending queue.
// @Tags items-admin
// @Produce json
// @Param status query string false "Filter status"
// @Success 200 {array} models.Listing
// @Security BearerAuth
// @Router /admin/items [get]
func (s *Server) GetAdminItems(c *fiber.Ctx) error {
	pagination := parsePagination(c, 20)

	status := models.ApprovalStatusPending
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		parsed, ok := parseApprovalStatus(raw)
		if !ok {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("status must be one of: pending, approved, rejected"))
		}
		status = parsed
	}

	listings, err := s.visibilityService.PendingQueue(c.Context(), status, pagination.Limit, pagination.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(listings)
}

// ApproveItem handles POST /api/admin/items/:id/approve
// @Summary Approve a pending listing
// @Description Approve a pending listing, making it publicly visible. Notes are optional.
// @Tags items-admin
// @Accept json
// @Produce json
// @Param id path int true "Item ID"
// @Param request body decisionRequest false "Optional admin notes"
// @Success 200 {object} models.Listing
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/items/{id}/approve [post]
func (s *Server) ApproveItem(c *fiber.Ctx) error {
	reviewerID := c.Locals("userID").(uint)
	itemID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var body decisionRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&body); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid request body"))
		}
	}

	listing, svcErr := s.moderationService.ApproveItem(c.Context(), itemID, reviewerID, body.AdminNotes)
	if svcErr != nil {
		return respondServiceError(c, svcErr)
	}
	return c.JSON(listing)
}

// RejectItem handles POST /api/admin/items/:id/reject
// @Summary Reject a pending listing
// @Description Reject a pending listing. Admin notes are mandatory; a rejection without a reason is refused before the listing is touched.
// @Tags items-admin
// @Accept json
// @Produce json
// @Param id path int true "Item ID"
// @Param request body decisionRequest true "Admin notes (required)"
// @Success 200 {object} models.Listing
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/items/{id}/reject [post]
func (s *Server) RejectItem(c *fiber.Ctx) error {
	reviewerID := c.Locals("userID").(uint)
	itemID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var body decisionRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&body); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid request body"))
		}
	}

	listing, svcErr := s.moderationService.RejectItem(c.Context(), itemID, reviewerID, body.AdminNotes)
	if svcErr != nil {
		return respondServiceError(c, svcErr)
	}
	return c.JSON(listing)
}

// BulkApproveItems handles POST /api/admin/items/bulk-approve
// @Summary Approve listings in bulk
// @Description Approve each listed item independently. One failing item never aborts the rest; the response reports a per-item outcome.
// @Tags items-admin
// @Accept json
// @Produce json
// @Param request body bulkDecisionRequest true "Item IDs and optional notes"
// @Success 200 {object} object{results=[]bulkResultItem}
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/items/bulk-approve [post]
func (s *Server) BulkApproveItems(c *fiber.Ctx) error {
	return s.bulkDecision(c, s.moderationService.BulkApprove)
}

// BulkRejectItems handles POST /api/admin/items/bulk-reject
// @Summary Reject listings in bulk
// @Description Reject each listed item independently with the shared admin notes. Missing notes fail the whole call before any item is touched.
// @Tags items-admin
// @Accept json
// @Produce json
// @Param request body bulkDecisionRequest true "Item IDs and notes (required)"
// @Success 200 {object} object{results=[]bulkResultItem}
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/items/bulk-reject [post]
func (s *Server) BulkRejectItems(c *fiber.Ctx) error {
	return s.bulkDecision(c, s.moderationService.BulkReject)
}

func (s *Server) bulkDecision(
	c *fiber.Ctx,
	decide func(ctx context.Context, itemIDs []uint, reviewerID uint, notes string) ([]service.ReviewOutcome, error),
) error {
	reviewerID := c.Locals("userID").(uint)

	var body bulkDecisionRequest
	if err := c.BodyParser(&body); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	outcomes, err := decide(c.Context(), body.ItemIDs, reviewerID, body.AdminNotes)
	if err != nil {
		return respondServiceError(c, err)
	}

	results := make([]bulkResultItem, 0, len(outcomes))
	for _, outcome := range outcomes {
		item := bulkResultItem{ID: outcome.ItemID}
		if outcome.Err != nil {
			item.Status = "error"
			if appErr, ok := outcome.Err.(*models.AppError); ok {
				item.Error = &models.ErrorResponse{Error: appErr.Message, Code: appErr.Code}
			} else {
				item.Error = &models.ErrorResponse{Error: outcome.Err.Error()}
			}
		} else {
			item.Status = string(outcome.Listing.ApprovalStatus)
		}
		results = append(results, item)
	}
	return c.JSON(fiber.Map{"results": results})
}

// GetItemReviews handles GET /api/admin/items/:id/reviews
// @Summary Listing review history
// @Description List the append-only decision log for a listing in chronological order.
// @Tags items-admin
// @Produce json
// @Param id path int true "Item ID"
// @Success 200 {array} models.ReviewRecord
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/items/{id}/reviews [get]
func (s *Server) GetItemReviews(c *fiber.Ctx) error {
	reviewerID := c.Locals("userID").(uint)
	itemID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	pagination := parsePagination(c, 50)

	records, svcErr := s.moderationService.ReviewHistory(c.Context(), itemID, reviewerID, pagination.Limit, pagination.Offset)
	if svcErr != nil {
		return respondServiceError(c, svcErr)
	}
	return c.JSON(records)
}
