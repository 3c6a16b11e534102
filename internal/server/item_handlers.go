package server

import (
	"strings"

	"relove/internal/models"
	"relove/internal/repository"
	"relove/internal/service"

	"github.com/gofiber/fiber/v2"
)

// createItemRequest is the seller's submission payload. The seller is always
// the authenticated user; a seller_id in the body is ignored.
type createItemRequest struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Brand         string   `json:"brand"`
	Category      string   `json:"category"`
	Size          string   `json:"size"`
	Condition     string   `json:"condition"`
	Price         float64  `json:"price"`
	OriginalPrice *float64 `json:"original_price"`
	Color         string   `json:"color"`
	Material      string   `json:"material"`
	Style         string   `json:"style"`
	Images        []string `json:"images"`
	Location      string   `json:"location"`
	Tags          []string `json:"tags"`
}

// GetItems handles GET /api/items
// @Summary Browse listings
// @Description Browse the storefront. Defaults to approved, active listings only. Sellers may pass include_all or approval_status to widen the view of their own listings; admins may widen any view.
// @Tags items
// @Produce json
// @Param category query string false "Category filter"
// @Param size query string false "Size filter"
// @Param condition query string false "Condition filter"
// @Param seller_id query int false "Seller filter"
// @Param approval_status query string false "Approval status (owner/admin only)"
// @Param include_all query bool false "Include non-approved and inactive (owner/admin only)"
// @Success 200 {array} models.Listing
// @Router /items [get]
func (s *Server) GetItems(c *fiber.Ctx) error {
	ctx := c.Context()
	pagination := parsePagination(c, 20)
	viewerID, _ := s.optionalUserID(c)

	var sellerID *uint
	if raw := c.QueryInt("seller_id", 0); raw > 0 {
		id := uint(raw)
		sellerID = &id
	}

	statusQuery := strings.TrimSpace(c.Query("approval_status"))
	includeAll := c.QueryBool("include_all", false)

	// An explicit approval filter is only honored for admins and for sellers
	// scoping the query to themselves. Everyone else silently gets the
	// approved-only storefront view.
	if statusQuery != "" || includeAll {
		entitled := false
		if viewerID != 0 {
			if sellerID != nil && *sellerID == viewerID {
				entitled = true
			} else if admin, err := s.isAdmin(c, viewerID); err == nil && admin {
				entitled = true
			}
		}
		if entitled {
			filter := repository.ListingFilter{
				SellerID:  sellerID,
				Category:  c.Query("category"),
				Size:      c.Query("size"),
				Condition: c.Query("condition"),
				Limit:     pagination.Limit,
				Offset:    pagination.Offset,
			}
			if statusQuery != "" {
				status, ok := parseApprovalStatus(statusQuery)
				if !ok {
					return models.RespondWithError(c, fiber.StatusBadRequest,
						models.NewValidationError("approval_status must be one of: pending, approved, rejected"))
				}
				filter.Status = &status
			}
			listings, err := s.listingRepo.List(ctx, filter)
			if err != nil {
				return models.RespondWithError(c, fiber.StatusInternalServerError, err)
			}
			return c.JSON(listings)
		}
	}

	listings, err := s.visibilityService.PublicListings(ctx, service.PublicListingsInput{
		Category:  c.Query("category"),
		Size:      c.Query("size"),
		Condition: c.Query("condition"),
		SellerID:  sellerID,
		Limit:     pagination.Limit,
		Offset:    pagination.Offset,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(listings)
}

// GetItem handles GET /api/items/:id
// @Summary Get a listing
// @Description Get a single listing. Non-approved or inactive listings are only visible to their seller and to admins; everyone else gets 404.
// @Tags items
// @Produce json
// @Param id path int true "Item ID"
// @Success 200 {object} models.Listing
// @Failure 404 {object} models.ErrorResponse
// @Router /items/{id} [get]
func (s *Server) GetItem(c *fiber.Ctx) error {
	itemID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	viewerID, _ := s.optionalUserID(c)

	listing, svcErr := s.visibilityService.GetVisible(c.Context(), itemID, viewerID)
	if svcErr != nil {
		return respondServiceError(c, svcErr)
	}
	return c.JSON(listing)
}

// CreateItem handles POST /api/items
// @Summary Submit a listing for review
// @Description Create a listing. It enters the moderation queue as pending and stays off the storefront until approved.
// @Tags items
// @Accept json
// @Produce json
// @Param request body createItemRequest true "Listing payload"
// @Success 201 {object} models.Listing
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /items [post]
func (s *Server) CreateItem(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req createItemRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	listing, err := s.listingService.CreateListing(c.Context(), service.CreateListingInput{
		SellerID:      userID,
		Title:         req.Title,
		Description:   req.Description,
		Brand:         req.Brand,
		Category:      req.Category,
		Size:          req.Size,
		Condition:     req.Condition,
		Price:         req.Price,
		OriginalPrice: req.OriginalPrice,
		Color:         req.Color,
		Material:      req.Material,
		Style:         req.Style,
		Images:        req.Images,
		Location:      req.Location,
		Tags:          req.Tags,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(listing)
}

// UpdateItem handles PATCH /api/items/:id
// @Summary Edit a pending listing
// @Description Edit listing content. Only the seller may edit, and only while the listing is pending review; decided listings go through resubmission.
// @Tags items
// @Accept json
// @Produce json
// @Param id path int true "Item ID"
// @Success 200 {object} models.Listing
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /items/{id} [patch]
func (s *Server) UpdateItem(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	itemID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Title       *string  `json:"title"`
		Description *string  `json:"description"`
		Brand       *string  `json:"brand"`
		Category    *string  `json:"category"`
		Size        *string  `json:"size"`
		Condition   *string  `json:"condition"`
		Price       *float64 `json:"price"`
		Color       *string  `json:"color"`
		Material    *string  `json:"material"`
		Style       *string  `json:"style"`
		Images      []string `json:"images"`
		Location    *string  `json:"location"`
		Tags        []string `json:"tags"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	listing, svcErr := s.listingService.UpdateListing(c.Context(), itemID, userID, service.UpdateListingInput{
		Title:       req.Title,
		Description: req.Description,
		Brand:       req.Brand,
		Category:    req.Category,
		Size:        req.Size,
		Condition:   req.Condition,
		Price:       req.Price,
		Color:       req.Color,
		Material:    req.Material,
		Style:       req.Style,
		Images:      req.Images,
		Location:    req.Location,
		Tags:        req.Tags,
	})
	if svcErr != nil {
		return respondServiceError(c, svcErr)
	}
	return c.JSON(listing)
}

// DeleteItem handles DELETE /api/items/:id
// @Summary Deactivate a listing
// @Description Soft-delete a listing. The seller or an admin may delete; the listing drops off the storefront but keeps its approval status and history.
// @Tags items
// @Produce json
// @Param id path int true "Item ID"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /items/{id} [delete]
func (s *Server) DeleteItem(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	itemID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.listingService.DeleteListing(c.Context(), itemID, userID); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Listing deleted"})
}

// ResubmitItem handles POST /api/items/:id/resubmit
// @Summary Resubmit a rejected listing
// @Description Move a rejected listing back to pending for another review, optionally with edits. Clears the previous decision's notes, timestamp and reviewer.
// @Tags items
// @Accept json
// @Produce json
// @Param id path int true "Item ID"
// @Success 200 {object} models.Listing
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /items/{id}/resubmit [post]
func (s *Server) ResubmitItem(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	itemID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Title       *string  `json:"title"`
		Description *string  `json:"description"`
		Price       *float64 `json:"price"`
		Images      []string `json:"images"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid request body"))
		}
	}

	listing, svcErr := s.moderationService.ResubmitItem(c.Context(), itemID, userID, service.ResubmitInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Images:      req.Images,
	})
	if svcErr != nil {
		return respondServiceError(c, svcErr)
	}
	return c.JSON(listing)
}

// GetMyItems handles GET /api/sellers/me/items
// @Summary List my listings
// @Description List the authenticated seller's listings. Defaults to approved+active only; pass include_all=true for the full dashboard view including pending and rejected items.
// @Tags items
// @Produce json
// @Param include_all query bool false "Include non-approved and inactive"
// @Success 200 {array} models.Listing
// @Security BearerAuth
// @Router /sellers/me/items [get]
func (s *Server) GetMyItems(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	pagination := parsePagination(c, 20)
	includeAll := c.QueryBool("include_all", false)

	listings, err := s.visibilityService.SellerListings(c.Context(), userID, includeAll, pagination.Limit, pagination.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(listings)
}

func parseApprovalStatus(raw string) (models.ApprovalStatus, bool) {
	switch models.ApprovalStatus(raw) {
	case models.ApprovalStatusPending, models.ApprovalStatusApproved, models.ApprovalStatusRejected:
		return models.ApprovalStatus(raw), true
	default:
		return "", false
	}
}
