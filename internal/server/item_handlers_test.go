package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"relove/internal/config"
	"relove/internal/models"
	"relove/internal/repository"
	"relove/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testJWTSecret = "test-secret-for-handler-tests-0123456789"

func newTestServer(t *testing.T) *Server {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Listing{},
		&models.ReviewRecord{},
	))

	s := &Server{
		db:     db,
		config: &config.Config{JWTSecret: testJWTSecret, Env: "test"},
	}
	s.listingRepo = repository.NewListingRepository(db)
	s.reviewRepo = repository.NewReviewRepository(db)
	s.listingService = service.NewListingService(s.listingRepo, s.isAdminByUserID)
	s.moderationService = service.NewModerationService(s.listingRepo, s.reviewRepo, s.isAdminByUserID)
	s.visibilityService = service.NewVisibilityService(s.listingRepo, s.isAdminByUserID)
	return s
}

func createTestUser(t *testing.T, db *gorm.DB, username string, isAdmin bool) models.User {
	t.Helper()
	user := models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "irrelevant",
		IsAdmin:  isAdmin,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createTestListing(t *testing.T, db *gorm.DB, sellerID uint, status models.ApprovalStatus) models.Listing {
	t.Helper()
	listing := models.Listing{
		SellerID:       sellerID,
		Title:          "Linen shirt",
		Category:       "tops",
		Size:           "S",
		Condition:      "good",
		Price:          22,
		SellStatus:     models.SellStatusAvailable,
		ApprovalStatus: status,
		IsActive:       status == models.ApprovalStatusApproved,
		SubmittedAt:    time.Now().UTC(),
	}
	require.NoError(t, db.Create(&listing).Error)
	return listing
}

// authToken issues a bearer token the way the auth middleware expects it.
func authToken(t *testing.T, userID uint) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"iss": "relove-api",
		"aud": "relove-client",
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return "Bearer " + signed
}

func doJSON(t *testing.T, app *fiber.App, method, url string, body any, auth string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, url, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeListing(t *testing.T, resp *http.Response) models.Listing {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	var listing models.Listing
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listing))
	return listing
}

func decodeListings(t *testing.T, resp *http.Response) []models.Listing {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	var listings []models.Listing
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listings))
	return listings
}

func decodeError(t *testing.T, resp *http.Response) models.ErrorResponse {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	var errResp models.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
	return errResp
}

// itemTestApp wires the public and seller routes with a Locals-injecting
// wrapper, mirroring the production route layout.
func itemTestApp(s *Server, authedUserID uint) *fiber.App {
	app := fiber.New()
	withUser := func(h fiber.Handler) fiber.Handler {
		return func(c *fiber.Ctx) error {
			c.Locals("userID", authedUserID)
			return h(c)
		}
	}

	app.Get("/api/items", s.GetItems)
	app.Get("/api/items/:id", s.GetItem)
	app.Post("/api/items", withUser(s.CreateItem))
	app.Patch("/api/items/:id", withUser(s.UpdateItem))
	app.Delete("/api/items/:id", withUser(s.DeleteItem))
	app.Post("/api/items/:id/resubmit", withUser(s.ResubmitItem))
	app.Get("/api/sellers/me/items", withUser(s.GetMyItems))
	return app
}

func TestCreateItemEntersReviewQueue(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	seller := createTestUser(t, s.db, "seller", false)
	app := itemTestApp(s, seller.ID)

	resp := doJSON(t, app, http.MethodPost, "/api/items", fiber.Map{
		"title":     "Corduroy trousers",
		"category":  "bottoms",
		"size":      "M",
		"condition": "very good",
		"price":     30.0,
		"images":    []string{"1.jpg"},
		"seller_id": 999, // must be ignored
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeListing(t, resp)

	assert.Equal(t, seller.ID, created.SellerID)
	assert.Equal(t, models.ApprovalStatusPending, created.ApprovalStatus)
	assert.False(t, created.IsActive)
	assert.False(t, created.SubmittedAt.IsZero())

	// Scenario: the new submission is not on the public storefront.
	resp = doJSON(t, app, http.MethodGet, "/api/items", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decodeListings(t, resp))
}

func TestCreateItemValidation(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	seller := createTestUser(t, s.db, "seller", false)
	app := itemTestApp(s, seller.ID)

	resp := doJSON(t, app, http.MethodPost, "/api/items", fiber.Map{
		"title": "", "price": 10.0,
	}, "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, models.CodeValidation, decodeError(t, resp).Code)
}

func TestGetItemsPublicNarrowing(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	seller := createTestUser(t, s.db, "seller", false)
	live := createTestListing(t, s.db, seller.ID, models.ApprovalStatusApproved)
	createTestListing(t, s.db, seller.ID, models.ApprovalStatusPending)
	createTestListing(t, s.db, seller.ID, models.ApprovalStatusRejected)
	deleted := createTestListing(t, s.db, seller.ID, models.ApprovalStatusApproved)
	require.NoError(t, s.db.Model(&deleted).Update("is_active", false).Error)

	app := itemTestApp(s, 0)

	resp := doJSON(t, app, http.MethodGet, "/api/items", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	listings := decodeListings(t, resp)
	require.Len(t, listings, 1)
	assert.Equal(t, live.ID, listings[0].ID)
}

func TestGetItemsStatusFilterRequiresEntitlement(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	seller := createTestUser(t, s.db, "seller", false)
	admin := createTestUser(t, s.db, "admin", true)
	stranger := createTestUser(t, s.db, "stranger", false)
	createTestListing(t, s.db, seller.ID, models.ApprovalStatusApproved)
	createTestListing(t, s.db, seller.ID, models.ApprovalStatusPending)

	app := itemTestApp(s, 0)

	t.Run("anonymous silently narrows to approved", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/items?approval_status=pending", nil, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		listings := decodeListings(t, resp)
		require.Len(t, listings, 1)
		assert.Equal(t, models.ApprovalStatusApproved, listings[0].ApprovalStatus)
	})

	t.Run("stranger cannot widen another seller's view", func(t *testing.T) {
		url := fmt.Sprintf("/api/items?approval_status=pending&seller_id=%d", seller.ID)
		resp := doJSON(t, app, http.MethodGet, url, nil, authToken(t, stranger.ID))
		require.Equal(t, http.StatusOK, resp.StatusCode)
		listings := decodeListings(t, resp)
		require.Len(t, listings, 1)
		assert.Equal(t, models.ApprovalStatusApproved, listings[0].ApprovalStatus)
	})

	t.Run("seller sees own pending with explicit filter", func(t *testing.T) {
		url := fmt.Sprintf("/api/items?approval_status=pending&seller_id=%d", seller.ID)
		resp := doJSON(t, app, http.MethodGet, url, nil, authToken(t, seller.ID))
		require.Equal(t, http.StatusOK, resp.StatusCode)
		listings := decodeListings(t, resp)
		require.Len(t, listings, 1)
		assert.Equal(t, models.ApprovalStatusPending, listings[0].ApprovalStatus)
	})

	t.Run("admin sees any pending", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/items?approval_status=pending", nil, authToken(t, admin.ID))
		require.Equal(t, http.StatusOK, resp.StatusCode)
		listings := decodeListings(t, resp)
		require.Len(t, listings, 1)
		assert.Equal(t, models.ApprovalStatusPending, listings[0].ApprovalStatus)
	})
}

func TestGetItemVisibility(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	seller := createTestUser(t, s.db, "seller", false)
	admin := createTestUser(t, s.db, "admin", true)
	stranger := createTestUser(t, s.db, "stranger", false)
	pending := createTestListing(t, s.db, seller.ID, models.ApprovalStatusPending)

	app := itemTestApp(s, 0)
	url := fmt.Sprintf("/api/items/%d", pending.ID)

	t.Run("hidden from anonymous", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, url, nil, "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("hidden from strangers", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, url, nil, authToken(t, stranger.ID))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("visible to the seller", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, url, nil, authToken(t, seller.ID))
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, pending.ID, decodeListing(t, resp).ID)
	})

	t.Run("visible to admins", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, url, nil, authToken(t, admin.ID))
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestUpdateItemPendingOnly(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	seller := createTestUser(t, s.db, "seller", false)
	pending := createTestListing(t, s.db, seller.ID, models.ApprovalStatusPending)
	approved := createTestListing(t, s.db, seller.ID, models.ApprovalStatusApproved)
	app := itemTestApp(s, seller.ID)

	resp := doJSON(t, app, http.MethodPatch, fmt.Sprintf("/api/items/%d", pending.ID), fiber.Map{
		"title": "Linen shirt, off-white",
		"price": 25.0,
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decodeListing(t, resp)
	assert.Equal(t, "Linen shirt, off-white", updated.Title)
	assert.Equal(t, models.ApprovalStatusPending, updated.ApprovalStatus)

	resp = doJSON(t, app, http.MethodPatch, fmt.Sprintf("/api/items/%d", approved.ID), fiber.Map{
		"title": "nope",
	}, "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, models.CodeInvalidState, decodeError(t, resp).Code)
}

func TestUpdateItemOwnerOnly(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	seller := createTestUser(t, s.db, "seller", false)
	stranger := createTestUser(t, s.db, "stranger", false)
	pending := createTestListing(t, s.db, seller.ID, models.ApprovalStatusPending)
	app := itemTestApp(s, stranger.ID)

	resp := doJSON(t, app, http.MethodPatch, fmt.Sprintf("/api/items/%d", pending.ID), fiber.Map{
		"title": "hijack",
	}, "")
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, models.CodeUnauthorized, decodeError(t, resp).Code)
}

func TestDeleteItemSoftDeletes(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	seller := createTestUser(t, s.db, "seller", false)
	approved := createTestListing(t, s.db, seller.ID, models.ApprovalStatusApproved)
	app := itemTestApp(s, seller.ID)

	resp := doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/items/%d", approved.ID), nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	var got models.Listing
	require.NoError(t, s.db.First(&got, approved.ID).Error)
	assert.False(t, got.IsActive)
	assert.Equal(t, models.ApprovalStatusApproved, got.ApprovalStatus, "approval status survives deletion")

	// Gone from the storefront.
	resp = doJSON(t, app, http.MethodGet, "/api/items", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decodeListings(t, resp))
}

func TestResubmitItemClearsDecision(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	seller := createTestUser(t, s.db, "seller", false)
	admin := createTestUser(t, s.db, "admin", true)
	rejected := createTestListing(t, s.db, seller.ID, models.ApprovalStatusRejected)
	at := time.Now().UTC()
	require.NoError(t, s.db.Model(&rejected).Updates(map[string]any{
		"admin_notes": "Photos unclear",
		"approved_at": at,
		"approved_by": admin.ID,
	}).Error)

	app := itemTestApp(s, seller.ID)

	resp := doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/items/%d/resubmit", rejected.ID), fiber.Map{
		"title": "Linen shirt, new photos",
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeListing(t, resp)

	assert.Equal(t, models.ApprovalStatusPending, got.ApprovalStatus)
	assert.False(t, got.IsActive)
	assert.Empty(t, got.AdminNotes)
	assert.Nil(t, got.ApprovedAt)
	assert.Nil(t, got.ApprovedBy)
	assert.Equal(t, "Linen shirt, new photos", got.Title)
}

func TestResubmitItemOnlyFromRejected(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	seller := createTestUser(t, s.db, "seller", false)
	pending := createTestListing(t, s.db, seller.ID, models.ApprovalStatusPending)
	app := itemTestApp(s, seller.ID)

	resp := doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/items/%d/resubmit", pending.ID), nil, "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, models.CodeInvalidState, decodeError(t, resp).Code)
}

func TestGetMyItemsIncludeAll(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	seller := createTestUser(t, s.db, "seller", false)
	createTestListing(t, s.db, seller.ID, models.ApprovalStatusApproved)
	createTestListing(t, s.db, seller.ID, models.ApprovalStatusPending)
	createTestListing(t, s.db, seller.ID, models.ApprovalStatusRejected)
	app := itemTestApp(s, seller.ID)

	// Default view silently narrows to approved, same as the storefront.
	resp := doJSON(t, app, http.MethodGet, "/api/sellers/me/items", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decodeListings(t, resp), 1)

	resp = doJSON(t, app, http.MethodGet, "/api/sellers/me/items?include_all=true", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decodeListings(t, resp), 3)
}
