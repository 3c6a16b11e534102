// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"relove/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by seed presets and tests.
type Factory struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	// seed gofakeit for richer content
	gofakeit.Seed(time.Now().UnixNano())
	// #nosec G404: acceptable for seeding
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Factory{db: db, opts: opts, rng: rng}
}

var (
	categories = []string{
		"dresses", "tops", "bottoms", "outerwear", "shoes",
		"bags", "accessories", "knitwear", "denim", "activewear",
	}

	brands = []string{
		"Levi's", "Zara", "COS", "Acne Studios", "Patagonia", "Uniqlo",
		"Ganni", "A.P.C.", "Carhartt", "Dr. Martens", "Arket", "Reformation",
	}

	sizes = []string{"XS", "S", "M", "L", "XL", "36", "38", "40", "42"}

	conditions = []string{"new with tags", "like new", "good", "fair", "well loved"}

	materials = []string{"cotton", "wool", "linen", "denim", "leather", "silk", "polyester"}

	styles = []string{"vintage", "minimalist", "streetwear", "bohemian", "classic", "y2k"}

	rejectionReasons = []string{
		"Photos are too dark to assess the item's condition.",
		"Brand name in the title does not match the label in the photos.",
		"Listing appears to be a counterfeit item.",
		"Price is listed in the wrong currency.",
		"Description mentions flaws not shown in any photo.",
		"Stock photos are not allowed; please photograph the actual item.",
	}
)

// CreateUser constructs and persists a sample `models.User`.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Username: gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Email:    gofakeit.Email(),
	}

	// Password handling: allow skipping bcrypt in dev fast mode
	if f.opts.SkipBcrypt {
		user.Password = "password123"
	} else {
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		user.Password = string(hashedPassword)
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildListing constructs a listing for the given seller without persisting
// it. Useful for batching. The listing is pending and off the storefront;
// use CreateDecidedListing for approved/rejected fixtures.
func (f *Factory) BuildListing(seller *models.User, overrides ...func(*models.Listing)) *models.Listing {
	price := float64(gofakeit.Number(8, 240))
	original := price * (1.5 + f.rng.Float64())

	category := categories[f.rng.Intn(len(categories))]
	brand := brands[f.rng.Intn(len(brands))]

	listing := &models.Listing{
		SellerID:      seller.ID,
		Title:         fmt.Sprintf("%s %s %s", brand, gofakeit.AdjectiveDescriptive(), category),
		Description:   gofakeit.Paragraph(1, 3, 8, "\n"),
		Brand:         brand,
		Category:      category,
		Size:          sizes[f.rng.Intn(len(sizes))],
		Condition:     conditions[f.rng.Intn(len(conditions))],
		Price:         price,
		OriginalPrice: &original,
		Color:         gofakeit.Color(),
		Material:      materials[f.rng.Intn(len(materials))],
		Style:         styles[f.rng.Intn(len(styles))],
		Images: []string{
			fmt.Sprintf("https://picsum.photos/seed/%s/800/1000", gofakeit.UUID()),
			fmt.Sprintf("https://picsum.photos/seed/%s/800/1000", gofakeit.UUID()),
		},
		Location:       gofakeit.City(),
		Tags:           []string{category, brand},
		SellStatus:     models.SellStatusAvailable,
		ApprovalStatus: models.ApprovalStatusPending,
		IsActive:       false,
	}

	// realistic submitted_at spread so the review queue has an order
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 30
	}
	daysBack := f.rng.Intn(maxDays)
	hoursBack := f.rng.Intn(24)
	minsBack := f.rng.Intn(60)
	submitted := time.Now().UTC().Add(-time.Duration(daysBack)*24*time.Hour -
		time.Duration(hoursBack)*time.Hour - time.Duration(minsBack)*time.Minute)
	listing.SubmittedAt = submitted
	listing.CreatedAt = submitted

	for _, override := range overrides {
		override(listing)
	}
	return listing
}

// CreateListing constructs and persists a pending listing for the given seller.
func (f *Factory) CreateListing(seller *models.User, overrides ...func(*models.Listing)) (*models.Listing, error) {
	listing := f.BuildListing(seller, overrides...)
	if err := f.db.Create(listing).Error; err != nil {
		return nil, err
	}
	return listing, nil
}

// CreateListingsBatch persists multiple listings in a single DB call when possible.
func (f *Factory) CreateListingsBatch(listings []*models.Listing) error {
	if len(listings) == 0 {
		return nil
	}
	return f.db.Create(&listings).Error
}

// CreateDecidedListing persists a listing that has already been through
// review, together with its matching audit record. Approved listings go live;
// rejected listings carry the reviewer's notes.
func (f *Factory) CreateDecidedListing(seller, reviewer *models.User, decision models.ReviewDecision, overrides ...func(*models.Listing)) (*models.Listing, error) {
	listing := f.BuildListing(seller, overrides...)

	decidedAt := listing.SubmittedAt.Add(time.Duration(1+f.rng.Intn(48)) * time.Hour)
	listing.ApprovedAt = &decidedAt
	listing.ApprovedBy = &reviewer.ID

	switch decision {
	case models.ReviewDecisionApproved:
		listing.ApprovalStatus = models.ApprovalStatusApproved
		listing.IsActive = true
	case models.ReviewDecisionRejected:
		listing.ApprovalStatus = models.ApprovalStatusRejected
		listing.IsActive = false
		listing.AdminNotes = rejectionReasons[f.rng.Intn(len(rejectionReasons))]
	default:
		return nil, fmt.Errorf("unknown decision %q", decision)
	}

	if err := f.db.Create(listing).Error; err != nil {
		return nil, err
	}

	record := &models.ReviewRecord{
		RecordKey:  uuid.NewString(),
		ItemID:     listing.ID,
		Decision:   decision,
		ReviewerID: reviewer.ID,
		Notes:      listing.AdminNotes,
		CreatedAt:  decidedAt,
	}
	if err := f.db.Create(record).Error; err != nil {
		return nil, err
	}
	return listing, nil
}
