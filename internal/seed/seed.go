package seed

import (
	"fmt"
	"log"

	"relove/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumSellers  int
	NumListings int
	ShouldClean bool

	// SkipBcrypt stores plaintext passwords to speed up large dev seeds.
	SkipBcrypt bool
	// MaxDays bounds how far back submitted_at timestamps are spread.
	MaxDays int
}

// Seeder populates the database with marketplace test data.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
	opts    Options
}

// NewSeeder creates a Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{db: db, factory: NewFactory(db, opts), opts: opts}
}

// ClearAll removes all seeded data. Review records go first so the listing
// delete never orphans an audit row mid-way.
func (s *Seeder) ClearAll() error {
	log.Println("🧹 Clearing existing data...")
	tables := []any{
		&models.ReviewRecord{},
		&models.Listing{},
		&models.User{},
	}
	for _, table := range tables {
		if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(table).Error; err != nil {
			return fmt.Errorf("failed to clear %T: %w", table, err)
		}
	}
	return nil
}

// SeedMarketplace creates sellers, a pool of moderators, and listings spread
// across the moderation lifecycle: a pending queue, a live storefront, and a
// set of rejected listings with reviewer notes.
func (s *Seeder) SeedMarketplace() error {
	numSellers := s.opts.NumSellers
	if numSellers <= 0 {
		numSellers = 20
	}
	numListings := s.opts.NumListings
	if numListings <= 0 {
		numListings = 100
	}

	log.Printf("🌱 Seeding %d sellers and %d listings...", numSellers, numListings)

	moderators := make([]*models.User, 0, 3)
	for i := 0; i < 3; i++ {
		mod, err := s.factory.CreateUser(func(u *models.User) {
			u.Username = fmt.Sprintf("moderator%d", i+1)
			u.Email = fmt.Sprintf("moderator%d@relove.local", i+1)
			u.IsAdmin = true
		})
		if err != nil {
			return fmt.Errorf("failed to create moderator: %w", err)
		}
		moderators = append(moderators, mod)
	}

	sellers := make([]*models.User, 0, numSellers)
	for i := 0; i < numSellers; i++ {
		seller, err := s.factory.CreateUser()
		if err != nil {
			return fmt.Errorf("failed to create seller: %w", err)
		}
		sellers = append(sellers, seller)
	}

	var pending, approved, rejected int
	for i := 0; i < numListings; i++ {
		seller := sellers[s.factory.rng.Intn(len(sellers))]
		reviewer := moderators[s.factory.rng.Intn(len(moderators))]

		// Roughly: 60% approved and live, 25% pending review, 15% rejected.
		roll := s.factory.rng.Intn(100)
		switch {
		case roll < 60:
			if _, err := s.factory.CreateDecidedListing(seller, reviewer, models.ReviewDecisionApproved); err != nil {
				return fmt.Errorf("failed to create approved listing: %w", err)
			}
			approved++
		case roll < 85:
			if _, err := s.factory.CreateListing(seller); err != nil {
				return fmt.Errorf("failed to create pending listing: %w", err)
			}
			pending++
		default:
			if _, err := s.factory.CreateDecidedListing(seller, reviewer, models.ReviewDecisionRejected); err != nil {
				return fmt.Errorf("failed to create rejected listing: %w", err)
			}
			rejected++
		}
	}

	log.Printf("✓ %d listings created (%d live, %d in review queue, %d rejected)", numListings, approved, pending, rejected)
	return nil
}

// Demo applies a small fixed preset: one moderator, two sellers, and one
// listing in every lifecycle state. Handy for walking through the review
// workflow by hand.
func Demo(db *gorm.DB) error {
	f := NewFactory(db, Options{MaxDays: 7})

	moderator, err := f.CreateUser(func(u *models.User) {
		u.Username = "demo_moderator"
		u.Email = "moderator@relove.local"
		u.IsAdmin = true
	})
	if err != nil {
		return fmt.Errorf("demo moderator: %w", err)
	}

	alice, err := f.CreateUser(func(u *models.User) {
		u.Username = "demo_alice"
		u.Email = "alice@relove.local"
	})
	if err != nil {
		return fmt.Errorf("demo seller: %w", err)
	}
	bruno, err := f.CreateUser(func(u *models.User) {
		u.Username = "demo_bruno"
		u.Email = "bruno@relove.local"
	})
	if err != nil {
		return fmt.Errorf("demo seller: %w", err)
	}

	if _, err := f.CreateListing(alice, func(l *models.Listing) {
		l.Title = "Levi's 501 vintage denim"
	}); err != nil {
		return fmt.Errorf("demo pending listing: %w", err)
	}
	if _, err := f.CreateDecidedListing(alice, moderator, models.ReviewDecisionApproved, func(l *models.Listing) {
		l.Title = "Ganni wrap dress, worn twice"
	}); err != nil {
		return fmt.Errorf("demo approved listing: %w", err)
	}
	if _, err := f.CreateDecidedListing(bruno, moderator, models.ReviewDecisionRejected, func(l *models.Listing) {
		l.Title = "Designer handbag (no brand shown)"
	}); err != nil {
		return fmt.Errorf("demo rejected listing: %w", err)
	}
	// soft-deleted listing: approval history intact, off the storefront
	coat, err := f.CreateDecidedListing(bruno, moderator, models.ReviewDecisionApproved, func(l *models.Listing) {
		l.Title = "COS wool coat (sold elsewhere)"
	})
	if err != nil {
		return fmt.Errorf("demo deactivated listing: %w", err)
	}
	if err := db.Model(&models.Listing{}).Where("id = ?", coat.ID).Update("is_active", false).Error; err != nil {
		return fmt.Errorf("demo deactivate: %w", err)
	}

	log.Println("✓ Demo data seeded (password for all demo users: password123)")
	return nil
}
