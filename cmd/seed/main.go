// Command main runs the database seeder for Relove.
package main

import (
	"flag"
	"log"

	"relove/internal/config"
	"relove/internal/database"
	"relove/internal/seed"
)

func main() {
	numSellers := flag.Int("sellers", 20, "Number of sellers to create")
	numListings := flag.Int("listings", 100, "Number of listings to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	skipBcrypt := flag.Bool("skip-bcrypt", false, "Store plaintext passwords for faster seeding")
	demo := flag.Bool("demo", false, "Apply the small fixed demo preset instead of bulk data")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(db, seed.Options{
		NumSellers:  *numSellers,
		NumListings: *numListings,
		ShouldClean: *shouldClean,
		SkipBcrypt:  *skipBcrypt,
	})

	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("❌ Cleanup failed: %v", err)
		}
	}

	if *demo {
		if err := seed.Demo(db); err != nil {
			log.Fatalf("❌ Demo seeding failed: %v", err)
		}
	} else {
		if err := s.SeedMarketplace(); err != nil {
			log.Fatalf("❌ Marketplace seeding failed: %v", err)
		}
	}

	log.Println("✨ All done! Your database is now populated with test data.")
	log.Println("📧 All test users have the password: password123")
}
