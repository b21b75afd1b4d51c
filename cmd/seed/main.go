// Command seed fills the reference backend with demo data.
package main

import (
	"flag"
	"log"

	"discovrr/internal/config"
	"discovrr/internal/database"
	"discovrr/internal/seed"
)

func main() {
	numProfiles := flag.Int("profiles", 50, "Number of profiles to create")
	numPosts := flag.Int("posts", 200, "Number of posts to create")
	numMerchants := flag.Int("merchants", 10, "Number of merchants to create")
	productsPerMerchant := flag.Int("products", 5, "Products per merchant")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	fixtures := flag.String("fixtures", "", "YAML fixture file applied after generated data")
	dryRun := flag.Bool("dry-run", false, "Build records without writing them")
	flag.Parse()

	log.Printf("Target: %d profiles, %d posts, %d merchants, clean=%v", *numProfiles, *numPosts, *numMerchants, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	factoryOpts := seed.FactoryOptions{DryRun: *dryRun}
	summary, err := seed.Seed(db, seed.Options{
		NumProfiles:         *numProfiles,
		NumPosts:            *numPosts,
		NumMerchants:        *numMerchants,
		ProductsPerMerchant: *productsPerMerchant,
		ShouldClean:         *shouldClean && !*dryRun,
		Factory:             factoryOpts,
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	log.Printf("Seeded %+v", summary)

	if *fixtures != "" {
		fx, err := seed.LoadFixtures(*fixtures)
		if err != nil {
			log.Fatalf("Failed to load fixtures: %v", err)
		}
		if err := fx.Apply(seed.NewFactory(db, factoryOpts)); err != nil {
			log.Fatalf("Failed to apply fixtures: %v", err)
		}
		log.Printf("Applied fixtures from %s", *fixtures)
	}

	log.Printf("All seeded accounts use the password %q", seed.DemoPassword)
}
