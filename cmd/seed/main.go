package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"servetix/internal/matches"
	"servetix/internal/migrations"
	"servetix/internal/seats"
	"servetix/internal/shared/config"
	"servetix/internal/shared/constants"
	"servetix/internal/shared/database"
	"servetix/internal/venues"
	"servetix/internal/vouchers"
	"servetix/pkg/cache"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

type Seeder struct {
	db  *database.DB
	cfg *config.Config

	venues   venues.Service
	seats    seats.Service
	matches  matches.Service
	vouchers vouchers.Service
}

func main() {
	fmt.Println("🌱 Starting ServeTix Database Seeder...")

	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := migrations.Run(db.GetPostgreSQL()); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	seeder := newSeeder(db, cfg)

	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}
	fmt.Println("✅ Database cleaned successfully")

	fmt.Println("\n🌱 Seeding database...")
	if err := seeder.SeedAll(context.Background()); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
	fmt.Println("✅ Database seeded successfully")

	if err := seeder.PrintDevTokens(); err != nil {
		log.Printf("Warning: failed to sign dev tokens: %v", err)
	}

	fmt.Println("\n🎉 Seeding completed! Database is ready for testing.")
}

func newSeeder(db *database.DB, cfg *config.Config) *Seeder {
	pg := db.GetPostgreSQL()
	cacheService := cache.NewService(db.GetRedisClient())
	transactor := database.NewTransactor(pg, cfg.Reservation.LockTimeout)

	venueRepo := venues.NewRepository(pg)
	seatRepo := seats.NewRepository(pg, seats.ParseLockMode(cfg.Reservation.LockMode))
	seatService := seats.NewService(seatRepo, transactor, cacheService)

	return &Seeder{
		db:       db,
		cfg:      cfg,
		venues:   venues.NewService(venueRepo, cacheService),
		seats:    seatService,
		matches:  matches.NewService(matches.NewRepository(pg), venueRepo, seatRepo, seatService, transactor, cacheService, cfg.Reservation.DefaultCapacity),
		vouchers: vouchers.NewService(vouchers.NewRepository(pg)),
	}
}

// CleanDatabase truncates every table, children first
func (s *Seeder) CleanDatabase() error {
	tables := []string{
		"voucher_usages",
		"vouchers",
		"purchase_passengers",
		"purchase_seats",
		"purchases",
		"seats",
		"match_seat_capacities",
		"matches",
		"seat_categories",
		"teams",
		"venues",
	}

	tx := s.db.PostgreSQL.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	for _, table := range tables {
		fmt.Printf("  Truncating table: %s\n", table)
		if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit().Error
}

// SeedAll seeds venues, teams, seat categories, matches and vouchers
func (s *Seeder) SeedAll(ctx context.Context) error {
	venueIDs, err := s.SeedVenues(ctx)
	if err != nil {
		return fmt.Errorf("failed to seed venues: %w", err)
	}

	teamIDs, err := s.SeedTeams(ctx)
	if err != nil {
		return fmt.Errorf("failed to seed teams: %w", err)
	}

	categoryIDs, err := s.SeedCategories(ctx)
	if err != nil {
		return fmt.Errorf("failed to seed seat categories: %w", err)
	}

	if err := s.SeedMatches(ctx, venueIDs, teamIDs, categoryIDs); err != nil {
		return fmt.Errorf("failed to seed matches: %w", err)
	}

	if err := s.SeedVouchers(ctx); err != nil {
		return fmt.Errorf("failed to seed vouchers: %w", err)
	}

	if rdb := s.db.GetRedisClient(); rdb != nil {
		if err := rdb.FlushDB(ctx).Err(); err != nil {
			log.Printf("Warning: Failed to clear Redis cache: %v", err)
		}
	}
	return nil
}

func (s *Seeder) SeedVenues(ctx context.Context) (map[string]uint, error) {
	fmt.Println("  🏟️  Seeding venues...")

	data := []struct {
		key      string
		name     string
		address  string
		capacity uint
	}{
		{"gbk", "Stadion Utama Gelora Bung Karno", "Jl. Pintu Satu Senayan, Jakarta Pusat", 77193},
		{"jis", "Jakarta International Stadium", "Jl. R.E. Martadinata, Tanjung Priok, Jakarta Utara", 82000},
		{"gbla", "Stadion Gelora Bandung Lautan Api", "", 38000},
	}

	ids := make(map[string]uint, len(data))
	for _, d := range data {
		capacity := d.capacity
		venue, err := s.venues.CreateVenue(ctx, venues.CreateVenueRequest{Name: d.name, Address: d.address, Capacity: &capacity})
		if err != nil {
			return nil, err
		}
		ids[d.key] = venue.ID
		fmt.Printf("    ✅ Created venue: %s\n", venue.Name)
	}
	return ids, nil
}

func (s *Seeder) SeedTeams(ctx context.Context) (map[string]uint, error) {
	fmt.Println("  ⚽ Seeding teams...")

	names := []string{"Persija Jakarta", "Persib Bandung", "Arema FC", "Persebaya Surabaya", "Bali United"}
	ids := make(map[string]uint, len(names))
	for _, name := range names {
		team, err := s.venues.CreateTeam(ctx, venues.CreateTeamRequest{Name: name})
		if err != nil {
			return nil, err
		}
		ids[name] = team.ID
		fmt.Printf("    ✅ Created team: %s\n", team.Name)
	}
	return ids, nil
}

func (s *Seeder) SeedCategories(ctx context.Context) (map[string]uint, error) {
	fmt.Println("  💺 Seeding seat categories...")

	data := []seats.CreateCategoryRequest{
		{Name: "VIP", Price: 750000, Color: "#7C3AED"},
		{Name: "Gold", Price: 350000, Color: "#F59E0B"},
		{Name: "Silver", Price: 200000, Color: "#9CA3AF"},
		{Name: "Bronze", Price: 100000, Color: "#B45309"},
	}

	ids := make(map[string]uint, len(data))
	for _, req := range data {
		category, err := s.seats.CreateCategory(ctx, req)
		if err != nil {
			return nil, err
		}
		ids[category.Name] = category.ID
		fmt.Printf("    ✅ Created category: %s (Rp %d)\n", category.Name, category.Price)
	}
	return ids, nil
}

func (s *Seeder) SeedMatches(ctx context.Context, venueIDs, teamIDs, categoryIDs map[string]uint) error {
	fmt.Println("  📅 Seeding matches...")

	team := func(name string) *uint {
		id := teamIDs[name]
		return &id
	}
	kickoff := func(days, hour int) time.Time {
		d := time.Now().In(s.cfg.Location()).AddDate(0, 0, days)
		return time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, d.Location())
	}

	data := []matches.CreateMatchRequest{
		{
			Title:       "Persija Jakarta vs Persib Bandung",
			VenueID:     venueIDs["gbk"],
			TeamAID:     team("Persija Jakarta"),
			TeamBID:     team("Persib Bandung"),
			StartTime:   kickoff(1, 19),
			Description: "El Clasico Indonesia",
		},
		{
			Title:     "Arema FC vs Persebaya Surabaya",
			VenueID:   venueIDs["jis"],
			TeamAID:   team("Arema FC"),
			TeamBID:   team("Persebaya Surabaya"),
			StartTime: kickoff(7, 16),
			Capacities: []matches.CapacityInput{
				{CategoryID: categoryIDs["VIP"], Capacity: 20},
				{CategoryID: categoryIDs["Gold"], Capacity: 50},
				{CategoryID: categoryIDs["Silver"], Capacity: 100},
				{CategoryID: categoryIDs["Bronze"], Capacity: 200},
			},
		},
		{
			Title:     "Bali United Open Training",
			VenueID:   venueIDs["gbla"],
			TeamAID:   team("Bali United"),
			StartTime: kickoff(14, 15),
			Capacities: []matches.CapacityInput{
				{CategoryID: categoryIDs["Bronze"], Capacity: 30},
			},
		},
	}

	for _, req := range data {
		match, err := s.matches.CreateMatch(ctx, req)
		if err != nil {
			return err
		}
		fmt.Printf("    ✅ Created match: %s (%s)\n", match.Title, match.Slug)
	}
	return nil
}

func (s *Seeder) SeedVouchers(ctx context.Context) error {
	fmt.Println("  🎟️  Seeding vouchers...")

	unlimited := 0
	now := time.Now()
	data := []vouchers.CreateVoucherRequest{
		{Code: "MATCHDAY10", DiscountType: vouchers.DiscountPercent, Value: 10, MaxUseCount: &unlimited, ValidFrom: now, ValidUntil: now.AddDate(0, 3, 0)},
		{Code: "HEMAT50K", DiscountType: vouchers.DiscountFixed, Value: 50000, MinPurchaseAmount: 200000, ValidFrom: now, ValidUntil: now.AddDate(0, 1, 0)},
		{DiscountType: vouchers.DiscountPercent, Value: 25, ValidFrom: now, ValidUntil: now.AddDate(0, 0, 7)},
	}

	for _, req := range data {
		voucher, err := s.vouchers.Create(ctx, req)
		if err != nil {
			return err
		}
		fmt.Printf("    ✅ Created voucher: %s\n", voucher)
	}
	return nil
}

// PrintDevTokens signs one admin and one user token with the configured
// secret so the API can be exercised locally
func (s *Seeder) PrintDevTokens() error {
	fmt.Println("\n🔑 Development tokens (valid 24h):")

	users := []struct {
		email string
		name  string
		role  string
	}{
		{"admin@servetix.id", "Admin ServeTix", constants.RoleAdmin},
		{"budi@servetix.id", "Budi Santoso", constants.RoleUser},
	}

	for _, u := range users {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"user_id": uuid.NewString(),
			"email":   u.email,
			"name":    u.name,
			"role":    u.role,
			"exp":     time.Now().Add(24 * time.Hour).Unix(),
		})
		signed, err := token.SignedString([]byte(s.cfg.JWT.Secret))
		if err != nil {
			return err
		}
		fmt.Printf("  %s (%s):\n  %s\n", u.email, u.role, signed)
	}
	return nil
}
