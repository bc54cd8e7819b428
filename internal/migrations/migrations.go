// Package migrations lists every persisted model in dependency order.
package migrations

import (
	"servetix/internal/matches"
	"servetix/internal/purchases"
	"servetix/internal/seats"
	"servetix/internal/shared/database"
	"servetix/internal/venues"
	"servetix/internal/vouchers"

	"gorm.io/gorm"
)

func Models() []interface{} {
	return []interface{}{
		&venues.Venue{},
		&venues.Team{},
		&seats.SeatCategory{},
		&matches.Match{},
		&matches.MatchSeatCapacity{},
		&seats.Seat{},
		&purchases.Purchase{},
		&purchases.PurchaseSeat{},
		&purchases.Passenger{},
		&vouchers.Voucher{},
		&vouchers.VoucherUsage{},
	}
}

// Run creates or updates the schema
func Run(db *gorm.DB) error {
	return database.Migrate(db, Models()...)
}
