package database

import (
	"gorm.io/gorm"
)

// MigrateConstraints adds the constraints the reservation path relies on.
// Every statement is idempotent.
func MigrateConstraints(db *gorm.DB) error {
	statements := []string{
		// One physical seat per (match, row, col)
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_seats_match_row_col
			ON seats (match_id, seat_row, seat_col)`,

		// Availability scans walk ascending ids per match and category
		`CREATE INDEX IF NOT EXISTS idx_seats_available
			ON seats (match_id, category_id, id) WHERE is_booked = false`,

		`CREATE UNIQUE INDEX IF NOT EXISTS idx_purchases_order_id
			ON purchases (order_id)`,

		// Purchase lookup by seat for the e-ticket and release paths
		`CREATE INDEX IF NOT EXISTS idx_purchase_seats_seat
			ON purchase_seats (seat_id)`,

		`CREATE INDEX IF NOT EXISTS idx_purchases_pending_expiry
			ON purchases (expires_at) WHERE status = 'PENDING'`,

		`CREATE UNIQUE INDEX IF NOT EXISTS idx_voucher_usages_voucher_user
			ON voucher_usages (voucher_id, user_id)`,

		`CREATE UNIQUE INDEX IF NOT EXISTS idx_match_seat_capacities_pair
			ON match_seat_capacities (match_id, category_id)`,
	}

	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}

	return nil
}
