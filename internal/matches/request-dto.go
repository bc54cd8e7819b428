package matches

import "time"

type CapacityInput struct {
	CategoryID uint `json:"category_id" validate:"required"`
	Capacity   int  `json:"capacity" validate:"gte=0,max=100000"`
}

// CreateMatchRequest creates a match and provisions its seats. Without
// Capacities every seat category gets the default capacity.
type CreateMatchRequest struct {
	Title       string          `json:"title" binding:"required" validate:"required,max=255"`
	VenueID     uint            `json:"venue_id" binding:"required" validate:"required"`
	TeamAID     *uint           `json:"team_a_id"`
	TeamBID     *uint           `json:"team_b_id"`
	StartTime   time.Time       `json:"start_time" binding:"required" validate:"required"`
	Description string          `json:"description" validate:"max=5000"`
	PriceFrom   *int64          `json:"price_from" validate:"omitempty,gte=0"`
	Capacities  []CapacityInput `json:"capacities" validate:"dive"`
}

// UpdateMatchRequest changes only the fields that are set. Capacities may
// grow a category but never shrink it below the seats already provisioned.
type UpdateMatchRequest struct {
	Title       *string         `json:"title" validate:"omitempty,max=255"`
	VenueID     *uint           `json:"venue_id"`
	TeamAID     *uint           `json:"team_a_id"`
	TeamBID     *uint           `json:"team_b_id"`
	StartTime   *time.Time      `json:"start_time"`
	Description *string         `json:"description" validate:"omitempty,max=5000"`
	PriceFrom   *int64          `json:"price_from" validate:"omitempty,gte=0"`
	Capacities  []CapacityInput `json:"capacities" validate:"dive"`
}
