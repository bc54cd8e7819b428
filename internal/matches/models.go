package matches

import (
	"time"

	"servetix/internal/venues"
)

const (
	fallbackVenueAddress = "Alamat tidak tersedia"
	fallbackTeamName     = "TBA"
)

type Match struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	Title       string        `gorm:"type:varchar(255);not null" json:"title"`
	Slug        string        `gorm:"type:varchar(280);uniqueIndex;not null" json:"slug"`
	VenueID     uint          `gorm:"not null;index" json:"venue_id"`
	Venue       *venues.Venue `gorm:"foreignKey:VenueID" json:"venue,omitempty"`
	TeamAID     *uint         `json:"team_a_id,omitempty"`
	TeamA       *venues.Team  `gorm:"foreignKey:TeamAID" json:"team_a,omitempty"`
	TeamBID     *uint         `json:"team_b_id,omitempty"`
	TeamB       *venues.Team  `gorm:"foreignKey:TeamBID" json:"team_b,omitempty"`
	StartTime   time.Time     `gorm:"not null;index" json:"start_time"`
	Description string        `gorm:"type:text" json:"description"`
	PriceFrom   int64         `gorm:"not null;default:0" json:"price_from"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// MatchSeatCapacity is how many seats of a category a match offers
type MatchSeatCapacity struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	MatchID    uint      `gorm:"not null;index" json:"match_id"`
	CategoryID uint      `gorm:"not null" json:"category_id"`
	Capacity   int       `gorm:"not null;check:capacity >= 0" json:"capacity"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Match) TableName() string {
	return "matches"
}

func (MatchSeatCapacity) TableName() string {
	return "match_seat_capacities"
}

func teamName(t *venues.Team) string {
	if t == nil || t.Name == "" {
		return fallbackTeamName
	}
	return t.Name
}

func teamLogo(t *venues.Team) *string {
	if t == nil {
		return nil
	}
	return t.LogoURL
}
