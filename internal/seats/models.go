package seats

import (
	"fmt"
	"time"
)

const DefaultCategoryColor = "#d3a15a"

// SeatCategory is a pricing tier (VIP, Gold, ...) shared by all matches
type SeatCategory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	Price     int64     `gorm:"not null;check:price >= 0" json:"price"`
	Color     string    `gorm:"type:varchar(7);default:'#d3a15a'" json:"color"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Seat is the unit of allocation. Once IsBooked is true no other purchase
// may claim it until the owning purchase is cancelled.
type Seat struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	MatchID    uint      `gorm:"not null;index" json:"match_id"`
	Row        string    `gorm:"column:seat_row;type:varchar(10);not null" json:"row"`
	Col        int       `gorm:"column:seat_col;not null" json:"col"`
	CategoryID uint      `gorm:"not null;index" json:"category_id"`
	IsBooked   bool      `gorm:"not null;default:false" json:"is_booked"`
	QRCodeData *string   `gorm:"type:varchar(255);uniqueIndex" json:"qr_code_data,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (SeatCategory) TableName() string {
	return "seat_categories"
}

func (Seat) TableName() string {
	return "seats"
}

// Label is the printed seat name, row prefix followed by column
func (s Seat) Label() string {
	return fmt.Sprintf("%s%d", s.Row, s.Col)
}

// RowPrefix is the row name used for every seat of a category
func RowPrefix(categoryID uint) string {
	return fmt.Sprintf("C%d", categoryID)
}

// IDs returns the ids of seats in order
func IDs(seats []Seat) []uint {
	ids := make([]uint, len(seats))
	for i, s := range seats {
		ids[i] = s.ID
	}
	return ids
}

// SeatMapEntry is one seat as shown on the public seat map
type SeatMapEntry struct {
	ID       uint   `json:"id"`
	Label    string `json:"label"`
	Category string `json:"category"`
	Color    string `json:"color"`
	Price    int64  `json:"price"`
	IsBooked bool   `json:"is_booked"`
}

// CategoryAvailability summarises one category of a match
type CategoryAvailability struct {
	CategoryID uint   `json:"category_id"`
	Category   string `json:"category"`
	Price      int64  `json:"price"`
	Total      int    `json:"total"`
	Available  int    `json:"available"`
}

// SeatMapResponse is the cached seat map of a match
type SeatMapResponse struct {
	MatchID    uint                   `json:"match_id"`
	Seats      []SeatMapEntry         `json:"seats"`
	Categories []CategoryAvailability `json:"categories"`
}

// CreateCategoryRequest is the admin payload for a new category
type CreateCategoryRequest struct {
	Name  string `json:"name" binding:"required,max=50"`
	Price int64  `json:"price" binding:"gte=0"`
	Color string `json:"color" binding:"omitempty,hexcolor"`
}
