package analytics

import "time"

// StatusTotal aggregates purchases of one status
type StatusTotal struct {
	Status   string `json:"status"`
	Count    int64  `json:"count"`
	Revenue  int64  `json:"revenue"`
	Discount int64  `json:"discount"`
}

type PurchaseOverview struct {
	Total            int64   `json:"total"`
	Pending          int64   `json:"pending"`
	Confirmed        int64   `json:"confirmed"`
	Cancelled        int64   `json:"cancelled"`
	CancellationRate float64 `json:"cancellation_rate"`
	ConfirmedRevenue int64   `json:"confirmed_revenue"`
	DiscountGiven    int64   `json:"discount_given"`
}

type DailySales struct {
	Date      string `json:"date"`
	Purchases int64  `json:"purchases"`
	Revenue   int64  `json:"revenue"`
}

type DashboardAnalytics struct {
	TotalMatches    int64            `json:"total_matches"`
	UpcomingMatches int64            `json:"upcoming_matches"`
	Purchases       PurchaseOverview `json:"purchases"`
	SeatsTotal      int64            `json:"seats_total"`
	SeatsBooked     int64            `json:"seats_booked"`
	Occupancy       float64          `json:"occupancy"`
	DailySales      []DailySales     `json:"daily_sales"`
	GeneratedAt     time.Time        `json:"generated_at"`
}

// MatchHeader is the part of a match the sales report shows
type MatchHeader struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	StartTime time.Time `json:"start_time"`
}

// CategorySales is seat usage of one category of a match. Booked seats
// include PENDING holds; sold seats belong to CONFIRMED purchases only.
type CategorySales struct {
	CategoryID   uint    `json:"category_id"`
	Category     string  `json:"category"`
	Price        int64   `json:"price"`
	TotalSeats   int64   `json:"total_seats"`
	BookedSeats  int64   `json:"booked_seats"`
	SoldSeats    int64   `json:"sold_seats"`
	Occupancy    float64 `json:"occupancy"`
	GrossRevenue int64   `json:"gross_revenue"`
}

type MatchSales struct {
	Match       MatchHeader      `json:"match"`
	Categories  []CategorySales  `json:"categories"`
	TotalSeats  int64            `json:"total_seats"`
	BookedSeats int64            `json:"booked_seats"`
	SoldSeats   int64            `json:"sold_seats"`
	Occupancy   float64          `json:"occupancy"`
	Purchases   PurchaseOverview `json:"purchases"`
	GeneratedAt time.Time        `json:"generated_at"`
}
