package venues

// VenueListResponse wraps cached venue listings
type VenueListResponse struct {
	Venues []Venue `json:"venues"`
	Total  int     `json:"total"`
}

type TeamListResponse struct {
	Teams []Team `json:"teams"`
	Total int    `json:"total"`
}
