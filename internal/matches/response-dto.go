package matches

import "time"

// MatchDetailResponse is the match card and detail page payload
type MatchDetailResponse struct {
	ID           uint      `json:"id"`
	Title        string    `json:"title"`
	Slug         string    `json:"slug"`
	TeamA        string    `json:"team_a"`
	TeamB        string    `json:"team_b"`
	TeamALogo    *string   `json:"team_a_logo"`
	TeamBLogo    *string   `json:"team_b_logo"`
	Venue        string    `json:"venue"`
	VenueAddress string    `json:"venue_address"`
	StartTime    time.Time `json:"start_time"`
	Description  string    `json:"description"`
	PriceFrom    int64     `json:"price_from"`
}

type UpcomingMatchesResponse struct {
	Matches []MatchDetailResponse `json:"matches"`
	Total   int                   `json:"total"`
}

func toDetail(m *Match) MatchDetailResponse {
	resp := MatchDetailResponse{
		ID:           m.ID,
		Title:        m.Title,
		Slug:         m.Slug,
		TeamA:        teamName(m.TeamA),
		TeamB:        teamName(m.TeamB),
		TeamALogo:    teamLogo(m.TeamA),
		TeamBLogo:    teamLogo(m.TeamB),
		VenueAddress: fallbackVenueAddress,
		StartTime:    m.StartTime,
		Description:  m.Description,
		PriceFrom:    m.PriceFrom,
	}
	if m.Venue != nil {
		resp.Venue = m.Venue.Name
		if m.Venue.Address != "" {
			resp.VenueAddress = m.Venue.Address
		}
	}
	return resp
}
