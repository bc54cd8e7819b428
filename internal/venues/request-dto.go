package venues

type CreateVenueRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=200"`
	Address  string `json:"address" binding:"max=1000"`
	Capacity *uint  `json:"capacity" binding:"omitempty,min=1"`
}

type UpdateVenueRequest struct {
	Name     *string `json:"name" binding:"omitempty,min=2,max=200"`
	Address  *string `json:"address" binding:"omitempty,max=1000"`
	Capacity *uint   `json:"capacity" binding:"omitempty,min=1"`
}

type CreateTeamRequest struct {
	Name    string  `json:"name" binding:"required,min=2,max=100"`
	LogoURL *string `json:"logo_url" binding:"omitempty,url,max=500"`
}
