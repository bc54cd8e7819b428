package venues

import (
	"context"
	"fmt"

	"servetix/internal/shared/database"

	"gorm.io/gorm"
)

// Repository interface for venue and team operations
type Repository interface {
	CreateVenue(ctx context.Context, venue *Venue) error
	GetVenueByID(ctx context.Context, id uint) (*Venue, error)
	ListVenues(ctx context.Context) ([]Venue, error)
	UpdateVenue(ctx context.Context, venue *Venue) error

	CreateTeam(ctx context.Context, team *Team) error
	GetTeamByID(ctx context.Context, id uint) (*Team, error)
	ListTeams(ctx context.Context) ([]Team, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// ============= VENUES =============

func (r *repository) CreateVenue(ctx context.Context, venue *Venue) error {
	return database.Conn(ctx, r.db).Create(venue).Error
}

func (r *repository) GetVenueByID(ctx context.Context, id uint) (*Venue, error) {
	var venue Venue
	if err := database.Conn(ctx, r.db).First(&venue, id).Error; err != nil {
		return nil, err
	}
	return &venue, nil
}

func (r *repository) ListVenues(ctx context.Context) ([]Venue, error) {
	var venues []Venue
	if err := database.Conn(ctx, r.db).Order("name ASC").Find(&venues).Error; err != nil {
		return nil, fmt.Errorf("list venues: %w", err)
	}
	return venues, nil
}

func (r *repository) UpdateVenue(ctx context.Context, venue *Venue) error {
	return database.Conn(ctx, r.db).Save(venue).Error
}

// ============= TEAMS =============

func (r *repository) CreateTeam(ctx context.Context, team *Team) error {
	return database.Conn(ctx, r.db).Create(team).Error
}

func (r *repository) GetTeamByID(ctx context.Context, id uint) (*Team, error) {
	var team Team
	if err := database.Conn(ctx, r.db).First(&team, id).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *repository) ListTeams(ctx context.Context) ([]Team, error) {
	var teams []Team
	if err := database.Conn(ctx, r.db).Order("name ASC").Find(&teams).Error; err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	return teams, nil
}
