package venues

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"servetix/internal/shared/apperror"
	"servetix/internal/shared/constants"
	"servetix/pkg/cache"
	"servetix/pkg/logger"

	"github.com/jinzhu/copier"
	"gorm.io/gorm"
)

type Service interface {
	// Venues
	CreateVenue(ctx context.Context, req CreateVenueRequest) (*Venue, error)
	GetVenue(ctx context.Context, id uint) (*Venue, error)
	ListVenues(ctx context.Context) (*VenueListResponse, error)
	UpdateVenue(ctx context.Context, id uint, req UpdateVenueRequest) (*Venue, error)

	// Teams
	CreateTeam(ctx context.Context, req CreateTeamRequest) (*Team, error)
	GetTeam(ctx context.Context, id uint) (*Team, error)
	ListTeams(ctx context.Context) (*TeamListResponse, error)
}

type service struct {
	repo  Repository
	cache cache.Service
}

func NewService(repo Repository, cacheService cache.Service) Service {
	if cacheService == nil {
		cacheService = cache.NewNoopService()
	}
	return &service{repo: repo, cache: cacheService}
}

//  VENUES

func (s *service) CreateVenue(ctx context.Context, req CreateVenueRequest) (*Venue, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.InvalidField("name", "venue name is required")
	}

	// Create venue
	venue := &Venue{Name: name, Address: strings.TrimSpace(req.Address), Capacity: req.Capacity}
	if err := s.repo.CreateVenue(ctx, venue); err != nil {
		return nil, apperror.FromDB(err, "failed to create venue")
	}

	// Invalidate cache
	s.invalidate(ctx, constants.CACHE_KEY_VENUES_ALL)
	return venue, nil
}

func (s *service) GetVenue(ctx context.Context, id uint) (*Venue, error) {
	venue, err := s.repo.GetVenueByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound(fmt.Sprintf("venue %d not found", id))
		}
		return nil, apperror.FromDB(err, "failed to load venue")
	}
	return venue, nil
}

func (s *service) ListVenues(ctx context.Context) (*VenueListResponse, error) {
	var resp VenueListResponse
	err := s.cache.GetOrSet(ctx, constants.CACHE_KEY_VENUES_ALL, constants.TTL_VENUES, func() (interface{}, error) {
		venues, err := s.repo.ListVenues(ctx)
		if err != nil {
			return nil, apperror.FromDB(err, "failed to list venues")
		}
		return VenueListResponse{Venues: venues, Total: len(venues)}, nil
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *service) UpdateVenue(ctx context.Context, id uint, req UpdateVenueRequest) (*Venue, error) {
	// Check if venue exists
	venue, err := s.GetVenue(ctx, id)
	if err != nil {
		return nil, err
	}

	// Only fields present in the request overwrite the stored venue
	if err := copier.CopyWithOption(venue, &req, copier.Option{IgnoreEmpty: true}); err != nil {
		return nil, apperror.Unexpected("failed to apply venue update", err)
	}
	venue.Name = strings.TrimSpace(venue.Name)
	if venue.Name == "" {
		return nil, apperror.InvalidField("name", "venue name is required")
	}

	if err := s.repo.UpdateVenue(ctx, venue); err != nil {
		return nil, apperror.FromDB(err, "failed to update venue")
	}

	s.invalidate(ctx, constants.CACHE_KEY_VENUES_ALL)
	// Match details embed the venue address
	if err := s.cache.DeletePattern(ctx, constants.PATTERN_INVALIDATE_MATCH_ALL); err != nil {
		logger.GetDefault().Warn("Failed to invalidate match cache", slog.Any("error", err))
	}
	return venue, nil
}

//  TEAMS

func (s *service) CreateTeam(ctx context.Context, req CreateTeamRequest) (*Team, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.InvalidField("name", "team name is required")
	}

	// Create team
	team := &Team{Name: name, LogoURL: req.LogoURL}
	if err := s.repo.CreateTeam(ctx, team); err != nil {
		if apperror.IsUniqueViolation(err) {
			return nil, apperror.IntegrityConflict(fmt.Sprintf("team %q already exists", name), err)
		}
		return nil, apperror.FromDB(err, "failed to create team")
	}

	s.invalidate(ctx, constants.CACHE_KEY_TEAMS_ALL)
	return team, nil
}

func (s *service) GetTeam(ctx context.Context, id uint) (*Team, error) {
	team, err := s.repo.GetTeamByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound(fmt.Sprintf("team %d not found", id))
		}
		return nil, apperror.FromDB(err, "failed to load team")
	}
	return team, nil
}

func (s *service) ListTeams(ctx context.Context) (*TeamListResponse, error) {
	var resp TeamListResponse
	err := s.cache.GetOrSet(ctx, constants.CACHE_KEY_TEAMS_ALL, constants.TTL_TEAMS, func() (interface{}, error) {
		teams, err := s.repo.ListTeams(ctx)
		if err != nil {
			return nil, apperror.FromDB(err, "failed to list teams")
		}
		return TeamListResponse{Teams: teams, Total: len(teams)}, nil
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *service) invalidate(ctx context.Context, keys ...string) {
	if err := s.cache.Delete(ctx, keys...); err != nil {
		logger.GetDefault().Warn("Failed to invalidate venue cache", slog.Any("error", err))
	}
}
