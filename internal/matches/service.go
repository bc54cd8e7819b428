package matches

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"servetix/internal/purchases"
	"servetix/internal/seats"
	"servetix/internal/shared/apperror"
	"servetix/internal/shared/constants"
	"servetix/internal/shared/database"
	"servetix/internal/shared/validation"
	"servetix/internal/venues"
	"servetix/pkg/cache"
	"servetix/pkg/logger"

	"github.com/gosimple/slug"
	"github.com/jinzhu/copier"
	"gorm.io/gorm"
)

const maxUpcomingLimit = 100

// Directory resolves the venue and teams a match refers to
type Directory interface {
	GetVenueByID(ctx context.Context, id uint) (*venues.Venue, error)
	GetTeamByID(ctx context.Context, id uint) (*venues.Team, error)
}

type Service interface {
	CreateMatch(ctx context.Context, req CreateMatchRequest) (*MatchDetailResponse, error)
	GetMatch(ctx context.Context, id uint) (*MatchDetailResponse, error)
	ListUpcoming(ctx context.Context, limit int) (*UpcomingMatchesResponse, error)
	UpdateMatch(ctx context.Context, id uint, req UpdateMatchRequest) (*MatchDetailResponse, error)
	DeleteMatch(ctx context.Context, id uint) error

	// LookupMatch is the purchase flow's view of a match
	LookupMatch(ctx context.Context, id uint) (*purchases.MatchInfo, error)
}

type service struct {
	repo            Repository
	directory       Directory
	seatRepo        seats.Repository
	seats           seats.Service
	transactor      database.Transactor
	cache           cache.Service
	defaultCapacity int
	now             func() time.Time
}

func NewService(
	repo Repository,
	directory Directory,
	seatRepo seats.Repository,
	seatService seats.Service,
	transactor database.Transactor,
	cacheService cache.Service,
	defaultCapacity int,
) Service {
	if cacheService == nil {
		cacheService = cache.NewNoopService()
	}
	if defaultCapacity < 0 {
		defaultCapacity = 0
	}
	return &service{
		repo:            repo,
		directory:       directory,
		seatRepo:        seatRepo,
		seats:           seatService,
		transactor:      transactor,
		cache:           cacheService,
		defaultCapacity: defaultCapacity,
		now:             time.Now,
	}
}

var _ purchases.MatchLookup = (*service)(nil)

// CreateMatch stores the match, its capacities and its seats in one
// transaction. Seats are provisioned here and nowhere else.
func (s *service) CreateMatch(ctx context.Context, req CreateMatchRequest) (*MatchDetailResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperror.InvalidField("title", "title is required")
	}

	var (
		match       *Match
		provisioned int
	)
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		// Validate venue and teams exist
		if err := s.checkReferences(ctx, req.VenueID, req.TeamAID, req.TeamBID); err != nil {
			return err
		}

		capacities, categories, err := s.resolveCapacities(ctx, req.Capacities)
		if err != nil {
			return err
		}

		// Generate slug
		matchSlug, err := s.uniqueSlug(ctx, title, 0)
		if err != nil {
			return err
		}

		match = &Match{
			Title:       title,
			Slug:        matchSlug,
			VenueID:     req.VenueID,
			TeamAID:     req.TeamAID,
			TeamBID:     req.TeamBID,
			StartTime:   req.StartTime,
			Description: strings.TrimSpace(req.Description),
			PriceFrom:   lowestPrice(capacities, categories),
		}
		if req.PriceFrom != nil {
			match.PriceFrom = *req.PriceFrom
		}
		if err := s.repo.Create(ctx, match); err != nil {
			if apperror.IsUniqueViolation(err) {
				return apperror.IntegrityConflict("a match with this slug already exists", err)
			}
			return apperror.FromDB(err, "failed to create match")
		}

		// Save capacities and create the seats
		rows := make([]MatchSeatCapacity, 0, len(capacities))
		for categoryID, capacity := range capacities {
			rows = append(rows, MatchSeatCapacity{MatchID: match.ID, CategoryID: categoryID, Capacity: capacity})
		}
		if err := s.repo.SaveCapacities(ctx, rows); err != nil {
			return apperror.FromDB(err, "failed to save seat capacities")
		}

		provisioned, err = s.seats.ProvisionSeats(ctx, match.ID, capacities)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.GetDefault().InfoContext(ctx, "Match created",
		slog.Uint64("match_id", uint64(match.ID)),
		slog.String("slug", match.Slug),
		slog.Int("seats", provisioned))
	// Invalidate match listings
	s.invalidate(ctx)

	return s.loadDetail(ctx, match.ID)
}

// resolveCapacities returns capacity per category and the categories
// themselves. Without input every category gets the default capacity.
func (s *service) resolveCapacities(ctx context.Context, input []CapacityInput) (map[uint]int, []seats.SeatCategory, error) {
	if len(input) == 0 {
		categories, err := s.seatRepo.ListCategories(ctx)
		if err != nil {
			return nil, nil, apperror.FromDB(err, "failed to load seat categories")
		}
		capacities := make(map[uint]int, len(categories))
		for _, c := range categories {
			capacities[c.ID] = s.defaultCapacity
		}
		return capacities, categories, nil
	}

	capacities := make(map[uint]int, len(input))
	ids := make([]uint, 0, len(input))
	for i, in := range input {
		if _, dup := capacities[in.CategoryID]; dup {
			return nil, nil, apperror.InvalidField(fmt.Sprintf("capacities[%d].category_id", i),
				fmt.Sprintf("category %d listed more than once", in.CategoryID))
		}
		capacities[in.CategoryID] = in.Capacity
		ids = append(ids, in.CategoryID)
	}

	categories, err := s.seatRepo.GetCategoriesByIDs(ctx, ids)
	if err != nil {
		return nil, nil, apperror.FromDB(err, "failed to load seat categories")
	}
	if len(categories) != len(ids) {
		return nil, nil, apperror.NotFound("one or more seat categories do not exist")
	}
	return capacities, categories, nil
}

// lowestPrice is the cheapest category that has seats, or 0
func lowestPrice(capacities map[uint]int, categories []seats.SeatCategory) int64 {
	var lowest int64 = -1
	for _, c := range categories {
		if capacities[c.ID] <= 0 {
			continue
		}
		if lowest < 0 || c.Price < lowest {
			lowest = c.Price
		}
	}
	if lowest < 0 {
		return 0
	}
	return lowest
}

func (s *service) checkReferences(ctx context.Context, venueID uint, teamIDs ...*uint) error {
	if _, err := s.directory.GetVenueByID(ctx, venueID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound(fmt.Sprintf("venue %d not found", venueID))
		}
		return apperror.FromDB(err, "failed to load venue")
	}
	for _, id := range teamIDs {
		if id == nil {
			continue
		}
		if _, err := s.directory.GetTeamByID(ctx, *id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound(fmt.Sprintf("team %d not found", *id))
			}
			return apperror.FromDB(err, "failed to load team")
		}
	}
	return nil
}

// uniqueSlug appends -1, -2, ... until the slug is free
func (s *service) uniqueSlug(ctx context.Context, title string, matchID uint) (string, error) {
	base := slug.Make(title)
	if base == "" {
		base = "match"
	}

	candidate := base
	for i := 1; ; i++ {
		taken, err := s.repo.SlugExists(ctx, candidate, matchID)
		if err != nil {
			return "", apperror.FromDB(err, "failed to check slug")
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

func (s *service) GetMatch(ctx context.Context, id uint) (*MatchDetailResponse, error) {
	var resp MatchDetailResponse
	err := s.cache.GetOrSet(ctx, constants.BuildMatchDetailKey(id), constants.TTL_MATCH_DETAIL, func() (interface{}, error) {
		return s.loadDetail(ctx, id)
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *service) loadDetail(ctx context.Context, id uint) (*MatchDetailResponse, error) {
	match, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := toDetail(match)
	return &detail, nil
}

func (s *service) load(ctx context.Context, id uint) (*Match, error) {
	match, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound(fmt.Sprintf("match %d not found", id))
		}
		return nil, apperror.FromDB(err, "failed to load match")
	}
	return match, nil
}

func (s *service) ListUpcoming(ctx context.Context, limit int) (*UpcomingMatchesResponse, error) {
	// Set default limit
	if limit <= 0 || limit > maxUpcomingLimit {
		limit = 20
	}

	var resp UpcomingMatchesResponse
	err := s.cache.GetOrSet(ctx, constants.BuildUpcomingMatchesKey(limit), constants.TTL_MATCH_UPCOMING, func() (interface{}, error) {
		list, err := s.repo.ListUpcoming(ctx, s.now(), limit)
		if err != nil {
			return nil, apperror.FromDB(err, "failed to list matches")
		}
		out := UpcomingMatchesResponse{Matches: make([]MatchDetailResponse, 0, len(list))}
		for i := range list {
			out.Matches = append(out.Matches, toDetail(&list[i]))
		}
		out.Total = len(out.Matches)
		return out, nil
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *service) UpdateMatch(ctx context.Context, id uint, req UpdateMatchRequest) (*MatchDetailResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		match, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		previousTitle := match.Title

		// Apply only the fields that were sent
		if err := copier.CopyWithOption(match, &req, copier.Option{IgnoreEmpty: true}); err != nil {
			return apperror.Unexpected("failed to apply match update", err)
		}
		match.Title = strings.TrimSpace(match.Title)
		if match.Title == "" {
			return apperror.InvalidField("title", "title cannot be empty")
		}

		// Validate changed references
		if req.VenueID != nil || req.TeamAID != nil || req.TeamBID != nil {
			if err := s.checkReferences(ctx, match.VenueID, req.TeamAID, req.TeamBID); err != nil {
				return err
			}
		}
		// Regenerate slug if title changed
		if match.Title != previousTitle {
			if match.Slug, err = s.uniqueSlug(ctx, match.Title, match.ID); err != nil {
				return err
			}
		}

		// Preloaded associations would shadow the new foreign keys
		match.Venue, match.TeamA, match.TeamB = nil, nil, nil
		if err := s.repo.Update(ctx, match); err != nil {
			return apperror.FromDB(err, "failed to update match")
		}

		// Update capacities
		if len(req.Capacities) > 0 {
			return s.growCapacities(ctx, match.ID, req.Capacities)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return s.loadDetail(ctx, id)
}

func (s *service) growCapacities(ctx context.Context, matchID uint, input []CapacityInput) error {
	capacities, _, err := s.resolveCapacities(ctx, input)
	if err != nil {
		return err
	}

	rows := make([]MatchSeatCapacity, 0, len(capacities))
	for categoryID, capacity := range capacities {
		existing, err := s.seatRepo.CountByCategory(ctx, matchID, categoryID)
		if err != nil {
			return apperror.FromDB(err, "failed to count seats")
		}
		if int64(capacity) < existing {
			return apperror.InvalidField("capacities",
				fmt.Sprintf("category %d already has %d seats and cannot shrink to %d", categoryID, existing, capacity))
		}
		rows = append(rows, MatchSeatCapacity{MatchID: matchID, CategoryID: categoryID, Capacity: capacity})
	}

	if err := s.repo.SaveCapacities(ctx, rows); err != nil {
		return apperror.FromDB(err, "failed to save seat capacities")
	}
	_, err = s.seats.ProvisionSeats(ctx, matchID, capacities)
	return err
}

// DeleteMatch removes the match with its capacities and seats. Matches with
// purchases still holding seats cannot be deleted.
func (s *service) DeleteMatch(ctx context.Context, id uint) error {
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.load(ctx, id); err != nil {
			return err
		}

		// Check for active purchases
		active, err := s.repo.CountActivePurchases(ctx, id)
		if err != nil {
			return apperror.FromDB(err, "failed to count purchases")
		}
		if active > 0 {
			return apperror.IntegrityConflict(fmt.Sprintf("match %d has %d active purchases, cancel them first", id, active), nil)
		}

		// Delete seats, capacities, then the match
		if err := s.seatRepo.DeleteByMatch(ctx, id); err != nil {
			return apperror.FromDB(err, "failed to delete seats")
		}
		if err := s.repo.DeleteCapacities(ctx, id); err != nil {
			return apperror.FromDB(err, "failed to delete seat capacities")
		}
		if err := s.repo.Delete(ctx, id); err != nil {
			return apperror.FromDB(err, "failed to delete match")
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.GetDefault().InfoContext(ctx, "Match deleted", slog.Uint64("match_id", uint64(id)))
	// Invalidate caches
	s.invalidate(ctx)
	s.seats.InvalidateSeatMap(ctx, id)
	return nil
}

func (s *service) LookupMatch(ctx context.Context, id uint) (*purchases.MatchInfo, error) {
	detail, err := s.GetMatch(ctx, id)
	if err != nil {
		return nil, err
	}
	return &purchases.MatchInfo{ID: detail.ID, Title: detail.Title, StartTime: detail.StartTime}, nil
}

func (s *service) invalidate(ctx context.Context) {
	if err := s.cache.DeletePattern(ctx, constants.PATTERN_INVALIDATE_MATCH_ALL); err != nil {
		logger.GetDefault().Warn("Failed to invalidate match cache", slog.Any("error", err))
	}
}
