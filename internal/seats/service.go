package seats

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"servetix/internal/shared/apperror"
	"servetix/internal/shared/constants"
	"servetix/internal/shared/database"
	"servetix/pkg/cache"
	"servetix/pkg/logger"
)

type Service interface {
	// ProvisionSeats tops every listed category of a match up to its
	// capacity and returns the number of seats created
	ProvisionSeats(ctx context.Context, matchID uint, capacityPerCategory map[uint]int) (int, error)
	GetSeatMap(ctx context.Context, matchID uint) (*SeatMapResponse, error)
	InvalidateSeatMap(ctx context.Context, matchID uint)

	CreateCategory(ctx context.Context, req CreateCategoryRequest) (*SeatCategory, error)
	ListCategories(ctx context.Context) ([]SeatCategory, error)
}

type service struct {
	repo       Repository
	transactor database.Transactor
	cache      cache.Service
}

func NewService(repo Repository, transactor database.Transactor, cacheService cache.Service) Service {
	if cacheService == nil {
		cacheService = cache.NewNoopService()
	}
	return &service{repo: repo, transactor: transactor, cache: cacheService}
}

func (s *service) ProvisionSeats(ctx context.Context, matchID uint, capacityPerCategory map[uint]int) (int, error) {
	if matchID == 0 {
		return 0, apperror.InvalidField("match_id", "match id is required")
	}

	categoryIDs := make([]uint, 0, len(capacityPerCategory))
	for id, capacity := range capacityPerCategory {
		if capacity < 0 {
			return 0, apperror.InvalidField("capacities", fmt.Sprintf("capacity for category %d cannot be negative", id))
		}
		categoryIDs = append(categoryIDs, id)
	}
	sort.Slice(categoryIDs, func(i, j int) bool { return categoryIDs[i] < categoryIDs[j] })

	created := 0
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		// Make sure every category exists
		known, err := s.repo.GetCategoriesByIDs(ctx, categoryIDs)
		if err != nil {
			return apperror.FromDB(err, "failed to load seat categories")
		}
		if len(known) != len(categoryIDs) {
			return apperror.NotFound("one or more seat categories do not exist")
		}

		for _, categoryID := range categoryIDs {
			existing, err := s.repo.CountByCategory(ctx, matchID, categoryID)
			if err != nil {
				return apperror.FromDB(err, "failed to count seats")
			}

			// Only top up, never remove seats
			capacity := capacityPerCategory[categoryID]
			if int(existing) >= capacity {
				continue
			}

			batch := make([]Seat, 0, capacity-int(existing))
			for col := int(existing) + 1; col <= capacity; col++ {
				batch = append(batch, Seat{
					MatchID:    matchID,
					Row:        RowPrefix(categoryID),
					Col:        col,
					CategoryID: categoryID,
				})
			}
			if err := s.repo.CreateSeats(ctx, batch); err != nil {
				return apperror.FromDB(err, "failed to create seats")
			}
			created += len(batch)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	// Log and invalidate cache
	logger.GetDefault().LogSeatsProvisioned(ctx, matchID, created)
	s.InvalidateSeatMap(ctx, matchID)
	return created, nil
}

// GetSeatMap is display data only: the reservation path never reads it
func (s *service) GetSeatMap(ctx context.Context, matchID uint) (*SeatMapResponse, error) {
	var resp SeatMapResponse
	err := s.cache.GetOrSet(ctx, constants.BuildSeatMapKey(matchID), constants.TTL_SEAT_MAP, func() (interface{}, error) {
		return s.buildSeatMap(ctx, matchID)
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *service) buildSeatMap(ctx context.Context, matchID uint) (*SeatMapResponse, error) {
	seats, err := s.repo.ListByMatch(ctx, matchID)
	if err != nil {
		return nil, apperror.FromDB(err, "failed to load seats")
	}

	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, apperror.FromDB(err, "failed to load seat categories")
	}
	byID := make(map[uint]SeatCategory, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}

	// Build seat entries and per-category availability
	resp := &SeatMapResponse{MatchID: matchID, Seats: make([]SeatMapEntry, 0, len(seats))}
	summary := make(map[uint]*CategoryAvailability)
	for _, seat := range seats {
		category := byID[seat.CategoryID]
		resp.Seats = append(resp.Seats, SeatMapEntry{
			ID:       seat.ID,
			Label:    seat.Label(),
			Category: category.Name,
			Color:    category.Color,
			Price:    category.Price,
			IsBooked: seat.IsBooked,
		})

		avail, ok := summary[seat.CategoryID]
		if !ok {
			avail = &CategoryAvailability{CategoryID: category.ID, Category: category.Name, Price: category.Price}
			summary[seat.CategoryID] = avail
		}
		avail.Total++
		if !seat.IsBooked {
			avail.Available++
		}
	}

	for _, c := range categories {
		if avail, ok := summary[c.ID]; ok {
			resp.Categories = append(resp.Categories, *avail)
		}
	}
	return resp, nil
}

func (s *service) InvalidateSeatMap(ctx context.Context, matchID uint) {
	if err := s.cache.DeletePattern(ctx, constants.BuildSeatInvalidationPattern(matchID)); err != nil {
		logger.GetDefault().Warn("Failed to invalidate seat map cache",
			slog.Uint64("match_id", uint64(matchID)), slog.Any("error", err))
	}
}

func (s *service) CreateCategory(ctx context.Context, req CreateCategoryRequest) (*SeatCategory, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.InvalidField("name", "category name is required")
	}
	if req.Price < 0 {
		return nil, apperror.InvalidField("price", "price cannot be negative")
	}

	category := &SeatCategory{Name: name, Price: req.Price, Color: req.Color}
	if category.Color == "" {
		category.Color = DefaultCategoryColor
	}

	if err := s.repo.CreateCategory(ctx, category); err != nil {
		if apperror.IsUniqueViolation(err) {
			return nil, apperror.IntegrityConflict(fmt.Sprintf("category %q already exists", name), err)
		}
		return nil, apperror.FromDB(err, "failed to create category")
	}

	if err := s.cache.Delete(ctx, constants.CACHE_KEY_CATEGORIES_ALL); err != nil {
		logger.GetDefault().Warn("Failed to invalidate category cache", slog.Any("error", err))
	}
	return category, nil
}

func (s *service) ListCategories(ctx context.Context) ([]SeatCategory, error) {
	var categories []SeatCategory
	err := s.cache.GetOrSet(ctx, constants.CACHE_KEY_CATEGORIES_ALL, constants.TTL_CATEGORIES, func() (interface{}, error) {
		list, err := s.repo.ListCategories(ctx)
		if err != nil {
			return nil, apperror.FromDB(err, "failed to list categories")
		}
		return list, nil
	}, &categories)
	if err != nil {
		return nil, err
	}
	return categories, nil
}
