// Package seatstest provides an in-memory seats.Repository for tests.
package seatstest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"servetix/internal/seats"
	"servetix/internal/shared/apperror"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Repository keeps seats and categories in maps. Pair it with
// dbtest.Transactor so failed transactions roll the maps back.
type Repository struct {
	mu         sync.Mutex
	seats      map[uint]seats.Seat
	categories map[uint]seats.SeatCategory
	nextSeat   uint
	nextCat    uint

	// LockErr, when set, is returned by both locking reads
	LockErr error
}

func New() *Repository {
	return &Repository{
		seats:      make(map[uint]seats.Seat),
		categories: make(map[uint]seats.SeatCategory),
	}
}

func (r *Repository) Snapshot() func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	savedSeats := make(map[uint]seats.Seat, len(r.seats))
	for k, v := range r.seats {
		savedSeats[k] = v
	}
	savedCats := make(map[uint]seats.SeatCategory, len(r.categories))
	for k, v := range r.categories {
		savedCats[k] = v
	}
	nextSeat, nextCat := r.nextSeat, r.nextCat

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.seats, r.categories = savedSeats, savedCats
		r.nextSeat, r.nextCat = nextSeat, nextCat
	}
}

// AddCategory inserts a category directly and returns it
func (r *Repository) AddCategory(name string, price int64) seats.SeatCategory {
	c := seats.SeatCategory{Name: name, Price: price, Color: seats.DefaultCategoryColor}
	if err := r.CreateCategory(context.Background(), &c); err != nil {
		panic(err)
	}
	return c
}

// AddSeats provisions count seats of a category for a match
func (r *Repository) AddSeats(matchID, categoryID uint, count int) []seats.Seat {
	batch := make([]seats.Seat, count)
	for i := range batch {
		batch[i] = seats.Seat{MatchID: matchID, Row: seats.RowPrefix(categoryID), Col: i + 1, CategoryID: categoryID}
	}
	if err := r.CreateSeats(context.Background(), batch); err != nil {
		panic(err)
	}
	return r.seatsOf(matchID, func(s seats.Seat) bool { return s.CategoryID == categoryID })
}

// Booked returns the number of booked seats of a match
func (r *Repository) Booked(matchID uint) int {
	return len(r.seatsOf(matchID, func(s seats.Seat) bool { return s.IsBooked }))
}

// Seat returns a copy of one seat
func (r *Repository) Seat(id uint) (seats.Seat, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.seats[id]
	return s, ok
}

func (r *Repository) seatsOf(matchID uint, keep func(seats.Seat) bool) []seats.Seat {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []seats.Seat
	for _, s := range r.seats {
		if s.MatchID == matchID && keep(s) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *Repository) LockAvailableSeats(ctx context.Context, matchID, categoryID uint, limit int) ([]seats.Seat, error) {
	if r.LockErr != nil {
		return nil, r.LockErr
	}
	available := r.seatsOf(matchID, func(s seats.Seat) bool { return s.CategoryID == categoryID && !s.IsBooked })
	if len(available) > limit {
		available = available[:limit]
	}
	return available, nil
}

func (r *Repository) LockAvailableSeatsByID(ctx context.Context, matchID uint, seatIDs []uint) ([]seats.Seat, error) {
	if r.LockErr != nil {
		return nil, r.LockErr
	}
	wanted := make(map[uint]bool, len(seatIDs))
	for _, id := range seatIDs {
		wanted[id] = true
	}
	return r.seatsOf(matchID, func(s seats.Seat) bool { return wanted[s.ID] && !s.IsBooked }), nil
}

func (r *Repository) MarkBooked(ctx context.Context, seatIDs []uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range seatIDs {
		if s, ok := r.seats[id]; !ok || s.IsBooked {
			return apperror.IntegrityConflict("seat state changed during reservation", fmt.Errorf("seat %d", id))
		}
	}
	for _, id := range seatIDs {
		s := r.seats[id]
		s.IsBooked = true
		s.UpdatedAt = time.Now()
		r.seats[id] = s
	}
	return nil
}

func (r *Repository) Release(ctx context.Context, seatIDs []uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range seatIDs {
		if s, ok := r.seats[id]; ok {
			s.IsBooked = false
			s.QRCodeData = nil
			r.seats[id] = s
		}
	}
	return nil
}

func (r *Repository) SetQRCodeData(ctx context.Context, seatID uint, data string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.seats[seatID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.QRCodeData = &data
	r.seats[seatID] = s
	return nil
}

func (r *Repository) CreateSeats(ctx context.Context, batch []seats.Seat) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.seats {
		for _, n := range batch {
			if s.MatchID == n.MatchID && s.Row == n.Row && s.Col == n.Col {
				return &pgconn.PgError{Code: "23505", Message: "duplicate seat"}
			}
		}
	}
	for i := range batch {
		r.nextSeat++
		batch[i].ID = r.nextSeat
		r.seats[batch[i].ID] = batch[i]
	}
	return nil
}

func (r *Repository) ListByMatch(ctx context.Context, matchID uint) ([]seats.Seat, error) {
	return r.seatsOf(matchID, func(seats.Seat) bool { return true }), nil
}

func (r *Repository) GetByIDs(ctx context.Context, seatIDs []uint) ([]seats.Seat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []seats.Seat
	for _, id := range seatIDs {
		if s, ok := r.seats[id]; ok {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *Repository) CountByCategory(ctx context.Context, matchID, categoryID uint) (int64, error) {
	return int64(len(r.seatsOf(matchID, func(s seats.Seat) bool { return s.CategoryID == categoryID }))), nil
}

func (r *Repository) DeleteByMatch(ctx context.Context, matchID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.seats {
		if s.MatchID == matchID {
			delete(r.seats, id)
		}
	}
	return nil
}

func (r *Repository) CreateCategory(ctx context.Context, category *seats.SeatCategory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.categories {
		if strings.EqualFold(c.Name, category.Name) {
			return &pgconn.PgError{Code: "23505", Message: "duplicate category"}
		}
	}
	r.nextCat++
	category.ID = r.nextCat
	r.categories[category.ID] = *category
	return nil
}

func (r *Repository) ListCategories(ctx context.Context) ([]seats.SeatCategory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]seats.SeatCategory, 0, len(r.categories))
	for _, c := range r.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Price != out[j].Price {
			return out[i].Price > out[j].Price
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *Repository) GetCategoryByID(ctx context.Context, id uint) (*seats.SeatCategory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.categories[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (r *Repository) GetCategoryByName(ctx context.Context, name string) (*seats.SeatCategory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.categories {
		if strings.EqualFold(c.Name, strings.TrimSpace(name)) {
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *Repository) GetCategoriesByIDs(ctx context.Context, ids []uint) ([]seats.SeatCategory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []seats.SeatCategory
	for _, id := range ids {
		if c, ok := r.categories[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

var _ seats.Repository = (*Repository)(nil)
