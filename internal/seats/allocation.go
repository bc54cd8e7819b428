package seats

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"servetix/internal/shared/apperror"

	"gorm.io/gorm"
)

type AllocationKind string

const (
	KindByIDs                 AllocationKind = "by_ids"
	KindByQuantity            AllocationKind = "by_quantity"
	KindByPassengerCategories AllocationKind = "by_passenger_categories"
)

// AllocationRequest is one of ByIDs, ByQuantity or ByPassengerCategories
type AllocationRequest interface {
	Kind() AllocationKind
	// Count is the number of seats the request needs
	Count() int
	isAllocationRequest()
}

// ByIDs claims the exact seats picked on the seat map
type ByIDs struct {
	SeatIDs []uint
}

// ByQuantity claims Quantity seats of one category, identified by id or name
type ByQuantity struct {
	CategoryID uint
	Category   string
	Quantity   int
}

// PassengerCategory is one itemised passenger of a mixed-category request
type PassengerCategory struct {
	Name     string
	Category string
}

// ByPassengerCategories claims one seat per passenger in that passenger's category
type ByPassengerCategories struct {
	Passengers []PassengerCategory
}

func (ByIDs) Kind() AllocationKind                 { return KindByIDs }
func (ByQuantity) Kind() AllocationKind            { return KindByQuantity }
func (ByPassengerCategories) Kind() AllocationKind { return KindByPassengerCategories }

func (r ByIDs) Count() int                 { return len(r.SeatIDs) }
func (r ByQuantity) Count() int            { return r.Quantity }
func (r ByPassengerCategories) Count() int { return len(r.Passengers) }

func (ByIDs) isAllocationRequest()                 {}
func (ByQuantity) isAllocationRequest()            {}
func (ByPassengerCategories) isAllocationRequest() {}

// Validate checks the shape of a request without touching storage
func Validate(req AllocationRequest) error {
	switch r := req.(type) {
	case ByIDs:
		if len(r.SeatIDs) == 0 {
			return apperror.InvalidField("seat_ids", "at least one seat must be selected")
		}
		seen := make(map[uint]struct{}, len(r.SeatIDs))
		for _, id := range r.SeatIDs {
			if id == 0 {
				return apperror.InvalidField("seat_ids", "seat ids must be positive")
			}
			if _, dup := seen[id]; dup {
				return apperror.InvalidField("seat_ids", fmt.Sprintf("seat %d selected more than once", id))
			}
			seen[id] = struct{}{}
		}
	case ByQuantity:
		if r.Quantity <= 0 {
			return apperror.InvalidField("quantity", "quantity must be greater than zero")
		}
		if r.CategoryID == 0 && strings.TrimSpace(r.Category) == "" {
			return apperror.InvalidField("category", "a seat category is required")
		}
	case ByPassengerCategories:
		if len(r.Passengers) == 0 {
			return apperror.InvalidField("passengers", "at least one passenger is required")
		}
		for i, p := range r.Passengers {
			if strings.TrimSpace(p.Category) == "" {
				return apperror.InvalidField(fmt.Sprintf("passengers[%d].category", i), "passenger category is required")
			}
		}
	case nil:
		return apperror.InvalidInput("allocation request is required")
	default:
		return apperror.InvalidInput(fmt.Sprintf("unsupported allocation request %T", req))
	}
	return nil
}

// Allocator resolves an AllocationRequest into locked seats
type Allocator struct {
	repo Repository
}

func NewAllocator(repo Repository) *Allocator {
	return &Allocator{repo: repo}
}

// Allocate locks the seats req asks for. It must run inside a transaction
// and either returns exactly req.Count() seats or an error; callers roll
// back on error so nothing stays locked. Seats come back in request order:
// the order of SeatIDs, or passenger order for mixed categories.
func (a *Allocator) Allocate(ctx context.Context, matchID uint, req AllocationRequest) ([]Seat, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}

	switch r := req.(type) {
	case ByIDs:
		return a.allocateByIDs(ctx, matchID, r)
	case ByQuantity:
		category, err := a.resolveCategory(ctx, r.CategoryID, r.Category)
		if err != nil {
			return nil, err
		}
		return a.lockCategory(ctx, matchID, category, r.Quantity)
	case ByPassengerCategories:
		return a.allocateByPassengers(ctx, matchID, r)
	}
	return nil, apperror.InvalidInput("unsupported allocation request")
}

func (a *Allocator) allocateByIDs(ctx context.Context, matchID uint, r ByIDs) ([]Seat, error) {
	locked, err := a.repo.LockAvailableSeatsByID(ctx, matchID, r.SeatIDs)
	if err != nil {
		return nil, apperror.FromDB(err, "failed to lock selected seats")
	}
	if len(locked) < len(r.SeatIDs) {
		return nil, apperror.SeatsUnavailable("some of the selected seats are already booked")
	}

	byID := make(map[uint]Seat, len(locked))
	for _, s := range locked {
		byID[s.ID] = s
	}
	ordered := make([]Seat, 0, len(r.SeatIDs))
	for _, id := range r.SeatIDs {
		ordered = append(ordered, byID[id])
	}
	return ordered, nil
}

func (a *Allocator) allocateByPassengers(ctx context.Context, matchID uint, r ByPassengerCategories) ([]Seat, error) {
	// Group by category, keeping passenger order per category
	needs := make(map[string][]int)
	for i, p := range r.Passengers {
		key := strings.ToLower(strings.TrimSpace(p.Category))
		needs[key] = append(needs[key], i)
	}

	type categoryNeed struct {
		category   *SeatCategory
		passengers []int
	}
	plan := make([]categoryNeed, 0, len(needs))
	for name, passengers := range needs {
		category, err := a.resolveCategory(ctx, 0, name)
		if err != nil {
			return nil, err
		}
		plan = append(plan, categoryNeed{category: category, passengers: passengers})
	}

	// A fixed lock order across categories keeps concurrent mixed requests
	// from deadlocking each other
	sort.Slice(plan, func(i, j int) bool { return plan[i].category.ID < plan[j].category.ID })

	assigned := make([]Seat, len(r.Passengers))
	for _, need := range plan {
		locked, err := a.lockCategory(ctx, matchID, need.category, len(need.passengers))
		if err != nil {
			return nil, err
		}
		for k, idx := range need.passengers {
			assigned[idx] = locked[k]
		}
	}
	return assigned, nil
}

func (a *Allocator) lockCategory(ctx context.Context, matchID uint, category *SeatCategory, quantity int) ([]Seat, error) {
	locked, err := a.repo.LockAvailableSeats(ctx, matchID, category.ID, quantity)
	if err != nil {
		return nil, apperror.FromDB(err, "failed to lock seats")
	}
	if len(locked) < quantity {
		return nil, apperror.SeatsUnavailable(fmt.Sprintf(
			"not enough seats in category %s: requested %d, available %d", category.Name, quantity, len(locked)))
	}
	return locked, nil
}

func (a *Allocator) resolveCategory(ctx context.Context, id uint, name string) (*SeatCategory, error) {
	var (
		category *SeatCategory
		err      error
	)
	if id != 0 {
		category, err = a.repo.GetCategoryByID(ctx, id)
	} else {
		category, err = a.repo.GetCategoryByName(ctx, name)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if id != 0 {
				return nil, apperror.NotFound(fmt.Sprintf("seat category %d not found", id))
			}
			return nil, apperror.NotFound(fmt.Sprintf("seat category %q not found", name))
		}
		return nil, apperror.FromDB(err, "failed to load seat category")
	}
	return category, nil
}
