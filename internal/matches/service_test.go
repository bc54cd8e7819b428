package matches

import (
	"context"
	"sort"
	"testing"
	"time"

	"servetix/internal/seats"
	"servetix/internal/seats/seatstest"
	"servetix/internal/shared/apperror"
	"servetix/internal/shared/database/dbtest"
	"servetix/internal/venues"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type directory struct {
	venues map[uint]venues.Venue
	teams  map[uint]venues.Team
}

func (d *directory) GetVenueByID(_ context.Context, id uint) (*venues.Venue, error) {
	v, ok := d.venues[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &v, nil
}

func (d *directory) GetTeamByID(_ context.Context, id uint) (*venues.Team, error) {
	t, ok := d.teams[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &t, nil
}

type capacityKey struct{ match, category uint }

type memRepo struct {
	dir        *directory
	matches    map[uint]Match
	capacities map[capacityKey]int
	active     map[uint]int64
	nextID     uint
}

func newMemRepo(dir *directory) *memRepo {
	return &memRepo{
		dir:        dir,
		matches:    map[uint]Match{},
		capacities: map[capacityKey]int{},
		active:     map[uint]int64{},
	}
}

func (r *memRepo) Snapshot() func() {
	matches := make(map[uint]Match, len(r.matches))
	for k, v := range r.matches {
		matches[k] = v
	}
	capacities := make(map[capacityKey]int, len(r.capacities))
	for k, v := range r.capacities {
		capacities[k] = v
	}
	nextID := r.nextID
	return func() {
		r.matches, r.capacities, r.nextID = matches, capacities, nextID
	}
}

func (r *memRepo) Create(_ context.Context, m *Match) error {
	r.nextID++
	m.ID = r.nextID
	r.matches[m.ID] = *m
	return nil
}

func (r *memRepo) Update(_ context.Context, m *Match) error {
	r.matches[m.ID] = *m
	return nil
}

func (r *memRepo) Delete(_ context.Context, id uint) error {
	delete(r.matches, id)
	return nil
}

func (r *memRepo) GetByID(ctx context.Context, id uint) (*Match, error) {
	m, ok := r.matches[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	r.preload(ctx, &m)
	return &m, nil
}

func (r *memRepo) preload(ctx context.Context, m *Match) {
	m.Venue, _ = r.dir.GetVenueByID(ctx, m.VenueID)
	if m.TeamAID != nil {
		m.TeamA, _ = r.dir.GetTeamByID(ctx, *m.TeamAID)
	}
	if m.TeamBID != nil {
		m.TeamB, _ = r.dir.GetTeamByID(ctx, *m.TeamBID)
	}
}

func (r *memRepo) ListUpcoming(ctx context.Context, from time.Time, limit int) ([]Match, error) {
	var out []Match
	for _, m := range r.matches {
		if !m.StartTime.Before(from) {
			r.preload(ctx, &m)
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memRepo) SlugExists(_ context.Context, slug string, excludeID uint) (bool, error) {
	for _, m := range r.matches {
		if m.Slug == slug && m.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memRepo) SaveCapacities(_ context.Context, rows []MatchSeatCapacity) error {
	for _, c := range rows {
		r.capacities[capacityKey{c.MatchID, c.CategoryID}] = c.Capacity
	}
	return nil
}

func (r *memRepo) ListCapacities(_ context.Context, matchID uint) ([]MatchSeatCapacity, error) {
	var out []MatchSeatCapacity
	for k, v := range r.capacities {
		if k.match == matchID {
			out = append(out, MatchSeatCapacity{MatchID: k.match, CategoryID: k.category, Capacity: v})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CategoryID < out[j].CategoryID })
	return out, nil
}

func (r *memRepo) DeleteCapacities(_ context.Context, matchID uint) error {
	for k := range r.capacities {
		if k.match == matchID {
			delete(r.capacities, k)
		}
	}
	return nil
}

func (r *memRepo) CountActivePurchases(_ context.Context, matchID uint) (int64, error) {
	return r.active[matchID], nil
}

type fixture struct {
	svc      *service
	repo     *memRepo
	seatRepo *seatstest.Repository
	tx       *dbtest.Transactor
	vip      seats.SeatCategory
	regular  seats.SeatCategory
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logo := "https://cdn.example.com/persija.png"
	dir := &directory{
		venues: map[uint]venues.Venue{
			1: {ID: 1, Name: "Gelora Bung Karno", Address: "Jl. Pintu Satu Senayan"},
			2: {ID: 2, Name: "Stadion Kanjuruhan"},
		},
		teams: map[uint]venues.Team{
			1: {ID: 1, Name: "Persija", LogoURL: &logo},
			2: {ID: 2, Name: "Persib"},
		},
	}

	repo := newMemRepo(dir)
	seatRepo := seatstest.New()
	f := &fixture{
		repo:     repo,
		seatRepo: seatRepo,
		vip:      seatRepo.AddCategory("VIP", 100000),
		regular:  seatRepo.AddCategory("Regular", 50000),
		now:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.tx = dbtest.NewTransactor(repo, seatRepo)

	seatService := seats.NewService(seatRepo, f.tx, nil)
	svc := NewService(repo, dir, seatRepo, seatService, f.tx, nil, 3).(*service)
	svc.now = func() time.Time { return f.now }
	f.svc = svc
	return f
}

func uintPtr(v uint) *uint { return &v }

func (f *fixture) createRequest(title string) CreateMatchRequest {
	return CreateMatchRequest{
		Title:     title,
		VenueID:   1,
		TeamAID:   uintPtr(1),
		TeamBID:   uintPtr(2),
		StartTime: f.now.Add(72 * time.Hour),
	}
}

func TestCreateMatch_DefaultCapacityForEveryCategory(t *testing.T) {
	f := newFixture(t)

	detail, err := f.svc.CreateMatch(context.Background(), f.createRequest("Persija vs Persib"))
	require.NoError(t, err)

	assert.Equal(t, "persija-vs-persib", detail.Slug)
	assert.Equal(t, "Persija", detail.TeamA)
	assert.Equal(t, "Persib", detail.TeamB)
	require.NotNil(t, detail.TeamALogo)
	assert.Nil(t, detail.TeamBLogo)
	assert.Equal(t, "Gelora Bung Karno", detail.Venue)
	assert.Equal(t, "Jl. Pintu Satu Senayan", detail.VenueAddress)
	assert.Equal(t, int64(50000), detail.PriceFrom)

	all, _ := f.seatRepo.ListByMatch(context.Background(), detail.ID)
	assert.Len(t, all, 6)

	capacities, _ := f.repo.ListCapacities(context.Background(), detail.ID)
	require.Len(t, capacities, 2)
	for _, c := range capacities {
		assert.Equal(t, 3, c.Capacity)
	}
}

func TestCreateMatch_FallbacksForMissingDetails(t *testing.T) {
	f := newFixture(t)
	req := f.createRequest("Arema Open Training")
	req.VenueID = 2
	req.TeamAID, req.TeamBID = nil, nil

	detail, err := f.svc.CreateMatch(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "TBA", detail.TeamA)
	assert.Equal(t, "TBA", detail.TeamB)
	assert.Equal(t, "Alamat tidak tersedia", detail.VenueAddress)
}

func TestCreateMatch_SlugStaysUnique(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.CreateMatch(ctx, f.createRequest("Persija vs Persib"))
	require.NoError(t, err)
	second, err := f.svc.CreateMatch(ctx, f.createRequest("Persija vs Persib"))
	require.NoError(t, err)
	third, err := f.svc.CreateMatch(ctx, f.createRequest("Persija vs Persib"))
	require.NoError(t, err)

	assert.Equal(t, "persija-vs-persib", first.Slug)
	assert.Equal(t, "persija-vs-persib-1", second.Slug)
	assert.Equal(t, "persija-vs-persib-2", third.Slug)
}

func TestCreateMatch_ExplicitCapacities(t *testing.T) {
	f := newFixture(t)
	req := f.createRequest("Derby")
	req.Capacities = []CapacityInput{
		{CategoryID: f.vip.ID, Capacity: 2},
		{CategoryID: f.regular.ID, Capacity: 0},
	}

	detail, err := f.svc.CreateMatch(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, int64(100000), detail.PriceFrom, "empty categories do not count towards the lowest price")
	vip, _ := f.seatRepo.CountByCategory(context.Background(), detail.ID, f.vip.ID)
	regular, _ := f.seatRepo.CountByCategory(context.Background(), detail.ID, f.regular.ID)
	assert.Equal(t, int64(2), vip)
	assert.Equal(t, int64(0), regular)
}

func TestCreateMatch_ExplicitPriceFromWins(t *testing.T) {
	f := newFixture(t)
	req := f.createRequest("Derby")
	price := int64(75000)
	req.PriceFrom = &price

	detail, err := f.svc.CreateMatch(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(75000), detail.PriceFrom)
}

func TestCreateMatch_RejectedRequestsLeaveNothingBehind(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(f *fixture, req *CreateMatchRequest)
		kind   apperror.Kind
	}{
		{
			name:   "unknown venue",
			mutate: func(_ *fixture, req *CreateMatchRequest) { req.VenueID = 99 },
			kind:   apperror.KindNotFound,
		},
		{
			name:   "unknown team",
			mutate: func(_ *fixture, req *CreateMatchRequest) { req.TeamBID = uintPtr(42) },
			kind:   apperror.KindNotFound,
		},
		{
			name: "unknown category",
			mutate: func(f *fixture, req *CreateMatchRequest) {
				req.Capacities = []CapacityInput{{CategoryID: f.vip.ID, Capacity: 2}, {CategoryID: 99, Capacity: 2}}
			},
			kind: apperror.KindNotFound,
		},
		{
			name: "category listed twice",
			mutate: func(f *fixture, req *CreateMatchRequest) {
				req.Capacities = []CapacityInput{{CategoryID: f.vip.ID, Capacity: 2}, {CategoryID: f.vip.ID, Capacity: 4}}
			},
			kind: apperror.KindInvalidInput,
		},
		{
			name:   "missing title",
			mutate: func(_ *fixture, req *CreateMatchRequest) { req.Title = "" },
			kind:   apperror.KindInvalidInput,
		},
		{
			name:   "missing start time",
			mutate: func(_ *fixture, req *CreateMatchRequest) { req.StartTime = time.Time{} },
			kind:   apperror.KindInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			req := f.createRequest("Derby")
			tt.mutate(f, &req)

			_, err := f.svc.CreateMatch(context.Background(), req)
			require.Error(t, err)
			assert.Equal(t, tt.kind, apperror.KindOf(err))

			assert.Empty(t, f.repo.matches)
			assert.Empty(t, f.repo.capacities)
			all, _ := f.seatRepo.ListByMatch(context.Background(), 1)
			assert.Empty(t, all)
		})
	}
}

func TestUpdateMatch_GrowsCapacityAndRenames(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateMatch(ctx, f.createRequest("Persija vs Persib"))
	require.NoError(t, err)

	title := "Persija vs Persib Leg 2"
	updated, err := f.svc.UpdateMatch(ctx, created.ID, UpdateMatchRequest{
		Title:      &title,
		Capacities: []CapacityInput{{CategoryID: f.vip.ID, Capacity: 5}},
	})
	require.NoError(t, err)

	assert.Equal(t, title, updated.Title)
	assert.Equal(t, "persija-vs-persib-leg-2", updated.Slug)
	assert.Equal(t, "Persib", updated.TeamB, "unset fields are kept")

	vip, _ := f.seatRepo.CountByCategory(ctx, created.ID, f.vip.ID)
	assert.Equal(t, int64(5), vip)
	regular, _ := f.seatRepo.CountByCategory(ctx, created.ID, f.regular.ID)
	assert.Equal(t, int64(3), regular)
}

func TestUpdateMatch_CannotShrinkBelowProvisionedSeats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateMatch(ctx, f.createRequest("Persija vs Persib"))
	require.NoError(t, err)

	_, err = f.svc.UpdateMatch(ctx, created.ID, UpdateMatchRequest{
		Capacities: []CapacityInput{{CategoryID: f.vip.ID, Capacity: 1}},
	})
	require.Error(t, err)
	assert.Equal(t, apperror.KindInvalidInput, apperror.KindOf(err))

	capacities, _ := f.repo.ListCapacities(ctx, created.ID)
	for _, c := range capacities {
		assert.Equal(t, 3, c.Capacity)
	}
}

func TestUpdateMatch_NotFound(t *testing.T) {
	f := newFixture(t)
	title := "Ghost"

	_, err := f.svc.UpdateMatch(context.Background(), 404, UpdateMatchRequest{Title: &title})
	require.Error(t, err)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestDeleteMatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateMatch(ctx, f.createRequest("Persija vs Persib"))
	require.NoError(t, err)

	f.repo.active[created.ID] = 2
	err = f.svc.DeleteMatch(ctx, created.ID)
	require.Error(t, err)
	assert.Equal(t, apperror.KindIntegrityConflict, apperror.KindOf(err))
	all, _ := f.seatRepo.ListByMatch(ctx, created.ID)
	assert.Len(t, all, 6)

	f.repo.active[created.ID] = 0
	require.NoError(t, f.svc.DeleteMatch(ctx, created.ID))

	all, _ = f.seatRepo.ListByMatch(ctx, created.ID)
	assert.Empty(t, all)
	assert.Empty(t, f.repo.capacities)

	_, err = f.svc.GetMatch(ctx, created.ID)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestListUpcoming(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	later := f.createRequest("Later")
	later.StartTime = f.now.Add(96 * time.Hour)
	sooner := f.createRequest("Sooner")
	sooner.StartTime = f.now.Add(24 * time.Hour)
	past := f.createRequest("Past")
	past.StartTime = f.now.Add(-24 * time.Hour)

	for _, req := range []CreateMatchRequest{later, sooner, past} {
		_, err := f.svc.CreateMatch(ctx, req)
		require.NoError(t, err)
	}

	list, err := f.svc.ListUpcoming(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, 2, list.Total)
	assert.Equal(t, "Sooner", list.Matches[0].Title)
	assert.Equal(t, "Later", list.Matches[1].Title)

	limited, err := f.svc.ListUpcoming(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, limited.Total)
}

func TestLookupMatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateMatch(ctx, f.createRequest("Persija vs Persib"))
	require.NoError(t, err)

	info, err := f.svc.LookupMatch(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, info.ID)
	assert.Equal(t, "Persija vs Persib", info.Title)
	assert.True(t, info.StartTime.Equal(created.StartTime))

	_, err = f.svc.LookupMatch(ctx, 999)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestLowestPrice(t *testing.T) {
	categories := []seats.SeatCategory{{ID: 1, Price: 100000}, {ID: 2, Price: 50000}}

	assert.Equal(t, int64(50000), lowestPrice(map[uint]int{1: 1, 2: 1}, categories))
	assert.Equal(t, int64(100000), lowestPrice(map[uint]int{1: 1, 2: 0}, categories))
	assert.Equal(t, int64(0), lowestPrice(map[uint]int{}, categories))
}
