package venues

import (
	"context"
	"testing"

	"servetix/internal/shared/apperror"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type memRepo struct {
	venues map[uint]Venue
	teams  map[uint]Team
}

func newMemRepo() *memRepo {
	return &memRepo{venues: map[uint]Venue{}, teams: map[uint]Team{}}
}

func (r *memRepo) CreateVenue(_ context.Context, v *Venue) error {
	v.ID = uint(len(r.venues) + 1)
	r.venues[v.ID] = *v
	return nil
}

func (r *memRepo) GetVenueByID(_ context.Context, id uint) (*Venue, error) {
	v, ok := r.venues[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &v, nil
}

func (r *memRepo) ListVenues(context.Context) ([]Venue, error) {
	var out []Venue
	for i := uint(1); i <= uint(len(r.venues)); i++ {
		out = append(out, r.venues[i])
	}
	return out, nil
}

func (r *memRepo) UpdateVenue(_ context.Context, v *Venue) error {
	r.venues[v.ID] = *v
	return nil
}

func (r *memRepo) CreateTeam(_ context.Context, t *Team) error {
	for _, existing := range r.teams {
		if existing.Name == t.Name {
			return &pgconn.PgError{Code: "23505"}
		}
	}
	t.ID = uint(len(r.teams) + 1)
	r.teams[t.ID] = *t
	return nil
}

func (r *memRepo) GetTeamByID(_ context.Context, id uint) (*Team, error) {
	t, ok := r.teams[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &t, nil
}

func (r *memRepo) ListTeams(context.Context) ([]Team, error) {
	var out []Team
	for i := uint(1); i <= uint(len(r.teams)); i++ {
		out = append(out, r.teams[i])
	}
	return out, nil
}

func TestCreateAndListVenues(t *testing.T) {
	svc := NewService(newMemRepo(), nil)
	capacity := uint(77000)

	venue, err := svc.CreateVenue(context.Background(), CreateVenueRequest{
		Name:     " Stadion Utama Gelora Bung Karno ",
		Address:  "Jl. Pintu Satu Senayan, Jakarta",
		Capacity: &capacity,
	})
	require.NoError(t, err)
	assert.Equal(t, "Stadion Utama Gelora Bung Karno", venue.Name)

	list, err := svc.ListVenues(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, list.Total)

	_, err = svc.CreateVenue(context.Background(), CreateVenueRequest{Name: "  "})
	assert.Equal(t, apperror.KindInvalidInput, apperror.KindOf(err))
}

func TestUpdateVenue_OnlyTouchesGivenFields(t *testing.T) {
	svc := NewService(newMemRepo(), nil)
	venue, err := svc.CreateVenue(context.Background(), CreateVenueRequest{Name: "Jakarta International Stadium", Address: "Tanjung Priok"})
	require.NoError(t, err)

	address := "Jl. Sunter Permai Raya, Jakarta Utara"
	updated, err := svc.UpdateVenue(context.Background(), venue.ID, UpdateVenueRequest{Address: &address})
	require.NoError(t, err)
	assert.Equal(t, "Jakarta International Stadium", updated.Name)
	assert.Equal(t, address, updated.Address)
	assert.Nil(t, updated.Capacity)

	_, err = svc.UpdateVenue(context.Background(), 99, UpdateVenueRequest{Address: &address})
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestCreateTeam_RejectsDuplicate(t *testing.T) {
	svc := NewService(newMemRepo(), nil)

	_, err := svc.CreateTeam(context.Background(), CreateTeamRequest{Name: "Persija Jakarta"})
	require.NoError(t, err)

	_, err = svc.CreateTeam(context.Background(), CreateTeamRequest{Name: "Persija Jakarta"})
	assert.Equal(t, apperror.KindIntegrityConflict, apperror.KindOf(err))

	list, err := svc.ListTeams(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, list.Total)

	_, err = svc.GetTeam(context.Background(), 5)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}
