package remote

import (
	"context"
	"net/http"
	"strconv"

	"github.com/viddefe/go-viddefe/domain"
	"github.com/viddefe/go-viddefe/internal/geo"
)

// GeoRepository reads the state and city catalog through the backend API.
type GeoRepository struct {
	client *Client
}

var _ geo.Repository = (*GeoRepository)(nil)

func NewGeoRepository(client *Client) *GeoRepository {
	return &GeoRepository{client: client}
}

func (r *GeoRepository) ListStates(ctx context.Context) ([]*domain.State, error) {
	states, err := get[[]*domain.State](ctx, r.client, "states", nil, nil)
	if err != nil {
		return nil, err
	}
	if states == nil {
		states = []*domain.State{}
	}
	return states, nil
}

func (r *GeoRepository) GetState(ctx context.Context, id int64) (*domain.State, error) {
	state, err := get[domain.State](ctx, r.client, "state", idParam(id), nil)
	if err != nil {
		return nil, geoError(err, "state", id)
	}
	return &state, nil
}

// ListCities returns the cities of stateID. The backend answers 404 for
// unknown states; that is reported as an empty list.
func (r *GeoRepository) ListCities(ctx context.Context, stateID int64) ([]*domain.City, error) {
	cities, err := get[[]*domain.City](ctx, r.client, "state_cities", idParam(stateID), nil)
	if err != nil {
		if IsNotFound(err) {
			return []*domain.City{}, nil
		}
		return nil, err
	}
	out := make([]*domain.City, 0, len(cities))
	for _, city := range cities {
		if city == nil {
			continue
		}
		if city.StateID == 0 {
			city.StateID = stateID
		}
		out = append(out, city)
	}
	return out, nil
}

func (r *GeoRepository) GetCity(ctx context.Context, id int64) (*domain.City, error) {
	city, err := get[domain.City](ctx, r.client, "city", idParam(id), nil)
	if err != nil {
		return nil, geoError(err, "city", id)
	}
	return &city, nil
}

func (r *GeoRepository) SaveState(ctx context.Context, state *domain.State) (*domain.State, error) {
	saved, err := send[domain.State](ctx, r.client, http.MethodPut, "state", idParam(state.ID), state)
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *GeoRepository) SaveCity(ctx context.Context, city *domain.City) (*domain.City, error) {
	saved, err := send[domain.City](ctx, r.client, http.MethodPut, "city", idParam(city.ID), city)
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func geoError(err error, resource string, id int64) error {
	if IsNotFound(err) {
		return &geo.NotFoundError{Resource: resource, Key: strconv.FormatInt(id, 10)}
	}
	return err
}
