package geo

import (
	"context"
	"errors"
	"strings"

	"github.com/viddefe/go-viddefe/domain"
	"github.com/viddefe/go-viddefe/internal/logging"
	"github.com/viddefe/go-viddefe/pkg/interfaces"
)

// Service reads and seeds the geographic catalog.
type Service interface {
	ListStates(ctx context.Context) ([]*domain.State, error)
	GetState(ctx context.Context, id int64) (*domain.State, error)
	ListCities(ctx context.Context, stateID int64) ([]*domain.City, error)
	GetCity(ctx context.Context, id int64) (*domain.City, error)
	RegisterState(ctx context.Context, input StateInput) (*domain.State, error)
	RegisterCity(ctx context.Context, input CityInput) (*domain.City, error)
}

// StateInput registers a catalog state.
type StateInput struct {
	ID   int64
	Name string
}

// CityInput registers a catalog city under an existing state.
type CityInput struct {
	ID      int64
	StateID int64
	Name    string
}

var (
	ErrRepositoryRequired = errors.New("geo: repository required")
	ErrStateIDInvalid     = errors.New("geo: state id must be positive")
	ErrCityIDInvalid      = errors.New("geo: city id must be positive")
	ErrNameRequired       = errors.New("geo: name is required")
	ErrStateNotFound      = errors.New("geo: state not found")
	ErrCityNotFound       = errors.New("geo: city not found")
)

// ServiceOption configures the service.
type ServiceOption func(*service)

// WithLogger sets the service logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		s.logger = logging.Ensure(logger)
	}
}

type service struct {
	repo   Repository
	logger interfaces.Logger
}

// NewService constructs a catalog service.
func NewService(repo Repository, opts ...ServiceOption) Service {
	if repo == nil {
		panic(ErrRepositoryRequired)
	}
	s := &service{repo: repo, logger: logging.NoOp()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) ListStates(ctx context.Context) ([]*domain.State, error) {
	return s.repo.ListStates(ctx)
}

func (s *service) GetState(ctx context.Context, id int64) (*domain.State, error) {
	if id <= 0 {
		return nil, ErrStateIDInvalid
	}
	state, err := s.repo.GetState(ctx, id)
	if err != nil {
		return nil, translateRepoError(err, ErrStateNotFound)
	}
	return state, nil
}

// ListCities returns the cities of a state. A non-positive state yields an
// empty list without touching the repository.
func (s *service) ListCities(ctx context.Context, stateID int64) ([]*domain.City, error) {
	if stateID <= 0 {
		return []*domain.City{}, nil
	}
	return s.repo.ListCities(ctx, stateID)
}

func (s *service) GetCity(ctx context.Context, id int64) (*domain.City, error) {
	if id <= 0 {
		return nil, ErrCityIDInvalid
	}
	city, err := s.repo.GetCity(ctx, id)
	if err != nil {
		return nil, translateRepoError(err, ErrCityNotFound)
	}
	return city, nil
}

func (s *service) RegisterState(ctx context.Context, input StateInput) (*domain.State, error) {
	if input.ID <= 0 {
		return nil, ErrStateIDInvalid
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	state, err := s.repo.SaveState(ctx, &domain.State{ID: input.ID, Name: name})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("geo.state.registered", "state_id", state.ID, "name", state.Name)
	return state, nil
}

func (s *service) RegisterCity(ctx context.Context, input CityInput) (*domain.City, error) {
	if input.ID <= 0 {
		return nil, ErrCityIDInvalid
	}
	if input.StateID <= 0 {
		return nil, ErrStateIDInvalid
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if _, err := s.repo.GetState(ctx, input.StateID); err != nil {
		return nil, translateRepoError(err, ErrStateNotFound)
	}
	city, err := s.repo.SaveCity(ctx, &domain.City{ID: input.ID, StateID: input.StateID, Name: name})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("geo.city.registered", "city_id", city.ID, "state_id", city.StateID, "name", city.Name)
	return city, nil
}

func translateRepoError(err error, fallback error) error {
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return fallback
	}
	return err
}
