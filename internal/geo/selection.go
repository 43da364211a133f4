package geo

import (
	"context"
	"errors"
	"sync"

	"github.com/viddefe/go-viddefe/domain"
	"github.com/viddefe/go-viddefe/internal/dependent"
	"github.com/viddefe/go-viddefe/pkg/interfaces"
)

var ErrCityNotInState = errors.New("geo: city does not belong to the selected state")

// SelectionState is the visible state of a Selection.
type SelectionState struct {
	StateID       int64
	CityID        int64
	Cities        []domain.City
	CitiesLoading bool
	CitiesErr     error
}

// SelectionOption configures a Selection.
type SelectionOption func(*selectionConfig)

type selectionConfig struct {
	onChange func(SelectionState)
	logger   interfaces.Logger
	observer dependent.Observer
	ctx      context.Context
}

// WithSelectionChange registers a callback fired after every visible change.
func WithSelectionChange(fn func(SelectionState)) SelectionOption {
	return func(c *selectionConfig) {
		c.onChange = fn
	}
}

// WithSelectionLogger sets the logger of the city collection.
func WithSelectionLogger(logger interfaces.Logger) SelectionOption {
	return func(c *selectionConfig) {
		c.logger = logger
	}
}

// WithSelectionObserver forwards city request accounting to observer.
func WithSelectionObserver(observer dependent.Observer) SelectionOption {
	return func(c *selectionConfig) {
		c.observer = observer
	}
}

// WithSelectionContext sets the parent context of city requests.
func WithSelectionContext(ctx context.Context) SelectionOption {
	return func(c *selectionConfig) {
		c.ctx = ctx
	}
}

// Selection is the state -> city cascade of a form. The city list is a
// dependent collection keyed by the selected state, and a city that does not
// belong to the selected state is never kept.
type Selection struct {
	cities   *dependent.Collection[int64, domain.City]
	onChange func(SelectionState)

	mu      sync.Mutex
	stateID int64
	cityID  int64
}

// NewSelection builds a selection that lists cities through service.
func NewSelection(service Service, opts ...SelectionOption) *Selection {
	if service == nil {
		panic(ErrRepositoryRequired)
	}
	cfg := selectionConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Selection{onChange: cfg.onChange}

	loader := func(ctx context.Context, stateID int64) ([]domain.City, error) {
		cities, err := service.ListCities(ctx, stateID)
		if err != nil {
			return nil, err
		}
		out := make([]domain.City, 0, len(cities))
		for _, c := range cities {
			if c != nil {
				out = append(out, *c)
			}
		}
		return out, nil
	}

	collectionOpts := []dependent.Option[int64, domain.City]{
		dependent.WithValidator[int64, domain.City](dependent.PositiveID),
		dependent.WithOnChange[int64, domain.City](s.citiesChanged),
	}
	if cfg.logger != nil {
		collectionOpts = append(collectionOpts, dependent.WithLogger[int64, domain.City](cfg.logger))
	}
	if cfg.observer != nil {
		collectionOpts = append(collectionOpts, dependent.WithObserver[int64, domain.City](cfg.observer))
	}
	if cfg.ctx != nil {
		collectionOpts = append(collectionOpts, dependent.WithContext[int64, domain.City](cfg.ctx))
	}
	s.cities = dependent.New("cities", loader, collectionOpts...)
	return s
}

// Restore sets both identifiers at once, as read from a stored entity. The
// city is checked against the state's list once it arrives.
func (s *Selection) Restore(stateID, cityID int64) {
	s.mu.Lock()
	s.stateID = stateID
	s.cityID = cityID
	if stateID <= 0 {
		s.cityID = 0
	}
	s.mu.Unlock()

	s.cities.SetKey(stateID)

	snap := s.cities.Snapshot()
	s.mu.Lock()
	s.reconcileLocked(snap)
	s.mu.Unlock()
	s.emit()
}

// SetState selects a state. Changing the state drops the city, since a city
// belongs to exactly one state.
func (s *Selection) SetState(stateID int64) {
	s.mu.Lock()
	if s.stateID == stateID {
		s.mu.Unlock()
		return
	}
	s.stateID = stateID
	s.cityID = 0
	s.mu.Unlock()

	s.cities.SetKey(stateID)
	s.emit()
}

// SetCity selects a city. Zero clears it. When the city list of the state is
// loaded the city must be part of it.
func (s *Selection) SetCity(cityID int64) error {
	if cityID < 0 {
		return ErrCityIDInvalid
	}
	snap := s.cities.Snapshot()

	s.mu.Lock()
	if cityID > 0 {
		if s.stateID <= 0 {
			s.mu.Unlock()
			return ErrStateIDInvalid
		}
		if snap.Enabled && !snap.Loading && snap.Err == nil && !containsCity(snap.Items, cityID) {
			s.mu.Unlock()
			return ErrCityNotInState
		}
	}
	s.cityID = cityID
	s.mu.Unlock()

	s.emit()
	return nil
}

// State returns the visible state.
func (s *Selection) State() SelectionState {
	snap := s.cities.Snapshot()
	s.mu.Lock()
	defer s.mu.Unlock()
	return SelectionState{
		StateID:       s.stateID,
		CityID:        s.cityID,
		Cities:        snap.Items,
		CitiesLoading: snap.Loading,
		CitiesErr:     snap.Err,
	}
}

// Close cancels a pending city request.
func (s *Selection) Close() {
	s.cities.Close()
}

func (s *Selection) citiesChanged(snap dependent.Snapshot[int64, domain.City]) {
	s.mu.Lock()
	s.reconcileLocked(snap)
	state := SelectionState{
		StateID:       s.stateID,
		CityID:        s.cityID,
		Cities:        snap.Items,
		CitiesLoading: snap.Loading,
		CitiesErr:     snap.Err,
	}
	s.mu.Unlock()

	if s.onChange != nil {
		s.onChange(state)
	}
}

func (s *Selection) reconcileLocked(snap dependent.Snapshot[int64, domain.City]) {
	if snap.Enabled && !snap.Loading && snap.Err == nil && snap.Key == s.stateID &&
		s.cityID > 0 && !containsCity(snap.Items, s.cityID) {
		s.cityID = 0
	}
}

func (s *Selection) emit() {
	if s.onChange != nil {
		s.onChange(s.State())
	}
}

func containsCity(cities []domain.City, id int64) bool {
	for _, c := range cities {
		if c.ID == id {
			return true
		}
	}
	return false
}
