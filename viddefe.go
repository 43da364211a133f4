package viddefe

import (
	"context"

	"github.com/google/uuid"

	"github.com/viddefe/go-viddefe/commands"
	"github.com/viddefe/go-viddefe/domain"
	"github.com/viddefe/go-viddefe/internal/churches"
	"github.com/viddefe/go-viddefe/internal/di"
	"github.com/viddefe/go-viddefe/internal/fixtures"
	"github.com/viddefe/go-viddefe/internal/forms"
	"github.com/viddefe/go-viddefe/internal/geo"
	"github.com/viddefe/go-viddefe/internal/homegroups"
	"github.com/viddefe/go-viddefe/internal/meetings"
	"github.com/viddefe/go-viddefe/internal/offerings"
	"github.com/viddefe/go-viddefe/internal/people"
)

// ChurchService exports the church service contract.
type ChurchService = churches.Service

// PeopleService exports the people service contract.
type PeopleService = people.Service

// HomeGroupService exports the home group service contract.
type HomeGroupService = homegroups.Service

// MeetingService exports the meeting and attendance service contract.
type MeetingService = meetings.Service

// OfferingService exports the offering service contract.
type OfferingService = offerings.Service

// GeoService exports the geographic catalog contract.
type GeoService = geo.Service

type (
	ChurchForm         = forms.ChurchForm
	ChurchFormState    = forms.ChurchFormState
	ChurchProjection   = forms.ChurchProjection
	ChurchView         = forms.ChurchView
	MeetingDetail      = forms.MeetingDetail
	MeetingDetailState = forms.MeetingDetailState
	OfferingModal      = forms.OfferingModal
	OfferingDraft      = forms.OfferingDraft
	Seed               = fixtures.Seed
	SeedSummary        = fixtures.Summary
)

// Module is the top level client core façade.
type Module struct {
	container *di.Container
}

// New constructs a module using cfg and optional DI overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Churches returns the configured church service.
func (m *Module) Churches() ChurchService {
	return m.container.ChurchService()
}

// People returns the configured people service.
func (m *Module) People() PeopleService {
	return m.container.PeopleService()
}

// HomeGroups returns the configured home group service.
func (m *Module) HomeGroups() HomeGroupService {
	return m.container.HomeGroupService()
}

// Meetings returns the configured meeting service.
func (m *Module) Meetings() MeetingService {
	return m.container.MeetingService()
}

// Offerings returns the configured offering service.
func (m *Module) Offerings() OfferingService {
	return m.container.OfferingService()
}

// Geo returns the geographic catalog.
func (m *Module) Geo() GeoService {
	return m.container.GeoService()
}

// NewChurchForm builds a church create/edit/view form.
func (m *Module) NewChurchForm(onChange func(ChurchFormState), onSaved func(*domain.Church)) (*ChurchForm, error) {
	return m.container.NewChurchForm(onChange, onSaved)
}

// LoadChurchView loads the church detail screen.
func (m *Module) LoadChurchView(ctx context.Context, id uuid.UUID, groups domain.PageRequest) (ChurchView, error) {
	loader, err := m.container.NewChurchViewLoader()
	if err != nil {
		return ChurchView{}, err
	}
	return loader.Load(ctx, id, groups)
}

// NewMeetingDetail builds a meeting detail. Call the returned release func when done.
func (m *Module) NewMeetingDetail(onChange func(MeetingDetailState)) (*MeetingDetail, func(), error) {
	return m.container.NewMeetingDetail(onChange)
}

// NewOfferingModal builds the offering registration modal.
func (m *Module) NewOfferingModal(onSaved func(*domain.Offering)) (*OfferingModal, error) {
	return m.container.NewOfferingModal(onSaved)
}

// EnsureSchema creates database tables when the bun storage provider is active.
func (m *Module) EnsureSchema(ctx context.Context) error {
	return m.container.EnsureSchema(ctx)
}

// Seed loads seed into the active store.
func (m *Module) Seed(ctx context.Context, seed Seed) (SeedSummary, error) {
	return m.container.Seed(ctx, seed)
}

// DefaultSeed returns the bundled demo data.
func DefaultSeed() (Seed, error) {
	return fixtures.Default()
}

// RegisterCommands registers the mutation handlers with the given integrations.
func (m *Module) RegisterCommands(opts commands.RegistrationOptions) (*commands.RegistrationResult, error) {
	return commands.RegisterContainerCommands(m.container, opts)
}

// Close releases connections opened by the module.
func (m *Module) Close() error {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Close()
}
