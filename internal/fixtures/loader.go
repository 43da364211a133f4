package fixtures

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-slug"
	"github.com/google/uuid"

	"github.com/viddefe/go-viddefe/domain"
	"github.com/viddefe/go-viddefe/internal/churches"
	"github.com/viddefe/go-viddefe/internal/geo"
	"github.com/viddefe/go-viddefe/internal/identity"
	"github.com/viddefe/go-viddefe/internal/logging"
	"github.com/viddefe/go-viddefe/internal/offerings"
	"github.com/viddefe/go-viddefe/internal/people"
	"github.com/viddefe/go-viddefe/pkg/interfaces"
)

var ErrServiceRequired = errors.New("fixtures: geo, people and church services are required")

// Services are the stores a seed is loaded into. Offerings is optional.
type Services struct {
	Geo       geo.Service
	People    people.Service
	Churches  churches.Service
	Offerings offerings.Service
}

// Summary counts the records written by Load. Existing records are skipped.
type Summary struct {
	States        int
	Cities        int
	People        int
	Churches      int
	OfferingTypes int
	Skipped       int
}

// Loader writes seeds into services.
type Loader struct {
	services Services
	logger   interfaces.Logger
}

// NewLoader builds a loader. logger may be nil.
func NewLoader(services Services, logger interfaces.Logger) (*Loader, error) {
	if services.Geo == nil || services.People == nil || services.Churches == nil {
		return nil, ErrServiceRequired
	}
	return &Loader{services: services, logger: logging.Ensure(logger)}, nil
}

// Load is idempotent: running it twice leaves the stores unchanged.
func (l *Loader) Load(ctx context.Context, seed Seed) (Summary, error) {
	var summary Summary

	for _, state := range seed.States {
		if _, err := l.services.Geo.RegisterState(ctx, geo.StateInput{ID: state.ID, Name: state.Name}); err != nil {
			return summary, fmt.Errorf("fixtures: state %d: %w", state.ID, err)
		}
		summary.States++
		for _, city := range state.Cities {
			if _, err := l.services.Geo.RegisterCity(ctx, geo.CityInput{ID: city.ID, StateID: state.ID, Name: city.Name}); err != nil {
				return summary, fmt.Errorf("fixtures: city %d: %w", city.ID, err)
			}
			summary.Cities++
		}
	}

	for _, person := range seed.People {
		if strings.TrimSpace(person.Church) != "" {
			continue
		}
		created, err := l.createPerson(ctx, person, nil)
		if err != nil {
			return summary, err
		}
		if created {
			summary.People++
		} else {
			summary.Skipped++
		}
	}

	churchIDs := map[string]uuid.UUID{}
	for _, church := range seed.Churches {
		id, created, err := l.createChurch(ctx, church)
		if err != nil {
			return summary, err
		}
		churchIDs[normalizeName(church.Name)] = id
		if created {
			summary.Churches++
		} else {
			summary.Skipped++
		}
	}

	for _, person := range seed.People {
		name := strings.TrimSpace(person.Church)
		if name == "" {
			continue
		}
		churchID, ok := churchIDs[normalizeName(name)]
		if !ok {
			return summary, fmt.Errorf("fixtures: person %s references unknown church %q", person.Email, name)
		}
		created, err := l.createPerson(ctx, person, &churchID)
		if err != nil {
			return summary, err
		}
		if created {
			summary.People++
		} else {
			summary.Skipped++
		}
	}

	if l.services.Offerings != nil {
		for _, t := range seed.OfferingTypes {
			if _, err := l.services.Offerings.RegisterType(ctx, t.ID, t.Name); err != nil {
				return summary, fmt.Errorf("fixtures: offering type %d: %w", t.ID, err)
			}
			summary.OfferingTypes++
		}
	}

	l.logger.Info("fixtures.loaded",
		"states", summary.States,
		"cities", summary.Cities,
		"people", summary.People,
		"churches", summary.Churches,
		"offering_types", summary.OfferingTypes,
		"skipped", summary.Skipped,
	)
	return summary, nil
}

func (l *Loader) createPerson(ctx context.Context, seed PersonSeed, churchID *uuid.UUID) (bool, error) {
	_, err := l.services.People.Create(ctx, people.PersonInput{
		FirstName: seed.FirstName,
		LastName:  seed.LastName,
		Email:     seed.Email,
		Phone:     seed.Phone,
		ChurchID:  churchID,
		Role:      domain.PersonRole(seed.Role),
	})
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, people.ErrPersonExists):
		return false, nil
	default:
		return false, fmt.Errorf("fixtures: person %s: %w", seed.Email, err)
	}
}

func (l *Loader) createChurch(ctx context.Context, seed ChurchSeed) (uuid.UUID, bool, error) {
	founded, err := seed.foundationDate()
	if err != nil {
		return uuid.Nil, false, err
	}
	fields := churches.ChurchFields{
		Name:           seed.Name,
		Email:          seed.Email,
		Phone:          seed.Phone,
		Address:        seed.Address,
		FoundationDate: founded,
		StateID:        seed.StateID,
		CityID:         seed.CityID,
		Latitude:       seed.Latitude,
		Longitude:      seed.Longitude,
	}
	if email := strings.TrimSpace(seed.Pastor); email != "" {
		pastorID := identity.PersonUUID(email)
		fields.PastorID = &pastorID
	}

	created, err := l.services.Churches.Create(ctx, churches.CreateChurchInput{ChurchFields: fields})
	if err == nil {
		return created.ID, true, nil
	}
	if !errors.Is(err, churches.ErrChurchSlugExists) {
		return uuid.Nil, false, fmt.Errorf("fixtures: church %q: %w", seed.Name, err)
	}
	key, slugErr := slug.Normalize(seed.Name)
	if slugErr != nil {
		return uuid.Nil, false, fmt.Errorf("fixtures: church %q: %w", seed.Name, slugErr)
	}
	existing, err := l.services.Churches.GetBySlug(ctx, key)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("fixtures: church %q: %w", seed.Name, err)
	}
	return existing.ID, false, nil
}

func normalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
