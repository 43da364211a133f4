package fixtures

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/viddefe/go-viddefe/domain"
	"github.com/viddefe/go-viddefe/internal/churches"
	"github.com/viddefe/go-viddefe/internal/geo"
	"github.com/viddefe/go-viddefe/internal/offerings"
	"github.com/viddefe/go-viddefe/internal/people"
)

func newServices() Services {
	geoService := geo.NewService(geo.NewMemoryRepository())
	peopleService := people.NewService(people.NewMemoryRepository())
	return Services{
		Geo:    geoService,
		People: peopleService,
		Churches: churches.NewService(churches.NewMemoryRepository(),
			churches.WithPastorLookup(peopleService),
			churches.WithGeoLookup(geoService),
		),
		Offerings: offerings.NewService(offerings.NewMemoryOfferingRepository(), offerings.NewMemoryTypeRepository()),
	}
}

func TestDefaultSeedLoadsAndIsIdempotent(t *testing.T) {
	seed, err := Default()
	if err != nil {
		t.Fatalf("default seed: %v", err)
	}
	services := newServices()
	loader, err := NewLoader(services, nil)
	if err != nil {
		t.Fatalf("new loader: %v", err)
	}

	ctx := context.Background()
	summary, err := loader.Load(ctx, seed)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if summary.States != 2 || summary.Cities != 5 || summary.People != 4 || summary.Churches != 2 || summary.OfferingTypes != 3 {
		t.Fatalf("unexpected summary %+v", summary)
	}

	norte, err := services.Churches.GetBySlug(ctx, "iglesia-norte")
	if err != nil {
		t.Fatalf("get church: %v", err)
	}
	if norte.Pastor == nil || norte.Pastor.FirstName != "Ana" {
		t.Fatalf("expected pastor Ana, got %+v", norte.Pastor)
	}
	if norte.City == nil || norte.City.Name != "Cali" || norte.State == nil || norte.State.ID != 5 {
		t.Fatalf("expected Cali in state 5, got state=%+v city=%+v", norte.State, norte.City)
	}
	if norte.Address != "Calle 70 # 5-20" {
		t.Fatalf("expected quoted address to survive, got %q", norte.Address)
	}

	members, err := services.People.ListByChurch(ctx, norte.ID)
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("expected 2 members of Iglesia Norte, got %d", len(members))
	}

	again, err := loader.Load(ctx, seed)
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if again.People != 0 || again.Churches != 0 || again.Skipped != 6 {
		t.Fatalf("expected second load to skip existing records, got %+v", again)
	}
	page, err := services.Churches.List(ctx, domain.PageRequest{})
	if err != nil {
		t.Fatalf("list churches: %v", err)
	}
	if page.TotalElements != 2 {
		t.Fatalf("expected 2 churches after reload, got %d", page.TotalElements)
	}
}

func TestParseRejectsSchemaViolations(t *testing.T) {
	cases := map[string]string{
		"missing name":     "states:\n  - id: 1\n",
		"half coordinates": "churches:\n  - name: Norte\n    latitude: 3.4\n",
		"unknown key":      "parishes: []\n",
		"bad role":         "people:\n  - first_name: A\n    last_name: B\n    email: a@b.co\n    role: bishop\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			if !errors.Is(err, ErrSchemaViolation) {
				t.Fatalf("expected schema violation, got %v", err)
			}
			var schemaErr *SchemaError
			if !errors.As(err, &schemaErr) || len(schemaErr.Violations) == 0 {
				t.Fatalf("expected located violations, got %v", err)
			}
		})
	}
}

func TestParseRejectsBadDatesAndEmptyDocuments(t *testing.T) {
	if _, err := Parse([]byte("  \n")); !errors.Is(err, ErrSeedEmpty) {
		t.Fatalf("expected ErrSeedEmpty, got %v", err)
	}
	_, err := Parse([]byte("churches:\n  - name: Norte\n    foundation_date: 12/04/1998\n"))
	if err == nil || !strings.Contains(err.Error(), "foundation_date") {
		t.Fatalf("expected foundation_date error, got %v", err)
	}
}

func TestLoaderRequiresServices(t *testing.T) {
	if _, err := NewLoader(Services{}, nil); !errors.Is(err, ErrServiceRequired) {
		t.Fatalf("expected ErrServiceRequired, got %v", err)
	}
}

func TestCompileSchemaRejectsBrokenDocument(t *testing.T) {
	if _, err := compileSchema("broken.json", []byte(`{"type": 12}`)); err == nil {
		t.Fatal("expected broken schema to fail")
	}
}
