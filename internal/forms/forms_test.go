package forms

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/viddefe/go-viddefe/domain"
	"github.com/viddefe/go-viddefe/internal/churches"
	"github.com/viddefe/go-viddefe/internal/commands/churchcmd"
	"github.com/viddefe/go-viddefe/internal/events"
	"github.com/viddefe/go-viddefe/internal/fixtures"
	"github.com/viddefe/go-viddefe/internal/geo"
	"github.com/viddefe/go-viddefe/internal/mutation"
	"github.com/viddefe/go-viddefe/internal/permissions"
	"github.com/viddefe/go-viddefe/internal/projection"
	"github.com/viddefe/go-viddefe/internal/query"
	"github.com/viddefe/go-viddefe/pkg/interfaces"
)

type formEnv struct {
	services fixtures.Services
	norte    *domain.Church
	client   *query.Client[uuid.UUID, *domain.Church]
	bus      *events.MemoryBus
	save     *mutation.Mutation[churchcmd.SaveChurchCommand, *domain.Church]

	mu    sync.Mutex
	calls int
}

func newFormEnv(t *testing.T) *formEnv {
	t.Helper()
	ctx := context.Background()
	geoService := geo.NewService(geo.NewMemoryRepository())
	peopleService := peopleServiceForTests()
	services := fixtures.Services{
		Geo:    geoService,
		People: peopleService,
		Churches: churches.NewService(churches.NewMemoryRepository(),
			churches.WithPastorLookup(peopleService),
			churches.WithGeoLookup(geoService),
		),
		Offerings: offeringServiceForTests(),
	}
	seed, err := fixtures.Default()
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	loader, err := fixtures.NewLoader(services, nil)
	if err != nil {
		t.Fatalf("loader: %v", err)
	}
	if _, err := loader.Load(ctx, seed); err != nil {
		t.Fatalf("load seed: %v", err)
	}
	norte, err := services.Churches.GetBySlug(ctx, "iglesia-norte")
	if err != nil {
		t.Fatalf("lookup church: %v", err)
	}

	env := &formEnv{
		services: services,
		norte:    norte,
		client:   query.NewClient("churches", services.Churches.Get),
		bus:      events.NewMemoryBus(nil),
	}
	t.Cleanup(func() { _ = env.bus.Close() })
	handler := churchcmd.NewSaveChurchHandler(services.Churches, env.bus, nil)
	env.save = mutation.New("churches.save", func(ctx context.Context, cmd churchcmd.SaveChurchCommand) (*domain.Church, error) {
		env.mu.Lock()
		env.calls++
		env.mu.Unlock()
		return handler.Save(ctx, cmd)
	})
	return env
}

func (e *formEnv) saveCalls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

func (e *formEnv) form(t *testing.T, caps permissions.Capabilities, factory interfaces.MapWidgetFactory) *ChurchForm {
	t.Helper()
	form, err := NewChurchForm(ChurchFormConfig{
		Churches:     e.client,
		Geo:          e.services.Geo,
		Save:         e.save,
		Capabilities: caps,
		MapFactory:   factory,
	})
	if err != nil {
		t.Fatalf("new form: %v", err)
	}
	t.Cleanup(form.Dispose)
	return form
}

func waitForm(t *testing.T, form *ChurchForm, cond func(ChurchFormState) bool) ChurchFormState {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if st := form.State(); cond(st) {
			return st
		}
		time.Sleep(time.Millisecond)
	}
	st := form.State()
	t.Fatalf("condition not met, state %+v", st)
	return st
}

func populated(st ChurchFormState) bool {
	return st.Latched && st.Values.Name != "" && !st.Geo.CitiesLoading && len(st.Geo.Cities) > 0
}

func TestChurchFormEditSurvivesRefetch(t *testing.T) {
	ctx := context.Background()
	env := newFormEnv(t)
	form := env.form(t, permissions.AllowAll(), nil)

	var changes []interfaces.EntityChanged
	var mu sync.Mutex
	unsubscribe, err := env.bus.Subscribe("churches", func(evt interfaces.EntityChanged) {
		mu.Lock()
		changes = append(changes, evt)
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer unsubscribe()

	if err := form.OpenEdit(ctx, env.norte.ID); err != nil {
		t.Fatalf("open edit: %v", err)
	}
	st := waitForm(t, form, populated)
	want := ProjectChurch(env.norte)
	if diff := cmp.Diff(want, st.Values); diff != "" {
		t.Fatalf("unexpected projection (-want +got):\n%s", diff)
	}

	form.Update(func(p *ChurchProjection) { p.Name = "Iglesia Norte Renovada" })

	remote := churchcmd.SaveChurchCommand{Name: "Iglesia Norte (remoto)", StateID: 5, CityID: 50}
	if _, err := env.services.Churches.Update(ctx, churches.UpdateChurchInput{ID: env.norte.ID, ChurchFields: remote.Fields()}); err != nil {
		t.Fatalf("remote update: %v", err)
	}
	env.client.Invalidate(env.norte.ID)

	st = waitForm(t, form, func(st ChurchFormState) bool {
		return st.Remote.HasData && st.Remote.Data.Name == "Iglesia Norte (remoto)"
	})
	if st.Values.Name != "Iglesia Norte Renovada" {
		t.Fatalf("expected local edit kept across refetch, got %q", st.Values.Name)
	}
	if st.Values.Address != "Calle 70 # 5-20" {
		t.Fatalf("expected untouched fields kept, got %q", st.Values.Address)
	}

	ok, err := form.Save(ctx)
	if err != nil || !ok {
		t.Fatalf("expected save to succeed, got ok=%v err=%v", ok, err)
	}
	if form.State().Open {
		t.Fatalf("expected form closed after save")
	}
	saved, err := env.services.Churches.Get(ctx, env.norte.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if saved.Name != "Iglesia Norte Renovada" {
		t.Fatalf("expected saved name, got %q", saved.Name)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(changes) != 1 || changes[0].Action != "updated" || changes[0].ID != env.norte.ID.String() {
		t.Fatalf("expected one update event, got %+v", changes)
	}
}

func TestChurchFormReopenProjectsAgain(t *testing.T) {
	ctx := context.Background()
	env := newFormEnv(t)
	form := env.form(t, permissions.AllowAll(), nil)

	if err := form.OpenEdit(ctx, env.norte.ID); err != nil {
		t.Fatalf("open edit: %v", err)
	}
	waitForm(t, form, populated)
	form.Update(func(p *ChurchProjection) { p.Phone = "555-0101" })
	form.Close()

	if st := form.State(); st.Open || st.Latched || st.Values.Phone != "" {
		t.Fatalf("expected closed form to discard edits, got %+v", st)
	}

	if err := form.OpenEdit(ctx, env.norte.ID); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	st := waitForm(t, form, populated)
	if st.Values.Phone != env.norte.Phone {
		t.Fatalf("expected remote phone after reopen, got %q", st.Values.Phone)
	}
}

func TestChurchFormStateChangeClearsCity(t *testing.T) {
	ctx := context.Background()
	env := newFormEnv(t)
	form := env.form(t, permissions.AllowAll(), nil)

	if err := form.OpenEdit(ctx, env.norte.ID); err != nil {
		t.Fatalf("open edit: %v", err)
	}
	st := waitForm(t, form, populated)
	if st.Values.StateID != 5 || st.Values.CityID != 50 || len(st.Geo.Cities) != 3 {
		t.Fatalf("unexpected initial geo %+v / %+v", st.Values, st.Geo)
	}

	form.SetState(7)
	if st := form.State(); st.Values.StateID != 7 || st.Values.CityID != 0 {
		t.Fatalf("expected city cleared on state change, got %+v", st.Values)
	}
	st = waitForm(t, form, func(st ChurchFormState) bool {
		return st.Geo.StateID == 7 && !st.Geo.CitiesLoading && len(st.Geo.Cities) == 2
	})
	if st.Geo.CityID != 0 {
		t.Fatalf("expected no city selected, got %d", st.Geo.CityID)
	}

	if err := form.SetCity(50); !errors.Is(err, geo.ErrCityNotInState) {
		t.Fatalf("expected city of another state rejected, got %v", err)
	}
	if err := form.SetCity(70); err != nil {
		t.Fatalf("set city: %v", err)
	}
	if st := form.State(); st.Values.CityID != 70 {
		t.Fatalf("expected city 70, got %d", st.Values.CityID)
	}
}

func TestChurchFormInvalidInputDoesNotMutate(t *testing.T) {
	ctx := context.Background()
	env := newFormEnv(t)
	form := env.form(t, permissions.AllowAll(), nil)

	if err := form.OpenCreate(); err != nil {
		t.Fatalf("open create: %v", err)
	}
	form.Update(func(p *ChurchProjection) {
		p.Name = "  "
		p.Email = "not-an-email"
		p.FoundationDate = "12/04/1998"
	})

	ok, err := form.Save(ctx)
	if err != nil || ok {
		t.Fatalf("expected rejected save without error, got ok=%v err=%v", ok, err)
	}
	errs := form.FieldErrors()
	for _, key := range []string{"name", "email", "foundation_date"} {
		if _, exists := errs[key]; !exists {
			t.Fatalf("expected error for %s, got %v", key, errs)
		}
	}
	if env.saveCalls() != 0 {
		t.Fatalf("expected no mutation, got %d calls", env.saveCalls())
	}
	if !form.State().Open {
		t.Fatalf("expected form to stay open")
	}

	form.Update(func(p *ChurchProjection) {
		p.Name = "Iglesia del Sur"
		p.Email = "sur@viddefe.org"
		p.FoundationDate = ""
	})
	ok, err = form.Save(ctx)
	if err != nil || !ok {
		t.Fatalf("expected save, got ok=%v err=%v", ok, err)
	}
	if len(form.FieldErrors()) != 0 {
		t.Fatalf("expected errors cleared")
	}
	if _, err := env.services.Churches.GetBySlug(ctx, "iglesia-del-sur"); err != nil {
		t.Fatalf("expected created church: %v", err)
	}
}

func TestChurchFormMapWritesBothCoordinates(t *testing.T) {
	env := newFormEnv(t)
	var widget *geo.StaticWidget
	form := env.form(t, permissions.AllowAll(), geo.NewStaticWidgetFactory(func(w *geo.StaticWidget) { widget = w }))

	if err := form.OpenCreate(); err != nil {
		t.Fatalf("open create: %v", err)
	}
	if widget == nil {
		t.Fatalf("expected widget mounted")
	}
	widget.Click(domain.Position{Lat: 3.4516, Lng: -76.532})

	st := form.State()
	if st.Values.Latitude == nil || st.Values.Longitude == nil {
		t.Fatalf("expected both coordinates set, got %+v", st.Values)
	}
	if *st.Values.Latitude != 3.4516 || *st.Values.Longitude != -76.532 {
		t.Fatalf("unexpected coordinates %v,%v", *st.Values.Latitude, *st.Values.Longitude)
	}
	if marker, ok := widget.Marker(); !ok || marker.Lat != 3.4516 {
		t.Fatalf("expected marker at click, got %+v %v", marker, ok)
	}

	form.SetCoordinates(nil, nil)
	if _, ok := widget.Marker(); ok {
		t.Fatalf("expected marker cleared")
	}

	form.Close()
	if !widget.Closed() {
		t.Fatalf("expected widget closed with the form")
	}
}

func TestChurchFormCapabilities(t *testing.T) {
	ctx := context.Background()
	env := newFormEnv(t)
	form := env.form(t, permissions.NewSet("churches:read"), nil)

	if err := form.OpenCreate(); !errors.Is(err, permissions.ErrPermissionDenied) {
		t.Fatalf("expected create denied, got %v", err)
	}
	if err := form.OpenEdit(ctx, env.norte.ID); !errors.Is(err, permissions.ErrPermissionDenied) {
		t.Fatalf("expected edit denied, got %v", err)
	}
	if err := form.OpenView(ctx, env.norte.ID); err != nil {
		t.Fatalf("open view: %v", err)
	}
	st := waitForm(t, form, func(st ChurchFormState) bool { return st.Values.Name == "Iglesia Norte" })
	if st.Mode != projection.ModeView || st.Latched {
		t.Fatalf("expected unlatched view, got %+v", st)
	}
	if form.Update(func(p *ChurchProjection) { p.Name = "x" }) {
		t.Fatalf("expected view to reject edits")
	}
	if _, err := form.Save(ctx); !errors.Is(err, ErrReadOnly) {
		t.Fatalf("expected read only, got %v", err)
	}
	if err := form.Edit(); !errors.Is(err, permissions.ErrPermissionDenied) {
		t.Fatalf("expected edit switch denied, got %v", err)
	}
}

func TestChurchFormViewFollowsRemote(t *testing.T) {
	ctx := context.Background()
	env := newFormEnv(t)
	form := env.form(t, permissions.AllowAll(), nil)

	if err := form.OpenView(ctx, env.norte.ID); err != nil {
		t.Fatalf("open view: %v", err)
	}
	waitForm(t, form, func(st ChurchFormState) bool { return st.Values.Name == "Iglesia Norte" })

	remote := churchcmd.SaveChurchCommand{Name: "Iglesia Norte Centro", StateID: 5, CityID: 51}
	if _, err := env.services.Churches.Update(ctx, churches.UpdateChurchInput{ID: env.norte.ID, ChurchFields: remote.Fields()}); err != nil {
		t.Fatalf("remote update: %v", err)
	}
	form.Refetch()
	st := waitForm(t, form, func(st ChurchFormState) bool { return st.Values.Name == "Iglesia Norte Centro" })
	if st.Values.CityID != 51 {
		t.Fatalf("expected view to follow city, got %d", st.Values.CityID)
	}

	if err := form.Edit(); err != nil {
		t.Fatalf("edit: %v", err)
	}
	st = form.State()
	if st.Mode != projection.ModeEdit || !st.Latched {
		t.Fatalf("expected latched edit after switching mode, got %+v", st)
	}
}

func TestChurchProjectionCommand(t *testing.T) {
	lat, lng := 3.5, -76.5
	pastor := uuid.New()
	cases := []struct {
		name    string
		input   ChurchProjection
		invalid []string
	}{
		{name: "valid", input: ChurchProjection{Name: "Iglesia", PastorID: pastor.String(), StateID: 5, CityID: 50, Latitude: &lat, Longitude: &lng, FoundationDate: "2001-02-03"}},
		{name: "half coordinates", input: ChurchProjection{Name: "Iglesia", Latitude: &lat}, invalid: []string{"longitude"}},
		{name: "city without state", input: ChurchProjection{Name: "Iglesia", CityID: 50}, invalid: []string{"state_id"}},
		{name: "bad pastor", input: ChurchProjection{Name: "Iglesia", PastorID: "ana"}, invalid: []string{"pastor_id"}},
		{name: "future date", input: ChurchProjection{Name: "Iglesia", FoundationDate: "2999-01-01"}, invalid: []string{"foundation_date"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cmd, errs := tc.input.Command(nil)
			if len(tc.invalid) == 0 {
				if len(errs) != 0 {
					t.Fatalf("expected valid, got %v", errs)
				}
				if cmd.PastorID == nil || *cmd.PastorID != pastor || cmd.FoundationDate == nil {
					t.Fatalf("unexpected command %+v", cmd)
				}
				return
			}
			for _, key := range tc.invalid {
				if _, ok := errs[key]; !ok {
					t.Fatalf("expected %s invalid, got %v", key, errs)
				}
			}
		})
	}
}

func TestProjectChurchCopiesCoordinates(t *testing.T) {
	lat, lng := 1.0, 2.0
	church := &domain.Church{Name: "Iglesia", Latitude: &lat, Longitude: &lng}
	p := ProjectChurch(church)
	*p.Latitude = 9
	if *church.Latitude != 1 {
		t.Fatalf("expected projection not to alias the remote record")
	}
	if got := ProjectChurch(nil); got != (ChurchProjection{}) {
		t.Fatalf("expected empty projection for nil, got %+v", got)
	}
}
