package forms

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/viddefe/go-viddefe/domain"
	"github.com/viddefe/go-viddefe/internal/commands/churchcmd"
	"github.com/viddefe/go-viddefe/internal/dependent"
	"github.com/viddefe/go-viddefe/internal/geo"
	"github.com/viddefe/go-viddefe/internal/logging"
	"github.com/viddefe/go-viddefe/internal/permissions"
	"github.com/viddefe/go-viddefe/internal/projection"
	"github.com/viddefe/go-viddefe/internal/query"
	"github.com/viddefe/go-viddefe/internal/runtimeconfig"
	"github.com/viddefe/go-viddefe/pkg/interfaces"
)

const dateLayout = "2006-01-02"

var (
	ErrChurchQueryRequired = errors.New("forms: church query client is required")
	ErrGeoServiceRequired  = errors.New("forms: geo service is required")
	ErrSaveRequired        = errors.New("forms: save mutation is required")
	ErrFormClosed          = errors.New("forms: form is closed")
	ErrReadOnly            = errors.New("forms: form is read only")
)

// ChurchProjection is the flat, editable shape of a church. Nested references
// are reduced to their identifiers.
type ChurchProjection struct {
	Name           string
	Email          string
	Phone          string
	Address        string
	FoundationDate string
	PastorID       string
	StateID        int64
	CityID         int64
	Latitude       *float64
	Longitude      *float64
}

// ProjectChurch flattens a remote church. A nil church projects to the empty form.
func ProjectChurch(c *domain.Church) ChurchProjection {
	if c == nil {
		return ChurchProjection{}
	}
	out := ChurchProjection{
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		Latitude:  copyFloat(c.Latitude),
		Longitude: copyFloat(c.Longitude),
	}
	if c.FoundationDate != nil {
		out.FoundationDate = c.FoundationDate.Format(dateLayout)
	}
	if c.Pastor != nil && c.Pastor.ID != uuid.Nil {
		out.PastorID = c.Pastor.ID.String()
	}
	if c.State != nil {
		out.StateID = c.State.ID
	}
	if c.City != nil {
		out.CityID = c.City.ID
	}
	return out
}

// Command converts the projection into a save command for id (nil creates).
// Typed values that cannot be parsed are reported under their field key.
func (p ChurchProjection) Command(id *uuid.UUID) (churchcmd.SaveChurchCommand, validation.Errors) {
	errs := validation.Errors{}
	cmd := churchcmd.SaveChurchCommand{
		ID:        id,
		Name:      p.Name,
		Email:     strings.TrimSpace(p.Email),
		Phone:     p.Phone,
		Address:   p.Address,
		StateID:   p.StateID,
		CityID:    p.CityID,
		Latitude:  copyFloat(p.Latitude),
		Longitude: copyFloat(p.Longitude),
	}
	if raw := strings.TrimSpace(p.FoundationDate); raw != "" {
		date, err := time.Parse(dateLayout, raw)
		if err != nil {
			errs["foundation_date"] = validation.NewError("viddefe.forms.church.date_invalid", "foundation date must use YYYY-MM-DD")
		} else {
			cmd.FoundationDate = &date
		}
	}
	if raw := strings.TrimSpace(p.PastorID); raw != "" {
		pastor, err := uuid.Parse(raw)
		if err != nil {
			errs["pastor_id"] = validation.NewError("viddefe.forms.church.pastor_invalid", "pastor is invalid")
		} else {
			cmd.PastorID = &pastor
		}
	}
	if err := cmd.Validate(); err != nil {
		var fieldErrs validation.Errors
		if errors.As(err, &fieldErrs) {
			for key, fieldErr := range fieldErrs {
				if _, exists := errs[key]; !exists {
					errs[key] = fieldErr
				}
			}
		} else {
			errs["_"] = err
		}
	}
	if len(errs) == 0 {
		return cmd, nil
	}
	return cmd, errs
}

// ChurchFormState is what a renderer needs to draw the form.
type ChurchFormState struct {
	Open      bool
	Mode      projection.Mode
	Target    uuid.UUID
	HasTarget bool
	Latched   bool
	Values    ChurchProjection
	Remote    query.Result[*domain.Church]
	Geo       geo.SelectionState
	Position  *domain.Position
	Errors    map[string]string
	Saving    bool
	SaveErr   error
}

// ChurchFormConfig carries the collaborators of a ChurchForm.
type ChurchFormConfig struct {
	Churches     *query.Client[uuid.UUID, *domain.Church]
	Geo          geo.Service
	Save         interfaces.Mutation[churchcmd.SaveChurchCommand, *domain.Church]
	Capabilities permissions.Capabilities
	MapFactory   interfaces.MapWidgetFactory
	Map          runtimeconfig.MapConfig
	Logger       interfaces.Logger
	Observer     dependent.Observer
	OnChange     func(ChurchFormState)
	OnSaved      func(*domain.Church)
}

// ChurchForm is the create/edit/view modal of a church. The remote church is
// fetched through the query client and projected once per opening in edit
// mode, so refetches never overwrite what the user typed.
type ChurchForm struct {
	cfg       ChurchFormConfig
	logger    interfaces.Logger
	projector *projection.Projector[uuid.UUID, *domain.Church, ChurchProjection]
	selection *geo.Selection
	adapter   *geo.Adapter

	mu      sync.Mutex
	watch   *query.Watch[uuid.UUID, *domain.Church]
	errors  map[string]string
	saveErr error
}

// NewChurchForm builds a closed form.
func NewChurchForm(cfg ChurchFormConfig) (*ChurchForm, error) {
	if cfg.Churches == nil {
		return nil, ErrChurchQueryRequired
	}
	if cfg.Geo == nil {
		return nil, ErrGeoServiceRequired
	}
	if cfg.Save == nil {
		return nil, ErrSaveRequired
	}
	f := &ChurchForm{
		cfg:    cfg,
		logger: logging.Ensure(cfg.Logger),
		errors: map[string]string{},
	}
	f.projector = projection.New[uuid.UUID, *domain.Church](ProjectChurch,
		projection.WithOnPopulate(f.populated))

	selOpts := []geo.SelectionOption{
		geo.WithSelectionChange(f.selectionChanged),
		geo.WithSelectionLogger(f.logger),
	}
	if cfg.Observer != nil {
		selOpts = append(selOpts, geo.WithSelectionObserver(cfg.Observer))
	}
	f.selection = geo.NewSelection(cfg.Geo, selOpts...)

	if cfg.MapFactory != nil {
		adapter, err := geo.NewAdapter(cfg.MapFactory, f.setCoordinates,
			geo.WithMapConfig(cfg.Map),
			geo.WithAdapterLogger(f.logger))
		if err != nil {
			f.selection.Close()
			return nil, err
		}
		f.adapter = adapter
	}
	return f, nil
}

// OpenCreate opens an empty form.
func (f *ChurchForm) OpenCreate() error {
	if err := permissions.Require(f.cfg.Capabilities, permissions.Join(permissions.ResourceChurches, permissions.ActionCreate)); err != nil {
		return err
	}
	f.reset()
	f.projector.OpenCreate()
	f.selection.Restore(0, 0)
	f.mountMap(nil, nil)
	f.logger.Debug("forms.church.open", "mode", projection.ModeCreate.String())
	f.emit()
	return nil
}

// OpenEdit opens the form on id and starts following the remote church.
func (f *ChurchForm) OpenEdit(ctx context.Context, id uuid.UUID) error {
	return f.open(ctx, projection.ModeEdit, id)
}

// OpenView opens the form read only. The view follows every remote change.
func (f *ChurchForm) OpenView(ctx context.Context, id uuid.UUID) error {
	return f.open(ctx, projection.ModeView, id)
}

func (f *ChurchForm) open(ctx context.Context, mode projection.Mode, id uuid.UUID) error {
	action := permissions.ActionRead
	if mode == projection.ModeEdit {
		action = permissions.ActionUpdate
	}
	if err := permissions.Require(f.cfg.Capabilities, permissions.Join(permissions.ResourceChurches, action)); err != nil {
		return err
	}
	f.reset()
	f.projector.Open(mode, id)
	f.mountMap(nil, nil)
	f.logger.Debug("forms.church.open", "mode", mode.String(), "church_id", id.String())

	watch := f.cfg.Churches.Watch(ctx, id, f.remoteChanged)
	f.mu.Lock()
	f.watch = watch
	f.mu.Unlock()
	f.emit()
	return nil
}

// Edit switches an open view to edit mode. The latch is reopened and the
// current remote value, if any, is projected.
func (f *ChurchForm) Edit() error {
	if !f.projector.IsOpen() {
		return ErrFormClosed
	}
	if err := permissions.Require(f.cfg.Capabilities, permissions.Join(permissions.ResourceChurches, permissions.ActionUpdate)); err != nil {
		return err
	}
	f.projector.SetMode(projection.ModeEdit)
	f.mu.Lock()
	watch := f.watch
	f.mu.Unlock()
	if watch != nil {
		f.remoteChanged(watch.Key(), watch.Result())
	}
	f.emit()
	return nil
}

// Refetch reloads the followed church.
func (f *ChurchForm) Refetch() {
	f.mu.Lock()
	watch := f.watch
	f.mu.Unlock()
	if watch != nil {
		watch.Refetch()
	}
}

// Update applies an edit to the projection. Geographic fields must go through
// SetState, SetCity and SetCoordinates.
func (f *ChurchForm) Update(edit func(*ChurchProjection)) bool {
	if !f.editable() || edit == nil {
		return false
	}
	ok := f.projector.Update(func(p *ChurchProjection) {
		stateID, cityID, lat, lng := p.StateID, p.CityID, p.Latitude, p.Longitude
		edit(p)
		p.StateID, p.CityID, p.Latitude, p.Longitude = stateID, cityID, lat, lng
	})
	if ok {
		f.emit()
	}
	return ok
}

// SetState selects a state and clears the city.
func (f *ChurchForm) SetState(stateID int64) bool {
	if !f.editable() {
		return false
	}
	ok := f.projector.Update(func(p *ChurchProjection) {
		if p.StateID != stateID {
			p.StateID = stateID
			p.CityID = 0
		}
	})
	if ok {
		f.selection.SetState(stateID)
	}
	return ok
}

// SetCity selects a city of the selected state.
func (f *ChurchForm) SetCity(cityID int64) error {
	if !f.editable() {
		return ErrReadOnly
	}
	if err := f.selection.SetCity(cityID); err != nil {
		return err
	}
	f.projector.Update(func(p *ChurchProjection) { p.CityID = cityID })
	f.emit()
	return nil
}

// SetCoordinates applies typed coordinates and moves the map marker.
func (f *ChurchForm) SetCoordinates(latitude, longitude *float64) bool {
	if !f.editable() {
		return false
	}
	ok := f.projector.Update(func(p *ChurchProjection) {
		p.Latitude, p.Longitude = copyFloat(latitude), copyFloat(longitude)
	})
	if ok && f.adapter != nil {
		f.adapter.Sync(latitude, longitude)
	}
	if ok {
		f.emit()
	}
	return ok
}

// PickPosition emulates a click on the map.
func (f *ChurchForm) PickPosition(p domain.Position) error {
	if !f.editable() {
		return ErrReadOnly
	}
	if f.adapter == nil {
		return f.pickWithoutMap(p)
	}
	return f.adapter.Select(p)
}

// Save validates the projection and submits it. Invalid input is reported
// through field errors and returns false without calling the backend. On
// success the form closes.
func (f *ChurchForm) Save(ctx context.Context) (bool, error) {
	if !f.projector.IsOpen() {
		return false, ErrFormClosed
	}
	mode := f.projector.Mode()
	var id *uuid.UUID
	action := permissions.ActionCreate
	switch mode {
	case projection.ModeView:
		return false, ErrReadOnly
	case projection.ModeEdit:
		target, ok := f.projector.Target()
		if !ok {
			return false, ErrFormClosed
		}
		id = &target
		action = permissions.ActionUpdate
	}
	if err := permissions.Require(f.cfg.Capabilities, permissions.Join(permissions.ResourceChurches, action)); err != nil {
		return false, err
	}

	cmd, errs := f.projector.Local().Command(id)
	if len(errs) > 0 {
		f.setErrors(errs)
		f.logger.Debug("forms.church.invalid", "fields", len(errs))
		f.emit()
		return false, nil
	}
	f.setErrors(nil)

	err := f.cfg.Save.Mutate(ctx, cmd, func(saved *domain.Church) {
		f.Close()
		if f.cfg.OnSaved != nil {
			f.cfg.OnSaved(saved)
		}
	})
	if err != nil {
		f.mu.Lock()
		f.saveErr = err
		f.mu.Unlock()
		f.logger.Warn("forms.church.save_failed", "error", err)
		f.emit()
		return false, err
	}
	return true, nil
}

// Close discards the projection, stops following the remote church and
// cancels pending city requests. The form can be opened again.
func (f *ChurchForm) Close() {
	f.mu.Lock()
	watch := f.watch
	f.watch = nil
	f.mu.Unlock()

	if watch != nil {
		watch.Close()
	}
	f.projector.Close()
	f.selection.Restore(0, 0)
	if f.adapter != nil {
		if err := f.adapter.Unmount(); err != nil {
			f.logger.Warn("forms.church.map_close_failed", "error", err)
		}
	}
	f.emit()
}

// Dispose closes the form for good.
func (f *ChurchForm) Dispose() {
	f.Close()
	f.selection.Close()
}

// State returns a snapshot for rendering.
func (f *ChurchForm) State() ChurchFormState {
	target, hasTarget := f.projector.Target()
	st := ChurchFormState{
		Open:      f.projector.IsOpen(),
		Mode:      f.projector.Mode(),
		Target:    target,
		HasTarget: hasTarget,
		Latched:   f.projector.Latched(),
		Values:    f.projector.Local(),
		Geo:       f.selection.State(),
		Saving:    f.cfg.Save.IsPending(),
	}
	if f.adapter != nil {
		st.Position = f.adapter.Position()
	} else {
		st.Position = geo.PositionFromFields(st.Values.Latitude, st.Values.Longitude, geo.OrderFromConfig(f.cfg.Map))
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.watch != nil {
		st.Remote = f.watch.Result()
	}
	st.Errors = make(map[string]string, len(f.errors))
	for k, v := range f.errors {
		st.Errors[k] = v
	}
	st.SaveErr = f.saveErr
	return st
}

// FieldErrors returns the errors of the last rejected save.
func (f *ChurchForm) FieldErrors() map[string]string {
	return f.State().Errors
}

func (f *ChurchForm) remoteChanged(id uuid.UUID, res query.Result[*domain.Church]) {
	remoteID := id
	present := res.HasData && res.Data != nil
	if present {
		remoteID = res.Data.ID
	}
	outcome := f.projector.Observe(remoteID, res.Data, present)
	f.logger.Debug("forms.church.observe", "church_id", id.String(), "outcome", outcome.String())
	if outcome != projection.Populated {
		f.emit()
	}
}

func (f *ChurchForm) populated(p ChurchProjection) {
	f.selection.Restore(p.StateID, p.CityID)
	if f.adapter != nil {
		f.adapter.Sync(p.Latitude, p.Longitude)
	}
	f.emit()
}

func (f *ChurchForm) selectionChanged(st geo.SelectionState) {
	// the selection drops a city that is not part of the state's list
	f.projector.Update(func(p *ChurchProjection) {
		if p.StateID == st.StateID && p.CityID != st.CityID {
			p.CityID = st.CityID
		}
	})
	f.emit()
}

func (f *ChurchForm) setCoordinates(latitude, longitude *float64) {
	if !f.editable() {
		return
	}
	f.projector.Update(func(p *ChurchProjection) {
		p.Latitude, p.Longitude = copyFloat(latitude), copyFloat(longitude)
	})
	f.emit()
}

func (f *ChurchForm) pickWithoutMap(p domain.Position) error {
	if !p.Valid() {
		return geo.ErrPositionInvalid
	}
	lat, lng := geo.FieldsFromPosition(p, geo.OrderFromConfig(f.cfg.Map))
	f.setCoordinates(&lat, &lng)
	return nil
}

func (f *ChurchForm) mountMap(latitude, longitude *float64) {
	if f.adapter == nil {
		return
	}
	f.adapter.Sync(latitude, longitude)
	if err := f.adapter.Mount(); err != nil {
		f.logger.Warn("forms.church.map_mount_failed", "error", err)
	}
}

func (f *ChurchForm) editable() bool {
	if !f.projector.IsOpen() {
		return false
	}
	return f.projector.Mode() != projection.ModeView
}

func (f *ChurchForm) reset() {
	f.mu.Lock()
	watch := f.watch
	f.watch = nil
	f.errors = map[string]string{}
	f.saveErr = nil
	f.mu.Unlock()
	if watch != nil {
		watch.Close()
	}
}

func (f *ChurchForm) setErrors(errs validation.Errors) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors = map[string]string{}
	for key, err := range errs {
		f.errors[key] = err.Error()
	}
}

func (f *ChurchForm) emit() {
	if f.cfg.OnChange != nil {
		f.cfg.OnChange(f.State())
	}
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
