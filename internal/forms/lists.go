package forms

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/viddefe/go-viddefe/domain"
	"github.com/viddefe/go-viddefe/internal/churches"
	"github.com/viddefe/go-viddefe/internal/homegroups"
	"github.com/viddefe/go-viddefe/internal/meetings"
	"github.com/viddefe/go-viddefe/internal/paging"
	"github.com/viddefe/go-viddefe/internal/people"
	"github.com/viddefe/go-viddefe/internal/permissions"
	"github.com/viddefe/go-viddefe/pkg/interfaces"
)

const (
	ActionView   = "view"
	ActionEdit   = "edit"
	ActionDelete = "delete"
)

var ErrChurchServiceRequired = errors.New("forms: church service is required")

// RowHandler runs a row action.
type RowHandler[T any] func(ctx context.Context, row T) error

// ChurchListConfig wires the church list. Row actions are offered only for
// the handlers that are set.
type ChurchListConfig struct {
	Churches     churches.Service
	Capabilities permissions.Capabilities
	PageSize     int
	Logger       interfaces.Logger
	OnChange     func(ListState)
	View         RowHandler[*domain.Church]
	Edit         RowHandler[*domain.Church]
	Delete       RowHandler[*domain.Church]
}

// ChurchColumns are the columns of the church list.
func ChurchColumns() []paging.Column[*domain.Church] {
	return []paging.Column[*domain.Church]{
		{Key: "name", Title: "Nombre", Width: 28, Sortable: true, Value: func(c *domain.Church) string { return c.Name }},
		{Key: "pastor", Title: "Pastor", Width: 24, Value: func(c *domain.Church) string { return c.Pastor.FullName() }},
		{Key: "city", Title: "Ciudad", Width: 18, Value: func(c *domain.Church) string { return cityName(c.City) }},
		{Key: "email", Title: "Correo", Width: 26, Value: func(c *domain.Church) string { return c.Email }},
		{Key: "created", Title: "Creada", Width: 12, Sortable: true, Value: func(c *domain.Church) string { return formatDate(c.CreatedAt) }},
	}
}

// NewChurchList builds the server paginated church list.
func NewChurchList(cfg ChurchListConfig) (*List[*domain.Church], error) {
	if cfg.Churches == nil {
		return nil, ErrChurchServiceRequired
	}
	perms := permissions.ResourcePermissions(permissions.ResourceChurches)
	var actions []paging.RowAction[*domain.Church]
	if cfg.View != nil {
		actions = append(actions, paging.RowAction[*domain.Church]{Name: ActionView, Label: "Ver", Permission: perms.Read, Run: cfg.View})
	}
	if cfg.Edit != nil {
		actions = append(actions, paging.RowAction[*domain.Church]{Name: ActionEdit, Label: "Editar", Permission: perms.Update, Run: cfg.Edit})
	}
	if cfg.Delete != nil {
		actions = append(actions, paging.RowAction[*domain.Church]{Name: ActionDelete, Label: "Eliminar", Permission: perms.Delete, Run: cfg.Delete})
	}
	return NewList(ListConfig[*domain.Church]{
		Name:         permissions.ResourceChurches,
		Load:         cfg.Churches.List,
		Columns:      ChurchColumns(),
		Actions:      actions,
		SortMap:      paging.SortMap{"created": "createdAt"},
		Permission:   perms.Read,
		Capabilities: cfg.Capabilities,
		PageSize:     cfg.PageSize,
		Logger:       cfg.Logger,
		OnChange:     cfg.OnChange,
	})
}

// NewPeopleList builds the person list, optionally restricted to one church.
func NewPeopleList(service people.Service, filter people.Filter, caps permissions.Capabilities, pageSize int, logger interfaces.Logger) (*List[*domain.Person], error) {
	if service == nil {
		return nil, ErrPeopleServiceRequired
	}
	return NewList(ListConfig[*domain.Person]{
		Name: permissions.ResourcePeople,
		Load: func(ctx context.Context, req domain.PageRequest) (domain.Page[*domain.Person], error) {
			return service.List(ctx, filter, req)
		},
		Columns: []paging.Column[*domain.Person]{
			{Key: "id", Title: "Id", Width: 36, Value: func(p *domain.Person) string { return p.ID.String() }},
			{Key: "firstName", Title: "Nombre", Width: 18, Sortable: true, Value: func(p *domain.Person) string { return p.FirstName }},
			{Key: "lastName", Title: "Apellido", Width: 18, Sortable: true, Value: func(p *domain.Person) string { return p.LastName }},
			{Key: "email", Title: "Correo", Width: 26, Sortable: true, Value: func(p *domain.Person) string { return p.Email }},
			{Key: "role", Title: "Rol", Width: 10, Value: func(p *domain.Person) string { return string(p.Role) }},
		},
		Permission:   permissions.Join(permissions.ResourcePeople, permissions.ActionRead),
		Capabilities: caps,
		PageSize:     pageSize,
		Logger:       logger,
	})
}

// NewGroupList builds the home group list of a church.
func NewGroupList(service homegroups.Service, churchID uuid.UUID, caps permissions.Capabilities, pageSize int, logger interfaces.Logger) (*List[*domain.HomeGroup], error) {
	if service == nil {
		return nil, ErrGroupServiceRequired
	}
	return NewList(ListConfig[*domain.HomeGroup]{
		Name: permissions.ResourceGroups,
		Load: func(ctx context.Context, req domain.PageRequest) (domain.Page[*domain.HomeGroup], error) {
			return service.List(ctx, churchID, req)
		},
		Columns: []paging.Column[*domain.HomeGroup]{
			{Key: "name", Title: "Nombre", Width: 24, Sortable: true, Value: func(g *domain.HomeGroup) string { return g.Name }},
			{Key: "leader", Title: "Líder", Width: 24, Value: func(g *domain.HomeGroup) string { return g.Leader.FullName() }},
			{Key: "city", Title: "Ciudad", Width: 18, Value: func(g *domain.HomeGroup) string { return cityName(g.City) }},
		},
		Permission:   permissions.Join(permissions.ResourceGroups, permissions.ActionRead),
		Capabilities: caps,
		PageSize:     pageSize,
		Logger:       logger,
	})
}

// NewMeetingList builds the meeting list, newest first unless sorted.
func NewMeetingList(service meetings.Service, filter meetings.Filter, caps permissions.Capabilities, pageSize int, logger interfaces.Logger) (*List[*domain.Meeting], error) {
	if service == nil {
		return nil, ErrMeetingServiceRequired
	}
	return NewList(ListConfig[*domain.Meeting]{
		Name: permissions.ResourceMeetings,
		Load: func(ctx context.Context, req domain.PageRequest) (domain.Page[*domain.Meeting], error) {
			return service.List(ctx, filter, req)
		},
		Columns: []paging.Column[*domain.Meeting]{
			{Key: "id", Title: "Id", Width: 36, Value: func(m *domain.Meeting) string { return m.ID.String() }},
			{Key: "name", Title: "Nombre", Width: 24, Sortable: true, Value: func(m *domain.Meeting) string { return m.Name }},
			{Key: "date", Title: "Fecha", Width: 16, Sortable: true, Value: func(m *domain.Meeting) string { return m.Date.Format("2006-01-02 15:04") }},
			{Key: "type", Title: "Tipo", Width: 8, Value: func(m *domain.Meeting) string { return string(m.Type) }},
		},
		Permission:   permissions.Join(permissions.ResourceMeetings, permissions.ActionRead),
		Capabilities: caps,
		PageSize:     pageSize,
		Logger:       logger,
	})
}

func cityName(c *domain.City) string {
	if c == nil {
		return ""
	}
	return c.Name
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
