package forms

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/viddefe/go-viddefe/domain"
	"github.com/viddefe/go-viddefe/internal/homegroups"
	"github.com/viddefe/go-viddefe/internal/logging"
	"github.com/viddefe/go-viddefe/internal/people"
	"github.com/viddefe/go-viddefe/internal/permissions"
	"github.com/viddefe/go-viddefe/internal/query"
	"github.com/viddefe/go-viddefe/pkg/interfaces"
)

var (
	ErrGroupServiceRequired  = errors.New("forms: home group service is required")
	ErrPeopleServiceRequired = errors.New("forms: people service is required")
)

// ChurchView is the detail screen of a church.
type ChurchView struct {
	Church  *domain.Church
	Groups  domain.Page[*domain.HomeGroup]
	Members []*domain.Person
}

// ChurchViewLoader fetches the parts of a ChurchView concurrently.
type ChurchViewLoader struct {
	churches     *query.Client[uuid.UUID, *domain.Church]
	groups       homegroups.Service
	people       people.Service
	capabilities permissions.Capabilities
	logger       interfaces.Logger
}

// NewChurchViewLoader wires the loader.
func NewChurchViewLoader(churches *query.Client[uuid.UUID, *domain.Church], groups homegroups.Service, people people.Service, caps permissions.Capabilities, logger interfaces.Logger) (*ChurchViewLoader, error) {
	if churches == nil {
		return nil, ErrChurchQueryRequired
	}
	if groups == nil {
		return nil, ErrGroupServiceRequired
	}
	if people == nil {
		return nil, ErrPeopleServiceRequired
	}
	return &ChurchViewLoader{
		churches:     churches,
		groups:       groups,
		people:       people,
		capabilities: caps,
		logger:       logging.Ensure(logger),
	}, nil
}

// Load reads the church, one page of its groups and its members. Groups and
// members are only requested when the capability set allows reading them.
func (l *ChurchViewLoader) Load(ctx context.Context, id uuid.UUID, groups domain.PageRequest) (ChurchView, error) {
	if err := permissions.Require(l.capabilities, permissions.Join(permissions.ResourceChurches, permissions.ActionRead)); err != nil {
		return ChurchView{}, err
	}

	var view ChurchView
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res := l.churches.Fetch(gctx, id)
		if res.Err != nil {
			return res.Err
		}
		view.Church = res.Data
		return nil
	})
	if permissions.Allowed(l.capabilities, permissions.Join(permissions.ResourceGroups, permissions.ActionRead)) {
		g.Go(func() error {
			page, err := l.groups.List(gctx, id, groups)
			if err != nil {
				return err
			}
			view.Groups = page
			return nil
		})
	}
	if permissions.Allowed(l.capabilities, permissions.Join(permissions.ResourcePeople, permissions.ActionRead)) {
		g.Go(func() error {
			members, err := l.people.ListByChurch(gctx, id)
			if err != nil {
				return err
			}
			view.Members = members
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		l.logger.Warn("forms.church_view.load_failed", "church_id", id.String(), "error", err)
		return ChurchView{}, err
	}
	if view.Groups.Content == nil {
		view.Groups = domain.NewPage[*domain.HomeGroup](nil, 0, groups)
	}
	return view, nil
}
