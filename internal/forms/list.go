package forms

import (
	"context"
	"errors"
	"sync"

	"github.com/viddefe/go-viddefe/domain"
	"github.com/viddefe/go-viddefe/internal/logging"
	"github.com/viddefe/go-viddefe/internal/paging"
	"github.com/viddefe/go-viddefe/internal/permissions"
	"github.com/viddefe/go-viddefe/pkg/interfaces"
)

var (
	ErrPageLoaderRequired = errors.New("forms: page loader is required")
	ErrListClosed         = errors.New("forms: list is closed")
)

// PageLoader reads one page from a service.
type PageLoader[T any] func(ctx context.Context, req domain.PageRequest) (domain.Page[T], error)

// ListConfig describes a server paginated list screen.
type ListConfig[T any] struct {
	Name         string
	Load         PageLoader[T]
	Columns      []paging.Column[T]
	Actions      []paging.RowAction[T]
	SortMap      paging.SortMap
	RowEnv       func(T) map[string]any
	Permission   string
	Capabilities permissions.Capabilities
	PageSize     int
	Logger       interfaces.Logger
	OnChange     func(ListState)
}

// ListState is the request status of a list.
type ListState struct {
	Loading    bool
	Err        error
	Page       int
	TotalPages int
	Total      int64
}

// List binds a manual paginator to a page loader. Every page, size or sort
// change issues a request; only the latest request may commit its response.
type List[T any] struct {
	cfg    ListConfig[T]
	logger interfaces.Logger
	pager  *paging.Manual[T]
	table  *paging.Table[T]

	mu      sync.Mutex
	token   uint64
	cancel  context.CancelFunc
	loading bool
	err     error
	closed  bool
	wg      sync.WaitGroup
}

// NewList builds a list. Nothing is fetched until Load.
func NewList[T any](cfg ListConfig[T]) (*List[T], error) {
	if cfg.Load == nil {
		return nil, ErrPageLoaderRequired
	}
	if cfg.Capabilities == nil {
		cfg.Capabilities = permissions.AllowAll()
	}
	l := &List[T]{cfg: cfg, logger: logging.Ensure(cfg.Logger)}
	l.pager = paging.NewManual[T](cfg.PageSize, l.fetch)

	opts := []paging.TableOption[T]{
		paging.WithSortMap[T](cfg.SortMap),
		paging.WithCapabilities[T](cfg.Capabilities),
	}
	if cfg.RowEnv != nil {
		opts = append(opts, paging.WithRowEnv(cfg.RowEnv))
	}
	table, err := paging.NewTable[T](l.pager, cfg.Columns, cfg.Actions, opts...)
	if err != nil {
		return nil, err
	}
	l.table = table
	return l, nil
}

// Load requests the current page.
func (l *List[T]) Load() error {
	if err := permissions.Require(l.cfg.Capabilities, l.cfg.Permission); err != nil {
		return err
	}
	l.mu.Lock()
	closed := l.closed
	l.mu.Unlock()
	if closed {
		return ErrListClosed
	}
	l.pager.Load()
	return nil
}

// RefreshKey reloads the current page. Any change to the resource may move
// rows across pages, so the key is not inspected.
func (l *List[T]) RefreshKey(string) {
	l.mu.Lock()
	closed := l.closed
	l.mu.Unlock()
	if !closed {
		l.pager.Load()
	}
}

// Wait blocks until no request is in flight.
func (l *List[T]) Wait() {
	l.wg.Wait()
}

// Table returns the table bound to the paginator.
func (l *List[T]) Table() *paging.Table[T] {
	return l.table
}

// Pager returns the manual paginator.
func (l *List[T]) Pager() *paging.Manual[T] {
	return l.pager
}

// State returns a snapshot of the request status.
func (l *List[T]) State() ListState {
	l.mu.Lock()
	st := ListState{Loading: l.loading, Err: l.err}
	l.mu.Unlock()
	st.Page = l.pager.Page()
	st.TotalPages = l.pager.TotalPages()
	st.Total = l.pager.TotalElements()
	return st
}

// Close cancels the pending request and ignores later responses.
func (l *List[T]) Close() {
	l.mu.Lock()
	l.closed = true
	l.token++
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.mu.Unlock()
}

func (l *List[T]) fetch(req domain.PageRequest) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	if l.cancel != nil {
		l.cancel()
	}
	l.token++
	token := l.token
	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	l.loading = true
	l.err = nil
	l.wg.Add(1)
	l.mu.Unlock()
	l.emit()

	go func() {
		defer l.wg.Done()
		defer cancel()
		page, err := l.cfg.Load(ctx, req)

		l.mu.Lock()
		if token != l.token {
			l.mu.Unlock()
			l.logger.Debug("forms.list.stale_response", "list", l.cfg.Name, "page", req.Page)
			return
		}
		l.loading = false
		l.cancel = nil
		if err != nil {
			l.err = err
		}
		l.mu.Unlock()

		if err != nil {
			l.logger.Warn("forms.list.load_failed", "list", l.cfg.Name, "page", req.Page, "error", err)
			l.emit()
			return
		}
		l.pager.Reply(req, page)
		l.emit()
	}()
}

func (l *List[T]) emit() {
	if l.cfg.OnChange != nil {
		l.cfg.OnChange(l.State())
	}
}
