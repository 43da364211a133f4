package paging

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/viddefe/go-viddefe/internal/permissions"
)

var (
	ErrSourceRequired  = errors.New("paging: source required")
	ErrActionNotFound  = errors.New("paging: action not found")
	ErrActionForbidden = errors.New("paging: action not available for row")
)

// Column describes one table column.
type Column[T any] struct {
	Key      string
	Title    string
	Width    int
	Sortable bool
	Value    func(T) string
}

// RowAction is an operation offered on a row. Permission gates the action on
// the injected capabilities; When is an optional expression evaluated against
// the row environment (for example `row.attended == false`).
type RowAction[T any] struct {
	Name       string
	Label      string
	Permission string
	When       string
	Run        func(ctx context.Context, row T) error

	program *vm.Program
}

// TableOption configures a Table.
type TableOption[T any] func(*Table[T])

// WithSortMap sets the column to server path mapping.
func WithSortMap[T any](m SortMap) TableOption[T] {
	return func(t *Table[T]) {
		t.sortMap = m
	}
}

// WithCapabilities sets the capability set used to filter row actions.
func WithCapabilities[T any](caps permissions.Capabilities) TableOption[T] {
	return func(t *Table[T]) {
		t.caps = caps
	}
}

// WithRowEnv sets the function exposing a row to action rules as `row`.
func WithRowEnv[T any](fn func(T) map[string]any) TableOption[T] {
	return func(t *Table[T]) {
		t.rowEnv = fn
	}
}

// Table binds a paginated source, its sort state, columns and row actions.
type Table[T any] struct {
	source  Source[T]
	columns []Column[T]
	actions []RowAction[T]
	sortMap SortMap
	caps    permissions.Capabilities
	rowEnv  func(T) map[string]any

	mu   sync.Mutex
	sort Sort
}

// NewTable builds a table. Action rules are compiled up front.
func NewTable[T any](source Source[T], columns []Column[T], actions []RowAction[T], opts ...TableOption[T]) (*Table[T], error) {
	if source == nil {
		return nil, ErrSourceRequired
	}
	t := &Table[T]{
		source:  source,
		columns: append([]Column[T](nil), columns...),
		caps:    permissions.AllowAll(),
	}
	for _, opt := range opts {
		opt(t)
	}

	t.actions = make([]RowAction[T], 0, len(actions))
	for _, action := range actions {
		if action.When != "" {
			program, err := expr.Compile(action.When,
				expr.Env(map[string]any{"row": map[string]any{}}),
				expr.AllowUndefinedVariables(),
				expr.AsBool(),
			)
			if err != nil {
				return nil, fmt.Errorf("paging: compile rule for action %q: %w", action.Name, err)
			}
			action.program = program
		}
		t.actions = append(t.actions, action)
	}
	return t, nil
}

// Source returns the underlying paginator.
func (t *Table[T]) Source() Source[T] {
	return t.source
}

// Columns returns the column definitions.
func (t *Table[T]) Columns() []Column[T] {
	return append([]Column[T](nil), t.columns...)
}

// Sort returns the active sort.
func (t *Table[T]) Sort() Sort {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sort
}

// ToggleSort advances the sort of column and resets to the first page.
// Columns that are not sortable are ignored.
func (t *Table[T]) ToggleSort(column string) Sort {
	if !t.sortable(column) {
		return t.Sort()
	}
	t.mu.Lock()
	t.sort = t.sort.Next(column)
	sort := t.sort
	t.mu.Unlock()

	field := ""
	if sort.Active() {
		field = t.sortMap.Field(sort.Column)
	}
	t.source.ApplySort(sort, field)
	return sort
}

// Rows returns the current page rows.
func (t *Table[T]) Rows() []T {
	return t.source.Rows()
}

// Cells renders the current page as strings in column order.
func (t *Table[T]) Cells() [][]string {
	rows := t.source.Rows()
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		cells := make([]string, len(t.columns))
		for i, col := range t.columns {
			if col.Value != nil {
				cells[i] = col.Value(row)
			}
		}
		out = append(out, cells)
	}
	return out
}

// Actions returns the actions available on row.
func (t *Table[T]) Actions(row T) []RowAction[T] {
	out := make([]RowAction[T], 0, len(t.actions))
	for _, action := range t.actions {
		if t.available(action, row) {
			out = append(out, action)
		}
	}
	return out
}

// Run executes the named action on row when it is available.
func (t *Table[T]) Run(ctx context.Context, name string, row T) error {
	for _, action := range t.actions {
		if action.Name != name {
			continue
		}
		if !t.available(action, row) {
			return ErrActionForbidden
		}
		if action.Run == nil {
			return nil
		}
		return action.Run(ctx, row)
	}
	return ErrActionNotFound
}

func (t *Table[T]) available(action RowAction[T], row T) bool {
	if action.Permission != "" && !permissions.Allowed(t.caps, action.Permission) {
		return false
	}
	if action.program == nil {
		return true
	}
	env := map[string]any{"row": map[string]any{}}
	if t.rowEnv != nil {
		if values := t.rowEnv(row); values != nil {
			env["row"] = values
		}
	}
	out, err := expr.Run(action.program, env)
	if err != nil {
		return false
	}
	ok, _ := out.(bool)
	return ok
}

func (t *Table[T]) sortable(column string) bool {
	for _, col := range t.columns {
		if col.Key == column {
			return col.Sortable
		}
	}
	return false
}
