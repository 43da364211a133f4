package paging

import (
	"slices"

	"github.com/viddefe/go-viddefe/domain"
)

// SortMap maps table column keys to server sort paths, for example
// "pastor" -> "pastor.firstName". Columns missing from the map sort by key.
type SortMap map[string]string

// Field resolves the server path of column.
func (m SortMap) Field(column string) string {
	if column == "" {
		return ""
	}
	if field, ok := m[column]; ok && field != "" {
		return field
	}
	return column
}

// Sort is the active column sort.
type Sort struct {
	Column    string
	Direction domain.SortDirection
}

// Active reports whether a sort is applied.
func (s Sort) Active() bool {
	return s.Column != "" && s.Direction != domain.SortNone
}

// Next returns the sort after the user toggles column. A new column starts
// ascending; the same column cycles asc -> desc -> none.
func (s Sort) Next(column string) Sort {
	if column == "" {
		return Sort{}
	}
	if s.Column != column || s.Direction == domain.SortNone {
		return Sort{Column: column, Direction: domain.SortAsc}
	}
	if s.Direction == domain.SortAsc {
		return Sort{Column: column, Direction: domain.SortDesc}
	}
	return Sort{}
}

func stableSort[T any](items []T, cmp func(a, b T) int) {
	slices.SortStableFunc(items, cmp)
}
