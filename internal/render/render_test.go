package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/viddefe/go-viddefe/internal/paging"
)

type member struct {
	Name string
	City string
}

func memberTable(t *testing.T, items []member) *paging.Table[member] {
	t.Helper()
	source := paging.NewAuto[member](2, map[string]func(a, b member) int{
		"name": func(a, b member) int { return strings.Compare(a.Name, b.Name) },
	})
	source.SetItems(items)
	table, err := paging.NewTable[member](source, []paging.Column[member]{
		{Key: "name", Title: "Nombre", Sortable: true, Value: func(m member) string { return m.Name }},
		{Key: "city", Title: "Ciudad", Value: func(m member) string { return m.City }},
	}, nil)
	require.NoError(t, err)
	return table
}

func TestPagedTableRendersPageAndSortMarker(t *testing.T) {
	table := memberTable(t, []member{{"Lucía", "Cúcuta"}, {"Jorge", "Pamplona"}, {"Ana", "Cúcuta"}})
	table.ToggleSort("name")

	var buf bytes.Buffer
	require.NoError(t, PagedTable(&buf, table, DefaultStyles()))

	out := buf.String()
	require.Contains(t, out, "Nombre ▲")
	require.Contains(t, out, "Ana")
	require.Contains(t, out, "Jorge")
	require.NotContains(t, out, "Lucía")
	require.Contains(t, out, "Página 1 de 2 · 3 registros")
}

func TestPagedTableEmpty(t *testing.T) {
	table := memberTable(t, nil)

	var buf bytes.Buffer
	require.NoError(t, PagedTable(&buf, table, DefaultStyles()))
	require.Contains(t, buf.String(), "Sin registros")
}

func TestFieldsAndErrors(t *testing.T) {
	var buf bytes.Buffer
	styles := DefaultStyles()
	require.NoError(t, Fields(&buf, "Iglesia Norte", [][2]string{{"Correo", "norte@example.org"}, {"Teléfono", ""}}, styles))
	require.NoError(t, FieldErrors(&buf, map[string]string{"phone": "requerido", "email": "inválido"}, styles))

	out := buf.String()
	require.Contains(t, out, "norte@example.org")
	require.Contains(t, out, "-")
	require.Less(t, strings.Index(out, "email: inválido"), strings.Index(out, "phone: requerido"))
}

func TestFooterClampsEmptyPages(t *testing.T) {
	source := paging.NewManual[member](10, nil)
	require.Equal(t, "Página 1 de 1 · 0 registros", Footer(source))
}
