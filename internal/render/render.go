package render

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/viddefe/go-viddefe/domain"
	"github.com/viddefe/go-viddefe/internal/paging"
)

// Styles groups the lipgloss styles used by command output.
type Styles struct {
	Title  lipgloss.Style
	Header lipgloss.Style
	Cell   lipgloss.Style
	Key    lipgloss.Style
	Muted  lipgloss.Style
	Error  lipgloss.Style
	Border lipgloss.Style
}

// DefaultStyles returns the styles used by the CLI.
func DefaultStyles() Styles {
	return Styles{
		Title:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")),
		Header: lipgloss.NewStyle().Bold(true).Padding(0, 1),
		Cell:   lipgloss.NewStyle().Padding(0, 1),
		Key:    lipgloss.NewStyle().Bold(true).Width(18),
		Muted:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Error:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Border: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

// Table writes headers and rows as a bordered table.
func Table(w io.Writer, headers []string, rows [][]string, styles Styles) error {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styles.Border).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.Header
			}
			return styles.Cell
		})
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// PagedTable writes the current page of t followed by a page footer. The
// sorted column carries an arrow in its header.
func PagedTable[T any](w io.Writer, t *paging.Table[T], styles Styles) error {
	columns := t.Columns()
	sort := t.Sort()
	headers := make([]string, 0, len(columns))
	for _, column := range columns {
		headers = append(headers, column.Title+sortMarker(sort, column.Key))
	}
	cells := t.Cells()
	if len(cells) == 0 {
		if _, err := fmt.Fprintln(w, styles.Muted.Render("Sin registros")); err != nil {
			return err
		}
		return nil
	}
	if err := Table(w, headers, cells, styles); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, styles.Muted.Render(Footer(t.Source())))
	return err
}

// Footer describes the page position of p, for example "Página 1 de 3 · 25 registros".
func Footer(p paging.Paginator) string {
	pages := p.TotalPages()
	if pages < 1 {
		pages = 1
	}
	return fmt.Sprintf("Página %d de %d · %d registros", p.Page()+1, pages, p.TotalElements())
}

// Fields writes a titled key/value list. Empty values render as a dash.
func Fields(w io.Writer, title string, pairs [][2]string, styles Styles) error {
	var b strings.Builder
	b.WriteString(styles.Title.Render(title))
	b.WriteString("\n")
	for _, pair := range pairs {
		value := pair[1]
		if strings.TrimSpace(value) == "" {
			value = styles.Muted.Render("-")
		}
		b.WriteString(styles.Key.Render(pair[0]))
		b.WriteString(value)
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// FieldErrors writes validation messages sorted by field.
func FieldErrors(w io.Writer, errs map[string]string, styles Styles) error {
	keys := make([]string, 0, len(errs))
	for key := range errs {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		if _, err := fmt.Fprintln(w, styles.Error.Render(key+": "+errs[key])); err != nil {
			return err
		}
	}
	return nil
}

// ChurchFields lists the displayed attributes of c.
func ChurchFields(c *domain.Church) [][2]string {
	location := ""
	if c.City != nil {
		location = c.City.Name
	}
	if c.State != nil {
		location = strings.TrimPrefix(location+", "+c.State.Name, ", ")
	}
	coords := ""
	if c.Latitude != nil && c.Longitude != nil {
		coords = fmt.Sprintf("%.5f, %.5f", *c.Latitude, *c.Longitude)
	}
	return [][2]string{
		{"Pastor", c.Pastor.FullName()},
		{"Correo", c.Email},
		{"Teléfono", c.Phone},
		{"Dirección", c.Address},
		{"Ubicación", location},
		{"Coordenadas", coords},
	}
}

func sortMarker(sort paging.Sort, column string) string {
	if sort.Column != column {
		return ""
	}
	switch sort.Direction {
	case domain.SortAsc:
		return " ▲"
	case domain.SortDesc:
		return " ▼"
	default:
		return ""
	}
}
