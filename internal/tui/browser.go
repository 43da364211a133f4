package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/viddefe/go-viddefe/domain"
	"github.com/viddefe/go-viddefe/internal/forms"
	"github.com/viddefe/go-viddefe/internal/render"
)

var (
	ErrListFactoryRequired = errors.New("tui: church list factory is required")
	ErrViewLoaderRequired  = errors.New("tui: church view loader is required")
)

// ListFactory builds the church list and returns its release func.
type ListFactory func(cfg forms.ChurchListConfig) (*forms.List[*domain.Church], func(), error)

// ViewLoader loads the church detail screen.
type ViewLoader interface {
	Load(ctx context.Context, id uuid.UUID, groups domain.PageRequest) (forms.ChurchView, error)
}

type listChangedMsg struct{}

type viewLoadedMsg struct {
	view forms.ChurchView
	err  error
}

// Browser pages through churches and opens their detail.
type Browser struct {
	list    *forms.List[*domain.Church]
	release func()
	loader  ViewLoader
	changes chan struct{}

	table  table.Model
	styles render.Styles
	frame  lipgloss.Style

	detail *forms.ChurchView
	err    error
	width  int
	height int
}

// NewBrowser builds the browser. Close releases the list once the program ends.
func NewBrowser(lists ListFactory, loader ViewLoader) (*Browser, error) {
	if lists == nil {
		return nil, ErrListFactoryRequired
	}
	if loader == nil {
		return nil, ErrViewLoaderRequired
	}
	b := &Browser{
		loader:  loader,
		changes: make(chan struct{}, 1),
		styles:  render.DefaultStyles(),
		frame:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")),
	}
	list, release, err := lists(forms.ChurchListConfig{OnChange: b.notify})
	if err != nil {
		return nil, err
	}
	b.list, b.release = list, release

	columns := list.Table().Columns()
	cols := make([]table.Column, 0, len(columns))
	for _, column := range columns {
		cols = append(cols, table.Column{Title: column.Title, Width: column.Width})
	}
	b.table = table.New(
		table.WithColumns(cols),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	return b, nil
}

// Init requests the first page.
func (b *Browser) Init() tea.Cmd {
	if err := b.list.Load(); err != nil {
		b.err = err
		return nil
	}
	return b.waitForChange()
}

// Update handles messages.
func (b *Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case listChangedMsg:
		b.syncRows()
		return b, b.waitForChange()
	case viewLoadedMsg:
		if msg.err != nil {
			b.err = msg.err
			return b, nil
		}
		view := msg.view
		b.detail, b.err = &view, nil
		return b, nil
	case tea.WindowSizeMsg:
		b.width, b.height = msg.Width, msg.Height
		b.table.SetWidth(msg.Width - 4)
		b.table.SetHeight(max(msg.Height-8, 3))
		return b, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return b, tea.Quit
		case "esc":
			b.detail, b.err = nil, nil
			return b, nil
		}
		if b.detail != nil {
			return b, nil
		}
		switch msg.String() {
		case "right", "n":
			b.list.Pager().SetPage(b.list.Pager().Page() + 1)
			return b, nil
		case "left", "p":
			b.list.Pager().SetPage(b.list.Pager().Page() - 1)
			return b, nil
		case "s":
			b.list.Table().ToggleSort("name")
			return b, nil
		case "c":
			b.list.Table().ToggleSort("created")
			return b, nil
		case "r":
			b.list.RefreshKey("")
			return b, nil
		case "enter":
			return b, b.openSelected()
		}
	}

	var cmd tea.Cmd
	b.table, cmd = b.table.Update(msg)
	return b, cmd
}

// View renders the list or the open detail.
func (b *Browser) View() string {
	var sb strings.Builder
	sb.WriteString(b.styles.Title.Render(" Iglesias "))
	sb.WriteString("\n\n")

	if b.err != nil {
		sb.WriteString(b.styles.Error.Render(b.err.Error()))
		sb.WriteString("\n\n")
	}
	if b.detail != nil {
		sb.WriteString(b.renderDetail())
		sb.WriteString(b.styles.Muted.Render("[esc] volver  [q] salir"))
		return sb.String()
	}

	sb.WriteString(b.frame.Render(b.table.View()))
	sb.WriteString("\n")
	st := b.list.State()
	status := render.Footer(b.list.Pager())
	if st.Loading {
		status += " · cargando"
	}
	sb.WriteString(b.styles.Muted.Render(status))
	sb.WriteString("\n")
	sb.WriteString(b.styles.Muted.Render("[←/→] página  [s] nombre  [c] fecha  [enter] ver  [r] recargar  [q] salir"))
	return sb.String()
}

// Close releases the church list.
func (b *Browser) Close() {
	if b.release != nil {
		b.release()
	}
}

func (b *Browser) notify(forms.ListState) {
	select {
	case b.changes <- struct{}{}:
	default:
	}
}

func (b *Browser) waitForChange() tea.Cmd {
	changes := b.changes
	return func() tea.Msg {
		<-changes
		return listChangedMsg{}
	}
}

func (b *Browser) syncRows() {
	st := b.list.State()
	b.err = st.Err
	cells := b.list.Table().Cells()
	rows := make([]table.Row, 0, len(cells))
	for _, cell := range cells {
		rows = append(rows, table.Row(cell))
	}
	b.table.SetRows(rows)
	if cursor := b.table.Cursor(); cursor >= len(rows) {
		b.table.SetCursor(max(len(rows)-1, 0))
	}
}

func (b *Browser) selected() *domain.Church {
	rows := b.list.Table().Rows()
	cursor := b.table.Cursor()
	if cursor < 0 || cursor >= len(rows) {
		return nil
	}
	return rows[cursor]
}

func (b *Browser) openSelected() tea.Cmd {
	church := b.selected()
	if church == nil {
		return nil
	}
	loader, id := b.loader, church.ID
	return func() tea.Msg {
		view, err := loader.Load(context.Background(), id, domain.PageRequest{Size: 5})
		return viewLoadedMsg{view: view, err: err}
	}
}

func (b *Browser) renderDetail() string {
	c := b.detail.Church
	if c == nil {
		return ""
	}
	var sb strings.Builder
	_ = render.Fields(&sb, c.Name, render.ChurchFields(c), b.styles)
	sb.WriteString("\n")

	members := make([]string, 0, len(b.detail.Members))
	for _, person := range b.detail.Members {
		members = append(members, person.Ref().FullName())
	}
	groups := make([]string, 0, len(b.detail.Groups.Content))
	for _, group := range b.detail.Groups.Content {
		groups = append(groups, group.Name)
	}
	_ = render.Fields(&sb, "Comunidad", [][2]string{
		{"Miembros", strings.Join(members, ", ")},
		{"Grupos", fmt.Sprintf("%s (%d)", strings.Join(groups, ", "), b.detail.Groups.TotalElements)},
	}, b.styles)
	sb.WriteString("\n")
	return sb.String()
}
