package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/viddefe/go-viddefe/internal/di"
	"github.com/viddefe/go-viddefe/internal/fixtures"
	"github.com/viddefe/go-viddefe/internal/runtimeconfig"
)

func newBrowser(t *testing.T, pageSize int) *Browser {
	t.Helper()
	cfg := runtimeconfig.DefaultConfig()
	cfg.Pagination.DefaultPageSize = pageSize
	container, err := di.NewContainer(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Close() })

	ctx := context.Background()
	require.NoError(t, container.EnsureSchema(ctx))
	seed, err := fixtures.Default()
	require.NoError(t, err)
	_, err = container.Seed(ctx, seed)
	require.NoError(t, err)

	loader, err := container.NewChurchViewLoader()
	require.NoError(t, err)
	browser, err := NewBrowser(container.NewChurchList, loader)
	require.NoError(t, err)
	t.Cleanup(browser.Close)
	return browser
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// settle waits for pending page requests and applies the change.
func settle(t *testing.T, b *Browser) {
	t.Helper()
	b.list.Wait()
	_, cmd := b.Update(listChangedMsg{})
	require.NotNil(t, cmd)
}

func TestBrowserPagesThroughChurches(t *testing.T) {
	b := newBrowser(t, 1)
	require.NotNil(t, b.Init())
	settle(t, b)

	require.Len(t, b.table.Rows(), 1)
	require.Contains(t, b.View(), "Página 1 de 2 · 2 registros")

	b.Update(key("s"))
	settle(t, b)
	require.Equal(t, "Iglesia Central", b.table.Rows()[0][0])

	b.Update(key("n"))
	settle(t, b)
	require.Equal(t, "Iglesia Norte", b.table.Rows()[0][0])
	require.Contains(t, b.View(), "Página 2 de 2")

	b.Update(key("n"))
	b.list.Wait()
	require.Equal(t, 1, b.list.Pager().Page())

	b.Update(key("p"))
	settle(t, b)
	require.Equal(t, "Iglesia Central", b.table.Rows()[0][0])
}

func TestBrowserOpensChurchDetail(t *testing.T) {
	b := newBrowser(t, 10)
	b.Init()
	settle(t, b)
	b.Update(key("s"))
	settle(t, b)
	b.Update(key("j"))

	_, cmd := b.Update(key("enter"))
	require.NotNil(t, cmd)
	b.Update(cmd())
	require.NotNil(t, b.detail)
	require.Equal(t, "Iglesia Norte", b.detail.Church.Name)

	out := b.View()
	require.Contains(t, out, "Iglesia Norte")
	require.Contains(t, out, "Miembros")
	require.Contains(t, out, "Lucía")

	b.Update(key("esc"))
	require.Nil(t, b.detail)
	require.Contains(t, b.View(), "Página 1 de 1")
}

func TestBrowserQuits(t *testing.T) {
	b := newBrowser(t, 10)
	_, cmd := b.Update(key("q"))
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())
}
