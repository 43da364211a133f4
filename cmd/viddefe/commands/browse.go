package commands

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/viddefe/go-viddefe/internal/tui"
)

func browseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse churches interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			container := a.module.Container()
			loader, err := container.NewChurchViewLoader()
			if err != nil {
				return err
			}
			browser, err := tui.NewBrowser(container.NewChurchList, loader)
			if err != nil {
				return err
			}
			defer browser.Close()
			_, err = tea.NewProgram(browser, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
}
