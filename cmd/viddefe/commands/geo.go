package commands

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/viddefe/go-viddefe/internal/render"
)

func geoCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "geo",
		Short: "States and cities catalog",
	}
	states := &cobra.Command{
		Use:   "states",
		Short: "List states",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := a.module.Geo().ListStates(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(list))
			for _, s := range list {
				rows = append(rows, []string{strconv.FormatInt(s.ID, 10), s.Name})
			}
			return render.Table(cmd.OutOrStdout(), []string{"Id", "Departamento"}, rows, a.styles)
		},
	}
	cities := &cobra.Command{
		Use:   "cities <state-id>",
		Short: "List the cities of a state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stateID, err := parseInt("state", args[0])
			if err != nil {
				return err
			}
			list, err := a.module.Geo().ListCities(cmd.Context(), stateID)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(list))
			for _, c := range list {
				rows = append(rows, []string{strconv.FormatInt(c.ID, 10), c.Name})
			}
			return render.Table(cmd.OutOrStdout(), []string{"Id", "Ciudad"}, rows, a.styles)
		},
	}
	cmd.AddCommand(states, cities)
	return cmd
}
