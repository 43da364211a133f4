package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	viddefe "github.com/viddefe/go-viddefe"
	"github.com/viddefe/go-viddefe/internal/fixtures"
	"github.com/viddefe/go-viddefe/internal/render"
)

func seedCmd(a *app) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the demo data, or a YAML seed file, into the active store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				seed viddefe.Seed
				err  error
			)
			if file != "" {
				seed, err = fixtures.ReadFile(file)
			} else {
				seed, err = viddefe.DefaultSeed()
			}
			if err != nil {
				return fmt.Errorf("read seed: %w", err)
			}
			summary, err := a.module.Seed(cmd.Context(), seed)
			if err != nil {
				return err
			}
			count := func(n int) string { return strconv.Itoa(n) }
			return render.Fields(cmd.OutOrStdout(), "Datos cargados", [][2]string{
				{"Departamentos", count(summary.States)},
				{"Ciudades", count(summary.Cities)},
				{"Personas", count(summary.People)},
				{"Iglesias", count(summary.Churches)},
				{"Tipos de ofrenda", count(summary.OfferingTypes)},
				{"Omitidos", count(summary.Skipped)},
			}, a.styles)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "seed file (YAML)")
	return cmd
}
