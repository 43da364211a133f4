package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/viddefe/go-viddefe/domain"
	"github.com/viddefe/go-viddefe/internal/forms"
	"github.com/viddefe/go-viddefe/internal/render"
)

func offeringsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "offerings",
		Aliases: []string{"offering"},
		Short:   "Register meeting offerings",
	}

	var (
		typeID                int64
		amount, person, notes string
	)
	add := &cobra.Command{
		Use:   "add <meeting-id>",
		Short: "Register an offering for a meeting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			meetingID, err := parseID("meeting", args[0])
			if err != nil {
				return err
			}
			var saved *domain.Offering
			modal, err := a.module.NewOfferingModal(func(o *domain.Offering) { saved = o })
			if err != nil {
				return err
			}
			if err := modal.Open(ctx, meetingID); err != nil {
				return err
			}
			defer modal.Close()

			changed := cmd.Flags().Changed
			modal.Update(func(d *forms.OfferingDraft) {
				if changed("type") {
					d.TypeID = typeID
				}
				d.Amount = amount
				d.PersonID = person
				d.Notes = notes
			})
			ok, err := modal.Save(ctx)
			if err != nil {
				return err
			}
			if !ok {
				_ = render.FieldErrors(cmd.ErrOrStderr(), modal.State().Errors, a.styles)
				return fmt.Errorf("%w: offering not registered", errInvalidInput)
			}
			if saved == nil {
				return nil
			}
			typeName := ""
			if saved.Type != nil {
				typeName = saved.Type.Name
			}
			return render.Fields(cmd.OutOrStdout(), "Ofrenda registrada", [][2]string{
				{"Id", saved.ID.String()},
				{"Tipo", typeName},
				{"Monto", strconv.FormatFloat(saved.Amount, 'f', 2, 64)},
				{"Persona", saved.Person.FullName()},
			}, a.styles)
		},
	}
	add.Flags().Int64Var(&typeID, "type", 0, "offering type id (default the first type)")
	add.Flags().StringVar(&amount, "amount", "", "amount, e.g. 150,50")
	add.Flags().StringVar(&person, "person", "", "person id")
	add.Flags().StringVar(&notes, "notes", "", "notes")

	types := &cobra.Command{
		Use:   "types",
		Short: "List offering types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := a.module.Offerings().Types(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(list))
			for _, t := range list {
				rows = append(rows, []string{strconv.FormatInt(t.ID, 10), t.Name})
			}
			return render.Table(cmd.OutOrStdout(), []string{"Id", "Tipo"}, rows, a.styles)
		},
	}
	cmd.AddCommand(add, types)
	return cmd
}
