package commands

import (
	"github.com/spf13/cobra"

	"github.com/viddefe/go-viddefe/domain"
	"github.com/viddefe/go-viddefe/internal/people"
	"github.com/viddefe/go-viddefe/internal/render"
)

func peopleCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "people",
		Short: "Browse people",
	}

	var (
		flags  listFlags
		church string
		role   string
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List people, optionally of one church",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := people.Filter{Role: domain.PersonRole(role)}
			if church != "" {
				c, err := a.resolveChurch(cmd.Context(), church)
				if err != nil {
					return err
				}
				filter.ChurchID = &c.ID
			}
			rows, err := a.module.Container().NewPeopleList(filter)
			if err != nil {
				return err
			}
			defer rows.Close()
			if err := loadList(rows, flags); err != nil {
				return err
			}
			return render.PagedTable(cmd.OutOrStdout(), rows.Table(), a.styles)
		},
	}
	flags.bind(list, "firstName, lastName, email")
	list.Flags().StringVar(&church, "church", "", "church id, slug or name")
	list.Flags().StringVar(&role, "role", "", "person role")
	cmd.AddCommand(list)
	return cmd
}

func groupsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "groups",
		Short: "Browse home groups",
	}

	var flags listFlags
	list := &cobra.Command{
		Use:   "list <church>",
		Short: "List the home groups of a church",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			church, err := a.resolveChurch(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			rows, err := a.module.Container().NewGroupList(church.ID)
			if err != nil {
				return err
			}
			defer rows.Close()
			if err := loadList(rows, flags); err != nil {
				return err
			}
			return render.PagedTable(cmd.OutOrStdout(), rows.Table(), a.styles)
		},
	}
	flags.bind(list, "name")
	cmd.AddCommand(list)
	return cmd
}
