package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-slug"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/viddefe/go-viddefe/domain"
	"github.com/viddefe/go-viddefe/internal/commands/churchcmd"
	"github.com/viddefe/go-viddefe/internal/forms"
	"github.com/viddefe/go-viddefe/internal/render"
)

var errInvalidInput = errors.New("invalid input")

func churchesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "churches",
		Aliases: []string{"church"},
		Short:   "List, show and edit churches",
	}
	cmd.AddCommand(
		churchListCmd(a),
		churchShowCmd(a),
		churchCreateCmd(a),
		churchEditCmd(a),
		churchDeleteCmd(a),
	)
	return cmd
}

type listFlags struct {
	page int
	sort string
	desc bool
}

func (f *listFlags) bind(cmd *cobra.Command, sortHelp string) {
	cmd.Flags().IntVar(&f.page, "page", 1, "page number")
	cmd.Flags().StringVar(&f.sort, "sort", "", "sort column ("+sortHelp+")")
	cmd.Flags().BoolVar(&f.desc, "desc", false, "sort descending")
}

// loadList applies the flags to list and waits for the resulting page.
func loadList[T any](list *forms.List[T], f listFlags) error {
	if err := list.Load(); err != nil {
		return err
	}
	if f.sort != "" {
		list.Table().ToggleSort(f.sort)
		if f.desc {
			list.Table().ToggleSort(f.sort)
		}
		if !list.Table().Sort().Active() {
			return fmt.Errorf("%w: column %q cannot be sorted", errInvalidInput, f.sort)
		}
	}
	list.Wait()
	if f.page > 1 {
		list.Pager().SetPage(f.page - 1)
		list.Wait()
	}
	return list.State().Err
}

func churchListCmd(a *app) *cobra.Command {
	var flags listFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List churches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, release, err := a.module.Container().NewChurchList(forms.ChurchListConfig{})
			if err != nil {
				return err
			}
			defer release()
			if err := loadList(list, flags); err != nil {
				return err
			}
			return render.PagedTable(cmd.OutOrStdout(), list.Table(), a.styles)
		},
	}
	flags.bind(cmd, "name, created")
	return cmd
}

func churchShowCmd(a *app) *cobra.Command {
	var groupPage int
	cmd := &cobra.Command{
		Use:   "show <id|slug|name>",
		Short: "Show a church with its members and home groups",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			church, err := a.resolveChurch(ctx, args[0])
			if err != nil {
				return err
			}
			view, err := a.module.LoadChurchView(ctx, church.ID, domain.PageRequest{Page: max(groupPage-1, 0), Size: a.module.Container().Config.Pagination.DefaultPageSize})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if err := render.Fields(out, view.Church.Name, render.ChurchFields(view.Church), a.styles); err != nil {
				return err
			}
			if len(view.Members) > 0 {
				rows := make([][]string, 0, len(view.Members))
				for _, p := range view.Members {
					rows = append(rows, []string{p.Ref().FullName(), p.Email, string(p.Role)})
				}
				fmt.Fprintln(out)
				if err := render.Table(out, []string{"Miembro", "Correo", "Rol"}, rows, a.styles); err != nil {
					return err
				}
			}
			if len(view.Groups.Content) > 0 {
				rows := make([][]string, 0, len(view.Groups.Content))
				for _, g := range view.Groups.Content {
					rows = append(rows, []string{g.Name, g.Leader.FullName()})
				}
				fmt.Fprintln(out)
				if err := render.Table(out, []string{"Grupo", "Líder"}, rows, a.styles); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&groupPage, "groups-page", 1, "page of home groups")
	return cmd
}

// churchFlags are the editable church fields. Only flags that were set are applied.
type churchFlags struct {
	name, email, phone, address, founded, pastor string
	state, city                                  int64
	lat, lng                                     float64
}

func (f *churchFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "church name")
	cmd.Flags().StringVar(&f.email, "email", "", "contact email")
	cmd.Flags().StringVar(&f.phone, "phone", "", "contact phone")
	cmd.Flags().StringVar(&f.address, "address", "", "street address")
	cmd.Flags().StringVar(&f.founded, "founded", "", "foundation date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.pastor, "pastor", "", "pastor person id")
	cmd.Flags().Int64Var(&f.state, "state", 0, "state id")
	cmd.Flags().Int64Var(&f.city, "city", 0, "city id (requires the state)")
	cmd.Flags().Float64Var(&f.lat, "lat", 0, "latitude")
	cmd.Flags().Float64Var(&f.lng, "lng", 0, "longitude")
}

func (f *churchFlags) apply(ctx context.Context, cmd *cobra.Command, form *forms.ChurchForm, changes notifier) error {
	changed := cmd.Flags().Changed
	form.Update(func(p *forms.ChurchProjection) {
		if changed("name") {
			p.Name = f.name
		}
		if changed("email") {
			p.Email = f.email
		}
		if changed("phone") {
			p.Phone = f.phone
		}
		if changed("address") {
			p.Address = f.address
		}
		if changed("founded") {
			p.FoundationDate = f.founded
		}
		if changed("pastor") {
			p.PastorID = f.pastor
		}
	})
	if changed("lat") || changed("lng") {
		values := form.State().Values
		lat, lng := values.Latitude, values.Longitude
		if changed("lat") {
			lat = &f.lat
		}
		if changed("lng") {
			lng = &f.lng
		}
		form.SetCoordinates(lat, lng)
	}
	if changed("state") {
		form.SetState(f.state)
	}
	if changed("city") {
		if err := changes.await(ctx, func() bool { return !form.State().Geo.CitiesLoading }); err != nil {
			return err
		}
		if err := form.SetCity(f.city); err != nil {
			return err
		}
	}
	return nil
}

func churchCreateCmd(a *app) *cobra.Command {
	var flags churchFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a church",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.saveChurch(cmd, &flags, nil)
		},
	}
	flags.bind(cmd)
	return cmd
}

func churchEditCmd(a *app) *cobra.Command {
	var flags churchFlags
	cmd := &cobra.Command{
		Use:   "edit <id|slug|name>",
		Short: "Edit a church; unset flags keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			church, err := a.resolveChurch(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.saveChurch(cmd, &flags, &church.ID)
		},
	}
	flags.bind(cmd)
	return cmd
}

func (a *app) saveChurch(cmd *cobra.Command, flags *churchFlags, id *uuid.UUID) error {
	ctx := cmd.Context()
	var saved *domain.Church
	changes := newNotifier()
	form, err := a.module.NewChurchForm(func(forms.ChurchFormState) { changes.signal() }, func(c *domain.Church) { saved = c })
	if err != nil {
		return err
	}
	defer form.Dispose()

	if id == nil {
		err = form.OpenCreate()
	} else {
		err = form.OpenEdit(ctx, *id)
		if err == nil {
			err = changes.await(ctx, func() bool {
				st := form.State()
				return st.Latched || st.Remote.Err != nil
			})
		}
		if err == nil {
			err = form.State().Remote.Err
		}
	}
	if err != nil {
		return err
	}
	if err := flags.apply(ctx, cmd, form, changes); err != nil {
		return err
	}

	ok, err := form.Save(ctx)
	if err != nil {
		return err
	}
	if !ok {
		_ = render.FieldErrors(cmd.ErrOrStderr(), form.FieldErrors(), a.styles)
		return fmt.Errorf("%w: church not saved", errInvalidInput)
	}
	if saved == nil {
		return nil
	}
	return render.Fields(cmd.OutOrStdout(), saved.Name, append([][2]string{{"Id", saved.ID.String()}, {"Slug", saved.Slug}}, render.ChurchFields(saved)...), a.styles)
}

func churchDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id|slug|name>",
		Short: "Delete a church",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			church, err := a.resolveChurch(ctx, args[0])
			if err != nil {
				return err
			}
			if err := a.module.Container().DeleteChurchHandler().Execute(ctx, churchcmd.DeleteChurchCommand{ID: church.ID}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Iglesia eliminada: %s\n", church.Name)
			return nil
		},
	}
}

// resolveChurch accepts an id, a slug or a name.
func (a *app) resolveChurch(ctx context.Context, ref string) (*domain.Church, error) {
	ref = strings.TrimSpace(ref)
	if id, err := uuid.Parse(ref); err == nil {
		return a.module.Churches().Get(ctx, id)
	}
	key, err := slug.Normalize(ref)
	if err != nil || key == "" {
		return nil, fmt.Errorf("%w: church %q", errNotFound, ref)
	}
	church, err := a.module.Churches().GetBySlug(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("church %q: %w", ref, err)
	}
	return church, nil
}

func parseID(kind, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s id %q", errInvalidInput, kind, raw)
	}
	return id, nil
}

func parseInt(kind, raw string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s id %q", errInvalidInput, kind, raw)
	}
	return v, nil
}
