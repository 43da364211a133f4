package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/viddefe/go-viddefe/domain"
	"github.com/viddefe/go-viddefe/internal/commands/meetingcmd"
	"github.com/viddefe/go-viddefe/internal/forms"
	"github.com/viddefe/go-viddefe/internal/meetings"
	"github.com/viddefe/go-viddefe/internal/render"
)

const meetingDateLayout = "2006-01-02 15:04"

func meetingsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "meetings",
		Aliases: []string{"meeting"},
		Short:   "Meetings and attendance",
	}
	cmd.AddCommand(meetingListCmd(a), meetingCreateCmd(a), meetingShowCmd(a), meetingAttendCmd(a))
	return cmd
}

func meetingListCmd(a *app) *cobra.Command {
	var flags listFlags
	cmd := &cobra.Command{
		Use:   "list <church>",
		Short: "List the meetings of a church",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			church, err := a.resolveChurch(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			list, err := a.module.Container().NewMeetingList(meetings.Filter{ChurchID: &church.ID})
			if err != nil {
				return err
			}
			defer list.Close()
			if err := loadList(list, flags); err != nil {
				return err
			}
			return render.PagedTable(cmd.OutOrStdout(), list.Table(), a.styles)
		},
	}
	flags.bind(cmd, "name, date")
	return cmd
}

func meetingCreateCmd(a *app) *cobra.Command {
	var (
		name, description, date, kind, group string
	)
	cmd := &cobra.Command{
		Use:   "create <church>",
		Short: "Schedule a meeting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			church, err := a.resolveChurch(ctx, args[0])
			if err != nil {
				return err
			}
			msg := meetingcmd.SaveMeetingCommand{
				ChurchID:    church.ID,
				Kind:        domain.MeetingType(strings.ToLower(kind)),
				Name:        name,
				Description: description,
			}
			if date != "" {
				when, err := time.ParseInLocation(meetingDateLayout, date, time.Local)
				if err != nil {
					return fmt.Errorf("%w: date must use %q", errInvalidInput, meetingDateLayout)
				}
				msg.Date = when
			}
			if group != "" {
				id, err := parseID("group", group)
				if err != nil {
					return err
				}
				msg.GroupID = &id
			}
			meeting, err := a.module.Container().SaveMeetingHandler().Save(ctx, msg)
			if err != nil {
				return err
			}
			return render.Fields(cmd.OutOrStdout(), meeting.Name, [][2]string{
				{"Id", meeting.ID.String()},
				{"Fecha", meeting.Date.Format(meetingDateLayout)},
				{"Tipo", string(meeting.Type)},
			}, a.styles)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "meeting name")
	cmd.Flags().StringVar(&description, "description", "", "description")
	cmd.Flags().StringVar(&date, "date", time.Now().Format(meetingDateLayout), "date ("+meetingDateLayout+")")
	cmd.Flags().StringVar(&kind, "type", string(domain.MeetingWorship), "worship or group")
	cmd.Flags().StringVar(&group, "group", "", "home group id for group meetings")
	return cmd
}

func meetingShowCmd(a *app) *cobra.Command {
	var flags listFlags
	cmd := &cobra.Command{
		Use:   "show <meeting-id>",
		Short: "Show a meeting with its attendance list and offerings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("meeting", args[0])
			if err != nil {
				return err
			}
			detail, release, _, err := a.openMeeting(cmd, id)
			if err != nil {
				return err
			}
			defer release()

			table := detail.Table()
			if flags.sort != "" {
				table.ToggleSort(flags.sort)
				if flags.desc {
					table.ToggleSort(flags.sort)
				}
			}
			if flags.page > 1 {
				table.Source().SetPage(flags.page - 1)
			}

			st := detail.State()
			out := cmd.OutOrStdout()
			if err := render.Fields(out, st.Meeting.Name, [][2]string{
				{"Fecha", st.Meeting.Date.Format(meetingDateLayout)},
				{"Tipo", string(st.Meeting.Type)},
				{"Asistencia", fmt.Sprintf("%d de %d", st.Attended, st.Expected)},
				{"Ofrendas", fmt.Sprintf("%.2f", st.OfferingTotal)},
			}, a.styles); err != nil {
				return err
			}
			fmt.Fprintln(out)
			if err := render.PagedTable(out, table, a.styles); err != nil {
				return err
			}
			if len(st.Offerings) == 0 {
				return nil
			}
			rows := make([][]string, 0, len(st.Offerings))
			for _, o := range st.Offerings {
				typeName := ""
				if o.Type != nil {
					typeName = o.Type.Name
				}
				rows = append(rows, []string{typeName, fmt.Sprintf("%.2f", o.Amount), o.Person.FullName(), o.Notes})
			}
			fmt.Fprintln(out)
			return render.Table(out, []string{"Tipo", "Monto", "Persona", "Notas"}, rows, a.styles)
		},
	}
	flags.bind(cmd, "name, attended")
	return cmd
}

func meetingAttendCmd(a *app) *cobra.Command {
	var absent bool
	cmd := &cobra.Command{
		Use:   "attend <meeting-id> <person-id>",
		Short: "Mark a person present (or absent) at a meeting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			meetingID, err := parseID("meeting", args[0])
			if err != nil {
				return err
			}
			personID, err := parseID("person", args[1])
			if err != nil {
				return err
			}
			detail, release, changes, err := a.openMeeting(cmd, meetingID)
			if err != nil {
				return err
			}
			defer release()

			before := detail.State().Attended
			if err := detail.SetAttended(cmd.Context(), personID, !absent); err != nil {
				return err
			}
			if err := changes.await(cmd.Context(), func() bool {
				st := detail.State()
				return !st.AttendanceLoading && st.Attended != before
			}); err != nil {
				return err
			}
			st := detail.State()
			fmt.Fprintf(cmd.OutOrStdout(), "Asistencia: %d de %d\n", st.Attended, st.Expected)
			return nil
		},
	}
	cmd.Flags().BoolVar(&absent, "absent", false, "mark the person absent")
	return cmd
}

// openMeeting opens the meeting detail and waits for its attendance list.
func (a *app) openMeeting(cmd *cobra.Command, id uuid.UUID) (*forms.MeetingDetail, func(), notifier, error) {
	changes := newNotifier()
	detail, release, err := a.module.NewMeetingDetail(func(forms.MeetingDetailState) { changes.signal() })
	if err != nil {
		return nil, nil, nil, err
	}
	ctx := cmd.Context()
	if err := detail.Open(ctx, id); err != nil {
		release()
		return nil, nil, nil, err
	}
	err = changes.await(ctx, func() bool {
		st := detail.State()
		return !st.AttendanceLoading
	})
	if err == nil {
		err = detail.State().AttendanceErr
	}
	if err != nil {
		release()
		return nil, nil, nil, err
	}
	return detail, release, changes, nil
}
