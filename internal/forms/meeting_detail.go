package forms

import (
	"cmp"
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/viddefe/go-viddefe/domain"
	"github.com/viddefe/go-viddefe/internal/commands/meetingcmd"
	"github.com/viddefe/go-viddefe/internal/dependent"
	"github.com/viddefe/go-viddefe/internal/logging"
	"github.com/viddefe/go-viddefe/internal/meetings"
	"github.com/viddefe/go-viddefe/internal/offerings"
	"github.com/viddefe/go-viddefe/internal/paging"
	"github.com/viddefe/go-viddefe/internal/permissions"
	"github.com/viddefe/go-viddefe/pkg/interfaces"
)

const (
	ActionMarkPresent = "mark_present"
	ActionMarkAbsent  = "mark_absent"
)

var (
	ErrMeetingServiceRequired    = errors.New("forms: meeting service is required")
	ErrOfferingServiceRequired   = errors.New("forms: offering service is required")
	ErrAttendanceMutationMissing = errors.New("forms: attendance mutation is required")
	ErrAttendeeNotFound          = errors.New("forms: person is not on the attendance list")
	ErrDetailClosed              = errors.New("forms: meeting detail is closed")
)

// MeetingDetailConfig carries the collaborators of a MeetingDetail.
type MeetingDetailConfig struct {
	Meetings     meetings.Service
	Offerings    offerings.Service
	Attendance   interfaces.Mutation[meetingcmd.SetAttendanceCommand, *domain.Attendance]
	Capabilities permissions.Capabilities
	PageSize     int
	Logger       interfaces.Logger
	Observer     dependent.Observer
	OnChange     func(MeetingDetailState)
}

// MeetingDetailState is what a renderer needs to draw the detail.
type MeetingDetailState struct {
	Meeting           *domain.Meeting
	Offerings         []*domain.Offering
	OfferingTotal     float64
	AttendanceLoading bool
	AttendanceErr     error
	Attended          int
	Expected          int
}

// MeetingDetail shows a meeting, its attendance list and its offerings. The
// attendance list is a dependent collection keyed by the meeting id and is
// paged and sorted on the client.
type MeetingDetail struct {
	cfg        MeetingDetailConfig
	logger     interfaces.Logger
	attendance *dependent.Collection[uuid.UUID, domain.Attendance]
	rows       *paging.Auto[domain.Attendance]
	table      *paging.Table[domain.Attendance]

	// done is cancelled by Close; every load runs under it.
	done     context.Context
	shutdown context.CancelFunc
	// emitting serialises OnChange with Close.
	emitting sync.Mutex

	mu        sync.Mutex
	closed    bool
	seq       uint64
	cancel    context.CancelFunc
	meeting   *domain.Meeting
	offerings []*domain.Offering
	total     float64
}

// NewMeetingDetail builds a detail with no meeting selected.
func NewMeetingDetail(cfg MeetingDetailConfig) (*MeetingDetail, error) {
	if cfg.Meetings == nil {
		return nil, ErrMeetingServiceRequired
	}
	if cfg.Offerings == nil {
		return nil, ErrOfferingServiceRequired
	}
	if cfg.Attendance == nil {
		return nil, ErrAttendanceMutationMissing
	}
	d := &MeetingDetail{cfg: cfg, logger: logging.Ensure(cfg.Logger)}
	d.done, d.shutdown = context.WithCancel(context.Background())

	d.rows = paging.NewAuto(cfg.PageSize, map[string]func(a, b domain.Attendance) int{
		"name": func(a, b domain.Attendance) int {
			return cmp.Compare(a.Person.FullName(), b.Person.FullName())
		},
		"attended": func(a, b domain.Attendance) int {
			return cmp.Compare(boolRank(a.Attended), boolRank(b.Attended))
		},
	})

	update := permissions.Join(permissions.ResourceAttendance, permissions.ActionUpdate)
	table, err := paging.NewTable[domain.Attendance](d.rows,
		[]paging.Column[domain.Attendance]{
			{Key: "name", Title: "Nombre", Width: 32, Sortable: true, Value: func(a domain.Attendance) string { return a.Person.FullName() }},
			{Key: "attended", Title: "Asistió", Width: 8, Sortable: true, Value: func(a domain.Attendance) string { return yesNo(a.Attended) }},
		},
		[]paging.RowAction[domain.Attendance]{
			{Name: ActionMarkPresent, Label: "Marcar asistencia", Permission: update, When: "row.attended == false", Run: d.markRow(true)},
			{Name: ActionMarkAbsent, Label: "Quitar asistencia", Permission: update, When: "row.attended == true", Run: d.markRow(false)},
		},
		paging.WithCapabilities[domain.Attendance](cfg.Capabilities),
		paging.WithRowEnv(func(a domain.Attendance) map[string]any {
			return map[string]any{
				"attended":  a.Attended,
				"person_id": a.PersonID.String(),
				"name":      a.Person.FullName(),
			}
		}),
	)
	if err != nil {
		return nil, err
	}
	d.table = table

	opts := []dependent.Option[uuid.UUID, domain.Attendance]{
		dependent.WithValidator[uuid.UUID, domain.Attendance](func(id uuid.UUID) bool { return id != uuid.Nil }),
		dependent.WithOnChange[uuid.UUID, domain.Attendance](d.attendanceChanged),
		dependent.WithLogger[uuid.UUID, domain.Attendance](d.logger),
	}
	if cfg.Observer != nil {
		opts = append(opts, dependent.WithObserver[uuid.UUID, domain.Attendance](cfg.Observer))
	}
	d.attendance = dependent.New("attendance", cfg.Meetings.Attendance, opts...)
	return d, nil
}

// Open loads meeting id and its offerings, then starts the attendance list.
// A later Open supersedes an earlier one still loading; the earlier result is
// dropped. After Close, Open returns ErrDetailClosed and writes nothing.
func (d *MeetingDetail) Open(ctx context.Context, id uuid.UUID) error {
	if err := permissions.Require(d.cfg.Capabilities, permissions.Join(permissions.ResourceMeetings, permissions.ActionRead)); err != nil {
		return err
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrDetailClosed
	}
	if d.cancel != nil {
		d.cancel()
	}
	d.seq++
	seq := d.seq
	ctx, cancel := d.scope(ctx)
	d.cancel = cancel
	d.mu.Unlock()
	defer cancel()

	var (
		meeting *domain.Meeting
		list    []*domain.Offering
		total   float64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		meeting, err = d.cfg.Meetings.Get(gctx, id)
		return err
	})
	if permissions.Allowed(d.cfg.Capabilities, permissions.Join(permissions.ResourceOfferings, permissions.ActionRead)) {
		g.Go(func() error {
			var err error
			list, err = d.cfg.Offerings.ListByMeeting(gctx, id)
			if err != nil {
				return err
			}
			total, err = d.cfg.Offerings.Total(gctx, id)
			return err
		})
	}
	err := g.Wait()

	d.mu.Lock()
	switch {
	case d.closed:
		d.mu.Unlock()
		return ErrDetailClosed
	case seq != d.seq:
		d.mu.Unlock()
		d.logger.Debug("forms.meeting.stale_open", "meeting_id", id.String())
		return nil
	}
	d.cancel = nil
	if err != nil {
		d.mu.Unlock()
		return err
	}
	d.meeting, d.offerings, d.total = meeting, list, total
	d.mu.Unlock()

	if permissions.Allowed(d.cfg.Capabilities, permissions.Join(permissions.ResourceAttendance, permissions.ActionRead)) {
		d.attendance.SetKey(id)
	} else {
		d.attendance.SetKey(uuid.Nil)
	}
	d.emit()
	return nil
}

// Table returns the attendance table.
func (d *MeetingDetail) Table() *paging.Table[domain.Attendance] {
	return d.table
}

// SetAttended runs the matching row action for personID.
func (d *MeetingDetail) SetAttended(ctx context.Context, personID uuid.UUID, attended bool) error {
	for _, row := range d.attendance.Items() {
		if row.PersonID != personID {
			continue
		}
		action := ActionMarkAbsent
		if attended {
			action = ActionMarkPresent
		}
		return d.table.Run(ctx, action, row)
	}
	return ErrAttendeeNotFound
}

// RefreshKey reloads the attendance list when key names the open meeting.
func (d *MeetingDetail) RefreshKey(key string) {
	d.attendance.RefreshKey(key)
}

// ReloadOfferings reloads offerings and their total for the open meeting.
// The result is dropped when the detail was closed or moved to another
// meeting meanwhile.
func (d *MeetingDetail) ReloadOfferings(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrDetailClosed
	}
	meeting, seq := d.meeting, d.seq
	d.mu.Unlock()
	if meeting == nil {
		return nil
	}
	ctx, cancel := d.scope(ctx)
	defer cancel()

	list, err := d.cfg.Offerings.ListByMeeting(ctx, meeting.ID)
	var total float64
	if err == nil {
		total, err = d.cfg.Offerings.Total(ctx, meeting.ID)
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrDetailClosed
	}
	if err != nil {
		d.mu.Unlock()
		return err
	}
	if seq == d.seq {
		d.offerings, d.total = list, total
	}
	d.mu.Unlock()
	d.emit()
	return nil
}

// State returns a snapshot for rendering.
func (d *MeetingDetail) State() MeetingDetailState {
	snap := d.attendance.Snapshot()
	st := MeetingDetailState{
		AttendanceLoading: snap.Loading,
		AttendanceErr:     snap.Err,
		Expected:          len(snap.Items),
	}
	for _, row := range snap.Items {
		if row.Attended {
			st.Attended++
		}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	st.Meeting = d.meeting
	st.Offerings = append([]*domain.Offering(nil), d.offerings...)
	st.OfferingTotal = d.total
	return st
}

// Close cancels pending loads and releases the attendance list. No state is
// written and OnChange does not run after Close returns.
func (d *MeetingDetail) Close() {
	d.emitting.Lock()
	d.mu.Lock()
	d.closed = true
	d.seq++
	d.cancel = nil
	d.mu.Unlock()
	d.emitting.Unlock()
	d.shutdown()
	d.attendance.Close()
}

// scope derives a context from ctx that Close also cancels.
func (d *MeetingDetail) scope(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(d.done, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

func (d *MeetingDetail) isClosed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

func (d *MeetingDetail) markRow(attended bool) func(context.Context, domain.Attendance) error {
	return func(ctx context.Context, row domain.Attendance) error {
		cmd := meetingcmd.SetAttendanceCommand{MeetingID: row.MeetingID, PersonID: row.PersonID, Attended: attended}
		return d.cfg.Attendance.Mutate(ctx, cmd, func(*domain.Attendance) {
			d.attendance.Refresh()
		})
	}
}

func (d *MeetingDetail) attendanceChanged(snap dependent.Snapshot[uuid.UUID, domain.Attendance]) {
	if d.isClosed() {
		return
	}
	d.rows.SetItems(snap.Items)
	d.emit()
}

func (d *MeetingDetail) emit() {
	if d.cfg.OnChange == nil {
		return
	}
	d.emitting.Lock()
	defer d.emitting.Unlock()
	if d.isClosed() {
		return
	}
	d.cfg.OnChange(d.State())
}

func boolRank(v bool) int {
	if v {
		return 1
	}
	return 0
}

func yesNo(v bool) string {
	if v {
		return "sí"
	}
	return "no"
}

// formatAmount renders an amount with two decimals.
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
