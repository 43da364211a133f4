package meetings

import (
	"context"
	"fmt"

	"github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/viddefe/go-viddefe/domain"
)

// NewMeetingRepository creates a repository for meeting records.
func NewMeetingRepository(db *bun.DB) repository.Repository[*domain.Meeting] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*domain.Meeting]{
		NewRecord: func() *domain.Meeting { return &domain.Meeting{} },
		GetID: func(m *domain.Meeting) uuid.UUID {
			return m.ID
		},
		SetID: func(m *domain.Meeting, id uuid.UUID) {
			m.ID = id
		},
		GetIdentifier: func() string {
			return "name"
		},
		GetIdentifierValue: func(m *domain.Meeting) string {
			return m.Name
		},
	})
}

// BunMeetingRepository implements MeetingRepository with optional caching.
type BunMeetingRepository struct {
	repo repository.Repository[*domain.Meeting]
}

// NewBunMeetingRepository creates a meeting repository without caching.
func NewBunMeetingRepository(db *bun.DB) *BunMeetingRepository {
	return NewBunMeetingRepositoryWithCache(db, nil, nil)
}

// NewBunMeetingRepositoryWithCache creates a meeting repository with caching support.
func NewBunMeetingRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunMeetingRepository {
	base := NewMeetingRepository(db)
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
	}
	return &BunMeetingRepository{repo: base}
}

func (r *BunMeetingRepository) Create(ctx context.Context, meeting *domain.Meeting) (*domain.Meeting, error) {
	return r.repo.Create(ctx, meeting)
}

func (r *BunMeetingRepository) Update(ctx context.Context, meeting *domain.Meeting) (*domain.Meeting, error) {
	updated, err := r.repo.Update(ctx, meeting,
		repository.UpdateByID(meeting.ID.String()),
		repository.UpdateColumns(
			"group_id",
			"type",
			"name",
			"description",
			"date",
			"updated_at",
		),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "meeting", meeting.ID.String())
	}
	return updated, nil
}

func (r *BunMeetingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Meeting, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "meeting", id.String())
	}
	return record, nil
}

func (r *BunMeetingRepository) List(ctx context.Context, filter Filter, req domain.PageRequest) (domain.Page[*domain.Meeting], error) {
	query := repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		if filter.ChurchID != nil {
			q = q.Where("?TableAlias.church_id = ?", *filter.ChurchID)
		}
		if filter.GroupID != nil {
			q = q.Where("?TableAlias.group_id = ?", *filter.GroupID)
		}
		if filter.Type != "" {
			q = q.Where("?TableAlias.type = ?", filter.Type)
		}
		switch {
		case req.SortField == "name" && req.SortDir == domain.SortAsc:
			return q.OrderExpr("?TableAlias.name ASC")
		case req.SortField == "name" && req.SortDir == domain.SortDesc:
			return q.OrderExpr("?TableAlias.name DESC")
		case req.SortField == "date" && req.SortDir == domain.SortAsc:
			return q.OrderExpr("?TableAlias.date ASC")
		}
		return q.OrderExpr("?TableAlias.date DESC")
	})

	if req.Size > 0 {
		records, total, err := r.repo.List(ctx, query, repository.SelectPaginate(req.Size, req.Offset()))
		if err != nil {
			return domain.Page[*domain.Meeting]{}, fmt.Errorf("meeting repository error: %w", err)
		}
		return domain.NewPage(records, int64(total), req), nil
	}
	records, total, err := r.repo.List(ctx, query)
	if err != nil {
		return domain.Page[*domain.Meeting]{}, fmt.Errorf("meeting repository error: %w", err)
	}
	return domain.NewPage(records, int64(total), req), nil
}

func (r *BunMeetingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return r.repo.Delete(ctx, &domain.Meeting{ID: id})
}

// BunAttendanceRepository stores attendance marks with bun.
type BunAttendanceRepository struct {
	db *bun.DB
}

// NewBunAttendanceRepository creates an attendance repository.
func NewBunAttendanceRepository(db *bun.DB) *BunAttendanceRepository {
	return &BunAttendanceRepository{db: db}
}

func (r *BunAttendanceRepository) ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]*domain.Attendance, error) {
	var records []*domain.Attendance
	err := r.db.NewSelect().
		Model(&records).
		Where("?TableAlias.meeting_id = ?", meetingID).
		OrderExpr("?TableAlias.person_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("attendance repository error: %w", err)
	}
	return records, nil
}

func (r *BunAttendanceRepository) Upsert(ctx context.Context, attendance *domain.Attendance) (*domain.Attendance, error) {
	_, err := r.db.NewInsert().
		Model(attendance).
		On("CONFLICT (id) DO UPDATE").
		Set("attended = EXCLUDED.attended").
		Set("person = EXCLUDED.person").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("attendance repository error: %w", err)
	}
	return cloneAttendance(attendance), nil
}

func (r *BunAttendanceRepository) DeleteByMeeting(ctx context.Context, meetingID uuid.UUID) error {
	_, err := r.db.NewDelete().
		Model((*domain.Attendance)(nil)).
		Where("meeting_id = ?", meetingID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("attendance repository error: %w", err)
	}
	return nil
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if errors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Resource: resource, Key: key}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}
