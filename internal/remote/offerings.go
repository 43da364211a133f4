package remote

import (
	"context"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/viddefe/go-viddefe/domain"
	"github.com/viddefe/go-viddefe/internal/offerings"
)

// OfferingRepository reads and writes offerings through the backend API.
type OfferingRepository struct {
	client *Client
}

var _ offerings.OfferingRepository = (*OfferingRepository)(nil)

func NewOfferingRepository(client *Client) *OfferingRepository {
	return &OfferingRepository{client: client}
}

func (r *OfferingRepository) Create(ctx context.Context, offering *domain.Offering) (*domain.Offering, error) {
	created, err := send[domain.Offering](ctx, r.client, http.MethodPost, "offerings", idParam(offering.MeetingID), offering)
	if err != nil {
		return nil, offeringError(err, "meeting", offering.MeetingID.String())
	}
	return &created, nil
}

func (r *OfferingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Offering, error) {
	offering, err := get[domain.Offering](ctx, r.client, "offering", idParam(id), nil)
	if err != nil {
		return nil, offeringError(err, "offering", id.String())
	}
	return &offering, nil
}

func (r *OfferingRepository) ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]*domain.Offering, error) {
	records, err := get[[]*domain.Offering](ctx, r.client, "offerings", idParam(meetingID), nil)
	if err != nil {
		return nil, offeringError(err, "meeting", meetingID.String())
	}
	if records == nil {
		records = []*domain.Offering{}
	}
	return records, nil
}

func (r *OfferingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := del(ctx, r.client, "offering", idParam(id)); err != nil {
		return offeringError(err, "offering", id.String())
	}
	return nil
}

// OfferingTypeRepository reads the offering type catalog through the backend API.
type OfferingTypeRepository struct {
	client *Client
}

var _ offerings.TypeRepository = (*OfferingTypeRepository)(nil)

func NewOfferingTypeRepository(client *Client) *OfferingTypeRepository {
	return &OfferingTypeRepository{client: client}
}

func (r *OfferingTypeRepository) List(ctx context.Context) ([]*domain.OfferingType, error) {
	types, err := get[[]*domain.OfferingType](ctx, r.client, "offering_types", nil, nil)
	if err != nil {
		return nil, err
	}
	if types == nil {
		types = []*domain.OfferingType{}
	}
	return types, nil
}

func (r *OfferingTypeRepository) Get(ctx context.Context, id int64) (*domain.OfferingType, error) {
	t, err := get[domain.OfferingType](ctx, r.client, "offering_type", idParam(id), nil)
	if err != nil {
		return nil, offeringError(err, "offering type", strconv.FormatInt(id, 10))
	}
	return &t, nil
}

func (r *OfferingTypeRepository) Save(ctx context.Context, t *domain.OfferingType) (*domain.OfferingType, error) {
	saved, err := send[domain.OfferingType](ctx, r.client, http.MethodPut, "offering_type", idParam(t.ID), t)
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func offeringError(err error, resource, key string) error {
	if IsNotFound(err) {
		return &offerings.NotFoundError{Resource: resource, Key: key}
	}
	return err
}
