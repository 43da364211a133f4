package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viddefe/go-viddefe/domain"
	"github.com/viddefe/go-viddefe/internal/churches"
	"github.com/viddefe/go-viddefe/internal/geo"
	"github.com/viddefe/go-viddefe/internal/meetings"
	"github.com/viddefe/go-viddefe/internal/people"
	"github.com/viddefe/go-viddefe/internal/runtimeconfig"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(runtimeconfig.BackendConfig{
		BaseURL: server.URL,
		Timeout: 2 * time.Second,
		Token:   "secret",
	})
	require.NoError(t, err)
	return client
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, body any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		require.NoError(t, json.NewEncoder(w).Encode(body))
	}
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	_, err := NewClient(runtimeconfig.BackendConfig{})
	assert.ErrorIs(t, err, ErrBaseURLRequired)
}

func TestChurchListSendsPagingAndSort(t *testing.T) {
	var gotPath, gotAuth string
	var gotQuery map[string]string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotQuery = map[string]string{
			"page": r.URL.Query().Get("page"),
			"size": r.URL.Query().Get("size"),
			"sort": r.URL.Query().Get("sort"),
		}
		writeJSON(t, w, http.StatusOK, domain.Page[*domain.Church]{
			Content:       []*domain.Church{{ID: uuid.New(), Name: "Central", Slug: "central"}},
			TotalPages:    3,
			TotalElements: 21,
			Number:        2,
			Size:          10,
		})
	})

	repo := NewChurchRepository(client)
	page, err := repo.List(context.Background(), domain.PageRequest{Page: 2, Size: 10, SortField: "name", SortDir: domain.SortDesc})
	require.NoError(t, err)

	assert.Equal(t, "/churches", gotPath)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, map[string]string{"page": "2", "size": "10", "sort": "name,desc"}, gotQuery)
	assert.Equal(t, 3, page.TotalPages)
	assert.EqualValues(t, 21, page.TotalElements)
	require.Len(t, page.Content, 1)
	assert.Equal(t, "Central", page.Content[0].Name)
}

func TestChurchListOmitsInactiveSort(t *testing.T) {
	var rawQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		writeJSON(t, w, http.StatusOK, map[string]any{"content": nil})
	})

	page, err := NewChurchRepository(client).List(context.Background(), domain.PageRequest{Page: 0, Size: 5, SortField: "name"})
	require.NoError(t, err)
	assert.NotContains(t, rawQuery, "sort=")
	assert.NotNil(t, page.Content)
}

func TestNotFoundMapsToChurchError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	svc := churches.NewService(NewChurchRepository(client))
	_, err := svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, churches.ErrChurchNotFound)
}

func TestStatusErrorsAreCategorised(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		category goerrors.Category
	}{
		{"not found", http.StatusNotFound, goerrors.CategoryNotFound},
		{"rejected", http.StatusUnprocessableEntity, goerrors.CategoryValidation},
		{"server", http.StatusBadGateway, goerrors.CategoryExternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("nope"))
			})
			_, err := get[domain.Church](context.Background(), client, "church", idParam(uuid.New()), nil)
			require.Error(t, err)
			assert.True(t, goerrors.IsCategory(err, tt.category), "unexpected category for %v", err)

			var status *StatusError
			require.True(t, errors.As(err, &status))
			assert.Equal(t, tt.status, status.Status)
			assert.Equal(t, "nope", status.Body)
		})
	}
}

func TestPersonCreatePostsBody(t *testing.T) {
	var received domain.Person
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		received.ID = uuid.MustParse("11111111-1111-1111-1111-111111111111")
		writeJSON(t, w, http.StatusCreated, received)
	})

	created, err := NewPersonRepository(client).Create(context.Background(), &domain.Person{FirstName: "Ana", LastName: "Rojas", Role: domain.RoleLeader})
	require.NoError(t, err)
	assert.Equal(t, "Ana", received.FirstName)
	assert.Equal(t, "11111111-1111-1111-1111-111111111111", created.ID.String())
}

func TestPersonListFilters(t *testing.T) {
	churchID := uuid.New()
	var got map[string]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = map[string]string{
			"churchId": r.URL.Query().Get("churchId"),
			"role":     r.URL.Query().Get("role"),
		}
		writeJSON(t, w, http.StatusOK, domain.Page[*domain.Person]{})
	})

	_, err := NewPersonRepository(client).List(context.Background(), people.Filter{ChurchID: &churchID, Role: domain.RolePastor}, domain.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, churchID.String(), got["churchId"])
	assert.Equal(t, "pastor", got["role"])
}

func TestCitiesForUnknownStateAreEmpty(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/states/5/cities":
			writeJSON(t, w, http.StatusOK, []map[string]any{
				{"cityId": 50, "name": "Cali"},
				{"cityId": 51, "name": "Palmira"},
			})
		default:
			http.NotFound(w, r)
		}
	})
	repo := NewGeoRepository(client)

	cities, err := repo.ListCities(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, cities, 2)
	assert.EqualValues(t, 50, cities[0].ID)
	assert.EqualValues(t, 5, cities[0].StateID)

	empty, err := repo.ListCities(context.Background(), 99)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = repo.GetCity(context.Background(), 50)
	var nf *geo.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestAttendanceUpsertTargetsPerson(t *testing.T) {
	meetingID := uuid.New()
	personID := uuid.New()
	var gotPath, gotMethod string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotMethod = r.URL.Path, r.Method
		writeJSON(t, w, http.StatusOK, domain.Attendance{MeetingID: meetingID, PersonID: personID, Attended: true})
	})

	saved, err := NewAttendanceRepository(client).Upsert(context.Background(), &domain.Attendance{MeetingID: meetingID, PersonID: personID, Attended: true})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/meetings/"+meetingID.String()+"/attendance/"+personID.String(), gotPath)
	assert.True(t, saved.Attended)
}

func TestMeetingNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	_, err := NewMeetingRepository(client).GetByID(context.Background(), uuid.New())
	var nf *meetings.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestCancelledContextIsReturned(t *testing.T) {
	release := make(chan struct{})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewGeoRepository(client).ListStates(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
