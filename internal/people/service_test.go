package people

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/viddefe/go-viddefe/domain"
	"github.com/viddefe/go-viddefe/internal/identity"
)

func TestServiceCreatePerson(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	churchID := uuid.MustParse("00000000-0000-0000-0000-00000000c001")
	svc := NewService(NewMemoryRepository(), WithNow(func() time.Time { return now }))

	person, err := svc.Create(ctx, PersonInput{
		FirstName: " Ana ",
		LastName:  "Ruiz",
		Email:     "Ana.Ruiz@Viddefe.org",
		ChurchID:  &churchID,
		Role:      domain.RolePastor,
	})
	if err != nil {
		t.Fatalf("create person: %v", err)
	}
	if person.ID != identity.PersonUUID("ana.ruiz@viddefe.org") {
		t.Fatalf("expected deterministic id, got %s", person.ID)
	}
	if person.FirstName != "Ana" || person.Email != "ana.ruiz@viddefe.org" {
		t.Fatalf("expected normalised fields, got %+v", person)
	}
	if _, err := svc.Create(ctx, PersonInput{FirstName: "Ana", LastName: "R", Email: "ana.ruiz@viddefe.org"}); !errors.Is(err, ErrPersonExists) {
		t.Fatalf("expected ErrPersonExists, got %v", err)
	}

	member, err := svc.Create(ctx, PersonInput{FirstName: "Luis", LastName: "Gomez", ChurchID: &churchID})
	if err != nil {
		t.Fatalf("create member: %v", err)
	}
	if member.Role != domain.RoleMember {
		t.Fatalf("expected default member role, got %s", member.Role)
	}

	inChurch, err := svc.ListByChurch(ctx, churchID)
	if err != nil {
		t.Fatalf("list by church: %v", err)
	}
	if len(inChurch) != 2 {
		t.Fatalf("expected 2 people, got %d", len(inChurch))
	}

	pastors, _ := svc.List(ctx, Filter{Role: domain.RolePastor}, domain.PageRequest{Size: 10})
	if pastors.TotalElements != 1 || pastors.Content[0].ID != person.ID {
		t.Fatalf("expected one pastor, got %+v", pastors)
	}
}

func TestServiceValidatesPerson(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	svc := NewService(NewMemoryRepository(), WithNow(func() time.Time { return now }))
	future := now.Add(24 * time.Hour)

	cases := []struct {
		name  string
		input PersonInput
		want  error
	}{
		{name: "first name", input: PersonInput{LastName: "X"}, want: ErrFirstNameRequired},
		{name: "last name", input: PersonInput{FirstName: "X"}, want: ErrLastNameRequired},
		{name: "email", input: PersonInput{FirstName: "X", LastName: "Y", Email: "not-an-email"}, want: ErrEmailInvalid},
		{name: "role", input: PersonInput{FirstName: "X", LastName: "Y", Role: "bishop"}, want: ErrRoleInvalid},
		{name: "birth date", input: PersonInput{FirstName: "X", LastName: "Y", BirthDate: &future}, want: ErrBirthDateInFuture},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(ctx, tc.input); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestServiceUpdateAndDeletePerson(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryRepository())

	person, err := svc.Create(ctx, PersonInput{FirstName: "Ana", LastName: "Ruiz"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	updated, err := svc.Update(ctx, person.ID, PersonInput{FirstName: "Ana Maria", LastName: "Ruiz", Role: domain.RoleLeader})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.FirstName != "Ana Maria" || updated.Role != domain.RoleLeader {
		t.Fatalf("unexpected update %+v", updated)
	}
	if err := svc.Delete(ctx, person.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, person.ID); !errors.Is(err, ErrPersonNotFound) {
		t.Fatalf("expected ErrPersonNotFound, got %v", err)
	}
}
