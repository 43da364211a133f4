package homegroups

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/viddefe/go-viddefe/domain"
)

func TestServiceGroupLifecycle(t *testing.T) {
	ctx := context.Background()
	churchID := uuid.MustParse("00000000-0000-0000-0000-00000000c001")
	svc := NewService(NewMemoryRepository())

	if _, err := svc.Create(ctx, GroupInput{Name: "Sin iglesia"}); !errors.Is(err, ErrGroupChurchRequired) {
		t.Fatalf("expected ErrGroupChurchRequired, got %v", err)
	}
	lat := 4.6
	if _, err := svc.Create(ctx, GroupInput{ChurchID: churchID, Name: "Norte", Latitude: &lat}); !errors.Is(err, ErrCoordinatesIncomplete) {
		t.Fatalf("expected ErrCoordinatesIncomplete, got %v", err)
	}

	for i := 0; i < 5; i++ {
		if _, err := svc.Create(ctx, GroupInput{ChurchID: churchID, Name: fmt.Sprintf("Grupo %d", i)}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	other := uuid.New()
	if _, err := svc.Create(ctx, GroupInput{ChurchID: other, Name: "Otro"}); err != nil {
		t.Fatalf("create other: %v", err)
	}

	page, err := svc.List(ctx, churchID, domain.PageRequest{Page: 2, Size: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.TotalElements != 5 || page.TotalPages != 3 || len(page.Content) != 1 || page.Content[0].Name != "Grupo 4" {
		t.Fatalf("unexpected page %+v", page)
	}

	group := page.Content[0]
	updated, err := svc.Update(ctx, group.ID, GroupInput{Name: "Grupo Cuatro", Description: "jueves"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Grupo Cuatro" || updated.ChurchID != churchID {
		t.Fatalf("unexpected update %+v", updated)
	}
	if err := svc.Delete(ctx, group.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, group.ID); !errors.Is(err, ErrGroupNotFound) {
		t.Fatalf("expected ErrGroupNotFound, got %v", err)
	}
}
