package permissions

import (
	"errors"
	"testing"
)

func TestResourcePermissions(t *testing.T) {
	set := ResourcePermissions(" Churches ")
	if set.Update != "churches:update" {
		t.Fatalf("expected churches:update, got %q", set.Update)
	}
	if got := len(set.List()); got != 4 {
		t.Fatalf("expected 4 permissions, got %d", got)
	}
	if Join("", ActionRead) != "" {
		t.Fatal("expected empty token for empty resource")
	}
}

func TestSetWildcards(t *testing.T) {
	caps := NewSet("churches:read", "offerings:*")

	if !caps.HasPermission("CHURCHES:READ") {
		t.Fatal("expected exact permission")
	}
	if caps.HasPermission("churches:update") {
		t.Fatal("unexpected churches:update")
	}
	if !caps.HasPermission("offerings:create") {
		t.Fatal("expected resource wildcard to match")
	}
	if !AllowAll().HasPermission("people:delete") {
		t.Fatal("expected AllowAll to grant everything")
	}
	if DenyAll().HasPermission("people:read") {
		t.Fatal("expected DenyAll to grant nothing")
	}
}

func TestRequire(t *testing.T) {
	err := Require(NewSet("people:read"), "people:delete")
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	var permErr Error
	if !errors.As(err, &permErr) || permErr.Permission != "people:delete" {
		t.Fatalf("expected permission error for people:delete, got %v", err)
	}
	if err := Require(nil, "people:read"); err == nil {
		t.Fatal("expected nil capabilities to deny")
	}
	if err := Require(nil, " "); err != nil {
		t.Fatalf("expected empty permission to pass, got %v", err)
	}
	fn := CapabilitiesFunc(func(p string) bool { return p == "geo:read" })
	if !Allowed(fn, "geo:read") {
		t.Fatal("expected func capabilities to allow geo:read")
	}
}
