package permissions

import (
	"errors"
	"strings"
)

type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

const (
	ResourceChurches   = "churches"
	ResourcePeople     = "people"
	ResourceGroups     = "groups"
	ResourceMeetings   = "meetings"
	ResourceAttendance = "attendance"
	ResourceOfferings  = "offerings"
	ResourceGeo        = "geo"
)

var ErrPermissionDenied = errors.New("permissions: denied")

type Error struct {
	Permission string
}

func (e Error) Error() string {
	if strings.TrimSpace(e.Permission) == "" {
		return "permission denied"
	}
	return "permission denied: " + e.Permission
}

func (e Error) Unwrap() error {
	return ErrPermissionDenied
}

// PermissionSet captures the CRUD permission tokens of a resource.
type PermissionSet struct {
	Read   string `json:"read,omitempty"`
	Create string `json:"create,omitempty"`
	Update string `json:"update,omitempty"`
	Delete string `json:"delete,omitempty"`
}

// ResourcePermissions builds the permission set for resource.
func ResourcePermissions(resource string) PermissionSet {
	return PermissionSet{
		Read:   Join(resource, ActionRead),
		Create: Join(resource, ActionCreate),
		Update: Join(resource, ActionUpdate),
		Delete: Join(resource, ActionDelete),
	}
}

// Join builds a resource:action token.
func Join(resource string, action Action) string {
	res := normalize(resource)
	act := normalize(string(action))
	if res == "" || act == "" {
		return ""
	}
	return res + ":" + act
}

// List returns the non-empty permissions in the set.
func (p PermissionSet) List() []string {
	out := make([]string, 0, 4)
	for _, perm := range []string{p.Read, p.Create, p.Update, p.Delete} {
		if perm != "" {
			out = append(out, perm)
		}
	}
	return out
}

// Capabilities is the capability set handed explicitly to screens and services.
type Capabilities interface {
	HasPermission(permission string) bool
}

// CapabilitiesFunc adapts a function to Capabilities.
type CapabilitiesFunc func(permission string) bool

func (fn CapabilitiesFunc) HasPermission(permission string) bool {
	return fn(permission)
}

// Set is a static capability set. It accepts exact tokens, resource:* and *.
type Set map[string]struct{}

func NewSet(perms ...string) Set {
	set := Set{}
	for _, perm := range perms {
		if normalized := normalize(perm); normalized != "" {
			set[normalized] = struct{}{}
		}
	}
	return set
}

func (s Set) HasPermission(permission string) bool {
	normalized := normalize(permission)
	if len(s) == 0 || normalized == "" {
		return false
	}
	if _, ok := s[normalized]; ok {
		return true
	}
	if resource, _ := split(normalized); resource != "" {
		if _, ok := s[resource+":*"]; ok {
			return true
		}
	}
	_, ok := s["*"]
	return ok
}

// AllowAll grants every permission.
func AllowAll() Capabilities {
	return NewSet("*")
}

// DenyAll grants nothing.
func DenyAll() Capabilities {
	return Set{}
}

// Require returns an Error wrapping ErrPermissionDenied when caps lacks
// permission. A nil capability set denies everything.
func Require(caps Capabilities, permission string) error {
	normalized := normalize(permission)
	if normalized == "" {
		return nil
	}
	if caps != nil && caps.HasPermission(normalized) {
		return nil
	}
	return Error{Permission: normalized}
}

// Allowed is the boolean form of Require.
func Allowed(caps Capabilities, permission string) bool {
	return Require(caps, permission) == nil
}

func split(permission string) (string, Action) {
	parts := strings.SplitN(permission, ":", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], Action(parts[1])
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
