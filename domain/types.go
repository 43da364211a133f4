package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// State is a first-level geographic division from the shared catalog.
type State struct {
	bun.BaseModel `bun:"table:states,alias:st"`

	ID   int64  `bun:",pk" json:"id" yaml:"id"`
	Name string `bun:"name,notnull" json:"name" yaml:"name"`
}

// City belongs to exactly one State. The backend serialises its identifier as cityId.
type City struct {
	bun.BaseModel `bun:"table:cities,alias:ci"`

	ID      int64  `bun:",pk" json:"cityId" yaml:"id"`
	StateID int64  `bun:"state_id,notnull" json:"stateId" yaml:"state_id"`
	Name    string `bun:"name,notnull" json:"name" yaml:"name"`
}

// PersonRef is the nested person shape embedded in churches, groups and offerings.
type PersonRef struct {
	ID        uuid.UUID `json:"id" yaml:"id"`
	FirstName string    `json:"firstName" yaml:"first_name"`
	LastName  string    `json:"lastName" yaml:"last_name"`
}

// FullName joins the non-empty name parts.
func (p *PersonRef) FullName() string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// PersonRole classifies people inside a church.
type PersonRole string

const (
	RolePastor PersonRole = "pastor"
	RoleLeader PersonRole = "leader"
	RoleMember PersonRole = "member"
)

// Person is a registered member, leader or pastor.
type Person struct {
	bun.BaseModel `bun:"table:people,alias:p"`

	ID        uuid.UUID  `bun:",pk,type:uuid" json:"id" yaml:"id"`
	FirstName string     `bun:"first_name,notnull" json:"firstName" yaml:"first_name"`
	LastName  string     `bun:"last_name,notnull" json:"lastName" yaml:"last_name"`
	Email     string     `bun:"email" json:"email,omitempty" yaml:"email"`
	Phone     string     `bun:"phone" json:"phone,omitempty" yaml:"phone"`
	BirthDate *time.Time `bun:"birth_date,nullzero" json:"birthDate,omitempty" yaml:"birth_date"`
	ChurchID  *uuid.UUID `bun:"church_id,type:uuid,nullzero" json:"churchId,omitempty" yaml:"church_id"`
	Role      PersonRole `bun:"role,notnull,default:'member'" json:"role" yaml:"role"`
	CreatedAt time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"createdAt" yaml:"-"`
	UpdatedAt time.Time  `bun:"updated_at,nullzero,default:current_timestamp" json:"updatedAt" yaml:"-"`
}

// Ref returns the nested reference shape for the person.
func (p *Person) Ref() *PersonRef {
	if p == nil {
		return nil
	}
	return &PersonRef{ID: p.ID, FirstName: p.FirstName, LastName: p.LastName}
}

// Church is the remote church record.
type Church struct {
	bun.BaseModel `bun:"table:churches,alias:ch"`

	ID             uuid.UUID  `bun:",pk,type:uuid" json:"id" yaml:"id"`
	Name           string     `bun:"name,notnull" json:"name" yaml:"name"`
	Slug           string     `bun:"slug,notnull,unique" json:"slug" yaml:"slug"`
	Email          string     `bun:"email" json:"email,omitempty" yaml:"email"`
	Phone          string     `bun:"phone" json:"phone,omitempty" yaml:"phone"`
	Address        string     `bun:"address" json:"address,omitempty" yaml:"address"`
	FoundationDate *time.Time `bun:"foundation_date,nullzero" json:"foundationDate,omitempty" yaml:"foundation_date"`
	Pastor         *PersonRef `bun:"pastor,type:jsonb" json:"pastor,omitempty" yaml:"pastor"`
	State          *State     `bun:"state,type:jsonb" json:"state,omitempty" yaml:"state"`
	City           *City      `bun:"city,type:jsonb" json:"city,omitempty" yaml:"city"`
	Latitude       *float64   `bun:"latitude" json:"latitude,omitempty" yaml:"latitude"`
	Longitude      *float64   `bun:"longitude" json:"longitude,omitempty" yaml:"longitude"`
	CreatedAt      time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"createdAt" yaml:"-"`
	UpdatedAt      time.Time  `bun:"updated_at,nullzero,default:current_timestamp" json:"updatedAt" yaml:"-"`
}

// HomeGroup is a small group hosted by a church.
type HomeGroup struct {
	bun.BaseModel `bun:"table:home_groups,alias:hg"`

	ID          uuid.UUID  `bun:",pk,type:uuid" json:"id"`
	ChurchID    uuid.UUID  `bun:"church_id,type:uuid,notnull" json:"churchId"`
	Name        string     `bun:"name,notnull" json:"name"`
	Description string     `bun:"description" json:"description,omitempty"`
	Leader      *PersonRef `bun:"leader,type:jsonb" json:"leader,omitempty"`
	State       *State     `bun:"state,type:jsonb" json:"state,omitempty"`
	City        *City      `bun:"city,type:jsonb" json:"city,omitempty"`
	Latitude    *float64   `bun:"latitude" json:"latitude,omitempty"`
	Longitude   *float64   `bun:"longitude" json:"longitude,omitempty"`
	CreatedAt   time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"createdAt"`
	UpdatedAt   time.Time  `bun:"updated_at,nullzero,default:current_timestamp" json:"updatedAt"`
}

// MeetingType distinguishes church services from home group gatherings.
type MeetingType string

const (
	MeetingWorship MeetingType = "worship"
	MeetingGroup   MeetingType = "group"
)

// Meeting is a worship service or home group meeting.
type Meeting struct {
	bun.BaseModel `bun:"table:meetings,alias:m"`

	ID          uuid.UUID   `bun:",pk,type:uuid" json:"id"`
	ChurchID    uuid.UUID   `bun:"church_id,type:uuid,notnull" json:"churchId"`
	GroupID     *uuid.UUID  `bun:"group_id,type:uuid,nullzero" json:"groupId,omitempty"`
	Type        MeetingType `bun:"type,notnull" json:"type"`
	Name        string      `bun:"name,notnull" json:"name"`
	Description string      `bun:"description" json:"description,omitempty"`
	Date        time.Time   `bun:"date,notnull" json:"date"`
	CreatedAt   time.Time   `bun:"created_at,nullzero,default:current_timestamp" json:"createdAt"`
	UpdatedAt   time.Time   `bun:"updated_at,nullzero,default:current_timestamp" json:"updatedAt"`
}

// Attendance records whether a person attended a meeting.
type Attendance struct {
	bun.BaseModel `bun:"table:attendances,alias:at"`

	ID        uuid.UUID  `bun:",pk,type:uuid" json:"id"`
	MeetingID uuid.UUID  `bun:"meeting_id,type:uuid,notnull" json:"meetingId"`
	PersonID  uuid.UUID  `bun:"person_id,type:uuid,notnull" json:"personId"`
	Person    *PersonRef `bun:"person,type:jsonb" json:"person,omitempty"`
	Attended  bool       `bun:"attended,notnull,default:false" json:"attended"`
	UpdatedAt time.Time  `bun:"updated_at,nullzero,default:current_timestamp" json:"updatedAt"`
}

// OfferingType is an entry of the offering catalog (tithe, offering, ...).
type OfferingType struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Offering is an amount registered during a meeting.
type Offering struct {
	bun.BaseModel `bun:"table:offerings,alias:o"`

	ID        uuid.UUID     `bun:",pk,type:uuid" json:"id"`
	MeetingID uuid.UUID     `bun:"meeting_id,type:uuid,notnull" json:"meetingId"`
	Type      *OfferingType `bun:"type,type:jsonb" json:"type,omitempty"`
	Amount    float64       `bun:"amount,notnull" json:"amount"`
	Person    *PersonRef    `bun:"person,type:jsonb" json:"person,omitempty"`
	Notes     string        `bun:"notes" json:"notes,omitempty"`
	CreatedAt time.Time     `bun:"created_at,nullzero,default:current_timestamp" json:"createdAt"`
}
