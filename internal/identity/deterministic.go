// Package identity derives stable record ids from natural keys, so loading the
// same seed twice produces the same rows.
package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// Kind namespaces ids so equal keys of different records never collide.
type Kind string

const (
	KindChurch     Kind = "church"
	KindPerson     Kind = "person"
	KindAttendance Kind = "attendance"
)

// Of returns the id of the record of kind identified by parts. Parts are
// trimmed, lower-cased and joined with ":". Any empty part yields uuid.Nil.
func Of(kind Kind, parts ...string) uuid.UUID {
	if len(parts) == 0 {
		return uuid.Nil
	}
	normalized := make([]string, len(parts))
	for i, part := range parts {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			return uuid.Nil
		}
		normalized[i] = part
	}
	key := "viddefe:" + string(kind) + ":" + strings.Join(normalized, ":")
	id, err := hashid.NewUUID(key, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || id == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(key))
	}
	return id
}

func ChurchUUID(slug string) uuid.UUID {
	return Of(KindChurch, slug)
}

func PersonUUID(email string) uuid.UUID {
	return Of(KindPerson, email)
}

func AttendanceUUID(meetingID, personID uuid.UUID) uuid.UUID {
	return Of(KindAttendance, meetingID.String(), personID.String())
}
