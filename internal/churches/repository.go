package churches

import (
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/viddefe/go-viddefe/domain"
)

// NewChurchRepository creates a repository for church records.
func NewChurchRepository(db *bun.DB) repository.Repository[*domain.Church] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*domain.Church]{
		NewRecord: func() *domain.Church { return &domain.Church{} },
		GetID: func(c *domain.Church) uuid.UUID {
			return c.ID
		},
		SetID: func(c *domain.Church, id uuid.UUID) {
			c.ID = id
		},
		GetIdentifier: func() string {
			return "slug"
		},
		GetIdentifierValue: func(c *domain.Church) string {
			return c.Slug
		},
	})
}
