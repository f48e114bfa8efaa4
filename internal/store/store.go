// Package store implements the entity repositories for Atlas. Each store
// wraps CRUD over one entity table and keeps the hierarchy index (depth,
// path, left/right) consistent: every structural mutation and the full
// reindex it triggers run inside one transaction, and structural writes per
// entity type are serialized by the store's mutex so concurrent re-parenting
// cannot interleave.
package store

import (
	stderrors "errors"

	apperrors "github.com/aethra/atlas/internal/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Stores bundles the three entity repositories.
type Stores struct {
	Applications  *ApplicationStore
	Attributes    *AttributeStore
	Organisations *OrganisationStore
}

// New creates all entity stores on a shared database handle.
func New(db *gorm.DB) *Stores {
	return &Stores{
		Applications:  NewApplicationStore(db),
		Attributes:    NewAttributeStore(db),
		Organisations: NewOrganisationStore(db),
	}
}

// record is the slice of an entity the shared slug helper needs.
type record interface {
	RecordID() uuid.UUID
	RecordSlug() string
	SetRecordSlug(string)
	DisplayName() string
}

func getByID[T any](db *gorm.DB, id uuid.UUID, resource string) (*T, error) {
	var rec T
	if err := db.First(&rec, "id = ?", id).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError(resource)
		}
		return nil, apperrors.NewInternalError(err)
	}
	return &rec, nil
}

func getBySlug[T any](db *gorm.DB, slug, resource string) (*T, error) {
	var rec T
	if err := db.First(&rec, "slug = ?", slug).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError(resource)
		}
		return nil, apperrors.NewInternalError(err)
	}
	return &rec, nil
}
