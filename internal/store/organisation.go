package store

import (
	"sync"

	apperrors "github.com/aethra/atlas/internal/errors"
	"github.com/aethra/atlas/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const organisationsTable = "organisations"

// OrganisationStore manages Organisation records and their hierarchy index.
type OrganisationStore struct {
	db *gorm.DB
	mu sync.Mutex
}

// NewOrganisationStore creates a new organisation store
func NewOrganisationStore(db *gorm.DB) *OrganisationStore {
	return &OrganisationStore{db: db}
}

// OrganisationCreateInput carries the writable fields for creation.
type OrganisationCreateInput struct {
	Name        string
	Description string
	Code        string
	Email       string
	Phone       string
	Address     string
	Website     string
	Slug        string
	ParentID    *uuid.UUID
	IsActive    *bool
	Metadata    models.JSONB
}

// OrganisationUpdateInput carries partial updates; nil fields are untouched.
// A ParentID of uuid.Nil detaches the record to root.
type OrganisationUpdateInput struct {
	Name        *string
	Description *string
	Code        *string
	Email       *string
	Phone       *string
	Address     *string
	Website     *string
	Slug        *string
	ParentID    *uuid.UUID
	Position    *int
	IsActive    *bool
	Metadata    models.JSONB
}

// Create inserts an organisation, assigns its slug and reindexes the tree.
func (s *OrganisationStore) Create(input OrganisationCreateInput) (*models.Organisation, error) {
	if input.Name == "" {
		return nil, apperrors.NewValidationError("name", "name is required")
	}

	org := &models.Organisation{
		Base:        models.Base{ID: uuid.New(), Slug: input.Slug},
		TreeNode:    models.TreeNode{ParentID: input.ParentID},
		Name:        input.Name,
		Description: input.Description,
		Code:        input.Code,
		Email:       input.Email,
		Phone:       input.Phone,
		Address:     input.Address,
		Website:     input.Website,
		IsActive:    true,
		Metadata:    input.Metadata,
	}
	if input.IsActive != nil {
		org.IsActive = *input.IsActive
	}
	if org.Metadata == nil {
		org.Metadata = models.JSONB{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if input.ParentID != nil {
			if _, err := getByID[models.Organisation](tx, *input.ParentID, "parent organisation"); err != nil {
				if apperrors.IsNotFound(err) {
					return apperrors.NewValidationError("parent_id", "parent organisation not found")
				}
				return err
			}
		}
		if err := ensureSlug(tx, organisationsTable, org); err != nil {
			return err
		}
		if err := tx.Create(org).Error; err != nil {
			return apperrors.NewInternalError(err)
		}
		if err := rebuildHierarchy(tx, organisationsTable); err != nil {
			return err
		}
		return tx.First(org, "id = ?", org.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(org.ID)
}

// Get returns an organisation with its parent loaded.
func (s *OrganisationStore) Get(id uuid.UUID) (*models.Organisation, error) {
	var org models.Organisation
	if err := s.db.Preload("Parent").First(&org, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NewNotFoundError("organisation")
		}
		return nil, apperrors.NewInternalError(err)
	}
	return &org, nil
}

// GetBySlug returns an organisation by its slug.
func (s *OrganisationStore) GetBySlug(slugValue string) (*models.Organisation, error) {
	rec, err := getBySlug[models.Organisation](s.db, slugValue, "organisation")
	if err != nil {
		return nil, err
	}
	return s.Get(rec.ID)
}

// List returns a page of organisations, pre-order by default. Search covers
// name, slug, code, description and email.
func (s *OrganisationStore) List(params ListParams) (*ListResult[models.Organisation], error) {
	params.DataType = ""
	return list[models.Organisation](s.db, params, []string{"name", "slug", "code", "description", "email"})
}

// Update applies a partial update, revalidating parent assignments and
// reindexing the tree in the same transaction.
func (s *OrganisationStore) Update(id uuid.UUID, input OrganisationUpdateInput) (*models.Organisation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		org, err := getByID[models.Organisation](tx, id, "organisation")
		if err != nil {
			return err
		}

		if input.ParentID != nil {
			if *input.ParentID == uuid.Nil {
				org.ParentID = nil
			} else {
				if err := checkParent(tx, organisationsTable, id, *input.ParentID); err != nil {
					return err
				}
				parentID := *input.ParentID
				org.ParentID = &parentID
			}
		}
		if input.Name != nil {
			if *input.Name == "" {
				return apperrors.NewValidationError("name", "name is required")
			}
			org.Name = *input.Name
		}
		if input.Description != nil {
			org.Description = *input.Description
		}
		if input.Code != nil {
			org.Code = *input.Code
		}
		if input.Email != nil {
			org.Email = *input.Email
		}
		if input.Phone != nil {
			org.Phone = *input.Phone
		}
		if input.Address != nil {
			org.Address = *input.Address
		}
		if input.Website != nil {
			org.Website = *input.Website
		}
		if input.Position != nil {
			org.Position = *input.Position
		}
		if input.IsActive != nil {
			org.IsActive = *input.IsActive
		}
		if input.Metadata != nil {
			org.Metadata = input.Metadata
		}
		if input.Slug != nil {
			org.Slug = *input.Slug
		}
		if err := ensureSlug(tx, organisationsTable, org); err != nil {
			return err
		}

		if err := tx.Save(org).Error; err != nil {
			return apperrors.NewInternalError(err)
		}
		return rebuildHierarchy(tx, organisationsTable)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

// Delete removes an organisation and cascades to its entire subtree,
// including membership in application organisation sets.
func (s *OrganisationStore) Delete(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Transaction(func(tx *gorm.DB) error {
		org, err := getByID[models.Organisation](tx, id, "organisation")
		if err != nil {
			return err
		}
		ids, err := subtreeIDs(tx, organisationsTable, org.Tree(), org.ID)
		if err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM application_organisations WHERE organisation_id IN ?", ids).Error; err != nil {
			return apperrors.NewInternalError(err)
		}
		if err := tx.Delete(&models.Organisation{}, "id IN ?", ids).Error; err != nil {
			return apperrors.NewInternalError(err)
		}
		return rebuildHierarchy(tx, organisationsTable)
	})
}

// Ancestors returns the chain from root to the record's parent.
func (s *OrganisationStore) Ancestors(id uuid.UUID) ([]models.Organisation, error) {
	org, err := getByID[models.Organisation](s.db, id, "organisation")
	if err != nil {
		return nil, err
	}
	return ancestorsOf[models.Organisation](s.db, org.Tree())
}

// Descendants returns the record's subtree in pre-order, excluding itself.
func (s *OrganisationStore) Descendants(id uuid.UUID) ([]models.Organisation, error) {
	org, err := getByID[models.Organisation](s.db, id, "organisation")
	if err != nil {
		return nil, err
	}
	return descendantsOf[models.Organisation](s.db, org.Tree())
}

// Children returns the record's direct children in sibling order.
func (s *OrganisationStore) Children(id uuid.UUID) ([]models.Organisation, error) {
	if _, err := getByID[models.Organisation](s.db, id, "organisation"); err != nil {
		return nil, err
	}
	return childrenOf[models.Organisation](s.db, id)
}

// Tree returns every organisation in pre-order.
func (s *OrganisationStore) Tree() ([]models.Organisation, error) {
	return preorderAll[models.Organisation](s.db)
}
