package store

import (
	"sync"

	apperrors "github.com/aethra/atlas/internal/errors"
	"github.com/aethra/atlas/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const applicationsTable = "applications"

// ApplicationStore manages Application records and their hierarchy index.
type ApplicationStore struct {
	db *gorm.DB
	mu sync.Mutex
}

// NewApplicationStore creates a new application store
func NewApplicationStore(db *gorm.DB) *ApplicationStore {
	return &ApplicationStore{db: db}
}

// ApplicationCreateInput carries the writable fields for creation. Slug is
// optional; when empty it is derived from Name.
type ApplicationCreateInput struct {
	Name            string
	Description     string
	Slug            string
	ParentID        *uuid.UUID
	Properties      models.JSONB
	AttributeIDs    []uuid.UUID
	OrganisationIDs []uuid.UUID
}

// ApplicationUpdateInput carries partial updates; nil fields are untouched.
// A ParentID of uuid.Nil detaches the record to root.
type ApplicationUpdateInput struct {
	Name            *string
	Description     *string
	Slug            *string
	ParentID        *uuid.UUID
	Position        *int
	Properties      models.JSONB
	AttributeIDs    *[]uuid.UUID
	OrganisationIDs *[]uuid.UUID
}

// Create inserts an application, assigns its slug and reindexes the tree,
// all inside one transaction.
func (s *ApplicationStore) Create(input ApplicationCreateInput) (*models.Application, error) {
	if input.Name == "" {
		return nil, apperrors.NewValidationError("name", "name is required")
	}

	app := &models.Application{
		Base:        models.Base{ID: uuid.New(), Slug: input.Slug},
		TreeNode:    models.TreeNode{ParentID: input.ParentID},
		Name:        input.Name,
		Description: input.Description,
		Properties:  input.Properties,
	}
	if app.Properties == nil {
		app.Properties = models.JSONB{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if input.ParentID != nil {
			if _, err := getByID[models.Application](tx, *input.ParentID, "parent application"); err != nil {
				if apperrors.IsNotFound(err) {
					return apperrors.NewValidationError("parent_id", "parent application not found")
				}
				return err
			}
		}
		if err := ensureSlug(tx, applicationsTable, app); err != nil {
			return err
		}
		if err := tx.Create(app).Error; err != nil {
			return apperrors.NewInternalError(err)
		}
		if err := s.replaceAssociations(tx, app, input.AttributeIDs, input.OrganisationIDs); err != nil {
			return err
		}
		if err := rebuildHierarchy(tx, applicationsTable); err != nil {
			return err
		}
		return tx.First(app, "id = ?", app.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(app.ID)
}

// Get returns an application with its parent and associations loaded.
// Associations come back in pre-order so pickers show the tree shape.
func (s *ApplicationStore) Get(id uuid.UUID) (*models.Application, error) {
	var app models.Application
	err := s.db.
		Preload("Parent").
		Preload("Attributes", func(db *gorm.DB) *gorm.DB { return db.Order("path") }).
		Preload("Organisations", func(db *gorm.DB) *gorm.DB { return db.Order("path") }).
		First(&app, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NewNotFoundError("application")
		}
		return nil, apperrors.NewInternalError(err)
	}
	return &app, nil
}

// GetBySlug returns an application by its slug.
func (s *ApplicationStore) GetBySlug(slugValue string) (*models.Application, error) {
	rec, err := getBySlug[models.Application](s.db, slugValue, "application")
	if err != nil {
		return nil, err
	}
	return s.Get(rec.ID)
}

// List returns a page of applications, pre-order by default. Search covers
// name, slug and description.
func (s *ApplicationStore) List(params ListParams) (*ListResult[models.Application], error) {
	params.DataType = ""
	params.IsActive = nil
	return list[models.Application](s.db, params, []string{"name", "slug", "description"})
}

// Update applies a partial update. A parent change is validated against
// cycles before anything is written and the whole tree is reindexed in the
// same transaction, so readers never observe a stale hierarchy.
func (s *ApplicationStore) Update(id uuid.UUID, input ApplicationUpdateInput) (*models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		app, err := getByID[models.Application](tx, id, "application")
		if err != nil {
			return err
		}

		if input.ParentID != nil {
			if *input.ParentID == uuid.Nil {
				app.ParentID = nil
			} else {
				if err := checkParent(tx, applicationsTable, id, *input.ParentID); err != nil {
					return err
				}
				parentID := *input.ParentID
				app.ParentID = &parentID
			}
		}
		if input.Name != nil {
			if *input.Name == "" {
				return apperrors.NewValidationError("name", "name is required")
			}
			app.Name = *input.Name
		}
		if input.Description != nil {
			app.Description = *input.Description
		}
		if input.Position != nil {
			app.Position = *input.Position
		}
		if input.Properties != nil {
			app.Properties = input.Properties
		}
		if input.Slug != nil {
			// An empty slug requests regeneration from the name.
			app.Slug = *input.Slug
		}
		if err := ensureSlug(tx, applicationsTable, app); err != nil {
			return err
		}

		if err := tx.Save(app).Error; err != nil {
			return apperrors.NewInternalError(err)
		}

		var attrIDs, orgIDs []uuid.UUID
		if input.AttributeIDs != nil {
			attrIDs = *input.AttributeIDs
		}
		if input.OrganisationIDs != nil {
			orgIDs = *input.OrganisationIDs
		}
		if input.AttributeIDs != nil || input.OrganisationIDs != nil {
			if err := s.replaceAssociations(tx, app, attrIDs, orgIDs); err != nil {
				return err
			}
		}

		return rebuildHierarchy(tx, applicationsTable)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

// Delete removes an application and cascades to its entire subtree,
// including the join rows of every deleted record.
func (s *ApplicationStore) Delete(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Transaction(func(tx *gorm.DB) error {
		app, err := getByID[models.Application](tx, id, "application")
		if err != nil {
			return err
		}
		ids, err := subtreeIDs(tx, applicationsTable, app.Tree(), app.ID)
		if err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM application_attributes WHERE application_id IN ?", ids).Error; err != nil {
			return apperrors.NewInternalError(err)
		}
		if err := tx.Exec("DELETE FROM application_organisations WHERE application_id IN ?", ids).Error; err != nil {
			return apperrors.NewInternalError(err)
		}
		if err := tx.Delete(&models.Application{}, "id IN ?", ids).Error; err != nil {
			return apperrors.NewInternalError(err)
		}
		return rebuildHierarchy(tx, applicationsTable)
	})
}

// Ancestors returns the chain from root to the record's parent.
func (s *ApplicationStore) Ancestors(id uuid.UUID) ([]models.Application, error) {
	app, err := getByID[models.Application](s.db, id, "application")
	if err != nil {
		return nil, err
	}
	return ancestorsOf[models.Application](s.db, app.Tree())
}

// Descendants returns the record's entire subtree in pre-order, excluding
// the record itself.
func (s *ApplicationStore) Descendants(id uuid.UUID) ([]models.Application, error) {
	app, err := getByID[models.Application](s.db, id, "application")
	if err != nil {
		return nil, err
	}
	return descendantsOf[models.Application](s.db, app.Tree())
}

// Children returns the record's direct children in sibling order.
func (s *ApplicationStore) Children(id uuid.UUID) ([]models.Application, error) {
	if _, err := getByID[models.Application](s.db, id, "application"); err != nil {
		return nil, err
	}
	return childrenOf[models.Application](s.db, id)
}

// Tree returns every application in pre-order.
func (s *ApplicationStore) Tree() ([]models.Application, error) {
	return preorderAll[models.Application](s.db)
}

// replaceAssociations swaps the attribute/organisation sets. Unknown ids are
// rejected per-field; duplicates collapse because membership is a set.
func (s *ApplicationStore) replaceAssociations(tx *gorm.DB, app *models.Application, attrIDs, orgIDs []uuid.UUID) error {
	if attrIDs != nil {
		var attrs []models.Attribute
		if len(attrIDs) > 0 {
			if err := tx.Where("id IN ?", attrIDs).Find(&attrs).Error; err != nil {
				return apperrors.NewInternalError(err)
			}
			if len(attrs) != len(dedupe(attrIDs)) {
				return apperrors.NewValidationError("attribute_ids", "one or more attributes not found")
			}
		}
		if err := tx.Model(app).Association("Attributes").Replace(attrs); err != nil {
			return apperrors.NewInternalError(err)
		}
	}
	if orgIDs != nil {
		var orgs []models.Organisation
		if len(orgIDs) > 0 {
			if err := tx.Where("id IN ?", orgIDs).Find(&orgs).Error; err != nil {
				return apperrors.NewInternalError(err)
			}
			if len(orgs) != len(dedupe(orgIDs)) {
				return apperrors.NewValidationError("organisation_ids", "one or more organisations not found")
			}
		}
		if err := tx.Model(app).Association("Organisations").Replace(orgs); err != nil {
			return apperrors.NewInternalError(err)
		}
	}
	return nil
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
