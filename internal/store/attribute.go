package store

import (
	"sync"

	apperrors "github.com/aethra/atlas/internal/errors"
	"github.com/aethra/atlas/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const attributesTable = "attributes"

// AttributeStore manages Attribute records and their hierarchy index.
type AttributeStore struct {
	db *gorm.DB
	mu sync.Mutex
}

// NewAttributeStore creates a new attribute store
func NewAttributeStore(db *gorm.DB) *AttributeStore {
	return &AttributeStore{db: db}
}

// AttributeCreateInput carries the writable fields for creation. Value is
// stored as text whatever the data type; DataType defaults to string.
type AttributeCreateInput struct {
	Name        string
	Value       string
	DataType    models.DataType
	Description string
	Slug        string
	ParentID    *uuid.UUID
	IsActive    *bool
	Metadata    models.JSONB
}

// AttributeUpdateInput carries partial updates; nil fields are untouched.
// A ParentID of uuid.Nil detaches the record to root.
type AttributeUpdateInput struct {
	Name        *string
	Value       *string
	DataType    *models.DataType
	Description *string
	Slug        *string
	ParentID    *uuid.UUID
	Position    *int
	IsActive    *bool
	Metadata    models.JSONB
}

// Create inserts an attribute, assigns its slug and reindexes the tree.
func (s *AttributeStore) Create(input AttributeCreateInput) (*models.Attribute, error) {
	if input.Name == "" {
		return nil, apperrors.NewValidationError("name", "name is required")
	}
	if input.DataType == "" {
		input.DataType = models.DataTypeString
	}
	if !input.DataType.Valid() {
		return nil, apperrors.NewValidationError("data_type", "unknown data type")
	}

	attr := &models.Attribute{
		Base:        models.Base{ID: uuid.New(), Slug: input.Slug},
		TreeNode:    models.TreeNode{ParentID: input.ParentID},
		Name:        input.Name,
		Value:       input.Value,
		DataType:    input.DataType,
		Description: input.Description,
		IsActive:    true,
		Metadata:    input.Metadata,
	}
	if input.IsActive != nil {
		attr.IsActive = *input.IsActive
	}
	if attr.Metadata == nil {
		attr.Metadata = models.JSONB{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if input.ParentID != nil {
			if _, err := getByID[models.Attribute](tx, *input.ParentID, "parent attribute"); err != nil {
				if apperrors.IsNotFound(err) {
					return apperrors.NewValidationError("parent_id", "parent attribute not found")
				}
				return err
			}
		}
		if err := ensureSlug(tx, attributesTable, attr); err != nil {
			return err
		}
		if err := tx.Create(attr).Error; err != nil {
			return apperrors.NewInternalError(err)
		}
		if err := rebuildHierarchy(tx, attributesTable); err != nil {
			return err
		}
		return tx.First(attr, "id = ?", attr.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(attr.ID)
}

// Get returns an attribute with its parent loaded.
func (s *AttributeStore) Get(id uuid.UUID) (*models.Attribute, error) {
	var attr models.Attribute
	if err := s.db.Preload("Parent").First(&attr, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NewNotFoundError("attribute")
		}
		return nil, apperrors.NewInternalError(err)
	}
	return &attr, nil
}

// GetBySlug returns an attribute by its slug.
func (s *AttributeStore) GetBySlug(slugValue string) (*models.Attribute, error) {
	rec, err := getBySlug[models.Attribute](s.db, slugValue, "attribute")
	if err != nil {
		return nil, err
	}
	return s.Get(rec.ID)
}

// List returns a page of attributes, pre-order by default. Search covers
// name, slug, value and description.
func (s *AttributeStore) List(params ListParams) (*ListResult[models.Attribute], error) {
	if params.DataType != "" && !models.DataType(params.DataType).Valid() {
		return nil, apperrors.NewValidationError("data_type", "unknown data type")
	}
	return list[models.Attribute](s.db, params, []string{"name", "slug", "value", "description"})
}

// Update applies a partial update, revalidating parent assignments and
// reindexing the tree in the same transaction.
func (s *AttributeStore) Update(id uuid.UUID, input AttributeUpdateInput) (*models.Attribute, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		attr, err := getByID[models.Attribute](tx, id, "attribute")
		if err != nil {
			return err
		}

		if input.ParentID != nil {
			if *input.ParentID == uuid.Nil {
				attr.ParentID = nil
			} else {
				if err := checkParent(tx, attributesTable, id, *input.ParentID); err != nil {
					return err
				}
				parentID := *input.ParentID
				attr.ParentID = &parentID
			}
		}
		if input.Name != nil {
			if *input.Name == "" {
				return apperrors.NewValidationError("name", "name is required")
			}
			attr.Name = *input.Name
		}
		if input.DataType != nil {
			if !input.DataType.Valid() {
				return apperrors.NewValidationError("data_type", "unknown data type")
			}
			attr.DataType = *input.DataType
		}
		if input.Value != nil {
			attr.Value = *input.Value
		}
		if input.Description != nil {
			attr.Description = *input.Description
		}
		if input.Position != nil {
			attr.Position = *input.Position
		}
		if input.IsActive != nil {
			attr.IsActive = *input.IsActive
		}
		if input.Metadata != nil {
			attr.Metadata = input.Metadata
		}
		if input.Slug != nil {
			attr.Slug = *input.Slug
		}
		if err := ensureSlug(tx, attributesTable, attr); err != nil {
			return err
		}

		if err := tx.Save(attr).Error; err != nil {
			return apperrors.NewInternalError(err)
		}
		return rebuildHierarchy(tx, attributesTable)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

// Delete removes an attribute and cascades to its entire subtree, including
// membership in application attribute sets.
func (s *AttributeStore) Delete(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Transaction(func(tx *gorm.DB) error {
		attr, err := getByID[models.Attribute](tx, id, "attribute")
		if err != nil {
			return err
		}
		ids, err := subtreeIDs(tx, attributesTable, attr.Tree(), attr.ID)
		if err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM application_attributes WHERE attribute_id IN ?", ids).Error; err != nil {
			return apperrors.NewInternalError(err)
		}
		if err := tx.Delete(&models.Attribute{}, "id IN ?", ids).Error; err != nil {
			return apperrors.NewInternalError(err)
		}
		return rebuildHierarchy(tx, attributesTable)
	})
}

// Ancestors returns the chain from root to the record's parent.
func (s *AttributeStore) Ancestors(id uuid.UUID) ([]models.Attribute, error) {
	attr, err := getByID[models.Attribute](s.db, id, "attribute")
	if err != nil {
		return nil, err
	}
	return ancestorsOf[models.Attribute](s.db, attr.Tree())
}

// Descendants returns the record's subtree in pre-order, excluding itself.
func (s *AttributeStore) Descendants(id uuid.UUID) ([]models.Attribute, error) {
	attr, err := getByID[models.Attribute](s.db, id, "attribute")
	if err != nil {
		return nil, err
	}
	return descendantsOf[models.Attribute](s.db, attr.Tree())
}

// Children returns the record's direct children in sibling order.
func (s *AttributeStore) Children(id uuid.UUID) ([]models.Attribute, error) {
	if _, err := getByID[models.Attribute](s.db, id, "attribute"); err != nil {
		return nil, err
	}
	return childrenOf[models.Attribute](s.db, id)
}

// Tree returns every attribute in pre-order.
func (s *AttributeStore) Tree() ([]models.Attribute, error) {
	return preorderAll[models.Attribute](s.db)
}
