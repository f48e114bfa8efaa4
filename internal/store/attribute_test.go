package store

import (
	"testing"

	apperrors "github.com/aethra/atlas/internal/errors"
	"github.com/aethra/atlas/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttributeCreateDefaults(t *testing.T) {
	s := newTestStores(t).Attributes

	attr, err := s.Create(AttributeCreateInput{Name: "Category A"})
	require.NoError(t, err)

	assert.Equal(t, "category-a", attr.Slug)
	assert.Equal(t, models.DataTypeString, attr.DataType)
	assert.True(t, attr.IsActive)
	assert.NotNil(t, attr.Metadata)
}

func TestAttributeCreateRejectsUnknownDataType(t *testing.T) {
	s := newTestStores(t).Attributes

	_, err := s.Create(AttributeCreateInput{Name: "Bad", DataType: "decimal"})
	require.True(t, apperrors.IsValidation(err))
	assert.Contains(t, err.(*apperrors.ValidationError).Fields, "data_type")
}

func TestAttributeBooleanValue(t *testing.T) {
	s := newTestStores(t).Attributes

	category, err := s.Create(AttributeCreateInput{Name: "Category A"})
	require.NoError(t, err)
	tag, err := s.Create(AttributeCreateInput{
		Name:     "Tag 1",
		DataType: models.DataTypeBoolean,
		Value:    "true",
		ParentID: &category.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, tag.Depth)
	require.NotNil(t, tag.Parent)
	assert.Equal(t, category.ID, tag.Parent.ID)
	typed, err := tag.DataType.TypedValue(tag.Value)
	require.NoError(t, err)
	assert.Equal(t, true, typed)
}

func TestAttributeUpdateDataTypeKeepsValueText(t *testing.T) {
	s := newTestStores(t).Attributes

	attr, err := s.Create(AttributeCreateInput{Name: "Limit", Value: "not a number"})
	require.NoError(t, err)

	// Switching the declared type never touches the stored text, even when
	// the text no longer parses under the new type.
	dt := models.DataTypeInteger
	updated, err := s.Update(attr.ID, AttributeUpdateInput{DataType: &dt})
	require.NoError(t, err)
	assert.Equal(t, "not a number", updated.Value)
	_, err = updated.DataType.TypedValue(updated.Value)
	assert.Error(t, err)
}

func TestAttributeListFilters(t *testing.T) {
	s := newTestStores(t).Attributes

	inactive := false
	_, err := s.Create(AttributeCreateInput{Name: "Enabled Flag", DataType: models.DataTypeBoolean})
	require.NoError(t, err)
	_, err = s.Create(AttributeCreateInput{Name: "Retired Flag", DataType: models.DataTypeBoolean, IsActive: &inactive})
	require.NoError(t, err)
	_, err = s.Create(AttributeCreateInput{Name: "Limit", DataType: models.DataTypeInteger, Value: "10"})
	require.NoError(t, err)

	booleans, err := s.List(ListParams{DataType: "boolean"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), booleans.Total)

	active := true
	activeBooleans, err := s.List(ListParams{DataType: "boolean", IsActive: &active})
	require.NoError(t, err)
	require.Len(t, activeBooleans.Data, 1)
	assert.Equal(t, "Enabled Flag", activeBooleans.Data[0].Name)

	_, err = s.List(ListParams{DataType: "nope"})
	assert.True(t, apperrors.IsValidation(err))

	// Search covers the stored value text.
	byValue, err := s.List(ListParams{Search: "10"})
	require.NoError(t, err)
	require.Len(t, byValue.Data, 1)
	assert.Equal(t, "Limit", byValue.Data[0].Name)
}

func TestAttributeDeleteCascadesAndCleansMembership(t *testing.T) {
	stores := newTestStores(t)
	s := stores.Attributes

	parent, err := s.Create(AttributeCreateInput{Name: "Parent"})
	require.NoError(t, err)
	child, err := s.Create(AttributeCreateInput{Name: "Child", ParentID: &parent.ID})
	require.NoError(t, err)

	app, err := stores.Applications.Create(ApplicationCreateInput{
		Name:         "Portal",
		AttributeIDs: []uuid.UUID{child.ID},
	})
	require.NoError(t, err)

	require.NoError(t, s.Delete(parent.ID))

	_, err = s.Get(child.ID)
	assert.True(t, apperrors.IsNotFound(err))
	_, err = s.GetBySlug("child")
	assert.True(t, apperrors.IsNotFound(err))

	got, err := stores.Applications.Get(app.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Attributes)
}

func TestAttributeSiblingPositionOrder(t *testing.T) {
	s := newTestStores(t).Attributes

	root, err := s.Create(AttributeCreateInput{Name: "Root"})
	require.NoError(t, err)
	first, err := s.Create(AttributeCreateInput{Name: "First", ParentID: &root.ID})
	require.NoError(t, err)
	second, err := s.Create(AttributeCreateInput{Name: "Second", ParentID: &root.ID})
	require.NoError(t, err)

	// Explicit position overrides insertion order.
	pos := 1
	_, err = s.Update(first.ID, AttributeUpdateInput{Position: &pos})
	require.NoError(t, err)

	children, err := s.Children(root.ID)
	require.NoError(t, err)
	require.Len(t, children, 2)
	assert.Equal(t, second.ID, children[0].ID)
	assert.Equal(t, first.ID, children[1].ID)
}
