package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	apperrors "github.com/aethra/atlas/internal/errors"
	"github.com/aethra/atlas/internal/models"
	"github.com/aethra/atlas/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AttributeHandler contains the Attribute API handlers
type AttributeHandler struct {
	store *store.AttributeStore
}

// NewAttributeHandler creates a new attribute handler
func NewAttributeHandler(s *store.AttributeStore) *AttributeHandler {
	return &AttributeHandler{store: s}
}

// List returns a page of attributes in pre-order
// GET /attributes
func (h *AttributeHandler) List(c *gin.Context) {
	result, err := h.store.List(parseListParams(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// AdminList returns a filtered, searchable page of attributes
// GET /admin/attributes
func (h *AttributeHandler) AdminList(c *gin.Context) {
	params, err := parseAdminListParams(c)
	if err != nil {
		respondError(c, err)
		return
	}
	result, err := h.store.List(params)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Get returns a single attribute with its typed value, form widget and tree
// information. The path parameter may be an id or a slug.
// GET /attributes/:id
func (h *AttributeHandler) Get(c *gin.Context) {
	h.detail(c, c.Param("id"))
}

// GetBySlug returns a single attribute addressed by slug
// GET /attributes/slug/:slug
func (h *AttributeHandler) GetBySlug(c *gin.Context) {
	h.detail(c, c.Param("slug"))
}

func (h *AttributeHandler) detail(c *gin.Context, param string) {
	attr, err := h.lookup(param)
	if err != nil {
		respondError(c, err)
		return
	}

	ancestors, err := h.store.Ancestors(attr.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	names := make([]string, len(ancestors))
	for i, a := range ancestors {
		names[i] = a.Name
	}

	parentLabel := ""
	if attr.Parent != nil {
		parentLabel = attr.Parent.Name
	}

	typed, typeErr := attr.DataType.TypedValue(attr.Value)
	body := gin.H{
		"data":          attr,
		"indented_name": attr.IndentedName(),
		"parent_name":   parentLabel,
		"widget":        attr.DataType.Widget(),
		"tree_info":     buildTreeInfo(attr.Tree(), names, attr.Name),
	}
	if typeErr == nil {
		body["typed_value"] = typed
	} else {
		// Stored text no longer parses under the current data type; expose
		// the raw value and the problem instead of failing the read.
		body["typed_value"] = attr.Value
		body["value_error"] = typeErr.Error()
	}
	c.JSON(http.StatusOK, body)
}

// Create creates a new attribute. The value may arrive as a JSON string,
// boolean or number and is normalised to its text representation.
// POST /attributes
func (h *AttributeHandler) Create(c *gin.Context) {
	var input struct {
		Name        string                 `json:"name" binding:"required"`
		Value       interface{}            `json:"value"`
		DataType    string                 `json:"data_type"`
		Description string                 `json:"description"`
		Slug        string                 `json:"slug"`
		ParentID    *uuid.UUID             `json:"parent_id"`
		IsActive    *bool                  `json:"is_active"`
		Metadata    map[string]interface{} `json:"metadata"`
	}
	if err := bindJSON(c, &input); err != nil {
		respondError(c, err)
		return
	}

	value, err := normalizeValue(input.Value)
	if err != nil {
		respondError(c, err)
		return
	}

	attr, err := h.store.Create(store.AttributeCreateInput{
		Name:        input.Name,
		Value:       value,
		DataType:    models.DataType(input.DataType),
		Description: input.Description,
		Slug:        input.Slug,
		ParentID:    input.ParentID,
		IsActive:    input.IsActive,
		Metadata:    models.JSONB(input.Metadata),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, attr)
}

// Update updates an attribute. Supplying a zero parent_id detaches the
// record to root; a parent change reindexes the tree before returning.
// PUT /attributes/:id
func (h *AttributeHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperrors.NewBadRequestError("invalid id"))
		return
	}

	var input struct {
		Name        *string                `json:"name"`
		Value       interface{}            `json:"value"`
		DataType    *string                `json:"data_type"`
		Description *string                `json:"description"`
		Slug        *string                `json:"slug"`
		ParentID    *uuid.UUID             `json:"parent_id"`
		Position    *int                   `json:"position"`
		IsActive    *bool                  `json:"is_active"`
		Metadata    map[string]interface{} `json:"metadata"`
	}
	if err := bindJSON(c, &input); err != nil {
		respondError(c, err)
		return
	}

	updateInput := store.AttributeUpdateInput{
		Name:        input.Name,
		Description: input.Description,
		Slug:        input.Slug,
		ParentID:    input.ParentID,
		Position:    input.Position,
		IsActive:    input.IsActive,
		Metadata:    models.JSONB(input.Metadata),
	}
	if input.DataType != nil {
		dt := models.DataType(*input.DataType)
		updateInput.DataType = &dt
	}
	if input.Value != nil {
		value, err := normalizeValue(input.Value)
		if err != nil {
			respondError(c, err)
			return
		}
		updateInput.Value = &value
	}

	attr, err := h.store.Update(id, updateInput)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, attr)
}

// Delete deletes an attribute and its descendants
// DELETE /attributes/:id
func (h *AttributeHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperrors.NewBadRequestError("invalid id"))
		return
	}
	if err := h.store.Delete(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "attribute deleted"})
}

// Tree returns all attributes in pre-order
// GET /attributes/tree
func (h *AttributeHandler) Tree(c *gin.Context) {
	attrs, err := h.store.Tree()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": attrs})
}

// Ancestors returns the ancestor chain, root first
// GET /attributes/:id/ancestors
func (h *AttributeHandler) Ancestors(c *gin.Context) {
	h.treeQuery(c, h.store.Ancestors)
}

// Descendants returns the subtree below the record, pre-order
// GET /attributes/:id/descendants
func (h *AttributeHandler) Descendants(c *gin.Context) {
	h.treeQuery(c, h.store.Descendants)
}

// Children returns the direct children in sibling order
// GET /attributes/:id/children
func (h *AttributeHandler) Children(c *gin.Context) {
	h.treeQuery(c, h.store.Children)
}

// Options returns a pre-order picklist with indented labels
// GET /admin/attributes/options
func (h *AttributeHandler) Options(c *gin.Context) {
	attrs, err := h.store.Tree()
	if err != nil {
		respondError(c, err)
		return
	}
	options := make([]treeOption, len(attrs))
	for i := range attrs {
		options[i] = treeOption{
			ID:    attrs[i].ID,
			Label: attrs[i].IndentedName(),
			Slug:  attrs[i].Slug,
			Depth: attrs[i].Depth,
		}
	}
	c.JSON(http.StatusOK, gin.H{"data": options})
}

// DataTypes returns the supported data types with their form widgets
// GET /admin/attributes/data-types
func (h *AttributeHandler) DataTypes(c *gin.Context) {
	types := make([]gin.H, len(models.DataTypes))
	for i, dt := range models.DataTypes {
		types[i] = gin.H{"value": string(dt), "widget": dt.Widget()}
	}
	c.JSON(http.StatusOK, gin.H{"data": types})
}

func (h *AttributeHandler) treeQuery(c *gin.Context, query func(uuid.UUID) ([]models.Attribute, error)) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperrors.NewBadRequestError("invalid id"))
		return
	}
	records, err := query(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": records})
}

func (h *AttributeHandler) lookup(param string) (*models.Attribute, error) {
	if id, err := uuid.Parse(param); err == nil {
		return h.store.Get(id)
	}
	return h.store.GetBySlug(param)
}

// normalizeValue converts a decoded JSON value into the stored text form.
// Strings pass through, booleans become "true"/"false", numbers keep their
// exact request text (json.Number), and objects or arrays are re-encoded as
// JSON. The float64 case only triggers for callers binding without
// json.Number decoding.
func normalizeValue(raw interface{}) (string, error) {
	switch v := raw.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case bool:
		return models.FormatBoolValue(v), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case json.Number:
		return v.String(), nil
	case map[string]interface{}, []interface{}:
		encoded, err := json.Marshal(v)
		if err != nil {
			return "", apperrors.NewValidationError("value", "value is not encodable")
		}
		return string(encoded), nil
	default:
		return "", apperrors.NewValidationError("value", "unsupported value type")
	}
}
