package api

import (
	"net/http"

	apperrors "github.com/aethra/atlas/internal/errors"
	"github.com/aethra/atlas/internal/models"
	"github.com/aethra/atlas/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ApplicationHandler contains the Application API handlers
type ApplicationHandler struct {
	store *store.ApplicationStore
}

// NewApplicationHandler creates a new application handler
func NewApplicationHandler(s *store.ApplicationStore) *ApplicationHandler {
	return &ApplicationHandler{store: s}
}

// List returns a page of applications in pre-order
// GET /applications
func (h *ApplicationHandler) List(c *gin.Context) {
	result, err := h.store.List(parseListParams(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// AdminList returns a filtered, searchable page of applications
// GET /admin/applications
func (h *ApplicationHandler) AdminList(c *gin.Context) {
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

// Get returns a single application with its tree information. The path
// parameter may be an id or a slug.
// GET /applications/:id
func (h *ApplicationHandler) Get(c *gin.Context) {
	h.detail(c, c.Param("id"))
}

// GetBySlug returns a single application addressed by slug
// GET /applications/slug/:slug
func (h *ApplicationHandler) GetBySlug(c *gin.Context) {
	h.detail(c, c.Param("slug"))
}

func (h *ApplicationHandler) detail(c *gin.Context, param string) {
	app, err := h.lookup(param)
	if err != nil {
		respondError(c, err)
		return
	}

	ancestors, err := h.store.Ancestors(app.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	names := make([]string, len(ancestors))
	for i, a := range ancestors {
		names[i] = a.Name
	}

	parentLabel := ""
	if app.Parent != nil {
		parentLabel = app.Parent.Name
	}

	c.JSON(http.StatusOK, gin.H{
		"data":          app,
		"indented_name": app.IndentedName(),
		"parent_name":   parentLabel,
		"tree_info":     buildTreeInfo(app.Tree(), names, app.Name),
	})
}

// Create creates a new application
// POST /applications
func (h *ApplicationHandler) Create(c *gin.Context) {
	var input struct {
		Name            string                 `json:"name" binding:"required"`
		Description     string                 `json:"description"`
		Slug            string                 `json:"slug"`
		ParentID        *uuid.UUID             `json:"parent_id"`
		Properties      map[string]interface{} `json:"properties"`
		AttributeIDs    []uuid.UUID            `json:"attribute_ids"`
		OrganisationIDs []uuid.UUID            `json:"organisation_ids"`
	}
	if err := bindJSON(c, &input); err != nil {
		respondError(c, err)
		return
	}

	app, err := h.store.Create(store.ApplicationCreateInput{
		Name:            input.Name,
		Description:     input.Description,
		Slug:            input.Slug,
		ParentID:        input.ParentID,
		Properties:      models.JSONB(input.Properties),
		AttributeIDs:    input.AttributeIDs,
		OrganisationIDs: input.OrganisationIDs,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, app)
}

// Update updates an application. Supplying a zero parent_id detaches the
// record to root; a parent change reindexes the tree before returning.
// PUT /applications/:id
func (h *ApplicationHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperrors.NewBadRequestError("invalid id"))
		return
	}

	var input struct {
		Name            *string                `json:"name"`
		Description     *string                `json:"description"`
		Slug            *string                `json:"slug"`
		ParentID        *uuid.UUID             `json:"parent_id"`
		Position        *int                   `json:"position"`
		Properties      map[string]interface{} `json:"properties"`
		AttributeIDs    *[]uuid.UUID           `json:"attribute_ids"`
		OrganisationIDs *[]uuid.UUID           `json:"organisation_ids"`
	}
	if err := bindJSON(c, &input); err != nil {
		respondError(c, err)
		return
	}

	app, err := h.store.Update(id, store.ApplicationUpdateInput{
		Name:            input.Name,
		Description:     input.Description,
		Slug:            input.Slug,
		ParentID:        input.ParentID,
		Position:        input.Position,
		Properties:      models.JSONB(input.Properties),
		AttributeIDs:    input.AttributeIDs,
		OrganisationIDs: input.OrganisationIDs,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, app)
}

// Delete deletes an application and its descendants
// DELETE /applications/:id
func (h *ApplicationHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperrors.NewBadRequestError("invalid id"))
		return
	}
	if err := h.store.Delete(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "application deleted"})
}

// Tree returns all applications in pre-order
// GET /applications/tree
func (h *ApplicationHandler) Tree(c *gin.Context) {
	apps, err := h.store.Tree()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": apps})
}

// Ancestors returns the ancestor chain, root first
// GET /applications/:id/ancestors
func (h *ApplicationHandler) Ancestors(c *gin.Context) {
	h.treeQuery(c, h.store.Ancestors)
}

// Descendants returns the subtree below the record, pre-order
// GET /applications/:id/descendants
func (h *ApplicationHandler) Descendants(c *gin.Context) {
	h.treeQuery(c, h.store.Descendants)
}

// Children returns the direct children in sibling order
// GET /applications/:id/children
func (h *ApplicationHandler) Children(c *gin.Context) {
	h.treeQuery(c, h.store.Children)
}

// Options returns a pre-order picklist with indented labels
// GET /admin/applications/options
func (h *ApplicationHandler) Options(c *gin.Context) {
	apps, err := h.store.Tree()
	if err != nil {
		respondError(c, err)
		return
	}
	options := make([]treeOption, len(apps))
	for i := range apps {
		options[i] = treeOption{
			ID:    apps[i].ID,
			Label: apps[i].IndentedName(),
			Slug:  apps[i].Slug,
			Depth: apps[i].Depth,
		}
	}
	c.JSON(http.StatusOK, gin.H{"data": options})
}

func (h *ApplicationHandler) treeQuery(c *gin.Context, query func(uuid.UUID) ([]models.Application, error)) {
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

func (h *ApplicationHandler) lookup(param string) (*models.Application, error) {
	if id, err := uuid.Parse(param); err == nil {
		return h.store.Get(id)
	}
	return h.store.GetBySlug(param)
}
