package api

import (
	"net/http"

	apperrors "github.com/aethra/atlas/internal/errors"
	"github.com/aethra/atlas/internal/models"
	"github.com/aethra/atlas/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OrganisationHandler contains the Organisation API handlers
type OrganisationHandler struct {
	store *store.OrganisationStore
}

// NewOrganisationHandler creates a new organisation handler
func NewOrganisationHandler(s *store.OrganisationStore) *OrganisationHandler {
	return &OrganisationHandler{store: s}
}

// List returns a page of organisations in pre-order
// GET /organisations
func (h *OrganisationHandler) List(c *gin.Context) {
	result, err := h.store.List(parseListParams(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// AdminList returns a filtered, searchable page of organisations
// GET /admin/organisations
func (h *OrganisationHandler) AdminList(c *gin.Context) {
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

// Get returns a single organisation with its tree information. The path
// parameter may be an id or a slug.
// GET /organisations/:id
func (h *OrganisationHandler) Get(c *gin.Context) {
	h.detail(c, c.Param("id"))
}

// GetBySlug returns a single organisation addressed by slug
// GET /organisations/slug/:slug
func (h *OrganisationHandler) GetBySlug(c *gin.Context) {
	h.detail(c, c.Param("slug"))
}

func (h *OrganisationHandler) detail(c *gin.Context, param string) {
	org, err := h.lookup(param)
	if err != nil {
		respondError(c, err)
		return
	}

	ancestors, err := h.store.Ancestors(org.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	names := make([]string, len(ancestors))
	for i, a := range ancestors {
		names[i] = a.Name
	}

	parentLabel := ""
	if org.Parent != nil {
		parentLabel = org.Parent.Name
	}

	c.JSON(http.StatusOK, gin.H{
		"data":          org,
		"indented_name": org.IndentedName(),
		"parent_name":   parentLabel,
		"tree_info":     buildTreeInfo(org.Tree(), names, org.Name),
	})
}

// Create creates a new organisation
// POST /organisations
func (h *OrganisationHandler) Create(c *gin.Context) {
	var input struct {
		Name        string                 `json:"name" binding:"required"`
		Description string                 `json:"description"`
		Code        string                 `json:"code"`
		Email       string                 `json:"email" binding:"omitempty,email"`
		Phone       string                 `json:"phone"`
		Address     string                 `json:"address"`
		Website     string                 `json:"website" binding:"omitempty,url"`
		Slug        string                 `json:"slug"`
		ParentID    *uuid.UUID             `json:"parent_id"`
		IsActive    *bool                  `json:"is_active"`
		Metadata    map[string]interface{} `json:"metadata"`
	}
	if err := bindJSON(c, &input); err != nil {
		respondError(c, err)
		return
	}

	org, err := h.store.Create(store.OrganisationCreateInput{
		Name:        input.Name,
		Description: input.Description,
		Code:        input.Code,
		Email:       input.Email,
		Phone:       input.Phone,
		Address:     input.Address,
		Website:     input.Website,
		Slug:        input.Slug,
		ParentID:    input.ParentID,
		IsActive:    input.IsActive,
		Metadata:    models.JSONB(input.Metadata),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, org)
}

// Update updates an organisation. Supplying a zero parent_id detaches the
// record to root; a parent change reindexes the tree before returning.
// PUT /organisations/:id
func (h *OrganisationHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperrors.NewBadRequestError("invalid id"))
		return
	}

	var input struct {
		Name        *string                `json:"name"`
		Description *string                `json:"description"`
		Code        *string                `json:"code"`
		Email       *string                `json:"email" binding:"omitempty,email"`
		Phone       *string                `json:"phone"`
		Address     *string                `json:"address"`
		Website     *string                `json:"website" binding:"omitempty,url"`
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

	org, err := h.store.Update(id, store.OrganisationUpdateInput{
		Name:        input.Name,
		Description: input.Description,
		Code:        input.Code,
		Email:       input.Email,
		Phone:       input.Phone,
		Address:     input.Address,
		Website:     input.Website,
		Slug:        input.Slug,
		ParentID:    input.ParentID,
		Position:    input.Position,
		IsActive:    input.IsActive,
		Metadata:    models.JSONB(input.Metadata),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, org)
}

// Delete deletes an organisation and its descendants
// DELETE /organisations/:id
func (h *OrganisationHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperrors.NewBadRequestError("invalid id"))
		return
	}
	if err := h.store.Delete(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "organisation deleted"})
}

// Tree returns all organisations in pre-order
// GET /organisations/tree
func (h *OrganisationHandler) Tree(c *gin.Context) {
	orgs, err := h.store.Tree()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": orgs})
}

// Ancestors returns the ancestor chain, root first
// GET /organisations/:id/ancestors
func (h *OrganisationHandler) Ancestors(c *gin.Context) {
	h.treeQuery(c, h.store.Ancestors)
}

// Descendants returns the subtree below the record, pre-order
// GET /organisations/:id/descendants
func (h *OrganisationHandler) Descendants(c *gin.Context) {
	h.treeQuery(c, h.store.Descendants)
}

// Children returns the direct children in sibling order
// GET /organisations/:id/children
func (h *OrganisationHandler) Children(c *gin.Context) {
	h.treeQuery(c, h.store.Children)
}

// Options returns a pre-order picklist with indented labels
// GET /admin/organisations/options
func (h *OrganisationHandler) Options(c *gin.Context) {
	orgs, err := h.store.Tree()
	if err != nil {
		respondError(c, err)
		return
	}
	options := make([]treeOption, len(orgs))
	for i := range orgs {
		options[i] = treeOption{
			ID:    orgs[i].ID,
			Label: orgs[i].IndentedName(),
			Slug:  orgs[i].Slug,
			Depth: orgs[i].Depth,
		}
	}
	c.JSON(http.StatusOK, gin.H{"data": options})
}

func (h *OrganisationHandler) treeQuery(c *gin.Context, query func(uuid.UUID) ([]models.Organisation, error)) {
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

func (h *OrganisationHandler) lookup(param string) (*models.Organisation, error) {
	if id, err := uuid.Parse(param); err == nil {
		return h.store.Get(id)
	}
	return h.store.GetBySlug(param)
}
