package api

import (
	"strconv"
	"time"

	apperrors "github.com/aethra/atlas/internal/errors"
	"github.com/aethra/atlas/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// parseListParams extracts the pagination and sorting parameters every list
// endpoint accepts.
func parseListParams(c *gin.Context) store.ListParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "25"))

	return store.ListParams{
		Page:     page,
		PageSize: pageSize,
		Sort:     c.Query("sort"),
		SortDir:  c.Query("sort_dir"),
	}
}

// parseAdminListParams extends the list parameters with the management
// surface's filters: free-text search, parent, status, data type and a
// created-at date range (YYYY-MM-DD, inclusive).
func parseAdminListParams(c *gin.Context) (store.ListParams, error) {
	params := parseListParams(c)
	params.Search = c.Query("search")
	params.DataType = c.Query("data_type")

	if raw := c.Query("parent_id"); raw != "" {
		if raw == "root" {
			params.RootsOnly = true
		} else {
			parentID, err := uuid.Parse(raw)
			if err != nil {
				return params, apperrors.NewValidationError("parent_id", "invalid parent_id")
			}
			params.ParentID = &parentID
		}
	}

	if raw := c.Query("is_active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return params, apperrors.NewValidationError("is_active", "invalid is_active")
		}
		params.IsActive = &active
	}

	if raw := c.Query("created_after"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return params, apperrors.NewValidationError("created_after", "expected YYYY-MM-DD")
		}
		params.CreatedAfter = &t
	}
	if raw := c.Query("created_before"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return params, apperrors.NewValidationError("created_before", "expected YYYY-MM-DD")
		}
		end := t.Add(24*time.Hour - time.Nanosecond)
		params.CreatedBefore = &end
	}

	return params, nil
}

// treeOption is one entry of a tree-ordered picklist: pre-order position
// with an indentation-ready label for parent dropdowns and set selection.
type treeOption struct {
	ID    uuid.UUID `json:"id"`
	Label string    `json:"label"`
	Slug  string    `json:"slug"`
	Depth int       `json:"depth"`
}
