package store

import (
	"time"

	apperrors "github.com/aethra/atlas/internal/errors"
	"github.com/aethra/atlas/internal/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListParams represents parameters for listing/filtering records. The zero
// value lists everything in pre-order with default pagination. Filter fields
// are only honored by stores whose entity carries them (DataType is
// Attribute-only, IsActive applies to Attribute and Organisation).
type ListParams struct {
	Page     int
	PageSize int
	Sort     string
	SortDir  string

	Search        string
	ParentID      *uuid.UUID
	RootsOnly     bool
	IsActive      *bool
	DataType      string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

// ListResult represents one page of records plus pagination metadata.
type ListResult[T any] struct {
	Data       []T   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// Columns callers may sort on, mapped to their database columns. Shared by
// all three entities; the default order is the materialized path so a plain
// listing is a pre-order tree walk.
var sortableColumns = map[string]string{
	"name":       "name",
	"slug":       "slug",
	"path":       "path",
	"depth":      "depth",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

func list[T any](db *gorm.DB, params ListParams, searchCols []string) (*ListResult[T], error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 {
		params.PageSize = 25
	}
	if params.PageSize > 100 {
		params.PageSize = 100
	}

	query := db.Model(new(T))

	if params.ParentID != nil {
		query = query.Where("parent_id = ?", *params.ParentID)
	} else if params.RootsOnly {
		query = query.Where("parent_id IS NULL")
	}
	if params.IsActive != nil {
		query = query.Where("is_active = ?", *params.IsActive)
	}
	if params.DataType != "" {
		query = query.Where("data_type = ?", params.DataType)
	}
	if params.CreatedAfter != nil {
		query = query.Where("created_at >= ?", *params.CreatedAfter)
	}
	if params.CreatedBefore != nil {
		query = query.Where("created_at <= ?", *params.CreatedBefore)
	}

	if params.Search != "" {
		if cond, args := security.MultiSearchCondition(searchCols, params.Search); cond != "" {
			query = query.Where(cond, args...)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	if col, ok := sortableColumns[params.Sort]; ok {
		dir := "ASC"
		if params.SortDir == "desc" || params.SortDir == "DESC" {
			dir = "DESC"
		}
		query = query.Order(col + " " + dir)
	} else {
		query = query.Order("path")
	}

	offset := (params.Page - 1) * params.PageSize
	var data []T
	if err := query.Offset(offset).Limit(params.PageSize).Find(&data).Error; err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	totalPages := int(total) / params.PageSize
	if int(total)%params.PageSize > 0 {
		totalPages++
	}

	return &ListResult[T]{
		Data:       data,
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: totalPages,
	}, nil
}
