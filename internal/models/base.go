// Package models contains the Atlas data structures.
// Every record composes Base (identity, slug, timestamps) and, for the
// hierarchical entities, TreeNode (parent link plus derived tree index).
package models

import (
	"time"

	"github.com/google/uuid"
)

// Base provides the common fields shared by all records:
// a UUID primary key assigned in application code, a unique URL-safe slug
// derived from the record's name, and creation/update timestamps.
type Base struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	Slug      string    `json:"slug" gorm:"uniqueIndex;size:255"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RecordID returns the record's primary key.
func (b *Base) RecordID() uuid.UUID { return b.ID }

// RecordSlug returns the record's slug.
func (b *Base) RecordSlug() string { return b.Slug }

// SetRecordSlug assigns the record's slug.
func (b *Base) SetRecordSlug(s string) { b.Slug = s }

// TreeNode provides the hierarchy fields. ParentID is the only field a
// caller may set; Depth, Path, Left and Right are derived and rewritten by
// the tree index whenever the structure changes. Position orders siblings
// ahead of insertion order when set explicitly.
//
// Path is a dot-joined sequence of zero-padded sibling positions, so a plain
// ascending sort on it yields pre-order traversal. Left/Right form a
// nested-set numbering: B is a descendant of A exactly when
// A.Left < B.Left and B.Right < A.Right.
type TreeNode struct {
	ParentID *uuid.UUID `json:"parent_id" gorm:"type:uuid;index"`
	Position int        `json:"position" gorm:"default:0"`
	Depth    int        `json:"depth" gorm:"default:0"`
	Path     string     `json:"path" gorm:"size:1024;index"`
	Left     int        `json:"left" gorm:"column:lft;default:0"`
	Right    int        `json:"right" gorm:"column:rgt;default:0"`
}

// Tree returns the hierarchy fields for shared store helpers.
func (t *TreeNode) Tree() *TreeNode { return t }

// IsRoot reports whether the node has no parent.
func (t *TreeNode) IsRoot() bool { return t.ParentID == nil }

// IsDescendantOf reports whether the node lies strictly inside other's
// nested-set interval.
func (t *TreeNode) IsDescendantOf(other *TreeNode) bool {
	return other.Left < t.Left && t.Right < other.Right
}
