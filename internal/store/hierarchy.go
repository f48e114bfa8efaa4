package store

import (
	"strconv"
	"time"

	apperrors "github.com/aethra/atlas/internal/errors"
	"github.com/aethra/atlas/internal/models"
	"github.com/aethra/atlas/internal/tree"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// nodeRow is the minimal projection the rebuild needs from an entity table.
type nodeRow struct {
	ID        uuid.UUID
	ParentID  *uuid.UUID
	Position  int
	CreatedAt time.Time
}

// rebuildHierarchy recomputes depth, path and left/right for every row of an
// entity table. Siblings keep explicit position order first, insertion order
// second. Must run inside the transaction of the mutation that triggered it.
func rebuildHierarchy(tx *gorm.DB, table string) error {
	var rows []nodeRow
	if err := tx.Table(table).
		Select("id, parent_id, position, created_at").
		Order("position, created_at, id").
		Scan(&rows).Error; err != nil {
		return apperrors.NewInternalError(err)
	}

	nodes := make([]*tree.Node, len(rows))
	for i, r := range rows {
		nodes[i] = &tree.Node{ID: r.ID, ParentID: r.ParentID}
	}
	if err := tree.Rebuild(nodes); err != nil {
		// Cycles are rejected before any write, so reaching this means the
		// table was corrupted outside the store.
		return apperrors.NewInternalError(err)
	}

	for _, n := range nodes {
		if err := tx.Table(table).Where("id = ?", n.ID).Updates(map[string]interface{}{
			"depth": n.Depth,
			"path":  n.Path,
			"lft":   n.Left,
			"rgt":   n.Right,
		}).Error; err != nil {
			return apperrors.NewInternalError(err)
		}
	}
	return nil
}

// checkParent validates a prospective parent assignment: the parent must
// exist and must not be the node itself or one of its descendants. Runs
// before any hierarchy field is written.
func checkParent(tx *gorm.DB, table string, nodeID uuid.UUID, parentID uuid.UUID) error {
	if parentID == nodeID {
		return apperrors.NewValidationError("parent_id", "record cannot be its own parent")
	}

	var rows []nodeRow
	if err := tx.Table(table).Select("id, parent_id").Scan(&rows).Error; err != nil {
		return apperrors.NewInternalError(err)
	}

	parents := make(map[uuid.UUID]*uuid.UUID, len(rows))
	found := false
	for _, r := range rows {
		parents[r.ID] = r.ParentID
		if r.ID == parentID {
			found = true
		}
	}
	if !found {
		return apperrors.NewValidationError("parent_id", "parent record not found")
	}
	if tree.WouldCycle(parents, nodeID, &parentID) {
		return apperrors.NewValidationError("parent_id", "parent would create a cycle")
	}
	return nil
}

// ensureSlug assigns a unique slug derived from the record's display name,
// honoring an explicitly supplied slug. Collisions on the derived base slug
// resolve by suffixing -1, -2, ... The record itself is excluded from the
// uniqueness check so re-saving an already-slugged record is idempotent.
func ensureSlug(tx *gorm.DB, table string, rec record) error {
	if explicit := rec.RecordSlug(); explicit != "" {
		taken, err := slugTaken(tx, table, explicit, rec.RecordID())
		if err != nil {
			return err
		}
		if taken {
			return apperrors.NewValidationError("slug", "slug already in use")
		}
		return nil
	}

	base := slug.Make(rec.DisplayName())
	if base == "" {
		// Nothing to derive from; entity validation decides whether an
		// empty name is acceptable before we get here.
		return nil
	}

	candidate := base
	for counter := 1; ; counter++ {
		taken, err := slugTaken(tx, table, candidate, rec.RecordID())
		if err != nil {
			return err
		}
		if !taken {
			break
		}
		candidate = base + "-" + strconv.Itoa(counter)
	}
	rec.SetRecordSlug(candidate)
	return nil
}

func slugTaken(tx *gorm.DB, table, slug string, selfID uuid.UUID) (bool, error) {
	var count int64
	if err := tx.Table(table).
		Where("slug = ? AND id <> ?", slug, selfID).
		Count(&count).Error; err != nil {
		return false, apperrors.NewInternalError(err)
	}
	return count > 0, nil
}

// subtreeIDs returns the ids of a node and all of its descendants, using the
// nested-set interval.
func subtreeIDs(tx *gorm.DB, table string, node *models.TreeNode, selfID uuid.UUID) ([]uuid.UUID, error) {
	ids := []uuid.UUID{selfID}
	var descendantIDs []uuid.UUID
	if err := tx.Table(table).
		Where("lft > ? AND rgt < ?", node.Left, node.Right).
		Pluck("id", &descendantIDs).Error; err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return append(ids, descendantIDs...), nil
}

// Typed tree queries shared by the entity stores.

func ancestorsOf[T any](db *gorm.DB, node *models.TreeNode) ([]T, error) {
	var out []T
	if err := db.Where("lft < ? AND rgt > ?", node.Left, node.Right).
		Order("lft").Find(&out).Error; err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return out, nil
}

func descendantsOf[T any](db *gorm.DB, node *models.TreeNode) ([]T, error) {
	var out []T
	if err := db.Where("lft > ? AND rgt < ?", node.Left, node.Right).
		Order("lft").Find(&out).Error; err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return out, nil
}

func childrenOf[T any](db *gorm.DB, parentID uuid.UUID) ([]T, error) {
	var out []T
	if err := db.Where("parent_id = ?", parentID).
		Order("path").Find(&out).Error; err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return out, nil
}

// preorderAll returns every row of an entity in pre-order (path ascending).
func preorderAll[T any](db *gorm.DB) ([]T, error) {
	var out []T
	if err := db.Order("path").Find(&out).Error; err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return out, nil
}
