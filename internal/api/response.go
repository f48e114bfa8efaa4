package api

import (
	"strings"

	"github.com/aethra/atlas/internal/models"
)

// treeInfo summarises a record's place in its hierarchy for detail
// responses: nesting level, the breadcrumb from root to the record and the
// nested-set interval.
type treeInfo struct {
	Level      int    `json:"level"`
	Breadcrumb string `json:"breadcrumb"`
	Left       int    `json:"left"`
	Right      int    `json:"right"`
}

func buildTreeInfo(node *models.TreeNode, ancestorNames []string, name string) treeInfo {
	return treeInfo{
		Level:      node.Depth,
		Breadcrumb: strings.Join(append(ancestorNames, name), " > "),
		Left:       node.Left,
		Right:      node.Right,
	}
}
