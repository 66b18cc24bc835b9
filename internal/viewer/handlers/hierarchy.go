package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v3"

	"bim-viewer/internal/viewer/hierarchy"
	"bim-viewer/internal/viewer/scene"
)

// ============================================================
// Hierarchy routes
// ============================================================

// GetHierarchy returns the nested Storey -> Type -> Element tree
// with tri-state and expansion flags.
func (h *Handler) GetHierarchy(c fiber.Ctx) error {
	var tree hierarchy.View
	err := h.Registry.With(c.Params("id"), func(doc *scene.Document) error {
		tree = doc.Tree()
		return nil
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(tree)
}

type checkedRequest struct {
	Checked bool `json:"checked"`
}

// SetNodeChecked toggles a leaf or bulk-selects a subtree and
// returns the changed node ids plus the visibility repaint patch.
func (h *Handler) SetNodeChecked(c fiber.Ctx) error {
	var req checkedRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
	}

	nodeID := c.Params("node")
	var (
		changed []string
		patch   []scene.RenderItem
	)
	err := h.Registry.With(c.Params("id"), func(doc *scene.Document) error {
		var err error
		changed, patch, err = doc.SetNodeChecked(nodeID, req.Checked)
		return err
	})
	if err != nil {
		return fail(c, err)
	}

	h.Log.Debugw("node toggled", "document", c.Params("id"), "node", nodeID,
		"checked", req.Checked, "changed", len(changed))
	return c.JSON(fiber.Map{
		"changed_nodes": changed,
		"patch":         patch,
	})
}

type expandedRequest struct {
	Node     string `json:"node"` // empty -> whole tree
	Expanded bool   `json:"expanded"`
}

// SetExpanded expands or collapses one node, or the whole tree when
// no node is given. UI state only, selection is untouched.
func (h *Handler) SetExpanded(c fiber.Ctx) error {
	var req expandedRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
	}

	err := h.Registry.With(c.Params("id"), func(doc *scene.Document) error {
		if req.Node == "" {
			doc.SetExpandedAll(req.Expanded)
			return nil
		}
		return doc.SetExpanded(req.Node, req.Expanded)
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"expanded": req.Expanded})
}
