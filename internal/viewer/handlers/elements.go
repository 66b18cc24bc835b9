package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v3"

	"bim-viewer/internal/viewer/model"
	"bim-viewer/internal/viewer/scene"
)

// ============================================================
// Scene and element routes
// ============================================================

// GetScene returns the full render set: every mesh-bearing element
// with its resolved color and visibility (a full repaint).
func (h *Handler) GetScene(c fiber.Ctx) error {
	var (
		items    []scene.RenderItem
		selected string
	)
	err := h.Registry.With(c.Params("id"), func(doc *scene.Document) error {
		var err error
		items, err = doc.Repaint()
		selected = doc.Selected()
		return err
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"items":    items,
		"selected": selected,
	})
}

type selectionRequest struct {
	ElementID string `json:"element_id"` // empty clears the selection
}

// SetSelection selects one element (the properties-panel driver) and
// returns the incremental repaint for the elements whose color
// changed: the newly selected one and the previously selected one.
func (h *Handler) SetSelection(c fiber.Ctx) error {
	var req selectionRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
	}

	var patch []scene.RenderItem
	err := h.Registry.With(c.Params("id"), func(doc *scene.Document) error {
		changed, err := doc.Select(req.ElementID)
		if err != nil {
			return err
		}
		patch, err = doc.RepaintFor(changed)
		return err
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"selected": req.ElementID,
		"patch":    patch,
	})
}

// GetElementRecord returns the merged property sets and aggregated
// quantities of one element, including covering quantities for
// wall-like elements.
func (h *Handler) GetElementRecord(c fiber.Ctx) error {
	var record model.Record
	err := h.Registry.With(c.Params("id"), func(doc *scene.Document) error {
		var err error
		record, err = doc.ElementRecord(c.Params("element"))
		return err
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(record)
}
