package handlers

import (
	"context"
	"encoding/json"

	"github.com/gofiber/fiber/v3"

	"bim-viewer/internal/viewer/filter"
	"bim-viewer/internal/viewer/model"
)

// ============================================================
// Saved view routes
// ============================================================

// ListViews returns the names of the saved rule sets.
func (h *Handler) ListViews(c fiber.Ctx) error {
	names, err := h.Store.List(context.Background())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"views": names})
}

// GetView returns the ordered rules of one saved view.
func (h *Handler) GetView(c fiber.Ctx) error {
	rules, err := h.Store.Get(context.Background(), c.Params("name"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"name": c.Params("name"), "rules": rules})
}

type saveViewRequest struct {
	Rules []model.ColorRule `json:"rules"`
}

// SaveView upserts a named rule set. Filter syntax is validated on
// the way in so a broken rule is rejected here, not discovered at
// repaint time.
func (h *Handler) SaveView(c fiber.Ctx) error {
	var req saveViewRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
	}
	for _, rule := range req.Rules {
		if _, err := filter.Parse(rule.Filter); err != nil {
			return fail(c, err)
		}
	}

	name := c.Params("name")
	if err := h.Store.Save(context.Background(), name, req.Rules); err != nil {
		return fail(c, err)
	}
	h.Log.Infow("view saved", "name", name, "rules", len(req.Rules))
	return c.JSON(fiber.Map{"saved": name})
}
