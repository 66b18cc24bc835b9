package handlers

import (
	"context"
	"encoding/json"
	"io"

	"github.com/gofiber/fiber/v3"

	"bim-viewer/internal/viewer/loader"
	"bim-viewer/internal/viewer/model"
	"bim-viewer/internal/viewer/scene"
)

// ============================================================
// Model lifecycle
// ============================================================

type openModelRequest struct {
	Source string `json:"source"` // URL or server-side path
	View   string `json:"view"`   // named rule set, "" -> default
}

// OpenModel loads a parsed-model document (from a URL/path in the
// JSON body, or an uploaded file in multipart form field "model"),
// opens a scene document with the requested view's rules and
// returns its handle, warnings and hierarchy.
func (h *Handler) OpenModel(c fiber.Ctx) error {
	m, viewName, err := h.readModel(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	rules, err := h.resolveRules(viewName)
	if err != nil {
		return fail(c, err)
	}

	doc, err := scene.Open(m, rules)
	if err != nil {
		return fail(c, err)
	}

	id := h.Registry.Add(doc)
	h.Log.Infow("model opened", "document", id, "model", m.Name,
		"elements", len(m.Elements), "warnings", len(doc.Warnings()))

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":        id,
		"warnings":  doc.Warnings(),
		"hierarchy": doc.Tree(),
	})
}

func (h *Handler) readModel(c fiber.Ctx) (*model.Model, string, error) {
	if file, err := c.FormFile("model"); err == nil {
		f, err := file.Open()
		if err != nil {
			return nil, "", err
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return nil, "", err
		}
		m, err := loader.Decode(data)
		return m, c.FormValue("view"), err
	}

	var req openModelRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return nil, "", err
	}
	m, err := h.Loader.Fetch(context.Background(), req.Source)
	return m, req.View, err
}

// resolveRules looks the view name up in the configuration document
// first, then among the saved views.
func (h *Handler) resolveRules(viewName string) ([]model.ColorRule, error) {
	rules, err := h.Views.Rules(viewName)
	if err == nil {
		return rules, nil
	}
	if h.Store != nil {
		if saved, storeErr := h.Store.Get(context.Background(), viewName); storeErr == nil {
			return saved, nil
		}
	}
	return nil, err
}

// CloseModel discards a document.
func (h *Handler) CloseModel(c fiber.Ctx) error {
	id := c.Params("id")
	if !h.Registry.Remove(id) {
		return fail(c, ErrNoDocument)
	}
	h.Log.Infow("model closed", "document", id)
	return c.JSON(fiber.Map{"closed": id})
}

// GetWarnings returns the per-element warning list collected so far.
func (h *Handler) GetWarnings(c fiber.Ctx) error {
	var warnings []scene.Warning
	err := h.Registry.With(c.Params("id"), func(doc *scene.Document) error {
		warnings = doc.Warnings()
		return nil
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"warnings": warnings})
}
