package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"bim-viewer/internal/viewer/filter"
	"bim-viewer/internal/viewer/hierarchy"
	"bim-viewer/internal/viewer/loader"
	"bim-viewer/internal/viewer/scene"
	"bim-viewer/internal/viewer/store"
	"bim-viewer/internal/viewer/views"
)

// ============================================================
// Handler
// ============================================================

// Handler carries the service dependencies into the route handlers.
type Handler struct {
	Log      *zap.SugaredLogger
	Registry *Registry
	Loader   *loader.Loader
	Store    *store.Store
	Views    *views.Config
}

func New(log *zap.SugaredLogger, st *store.Store, cfg *views.Config) *Handler {
	return &Handler{
		Log:      log,
		Registry: NewRegistry(),
		Loader:   loader.New(),
		Store:    st,
		Views:    cfg,
	}
}

// Register mounts all viewer routes on the app.
func (h *Handler) Register(app *fiber.App) {
	api := app.Group("/api")

	api.Post("/models", h.OpenModel)
	api.Delete("/models/:id", h.CloseModel)
	api.Get("/models/:id/hierarchy", h.GetHierarchy)
	api.Get("/models/:id/scene", h.GetScene)
	api.Put("/models/:id/selection", h.SetSelection)
	api.Put("/models/:id/nodes/:node/checked", h.SetNodeChecked)
	api.Put("/models/:id/expanded", h.SetExpanded)
	api.Get("/models/:id/elements/:element/record", h.GetElementRecord)
	api.Get("/models/:id/warnings", h.GetWarnings)

	api.Get("/views", h.ListViews)
	api.Get("/views/:name", h.GetView)
	api.Put("/views/:name", h.SaveView)
}

// fail maps known error kinds to status codes.
func fail(c fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, ErrNoDocument),
		errors.Is(err, scene.ErrUnknownElement),
		errors.Is(err, hierarchy.ErrUnknownNode),
		errors.Is(err, store.ErrNotFound),
		errors.Is(err, views.ErrUnknownView):
		status = fiber.StatusNotFound
	case errors.Is(err, filter.ErrSyntax),
		errors.Is(err, hierarchy.ErrNotLeaf):
		status = fiber.StatusBadRequest
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
