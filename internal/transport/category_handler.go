package transport

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"shopfront/internal/domain"
	"shopfront/internal/middleware"
	"shopfront/internal/service"
)

// CategoryHandler exposes the category admin workflows over HTTP.
type CategoryHandler struct {
	categories service.CategoryService
	logger     *zap.Logger
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categories service.CategoryService, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{categories: categories, logger: logger}
}

// RegisterRoutes mounts the category routes on an already-authenticated
// admin router.
func (h *CategoryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/categories", h.ShowList)
	r.Get("/categories/new", h.NewForm)
	r.Get("/categories/{categoryID}/edit", h.EditForm)
	r.Post("/categories", h.Update)
}

// ShowList renders the category tree.
func (h *CategoryHandler) ShowList(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	categories, err := h.categories.ShowList(r.Context(), principal)
	if err != nil {
		middleware.RenderError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, View{
		Name: "categories/list",
		Data: ViewData{Categories: categories},
	})
}

// NewForm renders a blank category form, optionally parented via the
// parentid query parameter.
func (h *CategoryHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var parentID int64
	if raw := r.URL.Query().Get("parentid"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid parent id")
			return
		}
		parentID = id
	}

	edit, err := h.categories.NewForm(r.Context(), principal, parentID)
	if err != nil {
		middleware.RenderError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, View{
		Name: "categories/new",
		Data: ViewData{Category: edit.Category, Categories: edit.Categories},
	})
}

// EditForm renders the form for an existing category.
func (h *CategoryHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	categoryID, err := pathID(r, "categoryID")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	edit, err := h.categories.EditForm(r.Context(), principal, categoryID)
	if err != nil {
		middleware.RenderError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, View{
		Name: "categories/edit",
		Data: ViewData{Category: edit.Category, Categories: edit.Categories},
	})
}

// Update is the category write endpoint; categoryid "0" means create.
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := r.ParseForm(); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid form body")
		return
	}

	categoryID, err := strconv.ParseInt(r.Form.Get("categoryid"), 10, 64)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	edit, err := h.categories.Update(r.Context(), principal, categoryID, r.Form)
	if err != nil {
		middleware.RenderError(w, h.logger, err)
		return
	}

	status := http.StatusOK
	if categoryID == domain.UnsavedID {
		status = http.StatusCreated
	}

	middleware.RespondWithJSON(w, status, View{
		Name: "categories/edit",
		Data: ViewData{Category: edit.Category, Categories: edit.Categories},
	})
}
