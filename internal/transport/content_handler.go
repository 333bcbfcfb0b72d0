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

// ContentHandler exposes the content-page admin workflows over HTTP.
type ContentHandler struct {
	contents service.ContentService
	logger   *zap.Logger
}

// NewContentHandler creates a new ContentHandler
func NewContentHandler(contents service.ContentService, logger *zap.Logger) *ContentHandler {
	return &ContentHandler{contents: contents, logger: logger}
}

// RegisterRoutes mounts the content routes on an already-authenticated
// admin router.
func (h *ContentHandler) RegisterRoutes(r chi.Router) {
	r.Get("/contents", h.ShowList)
	r.Get("/contents/page/{urlName}", h.ShowPage)
	r.Get("/contents/{contentID}", h.ShowItem)
	r.Post("/contents", h.Update)
}

// ShowList renders every content page.
func (h *ContentHandler) ShowList(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	contents, err := h.contents.ShowList(r.Context(), principal)
	if err != nil {
		middleware.RenderError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, View{
		Name: "contents/list",
		Data: ViewData{Contents: contents},
	})
}

// ShowItem renders one content page.
func (h *ContentHandler) ShowItem(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	contentID, err := pathID(r, "contentID")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid content id")
		return
	}

	content, err := h.contents.ShowItem(r.Context(), principal, contentID)
	if err != nil {
		middleware.RenderError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, View{
		Name: "contents/show",
		Data: ViewData{Content: content},
	})
}

// ShowPage resolves a page by its URL slug, previewing what the storefront
// serves under that address.
func (h *ContentHandler) ShowPage(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	urlName := chi.URLParam(r, "urlName")
	if urlName == "" {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid url name")
		return
	}

	content, err := h.contents.ShowPage(r.Context(), principal, urlName)
	if err != nil {
		middleware.RenderError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, View{
		Name: "contents/show",
		Data: ViewData{Content: content},
	})
}

// Update is the content write endpoint; contentid "0" means create.
func (h *ContentHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := r.ParseForm(); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid form body")
		return
	}

	contentID, err := strconv.ParseInt(r.Form.Get("contentid"), 10, 64)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid content id")
		return
	}

	content, err := h.contents.Update(r.Context(), principal, contentID, r.Form)
	if err != nil {
		middleware.RenderError(w, h.logger, err)
		return
	}

	status := http.StatusOK
	if contentID == domain.UnsavedID {
		status = http.StatusCreated
	}

	middleware.RespondWithJSON(w, status, View{
		Name: "contents/edit",
		Data: ViewData{Content: content},
	})
}
