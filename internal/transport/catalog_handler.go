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

// Multipart parsing ceiling for the product form.
const maxFormMemory = 32 << 20

// CatalogHandler exposes the product admin workflows over HTTP.
type CatalogHandler struct {
	catalog service.CatalogService
	logger  *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalog service.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, logger: logger}
}

// RegisterRoutes mounts the product routes on an already-authenticated
// admin router.
func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/categories/{categoryID}/products", h.ShowList)
	r.Get("/products/new", h.NewForm)
	r.Get("/products/{productID}", h.ShowItem)
	r.Get("/products/{productID}/edit", h.EditForm)
	r.Post("/products", h.Update)
}

// ShowList renders one category's products.
func (h *CatalogHandler) ShowList(w http.ResponseWriter, r *http.Request) {
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

	listing, err := h.catalog.ShowList(r.Context(), principal, categoryID)
	if err != nil {
		middleware.RenderError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, View{
		Name: "products/list",
		Data: ViewData{Category: listing.Category, Products: listing.Products},
	})
}

// ShowItem renders a single product.
func (h *CatalogHandler) ShowItem(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	productID, err := pathID(r, "productID")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	product, err := h.catalog.ShowItem(r.Context(), principal, productID)
	if err != nil {
		middleware.RenderError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, View{
		Name: "products/show",
		Data: ViewData{Product: product},
	})
}

// NewForm renders a blank product form for the category named in the
// categoryid query parameter.
func (h *CatalogHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	categoryID, err := strconv.ParseInt(r.URL.Query().Get("categoryid"), 10, 64)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	edit, err := h.catalog.NewForm(r.Context(), principal, categoryID)
	if err != nil {
		middleware.RenderError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, View{
		Name: "products/new",
		Data: ViewData{Product: edit.Product, Categories: edit.Categories},
	})
}

// EditForm renders the form for an existing product.
func (h *CatalogHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	productID, err := pathID(r, "productID")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	edit, err := h.catalog.EditForm(r.Context(), principal, productID)
	if err != nil {
		middleware.RenderError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, View{
		Name: "products/edit",
		Data: ViewData{Product: edit.Product, Categories: edit.Categories},
	})
}

// Update is the write endpoint: a multipart form whose productid field of
// "0" means create. Responds with the edit view so the client re-renders
// with the server-assigned identity.
func (h *CatalogHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		if err != http.ErrNotMultipart {
			h.logger.Debug("Product form parse failed", zap.Error(err))
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid form body")
			return
		}
		if err := r.ParseForm(); err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid form body")
			return
		}
	}

	productID, err := strconv.ParseInt(r.Form.Get("productid"), 10, 64)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	edit, err := h.catalog.Update(r.Context(), principal, productID, r.Form, r)
	if err != nil {
		middleware.RenderError(w, h.logger, err)
		return
	}

	status := http.StatusOK
	if productID == domain.UnsavedID {
		status = http.StatusCreated
	}

	middleware.RespondWithJSON(w, status, View{
		Name: "products/edit",
		Data: ViewData{Product: edit.Product, Categories: edit.Categories},
	})
}

// pathID parses an integer id out of a chi route parameter.
func pathID(r *http.Request, param string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, param), 10, 64)
}
