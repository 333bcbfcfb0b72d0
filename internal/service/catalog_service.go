package service

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"shopfront/internal/domain"
	"shopfront/internal/repository"
)

// ProductListing is the show-list view data: one category and its products.
type ProductListing struct {
	Category *domain.Category
	Products []*domain.Product
}

// ProductEdit is the form view data: one product (saved or blank) plus the
// full category list for the category picker.
type ProductEdit struct {
	Product    *domain.Product
	Categories []*domain.Category
}

// CatalogService orchestrates the product admin workflows. Every operation
// takes the authenticated principal explicitly; there is no ambient
// current-user state.
type CatalogService interface {
	ShowList(ctx context.Context, principal domain.Principal, categoryID int64) (*ProductListing, error)
	ShowItem(ctx context.Context, principal domain.Principal, productID int64) (*domain.Product, error)
	NewForm(ctx context.Context, principal domain.Principal, categoryID int64) (*ProductEdit, error)
	EditForm(ctx context.Context, principal domain.Principal, productID int64) (*ProductEdit, error)
	Update(ctx context.Context, principal domain.Principal, productID int64, values url.Values, r *http.Request) (*ProductEdit, error)
}

// Store factories: each call opens a fresh request-scoped unit of work.
type (
	ProductStoreFactory  func() repository.ProductRepository
	CategoryStoreFactory func() repository.CategoryRepository
)

type catalogService struct {
	products   ProductStoreFactory
	categories CategoryStoreFactory
	images     ImageService
	sizes      SizeService
	logger     *zap.Logger
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(
	products ProductStoreFactory,
	categories CategoryStoreFactory,
	images ImageService,
	sizes SizeService,
	logger *zap.Logger,
) CatalogService {
	return &catalogService{
		products:   products,
		categories: categories,
		images:     images,
		sizes:      sizes,
		logger:     logger,
	}
}

// ShowList returns the category and its products in store order.
func (s *catalogService) ShowList(ctx context.Context, principal domain.Principal, categoryID int64) (*ProductListing, error) {
	if !principal.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	category, err := s.categories().GetByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	products, err := s.products().ListByCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	return &ProductListing{Category: category, Products: products}, nil
}

// ShowItem returns one product with its images and sizes hydrated.
func (s *catalogService) ShowItem(ctx context.Context, principal domain.Principal, productID int64) (*domain.Product, error) {
	if !principal.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	return s.products().GetByID(ctx, productID)
}

// NewForm returns a blank product pre-associated with the category plus the
// category list. Nothing is persisted.
func (s *catalogService) NewForm(ctx context.Context, principal domain.Principal, categoryID int64) (*ProductEdit, error) {
	if !principal.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	categories, err := s.categories().List(ctx)
	if err != nil {
		return nil, err
	}

	product := &domain.Product{
		CategoryID: categoryID,
		Active:     true,
	}

	return &ProductEdit{Product: product, Categories: categories}, nil
}

// EditForm returns an existing product plus the category list.
func (s *catalogService) EditForm(ctx context.Context, principal domain.Principal, productID int64) (*ProductEdit, error) {
	if !principal.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	product, err := s.products().GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	categories, err := s.categories().List(ctx)
	if err != nil {
		return nil, err
	}

	return &ProductEdit{Product: product, Categories: categories}, nil
}

// Update is the write path: resolve or construct the product, bind the
// submitted fields, attach uploads, apply size/pricing, commit once, and
// return the edit view so the caller can re-render with the assigned id.
func (s *catalogService) Update(ctx context.Context, principal domain.Principal, productID int64, values url.Values, r *http.Request) (*ProductEdit, error) {
	if !principal.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	store := s.products()
	now := time.Now()

	var product *domain.Product
	if productID == domain.UnsavedID {
		product = &domain.Product{
			Active:    true,
			CreatedAt: now,
		}
		store.InsertOnSubmit(product)
	} else {
		existing, err := store.GetByID(ctx, productID)
		if err != nil {
			return nil, err
		}
		product = existing
	}

	if err := bindProduct(values, product); err != nil {
		return nil, err
	}

	uploads, err := s.images.GetUploadedImages(ctx, r)
	if err != nil {
		return nil, err
	}
	for _, img := range uploads {
		product.AttachImage(img)
	}

	if err := s.sizes.Apply(values, product); err != nil {
		return nil, err
	}

	product.UpdatedAt = now

	if err := store.SubmitChanges(ctx); err != nil {
		return nil, err
	}

	s.logger.Info("Product saved",
		zap.Int64("product_id", product.ID),
		zap.Int64("category_id", product.CategoryID),
		zap.String("name", product.Name),
		zap.Int64("admin_id", principal.UserID),
		zap.Int("uploaded_images", len(uploads)),
	)

	categories, err := s.categories().List(ctx)
	if err != nil {
		return nil, err
	}

	return &ProductEdit{Product: product, Categories: categories}, nil
}

// bindProduct copies recognized form fields onto the product. Fields absent
// from the form leave the current values untouched, so a sparse form is a
// partial update.
func bindProduct(values url.Values, p *domain.Product) error {
	if values.Has("categoryid") {
		id, err := strconv.ParseInt(values.Get("categoryid"), 10, 64)
		if err != nil {
			return &domain.ValidationError{Field: "categoryid", Message: "must be an integer"}
		}
		p.CategoryID = id
	}

	if values.Has("name") {
		p.Name = strings.TrimSpace(values.Get("name"))
	}

	if values.Has("description") {
		p.Description = values.Get("description")
	}

	if values.Has("position") {
		position, err := strconv.Atoi(values.Get("position"))
		if err != nil {
			return &domain.ValidationError{Field: "position", Message: "must be an integer"}
		}
		p.Position = position
	}

	if values.Has("active") {
		p.Active = parseFormBool(values.Get("active"))
	}

	if values.Has("urlname") {
		p.UrlName = strings.TrimSpace(values.Get("urlname"))
	}

	return nil
}

// parseFormBool accepts the checkbox spellings browsers actually send.
func parseFormBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "on", "1", "yes":
		return true
	default:
		return false
	}
}
