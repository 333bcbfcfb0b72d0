package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"shopfront/internal/domain"
	"shopfront/internal/repository"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"
)

// Mock repositories for testing
type mockProductRepository struct {
	products    map[int64]*domain.Product
	order       []*domain.Product
	staged      []*domain.Product
	nextID      int64
	submitCalls int
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{
		products: make(map[int64]*domain.Product),
		nextID:   1,
	}
}

func (m *mockProductRepository) add(p *domain.Product) {
	if p.ID >= m.nextID {
		m.nextID = p.ID + 1
	}
	m.products[p.ID] = p
	m.order = append(m.order, p)
}

func (m *mockProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	product, exists := m.products[id]
	if !exists {
		return nil, domain.NewNotFound("product", id)
	}
	return product, nil
}

func (m *mockProductRepository) InsertOnSubmit(p *domain.Product) {
	m.staged = append(m.staged, p)
}

func (m *mockProductRepository) SubmitChanges(ctx context.Context) error {
	m.submitCalls++
	for _, p := range m.staged {
		p.SetEntityID(m.nextID)
		m.nextID++
		m.products[p.ID] = p
		m.order = append(m.order, p)
	}
	m.staged = nil
	return nil
}

func (m *mockProductRepository) ListByCategory(ctx context.Context, categoryID int64) ([]*domain.Product, error) {
	var result []*domain.Product
	for _, p := range m.order {
		if p.CategoryID == categoryID {
			result = append(result, p)
		}
	}
	return result, nil
}

type mockCategoryRepository struct {
	categories map[int64]*domain.Category
	order      []*domain.Category
}

func newMockCategoryRepository(categories ...*domain.Category) *mockCategoryRepository {
	m := &mockCategoryRepository{categories: make(map[int64]*domain.Category)}
	for _, c := range categories {
		m.categories[c.ID] = c
		m.order = append(m.order, c)
	}
	return m
}

func (m *mockCategoryRepository) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	category, exists := m.categories[id]
	if !exists {
		return nil, domain.NewNotFound("category", id)
	}
	return category, nil
}

func (m *mockCategoryRepository) InsertOnSubmit(c *domain.Category) {}

func (m *mockCategoryRepository) SubmitChanges(ctx context.Context) error { return nil }

func (m *mockCategoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	return m.order, nil
}

type mockImageService struct {
	images []domain.Image
}

func (m *mockImageService) GetUploadedImages(ctx context.Context, r *http.Request) ([]domain.Image, error) {
	return m.images, nil
}

func newTestCatalogService(products *mockProductRepository, categories *mockCategoryRepository, uploads []domain.Image) CatalogService {
	return NewCatalogService(
		func() repository.ProductRepository { return products },
		func() repository.CategoryRepository { return categories },
		&mockImageService{images: uploads},
		NewSizeService(),
		zap.NewNop(),
	)
}

var (
	adminPrincipal    = domain.Principal{UserID: 1, Email: "admin@shop.test", Role: domain.RoleAdministrator}
	customerPrincipal = domain.Principal{UserID: 2, Email: "customer@shop.test", Role: domain.RoleCustomer}
)

func TestShowListReturnsCategoryProductsInOrder(t *testing.T) {
	products := newMockProductRepository()
	products.add(&domain.Product{ID: 1, CategoryID: 4, Name: "Boots", Position: 1})
	products.add(&domain.Product{ID: 2, CategoryID: 4, Name: "Sandals", Position: 2})
	products.add(&domain.Product{ID: 3, CategoryID: 7, Name: "Scarf", Position: 1})
	categories := newMockCategoryRepository(&domain.Category{ID: 4, Name: "Shoes"})

	service := newTestCatalogService(products, categories, nil)

	listing, err := service.ShowList(context.Background(), adminPrincipal, 4)
	if err != nil {
		t.Fatalf("ShowList failed: %v", err)
	}

	if listing.Category.ID != 4 {
		t.Errorf("Expected category 4, got %d", listing.Category.ID)
	}

	if len(listing.Products) != 2 {
		t.Fatalf("Expected 2 products in category 4, got %d", len(listing.Products))
	}

	if listing.Products[0].Name != "Boots" || listing.Products[1].Name != "Sandals" {
		t.Errorf("Products out of order: got %q, %q", listing.Products[0].Name, listing.Products[1].Name)
	}
}

func TestShowListUnknownCategoryReturnsNotFound(t *testing.T) {
	service := newTestCatalogService(newMockProductRepository(), newMockCategoryRepository(), nil)

	_, err := service.ShowList(context.Background(), adminPrincipal, 99)
	if !domain.IsNotFound(err) {
		t.Errorf("Expected not-found error, got %v", err)
	}
}

func TestShowItemReturnsTrackedInstance(t *testing.T) {
	products := newMockProductRepository()
	stored := &domain.Product{ID: 5, CategoryID: 4, Name: "Boots"}
	products.add(stored)

	service := newTestCatalogService(products, newMockCategoryRepository(), nil)

	product, err := service.ShowItem(context.Background(), adminPrincipal, 5)
	if err != nil {
		t.Fatalf("ShowItem failed: %v", err)
	}

	if product != stored {
		t.Error("ShowItem returned a copy instead of the tracked instance")
	}
}

func TestNewFormReturnsBlankProductWithCategories(t *testing.T) {
	products := newMockProductRepository()
	categories := newMockCategoryRepository(
		&domain.Category{ID: 4, Name: "Shoes"},
		&domain.Category{ID: 7, Name: "Accessories"},
	)

	service := newTestCatalogService(products, categories, nil)

	form, err := service.NewForm(context.Background(), adminPrincipal, 4)
	if err != nil {
		t.Fatalf("NewForm failed: %v", err)
	}

	if form.Product.ID != domain.UnsavedID {
		t.Errorf("New product should be unsaved, got id %d", form.Product.ID)
	}

	if form.Product.CategoryID != 4 {
		t.Errorf("Expected pre-selected category 4, got %d", form.Product.CategoryID)
	}

	if !form.Product.Active {
		t.Error("New product should default to active")
	}

	if len(form.Categories) != 2 {
		t.Errorf("Expected full category list, got %d entries", len(form.Categories))
	}

	if len(products.staged) != 0 || products.submitCalls != 0 {
		t.Error("NewForm must not persist anything")
	}
}

func TestEditFormLoadsProductAndCategories(t *testing.T) {
	products := newMockProductRepository()
	products.add(&domain.Product{ID: 5, CategoryID: 4, Name: "Boots"})
	categories := newMockCategoryRepository(&domain.Category{ID: 4, Name: "Shoes"})

	service := newTestCatalogService(products, categories, nil)

	form, err := service.EditForm(context.Background(), adminPrincipal, 5)
	if err != nil {
		t.Fatalf("EditForm failed: %v", err)
	}

	if form.Product.Name != "Boots" {
		t.Errorf("Expected product Boots, got %q", form.Product.Name)
	}

	if len(form.Categories) != 1 {
		t.Errorf("Expected category list, got %d entries", len(form.Categories))
	}
}

func TestUpdateCreatesProductWithSubmittedFields(t *testing.T) {
	products := newMockProductRepository()
	categories := newMockCategoryRepository(&domain.Category{ID: 4, Name: "Shoes"})
	uploads := []domain.Image{
		{Filename: "a1.jpg", Description: "front.jpg"},
		{Filename: "b2.jpg", Description: "side.jpg"},
	}

	service := newTestCatalogService(products, categories, uploads)

	values := url.Values{}
	values.Set("categoryid", "4")
	values.Set("name", "My New Product")
	values.Set("description", "A description of my new product")
	values.Set("price", "19.99")

	req := httptest.NewRequest(http.MethodPost, "/products", nil)

	form, err := service.Update(context.Background(), adminPrincipal, domain.UnsavedID, values, req)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	product := form.Product
	if product.ID == domain.UnsavedID {
		t.Error("Committed product should have a durable id")
	}

	if product.CategoryID != 4 {
		t.Errorf("Expected category 4, got %d", product.CategoryID)
	}

	if product.Name != "My New Product" {
		t.Errorf("Expected bound name, got %q", product.Name)
	}

	if product.Description != "A description of my new product" {
		t.Errorf("Expected bound description, got %q", product.Description)
	}

	if product.Price != 19.99 {
		t.Errorf("Expected price 19.99, got %v", product.Price)
	}

	if products.submitCalls != 1 {
		t.Errorf("Expected exactly one commit, got %d", products.submitCalls)
	}

	if len(products.products) != 1 {
		t.Errorf("Expected one stored product, got %d", len(products.products))
	}

	// Uploaded images keep their received order and get sequential positions.
	if len(product.Images) != 2 {
		t.Fatalf("Expected 2 attached images, got %d", len(product.Images))
	}

	if product.Images[0].Image.Filename != "a1.jpg" || product.Images[1].Image.Filename != "b2.jpg" {
		t.Error("Attached images lost their upload order")
	}

	if product.Images[0].Position != 1 || product.Images[1].Position != 2 {
		t.Errorf("Expected positions 1,2, got %d,%d", product.Images[0].Position, product.Images[1].Position)
	}
}

func TestUpdateExistingMutatesTrackedProduct(t *testing.T) {
	products := newMockProductRepository()
	existing := &domain.Product{
		ID:          5,
		CategoryID:  4,
		Name:        "Boots",
		Description: "Sturdy leather boots",
		Price:       49.99,
		Position:    2,
	}
	products.add(existing)
	categories := newMockCategoryRepository(&domain.Category{ID: 4, Name: "Shoes"})

	service := newTestCatalogService(products, categories, nil)

	// Sparse form: only the name changes, everything else stays.
	values := url.Values{}
	values.Set("name", "Winter Boots")

	req := httptest.NewRequest(http.MethodPost, "/products", nil)

	form, err := service.Update(context.Background(), adminPrincipal, 5, values, req)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if form.Product != existing {
		t.Error("Update should mutate the tracked product, not a copy")
	}

	if existing.Name != "Winter Boots" {
		t.Errorf("Expected name updated, got %q", existing.Name)
	}

	if existing.Description != "Sturdy leather boots" {
		t.Errorf("Absent description field must stay unchanged, got %q", existing.Description)
	}

	if existing.Price != 49.99 {
		t.Errorf("Absent price field must stay unchanged, got %v", existing.Price)
	}

	if existing.Position != 2 {
		t.Errorf("Absent position field must stay unchanged, got %d", existing.Position)
	}

	if len(products.products) != 1 {
		t.Errorf("Updating must not create a second product, got %d", len(products.products))
	}

	if products.submitCalls != 1 {
		t.Errorf("Expected exactly one commit, got %d", products.submitCalls)
	}
}

func TestUpdateExistingProductAppendsUploadsAfterGallery(t *testing.T) {
	products := newMockProductRepository()
	existing := &domain.Product{
		ID:         5,
		CategoryID: 4,
		Name:       "Boots",
		Images: []domain.ProductImage{
			{ID: 21, ProductID: 5, ImageID: 31, Position: 1, Image: domain.Image{ID: 31, Filename: "a1.jpg"}},
			{ID: 22, ProductID: 5, ImageID: 32, Position: 2, Image: domain.Image{ID: 32, Filename: "b2.jpg"}},
		},
	}
	products.add(existing)
	categories := newMockCategoryRepository(&domain.Category{ID: 4, Name: "Shoes"})
	uploads := []domain.Image{{Filename: "c3.jpg", Description: "back.jpg"}}

	service := newTestCatalogService(products, categories, uploads)

	req := httptest.NewRequest(http.MethodPost, "/products", nil)

	form, err := service.Update(context.Background(), adminPrincipal, 5, url.Values{}, req)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	product := form.Product
	if len(product.Images) != 3 {
		t.Fatalf("Expected 3 gallery entries, got %d", len(product.Images))
	}

	// The upload continues the display order instead of restarting it.
	if product.Images[2].Position != 3 {
		t.Errorf("Expected appended position 3, got %d", product.Images[2].Position)
	}

	if product.Images[2].Image.Filename != "c3.jpg" {
		t.Errorf("Expected appended upload, got %q", product.Images[2].Image.Filename)
	}

	if product.Images[2].ID != domain.UnsavedID {
		t.Errorf("Upload must become a new gallery row, got id %d", product.Images[2].ID)
	}

	// Existing gallery rows keep their identities and positions.
	if product.Images[0].ID != 21 || product.Images[1].ID != 22 {
		t.Error("Existing gallery rows were replaced")
	}

	if product.Images[0].Position != 1 || product.Images[1].Position != 2 {
		t.Errorf("Existing positions changed: %d,%d",
			product.Images[0].Position, product.Images[1].Position)
	}
}

func TestUpdateUnknownProductReturnsNotFound(t *testing.T) {
	service := newTestCatalogService(newMockProductRepository(), newMockCategoryRepository(), nil)

	values := url.Values{}
	values.Set("name", "Ghost")
	req := httptest.NewRequest(http.MethodPost, "/products", nil)

	_, err := service.Update(context.Background(), adminPrincipal, 42, values, req)
	if !domain.IsNotFound(err) {
		t.Errorf("Expected not-found error, got %v", err)
	}
}

func TestUpdateRejectsInvalidCategoryID(t *testing.T) {
	products := newMockProductRepository()
	service := newTestCatalogService(products, newMockCategoryRepository(), nil)

	values := url.Values{}
	values.Set("categoryid", "not-a-number")
	req := httptest.NewRequest(http.MethodPost, "/products", nil)

	_, err := service.Update(context.Background(), adminPrincipal, domain.UnsavedID, values, req)
	if !domain.IsValidation(err) {
		t.Errorf("Expected validation error, got %v", err)
	}

	if products.submitCalls != 0 {
		t.Error("A rejected form must not commit")
	}
}

func TestCatalogOperationsForbiddenForNonAdmins(t *testing.T) {
	service := newTestCatalogService(newMockProductRepository(), newMockCategoryRepository(), nil)
	ctx := context.Background()
	req := httptest.NewRequest(http.MethodPost, "/products", nil)

	checks := map[string]error{}

	_, err := service.ShowList(ctx, customerPrincipal, 4)
	checks["ShowList"] = err
	_, err = service.ShowItem(ctx, customerPrincipal, 5)
	checks["ShowItem"] = err
	_, err = service.NewForm(ctx, customerPrincipal, 4)
	checks["NewForm"] = err
	_, err = service.EditForm(ctx, customerPrincipal, 5)
	checks["EditForm"] = err
	_, err = service.Update(ctx, customerPrincipal, 5, url.Values{}, req)
	checks["Update"] = err

	for op, err := range checks {
		if err != domain.ErrForbidden {
			t.Errorf("%s should be forbidden for customers, got %v", op, err)
		}
	}
}

func TestProperty_UpdateRoundTripsSubmittedFields(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("a created product carries the submitted name, description and position", prop.ForAll(
		func(name string, description string, position int) bool {
			products := newMockProductRepository()
			categories := newMockCategoryRepository(&domain.Category{ID: 4, Name: "Shoes"})
			service := newTestCatalogService(products, categories, nil)

			values := url.Values{}
			values.Set("categoryid", "4")
			values.Set("name", name)
			values.Set("description", description)
			values.Set("position", strconv.Itoa(position))

			req := httptest.NewRequest(http.MethodPost, "/products", nil)

			form, err := service.Update(context.Background(), adminPrincipal, domain.UnsavedID, values, req)
			if err != nil {
				t.Logf("FAIL: Update failed: %v", err)
				return false
			}

			if form.Product.Name != name {
				t.Logf("FAIL: name %q became %q", name, form.Product.Name)
				return false
			}

			if form.Product.Description != description {
				t.Logf("FAIL: description %q became %q", description, form.Product.Description)
				return false
			}

			if form.Product.Position != position {
				t.Logf("FAIL: position %d became %d", position, form.Product.Position)
				return false
			}

			stored, err := products.GetByID(context.Background(), form.Product.ID)
			if err != nil {
				t.Logf("FAIL: committed product not retrievable: %v", err)
				return false
			}

			return stored == form.Product
		},
		gen.RegexMatch(`[A-Z][a-z]{2,15}( [A-Z][a-z]{2,15}){0,2}`),
		gen.RegexMatch(`[A-Za-z0-9 ,.]{0,60}`),
		gen.IntRange(0, 1000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
