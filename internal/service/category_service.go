package service

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"shopfront/internal/domain"
)

// CategoryEdit is the category form view data.
type CategoryEdit struct {
	Category   *domain.Category
	Categories []*domain.Category
}

// CategoryService orchestrates the category admin workflows; same shape as
// the product orchestrator, minus the upload and size collaborators.
type CategoryService interface {
	ShowList(ctx context.Context, principal domain.Principal) ([]*domain.Category, error)
	NewForm(ctx context.Context, principal domain.Principal, parentID int64) (*CategoryEdit, error)
	EditForm(ctx context.Context, principal domain.Principal, categoryID int64) (*CategoryEdit, error)
	Update(ctx context.Context, principal domain.Principal, categoryID int64, values url.Values) (*CategoryEdit, error)
}

type categoryService struct {
	categories CategoryStoreFactory
	logger     *zap.Logger
}

// NewCategoryService creates a new instance of CategoryService
func NewCategoryService(categories CategoryStoreFactory, logger *zap.Logger) CategoryService {
	return &categoryService{categories: categories, logger: logger}
}

// ShowList returns the whole category tree in display order.
func (s *categoryService) ShowList(ctx context.Context, principal domain.Principal) ([]*domain.Category, error) {
	if !principal.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	return s.categories().List(ctx)
}

// NewForm returns a blank category, optionally parented, plus the tree.
func (s *categoryService) NewForm(ctx context.Context, principal domain.Principal, parentID int64) (*CategoryEdit, error) {
	if !principal.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	categories, err := s.categories().List(ctx)
	if err != nil {
		return nil, err
	}

	category := &domain.Category{Active: true}
	if parentID != domain.UnsavedID {
		category.ParentID = &parentID
	}

	return &CategoryEdit{Category: category, Categories: categories}, nil
}

// EditForm returns an existing category plus the tree.
func (s *categoryService) EditForm(ctx context.Context, principal domain.Principal, categoryID int64) (*CategoryEdit, error) {
	if !principal.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	store := s.categories()

	category, err := store.GetByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	categories, err := store.List(ctx)
	if err != nil {
		return nil, err
	}

	return &CategoryEdit{Category: category, Categories: categories}, nil
}

// Update resolves or constructs the category, binds the submitted fields,
// and commits once.
func (s *categoryService) Update(ctx context.Context, principal domain.Principal, categoryID int64, values url.Values) (*CategoryEdit, error) {
	if !principal.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	store := s.categories()

	var category *domain.Category
	if categoryID == domain.UnsavedID {
		category = &domain.Category{Active: true, CreatedAt: time.Now()}
		store.InsertOnSubmit(category)
	} else {
		existing, err := store.GetByID(ctx, categoryID)
		if err != nil {
			return nil, err
		}
		category = existing
	}

	if err := bindCategory(values, category); err != nil {
		return nil, err
	}

	if err := store.SubmitChanges(ctx); err != nil {
		return nil, err
	}

	s.logger.Info("Category saved",
		zap.Int64("category_id", category.ID),
		zap.String("name", category.Name),
		zap.Int64("admin_id", principal.UserID),
	)

	categories, err := store.List(ctx)
	if err != nil {
		return nil, err
	}

	return &CategoryEdit{Category: category, Categories: categories}, nil
}

// bindCategory copies recognized form fields; absent fields stay untouched.
func bindCategory(values url.Values, c *domain.Category) error {
	if values.Has("name") {
		c.Name = strings.TrimSpace(values.Get("name"))
	}

	if values.Has("parentid") {
		raw := values.Get("parentid")
		if raw == "" || raw == "0" {
			c.ParentID = nil
		} else {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return &domain.ValidationError{Field: "parentid", Message: "must be an integer"}
			}
			c.ParentID = &id
		}
	}

	if values.Has("position") {
		position, err := strconv.Atoi(values.Get("position"))
		if err != nil {
			return &domain.ValidationError{Field: "position", Message: "must be an integer"}
		}
		c.Position = position
	}

	if values.Has("active") {
		c.Active = parseFormBool(values.Get("active"))
	}

	return nil
}
