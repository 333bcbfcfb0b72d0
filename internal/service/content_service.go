package service

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"shopfront/internal/domain"
	"shopfront/internal/repository"
)

// ContentStoreFactory opens a fresh content unit of work per request.
type ContentStoreFactory func() repository.ContentRepository

// ContentService orchestrates the content-page admin workflows.
type ContentService interface {
	ShowList(ctx context.Context, principal domain.Principal) ([]*domain.Content, error)
	ShowItem(ctx context.Context, principal domain.Principal, contentID int64) (*domain.Content, error)
	ShowPage(ctx context.Context, principal domain.Principal, urlName string) (*domain.Content, error)
	Update(ctx context.Context, principal domain.Principal, contentID int64, values url.Values) (*domain.Content, error)
}

type contentService struct {
	contents ContentStoreFactory
	logger   *zap.Logger
}

// NewContentService creates a new instance of ContentService
func NewContentService(contents ContentStoreFactory, logger *zap.Logger) ContentService {
	return &contentService{contents: contents, logger: logger}
}

// ShowList returns every content page in display order.
func (s *contentService) ShowList(ctx context.Context, principal domain.Principal) ([]*domain.Content, error) {
	if !principal.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	return s.contents().List(ctx)
}

// ShowItem returns one content page.
func (s *contentService) ShowItem(ctx context.Context, principal domain.Principal, contentID int64) (*domain.Content, error) {
	if !principal.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	return s.contents().GetByID(ctx, contentID)
}

// ShowPage returns the page published under the given URL slug, as the
// storefront would resolve it.
func (s *contentService) ShowPage(ctx context.Context, principal domain.Principal, urlName string) (*domain.Content, error) {
	if !principal.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	return s.contents().FindByUrlName(ctx, urlName)
}

// Update resolves or constructs the page, binds the submitted fields, and
// commits once.
func (s *contentService) Update(ctx context.Context, principal domain.Principal, contentID int64, values url.Values) (*domain.Content, error) {
	if !principal.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	store := s.contents()

	var content *domain.Content
	if contentID == domain.UnsavedID {
		content = &domain.Content{Active: true}
		store.InsertOnSubmit(content)
	} else {
		existing, err := store.GetByID(ctx, contentID)
		if err != nil {
			return nil, err
		}
		content = existing
	}

	if err := bindContent(values, content); err != nil {
		return nil, err
	}

	if err := store.SubmitChanges(ctx); err != nil {
		return nil, err
	}

	s.logger.Info("Content saved",
		zap.Int64("content_id", content.ID),
		zap.String("name", content.Name),
		zap.Int64("admin_id", principal.UserID),
	)

	return content, nil
}

// bindContent copies recognized form fields; absent fields stay untouched.
func bindContent(values url.Values, c *domain.Content) error {
	if values.Has("name") {
		c.Name = strings.TrimSpace(values.Get("name"))
	}

	if values.Has("urlname") {
		c.UrlName = strings.TrimSpace(values.Get("urlname"))
	}

	if values.Has("body") {
		c.Body = values.Get("body")
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
