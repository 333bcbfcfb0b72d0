package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"shopfront/internal/domain"
)

// ContentRepository persists editable storefront pages.
type ContentRepository interface {
	Repository[*domain.Content]
	List(ctx context.Context) ([]*domain.Content, error)
	FindByUrlName(ctx context.Context, urlName string) (*domain.Content, error)
}

// ContentStore is the Postgres ContentRepository. One instance per request.
type ContentStore struct {
	*Store[*domain.Content]
	db *sql.DB
}

// NewContentStore creates a content unit of work over db.
func NewContentStore(db *sql.DB) *ContentStore {
	return &ContentStore{
		Store: NewStore(db, contentMapper()),
		db:    db,
	}
}

func contentMapper() Mapper[*domain.Content] {
	return Mapper[*domain.Content]{
		Entity:  "content",
		Table:   "contents",
		Columns: []string{"name", "url_name", "body", "position", "active"},
		Scan: func(scan func(dest ...any) error) (*domain.Content, error) {
			c := &domain.Content{}
			err := scan(&c.ID, &c.Name, &c.UrlName, &c.Body, &c.Position, &c.Active)
			return c, err
		},
		Args: func(c *domain.Content) []any {
			return []any{c.Name, c.UrlName, c.Body, c.Position, c.Active}
		},
	}
}

// List returns every content page in display order.
func (s *ContentStore) List(ctx context.Context) ([]*domain.Content, error) {
	query := `
		SELECT id, name, url_name, body, position, active
		FROM contents
		ORDER BY position ASC, id ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, translateError("list contents", err)
	}
	defer rows.Close()

	contents := []*domain.Content{}
	for rows.Next() {
		c := &domain.Content{}
		if err := rows.Scan(&c.ID, &c.Name, &c.UrlName, &c.Body, &c.Position, &c.Active); err != nil {
			return nil, fmt.Errorf("failed to scan content: %w", err)
		}
		contents = append(contents, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contents: %w", err)
	}

	return contents, nil
}

// FindByUrlName looks a page up by its URL slug.
func (s *ContentStore) FindByUrlName(ctx context.Context, urlName string) (*domain.Content, error) {
	query := `
		SELECT id, name, url_name, body, position, active
		FROM contents
		WHERE url_name = $1
	`

	c := &domain.Content{}
	err := s.db.QueryRowContext(ctx, query, urlName).Scan(
		&c.ID, &c.Name, &c.UrlName, &c.Body, &c.Position, &c.Active,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.NotFoundError{Entity: "content"}
		}
		return nil, translateError("find content", err)
	}

	return c, nil
}
