package repository

import (
	"context"
	"database/sql"
	"fmt"

	"shopfront/internal/domain"
)

// CategoryRepository is the generic gateway plus the full-list finder the
// form views need.
type CategoryRepository interface {
	Repository[*domain.Category]
	List(ctx context.Context) ([]*domain.Category, error)
}

// CategoryStore is the Postgres CategoryRepository. One instance per request.
type CategoryStore struct {
	*Store[*domain.Category]
	db *sql.DB
}

// NewCategoryStore creates a category unit of work over db.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{
		Store: NewStore(db, categoryMapper()),
		db:    db,
	}
}

func categoryMapper() Mapper[*domain.Category] {
	return Mapper[*domain.Category]{
		Entity:  "category",
		Table:   "categories",
		Columns: []string{"name", "parent_id", "position", "active", "created_at"},
		Scan: func(scan func(dest ...any) error) (*domain.Category, error) {
			c := &domain.Category{}
			err := scan(&c.ID, &c.Name, &c.ParentID, &c.Position, &c.Active, &c.CreatedAt)
			return c, err
		},
		Args: func(c *domain.Category) []any {
			return []any{c.Name, c.ParentID, c.Position, c.Active, c.CreatedAt}
		},
	}
}

// List returns every category in tree display order.
func (s *CategoryStore) List(ctx context.Context) ([]*domain.Category, error) {
	query := `
		SELECT id, name, parent_id, position, active, created_at
		FROM categories
		ORDER BY parent_id NULLS FIRST, position ASC, id ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, translateError("list categories", err)
	}
	defer rows.Close()

	categories := []*domain.Category{}
	for rows.Next() {
		c := &domain.Category{}
		if err := rows.Scan(&c.ID, &c.Name, &c.ParentID, &c.Position, &c.Active, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}
