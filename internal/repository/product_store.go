package repository

import (
	"context"
	"database/sql"
	"fmt"

	"shopfront/internal/domain"
)

// ProductRepository is the generic gateway plus the catalog finders the
// orchestrator needs.
type ProductRepository interface {
	Repository[*domain.Product]
	ListByCategory(ctx context.Context, categoryID int64) ([]*domain.Product, error)
}

// ProductStore is the Postgres ProductRepository. One instance per request.
type ProductStore struct {
	*Store[*domain.Product]
	db *sql.DB
}

// NewProductStore creates a product unit of work over db.
func NewProductStore(db *sql.DB) *ProductStore {
	return &ProductStore{
		Store: NewStore(db, productMapper()),
		db:    db,
	}
}

func productMapper() Mapper[*domain.Product] {
	return Mapper[*domain.Product]{
		Entity: "product",
		Table:  "products",
		Columns: []string{
			"category_id", "name", "description", "price",
			"position", "weight", "active", "url_name",
			"created_at", "updated_at",
		},
		Scan: func(scan func(dest ...any) error) (*domain.Product, error) {
			p := &domain.Product{}
			err := scan(
				&p.ID, &p.CategoryID, &p.Name, &p.Description, &p.Price,
				&p.Position, &p.Weight, &p.Active, &p.UrlName,
				&p.CreatedAt, &p.UpdatedAt,
			)
			return p, err
		},
		Args: func(p *domain.Product) []any {
			return []any{
				p.CategoryID, p.Name, p.Description, p.Price,
				p.Position, p.Weight, p.Active, p.UrlName,
				p.CreatedAt, p.UpdatedAt,
			}
		},
		AfterLoad: loadProductChildren,
		AfterSave: saveProductChildren,
	}
}

// loadProductChildren hydrates the ordered image gallery and size records.
func loadProductChildren(ctx context.Context, q Querier, p *domain.Product) error {
	imageQuery := `
		SELECT pi.id, pi.product_id, pi.image_id, pi.position,
		       i.id, i.filename, i.description
		FROM product_images pi
		JOIN images i ON i.id = pi.image_id
		WHERE pi.product_id = $1
		ORDER BY pi.position ASC
	`

	rows, err := q.QueryContext(ctx, imageQuery, p.ID)
	if err != nil {
		return fmt.Errorf("failed to load product images: %w", err)
	}
	defer rows.Close()

	p.Images = nil
	for rows.Next() {
		var pi domain.ProductImage
		err := rows.Scan(
			&pi.ID, &pi.ProductID, &pi.ImageID, &pi.Position,
			&pi.Image.ID, &pi.Image.Filename, &pi.Image.Description,
		)
		if err != nil {
			return fmt.Errorf("failed to scan product image: %w", err)
		}
		p.Images = append(p.Images, pi)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating product images: %w", err)
	}

	sizeQuery := `
		SELECT id, product_id, name, in_stock, active
		FROM sizes
		WHERE product_id = $1
		ORDER BY id ASC
	`

	sizeRows, err := q.QueryContext(ctx, sizeQuery, p.ID)
	if err != nil {
		return fmt.Errorf("failed to load sizes: %w", err)
	}
	defer sizeRows.Close()

	p.Sizes = nil
	for sizeRows.Next() {
		var s domain.Size
		if err := sizeRows.Scan(&s.ID, &s.ProductID, &s.Name, &s.InStock, &s.Active); err != nil {
			return fmt.Errorf("failed to scan size: %w", err)
		}
		p.Sizes = append(p.Sizes, s)
	}
	if err := sizeRows.Err(); err != nil {
		return fmt.Errorf("error iterating sizes: %w", err)
	}

	return nil
}

// saveProductChildren persists new images and upserts size records inside
// the commit transaction. Existing gallery rows are never reordered here;
// only appended images get written.
func saveProductChildren(ctx context.Context, q Querier, p *domain.Product) error {
	for i := range p.Images {
		pi := &p.Images[i]
		if pi.ID != domain.UnsavedID {
			continue
		}
		pi.ProductID = p.ID

		if pi.Image.ID == domain.UnsavedID {
			err := q.QueryRowContext(ctx,
				`INSERT INTO images (filename, description) VALUES ($1, $2) RETURNING id`,
				pi.Image.Filename, pi.Image.Description,
			).Scan(&pi.Image.ID)
			if err != nil {
				return fmt.Errorf("failed to insert image: %w", err)
			}
		}
		pi.ImageID = pi.Image.ID

		err := q.QueryRowContext(ctx,
			`INSERT INTO product_images (product_id, image_id, position)
			 VALUES ($1, $2, $3) RETURNING id`,
			pi.ProductID, pi.ImageID, pi.Position,
		).Scan(&pi.ID)
		if err != nil {
			return fmt.Errorf("failed to insert product image: %w", err)
		}
	}

	for i := range p.Sizes {
		s := &p.Sizes[i]
		s.ProductID = p.ID

		if s.ID == domain.UnsavedID {
			err := q.QueryRowContext(ctx,
				`INSERT INTO sizes (product_id, name, in_stock, active)
				 VALUES ($1, $2, $3, $4) RETURNING id`,
				s.ProductID, s.Name, s.InStock, s.Active,
			).Scan(&s.ID)
			if err != nil {
				return fmt.Errorf("failed to insert size: %w", err)
			}
			continue
		}

		_, err := q.ExecContext(ctx,
			`UPDATE sizes SET name = $2, in_stock = $3, active = $4 WHERE id = $1`,
			s.ID, s.Name, s.InStock, s.Active,
		)
		if err != nil {
			return fmt.Errorf("failed to update size: %w", err)
		}
	}

	return nil
}

// ListByCategory returns the category's products in display order. The
// child collections are not hydrated; list views only need the row fields.
func (s *ProductStore) ListByCategory(ctx context.Context, categoryID int64) ([]*domain.Product, error) {
	query := `
		SELECT id, category_id, name, description, price,
		       position, weight, active, url_name, created_at, updated_at
		FROM products
		WHERE category_id = $1
		ORDER BY position ASC, id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, categoryID)
	if err != nil {
		return nil, translateError("list products", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		p := &domain.Product{}
		err := rows.Scan(
			&p.ID, &p.CategoryID, &p.Name, &p.Description, &p.Price,
			&p.Position, &p.Weight, &p.Active, &p.UrlName,
			&p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}
