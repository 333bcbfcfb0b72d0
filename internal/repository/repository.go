package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"shopfront/internal/domain"
)

// Entity is anything with an integer identity the store can assign.
type Entity interface {
	EntityID() int64
	SetEntityID(int64)
}

// Repository is the minimal persistence gateway every entity store
// implements: fetch by id, stage an insert, commit the unit of work.
type Repository[E Entity] interface {
	// GetByID fetches an entity and starts tracking it for update on the
	// next SubmitChanges. Repeated calls for the same id within one unit of
	// work return the identical tracked instance. Returns a
	// *domain.NotFoundError when no row matches.
	GetByID(ctx context.Context, id int64) (E, error)

	// InsertOnSubmit stages a new entity for creation. Nothing touches the
	// database until SubmitChanges.
	InsertOnSubmit(e E)

	// SubmitChanges persists all staged inserts and tracked updates in one
	// transaction. Constraint violations surface as *domain.ValidationError,
	// anything else as *domain.PersistenceError.
	SubmitChanges(ctx context.Context) error
}

// Querier is the subset of database/sql shared by *sql.DB and *sql.Tx, so
// mappers can run child-row statements inside the commit transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Mapper describes how one entity type maps onto its table. Composition
// replaces any base-entity inheritance: the entity itself only carries an
// identity, the mapper carries the SQL knowledge.
type Mapper[E Entity] struct {
	// Entity is the kind name used in NotFound errors ("product", ...).
	Entity string
	// Table is the backing table name.
	Table string
	// Columns are all non-id columns, in the order Args returns values.
	Columns []string
	// Scan builds an entity from a row of id followed by Columns.
	Scan func(scan func(dest ...any) error) (E, error)
	// Args returns the entity's values for Columns, same order.
	Args func(e E) []any
	// AfterLoad, when set, hydrates owned child rows after GetByID.
	AfterLoad func(ctx context.Context, q Querier, e E) error
	// AfterSave, when set, persists owned child rows inside the commit
	// transaction, after the parent row is written.
	AfterSave func(ctx context.Context, q Querier, e E) error
}

// Store is the Postgres-backed Repository implementation. A Store is a
// single request's unit of work: it tracks what it loaded and what was
// staged, and is not safe for concurrent use. The tracked map doubles as
// an identity map, so one id never maps to two live instances.
type Store[E Entity] struct {
	db      *sql.DB
	m       Mapper[E]
	tracked map[int64]E
	staged  []E

	selectSQL string
	insertSQL string
	updateSQL string
}

// NewStore builds a Store for one entity type from its mapper.
func NewStore[E Entity](db *sql.DB, m Mapper[E]) *Store[E] {
	cols := strings.Join(m.Columns, ", ")

	placeholders := make([]string, len(m.Columns))
	assignments := make([]string, len(m.Columns))
	for i, c := range m.Columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		assignments[i] = fmt.Sprintf("%s = $%d", c, i+2)
	}

	return &Store[E]{
		db:      db,
		m:       m,
		tracked: make(map[int64]E),
		selectSQL: fmt.Sprintf("SELECT id, %s FROM %s WHERE id = $1",
			cols, m.Table),
		insertSQL: fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id",
			m.Table, cols, strings.Join(placeholders, ", ")),
		updateSQL: fmt.Sprintf("UPDATE %s SET %s WHERE id = $1",
			m.Table, strings.Join(assignments, ", ")),
	}
}

// GetByID fetches one row and tracks the entity for update on commit. A
// second fetch of the same id returns the instance already in the identity
// map without touching the database.
func (s *Store[E]) GetByID(ctx context.Context, id int64) (E, error) {
	var zero E

	if e, ok := s.tracked[id]; ok {
		return e, nil
	}

	row := s.db.QueryRowContext(ctx, s.selectSQL, id)
	e, err := s.m.Scan(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return zero, domain.NewNotFound(s.m.Entity, id)
		}
		return zero, translateError("get "+s.m.Entity, err)
	}

	if s.m.AfterLoad != nil {
		if err := s.m.AfterLoad(ctx, s.db, e); err != nil {
			return zero, translateError("load "+s.m.Entity+" children", err)
		}
	}

	s.tracked[id] = e
	return e, nil
}

// InsertOnSubmit stages an entity; no database work happens here.
func (s *Store[E]) InsertOnSubmit(e E) {
	s.staged = append(s.staged, e)
}

// SubmitChanges writes all staged inserts and tracked updates in one
// transaction. Staged entities receive their durable id before the mapper's
// AfterSave runs, so child rows can reference the parent.
func (s *Store[E]) SubmitChanges(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return translateError("begin "+s.m.Entity+" commit", err)
	}
	defer tx.Rollback()

	for _, e := range s.staged {
		var id int64
		if err := tx.QueryRowContext(ctx, s.insertSQL, s.m.Args(e)...).Scan(&id); err != nil {
			return translateError("insert "+s.m.Entity, err)
		}
		e.SetEntityID(id)

		if s.m.AfterSave != nil {
			if err := s.m.AfterSave(ctx, tx, e); err != nil {
				return translateError("save "+s.m.Entity+" children", err)
			}
		}
	}

	for _, e := range s.tracked {
		args := append([]any{e.EntityID()}, s.m.Args(e)...)
		if _, err := tx.ExecContext(ctx, s.updateSQL, args...); err != nil {
			return translateError("update "+s.m.Entity, err)
		}

		if s.m.AfterSave != nil {
			if err := s.m.AfterSave(ctx, tx, e); err != nil {
				return translateError("save "+s.m.Entity+" children", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return translateError("commit "+s.m.Entity, err)
	}

	// Committed inserts are durable rows now; further commits in the same
	// unit of work treat them as updates.
	for _, e := range s.staged {
		s.tracked[e.EntityID()] = e
	}
	s.staged = nil
	return nil
}

// Postgres error classes surfaced as the validation taxonomy.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// constraintFields names the column behind each schema constraint, since
// Postgres leaves ColumnName empty on unique and foreign key violations.
var constraintFields = map[string]string{
	"uq_products_name":                "name",
	"uq_categories_name":              "name",
	"uq_contents_name":                "name",
	"uq_contents_url_name":            "url_name",
	"uq_users_email":                  "email",
	"uq_roles_name":                   "name",
	"uq_refresh_tokens_token":         "token",
	"uq_countries_iso_code":           "iso_code",
	"uq_product_images_product_image": "image_id",
	"products_category_id_fkey":       "category_id",
	"categories_parent_id_fkey":       "parent_id",
	"product_images_product_id_fkey":  "product_id",
	"product_images_image_id_fkey":    "image_id",
	"sizes_product_id_fkey":           "product_id",
	"refresh_tokens_user_id_fkey":     "user_id",
}

// translateError folds driver errors into the domain taxonomy. Constraint
// violations become ValidationErrors carrying the constraint name; anything
// else is a PersistenceError.
func translateError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return &domain.ValidationError{
				Field:      constraintFields[pgErr.ConstraintName],
				Constraint: pgErr.ConstraintName,
				Message:    "value already exists",
			}
		case pgForeignKeyViolation:
			return &domain.ValidationError{
				Field:      constraintFields[pgErr.ConstraintName],
				Constraint: pgErr.ConstraintName,
				Message:    "referenced row does not exist",
			}
		case pgCheckViolation:
			return &domain.ValidationError{
				Constraint: pgErr.ConstraintName,
				Message:    "value violates check constraint",
			}
		}
	}
	return &domain.PersistenceError{Op: op, Err: err}
}
