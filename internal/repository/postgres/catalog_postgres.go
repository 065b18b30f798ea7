package postgres

import (
	"context"
	"database/sql"

	"archivesys/internal/model"
	"archivesys/internal/repository"
)

// CategoryPostgres stores document categories.
type CategoryPostgres struct {
	db *sql.DB
}

// NewCategoryPostgres creates a CategoryPostgres over db.
func NewCategoryPostgres(db *sql.DB) *CategoryPostgres {
	return &CategoryPostgres{db: db}
}

var _ repository.CategoryRepository = (*CategoryPostgres)(nil)

const categorySelect = `SELECT id, name, COALESCE(description, ''), created_at FROM document_categories`

func scanCategory(s scanner) (*model.DocumentCategory, error) {
	var c model.DocumentCategory
	if err := s.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts c and returns a copy with the generated ID and CreatedAt.
func (r *CategoryPostgres) Create(ctx context.Context, c *model.DocumentCategory) (*model.DocumentCategory, error) {
	const q = `
		INSERT INTO document_categories (name, description)
		VALUES ($1, $2)
		RETURNING id, created_at
	`
	out := *c
	if err := r.db.QueryRowContext(ctx, q, c.Name, nullIfEmpty(c.Description)).Scan(&out.ID, &out.CreatedAt); err != nil {
		return nil, mapErr(err)
	}
	return &out, nil
}

// FindByID fetches a category by its ID or returns ErrNotFound.
func (r *CategoryPostgres) FindByID(ctx context.Context, id string) (*model.DocumentCategory, error) {
	c, err := scanCategory(r.db.QueryRowContext(ctx, categorySelect+` WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return c, nil
}

// Update rewrites the name and description of c. An unknown ID yields ErrNotFound.
func (r *CategoryPostgres) Update(ctx context.Context, c *model.DocumentCategory) (*model.DocumentCategory, error) {
	const q = `
		UPDATE document_categories SET name = $2, description = $3
		WHERE id = $1
		RETURNING created_at
	`
	out := *c
	if err := r.db.QueryRowContext(ctx, q, c.ID, c.Name, nullIfEmpty(c.Description)).Scan(&out.CreatedAt); err != nil {
		return nil, mapErr(err)
	}
	return &out, nil
}

// List returns all categories ordered by name.
func (r *CategoryPostgres) List(ctx context.Context) ([]model.DocumentCategory, error) {
	rows, err := r.db.QueryContext(ctx, categorySelect+` ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.DocumentCategory, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// Delete removes a category; documents in it keep a NULL category.
func (r *CategoryPostgres) Delete(ctx context.Context, id string) error {
	return execAffecting(ctx, r.db, `DELETE FROM document_categories WHERE id = $1`, id)
}

// LocationPostgres stores physical storage locations.
type LocationPostgres struct {
	db *sql.DB
}

// NewLocationPostgres creates a LocationPostgres over db.
func NewLocationPostgres(db *sql.DB) *LocationPostgres {
	return &LocationPostgres{db: db}
}

var _ repository.LocationRepository = (*LocationPostgres)(nil)

const locationSelect = `SELECT id, name, room, shelf, COALESCE(box, ''), created_at FROM storage_locations`

func scanLocation(s scanner) (*model.StorageLocation, error) {
	var l model.StorageLocation
	if err := s.Scan(&l.ID, &l.Name, &l.Room, &l.Shelf, &l.Box, &l.CreatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}

// Create inserts l and returns a copy with the generated ID and CreatedAt.
func (r *LocationPostgres) Create(ctx context.Context, l *model.StorageLocation) (*model.StorageLocation, error) {
	const q = `
		INSERT INTO storage_locations (name, room, shelf, box)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	out := *l
	if err := r.db.QueryRowContext(ctx, q, l.Name, l.Room, l.Shelf, nullIfEmpty(l.Box)).Scan(&out.ID, &out.CreatedAt); err != nil {
		return nil, mapErr(err)
	}
	return &out, nil
}

// FindByID fetches a location by its ID or returns ErrNotFound.
func (r *LocationPostgres) FindByID(ctx context.Context, id string) (*model.StorageLocation, error) {
	l, err := scanLocation(r.db.QueryRowContext(ctx, locationSelect+` WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return l, nil
}

// Update rewrites every column of l except its ID. An unknown ID yields ErrNotFound.
func (r *LocationPostgres) Update(ctx context.Context, l *model.StorageLocation) (*model.StorageLocation, error) {
	const q = `
		UPDATE storage_locations SET name = $2, room = $3, shelf = $4, box = $5
		WHERE id = $1
		RETURNING created_at
	`
	out := *l
	if err := r.db.QueryRowContext(ctx, q, l.ID, l.Name, l.Room, l.Shelf, nullIfEmpty(l.Box)).Scan(&out.CreatedAt); err != nil {
		return nil, mapErr(err)
	}
	return &out, nil
}

// List returns all locations ordered by name.
func (r *LocationPostgres) List(ctx context.Context) ([]model.StorageLocation, error) {
	rows, err := r.db.QueryContext(ctx, locationSelect+` ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.StorageLocation, 0)
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *l)
	}
	return items, rows.Err()
}

// Delete removes a location; documents stored there keep a NULL location.
func (r *LocationPostgres) Delete(ctx context.Context, id string) error {
	return execAffecting(ctx, r.db, `DELETE FROM storage_locations WHERE id = $1`, id)
}

// execAffecting runs q and reports ErrNotFound when no row was touched.
func execAffecting(ctx context.Context, db execer, q string, args ...any) error {
	res, err := db.ExecContext(ctx, q, args...)
	if err != nil {
		return mapErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
