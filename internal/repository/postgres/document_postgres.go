package postgres

import (
	"context"
	"database/sql"
	"strings"

	"archivesys/internal/model"
	"archivesys/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

const documentSelect = `
		SELECT d.id, d.title, d.document_type, d.document_number, d.category_id,
		       d.issue_date, d.expiry_date, d.storage_location_id, COALESCE(d.description, ''),
		       d.file_key, d.file_name, d.file_size, d.file_content_type,
		       d.created_by, d.created_at, d.updated_at,
		       COALESCE(c.name, ''), COALESCE(l.name, ''), COALESCE(u.username, '')
		FROM documents d
		LEFT JOIN document_categories c ON c.id = d.category_id
		LEFT JOIN storage_locations l ON l.id = d.storage_location_id
		LEFT JOIN users u ON u.id = d.created_by`

const documentOrder = ` ORDER BY d.created_at DESC, d.id DESC`

func scanDocument(s scanner) (*model.Document, error) {
	var (
		d                               model.Document
		docType                         string
		categoryID, locationID, creator sql.NullString
		expiry                          sql.NullTime
		fileKey, fileName, fileCT       sql.NullString
		fileSize                        sql.NullInt64
	)
	if err := s.Scan(
		&d.ID,
		&d.Title,
		&docType,
		&d.DocumentNumber,
		&categoryID,
		&d.IssueDate,
		&expiry,
		&locationID,
		&d.Description,
		&fileKey,
		&fileName,
		&fileSize,
		&fileCT,
		&creator,
		&d.CreatedAt,
		&d.UpdatedAt,
		&d.CategoryName,
		&d.StorageLocationName,
		&d.CreatedByUsername,
	); err != nil {
		return nil, err
	}
	d.DocumentType = model.DocumentType(docType)
	d.CategoryID = strPtr(categoryID)
	d.StorageLocationID = strPtr(locationID)
	d.CreatedByID = strPtr(creator)
	if expiry.Valid {
		t := expiry.Time
		d.ExpiryDate = &t
	}
	d.File = fileRef(fileKey, fileName, fileCT, fileSize)
	return &d, nil
}

// Create inserts a new document row and returns the stored record with joined names.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	const q = `
		INSERT INTO documents (id, title, document_type, document_number, category_id,
		                       issue_date, expiry_date, storage_location_id, description,
		                       file_key, file_name, file_size, file_content_type,
		                       created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $15)
		RETURNING id
	`
	key, name, size, ct := fileArgs(doc.File)
	var id string
	if err := r.db.QueryRowContext(ctx, q,
		doc.ID,
		doc.Title,
		string(doc.DocumentType),
		doc.DocumentNumber,
		doc.CategoryID,
		doc.IssueDate,
		doc.ExpiryDate,
		doc.StorageLocationID,
		nullIfEmpty(doc.Description),
		key, name, size, ct,
		doc.CreatedByID,
		doc.CreatedAt,
	).Scan(&id); err != nil {
		return nil, mapErr(err)
	}
	return r.FindByID(ctx, id)
}

// FindByID fetches a single document by its ID.
func (r *DocumentPostgres) FindByID(ctx context.Context, id string) (*model.Document, error) {
	row := r.db.QueryRowContext(ctx, documentSelect+` WHERE d.id = $1`, id)
	d, err := scanDocument(row)
	if err != nil {
		return nil, mapErr(err)
	}
	return d, nil
}

// Update overwrites the editable columns; created_by and created_at are immutable.
func (r *DocumentPostgres) Update(ctx context.Context, doc *model.Document) (*model.Document, error) {
	const q = `
		UPDATE documents
		SET title = $2, document_type = $3, document_number = $4, category_id = $5,
		    issue_date = $6, expiry_date = $7, storage_location_id = $8, description = $9,
		    file_key = $10, file_name = $11, file_size = $12, file_content_type = $13,
		    updated_at = now()
		WHERE id = $1
	`
	key, name, size, ct := fileArgs(doc.File)
	res, err := r.db.ExecContext(ctx, q,
		doc.ID,
		doc.Title,
		string(doc.DocumentType),
		doc.DocumentNumber,
		doc.CategoryID,
		doc.IssueDate,
		doc.ExpiryDate,
		doc.StorageLocationID,
		nullIfEmpty(doc.Description),
		key, name, size, ct,
	)
	if err != nil {
		return nil, mapErr(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, repository.ErrNotFound
	}
	return r.FindByID(ctx, doc.ID)
}

func documentWhere(f repository.DocumentFilter) *whereBuilder {
	w := &whereBuilder{}
	if q := strings.TrimSpace(f.Query); q != "" {
		w.add(`(d.title ILIKE ? OR d.document_number ILIKE ? OR COALESCE(d.description, '') ILIKE ?)`, likePattern(q))
	}
	if f.DocumentType != "" {
		w.add(`d.document_type = ?`, f.DocumentType)
	}
	if f.CategoryID != "" {
		w.add(`d.category_id = ?`, f.CategoryID)
	}
	if f.StorageLocationID != "" {
		w.add(`d.storage_location_id = ?`, f.StorageLocationID)
	}
	if f.CreatedByID != "" {
		w.add(`d.created_by = ?`, f.CreatedByID)
	}
	if f.IssuedFrom != nil {
		w.add(`d.issue_date >= ?`, *f.IssuedFrom)
	}
	if f.IssuedTo != nil {
		w.add(`d.issue_date <= ?`, *f.IssuedTo)
	}
	return w
}

// List returns documents matching f using LIMIT/OFFSET pagination and a total count.
func (r *DocumentPostgres) List(ctx context.Context, f repository.DocumentFilter, pq repository.PageQuery) (*repository.PageResult[model.Document], error) {
	w := documentWhere(f)

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents d`+w.clause(), w.args...).Scan(&total); err != nil {
		return nil, err
	}

	where := w.clause()
	limit := w.page(pq)
	items, err := r.query(ctx, documentSelect+where+documentOrder+limit, w.args...)
	if err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Document]{Items: items, Total: total}, nil
}

// All returns every document matching f, newest first.
func (r *DocumentPostgres) All(ctx context.Context, f repository.DocumentFilter) ([]model.Document, error) {
	w := documentWhere(f)
	return r.query(ctx, documentSelect+w.clause()+documentOrder, w.args...)
}

// Count returns the number of stored documents.
func (r *DocumentPostgres) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Delete removes a document by ID. It does not return an error if the row does not exist.
func (r *DocumentPostgres) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	return err
}

func (r *DocumentPostgres) query(ctx context.Context, q string, args ...any) ([]model.Document, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
