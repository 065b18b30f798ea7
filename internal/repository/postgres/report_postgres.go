package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"archivesys/internal/model"
	"archivesys/internal/repository"
)

// ReportPostgres stores report records. Parameters are kept as JSONB.
type ReportPostgres struct {
	db *sql.DB
}

func NewReportPostgres(db *sql.DB) *ReportPostgres {
	return &ReportPostgres{db: db}
}

var _ repository.ReportRepository = (*ReportPostgres)(nil)

const reportSelect = `
		SELECT r.id, r.title, r.report_type, r.parameters,
		       r.file_key, r.file_name, r.file_size, r.content_type,
		       r.created_by, r.created_at, COALESCE(u.username, '')
		FROM reports r
		LEFT JOIN users u ON u.id = r.created_by`

func scanReport(s scanner) (*model.Report, error) {
	var (
		rep                       model.Report
		reportType                string
		params                    []byte
		fileKey, fileName, fileCT sql.NullString
		fileSize                  sql.NullInt64
		creator                   sql.NullString
	)
	if err := s.Scan(
		&rep.ID,
		&rep.Title,
		&reportType,
		&params,
		&fileKey,
		&fileName,
		&fileSize,
		&fileCT,
		&creator,
		&rep.CreatedAt,
		&rep.CreatedByUsername,
	); err != nil {
		return nil, err
	}
	rep.ReportType = model.ReportType(reportType)
	if len(params) > 0 {
		if err := json.Unmarshal(params, &rep.Parameters); err != nil {
			return nil, fmt.Errorf("decode report parameters: %w", err)
		}
	}
	rep.File = fileRef(fileKey, fileName, fileCT, fileSize)
	rep.CreatedByID = strPtr(creator)
	return &rep, nil
}

func (r *ReportPostgres) Create(ctx context.Context, rep *model.Report) (*model.Report, error) {
	const q = `
		INSERT INTO reports (title, report_type, parameters, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	params, err := json.Marshal(rep.Parameters)
	if err != nil {
		return nil, fmt.Errorf("encode report parameters: %w", err)
	}
	var id string
	if err := r.db.QueryRowContext(ctx, q, rep.Title, string(rep.ReportType), string(params), rep.CreatedByID).Scan(&id); err != nil {
		return nil, mapErr(err)
	}
	return r.FindByID(ctx, id)
}

func (r *ReportPostgres) FindByID(ctx context.Context, id string) (*model.Report, error) {
	rep, err := scanReport(r.db.QueryRowContext(ctx, reportSelect+` WHERE r.id = $1`, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return rep, nil
}

// SetFile records where the generated file was stored.
func (r *ReportPostgres) SetFile(ctx context.Context, id string, f model.FileRef) error {
	return execAffecting(ctx, r.db,
		`UPDATE reports SET file_key = $2, file_name = $3, file_size = $4, content_type = $5 WHERE id = $1`,
		id, f.Key, f.Name, f.Size, f.ContentType,
	)
}

// List returns a page of reports, newest first.
func (r *ReportPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Report], error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reports`).Scan(&total); err != nil {
		return nil, err
	}

	w := &whereBuilder{}
	limit := w.page(pq)
	rows, err := r.db.QueryContext(ctx, reportSelect+` ORDER BY r.created_at DESC, r.id DESC`+limit, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Report, 0)
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *rep)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Report]{Items: items, Total: total}, nil
}

func (r *ReportPostgres) Delete(ctx context.Context, id string) error {
	return execAffecting(ctx, r.db, `DELETE FROM reports WHERE id = $1`, id)
}
