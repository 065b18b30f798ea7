package postgres

import (
	"context"
	"database/sql"
	"strings"

	"archivesys/internal/model"
	"archivesys/internal/repository"
)

// HistoryPostgres is an append-only PostgreSQL store for document audit records.
type HistoryPostgres struct {
	db *sql.DB
}

// NewHistoryPostgres creates a new HistoryPostgres repository.
func NewHistoryPostgres(db *sql.DB) *HistoryPostgres {
	return &HistoryPostgres{db: db}
}

var _ repository.HistoryRepository = (*HistoryPostgres)(nil)

const historySelect = `
		SELECT h.id, h.document_id, h.user_id, h.action, h.timestamp, COALESCE(h.details, ''),
		       COALESCE(d.title, ''), COALESCE(u.username, '')
		FROM document_history h
		LEFT JOIN documents d ON d.id = h.document_id
		LEFT JOIN users u ON u.id = h.user_id`

const historyOrder = ` ORDER BY h.timestamp DESC, h.id DESC`

func scanHistory(s scanner) (*model.DocumentHistory, error) {
	var (
		h      model.DocumentHistory
		userID sql.NullString
		action string
	)
	if err := s.Scan(&h.ID, &h.DocumentID, &userID, &action, &h.Timestamp, &h.Details, &h.DocumentTitle, &h.Username); err != nil {
		return nil, err
	}
	h.UserID = strPtr(userID)
	h.Action = model.HistoryAction(action)
	return &h, nil
}

// Append records an audit entry. The database assigns the ID and timestamp.
func (r *HistoryPostgres) Append(ctx context.Context, h *model.DocumentHistory) (*model.DocumentHistory, error) {
	const q = `
		INSERT INTO document_history (document_id, user_id, action, details)
		VALUES ($1, $2, $3, $4)
		RETURNING id, timestamp
	`
	out := *h
	if err := r.db.QueryRowContext(ctx, q,
		h.DocumentID,
		h.UserID,
		string(h.Action),
		nullIfEmpty(h.Details),
	).Scan(&out.ID, &out.Timestamp); err != nil {
		return nil, mapErr(err)
	}
	return &out, nil
}

func historyWhere(f repository.HistoryFilter) *whereBuilder {
	w := &whereBuilder{}
	if f.DocumentID != "" {
		w.add(`h.document_id = ?`, f.DocumentID)
	}
	if f.UserID != "" {
		w.add(`h.user_id = ?`, f.UserID)
	}
	if f.Action != "" {
		w.add(`h.action = ?`, f.Action)
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		w.add(`(COALESCE(d.title, '') ILIKE ? OR COALESCE(u.username, '') ILIKE ? OR COALESCE(h.details, '') ILIKE ?)`, likePattern(q))
	}
	if f.From != nil {
		w.add(`h.timestamp >= ?`, *f.From)
	}
	if f.To != nil {
		w.add(`h.timestamp <= ?`, *f.To)
	}
	return w
}

// List returns a page of audit records matching f, newest first.
func (r *HistoryPostgres) List(ctx context.Context, f repository.HistoryFilter, pq repository.PageQuery) (*repository.PageResult[model.DocumentHistory], error) {
	w := historyWhere(f)

	const countFrom = `
		SELECT COUNT(*)
		FROM document_history h
		LEFT JOIN documents d ON d.id = h.document_id
		LEFT JOIN users u ON u.id = h.user_id`

	var total int
	if err := r.db.QueryRowContext(ctx, countFrom+w.clause(), w.args...).Scan(&total); err != nil {
		return nil, err
	}

	where := w.clause()
	limit := w.page(pq)
	items, err := r.query(ctx, historySelect+where+historyOrder+limit, w.args...)
	if err != nil {
		return nil, err
	}
	return &repository.PageResult[model.DocumentHistory]{Items: items, Total: total}, nil
}

// All returns every audit record matching f, newest first.
func (r *HistoryPostgres) All(ctx context.Context, f repository.HistoryFilter) ([]model.DocumentHistory, error) {
	w := historyWhere(f)
	return r.query(ctx, historySelect+w.clause()+historyOrder, w.args...)
}

func (r *HistoryPostgres) query(ctx context.Context, q string, args ...any) ([]model.DocumentHistory, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.DocumentHistory, 0)
	for rows.Next() {
		h, err := scanHistory(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *h)
	}
	return items, rows.Err()
}
