package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/fwojciec/webtext"
	wtbatch "github.com/fwojciec/webtext/batch"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ webtext.HistoryService = (*HistoryService)(nil)

// timeFormat is fixed width so that created_at sorts lexically.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// HistoryService implements webtext.HistoryService using SQLite.
type HistoryService struct {
	db  *DB
	now func() time.Time
}

// NewHistoryService creates a new HistoryService.
func NewHistoryService(db *DB) *HistoryService {
	return &HistoryService{db: db, now: time.Now}
}

// RecordBatch stores the batch and its results in a single transaction.
func (s *HistoryService) RecordBatch(ctx context.Context, batch *webtext.Batch) error {
	if err := batch.Validate(); err != nil {
		return err
	}

	batch.ID = uuid.New().String()
	batch.CreatedAt = s.now().UTC()

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO batches (id, created_at) VALUES (?, ?)
	`, batch.ID, batch.CreatedAt.Format(timeFormat)); err != nil {
		return err
	}

	for i, r := range batch.Results {
		var errMsg sql.NullString
		var code string
		hash := r.Hash
		if r.Err != nil {
			errMsg = sql.NullString{String: r.ErrorString(), Valid: true}
			code = webtext.ErrorCode(r.Err)
		} else if hash == "" {
			hash = wtbatch.ComputeHash(r.Text)
		}
		var text string
		if r.Err == nil {
			text = r.Text
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO results (id, batch_id, position, url, title, text, hash, error, code)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, uuid.New().String(), batch.ID, i, r.URL, r.Title, text, hash, errMsg, code); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// FindBatchByID retrieves a batch with its results in input order.
func (s *HistoryService) FindBatchByID(ctx context.Context, id string) (*webtext.Batch, error) {
	var batch webtext.Batch
	var createdAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, created_at FROM batches WHERE id = ?
	`, id).Scan(&batch.ID, &createdAt)
	if err == sql.ErrNoRows {
		return nil, webtext.Errorf(webtext.ENOTFOUND, "batch not found")
	}
	if err != nil {
		return nil, err
	}

	if batch.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return nil, err
	}

	if batch.Results, err = s.findResults(ctx, batch.ID, true); err != nil {
		return nil, err
	}
	return &batch, nil
}

// FindBatches lists batches newest first. Results are loaded without text.
func (s *HistoryService) FindBatches(ctx context.Context, filter webtext.BatchFilter) ([]*webtext.Batch, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, created_at FROM batches ORDER BY created_at DESC, rowid DESC")
	if filter.Offset > 0 && filter.Limit <= 0 {
		// SQLite requires LIMIT before OFFSET.
		query.WriteString(" LIMIT -1")
	}
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	batches := []*webtext.Batch{}
	for rows.Next() {
		var batch webtext.Batch
		var createdAt string
		if err := rows.Scan(&batch.ID, &createdAt); err != nil {
			return nil, err
		}
		if batch.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
			return nil, err
		}
		batches = append(batches, &batch)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	for _, batch := range batches {
		if batch.Results, err = s.findResults(ctx, batch.ID, false); err != nil {
			return nil, err
		}
	}
	return batches, nil
}

// DeleteBatch removes a batch. Its results are removed by cascade.
func (s *HistoryService) DeleteBatch(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM batches WHERE id = ?", id)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return webtext.Errorf(webtext.ENOTFOUND, "batch not found")
	}
	return nil
}

func (s *HistoryService) findResults(ctx context.Context, batchID string, withText bool) ([]*webtext.Result, error) {
	textColumn := "''"
	if withText {
		textColumn = "text"
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT url, title, `+textColumn+`, hash, error, code
		FROM results
		WHERE batch_id = ?
		ORDER BY position ASC
	`, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*webtext.Result
	for rows.Next() {
		var r webtext.Result
		var errMsg sql.NullString
		var code string
		if err := rows.Scan(&r.URL, &r.Title, &r.Text, &r.Hash, &errMsg, &code); err != nil {
			return nil, err
		}
		if errMsg.Valid {
			r.Err = &webtext.Error{Code: code, Message: errMsg.String}
		}
		results = append(results, &r)
	}
	return results, rows.Err()
}
