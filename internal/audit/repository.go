// Package audit provides access to the write_audit table, which keeps
// a trail of every RDM section write the gateway performed.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// WriteRecord is a single audited section write, successful or not.
type WriteRecord struct {
	ID         string            `json:"id"`
	Universe   uint              `json:"universe"`
	UID        string            `json:"uid"`
	Section    string            `json:"section"`
	Params     map[string]string `json:"params,omitempty"`
	Error      string            `json:"error,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// Succeeded reports whether the write completed without an error.
func (r WriteRecord) Succeeded() bool {
	return r.Error == ""
}

// Filter controls which audit records to return.
type Filter struct {
	UID     string // optional: filter by responder UID
	Section string // optional: filter by section id (device_label, dmx_address, ...)
	Limit   int    // default 50, max 200
	Offset  int    // pagination offset
}

// ListResult contains the paginated audit results.
type ListResult struct {
	Records []WriteRecord `json:"records"`
	Total   int           `json:"total"`
	Limit   int           `json:"limit"`
	Offset  int           `json:"offset"`
}

// Repository defines the interface for write-audit operations.
type Repository interface {
	RecordWrite(ctx context.Context, universe uint, uid, section string, params map[string]string, errText string)
	List(ctx context.Context, filter Filter) (*ListResult, error)
}

// SQLiteRepository stores write audits in SQLite.
type SQLiteRepository struct {
	db *sql.DB

	// onError receives insert failures, since RecordWrite has no error
	// return. Optional.
	onError func(err error)
}

// NewSQLiteRepository creates a new write-audit repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// SetOnError sets a callback invoked when an audit insert fails.
func (r *SQLiteRepository) SetOnError(callback func(err error)) {
	r.onError = callback
}

// RecordWrite inserts an audit row for a completed section write. The
// commanded write already happened on the wire, so insert failures are
// reported through the error callback rather than surfaced to the
// caller.
func (r *SQLiteRepository) RecordWrite(ctx context.Context, universe uint, uid, section string, params map[string]string, errText string) {
	record := WriteRecord{
		ID:         "wr-" + uuid.NewString()[:8],
		Universe:   universe,
		UID:        uid,
		Section:    section,
		Params:     params,
		Error:      errText,
		OccurredAt: time.Now().UTC(),
	}
	if err := r.insert(ctx, record); err != nil && r.onError != nil {
		r.onError(err)
	}
}

func (r *SQLiteRepository) insert(ctx context.Context, record WriteRecord) error {
	paramsJSON := "{}"
	if record.Params != nil {
		b, err := json.Marshal(record.Params)
		if err != nil {
			return fmt.Errorf("marshalling audit params: %w", err)
		}
		paramsJSON = string(b)
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO write_audit (id, occurred_at, universe, uid, section, params, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.OccurredAt.Format(time.RFC3339),
		record.Universe, record.UID, record.Section,
		paramsJSON, record.Error,
	)
	if err != nil {
		return fmt.Errorf("inserting write audit: %w", err)
	}
	return nil
}

// List returns audit records matching the filter, most recent first.
func (r *SQLiteRepository) List(ctx context.Context, filter Filter) (*ListResult, error) {
	// Clamp limit.
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 200 { //nolint:mnd // max page size for audit queries
		filter.Limit = 200
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	// Build WHERE clause dynamically.
	var conditions []string
	var args []any

	if filter.UID != "" {
		conditions = append(conditions, "uid = ?")
		args = append(args, filter.UID)
	}
	if filter.Section != "" {
		conditions = append(conditions, "section = ?")
		args = append(args, filter.Section)
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	// Get total count.
	// WHERE clause uses ? placeholders only; no user input in the SQL string.
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM write_audit %s", where) //nolint:gosec // WHERE built from parameterised conditions, not user input
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting write audits: %w", err)
	}

	// Get paginated results.
	query := fmt.Sprintf( //nolint:gosec // WHERE built from parameterised conditions, not user input
		"SELECT id, occurred_at, universe, uid, section, params, error FROM write_audit %s ORDER BY occurred_at DESC LIMIT ? OFFSET ?",
		where,
	)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying write audits: %w", err)
	}
	defer rows.Close()

	var records []WriteRecord
	for rows.Next() {
		var record WriteRecord
		var occurredAt, paramsJSON string

		if err := rows.Scan(&record.ID, &occurredAt, &record.Universe,
			&record.UID, &record.Section, &paramsJSON, &record.Error); err != nil {
			return nil, fmt.Errorf("scanning write audit: %w", err)
		}

		if paramsJSON != "" && paramsJSON != "{}" {
			var params map[string]string
			if json.Unmarshal([]byte(paramsJSON), &params) == nil {
				record.Params = params
			}
		}

		t, err := time.Parse(time.RFC3339, occurredAt)
		if err != nil {
			return nil, fmt.Errorf("parsing audit timestamp %q: %w", occurredAt, err)
		}
		record.OccurredAt = t

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating write audits: %w", err)
	}

	if records == nil {
		records = []WriteRecord{}
	}

	return &ListResult{
		Records: records,
		Total:   total,
		Limit:   filter.Limit,
		Offset:  filter.Offset,
	}, nil
}
