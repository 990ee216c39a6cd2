package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/radical-ticket/internal/model"
)

// maxBatch bounds the number of rows in one multi-row INSERT.
const maxBatch = 500

// MySQL is a Backend over the tickets and ticket_meta tables created by
// database.CreateSchema.  The ticket JSON lives in the value column; the
// version is a separate column so the guarded UPDATE can match on it.
type MySQL struct {
	db *sql.DB
}

// NewMySQL returns a MySQL backend bound to db.
func NewMySQL(db *sql.DB) *MySQL { return &MySQL{db: db} }

func (m *MySQL) Get(ctx context.Context, key string) (model.Record, bool, error) {
	const q = `SELECT version, value FROM tickets WHERE record_key = ?`
	var (
		version uint64
		raw     []byte
	)
	err := m.db.QueryRowContext(ctx, q, key).Scan(&version, &raw)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Record{}, false, nil
	}
	if err != nil {
		return model.Record{}, false, fmt.Errorf("mysql get %s: %w", key, err)
	}
	var t model.Ticket
	if err := json.Unmarshal(raw, &t); err != nil {
		return model.Record{}, false, fmt.Errorf("mysql decode %s: %w", key, err)
	}
	return model.Record{Key: key, ID: key, Version: version, Value: t}, true, nil
}

// PutIfVersion relies on the row-level atomicity of a single UPDATE: the
// WHERE clause matches only while the stored version is unchanged.
func (m *MySQL) PutIfVersion(ctx context.Context, key string, expected uint64, rec model.Record) (bool, error) {
	body, err := json.Marshal(rec.Value)
	if err != nil {
		return false, fmt.Errorf("mysql encode %s: %w", key, err)
	}
	const q = `UPDATE tickets SET version = ?, value = ? WHERE record_key = ? AND version = ?`
	res, err := m.db.ExecContext(ctx, q, rec.Version, body, key, expected)
	if err != nil {
		return false, fmt.Errorf("mysql cas %s: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mysql cas %s: %w", key, err)
	}
	return n == 1, nil
}

func (m *MySQL) Delete(ctx context.Context, key string) error {
	if _, err := m.db.ExecContext(ctx, `DELETE FROM tickets WHERE record_key = ?`, key); err != nil {
		return fmt.Errorf("mysql delete %s: %w", key, err)
	}
	return nil
}

func (m *MySQL) Put(ctx context.Context, rec model.Record) error {
	return m.PutAll(ctx, []model.Record{rec})
}

// PutAll upserts records with multi-row INSERT statements inside one
// transaction.  Passing an empty slice has no effect.
func (m *MySQL) PutAll(ctx context.Context, recs []model.Record) error {
	if len(recs) == 0 {
		return nil
	}
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("mysql begin: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	for start := 0; start < len(recs); start += maxBatch {
		end := min(start+maxBatch, len(recs))
		if err := insertBatch(ctx, tx, recs[start:end]); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("mysql commit: %w", err)
	}
	committed = true
	return nil
}

func insertBatch(ctx context.Context, tx *sql.Tx, recs []model.Record) error {
	var sb strings.Builder
	sb.WriteString(`INSERT INTO tickets (record_key, ticket_id, version, value) VALUES `)
	args := make([]interface{}, 0, len(recs)*4)
	for i, rec := range recs {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString("(?, ?, ?, ?)")
		body, err := json.Marshal(rec.Value)
		if err != nil {
			return fmt.Errorf("mysql encode %s: %w", rec.Key, err)
		}
		args = append(args, rec.Key, rec.Value.ID, rec.Version, body)
	}
	sb.WriteString(` ON DUPLICATE KEY UPDATE ticket_id = VALUES(ticket_id), version = VALUES(version), value = VALUES(value)`)
	if _, err := tx.ExecContext(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("mysql put: %w", err)
	}
	return nil
}

func (m *MySQL) Count(ctx context.Context) (uint64, error) {
	var n uint64
	err := m.db.QueryRowContext(ctx, `SELECT value FROM ticket_meta WHERE name = ?`, countKey).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("mysql count: %w", err)
	}
	return n, nil
}

func (m *MySQL) SetCount(ctx context.Context, n uint64) error {
	const q = `INSERT INTO ticket_meta (name, value) VALUES (?, ?) ON DUPLICATE KEY UPDATE value = VALUES(value)`
	if _, err := m.db.ExecContext(ctx, q, countKey, n); err != nil {
		return fmt.Errorf("mysql set count: %w", err)
	}
	return nil
}
