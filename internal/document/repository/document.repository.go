package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"docuvault/internal/document/model"
	"docuvault/pkg/apperr"
	"docuvault/pkg/logger"
)

// The SQL below sticks to the dialect shared by postgres and sqlite3:
// $N placeholders, ON CONFLICT upserts, and timestamps bound from Go
// rather than NOW() so the same statements run on either driver.
const (
	createTableStmt = `CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		store_name TEXT NOT NULL,
		content TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`
	createIndexStmt = `CREATE INDEX IF NOT EXISTS idx_documents_store_name ON documents (store_name)`

	upsertStmt = `INSERT INTO documents (id, store_name, content, updated_at) VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET store_name = excluded.store_name, content = excluded.content, updated_at = excluded.updated_at`
)

type DocumentRepository struct {
	DB      *sql.DB
	Timeout time.Duration
}

func NewDocumentRepository(db *sql.DB, timeout time.Duration) *DocumentRepository {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &DocumentRepository{DB: db, Timeout: timeout}
}

// opCtx bounds every operation, including the wait for a pool connection,
// so a saturated pool surfaces as a StorageError instead of a hang.
func (r *DocumentRepository) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.Timeout)
}

// EnsureSchema creates the documents table and its store index if missing.
// Safe to call on every startup and again before an export.
func (r *DocumentRepository) EnsureSchema(ctx context.Context) error {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	for _, stmt := range []string{createTableStmt, createIndexStmt} {
		if _, err := r.DB.ExecContext(ctx, stmt); err != nil {
			logger.Sugar.Errorf("Failed to initialize schema: %v", err)
			return &apperr.StorageError{Op: "ensure schema", Err: err}
		}
	}
	return nil
}

// ReadStore returns the content of every document in a store, most recently
// written first. An unknown or empty store yields an empty slice.
func (r *DocumentRepository) ReadStore(ctx context.Context, store string) ([]json.RawMessage, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	rows, err := r.DB.QueryContext(ctx,
		`SELECT content FROM documents WHERE store_name = $1 ORDER BY updated_at DESC`, store)
	if err != nil {
		logger.Sugar.Errorf("Failed to read store %s: %v", store, err)
		return nil, &apperr.StorageError{Op: "read store", Err: err}
	}
	defer rows.Close()

	docs := []json.RawMessage{}
	for rows.Next() {
		var content []byte
		if err := rows.Scan(&content); err != nil {
			logger.Sugar.Errorf("Failed to scan document in store %s: %v", store, err)
			return nil, &apperr.StorageError{Op: "read store", Err: err}
		}
		docs = append(docs, json.RawMessage(content))
	}
	if err := rows.Err(); err != nil {
		logger.Sugar.Errorf("Row iteration failed for store %s: %v", store, err)
		return nil, &apperr.StorageError{Op: "read store", Err: err}
	}
	return docs, nil
}

// ReadAll returns every (store, content) pair in the table, in no
// particular order. Used by the export path.
func (r *DocumentRepository) ReadAll(ctx context.Context) ([]model.Document, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	rows, err := r.DB.QueryContext(ctx, `SELECT store_name, content FROM documents`)
	if err != nil {
		logger.Sugar.Errorf("Failed to read all documents: %v", err)
		return nil, &apperr.StorageError{Op: "read all", Err: err}
	}
	defer rows.Close()

	var docs []model.Document
	for rows.Next() {
		var doc model.Document
		var content []byte
		if err := rows.Scan(&doc.Store, &content); err != nil {
			logger.Sugar.Errorf("Failed to scan document: %v", err)
			return nil, &apperr.StorageError{Op: "read all", Err: err}
		}
		doc.Content = json.RawMessage(content)
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		logger.Sugar.Errorf("Row iteration failed reading all documents: %v", err)
		return nil, &apperr.StorageError{Op: "read all", Err: err}
	}
	return docs, nil
}

// Upsert inserts or replaces the row keyed by id in a single atomic
// statement. Concurrent writers to the same id race and the last commit
// wins; updated_at is always assigned here, never by the caller.
func (r *DocumentRepository) Upsert(ctx context.Context, id, store string, content json.RawMessage) error {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	_, err := r.DB.ExecContext(ctx, upsertStmt, id, store, string(content), time.Now().UTC())
	if err != nil {
		logger.Sugar.Errorf("Failed to upsert document %s into store %s: %v", id, store, err)
		return &apperr.StorageError{Op: "upsert", Err: err}
	}
	return nil
}

// Delete removes the row with the given id. Deleting an absent id is not
// an error.
func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	_, err := r.DB.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		logger.Sugar.Errorf("Failed to delete document %s: %v", id, err)
		return &apperr.StorageError{Op: "delete", Err: err}
	}
	return nil
}

// Ping confirms the backend is reachable without mutating state.
func (r *DocumentRepository) Ping(ctx context.Context) error {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	if err := r.DB.PingContext(ctx); err != nil {
		logger.Sugar.Errorf("Database ping failed: %v", err)
		return &apperr.StorageError{Op: "ping", Err: err}
	}
	return nil
}
