package document

import (
	"context"
	"database/sql"
	"encoding/json"
)

type Repository interface {
	Save(ctx context.Context, doc *Document) error
	List(ctx context.Context) ([]Document, error)
	Get(ctx context.Context, id string) (*Document, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
	SetProcessing(ctx context.Context, id string, chunksTotal int) error
	MarkChunkEmbedded(ctx context.Context, id string) (bool, error)
	MarkFailed(ctx context.Context, id, reason string) error
}

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

const documentColumns = `id, name, scope, content_type, COALESCE(record_id, ''), COALESCE(owner_id, ''), COALESCE(title, ''), attributes, status, COALESCE(fail_reason, ''), chunks_total, chunks_embedded, created_at, updated_at`

func (r *PostgresRepo) Save(ctx context.Context, doc *Document) error {
	attrs, err := json.Marshal(doc.Attributes)
	if err != nil {
		return err
	}
	query := `INSERT INTO documents (name, scope, content_type, record_id, owner_id, title, attributes, status) VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id, created_at, updated_at`
	return r.db.QueryRowContext(ctx, query, doc.Name, doc.Scope, doc.ContentType, doc.RecordID, doc.OwnerID, doc.Title, attrs, doc.Status).
		Scan(&doc.ID, &doc.CreatedAt, &doc.UpdatedAt)
}

func (r *PostgresRepo) List(ctx context.Context) ([]Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (*Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	return scanDocument(r.db.QueryRowContext(ctx, query, id))
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDocument(row rowScanner) (*Document, error) {
	doc := &Document{}
	var attrs []byte
	err := row.Scan(&doc.ID, &doc.Name, &doc.Scope, &doc.ContentType, &doc.RecordID, &doc.OwnerID, &doc.Title, &attrs, &doc.Status, &doc.FailReason, &doc.ChunksTotal, &doc.ChunksEmbedded, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(attrs) > 0 {
		if err := json.Unmarshal(attrs, &doc.Attributes); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

func (r *PostgresRepo) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM documents WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *PostgresRepo) Count(ctx context.Context) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM documents`
	err := r.db.QueryRowContext(ctx, query).Scan(&count)
	return count, err
}

// SetProcessing records the chunk count and moves the document into
// processing. A document that produced no chunks completes immediately.
func (r *PostgresRepo) SetProcessing(ctx context.Context, id string, chunksTotal int) error {
	query := `UPDATE documents SET chunks_total = $2, status = CASE WHEN $2 = 0 THEN 'completed' ELSE 'processing' END, updated_at = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, chunksTotal)
	return err
}

// MarkChunkEmbedded bumps the embedded counter and reports whether the
// document is now fully embedded. A failed document stays failed.
func (r *PostgresRepo) MarkChunkEmbedded(ctx context.Context, id string) (bool, error) {
	query := `UPDATE documents SET chunks_embedded = chunks_embedded + 1, status = CASE WHEN chunks_embedded + 1 >= chunks_total AND status <> 'failed' THEN 'completed' ELSE status END, updated_at = NOW() WHERE id = $1 RETURNING chunks_embedded, chunks_total`
	var embedded, total int
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&embedded, &total); err != nil {
		return false, err
	}
	return total > 0 && embedded >= total, nil
}

func (r *PostgresRepo) MarkFailed(ctx context.Context, id, reason string) error {
	query := `UPDATE documents SET status = 'failed', fail_reason = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, reason)
	return err
}
