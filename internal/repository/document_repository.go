package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/simpleconf/simpleconf-api/internal/models"
	appErrors "github.com/simpleconf/simpleconf-api/pkg/errors"
)

const documentColumns = `id, title, content, folder_id, created_by, modified_by, view_count, created_at, updated_at`

// DocumentRepository provides database access for documents.
type DocumentRepository struct {
	db *sqlx.DB
}

// NewDocumentRepository creates a new instance of DocumentRepository.
func NewDocumentRepository(db *sqlx.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// FindByID returns a document by identifier.
func (r *DocumentRepository) FindByID(ctx context.Context, id string) (*models.Document, error) {
	query := fmt.Sprintf(`SELECT %s FROM documents WHERE id = $1 LIMIT 1`, documentColumns)
	var doc models.Document
	if err := r.db.GetContext(ctx, &doc, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find document by id: %w", err)
	}
	return &doc, nil
}

// ListByFolder returns the documents directly inside a folder.
func (r *DocumentRepository) ListByFolder(ctx context.Context, folderID string) ([]models.Document, error) {
	query := fmt.Sprintf(`SELECT %s FROM documents WHERE folder_id = $1 ORDER BY updated_at DESC`, documentColumns)
	docs := []models.Document{}
	if err := r.db.SelectContext(ctx, &docs, query, folderID); err != nil {
		return nil, fmt.Errorf("list documents by folder: %w", err)
	}
	return docs, nil
}

// ListPopular returns the most viewed documents joined with the owning
// folder's access scope.
func (r *DocumentRepository) ListPopular(ctx context.Context, limit int) ([]models.PopularDocument, error) {
	if limit <= 0 {
		limit = 10
	}
	const query = `SELECT d.id, d.title, d.content, d.folder_id, d.created_by, d.modified_by, d.view_count, d.created_at, d.updated_at,
		f.name AS folder_name, f.visibility AS folder_visibility, f.department AS folder_department
		FROM documents d
		JOIN folders f ON f.id = d.folder_id
		ORDER BY d.view_count DESC, d.updated_at DESC
		LIMIT $1`
	docs := []models.PopularDocument{}
	if err := r.db.SelectContext(ctx, &docs, query, limit); err != nil {
		return nil, fmt.Errorf("list popular documents: %w", err)
	}
	return docs, nil
}

// Create inserts a new document. A missing folder surfaces as an integrity
// error through the foreign key.
func (r *DocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	const query = `INSERT INTO documents (id, title, content, folder_id, created_by, modified_by, view_count, created_at, updated_at) VALUES (:id, :title, :content, :folder_id, :created_by, :modified_by, :view_count, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, doc); err != nil {
		if isForeignKeyViolation(err) {
			return appErrors.Clone(appErrors.ErrIntegrity, "folder does not exist")
		}
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

// Update overwrites the title, content and last modifier.
func (r *DocumentRepository) Update(ctx context.Context, doc *models.Document) error {
	doc.UpdatedAt = time.Now().UTC()
	const query = `UPDATE documents SET title = :title, content = :content, modified_by = :modified_by, updated_at = :updated_at WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, doc)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a document.
func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM documents WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// IncrementViewCount bumps the view counter by one. Counters only move
// forward; there is no reset path.
func (r *DocumentRepository) IncrementViewCount(ctx context.Context, id string) error {
	const query = `UPDATE documents SET view_count = view_count + 1 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("increment view count: %w", err)
	}
	return nil
}
