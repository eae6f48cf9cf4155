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

const folderColumns = `id, name, parent_id, visibility, department, created_by, created_at`

// FolderRepository provides database access for the folder tree.
type FolderRepository struct {
	db *sqlx.DB
}

// NewFolderRepository creates a new instance of FolderRepository.
func NewFolderRepository(db *sqlx.DB) *FolderRepository {
	return &FolderRepository{db: db}
}

// FindByID returns a folder by identifier.
func (r *FolderRepository) FindByID(ctx context.Context, id string) (*models.Folder, error) {
	query := fmt.Sprintf(`SELECT %s FROM folders WHERE id = $1 LIMIT 1`, folderColumns)
	var folder models.Folder
	if err := r.db.GetContext(ctx, &folder, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find folder by id: %w", err)
	}
	return &folder, nil
}

// ListChildren returns the direct children of a folder, or the roots when
// parentID is nil.
func (r *FolderRepository) ListChildren(ctx context.Context, parentID *string) ([]models.Folder, error) {
	folders := []models.Folder{}
	if parentID == nil {
		query := fmt.Sprintf(`SELECT %s FROM folders WHERE parent_id IS NULL ORDER BY name`, folderColumns)
		if err := r.db.SelectContext(ctx, &folders, query); err != nil {
			return nil, fmt.Errorf("list root folders: %w", err)
		}
		return folders, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM folders WHERE parent_id = $1 ORDER BY name`, folderColumns)
	if err := r.db.SelectContext(ctx, &folders, query, *parentID); err != nil {
		return nil, fmt.Errorf("list child folders: %w", err)
	}
	return folders, nil
}

// Create inserts a new folder. Sibling-name uniqueness (including among
// roots) is enforced by the storage layer's unique indexes and surfaces as
// CONFLICT; an unknown parent surfaces as an integrity error.
func (r *FolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	if folder.ID == "" {
		folder.ID = uuid.NewString()
	}
	if folder.CreatedAt.IsZero() {
		folder.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO folders (id, name, parent_id, visibility, department, created_by, created_at) VALUES (:id, :name, :parent_id, :visibility, :department, :created_by, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, folder); err != nil {
		if isUniqueViolation(err) {
			return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("a sibling folder named %q already exists", folder.Name))
		}
		if isForeignKeyViolation(err) {
			return appErrors.Clone(appErrors.ErrIntegrity, "parent folder does not exist")
		}
		return fmt.Errorf("create folder: %w", err)
	}
	return nil
}

// DocumentCount returns the number of documents directly inside a folder.
func (r *FolderRepository) DocumentCount(ctx context.Context, folderID string) (int, error) {
	const query = `SELECT COUNT(*) FROM documents WHERE folder_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, folderID); err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return count, nil
}

// Delete removes a folder. Contained documents go with the row through the
// ON DELETE CASCADE foreign key: one statement, atomic under concurrent
// writers.
func (r *FolderRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM folders WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			// Child folders reference this row without a cascade.
			return appErrors.Clone(appErrors.ErrIntegrity, "folder still has child folders")
		}
		return fmt.Errorf("delete folder: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete folder: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
