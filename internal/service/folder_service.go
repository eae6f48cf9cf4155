package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/simpleconf/simpleconf-api/internal/access"
	"github.com/simpleconf/simpleconf-api/internal/models"
	appErrors "github.com/simpleconf/simpleconf-api/pkg/errors"
)

type folderRepository interface {
	FindByID(ctx context.Context, id string) (*models.Folder, error)
	ListChildren(ctx context.Context, parentID *string) ([]models.Folder, error)
	Create(ctx context.Context, folder *models.Folder) error
	DocumentCount(ctx context.Context, folderID string) (int, error)
	Delete(ctx context.Context, id string) error
}

// FolderService handles folder tree workflows. Every operation takes the
// acting identity's claims; listings filter out unreadable folders while
// direct access to one comes back FORBIDDEN.
type FolderService struct {
	repo      folderRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewFolderService creates an instance of FolderService.
func NewFolderService(repo folderRepository, validate *validator.Validate, logger *zap.Logger) *FolderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	return &FolderService{repo: repo, validator: validate, logger: logger}
}

// ListChildren returns the readable children of a folder, or readable roots
// when parentID is nil.
func (s *FolderService) ListChildren(ctx context.Context, claims *models.Claims, parentID *string) ([]models.Folder, error) {
	folders, err := s.repo.ListChildren(ctx, parentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list folders")
	}

	visible := make([]models.Folder, 0, len(folders))
	for _, folder := range folders {
		if access.CanReadFolder(claims, &folder) {
			visible = append(visible, folder)
		}
	}
	return visible, nil
}

// Get returns a folder the identity may read.
func (s *FolderService) Get(ctx context.Context, claims *models.Claims, id string) (*models.Folder, error) {
	folder, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "folder not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load folder")
	}
	if !access.CanReadFolder(claims, folder) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "no access to this folder")
	}
	return folder, nil
}

// Create adds a folder under the given parent. Creating under a parent
// requires write access to it; any authenticated identity may create roots.
func (s *FolderService) Create(ctx context.Context, claims *models.Claims, req models.CreateFolderRequest) (*models.Folder, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid folder payload")
	}

	if req.Visibility == models.VisibilityDepartment && req.Department == nil {
		return nil, appErrors.WithDetails(
			appErrors.Clone(appErrors.ErrValidation, "invalid folder payload"),
			map[string]string{"department": "is required for department visibility"},
		)
	}
	if req.Visibility == models.VisibilityPublic {
		// A department tag on a public folder would never constrain anything.
		req.Department = nil
	}

	if req.ParentID != nil {
		parent, err := s.repo.FindByID(ctx, *req.ParentID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "parent folder not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load parent folder")
		}
		if !access.CanWriteFolder(claims, parent) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "no write access to the parent folder")
		}
	}

	folder := &models.Folder{
		Name:       req.Name,
		ParentID:   req.ParentID,
		Visibility: req.Visibility,
		Department: req.Department,
		CreatedBy:  claims.UserID,
	}

	if err := s.repo.Create(ctx, folder); err != nil {
		if errors.Is(err, appErrors.ErrConflict) || errors.Is(err, appErrors.ErrIntegrity) {
			return nil, err
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create folder")
	}

	s.logger.Info("folder created",
		zap.String("folder_id", folder.ID),
		zap.String("visibility", string(folder.Visibility)),
	)

	return folder, nil
}

// DocumentCount returns the number of documents directly inside a folder.
func (s *FolderService) DocumentCount(ctx context.Context, claims *models.Claims, id string) (int, error) {
	if _, err := s.Get(ctx, claims, id); err != nil {
		return 0, err
	}
	count, err := s.repo.DocumentCount(ctx, id)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count documents")
	}
	return count, nil
}

// Delete removes a folder and, through the storage cascade, every document
// directly inside it.
func (s *FolderService) Delete(ctx context.Context, claims *models.Claims, id string) error {
	folder, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "folder not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load folder")
	}
	if !access.CanWriteFolder(claims, folder) {
		return appErrors.Clone(appErrors.ErrForbidden, "no write access to this folder")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "folder not found")
		}
		if errors.Is(err, appErrors.ErrIntegrity) {
			return err
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete folder")
	}

	s.logger.Info("folder deleted", zap.String("folder_id", id))
	return nil
}
