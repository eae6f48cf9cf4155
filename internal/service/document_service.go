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

const popularCacheKey = "documents:popular"

type documentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Document, error)
	ListByFolder(ctx context.Context, folderID string) ([]models.Document, error)
	ListPopular(ctx context.Context, limit int) ([]models.PopularDocument, error)
	Create(ctx context.Context, doc *models.Document) error
	Update(ctx context.Context, doc *models.Document) error
	Delete(ctx context.Context, id string) error
	IncrementViewCount(ctx context.Context, id string) error
}

type documentFolderRepository interface {
	FindByID(ctx context.Context, id string) (*models.Folder, error)
}

// DocumentService handles document workflows. Access is always evaluated
// against the owning folder's scope.
type DocumentService struct {
	repo      documentRepository
	folders   documentFolderRepository
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewDocumentService creates an instance of DocumentService. Cache and
// metrics may be nil.
func NewDocumentService(repo documentRepository, folders documentFolderRepository, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	return &DocumentService{repo: repo, folders: folders, cache: cache, metrics: metrics, validator: validate, logger: logger}
}

// folderFor loads the owning folder of a document for access evaluation.
func (s *DocumentService) folderFor(ctx context.Context, folderID string) (*models.Folder, error) {
	folder, err := s.folders.FindByID(ctx, folderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// The FK guarantees the folder exists while the document does;
			// hitting this means the folder vanished mid-request.
			return nil, appErrors.Clone(appErrors.ErrNotFound, "folder not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load folder")
	}
	return folder, nil
}

// Get returns a document the identity may read.
func (s *DocumentService) Get(ctx context.Context, claims *models.Claims, id string) (*models.Document, error) {
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document")
	}

	folder, err := s.folderFor(ctx, doc.FolderID)
	if err != nil {
		return nil, err
	}
	if !access.CanReadFolder(claims, folder) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "no access to this document")
	}

	return doc, nil
}

// RecordView bumps the view counter for a document the identity just read.
// The increment is monotonic and failures only log: a lost view count never
// fails the read.
func (s *DocumentService) RecordView(ctx context.Context, id string) {
	if err := s.repo.IncrementViewCount(ctx, id); err != nil {
		s.logger.Warn("failed to record document view", zap.String("document_id", id), zap.Error(err))
		return
	}
	s.metrics.RecordDocumentView()
	if s.cache.Enabled() {
		s.cache.Invalidate(ctx, popularCacheKey)
	}
}

// ListByFolder returns the documents directly inside a readable folder.
func (s *DocumentService) ListByFolder(ctx context.Context, claims *models.Claims, folderID string) ([]models.Document, error) {
	folder, err := s.folders.FindByID(ctx, folderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "folder not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load folder")
	}
	if !access.CanReadFolder(claims, folder) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "no access to this folder")
	}

	docs, err := s.repo.ListByFolder(ctx, folderID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list documents")
	}
	return docs, nil
}

// Popular returns the most viewed documents the identity may read. The
// unfiltered listing is cached when the cache is enabled; per-identity
// filtering always happens after retrieval so scoped documents never leak
// across departments.
func (s *DocumentService) Popular(ctx context.Context, claims *models.Claims, limit int) ([]models.PopularDocument, error) {
	var docs []models.PopularDocument
	if !s.cache.Get(ctx, popularCacheKey, &docs) {
		var err error
		docs, err = s.repo.ListPopular(ctx, limit)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list popular documents")
		}
		s.cache.Set(ctx, popularCacheKey, docs, 0)
	}

	visible := make([]models.PopularDocument, 0, len(docs))
	for _, doc := range docs {
		if access.CanRead(claims, doc.FolderVisibility, doc.FolderDepartment) {
			visible = append(visible, doc)
		}
	}
	return visible, nil
}

// Create adds a document to a folder the identity may write.
func (s *DocumentService) Create(ctx context.Context, claims *models.Claims, req models.CreateDocumentRequest) (*models.Document, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid document payload")
	}

	folder, err := s.folders.FindByID(ctx, req.FolderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrIntegrity, "folder does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load folder")
	}
	if !access.CanWriteFolder(claims, folder) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "no write access to this folder")
	}

	doc := &models.Document{
		Title:     req.Title,
		Content:   req.Content,
		FolderID:  req.FolderID,
		CreatedBy: claims.UserID,
	}

	if err := s.repo.Create(ctx, doc); err != nil {
		if errors.Is(err, appErrors.ErrIntegrity) {
			return nil, err
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create document")
	}

	s.logger.Info("document created",
		zap.String("document_id", doc.ID),
		zap.String("folder_id", doc.FolderID),
	)

	return doc, nil
}

// Update overwrites a document's title and content, recording the modifier.
func (s *DocumentService) Update(ctx context.Context, claims *models.Claims, id string, req models.UpdateDocumentRequest) (*models.Document, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid document payload")
	}

	doc, err := s.Get(ctx, claims, id)
	if err != nil {
		return nil, err
	}

	folder, err := s.folderFor(ctx, doc.FolderID)
	if err != nil {
		return nil, err
	}
	if !access.CanWriteFolder(claims, folder) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "no write access to this document")
	}

	doc.Title = req.Title
	doc.Content = req.Content
	doc.ModifiedBy = &claims.UserID

	if err := s.repo.Update(ctx, doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update document")
	}

	return doc, nil
}

// Delete removes a document from a folder the identity may write.
func (s *DocumentService) Delete(ctx context.Context, claims *models.Claims, id string) error {
	doc, err := s.Get(ctx, claims, id)
	if err != nil {
		return err
	}

	folder, err := s.folderFor(ctx, doc.FolderID)
	if err != nil {
		return err
	}
	if !access.CanWriteFolder(claims, folder) {
		return appErrors.Clone(appErrors.ErrForbidden, "no write access to this document")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete document")
	}

	s.logger.Info("document deleted", zap.String("document_id", id))
	return nil
}
