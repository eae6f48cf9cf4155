package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/simpleconf/simpleconf-api/internal/models"
	appErrors "github.com/simpleconf/simpleconf-api/pkg/errors"
)

type mockFolderRepo struct {
	folders map[string]*models.Folder
	docs    map[string]int
}

func newMockFolderRepo() *mockFolderRepo {
	return &mockFolderRepo{folders: make(map[string]*models.Folder), docs: make(map[string]int)}
}

func (m *mockFolderRepo) FindByID(ctx context.Context, id string) (*models.Folder, error) {
	if f, ok := m.folders[id]; ok {
		copy := *f
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockFolderRepo) ListChildren(ctx context.Context, parentID *string) ([]models.Folder, error) {
	var out []models.Folder
	for _, f := range m.folders {
		if parentID == nil && f.ParentID == nil {
			out = append(out, *f)
		} else if parentID != nil && f.ParentID != nil && *f.ParentID == *parentID {
			out = append(out, *f)
		}
	}
	return out, nil
}

// Create mirrors the storage layer's sibling-name uniqueness.
func (m *mockFolderRepo) Create(ctx context.Context, folder *models.Folder) error {
	for _, f := range m.folders {
		sameParent := (f.ParentID == nil && folder.ParentID == nil) ||
			(f.ParentID != nil && folder.ParentID != nil && *f.ParentID == *folder.ParentID)
		if sameParent && f.Name == folder.Name {
			return appErrors.Clone(appErrors.ErrConflict, "sibling exists")
		}
	}
	if folder.ID == "" {
		folder.ID = uuid.NewString()
	}
	copy := *folder
	m.folders[folder.ID] = &copy
	return nil
}

func (m *mockFolderRepo) DocumentCount(ctx context.Context, folderID string) (int, error) {
	return m.docs[folderID], nil
}

func (m *mockFolderRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.folders[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.folders, id)
	delete(m.docs, id)
	return nil
}

func (m *mockFolderRepo) add(folder models.Folder) *models.Folder {
	if folder.ID == "" {
		folder.ID = uuid.NewString()
	}
	m.folders[folder.ID] = &folder
	return &folder
}

func backendClaims() *models.Claims {
	return &models.Claims{UserID: "u1", Email: "u1@example.com", Department: models.DepartmentBackend}
}

func TestFolderListChildrenFiltersUnreadable(t *testing.T) {
	repo := newMockFolderRepo()
	hr := models.DepartmentHR
	repo.add(models.Folder{Name: "Engineering", Visibility: models.VisibilityPublic})
	repo.add(models.Folder{Name: "HR", Visibility: models.VisibilityDepartment, Department: &hr})

	svc := NewFolderService(repo, NewValidator(), zap.NewNop())
	folders, err := svc.ListChildren(context.Background(), backendClaims(), nil)
	require.NoError(t, err)
	require.Len(t, folders, 1)
	assert.Equal(t, "Engineering", folders[0].Name)
}

func TestFolderGetForbiddenAcrossDepartments(t *testing.T) {
	repo := newMockFolderRepo()
	hr := models.DepartmentHR
	folder := repo.add(models.Folder{Name: "HR", Visibility: models.VisibilityDepartment, Department: &hr})

	svc := NewFolderService(repo, NewValidator(), zap.NewNop())
	_, err := svc.Get(context.Background(), backendClaims(), folder.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
}

func TestFolderCreateRequiresDepartmentForScopedVisibility(t *testing.T) {
	svc := NewFolderService(newMockFolderRepo(), NewValidator(), zap.NewNop())

	_, err := svc.Create(context.Background(), backendClaims(), models.CreateFolderRequest{
		Name:       "Team",
		Visibility: models.VisibilityDepartment,
	})
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Contains(t, appErr.Details, "department")
}

func TestFolderCreateDropsDepartmentTagOnPublic(t *testing.T) {
	repo := newMockFolderRepo()
	svc := NewFolderService(repo, NewValidator(), zap.NewNop())

	sales := models.DepartmentSales
	folder, err := svc.Create(context.Background(), backendClaims(), models.CreateFolderRequest{
		Name:       "Shared",
		Visibility: models.VisibilityPublic,
		Department: &sales,
	})
	require.NoError(t, err)
	assert.Nil(t, folder.Department)
	assert.Equal(t, "u1", folder.CreatedBy)
}

func TestFolderCreateSiblingNameConflict(t *testing.T) {
	repo := newMockFolderRepo()
	svc := NewFolderService(repo, NewValidator(), zap.NewNop())
	hr := models.DepartmentHR

	_, err := svc.Create(context.Background(), &models.Claims{UserID: "u2", Department: models.DepartmentHR}, models.CreateFolderRequest{
		Name:       "HR",
		Visibility: models.VisibilityDepartment,
		Department: &hr,
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), &models.Claims{UserID: "u2", Department: models.DepartmentHR}, models.CreateFolderRequest{
		Name:       "HR",
		Visibility: models.VisibilityDepartment,
		Department: &hr,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrConflict))
}

func TestFolderCreateUnderParentRequiresWriteAccess(t *testing.T) {
	repo := newMockFolderRepo()
	hr := models.DepartmentHR
	parent := repo.add(models.Folder{Name: "HR", Visibility: models.VisibilityDepartment, Department: &hr})

	svc := NewFolderService(repo, NewValidator(), zap.NewNop())
	_, err := svc.Create(context.Background(), backendClaims(), models.CreateFolderRequest{
		Name:       "Payroll",
		ParentID:   &parent.ID,
		Visibility: models.VisibilityPublic,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
}

func TestFolderCreateUnknownParent(t *testing.T) {
	repo := newMockFolderRepo()
	svc := NewFolderService(repo, NewValidator(), zap.NewNop())

	missing := "2b1f8e4e-5f3f-4a88-a2fc-37a9d3b8c001"
	_, err := svc.Create(context.Background(), backendClaims(), models.CreateFolderRequest{
		Name:       "Orphan",
		ParentID:   &missing,
		Visibility: models.VisibilityPublic,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestFolderDeleteRequiresWriteAccess(t *testing.T) {
	repo := newMockFolderRepo()
	hr := models.DepartmentHR
	folder := repo.add(models.Folder{Name: "HR", Visibility: models.VisibilityDepartment, Department: &hr})

	svc := NewFolderService(repo, NewValidator(), zap.NewNop())
	err := svc.Delete(context.Background(), backendClaims(), folder.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	err = svc.Delete(context.Background(), &models.Claims{UserID: "u2", Department: models.DepartmentHR}, folder.ID)
	require.NoError(t, err)
	assert.Empty(t, repo.folders)
}

func TestFolderDocumentCount(t *testing.T) {
	repo := newMockFolderRepo()
	folder := repo.add(models.Folder{Name: "Docs", Visibility: models.VisibilityPublic})
	repo.docs[folder.ID] = 3

	svc := NewFolderService(repo, NewValidator(), zap.NewNop())
	count, err := svc.DocumentCount(context.Background(), backendClaims(), folder.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}
