package handler

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"sort"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simpleconf/simpleconf-api/internal/middleware"
	"github.com/simpleconf/simpleconf-api/internal/models"
	"github.com/simpleconf/simpleconf-api/internal/service"
	appErrors "github.com/simpleconf/simpleconf-api/pkg/errors"
)

// contentState is shared in-memory storage backing the folder and document
// repository mocks, mirroring the constraints the real schema enforces.
type contentState struct {
	folders map[string]*models.Folder
	docs    map[string]*models.Document
}

func newContentState() *contentState {
	return &contentState{folders: make(map[string]*models.Folder), docs: make(map[string]*models.Document)}
}

type folderRepoMock struct {
	state *contentState
}

func (m folderRepoMock) FindByID(ctx context.Context, id string) (*models.Folder, error) {
	if f, ok := m.state.folders[id]; ok {
		copy := *f
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (m folderRepoMock) ListChildren(ctx context.Context, parentID *string) ([]models.Folder, error) {
	var out []models.Folder
	for _, f := range m.state.folders {
		switch {
		case parentID == nil && f.ParentID == nil:
			out = append(out, *f)
		case parentID != nil && f.ParentID != nil && *f.ParentID == *parentID:
			out = append(out, *f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m folderRepoMock) Create(ctx context.Context, folder *models.Folder) error {
	if folder.ParentID != nil {
		if _, ok := m.state.folders[*folder.ParentID]; !ok {
			return appErrors.Clone(appErrors.ErrIntegrity, "parent folder does not exist")
		}
	}
	for _, existing := range m.state.folders {
		sameParent := (existing.ParentID == nil && folder.ParentID == nil) ||
			(existing.ParentID != nil && folder.ParentID != nil && *existing.ParentID == *folder.ParentID)
		if sameParent && existing.Name == folder.Name {
			return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("a sibling folder named %q already exists", folder.Name))
		}
	}
	if folder.ID == "" {
		folder.ID = uuid.NewString()
	}
	copy := *folder
	m.state.folders[folder.ID] = &copy
	return nil
}

func (m folderRepoMock) DocumentCount(ctx context.Context, folderID string) (int, error) {
	count := 0
	for _, d := range m.state.docs {
		if d.FolderID == folderID {
			count++
		}
	}
	return count, nil
}

func (m folderRepoMock) Delete(ctx context.Context, id string) error {
	if _, ok := m.state.folders[id]; !ok {
		return sql.ErrNoRows
	}
	for _, f := range m.state.folders {
		if f.ParentID != nil && *f.ParentID == id {
			return appErrors.Clone(appErrors.ErrIntegrity, "folder still has child folders")
		}
	}
	// Documents cascade with the folder.
	for docID, d := range m.state.docs {
		if d.FolderID == id {
			delete(m.state.docs, docID)
		}
	}
	delete(m.state.folders, id)
	return nil
}

type documentRepoMock struct {
	state *contentState
}

func (m documentRepoMock) FindByID(ctx context.Context, id string) (*models.Document, error) {
	if d, ok := m.state.docs[id]; ok {
		copy := *d
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (m documentRepoMock) ListByFolder(ctx context.Context, folderID string) ([]models.Document, error) {
	out := []models.Document{}
	for _, d := range m.state.docs {
		if d.FolderID == folderID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (m documentRepoMock) ListPopular(ctx context.Context, limit int) ([]models.PopularDocument, error) {
	var out []models.PopularDocument
	for _, d := range m.state.docs {
		folder := m.state.folders[d.FolderID]
		out = append(out, models.PopularDocument{
			Document:         *d,
			FolderName:       folder.Name,
			FolderVisibility: folder.Visibility,
			FolderDepartment: folder.Department,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ViewCount > out[j].ViewCount })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m documentRepoMock) Create(ctx context.Context, doc *models.Document) error {
	if _, ok := m.state.folders[doc.FolderID]; !ok {
		return appErrors.Clone(appErrors.ErrIntegrity, "folder does not exist")
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	copy := *doc
	m.state.docs[doc.ID] = &copy
	return nil
}

func (m documentRepoMock) Update(ctx context.Context, doc *models.Document) error {
	if _, ok := m.state.docs[doc.ID]; !ok {
		return sql.ErrNoRows
	}
	copy := *doc
	m.state.docs[doc.ID] = &copy
	return nil
}

func (m documentRepoMock) Delete(ctx context.Context, id string) error {
	if _, ok := m.state.docs[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.state.docs, id)
	return nil
}

func (m documentRepoMock) IncrementViewCount(ctx context.Context, id string) error {
	if d, ok := m.state.docs[id]; ok {
		d.ViewCount++
	}
	return nil
}

// newContentRouter wires the full authenticated API surface over in-memory
// stores, the way the real binary assembles it.
func newContentRouter(t *testing.T) (*gin.Engine, *contentState, *service.AuthService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	state := newContentState()
	validate := service.NewValidator()

	authSvc := service.NewAuthService(newMemoryUserRepo(), validate, nil, service.AuthConfig{TokenSecret: "test_secret"})
	folderSvc := service.NewFolderService(folderRepoMock{state: state}, validate, nil)
	documentSvc := service.NewDocumentService(documentRepoMock{state: state}, folderRepoMock{state: state}, nil, nil, validate, nil)

	folderHandler := NewFolderHandler(folderSvc)
	documentHandler := NewDocumentHandler(documentSvc)

	router := gin.New()
	authed := router.Group("/", middleware.JWT(authSvc))
	{
		authed.GET("/folders", folderHandler.List)
		authed.POST("/folders", folderHandler.Create)
		authed.GET("/folders/:id", folderHandler.Get)
		authed.DELETE("/folders/:id", folderHandler.Delete)
		authed.GET("/folders/:id/documents", documentHandler.ListByFolder)
		authed.GET("/folders/:id/document-count", folderHandler.DocumentCount)
		authed.POST("/documents", documentHandler.Create)
		authed.GET("/documents/popular", documentHandler.Popular)
		authed.GET("/documents/:id", documentHandler.Get)
		authed.PUT("/documents/:id", documentHandler.Update)
		authed.DELETE("/documents/:id", documentHandler.Delete)
	}
	return router, state, authSvc
}

func tokenFor(t *testing.T, authSvc *service.AuthService, email string, department models.Department) string {
	t.Helper()
	_, err := authSvc.Register(context.Background(), models.RegisterRequest{
		Email:       email,
		Password:    "correct horse",
		DisplayName: "Test User",
		Department:  department,
	})
	require.NoError(t, err)
	res, err := authSvc.Login(context.Background(), models.LoginRequest{Email: email, Password: "correct horse"})
	require.NoError(t, err)
	return res.Token
}

func (s *contentState) addFolder(folder models.Folder) *models.Folder {
	if folder.ID == "" {
		folder.ID = uuid.NewString()
	}
	s.folders[folder.ID] = &folder
	return &folder
}

func (s *contentState) addDocument(doc models.Document) *models.Document {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	s.docs[doc.ID] = &doc
	return &doc
}

func TestFolderRoutesRequireAuth(t *testing.T) {
	router, _, _ := newContentRouter(t)

	w := doJSON(router, http.MethodGet, "/folders", nil, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestFolderListFiltersByDepartment(t *testing.T) {
	router, state, authSvc := newContentRouter(t)
	hr := models.DepartmentHR
	state.addFolder(models.Folder{Name: "Handbook", Visibility: models.VisibilityPublic})
	state.addFolder(models.Folder{Name: "Payroll", Visibility: models.VisibilityDepartment, Department: &hr})

	token := tokenFor(t, authSvc, "dev@example.com", models.DepartmentBackend)
	w := doJSON(router, http.MethodGet, "/folders", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Handbook")
	assert.NotContains(t, w.Body.String(), "Payroll")
}

func TestFolderGetForbiddenOutsideDepartment(t *testing.T) {
	router, state, authSvc := newContentRouter(t)
	hr := models.DepartmentHR
	folder := state.addFolder(models.Folder{Name: "Payroll", Visibility: models.VisibilityDepartment, Department: &hr})

	token := tokenFor(t, authSvc, "dev@example.com", models.DepartmentBackend)
	w := doJSON(router, http.MethodGet, "/folders/"+folder.ID, nil, token)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestFolderCreateSiblingConflict(t *testing.T) {
	router, _, authSvc := newContentRouter(t)
	token := tokenFor(t, authSvc, "hr@example.com", models.DepartmentHR)

	payload := models.CreateFolderRequest{Name: "HR", Visibility: models.VisibilityPublic}
	w := doJSON(router, http.MethodPost, "/folders", payload, token)
	require.Equal(t, http.StatusCreated, w.Code)

	// A second root with the same name conflicts even though roots have no
	// parent row to collide on.
	w = doJSON(router, http.MethodPost, "/folders", payload, token)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "HR")
}

func TestFolderCreateDepartmentRequiresTag(t *testing.T) {
	router, _, authSvc := newContentRouter(t)
	token := tokenFor(t, authSvc, "hr@example.com", models.DepartmentHR)

	w := doJSON(router, http.MethodPost, "/folders", models.CreateFolderRequest{
		Name:       "Payroll",
		Visibility: models.VisibilityDepartment,
	}, token)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "department")
}

func TestFolderDeleteCascadesDocuments(t *testing.T) {
	router, state, authSvc := newContentRouter(t)
	folder := state.addFolder(models.Folder{Name: "Scratch", Visibility: models.VisibilityPublic})
	doc := state.addDocument(models.Document{Title: "Note", Content: "text", FolderID: folder.ID, CreatedBy: "u1"})

	token := tokenFor(t, authSvc, "dev@example.com", models.DepartmentBackend)
	w := doJSON(router, http.MethodDelete, "/folders/"+folder.ID, nil, token)
	require.Equal(t, http.StatusNoContent, w.Code)

	assert.NotContains(t, state.folders, folder.ID)
	assert.NotContains(t, state.docs, doc.ID)

	w = doJSON(router, http.MethodDelete, "/folders/"+folder.ID, nil, token)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestFolderDeleteWithChildFoldersFails(t *testing.T) {
	router, state, authSvc := newContentRouter(t)
	parent := state.addFolder(models.Folder{Name: "Parent", Visibility: models.VisibilityPublic})
	state.addFolder(models.Folder{Name: "Child", ParentID: &parent.ID, Visibility: models.VisibilityPublic})

	token := tokenFor(t, authSvc, "dev@example.com", models.DepartmentBackend)
	w := doJSON(router, http.MethodDelete, "/folders/"+parent.ID, nil, token)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "INTEGRITY_ERROR")
}

func TestFolderDocumentCount(t *testing.T) {
	router, state, authSvc := newContentRouter(t)
	folder := state.addFolder(models.Folder{Name: "Docs", Visibility: models.VisibilityPublic})
	state.addDocument(models.Document{Title: "One", Content: "a", FolderID: folder.ID, CreatedBy: "u1"})
	state.addDocument(models.Document{Title: "Two", Content: "b", FolderID: folder.ID, CreatedBy: "u1"})

	token := tokenFor(t, authSvc, "dev@example.com", models.DepartmentBackend)
	w := doJSON(router, http.MethodGet, "/folders/"+folder.ID+"/document-count", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":2`)
}
