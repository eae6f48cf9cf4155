package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/simpleconf/simpleconf-api/internal/models"
	"github.com/simpleconf/simpleconf-api/internal/service"
	appErrors "github.com/simpleconf/simpleconf-api/pkg/errors"
	"github.com/simpleconf/simpleconf-api/pkg/response"
)

// FolderHandler exposes folder tree endpoints.
type FolderHandler struct {
	folders *service.FolderService
}

// NewFolderHandler constructs FolderHandler.
func NewFolderHandler(folders *service.FolderService) *FolderHandler {
	return &FolderHandler{folders: folders}
}

// List returns the children of the folder named by the parentId query
// parameter, or the roots when it is absent.
func (h *FolderHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var parentID *string
	if raw := c.Query("parentId"); raw != "" {
		parentID = &raw
	}

	folders, err := h.folders.ListChildren(c.Request.Context(), claims, parentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"folders": folders})
}

// Get returns a single folder.
func (h *FolderHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	folder, err := h.folders.Get(c.Request.Context(), claims, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"folder": folder})
}

// Create adds a folder.
func (h *FolderHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.CreateFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid folder payload"))
		return
	}

	folder, err := h.folders.Create(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"folder": folder})
}

// DocumentCount returns the number of documents directly inside a folder.
func (h *FolderHandler) DocumentCount(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	count, err := h.folders.DocumentCount(c.Request.Context(), claims, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"count": count})
}

// Delete removes a folder and all documents directly inside it.
func (h *FolderHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.folders.Delete(c.Request.Context(), claims, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
