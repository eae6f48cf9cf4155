package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/simpleconf/simpleconf-api/internal/models"
	"github.com/simpleconf/simpleconf-api/internal/service"
	appErrors "github.com/simpleconf/simpleconf-api/pkg/errors"
	"github.com/simpleconf/simpleconf-api/pkg/response"
)

// AuthHandler wires HTTP endpoints to the auth service.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// Register creates a new account. Responds 201 with the user, 400 on
// malformed input, 409 on a duplicate email.
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid registration payload"))
		return
	}

	user, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, gin.H{"user": user})
}

// Login authenticates by email and password, returning a bearer token and
// the user.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res)
}

// Me returns the current user, re-fetched from the store so a deleted
// account fails even with a live token.
func (h *AuthHandler) Me(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	user, err := h.service.Me(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"user": user})
}

// Departments lists the valid department values for the registration form.
func (h *AuthHandler) Departments(c *gin.Context) {
	response.JSON(c, http.StatusOK, gin.H{"departments": models.Departments()})
}
