package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carshare/internal/auth"
	"carshare/internal/middleware"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *auth.Service
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *auth.Service) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// LoginRequest is the HTTP request body for logging in.
type LoginRequest struct {
	EmployeeID string `json:"employee_id" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// LoginResponse is the HTTP response for a successful login.
type LoginResponse struct {
	Token string `json:"token"`
	Name  string `json:"name"`
}

// Login handles POST /v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondJSON(c, http.StatusBadRequest, ErrorResponse{Error: "employee_id and password are required"})
		return
	}

	identity, token, err := h.authService.Login(c.Request.Context(), req.EmployeeID, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, LoginResponse{Token: token, Name: identity.Name})
}

// Logout handles POST /v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	token := c.GetString(middleware.ContextTokenKey)
	if token == "" {
		respondError(c, auth.ErrInvalidSession)
		return
	}

	if err := h.authService.Logout(c.Request.Context(), token); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
