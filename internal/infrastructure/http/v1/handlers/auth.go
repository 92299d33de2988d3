package handlers

import (
	"github.com/gin-gonic/gin"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/domain/auth"
	"shopledger/internal/infrastructure/http/v1/dto"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	*BaseHandler
	service *auth.Service
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(base *BaseHandler, service *auth.Service) *AuthHandler {
	return &AuthHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.RegisterRequest
	if !h.BindJSON(c, &req) {
		return
	}

	account, err := h.service.Register(ctx, req.ToAuthRequest())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, account)
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	token, account, err := h.service.Login(ctx, req.ToCredentials())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.LoginResponse{Token: token, Account: account})
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	accountID := h.GetUserID(c)
	if id.IsNil(accountID) {
		h.Error(c, apperror.NewUnauthorized("not authenticated"))
		return
	}

	account, err := h.service.Me(c.Request.Context(), accountID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, account)
}
