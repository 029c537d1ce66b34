package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/recipekeeper/backend/internal/service"
	"github.com/pageza/recipekeeper/backend/internal/types"
)

// AuthHandler serves registration, login and token refresh.
type AuthHandler struct {
	authService service.IAuthService
	log         *zap.Logger
}

func NewAuthHandler(authService service.IAuthService, log *zap.Logger) *AuthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthHandler{authService: authService, log: log.With(zap.String("component", "auth_handler"))}
}

// RegisterRoutes mounts /auth. limit guards register and login and may be nil.
func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup, limit gin.HandlerFunc) {
	auth := router.Group("/auth")
	{
		auth.POST("/register", limited(limit, h.Register)...)
		auth.POST("/login", limited(limit, h.Login)...)
		auth.POST("/refresh", h.Refresh)
	}
}

// limited prepends limit to handler when it is set.
func limited(limit, handler gin.HandlerFunc) []gin.HandlerFunc {
	if limit == nil {
		return []gin.HandlerFunc{handler}
	}
	return []gin.HandlerFunc{limit, handler}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, h.log, err)
		return
	}

	user, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	tokens, err := h.authService.GenerateTokenPair(user)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, types.AuthResponse{User: user, TokenResponse: tokens})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req types.LoginRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, h.log, err)
		return
	}

	user, tokens, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, types.AuthResponse{User: user, TokenResponse: tokens})
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req types.RefreshRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, h.log, err)
		return
	}

	tokens, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, tokens)
}
