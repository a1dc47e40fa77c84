package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"resumeBuilder/internal/api/middleware"
	"resumeBuilder/internal/auth"
)

// TokenRevoker 注销访问令牌。
type TokenRevoker interface {
	Revoke(ctx context.Context, claims *auth.TokenClaims) error
}

// AuthHandler 只负责登出；注册与登录由外部身份服务完成。
type AuthHandler struct {
	revoker TokenRevoker
}

func NewAuthHandler(revoker TokenRevoker) *AuthHandler {
	return &AuthHandler{revoker: revoker}
}

// Logout 把当前访问令牌加入黑名单，直到它自然过期。
func (h *AuthHandler) Logout(c *gin.Context) {
	logger := middleware.LoggerFromContext(c)

	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}
	if claims.ID == "" {
		logger.Info("logout token missing jti")
		Unauthorized(c)
		return
	}

	if err := h.revoker.Revoke(c.Request.Context(), claims); err != nil {
		logger.Error("logout revoke token failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	logger.Info("user signed out", slog.Uint64("user_id", uint64(claims.UserID)))
	c.Status(http.StatusOK)
}
