package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"resumeBuilder/internal/api/middleware"
	"resumeBuilder/internal/enhance"
	"resumeBuilder/internal/session"
)

// EnhanceHandler 负责 AI 润色：会话内润色与独立的 enhance-content 端点。
type EnhanceHandler struct {
	sessions     *session.Registry
	orchestrator *enhance.Orchestrator
	enhancer     enhance.Enhancer
	redis        redisRateCounter
	limitPerHour int
	timeout      time.Duration
}

// NewEnhanceHandler 构造 EnhanceHandler。redis 为 nil 时不做限流。
func NewEnhanceHandler(
	sessions *session.Registry,
	enhancer enhance.Enhancer,
	redis redisRateCounter,
	limitPerHour int,
	timeout time.Duration,
	logger *slog.Logger,
) *EnhanceHandler {
	return &EnhanceHandler{
		sessions:     sessions,
		orchestrator: enhance.NewOrchestrator(enhancer, logger),
		enhancer:     enhancer,
		redis:        redis,
		limitPerHour: limitPerHour,
		timeout:      timeout,
	}
}

type enhanceRequest struct {
	Kind       string `json:"kind" binding:"required"`
	Index      int    `json:"index"`
	SkillIndex int    `json:"skill_index"`
}

type enhanceResponse struct {
	enhance.Outcome
	Session sessionResponse `json:"session"`
}

// allow 按用户每小时计数；redis 出错时放行。
func (h *EnhanceHandler) allow(ctx context.Context, userID uint) bool {
	if h.redis == nil || h.limitPerHour <= 0 {
		return true
	}
	key := rateKey("enhance", userID, time.Now(), hourWindow)
	count, err := incrWithTTL(ctx, h.redis, key, time.Hour)
	if err != nil {
		count = 0
	}
	return count <= int64(h.limitPerHour)
}

func (h *EnhanceHandler) callContext(parent context.Context) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, h.timeout)
}

// EnhanceSession 润色会话中的一段文本并写回。
func (h *EnhanceHandler) EnhanceSession(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	entry, err := h.sessions.Get(userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	var req enhanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, bindingMessage(err))
		return
	}

	kind, err := enhance.ParseKind(req.Kind)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	if !h.allow(c.Request.Context(), userID) {
		TooManyRequests(c, "rate limit exceeded")
		return
	}

	ctx, cancel := h.callContext(c.Request.Context())
	defer cancel()

	outcome, err := h.orchestrator.Enhance(ctx, entry.State, enhance.Target{
		Kind:       kind,
		Index:      req.Index,
		SkillIndex: req.SkillIndex,
	})
	if err != nil {
		middleware.LoggerFromContext(c).Warn("enhance failed",
			slog.String("session_id", entry.ID),
			slog.String("kind", req.Kind),
			slog.Any("error", err),
		)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, enhanceResponse{Outcome: outcome, Session: newSessionResponse(entry)})
}

// EnhanceContent 是独立的 enhance-content 端点：{content, type} -> {improved} | {error}。
func (h *EnhanceHandler) EnhanceContent(c *gin.Context) {
	var req enhance.ContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, enhance.ContentResponse{Error: bindingMessage(err)})
		return
	}

	if userID, ok := userIDFromContext(c); ok && !h.allow(c.Request.Context(), userID) {
		c.JSON(http.StatusTooManyRequests, enhance.ContentResponse{Error: "rate limit exceeded"})
		return
	}

	ctx, cancel := h.callContext(c.Request.Context())
	defer cancel()

	improved, err := h.enhancer.Enhance(ctx, req.Content, enhance.Kind(req.Type))
	if err == nil && strings.TrimSpace(improved) == "" {
		err = enhance.ErrEnhanceFailed
	}
	if err != nil {
		middleware.LoggerFromContext(c).Error("enhance content failed", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, enhance.ContentResponse{Error: "Failed to enhance content"})
		return
	}

	c.JSON(http.StatusOK, enhance.ContentResponse{Improved: improved})
}
