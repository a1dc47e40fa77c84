package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"resumeBuilder/internal/api/middleware"
	"resumeBuilder/internal/enhance"
	"resumeBuilder/internal/persistence"
	"resumeBuilder/internal/resume"
	"resumeBuilder/internal/session"
)

func Error(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}

func AbortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
}

func Unauthorized(c *gin.Context)                { Error(c, http.StatusUnauthorized, "unauthorized") }
func BadRequest(c *gin.Context, msg string)      { Error(c, http.StatusBadRequest, msg) }
func NotFound(c *gin.Context, msg string)        { Error(c, http.StatusNotFound, msg) }
func Conflict(c *gin.Context, msg string)        { Error(c, http.StatusConflict, msg) }
func TooManyRequests(c *gin.Context, msg string) { Error(c, http.StatusTooManyRequests, msg) }
func BadGateway(c *gin.Context, msg string)      { Error(c, http.StatusBadGateway, msg) }
func Internal(c *gin.Context, msg string)        { Error(c, http.StatusInternalServerError, msg) }

// respondError 把领域错误映射为 HTTP 状态码。未识别的错误记日志并返回 500。
func respondError(c *gin.Context, err error) {
	var (
		validationErr *resume.ValidationError
		decodeErr     *resume.DecodeError
	)
	switch {
	case errors.Is(err, resume.ErrIndexOutOfRange):
		BadRequest(c, err.Error())
	case errors.As(err, &validationErr):
		BadRequest(c, validationErr.Error())
	case errors.Is(err, resume.ErrUnknownField):
		BadRequest(c, err.Error())
	case errors.Is(err, session.ErrNotFound):
		NotFound(c, "editing session not found")
	case errors.Is(err, session.ErrTooManySessions):
		Error(c, http.StatusServiceUnavailable, "too many editing sessions")
	case errors.Is(err, persistence.ErrNotFound):
		NotFound(c, "resume not found")
	case errors.Is(err, persistence.ErrAuthRequired):
		Error(c, http.StatusUnauthorized, persistence.ErrAuthRequired.Error())
	case errors.As(err, &decodeErr):
		Error(c, http.StatusUnprocessableEntity, "saved resume could not be read: "+decodeErr.Reason)
	case errors.Is(err, enhance.ErrStaleResult):
		Conflict(c, "text changed while enhancing, result discarded")
	case errors.Is(err, enhance.ErrEnhanceFailed):
		BadGateway(c, "failed to enhance content")
	case errors.Is(err, persistence.ErrRemote):
		middleware.LoggerFromContext(c).Error("remote store failed", slog.Any("error", err))
		BadGateway(c, "storage unavailable")
	default:
		middleware.LoggerFromContext(c).Error("request failed", slog.Any("error", err))
		Internal(c, "internal error")
	}
}

func userIDFromContext(c *gin.Context) (uint, bool) {
	value, exists := c.Get("userID")
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint(v), true
	case uint64:
		return uint(v), true
	case int64:
		if v < 0 {
			return 0, false
		}
		return uint(v), true
	default:
		return 0, false
	}
}

func parseUintParam(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		return 0, false
	}
	return uint(v), true
}

func parseIndexParam(c *gin.Context, name string) (int, bool) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil {
		return 0, false
	}
	return v, true
}
