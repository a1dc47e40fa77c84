package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	"resumeBuilder/internal/auth"
)

type fakeValidator struct{}

func (fakeValidator) ValidateAccessToken(token string) (*auth.TokenClaims, error) {
	if token != "good" && token != "revoked" {
		return nil, errors.New("bad token")
	}
	return &auth.TokenClaims{
		UserID:           7,
		TokenType:        auth.TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{ID: token},
	}, nil
}

type fakeRevocations struct{ err error }

func (f fakeRevocations) IsRevoked(_ context.Context, claims *auth.TokenClaims) (bool, error) {
	return claims.ID == "revoked", f.err
}

func newAuthRouter(revocations RevocationChecker) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CorrelationIDMiddleware())
	r.GET("/me", AuthMiddleware(fakeValidator{}, revocations), func(c *gin.Context) {
		claims, _ := ClaimsFromContext(c)
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetUint("userID"), "jti": claims.ID})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	cases := []struct {
		name   string
		header string
		rev    RevocationChecker
		want   int
	}{
		{"missing header", "", nil, http.StatusUnauthorized},
		{"wrong scheme", "Basic good", nil, http.StatusUnauthorized},
		{"invalid token", "Bearer nope", nil, http.StatusUnauthorized},
		{"valid token", "Bearer good", fakeRevocations{}, http.StatusOK},
		{"revoked token", "Bearer revoked", fakeRevocations{}, http.StatusUnauthorized},
		{"blacklist down", "Bearer good", fakeRevocations{err: errors.New("redis down")}, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			newAuthRouter(tc.rev).ServeHTTP(w, req)

			assert.Equal(t, tc.want, w.Code, w.Body.String())
			if tc.want == http.StatusOK {
				assert.JSONEq(t, `{"user_id":7,"jti":"good"}`, w.Body.String())
			}
		})
	}
}

func TestCorrelationIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CorrelationIDMiddleware())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, GetCorrelationID(c)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Correlation-ID", "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Body.String())
	assert.Equal(t, "abc-123", w.Header().Get("X-Correlation-ID"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, w.Body.String(), 36)
}

func TestCorrelationIDMiddleware_RejectsUnsafeHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CorrelationIDMiddleware())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, GetCorrelationID(c)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(CorrelationIDHeader, "bad id\nwith newline")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.NotContains(t, w.Body.String(), "bad id")
	assert.Len(t, w.Body.String(), 36)
}

func TestLoggerFromContext_FallsBackToDefault(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Same(t, slog.Default(), LoggerFromContext(c))
}
