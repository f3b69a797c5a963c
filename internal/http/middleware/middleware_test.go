package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/osteobridge-backend/internal/observability"
	"github.com/yungbote/osteobridge-backend/internal/platform/apierr"
	"github.com/yungbote/osteobridge-backend/internal/platform/ctxutil"
	"github.com/yungbote/osteobridge-backend/internal/platform/logger"
	"github.com/yungbote/osteobridge-backend/internal/services"
)

type stubAuth struct {
	services.AuthService
	valid string
}

func (s stubAuth) SetContextFromToken(ctx context.Context, token string) (context.Context, error) {
	if token != s.valid {
		return ctx, apierr.New(http.StatusUnauthorized, "unauthorized", errors.New("Token has been revoked."))
	}
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{TokenString: token, UserID: 42}), nil
}

func authedEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	am := NewAuthMiddleware(logger.NewNop(), stubAuth{valid: "good-token"})
	r := gin.New()
	r.GET("/me", am.RequireAuth(), func(c *gin.Context) {
		rd := ctxutil.GetRequestData(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"user_id": rd.UserID})
	})
	return r
}

func TestRequireAuthAcceptsRawAndBearerTokens(t *testing.T) {
	r := authedEngine()
	for _, header := range []string{"good-token", "Bearer good-token", "bearer good-token"} {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, header)
		assert.JSONEq(t, `{"user_id":42}`, rec.Body.String())
	}
}

func TestRequireAuthRejects(t *testing.T) {
	r := authedEngine()

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing")

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer stale")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"success":false,"msg":"Token has been revoked."}`, rec.Body.String())
}

func TestAttachTraceContextEchoesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	var seen *ctxutil.TraceData
	r.GET("/x", func(c *gin.Context) {
		seen = ctxutil.GetTraceData(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-Id", "req-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.NotNil(t, seen)
	assert.Equal(t, "req-123", seen.RequestID)
	assert.NotEmpty(t, seen.TraceID)
	assert.Equal(t, "req-123", rec.Header().Get("X-Request-Id"))
	assert.Equal(t, seen.TraceID, rec.Header().Get("X-Trace-Id"))
}

func TestLimitBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(LimitBody(8))
	r.POST("/x", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/x", strings.NewReader("short")))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/x", strings.NewReader("far too long for the cap")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestMetricsAndRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := observability.NewMetrics()
	r := gin.New()
	r.Use(RequestLogger(logger.NewNop()), Metrics(m))
	r.GET("/api/organisms/:id/reviews", func(c *gin.Context) {
		time.Sleep(time.Millisecond)
		c.Status(http.StatusOK)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/organisms/5/reviews", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	assert.Contains(t, body, `route="/api/organisms/:id/reviews"`)
	assert.Contains(t, body, `route="unmatched"`)
}
