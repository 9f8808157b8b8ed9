package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/onegreenvn/booking-followup-backend/internal/models"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(mw gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw)
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"operator_id": c.GetString("operator_id")})
	})
	return r
}

func signToken(t *testing.T, secret string, expires time.Time) string {
	t.Helper()
	claims := models.OperatorClaims{
		OperatorID: "op-1",
		Username:   "ops",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func doRequest(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBearerTokenMiddleware(t *testing.T) {
	r := newEngine(NewBearerTokenMiddleware("secret").BearerTokenAuthMiddleware())

	w := doRequest(r, "Bearer "+signToken(t, "secret", time.Now().Add(time.Hour)))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"operator_id":"op-1"`)

	assert.Equal(t, http.StatusUnauthorized, doRequest(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(r, "Bearer "+signToken(t, "other", time.Now().Add(time.Hour))).Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(r, "Bearer "+signToken(t, "secret", time.Now().Add(-time.Hour))).Code)
}

func TestBearerTokenMiddlewareUnconfigured(t *testing.T) {
	r := newEngine(NewBearerTokenMiddleware("").BearerTokenAuthMiddleware())
	assert.Equal(t, http.StatusServiceUnavailable, doRequest(r, "Bearer x").Code)
}

func TestAPIKeyMiddleware(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("booking-store-key"), bcrypt.MinCost)
	require.NoError(t, err)
	r := newEngine(NewAPIKeyMiddleware(string(hash)).APIKeyAuthMiddleware())

	assert.Equal(t, http.StatusOK, doRequest(r, "ApiKey booking-store-key").Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(r, "ApiKey wrong").Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(r, "Bearer booking-store-key").Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(r, "").Code)
}

func TestLoggerRecordsFailedRequestsWithRouteIDs(t *testing.T) {
	hook := logtest.NewGlobal()
	defer hook.Reset()

	r := gin.New()
	r.Use(Logger())
	r.GET("/api/v1/health", func(c *gin.Context) { c.Status(http.StatusServiceUnavailable) })
	r.POST("/api/v1/workflow-logs/:logId/retry", func(c *gin.Context) {
		c.Set("operator_username", "ops")
		c.JSON(http.StatusConflict, gin.H{"error": "conflict"})
	})
	r.GET("/api/v1/workflows/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/api/v1/health", nil),
		httptest.NewRequest(http.MethodGet, "/api/v1/workflows/wf-1", nil),
		httptest.NewRequest(http.MethodPost, "/api/v1/workflow-logs/log-9/retry", nil),
	} {
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	require.Len(t, hook.AllEntries(), 1)
	entry := hook.LastEntry()
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "/api/v1/workflow-logs/:logId/retry", entry.Data["route"])
	assert.Equal(t, "log-9", entry.Data["log_id"])
	assert.Equal(t, "ops", entry.Data["operator"])
	assert.Equal(t, http.StatusConflict, entry.Data["status"])
}
