package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter() (*gin.Engine, *test.Hook) {
	gin.SetMode(gin.TestMode)
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	router := gin.New()
	router.Use(Logger(logger))
	router.Use(Recovery(logger))
	return router, hook
}

func TestRecovery_RespondsWithErrorEnvelope(t *testing.T) {
	router, _ := newTestRouter()
	router.GET("/boom", func(c *gin.Context) {
		panic("something broke")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error": {"code": "INTERNAL_SERVER_ERROR", "message": "Internal server error"}}`, w.Body.String())
}

func TestLogger_RecordsRequestFields(t *testing.T) {
	router, hook := newTestRouter()
	router.GET("/api/v1/wardrobe", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"items": []string{}})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/wardrobe?category=Top", nil))

	require.NotEmpty(t, hook.Entries)
	entry := hook.LastEntry()
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, http.StatusOK, entry.Data["status"])
	assert.Equal(t, http.MethodGet, entry.Data["method"])
	assert.Equal(t, "/api/v1/wardrobe?category=Top", entry.Data["path"])
}

func TestLogger_HealthProbesLogAtDebug(t *testing.T) {
	router, hook := newTestRouter()
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.NotEmpty(t, hook.Entries)
	assert.Equal(t, logrus.DebugLevel, hook.LastEntry().Level)
}
