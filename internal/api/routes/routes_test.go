package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/arsya371/apologyhub/internal/config"
	"github.com/arsya371/apologyhub/internal/edge"
	"github.com/arsya371/apologyhub/internal/guard"
	"github.com/arsya371/apologyhub/internal/models"
	"github.com/arsya371/apologyhub/internal/ratelimit"
	"github.com/arsya371/apologyhub/internal/services"
)

const browserUA = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	cfg := config.Config{
		Environment: "test",
		JWTSecret:   "routes-test-secret",
		Security: config.SecurityConfig{
			ShortTermThreshold:  1000,
			MediumTermThreshold: 5000,
			LongTermThreshold:   10000,
			HardCeiling:         10000,
			SpamThreshold:       1000,
			SubmissionLimit:     100,
			SubmissionWindow:    time.Hour,
			OverLimitBlockAfter: 50,
		},
	}

	edgeClient := edge.NewClient(cfg.Edge)
	secLog := services.NewSecurityLogService(db)
	g := &guard.Guard{
		Ledger:    ratelimit.NewLedger(),
		Limiter:   ratelimit.NewLimiter(),
		Blocklist: services.NewBlocklistService(db, edgeClient, secLog),
		Allowlist: services.NewAllowlistService(db),
		SecLog:    secLog,
		Notifier:  services.NewNotifierService(nil),
		Edge:      edgeClient,
		Security:  cfg.Security,
	}

	router := gin.New()
	require.NoError(t, Register(router, db, cfg, g))
	return router, db
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.RemoteAddr = "203.0.113.9:40000"
	req.Header.Set("User-Agent", browserUA)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/v1/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestApologyLifecycleOverHTTP(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/apologies", gin.H{
		"content": "I'm sorry for breaking the staging database.",
		"to_who":  "the team",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created models.Apology
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created.UUID)

	w = doJSON(t, router, http.MethodGet, "/api/v1/apologies/"+created.UUID, nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/apologies", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), created.UUID)

	w = doJSON(t, router, http.MethodGet, "/api/v1/apologies/"+created.UUID+"x", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBotDeniedOnPublicFeed(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/apologies", nil)
	req.RemoteAddr = "203.0.113.10:40000"
	req.Header.Set("User-Agent", "curl/8.0.1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
}

func TestAdminRequiresToken(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/v1/admin/security/blocked-ips", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminSecurityFlow(t *testing.T) {
	router, db := newTestRouter(t)

	user := &models.User{Email: "admin@example.com", Enabled: true, Role: "admin"}
	require.NoError(t, user.SetPassword("route-test-pass"))
	require.NoError(t, db.Create(user).Error)

	w := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", gin.H{
		"email":    "admin@example.com",
		"password": "route-test-pass",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var loginResp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &loginResp))
	auth := map[string]string{"Authorization": "Bearer " + loginResp.Token}

	w = doJSON(t, router, http.MethodPost, "/api/v1/admin/security/blocked-ips", gin.H{
		"ip_address": "198.51.100.7",
		"reason":     "abuse",
	}, auth)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// The blocked client is now denied on the public surface with the reason.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/apologies", nil)
	req.RemoteAddr = "198.51.100.7:40000"
	req.Header.Set("User-Agent", browserUA)
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, req)
	assert.Equal(t, http.StatusForbidden, w2.Code)
	assert.Contains(t, w2.Body.String(), "abuse")

	w = doJSON(t, router, http.MethodDelete, "/api/v1/admin/security/blocked-ips/198.51.100.7", nil, auth)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/admin/security/stats", nil, auth)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/admin/security/edge", nil, auth)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"configured":false}`, w.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/metrics", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "apologyhub_admission_checked_total")
}
