package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/printcloud/backend/internal/infrastructure/auth"
	"github.com/printcloud/backend/internal/infrastructure/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestJWTService(accessTTL time.Duration) *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "middleware-test-secret",
		AccessTokenExpiration:  accessTTL,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "printcloud-test",
	})
}

func newProtectedRouter(jwtService *auth.JWTService) *gin.Engine {
	router := gin.New()
	router.Use(JWTAuthMiddleware(jwtService))
	router.GET("/api/v1/orders", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"tenant_id": GetJWTTenantID(c),
			"user_id":   GetJWTUserID(c),
			"username":  GetJWTUsername(c),
		})
	})
	router.GET("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.GET("/shared/invoices/tok123", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func TestJWTAuthMiddleware(t *testing.T) {
	tenantID := uuid.New()
	userID := uuid.New()

	issue := func(t *testing.T, svc *auth.JWTService) *auth.TokenPair {
		pair, err := svc.GenerateTokenPair(auth.GenerateTokenInput{
			TenantID: tenantID,
			UserID:   userID,
			Username: "operator",
		})
		assert.NoError(t, err)
		return pair
	}

	t.Run("valid bearer token passes and claims reach the handler", func(t *testing.T) {
		svc := newTestJWTService(15 * time.Minute)
		router := newProtectedRouter(svc)
		pair := issue(t, svc)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
		req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var body map[string]string
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, tenantID.String(), body["tenant_id"])
		assert.Equal(t, userID.String(), body["user_id"])
		assert.Equal(t, "operator", body["username"])
	})

	t.Run("missing header is rejected with 401", func(t *testing.T) {
		router := newProtectedRouter(newTestJWTService(15 * time.Minute))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed header is rejected", func(t *testing.T) {
		svc := newTestJWTService(15 * time.Minute)
		router := newProtectedRouter(svc)
		pair := issue(t, svc)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
		req.Header.Set("Authorization", "Token "+pair.AccessToken)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("expired token reports the expiry code", func(t *testing.T) {
		svc := newTestJWTService(-1 * time.Minute)
		router := newProtectedRouter(svc)
		pair := issue(t, svc)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
		req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		var body map[string]any
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		errInfo := body["error"].(map[string]any)
		assert.Equal(t, "ERR_TOKEN_EXPIRED", errInfo["code"])
	})

	t.Run("refresh token cannot be used as access token", func(t *testing.T) {
		svc := newTestJWTService(15 * time.Minute)
		router := newProtectedRouter(svc)
		pair := issue(t, svc)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
		req.Header.Set("Authorization", "Bearer "+pair.RefreshToken)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("tokens signed with a different secret are rejected", func(t *testing.T) {
		router := newProtectedRouter(newTestJWTService(15 * time.Minute))
		other := auth.NewJWTService(config.JWTConfig{
			Secret:                 "a-completely-different-secret",
			AccessTokenExpiration:  15 * time.Minute,
			RefreshTokenExpiration: 24 * time.Hour,
			Issuer:                 "printcloud-test",
		})
		pair, err := other.GenerateTokenPair(auth.GenerateTokenInput{
			TenantID: tenantID,
			UserID:   userID,
			Username: "operator",
		})
		assert.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
		req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("health endpoint skips authentication", func(t *testing.T) {
		router := newProtectedRouter(newTestJWTService(15 * time.Minute))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("public share links skip authentication by prefix", func(t *testing.T) {
		router := newProtectedRouter(newTestJWTService(15 * time.Minute))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/shared/invoices/tok123", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})
}
