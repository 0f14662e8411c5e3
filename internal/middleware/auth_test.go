package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ocrsvc/internal/config"
	"ocrsvc/internal/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var authCfg = &config.AuthConfig{Secret: "test-secret", Issuer: "ocrsvc", Audience: "ocr"}

func protectedRouter(cfg *config.AuthConfig) *gin.Engine {
	r := gin.New()
	r.Use(middleware.BearerAuth(cfg))
	r.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"subject": c.GetString(middleware.ContextKeySubject)})
	})
	return r
}

func request(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/test", http.NoBody)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestBearerAuth_ValidToken(t *testing.T) {
	token, err := middleware.SignToken(authCfg, "client-1", time.Minute)
	require.NoError(t, err)

	w := request(protectedRouter(authCfg), "Bearer "+token)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "client-1")
}

func TestBearerAuth_MissingHeader(t *testing.T) {
	w := request(protectedRouter(authCfg), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBearerAuth_WrongScheme(t *testing.T) {
	w := request(protectedRouter(authCfg), "Basic dXNlcjpwYXNz")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBearerAuth_Expired(t *testing.T) {
	token, err := middleware.SignToken(authCfg, "client-1", -time.Minute)
	require.NoError(t, err)

	w := request(protectedRouter(authCfg), "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBearerAuth_WrongSecret(t *testing.T) {
	other := *authCfg
	other.Secret = "other-secret"
	token, err := middleware.SignToken(&other, "client-1", time.Minute)
	require.NoError(t, err)

	w := request(protectedRouter(authCfg), "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBearerAuth_WrongAudience(t *testing.T) {
	other := *authCfg
	other.Audience = "billing"
	token, err := middleware.SignToken(&other, "client-1", time.Minute)
	require.NoError(t, err)

	w := request(protectedRouter(authCfg), "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBearerAuth_RejectsNoneAlgorithm(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Issuer:    "ocrsvc",
		Audience:  jwt.ClaimStrings{"ocr"},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	w := request(protectedRouter(authCfg), "Bearer "+signed)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBearerAuth_DisabledPassesThrough(t *testing.T) {
	w := request(protectedRouter(&config.AuthConfig{}), "")
	assert.Equal(t, http.StatusOK, w.Code)
}
