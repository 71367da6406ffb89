package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaumahan/harvest-market-api/internal/model"
)

const testSecret = "test-secret"

func signToken(t *testing.T, role string, staff, approved bool) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":      uuid.New().String(),
		"role":     role,
		"staff":    staff,
		"approved": approved,
		"exp":      time.Now().Add(time.Hour).Unix(),
		"iat":      time.Now().Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func newRouter(guards ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handlers := append([]gin.HandlerFunc{AuthMiddleware(testSecret)}, guards...)
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"account_id": GetAccountID(c), "role": GetRole(c)})
	})
	router.GET("/probe", handlers...)
	return router
}

func probe(router *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	w := probe(newRouter(), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_BadToken(t *testing.T) {
	w := probe(newRouter(), "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_WrongSecret(t *testing.T) {
	claims := jwt.MapClaims{"sub": uuid.New().String(), "exp": time.Now().Add(time.Hour).Unix()}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-secret"))
	require.NoError(t, err)

	w := probe(newRouter(), token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	w := probe(newRouter(), signToken(t, string(model.RoleBuyer), false, true))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireBuyer(t *testing.T) {
	router := newRouter(RequireBuyer())

	w := probe(router, signToken(t, string(model.RoleBuyer), false, true))
	assert.Equal(t, http.StatusOK, w.Code)

	w = probe(router, signToken(t, string(model.RoleSeller), false, true))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireApprovedSeller(t *testing.T) {
	router := newRouter(RequireApprovedSeller())

	w := probe(router, signToken(t, string(model.RoleSeller), false, true))
	assert.Equal(t, http.StatusOK, w.Code)

	// Pending sellers are refused with a distinct message.
	w = probe(router, signToken(t, string(model.RoleSeller), false, false))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "pending")

	w = probe(router, signToken(t, string(model.RoleBuyer), false, true))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "seller account required")
}

func TestRequireStaff(t *testing.T) {
	router := newRouter(RequireStaff())

	w := probe(router, signToken(t, string(model.RoleBuyer), true, true))
	assert.Equal(t, http.StatusOK, w.Code)

	w = probe(router, signToken(t, string(model.RoleBuyer), false, true))
	assert.Equal(t, http.StatusForbidden, w.Code)
}
