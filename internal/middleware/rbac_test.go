package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/giron-dev/giron-api/internal/models"
	"github.com/giron-dev/giron-api/pkg/token"
)

func runRBAC(t *testing.T, fn gin.HandlerFunc, claims *token.Claims, usernameParam string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	if usernameParam != "" {
		c.Params = gin.Params{{Key: "username", Value: usernameParam}}
	}
	if claims != nil {
		c.Set(ContextUserKey, claims)
	}

	fn(c)
	if !c.IsAborted() {
		c.Status(http.StatusOK)
	}
	return rec
}

func TestRBACRejectsAnonymous(t *testing.T) {
	rec := runRBAC(t, RequireAdmin(), nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	rec := runRBAC(t, RequireAdmin(), &token.Claims{Username: "alice", Role: string(models.RoleUser)}, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = runRBAC(t, RequireAdmin(), &token.Claims{Username: "root", Role: string(models.RoleAdmin)}, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireSelfOrAdmin(t *testing.T) {
	rec := runRBAC(t, RequireSelfOrAdmin(), &token.Claims{Username: "alice", Role: string(models.RoleUser)}, "alice")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = runRBAC(t, RequireSelfOrAdmin(), &token.Claims{Username: "bob", Role: string(models.RoleUser)}, "alice")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = runRBAC(t, RequireSelfOrAdmin(), &token.Claims{Username: "root", Role: string(models.RoleAdmin)}, "alice")
	assert.Equal(t, http.StatusOK, rec.Code)
}
