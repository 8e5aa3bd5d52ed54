package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turfline/server/api/rest"
	"github.com/turfline/server/audit"
	"github.com/turfline/server/config"
	mw "github.com/turfline/server/middleware"
	"github.com/turfline/server/model"
	"github.com/turfline/server/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testSecurity() config.SecurityConfig {
	return config.SecurityConfig{
		JWTSecret: "test-secret",
		JWTTTLH:   72 * time.Hour,
	}
}

func newAuthRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	c := testutil.SetupTestCache(t)
	sec := testSecurity()
	auditSvc := audit.New(db, zap.NewNop())
	t.Cleanup(func() { auditSvc.Stop(context.Background()) })

	h := rest.NewAuthHandler(db, c, sec, auditSvc)
	r := gin.New()
	r.POST("/api/auth/login", h.Login)
	r.POST("/api/auth/logout", mw.Auth(sec, c), h.Logout)
	r.POST("/api/auth/refresh", mw.Auth(sec, c), h.Refresh)
	return r, db
}

func doJSON(r *gin.Engine, method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLoginAutoRegister(t *testing.T) {
	r, _ := newAuthRouter(t)

	w := doJSON(r, http.MethodPost, "/api/auth/login", map[string]string{
		"username": "alice",
		"password": "pass1234",
		"alias":    "Slick Alice",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["token"])
	assert.NotZero(t, resp["account_id"])
	assert.Equal(t, "Slick Alice", resp["alias"])
}

func TestLoginAliasDefaultsToUsername(t *testing.T) {
	r, _ := newAuthRouter(t)

	w := doJSON(r, http.MethodPost, "/api/auth/login", map[string]string{
		"username": "bob",
		"password": "pass1234",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "bob", resp["alias"])
}

func TestLoginWrongPassword(t *testing.T) {
	r, _ := newAuthRouter(t)

	doJSON(r, http.MethodPost, "/api/auth/login", map[string]string{"username": "carol", "password": "correct1"})
	w := doJSON(r, http.MethodPost, "/api/auth/login", map[string]string{"username": "carol", "password": "wrong123"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginBannedAccount(t *testing.T) {
	r, db := newAuthRouter(t)

	w := doJSON(r, http.MethodPost, "/api/auth/login", map[string]string{"username": "banned", "password": "pass1234"})
	require.Equal(t, http.StatusOK, w.Code)

	db.Model(&model.Account{}).Where("username = ?", "banned").Update("status", 0)

	w2 := doJSON(r, http.MethodPost, "/api/auth/login", map[string]string{"username": "banned", "password": "pass1234"})
	assert.Equal(t, http.StatusForbidden, w2.Code)
}

func TestLogoutInvalidatesSession(t *testing.T) {
	r, _ := newAuthRouter(t)

	w := doJSON(r, http.MethodPost, "/api/auth/login", map[string]string{"username": "dave", "password": "pass1234"})
	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	token := resp["token"].(string)

	w2 := doJSON(r, http.MethodPost, "/api/auth/logout", nil, "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusOK, w2.Code)

	w3 := doJSON(r, http.MethodPost, "/api/auth/logout", nil, "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w3.Code)
}

func TestRefreshRotatesToken(t *testing.T) {
	r, _ := newAuthRouter(t)

	w := doJSON(r, http.MethodPost, "/api/auth/login", map[string]string{"username": "erin", "password": "pass1234"})
	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	token := resp["token"].(string)

	w2 := doJSON(r, http.MethodPost, "/api/auth/refresh", nil, "Authorization", "Bearer "+token)
	require.Equal(t, http.StatusOK, w2.Code)
	var resp2 map[string]interface{}
	require.NoError(t, json.Unmarshal(w2.Body.Bytes(), &resp2))
	assert.NotEmpty(t, resp2["token"])

	// Old token's session was invalidated by the rotation.
	w3 := doJSON(r, http.MethodPost, "/api/auth/refresh", nil, "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w3.Code)
}
