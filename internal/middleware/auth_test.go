package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/class-routine-api/internal/models"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims models.JWTClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func claimsFor(userID string, role models.UserRole, ttl time.Duration) models.JWTClaims {
	return models.JWTClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
}

func newAuthRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	chain := append([]gin.HandlerFunc{JWT(testSecret)}, handlers...)
	chain = append(chain, func(c *gin.Context) {
		claims, _ := CurrentClaims(c)
		c.String(http.StatusOK, claims.UserID)
	})
	router.GET("/teachers/:id/preferences", chain...)
	return router
}

func doRequest(router *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestJWT(t *testing.T) {
	router := newAuthRouter()

	w := doRequest(router, "/teachers/u1/preferences", signToken(t, testSecret, claimsFor("u1", models.RoleTeacher, time.Hour)))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", w.Body.String())

	cases := map[string]string{
		"missing":       "",
		"wrong secret":  signToken(t, "other", claimsFor("u1", models.RoleTeacher, time.Hour)),
		"expired":       signToken(t, testSecret, claimsFor("u1", models.RoleTeacher, -time.Minute)),
		"no user id":    signToken(t, testSecret, claimsFor("", models.RoleAdmin, time.Hour)),
		"not a jwt":     "garbage",
		"no expiration": signToken(t, testSecret, models.JWTClaims{UserID: "u1", Role: models.RoleAdmin}),
		"unknown role":  signToken(t, testSecret, claimsFor("u1", models.UserRole("JANITOR"), time.Hour)),
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			w := doRequest(router, "/teachers/u1/preferences", token)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/teachers/u1/preferences", nil)
	req.Header.Set("Authorization", "Token abc")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestParseTokenRejectsOtherAlgorithms(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claimsFor("u1", models.RoleAdmin, time.Hour)).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = ParseToken(testSecret, token)
	assert.Error(t, err)
}

func TestRBAC(t *testing.T) {
	router := newAuthRouter(RBAC(string(models.RoleAdmin), SelfAccess))

	cases := []struct {
		name   string
		claims models.JWTClaims
		path   string
		status int
	}{
		{"admin", claimsFor("a1", models.RoleAdmin, time.Hour), "/teachers/t9/preferences", http.StatusOK},
		{"superadmin", claimsFor("s1", models.RoleSuperAdmin, time.Hour), "/teachers/t9/preferences", http.StatusOK},
		{"self", claimsFor("t9", models.RoleTeacher, time.Hour), "/teachers/t9/preferences", http.StatusOK},
		{"other teacher", claimsFor("t1", models.RoleTeacher, time.Hour), "/teachers/t9/preferences", http.StatusForbidden},
		{"student", claimsFor("st", models.RoleStudent, time.Hour), "/teachers/t9/preferences", http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doRequest(router, tc.path, signToken(t, testSecret, tc.claims))
			assert.Equal(t, tc.status, w.Code)
		})
	}
}

func TestRBACWithoutClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	RequireRoles(models.RoleAdmin)(c)
	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
