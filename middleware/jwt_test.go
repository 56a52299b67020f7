package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"moodjournal/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withSecret 临时替换签名密钥，测试结束后还原
func withSecret(t *testing.T, secret string) {
	t.Helper()
	prev := jwtSecret
	InitJWT(&config.Config{JWT: config.JWTConfig{Secret: secret}})
	t.Cleanup(func() { jwtSecret = prev })
}

func TestGenerateToken_Claims(t *testing.T) {
	withSecret(t, "journal-signing-key")

	before := time.Now().Add(-time.Second)
	token, err := GenerateToken(42, "lin@example.com", 2*time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "lin@example.com", claims.Email)
	assert.Equal(t, "42", claims.Subject)
	require.NotNil(t, claims.ExpiresAt)
	require.NotNil(t, claims.IssuedAt)
	assert.WithinDuration(t, before.Add(2*time.Hour), claims.ExpiresAt.Time, 5*time.Second)
	assert.False(t, claims.IssuedAt.Time.Before(before.Truncate(time.Second)))
}

func TestGenerateToken_WithoutSecret(t *testing.T) {
	withSecret(t, "")

	_, err := GenerateToken(1, "a@example.com", time.Hour)
	assert.Error(t, err)
}

func TestParseToken_Rejects(t *testing.T) {
	withSecret(t, "journal-signing-key")

	expired, err := GenerateToken(7, "old@example.com", -time.Minute)
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		UserID:           7,
		Email:            "none@example.com",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "7", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	anonymous, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Email:            "ghost@example.com",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte("journal-signing-key"))
	require.NoError(t, err)

	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID:           7,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte("someone-elses-key"))
	require.NoError(t, err)

	cases := map[string]string{
		"empty":         "",
		"garbage":       "not.a.valid.jwt",
		"expired":       expired,
		"alg none":      unsigned,
		"missing user":  anonymous,
		"other signing": foreign,
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			claims, err := ParseToken(token)
			assert.Error(t, err)
			assert.Nil(t, claims)
		})
	}
}

func TestJWTAuth(t *testing.T) {
	withSecret(t, "journal-signing-key")
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(JWTAuth())
	router.GET("/me", func(c *gin.Context) {
		c.String(http.StatusOK, "%d", GetCurrentUserID(c))
	})

	valid, err := GenerateToken(42, "lin@example.com", time.Hour)
	require.NoError(t, err)
	expired, err := GenerateToken(42, "lin@example.com", -time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name     string
		header   string
		wantCode int
		wantBody string
	}{
		{name: "no header", header: "", wantCode: http.StatusUnauthorized, wantBody: "未登录"},
		{name: "basic scheme", header: "Basic bGluOnB3", wantCode: http.StatusUnauthorized, wantBody: "认证格式错误"},
		{name: "bearer only", header: "Bearer ", wantCode: http.StatusUnauthorized, wantBody: "认证格式错误"},
		{name: "lowercase scheme", header: "bearer " + valid, wantCode: http.StatusUnauthorized, wantBody: "认证格式错误"},
		{name: "expired", header: "Bearer " + expired, wantCode: http.StatusUnauthorized, wantBody: "token 无效或已过期"},
		{name: "valid", header: "Bearer " + valid, wantCode: http.StatusOK, wantBody: "42"},
		{name: "valid with padding", header: "Bearer   " + valid, wantCode: http.StatusOK, wantBody: "42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.wantCode, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestGetCurrentUserID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Zero(t, GetCurrentUserID(c))

	c.Set(contextUserIDKey, "42")
	assert.Zero(t, GetCurrentUserID(c))

	c.Set(contextUserIDKey, uint(42))
	assert.Equal(t, uint(42), GetCurrentUserID(c))
}
