package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"lifecontext/lifecontext/config"
)

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

func runAuth(t *testing.T, authHeader string) (*httptest.ResponseRecorder, string) {
	t.Helper()
	var gotUserID string
	handler := AuthMiddleware(config.Config{JWTSecret: "test-secret"})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUserID, _ = r.Context().Value(UserIDKey).(string)
		}))
	req := httptest.NewRequest("GET", "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr, gotUserID
}

func TestAuthMiddlewareValidToken(t *testing.T) {
	tok := signToken(t, "test-secret", jwt.MapClaims{
		"user_id": "dashboard",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	rr, userID := runAuth(t, "Bearer "+tok)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if userID != "dashboard" {
		t.Errorf("user_id in context = %q", userID)
	}
}

func TestAuthMiddlewareRejects(t *testing.T) {
	expired := signToken(t, "test-secret", jwt.MapClaims{
		"user_id": "dashboard",
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})
	wrongKey := signToken(t, "other-secret", jwt.MapClaims{
		"user_id": "dashboard",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	noUser := signToken(t, "test-secret", jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"malformed header", "NotBearer abc"},
		{"garbage token", "Bearer not.a.jwt"},
		{"expired token", "Bearer " + expired},
		{"wrong signing key", "Bearer " + wrongKey},
		{"missing user claim", "Bearer " + noUser},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rr, _ := runAuth(t, c.header)
			if rr.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rr.Code)
			}
		})
	}
}
