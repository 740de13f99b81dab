package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func serve(t *testing.T, mw func(http.Handler) http.Handler, token string) (*httptest.ResponseRecorder, User, bool) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/ai/skills", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()

	var (
		user   User
		called bool
	)
	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		user, _ = UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})).ServeHTTP(rec, req)
	return rec, user, called
}

func TestUserJWTMissingSecret(t *testing.T) {
	rec, _, called := serve(t, UserJWT(""), signedToken(t, "secret", "u1", "patient"))
	if rec.Code != http.StatusUnauthorized || called {
		t.Fatalf("expected status %d without calling handler, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestUserJWTMissingHeader(t *testing.T) {
	rec, _, _ := serve(t, UserJWT("secret"), "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestUserJWTInvalidSignature(t *testing.T) {
	rec, _, _ := serve(t, UserJWT("secret"), signedToken(t, "wrong", "u1", "patient"))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestUserJWTRejectsMissingSubject(t *testing.T) {
	rec, _, _ := serve(t, UserJWT("secret"), signedToken(t, "secret", "", "patient"))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestUserJWTExpired(t *testing.T) {
	claims := Claims{
		Role: "patient",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	rec, _, _ := serve(t, UserJWT("secret"), signed)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestUserJWTAttachesUser(t *testing.T) {
	rec, user, called := serve(t, UserJWT("secret"), signedToken(t, "secret", "doctor-7", "doctor"))
	if !called || rec.Code != http.StatusOK {
		t.Fatalf("expected handler to be called, got status %d", rec.Code)
	}
	if user.ID != "doctor-7" || user.Role != "doctor" {
		t.Fatalf("unexpected user %+v", user)
	}
}

func TestAdminJWTRequiresAdminRole(t *testing.T) {
	rec, _, called := serve(t, AdminJWT("secret"), signedToken(t, "secret", "doctor-7", "doctor"))
	if rec.Code != http.StatusForbidden || called {
		t.Fatalf("expected status %d, got %d", http.StatusForbidden, rec.Code)
	}

	rec, user, called := serve(t, AdminJWT("secret"), signedToken(t, "secret", "ops-1", RoleAdmin))
	if !called || rec.Code != http.StatusOK {
		t.Fatalf("expected admin to pass, got status %d", rec.Code)
	}
	if user.Role != RoleAdmin {
		t.Fatalf("expected admin role in context, got %q", user.Role)
	}
}

func signedToken(t *testing.T, secret, subject, role string) string {
	t.Helper()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(5 * time.Minute)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}
