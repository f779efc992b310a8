package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Saurabhrajput1234/BookMySeat/internal/auth"
	"github.com/Saurabhrajput1234/BookMySeat/internal/models"
)

func protectedHandler(t *testing.T, wantUserID int64, wantRole models.Role) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, wantUserID, auth.UserID(r.Context()))
		assert.Equal(t, wantRole, auth.UserRole(r.Context()))
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddleware_ValidToken(t *testing.T) {
	issuer := auth.NewTokenIssuer(testJWTConfig())
	raw, err := issuer.Generate(&models.User{ID: 42, Email: "ada@example.com", Role: models.RoleUser})
	require.NoError(t, err)

	handler := auth.Middleware(issuer)(protectedHandler(t, 42, models.RoleUser))

	req := httptest.NewRequest(http.MethodGet, "/api/bookings/my", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMiddleware_MissingAndMalformedHeaders(t *testing.T) {
	issuer := auth.NewTokenIssuer(testJWTConfig())
	handler := auth.Middleware(issuer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run without a valid token")
	}))

	cases := map[string]string{
		"missing":      "",
		"no scheme":    "just-a-token",
		"wrong scheme": "Basic dXNlcjpwYXNz",
		"garbage":      "Bearer not.a.token",
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRequireRole_BlocksNonAdmins(t *testing.T) {
	issuer := auth.NewTokenIssuer(testJWTConfig())

	adminOnly := auth.Middleware(issuer)(auth.RequireRole(models.RoleAdmin)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
	))

	userToken, err := issuer.Generate(&models.User{ID: 1, Email: "u@example.com", Role: models.RoleUser})
	require.NoError(t, err)
	adminToken, err := issuer.Generate(&models.User{ID: 2, Email: "a@example.com", Role: models.RoleAdmin})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	rec := httptest.NewRecorder()
	adminOnly.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec = httptest.NewRecorder()
	adminOnly.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
