package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"campusexplorer/globals"
	"campusexplorer/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoCapability(seen *models.Capability) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		*seen = CapabilityFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}
}

func request(h httprouter.Handle, token string) int {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h(rec, req, nil)
	return rec.Code
}

func TestTokenRoundTrip(t *testing.T) {
	globals.JwtSecret = []byte("middleware-secret")
	want := models.Capability{UserID: "u1", Email: "cy@iastate.edu", Name: "Cy", Role: models.RoleAdmin}

	tok, err := IssueToken(want, time.Hour)
	require.NoError(t, err)
	claims, err := ValidateJWT(tok)
	require.NoError(t, err)
	assert.Equal(t, want, claims.Capability())

	expired, err := IssueToken(want, -time.Minute)
	require.NoError(t, err)
	_, err = ValidateJWT(expired)
	assert.Error(t, err)
}

func TestValidateRejectsOtherAlgorithms(t *testing.T) {
	globals.JwtSecret = []byte("middleware-secret")
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Email: "x@iastate.edu", Role: models.RoleAdmin}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ValidateJWT(tok)
	assert.Error(t, err)
}

func TestAuthenticateAndRequireAdmin(t *testing.T) {
	globals.JwtSecret = []byte("middleware-secret")
	userTok, _ := IssueToken(models.Capability{UserID: "u1", Email: "cy@iastate.edu", Role: models.RoleUser}, time.Hour)
	adminTok, _ := IssueToken(models.Capability{UserID: "a1", Email: "admin@iastate.edu", Role: models.RoleAdmin}, time.Hour)

	var seen models.Capability
	assert.Equal(t, http.StatusUnauthorized, request(Authenticate(echoCapability(&seen)), ""))
	assert.Equal(t, http.StatusUnauthorized, request(Authenticate(echoCapability(&seen)), "garbage"))
	assert.Equal(t, http.StatusNoContent, request(Authenticate(echoCapability(&seen)), userTok))
	assert.Equal(t, "cy@iastate.edu", seen.Email)

	assert.Equal(t, http.StatusForbidden, request(RequireAdmin(echoCapability(&seen)), userTok))
	assert.Equal(t, http.StatusNoContent, request(RequireAdmin(echoCapability(&seen)), adminTok))
	assert.True(t, seen.IsAdmin())
}

func TestOptionalAuthFallsBackToAnonymous(t *testing.T) {
	globals.JwtSecret = []byte("middleware-secret")
	seen := models.Capability{Email: "stale"}
	assert.Equal(t, http.StatusNoContent, request(OptionalAuth(echoCapability(&seen)), "garbage"))
	assert.False(t, seen.Authenticated())
}

func TestWebSocketTokenFromQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/ws/editor/library?token=abc", nil)
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	tok, err := tokenFrom(req)
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	plain := httptest.NewRequest(http.MethodGet, "/api/tours?token=abc", nil)
	_, err = tokenFrom(plain)
	assert.Error(t, err)
}

func TestChainOrder(t *testing.T) {
	var order []string
	mw := func(name string) func(httprouter.Handle) httprouter.Handle {
		return func(next httprouter.Handle) httprouter.Handle {
			return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
				order = append(order, name)
				next(w, r, ps)
			}
		}
	}
	h := Chain(mw("outer"), mw("inner"))(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		order = append(order, "handler")
	})
	h(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), nil)
	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
}
