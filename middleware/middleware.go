package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"campusexplorer/globals"
	"campusexplorer/models"
	"campusexplorer/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

// JWT claims
type Claims struct {
	UserID string      `json:"userId"`
	Email  string      `json:"email"`
	Name   string      `json:"name,omitempty"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

func (c *Claims) Capability() models.Capability {
	return models.Capability{UserID: c.UserID, Email: c.Email, Name: c.Name, Role: c.Role}
}

// tokenFrom reads the bearer token. Browsers cannot set headers on a
// WebSocket handshake, so upgrades may pass it as ?token= instead.
func tokenFrom(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" && websocket.IsWebSocketUpgrade(r) {
		if t := r.URL.Query().Get("token"); t != "" {
			return t, nil
		}
	}
	if header == "" {
		return "", fmt.Errorf("missing token")
	}
	if len(header) < 8 || !strings.EqualFold(header[:7], "Bearer ") {
		return "", fmt.Errorf("invalid token format")
	}
	return header[7:], nil
}

// ValidateJWT parses a raw token signed with globals.JwtSecret.
func ValidateJWT(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return globals.JwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("unauthorized: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("unauthorized: invalid token")
	}
	return claims, nil
}

// IssueToken signs a capability token. Used by tooling and tests; the service
// itself never logs anyone in.
func IssueToken(c models.Capability, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: c.UserID,
		Email:  c.Email,
		Name:   c.Name,
		Role:   c.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   c.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(globals.JwtSecret)
}

// WithCapability stores c on ctx.
func WithCapability(ctx context.Context, c models.Capability) context.Context {
	return context.WithValue(ctx, globals.CapabilityKey, c)
}

// CapabilityFrom returns the caller's capability; anonymous when none was set.
func CapabilityFrom(ctx context.Context) models.Capability {
	c, _ := ctx.Value(globals.CapabilityKey).(models.Capability)
	return c
}

func Authenticate(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		raw, err := tokenFrom(r)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, err.Error())
			return
		}
		claims, err := ValidateJWT(raw)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		next(w, r.WithContext(WithCapability(r.Context(), claims.Capability())), ps)
	}
}

func OptionalAuth(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if raw, err := tokenFrom(r); err == nil {
			if claims, err := ValidateJWT(raw); err == nil {
				r = r.WithContext(WithCapability(r.Context(), claims.Capability()))
			}
		}
		// Proceed regardless of token state
		next(w, r, ps)
	}
}

// RequireAdmin authenticates and rejects non-administrators before the
// wrapped handler resolves anything, so a 403 never reveals whether the
// target exists.
func RequireAdmin(next httprouter.Handle) httprouter.Handle {
	return Authenticate(func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if !CapabilityFrom(r.Context()).IsAdmin() {
			utils.RespondWithError(w, http.StatusForbidden, "Administrator access required")
			return
		}
		next(w, r, ps)
	})
}

// Chain composes middlewares; the first one listed runs outermost.
func Chain(mws ...func(httprouter.Handle) httprouter.Handle) func(httprouter.Handle) httprouter.Handle {
	return func(final httprouter.Handle) httprouter.Handle {
		for i := len(mws) - 1; i >= 0; i-- {
			final = mws[i](final)
		}
		return final
	}
}
