package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"brightpath/internal/apperrors"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const ParentContextKey ContextKey = "parent"

// ParentIdentity is the verified parent extracted from a request token
type ParentIdentity struct {
	UserID string
	Email  string
}

// Middleware holds dependencies for middleware functions
type Middleware struct {
	jwtSecret []byte
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(jwtSecret string) *Middleware {
	return &Middleware{jwtSecret: []byte(jwtSecret)}
}

type parentClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// RequireParent verifies the request's parent token and puts the
// identity on the context. Tokens are accepted from the Authorization
// bearer header or the session_token cookie.
func (m *Middleware) RequireParent(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenString := bearerToken(r)
		if tokenString == "" {
			if cookie, err := r.Cookie("session_token"); err == nil {
				tokenString = cookie.Value
			}
		}
		if tokenString == "" {
			respondError(w, apperrors.Unauthorized("Missing authentication token"))
			return
		}

		claims := &parentClaims{}
		parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256"}))
		_, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			return m.jwtSecret, nil
		})
		if err != nil || claims.UserID == "" {
			respondError(w, apperrors.Unauthorized("Invalid authentication token"))
			return
		}

		identity := &ParentIdentity{UserID: claims.UserID, Email: claims.Email}
		ctx := context.WithValue(r.Context(), ParentContextKey, identity)
		next(w, r.WithContext(ctx))
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return after
	}
	return ""
}

// GetParentFromContext retrieves the parent identity from the request context
func GetParentFromContext(ctx context.Context) *ParentIdentity {
	parent, ok := ctx.Value(ParentContextKey).(*ParentIdentity)
	if !ok {
		return nil
	}
	return parent
}

// Logging middleware logs HTTP requests
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}
