package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func mintToken(t *testing.T, secret, userID string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, parentClaims{
		UserID: userID,
		Email:  "parent@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func TestRequireParent(t *testing.T) {
	mw := NewMiddleware(testSecret)

	tests := []struct {
		name       string
		setRequest func(r *http.Request)
		wantStatus int
		wantUserID string
	}{
		{
			name: "valid bearer token",
			setRequest: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+mintToken(t, testSecret, "parent-1"))
			},
			wantStatus: http.StatusOK,
			wantUserID: "parent-1",
		},
		{
			name: "valid cookie token",
			setRequest: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: "session_token", Value: mintToken(t, testSecret, "parent-2")})
			},
			wantStatus: http.StatusOK,
			wantUserID: "parent-2",
		},
		{
			name:       "missing token",
			setRequest: func(r *http.Request) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "token signed with wrong secret",
			setRequest: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+mintToken(t, "other-secret", "parent-1"))
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "token without userId claim",
			setRequest: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+mintToken(t, testSecret, ""))
			},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUserID string
			handler := mw.RequireParent(func(w http.ResponseWriter, r *http.Request) {
				if parent := GetParentFromContext(r.Context()); parent != nil {
					gotUserID = parent.UserID
				}
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/parent/children", nil)
			tt.setRequest(req)
			recorder := httptest.NewRecorder()

			handler(recorder, req)

			if recorder.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", recorder.Code, tt.wantStatus)
			}
			if tt.wantUserID != "" && gotUserID != tt.wantUserID {
				t.Errorf("userID = %q, want %q", gotUserID, tt.wantUserID)
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"bearer prefix", "Bearer abc.def.ghi", "abc.def.ghi"},
		{"no header", "", ""},
		{"wrong scheme", "Basic abc", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if got := bearerToken(req); got != tt.want {
				t.Errorf("bearerToken() = %q, want %q", got, tt.want)
			}
		})
	}
}
