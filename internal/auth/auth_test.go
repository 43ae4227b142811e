package auth

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

func TestIssueAndParseToken(t *testing.T) {
	logger := zerolog.New(&bytes.Buffer{})
	svc := NewService("test-secret", false, logger)

	token, err := svc.IssueToken("1001", "5001")
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	claims, err := svc.ParseToken(token)
	if err != nil {
		t.Fatalf("failed to parse token: %v", err)
	}
	if claims.AgentID != "1001" {
		t.Errorf("expected agent ID 1001, got %s", claims.AgentID)
	}
	if claims.Extension != "5001" {
		t.Errorf("expected extension 5001, got %s", claims.Extension)
	}
	if claims.Subject != "1001" {
		t.Errorf("expected subject 1001, got %s", claims.Subject)
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	logger := zerolog.New(&bytes.Buffer{})
	issuer := NewService("secret-a", false, logger)
	verifier := NewService("secret-b", false, logger)

	token, err := issuer.IssueToken("1001", "5001")
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	if _, err := verifier.ParseToken(token); err == nil {
		t.Error("expected error parsing token with wrong secret")
	}
}

func TestParseTokenGarbage(t *testing.T) {
	logger := zerolog.New(&bytes.Buffer{})
	svc := NewService("test-secret", false, logger)

	if _, err := svc.ParseToken("not-a-token"); err == nil {
		t.Error("expected error parsing garbage token")
	}
}

func TestMiddlewareRejectsMissingToken(t *testing.T) {
	logger := zerolog.New(&bytes.Buffer{})
	svc := NewService("test-secret", false, logger)

	handler := svc.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called without a token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/snapshot", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rec.Code)
	}
}

func TestMiddlewareAcceptsBearerToken(t *testing.T) {
	logger := zerolog.New(&bytes.Buffer{})
	svc := NewService("test-secret", false, logger)

	token, err := svc.IssueToken("1001", "5001")
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	called := false
	handler := svc.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		claims := ClaimsFromContext(r.Context())
		if claims == nil {
			t.Fatal("expected claims in context")
		}
		if claims.AgentID != "1001" {
			t.Errorf("expected agent ID 1001, got %s", claims.AgentID)
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/snapshot", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !called {
		t.Error("expected handler to be called")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
}

func TestMiddlewareAcceptsQueryToken(t *testing.T) {
	logger := zerolog.New(&bytes.Buffer{})
	svc := NewService("test-secret", false, logger)

	token, err := svc.IssueToken("1001", "5001")
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	called := false
	handler := svc.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/ws?token="+token, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !called {
		t.Error("expected handler to be called with query token")
	}
}

func TestMiddlewareSkipAuth(t *testing.T) {
	logger := zerolog.New(&bytes.Buffer{})
	svc := NewService("test-secret", true, logger)

	called := false
	handler := svc.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if claims := ClaimsFromContext(r.Context()); claims != nil {
			t.Error("expected nil claims in skip-auth mode")
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/snapshot", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !called {
		t.Error("expected handler to be called in skip-auth mode")
	}
}
