package identity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/reelx/internal/shared"
	testutils "github.com/desertthunder/reelx/internal/testing"
)

func newToolkitServer(t *testing.T) *httptest.Server {
	t.Helper()

	accounts := map[string]string{"taken@example.com": "secret123"}

	mux := http.NewServeMux()
	writeError := func(w http.ResponseWriter, msg string) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": 400, "message": msg},
		})
	}
	decode := func(r *http.Request) passwordRequest {
		var body passwordRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		if !body.ReturnSecureToken {
			t.Error("expected returnSecureToken to be set")
		}
		return body
	}
	respond := func(w http.ResponseWriter, email string) {
		json.NewEncoder(w).Encode(tokenResponse{
			LocalID:      "uid-" + email,
			Email:        email,
			IDToken:      "id-token",
			RefreshToken: "refresh-token",
			ExpiresIn:    "3600",
		})
	}

	mux.HandleFunc("POST /accounts:signUp", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "test-key" {
			writeError(w, "API key not valid. Please pass a valid API key.")
			return
		}
		body := decode(r)
		if _, ok := accounts[body.Email]; ok {
			writeError(w, CodeEmailExists)
			return
		}
		if len(body.Password) < 6 {
			writeError(w, "WEAK_PASSWORD : Password should be at least 6 characters")
			return
		}
		accounts[body.Email] = body.Password
		respond(w, body.Email)
	})
	mux.HandleFunc("POST /accounts:signInWithPassword", func(w http.ResponseWriter, r *http.Request) {
		body := decode(r)
		if pw, ok := accounts[body.Email]; !ok || pw != body.Password {
			writeError(w, CodeInvalidCredentials)
			return
		}
		respond(w, body.Email)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestToolkitProvider(t *testing.T) {
	ctx := context.Background()

	newProvider := func(t *testing.T, key string) *ToolkitProvider {
		server := newToolkitServer(t)
		p, err := NewToolkitProvider(ToolkitOpts{APIKey: key, BaseURL: server.URL, HTTPClient: server.Client()})
		if err != nil {
			t.Fatalf("NewToolkitProvider() error = %v", err)
		}
		return p
	}

	t.Run("Missing API key", func(t *testing.T) {
		if _, err := NewToolkitProvider(ToolkitOpts{}); !errors.Is(err, shared.ErrMissingCredentials) {
			t.Fatalf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("CreateAccount", func(t *testing.T) {
		p := newProvider(t, "test-key")
		rec := &recorder{}
		defer p.Subscribe(rec.listen)()

		identity, err := p.CreateAccount(ctx, "new@example.com", "secret123")
		if err != nil {
			t.Fatalf("CreateAccount() error = %v", err)
		}
		if identity.ID != "uid-new@example.com" || identity.Email != "new@example.com" {
			t.Errorf("unexpected identity %+v", identity)
		}
		if p.IDToken() != "id-token" {
			t.Errorf("IDToken() = %q", p.IDToken())
		}

		seen := rec.all()
		if len(seen) != 2 || seen[1] == nil || seen[1].ID != identity.ID {
			t.Errorf("expected notification for the new identity, got %v", seen)
		}
	})

	t.Run("CreateAccount errors", func(t *testing.T) {
		p := newProvider(t, "test-key")

		tc := []struct {
			name     string
			email    string
			password string
			code     string
			sentinel error
		}{
			{name: "email exists", email: "taken@example.com", password: "secret123", code: CodeEmailExists, sentinel: shared.ErrEmailExists},
			{name: "weak password", email: "new@example.com", password: "123", code: CodeWeakPassword, sentinel: shared.ErrInvalidInput},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				_, err := p.CreateAccount(ctx, tt.email, tt.password)
				var perr *Error
				if !errors.As(err, &perr) {
					t.Fatalf("expected *Error, got %v", err)
				}
				if perr.Code != tt.code {
					t.Errorf("code = %s, want %s", perr.Code, tt.code)
				}
				if !errors.Is(err, tt.sentinel) {
					t.Errorf("expected %v to wrap %v", err, tt.sentinel)
				}
			})
		}
	})

	t.Run("Invalid API key surfaces the raw message", func(t *testing.T) {
		p := newProvider(t, "wrong-key")
		_, err := p.CreateAccount(ctx, "new@example.com", "secret123")
		if Message(err) != "API key not valid. Please pass a valid API key." {
			t.Errorf("Message() = %q", Message(err))
		}
	})

	t.Run("VerifyCredentials", func(t *testing.T) {
		p := newProvider(t, "test-key")

		identity, err := p.VerifyCredentials(ctx, "taken@example.com", "secret123")
		if err != nil {
			t.Fatalf("VerifyCredentials() error = %v", err)
		}
		if identity.Email != "taken@example.com" {
			t.Errorf("unexpected identity %+v", identity)
		}

		_, err = p.VerifyCredentials(ctx, "taken@example.com", "nope")
		if !errors.Is(err, shared.ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("EndSession", func(t *testing.T) {
		p := newProvider(t, "test-key")
		if _, err := p.VerifyCredentials(ctx, "taken@example.com", "secret123"); err != nil {
			t.Fatalf("VerifyCredentials() error = %v", err)
		}

		rec := &recorder{}
		defer p.Subscribe(rec.listen)()

		if err := p.EndSession(ctx); err != nil {
			t.Fatalf("EndSession() error = %v", err)
		}
		if p.IDToken() != "" {
			t.Error("expected token to be cleared")
		}
		seen := rec.all()
		if len(seen) != 2 || seen[1] != nil {
			t.Errorf("expected anonymous notification, got %v", seen)
		}
	})

	t.Run("Transport failure", func(t *testing.T) {
		client := testutils.ClientReturning(nil, errors.New("connection refused"))
		p, err := NewToolkitProvider(ToolkitOpts{APIKey: "k", BaseURL: "http://identity.invalid", HTTPClient: client})
		if err != nil {
			t.Fatalf("NewToolkitProvider() error = %v", err)
		}

		_, err = p.VerifyCredentials(ctx, "a@example.com", "secret123")
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})

	t.Run("Non-JSON error body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "upstream down", http.StatusBadGateway)
		}))
		defer server.Close()

		p, _ := NewToolkitProvider(ToolkitOpts{APIKey: "k", BaseURL: server.URL})
		_, err := p.VerifyCredentials(ctx, "a@example.com", "secret123")
		if Message(err) != "identity service error: status 502" {
			t.Errorf("Message() = %q", Message(err))
		}
	})
}

func TestParseToolkitError(t *testing.T) {
	tc := []struct {
		name string
		body string
		code string
		msg  string
	}{
		{name: "plain code", body: `{"error":{"code":400,"message":"EMAIL_NOT_FOUND"}}`, code: CodeEmailNotFound, msg: messages[CodeEmailNotFound]},
		{name: "code with detail", body: `{"error":{"code":400,"message":"TOO_MANY_ATTEMPTS_TRY_LATER : slow down"}}`, code: CodeTooManyAttempts, msg: messages[CodeTooManyAttempts]},
		{name: "unknown with detail", body: `{"error":{"code":400,"message":"ODD_CODE : Something odd"}}`, code: "ODD_CODE", msg: "Something odd"},
		{name: "garbage", body: `not json`, code: CodeInternal, msg: "identity service error: status 400"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			err := parseToolkitError(http.StatusBadRequest, []byte(tt.body))
			if err.Code != tt.code || err.Message != tt.msg {
				t.Errorf("parseToolkitError() = {%s %q}, want {%s %q}", err.Code, err.Message, tt.code, tt.msg)
			}
		})
	}
}
