package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/kino/internal/models"
	"github.com/desertthunder/kino/internal/shared"
	tu "github.com/desertthunder/kino/internal/testing"
)

func TestNewClient(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		c := NewClient(ClientOpts{})
		if c.BaseURL() != shared.DefaultBaseURL {
			t.Errorf("expected default base URL, got %s", c.BaseURL())
		}
		if c.http != http.DefaultClient {
			t.Error("expected http.DefaultClient for anonymous sessions")
		}
		if c.limiter != nil {
			t.Error("expected no limiter when RateLimit is 0")
		}
	})

	t.Run("Trims trailing slash", func(t *testing.T) {
		c := NewClient(ClientOpts{BaseURL: "http://example.com/api/"})
		if got := c.endpoint("movies/top", nil); got != "http://example.com/api/movies/top" {
			t.Errorf("endpoint = %s", got)
		}
	})

	t.Run("Rate limit", func(t *testing.T) {
		c := NewClient(ClientOpts{RateLimit: 0.5})
		if c.limiter == nil || c.limiter.Burst() != 1 {
			t.Fatal("expected a limiter with burst 1")
		}
	})
}

func TestClientSession(t *testing.T) {
	var gotAuth []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = append(gotAuth, r.Header.Get("Authorization"))
		if r.Header.Get(RequestIDHeader) == "" {
			t.Error("expected request id header")
		}
		if r.Header.Get("Authorization") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"detail": "Not authenticated"})
			return
		}
		json.NewEncoder(w).Encode(models.User{ID: 7, Email: "neo@example.com"})
	}))
	defer server.Close()

	anon := NewClient(ClientOpts{BaseURL: server.URL})

	t.Run("Anonymous has no header", func(t *testing.T) {
		_, err := anon.CurrentUser(context.Background())
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Fatalf("expected ErrNotAuthenticated, got %v", err)
		}
		if StatusOf(err) != http.StatusUnauthorized {
			t.Errorf("expected status 401, got %d", StatusOf(err))
		}
		if gotAuth[len(gotAuth)-1] != "" {
			t.Errorf("expected no Authorization header, got %q", gotAuth[len(gotAuth)-1])
		}
	})

	t.Run("WithSession attaches bearer token", func(t *testing.T) {
		authed := anon.WithSession(shared.NewSession("tok-1"))
		user, err := authed.CurrentUser(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if user.ID != 7 {
			t.Errorf("expected user 7, got %d", user.ID)
		}
		if gotAuth[len(gotAuth)-1] != "Bearer tok-1" {
			t.Errorf("expected bearer header, got %q", gotAuth[len(gotAuth)-1])
		}
		if !authed.Session().Authenticated() {
			t.Error("expected authenticated session")
		}
	})

	t.Run("Original client is unchanged", func(t *testing.T) {
		if anon.Session().Authenticated() {
			t.Fatal("WithSession must not mutate the receiver")
		}
		if _, err := anon.CurrentUser(context.Background()); err == nil {
			t.Error("expected anonymous call to fail")
		}
	})
}

func TestAPIErrors(t *testing.T) {
	tc := []struct {
		name     string
		status   int
		body     string
		sentinel error
		message  string
	}{
		{name: "Unauthorized", status: 401, body: `{"detail":"Could not validate credentials"}`, sentinel: shared.ErrNotAuthenticated, message: "Could not validate credentials"},
		{name: "Forbidden", status: 403, body: `{"detail":"Not enough permissions"}`, sentinel: shared.ErrNotAuthenticated, message: "Not enough permissions"},
		{name: "Not Found", status: 404, body: `{"detail":"Movie not found"}`, sentinel: shared.ErrNotFound, message: "Movie not found"},
		{name: "Bad Request", status: 400, body: `{"detail":"Email already registered"}`, sentinel: shared.ErrValidation, message: "Email already registered"},
		{
			name:     "Validation array",
			status:   422,
			body:     `{"detail":[{"loc":["body","email"],"msg":"value is not a valid email address","type":"value_error"}]}`,
			sentinel: shared.ErrValidation,
			message:  "email: value is not a valid email address",
		},
		{name: "Server error without body", status: 500, body: ``, sentinel: shared.ErrAPIRequest, message: "Internal Server Error"},
		{name: "Plain message envelope", status: 503, body: `{"message":"maintenance"}`, sentinel: shared.ErrAPIRequest, message: "maintenance"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer server.Close()

			_, err := NewClient(ClientOpts{BaseURL: server.URL}).GetMovie(context.Background(), 1)
			if !errors.Is(err, tt.sentinel) {
				t.Fatalf("expected %v, got %v", tt.sentinel, err)
			}

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *APIError, got %T", err)
			}
			if apiErr.Status != tt.status {
				t.Errorf("Status = %d, want %d", apiErr.Status, tt.status)
			}
			if apiErr.Message != tt.message {
				t.Errorf("Message = %q, want %q", apiErr.Message, tt.message)
			}
			if !strings.Contains(err.Error(), "/movies/1") {
				t.Errorf("error should name the path: %v", err)
			}
		})
	}

	t.Run("Validation fields", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			io.WriteString(w, `{"detail":[{"loc":["body","rating"],"msg":"too large"},{"loc":[],"msg":"bad"}]}`)
		}))
		defer server.Close()

		_, err := NewClient(ClientOpts{BaseURL: server.URL}).GetMovie(context.Background(), 1)
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected *APIError, got %v", err)
		}
		if len(apiErr.Fields) != 2 || apiErr.Fields[0].Field != "rating" || apiErr.Fields[1].Field != "" {
			t.Errorf("unexpected fields %+v", apiErr.Fields)
		}
	})

	t.Run("Network failure", func(t *testing.T) {
		transportErr := errors.New("connection refused")
		client := &http.Client{Transport: tu.NewMockRoundTripper(nil, transportErr)}

		_, err := NewClient(ClientOpts{BaseURL: "http://kino.invalid/api", HTTPClient: client}).ListMovies(context.Background(), models.MovieQuery{})
		if !errors.Is(err, shared.ErrNetwork) {
			t.Fatalf("expected ErrNetwork, got %v", err)
		}
		if StatusOf(err) != 0 {
			t.Errorf("expected status 0, got %d", StatusOf(err))
		}
		if MessageOf(err) != NetworkErrorMessage {
			t.Errorf("expected %q, got %q", NetworkErrorMessage, MessageOf(err))
		}
		if !strings.Contains(err.Error(), "Network Error") {
			t.Errorf("unexpected error text %v", err)
		}
	})

	t.Run("Cancelled while rate limited", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := NewClient(ClientOpts{RateLimit: 1}).GetMovie(ctx, 1)
		if !errors.Is(err, context.Canceled) || !errors.Is(err, shared.ErrNetwork) {
			t.Errorf("expected canceled network error, got %v", err)
		}
	})

	t.Run("Decode failure", func(t *testing.T) {
		resp := &http.Response{StatusCode: 200, Body: io.NopCloser(strings.NewReader("{not json")), Header: http.Header{}}
		client := &http.Client{Transport: tu.NewMockRoundTripper(resp, nil)}

		_, err := NewClient(ClientOpts{HTTPClient: client}).GetMovie(context.Background(), 1)
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})

	t.Run("Helpers on plain errors", func(t *testing.T) {
		plain := errors.New("boom")
		if StatusOf(plain) != 0 || MessageOf(plain) != "boom" || MessageOf(nil) != "" {
			t.Error("unexpected helper results for non-API errors")
		}
	})
}

func TestRaw(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/json":
			if r.Method == http.MethodPost {
				body, _ := io.ReadAll(r.Body)
				if string(body) != `{"a":1}` {
					t.Errorf("unexpected body %s", body)
				}
				if r.Header.Get("Content-Type") != "application/json" {
					t.Error("expected JSON content type")
				}
			}
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, `{"status":"ok"}`)
		default:
			w.WriteHeader(http.StatusTeapot)
			io.WriteString(w, "short and stout")
		}
	}))
	defer server.Close()

	c := NewClient(ClientOpts{BaseURL: server.URL})

	t.Run("Get JSON", func(t *testing.T) {
		resp, err := c.Get(context.Background(), "/json")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !resp.IsJSON || resp.JSONData == nil {
			t.Error("expected JSON response")
		}
	})

	t.Run("Post JSON", func(t *testing.T) {
		if _, err := c.Post(context.Background(), "/json", []byte(`{"a":1}`)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("Non-2xx is not an error", func(t *testing.T) {
		resp, err := c.Get(context.Background(), "/other")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.StatusCode != http.StatusTeapot || resp.IsJSON {
			t.Errorf("unexpected response %+v", resp)
		}
	})

	t.Run("Rejects invalid JSON body", func(t *testing.T) {
		if _, err := c.Post(context.Background(), "/json", []byte(`{`)); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("Read failure", func(t *testing.T) {
		resp := &http.Response{StatusCode: 200, Body: &tu.FCloser{}, Header: http.Header{}}
		client := &http.Client{Transport: tu.NewMockRoundTripper(resp, nil)}
		if _, err := NewClient(ClientOpts{HTTPClient: client}).Get(context.Background(), "/x"); err == nil {
			t.Error("expected read error")
		}
	})
}
