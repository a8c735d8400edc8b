// package server contains the local callback server used by browser logins
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/kino/internal/shared"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Handler is an http.Handler that knows the paths it serves.
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the path patterns this handler serves
}

// CallbackServer listens on a local address until a browser login completes.
type CallbackServer struct {
	login    *LoginHandler
	srv      *http.Server
	listener net.Listener
	logger   *log.Logger
}

// NewCallbackServer binds addr (e.g. "127.0.0.1:3000"). Use port 0 for any free port.
func NewCallbackServer(addr string, logger *log.Logger) (*CallbackServer, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	login := NewLoginHandler()
	s := &CallbackServer{
		login:    login,
		listener: ln,
		logger:   logger,
	}
	s.srv = &http.Server{
		Handler:      NewRouter(logger, login),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	return s, nil
}

// Start serves in the background.
func (s *CallbackServer) Start() {
	go func() {
		if err := s.srv.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.login.Send(LoginResult{Err: fmt.Errorf("callback server stopped: %w", err)})
		}
	}()
}

// URL is the base URL of the server, e.g. "http://127.0.0.1:3000".
func (s *CallbackServer) URL() string {
	return "http://" + s.listener.Addr().String()
}

// Wait blocks until the login completes or ctx ends.
func (s *CallbackServer) Wait(ctx context.Context) (string, error) {
	select {
	case res := <-s.login.Result():
		return res.Token, res.Err
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %w", shared.ErrTimeout, ctx.Err())
	}
}

// Shutdown stops the server.
func (s *CallbackServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// YandexLoginURL is the backend endpoint that starts the Yandex flow. The
// OAuth routes live at the server root, outside the /api prefix.
func YandexLoginURL(apiBase string) (string, error) {
	u, err := url.Parse(strings.TrimRight(apiBase, "/"))
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("%w: invalid API base URL %q", shared.ErrInvalidConfig, apiBase)
	}
	u.Path = strings.TrimSuffix(u.Path, "/api") + "/auth/yandex"
	u.RawQuery = ""
	return u.String(), nil
}
