package server

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/desertthunder/kino/internal/shared"
)

// LoginResult is the outcome of a browser login.
type LoginResult struct {
	Token string
	Err   error
}

// LoginHandler receives the redirect the backend issues at the end of its
// OAuth flow: /login?token=...&success=true, or /login?error=code.
//
// Only the first callback is processed.
type LoginHandler struct {
	resultChan  chan LoginResult
	once        sync.Once
	callbackHit bool
	mu          sync.Mutex
}

func NewLoginHandler() *LoginHandler {
	return &LoginHandler{resultChan: make(chan LoginResult, 1)}
}

// Routes returns the HTTP routes this handler serves.
func (h *LoginHandler) Routes() []string {
	return []string{"/login"}
}

// ServeHTTP captures the token or the error code from the query string.
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.callbackHit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.callbackHit = true
	h.mu.Unlock()

	q := r.URL.Query()
	if code := q.Get("error"); code != "" {
		h.Send(LoginResult{Err: fmt.Errorf("%w: %s", shared.ErrAuthFailed, code)})
		http.Error(w, "Authorization failed: "+code, http.StatusBadRequest)
		return
	}

	token := q.Get("token")
	if token == "" {
		h.Send(LoginResult{Err: fmt.Errorf("%w: no token in callback", shared.ErrAuthFailed)})
		http.Error(w, "Authorization failed: no token", http.StatusBadRequest)
		return
	}

	h.Send(LoginResult{Token: token})

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `
<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>kino: вход выполнен</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #141414; }
        .container { text-align: center; background: #1f1f1f; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.4); }
        h1 { color: #ff6600; margin: 0 0 1rem 0; }
        p { color: #aaa; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>✓ Вход выполнен</h1>
        <p>Окно можно закрыть и вернуться в терминал.</p>
    </div>
</body>
</html>
`)
}

// Send delivers the result (only once).
func (h *LoginHandler) Send(result LoginResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the channel that receives exactly one result and is then closed.
func (h *LoginHandler) Result() <-chan LoginResult {
	return h.resultChan
}
