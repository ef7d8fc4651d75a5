package handlers

import "net/http"

// Pages serves the minimal browser-facing shell. The SPA build (when
// deployed) replaces these from the static prefix; they exist so the
// redirect targets of the gatekeeper resolve in a bare deployment.
type Pages struct{}

func (p Pages) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /login", p.login)
	mux.HandleFunc("GET /dashboard", p.dashboard)
}

func (Pages) login(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(`<!doctype html><title>Sign in</title>
<form method="post" action="/api/v1/auth/login">
  <input name="email" type="email" placeholder="email" required>
  <input name="password" type="password" placeholder="password" required>
  <button>Sign in</button>
</form>`))
}

func (Pages) dashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(`<!doctype html><title>Dashboard</title><h1>Spendwise</h1>`))
}
