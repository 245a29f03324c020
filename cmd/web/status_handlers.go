package main

import (
	"io"
	"net/http"
)

// HealthzHandler reports liveness.
func (a *app) HealthzHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, "ok")
}

// ReadyzHandler reports 503 until the dataset has been loaded once.
func (a *app) ReadyzHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if !a.loader.Loaded() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, "dataset not loaded")
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, "ready")
}

// NotFoundHandler renders the shared 404 page.
func (a *app) NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	a.renderError(w, r, http.StatusNotFound, a.t(r, "error.not_found"), "")
}
