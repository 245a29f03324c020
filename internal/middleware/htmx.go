package middleware

import (
	"net/http"
)

// HTMX marks requests coming from htmx so handlers/middlewares can adapt responses
func HTMX(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		is := r.Header.Get("HX-Request") == "true"
		ctx := WithHTMX(r.Context(), is)
		if is {
			// fragments differ from full pages at the same URL
			w.Header().Add("Vary", "HX-Request")
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Redirect sends the client to target, using HX-Redirect for htmx requests so
// the browser performs a full navigation.
func Redirect(w http.ResponseWriter, r *http.Request, target string) {
	if IsHTMX(r.Context()) {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
