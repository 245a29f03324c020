package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func csrfHandler() http.Handler {
	return Session(HTMX(CSRF(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))))
}

// primeSession performs a GET to obtain the session and CSRF cookies.
func primeSession(t *testing.T, h http.Handler) (session *http.Cookie, token string) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	for _, c := range rec.Result().Cookies() {
		switch c.Name {
		case sessionCookieName:
			session = c
		case csrfCookieName:
			token = c.Value
		}
	}
	require.NotNil(t, session)
	require.NotEmpty(t, token)
	return session, token
}

func TestCSRFRejectsMissingToken(t *testing.T) {
	ConfigureSessions("test-signing-key", false)
	h := csrfHandler()
	sess, token := primeSession(t, h)

	req := httptest.NewRequest(http.MethodPost, "/modal/close", nil)
	req.AddCookie(sess)
	req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: token})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCSRFAcceptsHeaderAndFormField(t *testing.T) {
	ConfigureSessions("test-signing-key", false)
	h := csrfHandler()
	sess, token := primeSession(t, h)

	req := httptest.NewRequest(http.MethodPost, "/modal/close", nil)
	req.Header.Set("HX-Request", "true")
	req.Header.Set(csrfHeaderName, token)
	req.AddCookie(sess)
	req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: token})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	form := url.Values{csrfFormField: {token}, "id": {"2"}}
	req = httptest.NewRequest(http.MethodPost, "/map/focus", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(sess)
	req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: token})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRedirectUsesHXRedirectForHTMX(t *testing.T) {
	h := HTMX(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		Redirect(w, r, "/map")
	}))

	req := httptest.NewRequest(http.MethodPost, "/map/focus", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "/map", rec.Header().Get("HX-Redirect"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/map/focus", nil))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/map", rec.Header().Get("Location"))
}
