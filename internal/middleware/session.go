package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"
)

const sessionCookieName = "GAZETTEER_SESSION"

const sessionTTL = 30 * 24 * time.Hour

// SessionData is the signed, cookie-backed per-browser state.
type SessionData struct {
	ID        string     `json:"id"`
	Locale    string     `json:"locale,omitempty"`
	CSRFToken string     `json:"csrf,omitempty"`
	Focus     *int       `json:"focus,omitempty"`
	Modal     ModalState `json:"modal,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	// internal dirty flag; not serialized
	dirty bool `json:"-"`
}

// ModalState remembers which monastery the detail dialog shows. ID is only
// meaningful when Selected is set; 0 is a valid record id.
type ModalState struct {
	ID       int    `json:"id"`
	Selected bool   `json:"selected,omitempty"`
	Visible  bool   `json:"visible,omitempty"`
	Image    string `json:"image,omitempty"`
}

var (
	sessionMu      sync.RWMutex
	sessionSignKey []byte
	sessionSecure  bool
)

func init() {
	// process-ephemeral key until ConfigureSessions is called
	sessionSignKey = make([]byte, 32)
	if _, err := rand.Read(sessionSignKey); err != nil {
		sessionSignKey = []byte("insecure-dev-key-please-set-GAZETTEER_SESSION_SIGNING_KEY")
	}
}

// ConfigureSessions sets the HMAC signing key and the Secure cookie flag.
// An empty key keeps the ephemeral one generated at start-up.
func ConfigureSessions(key string, secure bool) {
	sessionMu.Lock()
	defer sessionMu.Unlock()
	if key != "" {
		sessionSignKey = []byte(key)
	}
	sessionSecure = secure
}

func signingKey() []byte {
	sessionMu.RLock()
	defer sessionMu.RUnlock()
	return sessionSignKey
}

func secureCookies() bool {
	sessionMu.RLock()
	defer sessionMu.RUnlock()
	return sessionSecure
}

// Session loads or initializes a session and stores it in request context.
// The cookie is rewritten just before the first byte of the response when the
// session changed during the request.
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sd, fromCookie := readSessionCookie(r)
		if sd.ID == "" {
			sd.ID = randID()
			sd.CreatedAt = time.Now().UTC()
			sd.UpdatedAt = sd.CreatedAt
			sd.CSRFToken = newCSRFToken()
			sd.dirty = true
		}
		ctx := context.WithValue(r.Context(), ctxKeySession, sd)
		rw := NewResponseRecorder(w)
		rw.SetBeforeWrite(func(w http.ResponseWriter) {
			if sd.dirty || !fromCookie {
				writeSessionCookie(w, sd)
			}
		})
		next.ServeHTTP(rw, r.WithContext(ctx))
		// nothing written yet (e.g. HEAD): flush headers so the cookie goes out
		if !rw.Wrote() && (sd.dirty || !fromCookie) {
			writeSessionCookie(w, sd)
		}
	})
}

// GetSession returns session data from context
func GetSession(r *http.Request) *SessionData {
	if v := r.Context().Value(ctxKeySession); v != nil {
		if sd, ok := v.(*SessionData); ok {
			return sd
		}
	}
	return &SessionData{}
}

// MarkDirty flags the session for writing at end of request
func (s *SessionData) MarkDirty() { s.dirty = true; s.UpdatedAt = time.Now().UTC() }

// SetFocus records the monastery the map should centre on next time it loads.
func (s *SessionData) SetFocus(id int) {
	s.Focus = &id
	s.MarkDirty()
}

// TakeFocus returns the pending focus id and clears it, so the flag is
// honoured by exactly one map load.
func (s *SessionData) TakeFocus() (int, bool) {
	if s.Focus == nil {
		return 0, false
	}
	id := *s.Focus
	s.Focus = nil
	s.MarkDirty()
	return id, true
}

// OpenModal shows the detail dialog for id with the given primary image.
func (s *SessionData) OpenModal(id int, image string) {
	s.Modal = ModalState{ID: id, Selected: true, Visible: true, Image: image}
	s.MarkDirty()
}

// ShowImage swaps the primary image of the open dialog.
func (s *SessionData) ShowImage(image string) {
	s.Modal.Image = image
	s.MarkDirty()
}

// CloseModal hides the dialog but keeps the last selection.
func (s *SessionData) CloseModal() {
	if !s.Modal.Visible {
		return
	}
	s.Modal.Visible = false
	s.MarkDirty()
}

// readSessionCookie parses and verifies the session cookie
func readSessionCookie(r *http.Request) (*SessionData, bool) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil || c.Value == "" {
		return &SessionData{}, false
	}
	payload, sig, ok := strings.Cut(c.Value, ".")
	if !ok {
		return &SessionData{}, false
	}
	payloadB, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return &SessionData{}, false
	}
	sigB, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil {
		return &SessionData{}, false
	}
	mac := hmac.New(sha256.New, signingKey())
	mac.Write(payloadB)
	if !hmac.Equal(sigB, mac.Sum(nil)) {
		return &SessionData{}, false
	}
	var sd SessionData
	if err := json.Unmarshal(payloadB, &sd); err != nil {
		return &SessionData{}, false
	}
	return &sd, true
}

func writeSessionCookie(w http.ResponseWriter, sd *SessionData) {
	b, _ := json.Marshal(sd)
	mac := hmac.New(sha256.New, signingKey())
	mac.Write(b)
	val := base64.RawURLEncoding.EncodeToString(b) + "." + base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    val,
		Path:     "/",
		HttpOnly: true,
		Secure:   secureCookies(),
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(sessionTTL),
	})
}

func randID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
