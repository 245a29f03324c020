package main

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	mw "github.com/piyushjoshi9351/sikkim-final-rebuild/internal/middleware"
)

// ModalFrag opens the detail dialog for {id}. Unknown or malformed ids answer
// 204 so htmx leaves the page as it was.
func (a *app) ModalFrag(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	ds, ok := a.dataset(w, r)
	if !ok {
		return
	}
	sess := mw.GetSession(r)
	modal := restoreDetailModal(ds, a.cfg.Map.DirectionsURL, sess.Modal)
	if !modal.Open(id) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	st := modal.State()
	sess.OpenModal(st.ID, st.Image)

	view := modal.View(mw.Lang(r))
	view.CSRFToken = mw.CSRFToken(r)
	a.renderTemplate(w, r, "frag_modal", view)
}

// ModalImageFrag swaps the primary image of the dialog to ?src=, which must be
// one of the record's images.
func (a *app) ModalImageFrag(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	ds, ok := a.dataset(w, r)
	if !ok {
		return
	}
	sess := mw.GetSession(r)
	modal := restoreDetailModal(ds, a.cfg.Map.DirectionsURL, sess.Modal)
	// the client may show a dialog the session no longer tracks
	if cur, ok := modal.Selected(); (!ok || cur != id) && !modal.Open(id) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if !modal.ShowImage(r.URL.Query().Get("src")) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	st := modal.State()
	if !sess.Modal.Selected || sess.Modal.ID != st.ID {
		sess.OpenModal(st.ID, st.Image)
	} else {
		sess.ShowImage(st.Image)
	}

	view := modal.View(mw.Lang(r))
	a.renderTemplate(w, r, "frag_modal_media", view)
}

// ModalCloseHandler hides the dialog and keeps the last selection.
func (a *app) ModalCloseHandler(w http.ResponseWriter, r *http.Request) {
	mw.GetSession(r).CloseModal()
	w.Header().Set("HX-Trigger", "modal:closed")
	w.WriteHeader(http.StatusNoContent)
}
