package main

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	mw "github.com/piyushjoshi9351/sikkim-final-rebuild/internal/middleware"
	"github.com/piyushjoshi9351/sikkim-final-rebuild/internal/observability"
)

// MapFocusHandler stores the deep-link focus flag for the posted id and sends
// the browser to the map.
func (a *app) MapFocusHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(strings.TrimSpace(r.FormValue("id")))
	if err != nil {
		mw.WriteError(w, r, http.StatusBadRequest, "invalid monastery id")
		return
	}
	mw.GetSession(r).SetFocus(id)
	mw.Redirect(w, r, "/map")
}

// MapHandler renders the map page. A pending focus flag is consumed before
// anything else so it never re-triggers on a later visit, matched or not.
func (a *app) MapHandler(w http.ResponseWriter, r *http.Request) {
	sess := mw.GetSession(r)
	var focus *int
	if id, ok := sess.TakeFocus(); ok {
		focus = &id
	}
	ds, ok := a.dataset(w, r)
	if !ok {
		return
	}
	view := buildMapView(ds, focus, a.cfg.Map, mw.Lang(r))
	if focus != nil {
		matched := view.Client.Focus != nil
		a.metrics.ObserveFocus(matched)
		observability.FromContext(r.Context()).Debug("map focus consumed",
			zap.Int("id", *focus), zap.Bool("matched", matched))
	}

	vm := a.page(r, a.t(r, "map.title"), a.t(r, "map.description"))
	vm.Map = view
	a.renderPage(w, r, http.StatusOK, vm, "map")
}

// MapMarkersHandler exposes the marker list as JSON.
func (a *app) MapMarkersHandler(w http.ResponseWriter, r *http.Request) {
	ds, err := a.loader.Load(r.Context())
	if err != nil {
		observability.FromContext(r.Context()).Error("dataset unavailable", zap.Error(err))
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "dataset unavailable"})
		return
	}
	view := buildMapView(ds, nil, a.cfg.Map, mw.Lang(r))
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_ = json.NewEncoder(w).Encode(view.Client.Markers)
}
