package main

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/piyushjoshi9351/sikkim-final-rebuild/internal/format"
	"github.com/piyushjoshi9351/sikkim-final-rebuild/internal/handlers"
	"github.com/piyushjoshi9351/sikkim-final-rebuild/internal/observability"
)

func (a *app) funcMap() template.FuncMap {
	return template.FuncMap{
		"t":      a.bundle.T,
		"tf":     a.bundle.Tf,
		"count":  format.FmtCount,
		"jsonld": func(s string) template.JS { return template.JS(s) },
	}
}

// parseTemplates recursively discovers and parses all .tmpl files.
func (a *app) parseTemplates() (*template.Template, error) {
	dir := a.cfg.Paths.Templates
	var files []string
	if err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".tmpl") {
			files = append(files, path)
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("walk templates: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no templates found under %s", dir)
	}
	return template.New("_root").Funcs(a.funcMap()).ParseFiles(files...)
}

func (a *app) templates() (*template.Template, error) {
	if a.cfg.Server.Dev {
		return a.parseTemplates()
	}
	a.tmplMu.Lock()
	defer a.tmplMu.Unlock()
	if a.tmplCache == nil {
		t, err := a.parseTemplates()
		if err != nil {
			return nil, err
		}
		a.tmplCache = t
	}
	return a.tmplCache, nil
}

// execute renders into a buffer first so a template error never leaves a
// half-written 200 response.
func (a *app) execute(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	t, err := a.templates()
	if err != nil {
		observability.FromContext(r.Context()).Error("template parse failed", zap.Error(err))
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		observability.FromContext(r.Context()).Error("template exec failed", zap.String("template", name), zap.Error(err))
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// renderPage executes the base layout with the named content block.
func (a *app) renderPage(w http.ResponseWriter, r *http.Request, status int, vm handlers.PageData, content string) {
	a.execute(w, r, status, "page_"+content, vm)
}

// renderTemplate executes a fragment template for htmx swaps.
func (a *app) renderTemplate(w http.ResponseWriter, r *http.Request, name string, data any) {
	a.execute(w, r, http.StatusOK, name, data)
}

func (a *app) renderError(w http.ResponseWriter, r *http.Request, status int, msg, retry string) {
	vm := a.page(r, http.StatusText(status), msg)
	vm.SEO.Robots = "noindex"
	vm.Error = &handlers.ErrorData{Status: status, Message: msg, RetryURL: retry}
	a.renderPage(w, r, status, vm, "error")
}
