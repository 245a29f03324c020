package cms

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/html"
	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when no page exists for a slug in any candidate language.
var ErrNotFound = errors.New("cms: not found")

// Page is a localized static page sourced from markdown with YAML front matter.
type Page struct {
	Slug      string
	Lang      string
	Title     string
	Summary   string
	HTML      template.HTML
	Image     string
	UpdatedAt time.Time
	SEO       PageSEO
}

// PageSEO holds optional metadata overrides.
type PageSEO struct {
	Title       string
	Description string
	OGImage     string
}

type frontMatter struct {
	Title     string `yaml:"title"`
	Summary   string `yaml:"summary"`
	Image     string `yaml:"image"`
	UpdatedAt string `yaml:"updated_at"`
	SEO       struct {
		Title       string `yaml:"title"`
		Description string `yaml:"description"`
		OGImage     string `yaml:"og_image"`
	} `yaml:"seo"`
}

const (
	defaultKind    = "pages"
	summaryMaxRune = 160
)

// Store reads pages from <root>/<kind>/<lang>/<slug>.md and caches rendered
// results for ttl.
type Store struct {
	fsys     fs.FS
	fallback string
	ttl      time.Duration
	md       goldmark.Markdown
	policy   *bluemonday.Policy
	now      func() time.Time

	mu    sync.RWMutex
	items map[string]cacheEntry
}

type cacheEntry struct {
	page    Page
	expires time.Time
}

// NewStore builds a Store rooted at dir. A non-positive ttl disables caching.
func NewStore(dir, fallbackLang string, ttl time.Duration) *Store {
	return NewStoreFS(os.DirFS(dir), fallbackLang, ttl)
}

// NewStoreFS is NewStore over an arbitrary filesystem.
func NewStoreFS(fsys fs.FS, fallbackLang string, ttl time.Duration) *Store {
	if fallbackLang == "" {
		fallbackLang = "en"
	}
	return &Store{
		fsys:     fsys,
		fallback: fallbackLang,
		ttl:      ttl,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Typographer),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
		),
		policy: newPagePolicy(),
		now:    time.Now,
		items:  map[string]cacheEntry{},
	}
}

func newPagePolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowElements("figure", "figcaption")
	policy.AllowAttrs("class").OnElements("figure", "figcaption", "p", "span")
	policy.AllowAttrs("loading").OnElements("img")
	policy.AllowAttrs("id").OnElements("h1", "h2", "h3", "h4")
	policy.RequireNoFollowOnLinks(true)
	return policy
}

// Get returns the page for slug in lang, falling back to the store's default
// language when the localized file is missing.
func (s *Store) Get(slug, lang string) (Page, error) {
	slug = sanitizeSlug(slug)
	if slug == "" {
		return Page{}, ErrNotFound
	}
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" {
		lang = s.fallback
	}
	key := lang + "|" + slug
	if p, ok := s.cached(key); ok {
		return p, nil
	}

	candidates := []string{lang}
	if lang != s.fallback {
		candidates = append(candidates, s.fallback)
	}
	for _, candidate := range candidates {
		p, err := s.read(slug, candidate)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return Page{}, err
		}
		s.store(key, p)
		return p, nil
	}
	return Page{}, ErrNotFound
}

func (s *Store) read(slug, lang string) (Page, error) {
	file := path.Join(defaultKind, lang, slug+".md")
	data, err := fs.ReadFile(s.fsys, file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Page{}, ErrNotFound
		}
		return Page{}, fmt.Errorf("cms: read %s: %w", file, err)
	}
	fm, body := splitFrontMatter(string(data))
	var front frontMatter
	if strings.TrimSpace(fm) != "" {
		if err := yaml.Unmarshal([]byte(fm), &front); err != nil {
			return Page{}, fmt.Errorf("cms: parse front matter %s: %w", file, err)
		}
	}

	var buf bytes.Buffer
	if err := s.md.Convert([]byte(body), &buf); err != nil {
		return Page{}, fmt.Errorf("cms: render %s: %w", file, err)
	}
	safe := s.policy.SanitizeBytes(buf.Bytes())

	p := Page{
		Slug:      slug,
		Lang:      lang,
		Title:     strings.TrimSpace(front.Title),
		Summary:   strings.TrimSpace(front.Summary),
		HTML:      template.HTML(safe),
		Image:     strings.TrimSpace(front.Image),
		UpdatedAt: parseDate(front.UpdatedAt),
		SEO: PageSEO{
			Title:       strings.TrimSpace(front.SEO.Title),
			Description: strings.TrimSpace(front.SEO.Description),
			OGImage:     strings.TrimSpace(front.SEO.OGImage),
		},
	}
	if p.Title == "" {
		p.Title = prettifySlug(slug)
	}
	if p.Summary == "" {
		p.Summary = Summarize(string(safe), summaryMaxRune)
	}
	if p.UpdatedAt.IsZero() {
		if info, err := fs.Stat(s.fsys, file); err == nil {
			p.UpdatedAt = info.ModTime()
		}
	}
	return p, nil
}

// Summarize extracts the visible text of an HTML fragment, collapses
// whitespace and truncates it to max runes on a word boundary.
func Summarize(fragment string, max int) string {
	nodes, err := html.ParseFragment(strings.NewReader(fragment), &html.Node{Type: html.ElementNode, Data: "body"})
	if err != nil {
		return ""
	}
	var sb strings.Builder
	for _, n := range nodes {
		collectText(n, &sb, 0)
	}
	text := strings.Join(strings.Fields(sb.String()), " ")
	r := []rune(text)
	if max <= 0 || len(r) <= max {
		return text
	}
	cut := string(r[:max])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, ",.;: ") + "…"
}

func collectText(n *html.Node, sb *strings.Builder, depth int) {
	if depth > 50 {
		return
	}
	switch n.Type {
	case html.TextNode:
		sb.WriteString(n.Data)
		sb.WriteByte(' ')
	case html.ElementNode:
		switch n.Data {
		case "script", "style", "pre", "figure", "h1":
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, sb, depth+1)
	}
}

func (s *Store) cached(key string) (Page, bool) {
	if s.ttl <= 0 {
		return Page{}, false
	}
	s.mu.RLock()
	entry, ok := s.items[key]
	s.mu.RUnlock()
	if !ok || s.now().After(entry.expires) {
		return Page{}, false
	}
	return entry.page, true
}

func (s *Store) store(key string, p Page) {
	if s.ttl <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = cacheEntry{page: p, expires: s.now().Add(s.ttl)}
}

func splitFrontMatter(input string) (string, string) {
	input = strings.TrimLeft(input, "\ufeff")
	lines := strings.Split(input, "\n")
	if strings.TrimSpace(lines[0]) != "---" {
		return "", input
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			fm := strings.Join(lines[1:i], "\n")
			body := strings.Join(lines[i+1:], "\n")
			return fm, strings.TrimLeft(body, "\n\r")
		}
	}
	return "", input
}

func parseDate(v string) time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02", "2006/01/02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

func prettifySlug(slug string) string {
	parts := strings.Split(slug, "-")
	for i, part := range parts {
		if part == "" {
			continue
		}
		r := []rune(part)
		if r[0] >= 'a' && r[0] <= 'z' {
			r[0] -= 'a' - 'A'
		}
		parts[i] = string(r)
	}
	return strings.Join(parts, " ")
}

func sanitizeSlug(slug string) string {
	slug = strings.Trim(strings.TrimSpace(strings.ToLower(slug)), "/")
	if slug == "" || strings.Contains(slug, "..") || strings.ContainsAny(slug, `/\`) {
		return ""
	}
	return slug
}
