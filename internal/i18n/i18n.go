package i18n

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Bundle holds flat key/value dictionaries per language.
type Bundle struct {
	dict      map[string]map[string]string
	fallback  string
	supported map[string]struct{}
}

// Load reads <lang>.json for each supported language from dir.
func Load(dir string, fallback string, supported []string) (*Bundle, error) {
	return LoadFS(os.DirFS(dir), fallback, supported)
}

// LoadFS is Load over an arbitrary filesystem. Missing non-fallback files are
// tolerated; the fallback dictionary is required.
func LoadFS(fsys fs.FS, fallback string, supported []string) (*Bundle, error) {
	if fallback == "" {
		fallback = "en"
	}
	b := &Bundle{
		dict:      map[string]map[string]string{},
		fallback:  fallback,
		supported: map[string]struct{}{},
	}
	if len(supported) == 0 {
		supported = []string{fallback}
	}
	for _, l := range supported {
		l = strings.ToLower(strings.TrimSpace(l))
		if l == "" {
			continue
		}
		b.supported[l] = struct{}{}
		raw, err := fs.ReadFile(fsys, l+".json")
		if err != nil {
			if l == fallback {
				return nil, fmt.Errorf("load locale %s: %w", l, err)
			}
			continue
		}
		var m map[string]string
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("unmarshal %s: %w", l, err)
		}
		b.dict[l] = m
	}
	if _, ok := b.dict[fallback]; !ok {
		return nil, fmt.Errorf("fallback locale %s not loaded", fallback)
	}
	return b, nil
}

func (b *Bundle) Supported() []string {
	out := make([]string, 0, len(b.supported))
	for k := range b.supported {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Fallback returns the configured fallback language.
func (b *Bundle) Fallback() string { return b.fallback }

// IsSupported reports whether lang is one of the configured languages.
func (b *Bundle) IsSupported(lang string) bool {
	_, ok := b.supported[lang]
	return ok
}

// T returns translation for key in lang, falling back to default and finally key.
func (b *Bundle) T(lang, key string) string {
	if m, ok := b.dict[lang]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	if m, ok := b.dict[b.fallback]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	return key
}

// Tf is T followed by fmt.Sprintf with args.
func (b *Bundle) Tf(lang, key string, args ...any) string {
	return fmt.Sprintf(b.T(lang, key), args...)
}

// Resolve chooses best language from Accept-Language header.
func (b *Bundle) Resolve(acceptLang string) string {
	type langPref struct {
		base string
		q    float64
		pos  int
	}
	prefs := make([]langPref, 0, 8)
	for i, raw := range strings.Split(acceptLang, ",") {
		p := strings.TrimSpace(raw)
		if p == "" {
			continue
		}
		q := 1.0
		if sc := strings.IndexByte(p, ';'); sc != -1 {
			params := strings.TrimSpace(p[sc+1:])
			p = strings.TrimSpace(p[:sc])
			if v, ok := strings.CutPrefix(params, "q="); ok {
				if pv, err := parseQValue(v); err == nil {
					q = pv
				}
			}
		}
		base, _, _ := strings.Cut(p, "-")
		prefs = append(prefs, langPref{base: strings.ToLower(base), q: q, pos: i})
	}
	sort.SliceStable(prefs, func(i, j int) bool {
		if prefs[i].q == prefs[j].q {
			return prefs[i].pos < prefs[j].pos
		}
		return prefs[i].q > prefs[j].q
	})
	for _, lp := range prefs {
		if lp.q > 0 && b.IsSupported(lp.base) {
			return lp.base
		}
	}
	return b.fallback
}

// parseQValue parses a qvalue per RFC 7231 (0.0 to 1.0).
func parseQValue(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	return v, nil
}
