package i18n

import (
	"testing"
	"testing/fstest"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"en.json": {Data: []byte(`{"nav.map":"Map","explore.count":"%d monasteries"}`)},
		"ne.json": {Data: []byte(`{"nav.map":"नक्सा"}`)},
	}
}

func TestResolveHonorsQValues(t *testing.T) {
	b, err := LoadFS(testFS(), "en", []string{"en", "ne"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := b.Resolve("en;q=0.8, ne-NP;q=0.9"); got != "ne" {
		t.Fatalf("expected ne, got %s", got)
	}
	if got := b.Resolve("fr, de;q=0.5"); got != "en" {
		t.Fatalf("expected fallback en, got %s", got)
	}
}

func TestTFallsBackToDefaultThenKey(t *testing.T) {
	b, err := LoadFS(testFS(), "en", []string{"en", "ne"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := b.T("ne", "nav.map"); got != "नक्सा" {
		t.Fatalf("expected ne translation, got %q", got)
	}
	if got := b.Tf("ne", "explore.count", 3); got != "3 monasteries" {
		t.Fatalf("expected fallback translation, got %q", got)
	}
	if got := b.T("ne", "missing.key"); got != "missing.key" {
		t.Fatalf("expected key echo, got %q", got)
	}
}

func TestLoadRequiresFallback(t *testing.T) {
	if _, err := LoadFS(fstest.MapFS{}, "en", []string{"en"}); err == nil {
		t.Fatal("expected error when fallback dictionary is missing")
	}
}

func TestRepositoryLocalesLoad(t *testing.T) {
	b, err := Load("../../locales", "en", []string{"en", "ne"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := b.T("en", "nav.explore"); got == "nav.explore" {
		t.Fatal("expected nav.explore to be translated")
	}
}
