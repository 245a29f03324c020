package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

const assetsCacheControl = "public, max-age=604800, stale-while-revalidate=86400"

// AssetsWithCache serves dir with long-lived caching and weak ETags computed
// once at start-up. In dev mode files are served with no-cache so edits show
// up on reload.
func AssetsWithCache(dir string, dev bool) http.Handler {
	etags := map[string]string{}
	if !dev {
		_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			et, err := fileETag(path)
			if err != nil {
				return nil
			}
			if rel, err := filepath.Rel(dir, path); err == nil {
				etags["/"+filepath.ToSlash(rel)] = et
			}
			return nil
		})
	}
	files := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Accept-Encoding")
		if dev {
			w.Header().Set("Cache-Control", "no-cache")
			files.ServeHTTP(w, r)
			return
		}
		// no directory listings
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Cache-Control", assetsCacheControl)
		if et := etags[r.URL.Path]; et != "" {
			w.Header().Set("ETag", et)
			if r.Header.Get("If-None-Match") == et {
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}
		files.ServeHTTP(w, r)
	})
}

func fileETag(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return `W/"` + hex.EncodeToString(h.Sum(nil)[:16]) + `"`, nil
}
