// Package media turns the catalog's relative media paths into the absolute
// URLs sent to LINE, and guards which of those URLs may be sent at all.
package media

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/garyellow/jojo-linebot-go/internal/catalog"
)

const (
	// MaxURLLength is LINE's limit for image URLs.
	MaxURLLength = 2000

	// PathPrefix is the route the media directory is served under.
	PathPrefix = "/media"
)

// Table maps media keys to absolute URLs. It is built per webhook request.
type Table map[catalog.MediaKey]string

// ResolveOrigin returns the scheme://host prefix media URLs are built on.
//
// A configured origin wins; it gets an https:// scheme when it has none.
// Otherwise the origin comes from the request: the first X-Forwarded-Proto
// value, else https when the connection is TLS, else http, joined with
// r.Host. Trailing slashes are removed. An http origin is returned as is and
// every URL built on it will fail IsServable.
func ResolveOrigin(configured string, r *http.Request) string {
	if configured = strings.TrimSpace(configured); configured != "" {
		if !strings.Contains(configured, "://") {
			configured = "https://" + configured
		}
		return strings.TrimRight(configured, "/")
	}
	if r == nil || r.Host == "" {
		return ""
	}

	scheme := "http"
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		first, _, _ := strings.Cut(proto, ",")
		scheme = strings.ToLower(strings.TrimSpace(first))
	} else if r.TLS != nil {
		scheme = "https"
	}
	return strings.TrimRight(scheme+"://"+r.Host, "/")
}

// BuildTable joins origin with every path. Path segments are
// percent-escaped; no I/O happens here.
func BuildTable(origin string, paths map[catalog.MediaKey]string) Table {
	t := make(Table, len(paths))
	for key, p := range paths {
		t[key] = origin + "/" + escapePath(strings.TrimLeft(p, "/"))
	}
	return t
}

func escapePath(p string) string {
	segments := strings.Split(p, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

// IsServable reports whether raw is an absolute https URL LINE can fetch:
// https scheme (any case), parsable, non-empty host, within MaxURLLength.
func IsServable(raw string) bool {
	if len(raw) > MaxURLLength || !strings.HasPrefix(strings.ToLower(raw), "https://") {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.Hostname() != ""
}

// Lookup returns the URL for key when it exists and is servable.
func (t Table) Lookup(key catalog.MediaKey) (string, bool) {
	u, ok := t[key]
	if !ok || !IsServable(u) {
		return "", false
	}
	return u, true
}

// Check lists, in key order, the media keys whose path has no regular file
// under dir. It is an operator tool and is never called per request.
func Check(dir string, paths map[catalog.MediaKey]string) ([]catalog.MediaKey, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("media dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("media dir %s: not a directory", dir)
	}

	var missing []catalog.MediaKey
	for key, p := range paths {
		fi, err := os.Stat(filepath.Join(dir, filepath.FromSlash(strings.TrimLeft(p, "/"))))
		switch {
		case errors.Is(err, fs.ErrNotExist):
			missing = append(missing, key)
		case err != nil:
			return nil, fmt.Errorf("media %s: %w", key, err)
		case !fi.Mode().IsRegular():
			missing = append(missing, key)
		}
	}
	slices.Sort(missing)
	return missing, nil
}
