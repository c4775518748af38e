package urlutil

import (
	"errors"
	"net/url"
	"path"
	"sort"
	"strings"
)

// trackingParams are dropped so the same posting shared through different
// channels collapses to one link.
var trackingParams = map[string]struct{}{
	"gclid":        {},
	"fbclid":       {},
	"ref":          {},
	"source":       {},
	"trk":          {},
	"trackingid":   {},
	"refid":        {},
	"gh_src":       {},
	"lever-source": {},
}

// Normalize canonicalises a posting link for storage and de-duplication. It
// returns the normalised URL and its host.
func Normalize(raw string) (string, string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", "", errors.New("empty url")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", err
	}
	if u.Scheme == "" && u.Host == "" {
		if u, err = url.Parse("https://" + raw); err != nil {
			return "", "", err
		}
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Fragment = ""
	u.Host = normalizeHost(u.Host)
	u.Path = normalizePath(u.Path)
	u.RawQuery = normalizeQuery(u.RawQuery)
	return u.String(), u.Hostname(), nil
}

func normalizeHost(host string) string {
	host = strings.ToLower(host)
	host = strings.TrimPrefix(host, "www.")
	return host
}

func normalizePath(p string) string {
	if p == "" {
		return "/"
	}
	clean := path.Clean(p)
	if clean == "." {
		return "/"
	}
	return clean
}

func normalizeQuery(raw string) string {
	if raw == "" {
		return ""
	}
	values, err := url.ParseQuery(raw)
	if err != nil {
		return ""
	}
	for key := range values {
		lk := strings.ToLower(key)
		if _, ok := trackingParams[lk]; ok || strings.HasPrefix(lk, "utm_") {
			delete(values, key)
		}
	}
	if len(values) == 0 {
		return ""
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	normalized := url.Values{}
	for _, k := range keys {
		normalized[k] = values[k]
	}
	return normalized.Encode()
}
