package description

import (
	"net/url"
	"strings"
)

// redirectPath is the path of YouTube's outbound link wrapper.
const redirectPath = "/redirect"

// Resolve turns a link descriptor into an absolute URL. It never fails:
// a redirect target that cannot be percent-decoded is returned as is.
func Resolve(d LinkDescriptor, baseURL string) string {
	switch d.Kind {
	case LinkRedirect:
		target, err := url.QueryUnescape(d.Value)
		if err != nil {
			return d.Value
		}
		return target
	case LinkAbsolute:
		return d.Value
	default:
		return baseURL + d.Value
	}
}

// ClassifyURL builds a descriptor from a raw command URL as it appears in page
// metadata. For redirect wrappers the q parameter is kept percent-encoded so that
// Resolve decodes it exactly once.
func ClassifyURL(raw string) LinkDescriptor {
	u, err := url.Parse(raw)
	if err != nil {
		return RelativePath(raw)
	}
	if u.Path == redirectPath {
		if q, ok := rawQueryValue(u.RawQuery, "q"); ok {
			return RedirectWrapper(q)
		}
	}
	if u.Host != "" {
		return AbsoluteURL(raw)
	}
	return RelativePath(raw)
}

// rawQueryValue returns the undecoded value of key in a raw query string.
func rawQueryValue(rawQuery, key string) (string, bool) {
	for _, pair := range strings.Split(rawQuery, "&") {
		k, v, _ := strings.Cut(pair, "=")
		if k == key {
			return v, true
		}
	}
	return "", false
}
