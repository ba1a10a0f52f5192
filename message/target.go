package message

import "strings"

// splitTarget splits a request target into (path, query, fragment),
// manually, the way fasthttp's uri.go scans for '?' and '#' instead of
// reaching for net/url. A leading "//" (abs_path with an authority-
// looking prefix) is preserved verbatim per spec §4.2 step 4: prefixed
// with "." before scanning, then the "." is stripped back off so the
// leading "//" survives untouched.
func splitTarget(target string) (path, query, fragment string) {
	raw := target
	absPrefixed := strings.HasPrefix(raw, "//")
	if absPrefixed {
		raw = "." + raw
	}

	rest := raw
	if i := strings.IndexByte(rest, '#'); i >= 0 {
		fragment = rest[i+1:]
		rest = rest[:i]
	}
	if i := strings.IndexByte(rest, '?'); i >= 0 {
		query = rest[i+1:]
		rest = rest[:i]
	}
	path = rest
	if absPrefixed {
		path = strings.TrimPrefix(path, ".")
	}
	return path, query, fragment
}
