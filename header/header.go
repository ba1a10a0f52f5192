// Package header holds the ordered header-field model shared by the
// message, body and response packages (Request.Headers/Trailers,
// Response.Headers), plus the hop-by-hop header set from spec §3.
package header

import "strings"

// Field is a single (NAME_UPPER, value) pair. Order and duplicates are
// preserved exactly as parsed, per spec §3.
type Field struct {
	Name  string
	Value string
}

// Fields is an ordered sequence of header fields.
type Fields []Field

// Get returns the value of the first field matching name
// (case-insensitive), and whether one was found.
func (fs Fields) Get(name string) (string, bool) {
	u := Upper(name)
	for _, f := range fs {
		if f.Name == u {
			return f.Value, true
		}
	}
	return "", false
}

// GetAll returns every value for name, in order.
func (fs Fields) GetAll(name string) []string {
	u := Upper(name)
	var out []string
	for _, f := range fs {
		if f.Name == u {
			out = append(out, f.Value)
		}
	}
	return out
}

// Has reports whether name appears at least once.
func (fs Fields) Has(name string) bool {
	_, ok := fs.Get(name)
	return ok
}

// Append returns fs with (name, value) appended, name upper-cased.
func (fs Fields) Append(name, value string) Fields {
	return append(fs, Field{Name: Upper(name), Value: value})
}

// Upper normalizes a header name to its canonical NAME_UPPER form.
func Upper(name string) string {
	return strings.ToUpper(name)
}

// Dash normalizes underscore_names to dash-names before upper-casing,
// the way extend_headers (§4.4) treats application-supplied names.
func Dash(name string) string {
	return strings.ReplaceAll(name, "_", "-")
}

// TitleCase renders a NAME_UPPER field name back to wire form, e.g.
// "CONTENT-LENGTH" -> "Content-Length".
func TitleCase(name string) string {
	parts := strings.Split(name, "-")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + strings.ToLower(p[1:])
	}
	return strings.Join(parts, "-")
}

// hopByHop is the set of header names that may never be set by the
// application layer (spec §3, Response invariants).
var hopByHop = map[string]struct{}{
	"CONNECTION":          {},
	"KEEP-ALIVE":          {},
	"PROXY-AUTHENTICATE":  {},
	"PROXY-AUTHORIZATION": {},
	"TE":                  {},
	"TRAILERS":            {},
	"TRANSFER-ENCODING":   {},
	"UPGRADE":             {},
	"SERVER":              {},
	"DATE":                {},
}

// IsHopByHop reports whether name (in any case, with underscores or
// dashes) names a hop-by-hop header.
func IsHopByHop(name string) bool {
	_, ok := hopByHop[Upper(Dash(name))]
	return ok
}

// ContainsToken reports whether value is a comma-separated list
// containing token (case-insensitive), as used for Connection and
// Transfer-Encoding matching.
func ContainsToken(value, token string) bool {
	for _, part := range strings.Split(value, ",") {
		if strings.EqualFold(strings.TrimSpace(part), token) {
			return true
		}
	}
	return false
}
