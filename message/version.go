package message

import (
	"strconv"
	"strings"

	"github.com/wsgox/wsgox/werr"
)

// parseVersion parses "HTTP/M.N" into (major, minor) per spec §4.2
// step 5. Grounded on fasthttp's manual byte-level version check in
// header.go (parseFirstLine's protoStr handling) rather than regexp.
func parseVersion(s string, permit bool) (major, minor int, err error) {
	const prefix = "HTTP/"
	if !strings.HasPrefix(s, prefix) {
		return 0, 0, werr.New(werr.InvalidHTTPVersion, s)
	}
	rest := s[len(prefix):]
	dot := strings.IndexByte(rest, '.')
	if dot < 0 {
		return 0, 0, werr.New(werr.InvalidHTTPVersion, s)
	}
	majorStr, minorStr := rest[:dot], rest[dot+1:]
	if !isDigits(majorStr) || !isDigits(minorStr) {
		return 0, 0, werr.New(werr.InvalidHTTPVersion, s)
	}
	maj, err1 := strconv.Atoi(majorStr)
	min, err2 := strconv.Atoi(minorStr)
	if err1 != nil || err2 != nil {
		return 0, 0, werr.New(werr.InvalidHTTPVersion, s)
	}
	// (1,0) <= v < (2,0) holds iff major == 1, since minor is always
	// non-negative by construction.
	if !permit && maj != 1 {
		return 0, 0, werr.New(werr.InvalidHTTPVersion, s)
	}
	return maj, min, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
