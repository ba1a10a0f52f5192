package header

import "golang.org/x/net/http/httpguts"

// IsValidValue reports whether v is a legal RFC 9110 §5.5 field-value:
// no control characters (besides HTAB) and no bare CR/LF such as an
// unterminated obsolete line fold would leave behind.
func IsValidValue(v string) bool {
	return httpguts.ValidHeaderFieldValue(v)
}

// IsToken reports whether s is a non-empty RFC 9110 §5.6.2 token
// (tchar+): ALPHA / DIGIT / "!#$%&'*+-.^_`|~". Used for method names,
// header field names, and transfer-coding names.
func IsToken(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isTchar(s[i]) {
			return false
		}
	}
	return true
}

func isTchar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	switch c {
	case '!', '#', '$', '%', '&', '\'', '*', '+', '-', '.', '^', '_', '`', '|', '~':
		return true
	}
	return false
}
