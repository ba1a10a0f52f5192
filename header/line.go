package header

import (
	"bytes"
	"strings"
)

// SplitLine splits a CRLF-stripped "Name:value" line on the first
// colon. ok is false when no colon is present (spec §4.2: fewer than
// two parts -> InvalidHeader).
func SplitLine(line []byte) (name, value string, ok bool) {
	idx := bytes.IndexByte(line, ':')
	if idx < 0 {
		return "", "", false
	}
	name = string(line[:idx])
	value = strings.Trim(string(line[idx+1:]), " \t")
	return name, value, true
}
