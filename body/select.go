package body

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/wsgox/wsgox/bufreader"
	"github.com/wsgox/wsgox/header"
	"github.com/wsgox/wsgox/werr"
)

var (
	crlf     = []byte("\r\n")
	sentinel = []byte("\r\n\r\n")
)

// knownCodings is the TE coding allow-list for the "not subset of"
// check in spec §4.3.
var knownCodings = map[string]bool{
	"identity": true, "chunked": true, "compress": true, "deflate": true, "gzip": true,
}

// Select builds the correct body reader variant for (major.minor,
// headers) per spec §4.3's selection table. closeDelimited controls
// the Open Question pick for requests with no framing headers: false
// (the spec's default) yields a genuinely empty EOF reader; true reads
// up to a double-CRLF sentinel instead.
func Select(r *bufreader.Reader, major, minor int, headers header.Fields, closeDelimited bool) (Reader, error) {
	clValues := headers.GetAll("CONTENT-LENGTH")
	teValue, hasTE := headers.Get("TRANSFER-ENCODING")

	hasCL := len(clValues) > 0
	contentLength := -1
	if hasCL {
		if len(clValues) > 1 {
			return nil, werr.New(werr.InvalidHeader, "multiple Content-Length headers")
		}
		n, err := strconv.Atoi(strings.TrimSpace(clValues[0]))
		if err != nil || n < 0 {
			return nil, werr.New(werr.InvalidHeader, "invalid Content-Length")
		}
		contentLength = n
	}

	isChunked := false
	if hasTE {
		codings := splitCodings(teValue)
		for _, c := range codings {
			lc := strings.ToLower(c)
			if !knownCodings[lc] {
				return nil, werr.New(werr.UnsupportedTransferCoding, c)
			}
		}
		isChunked = strings.ToLower(codings[len(codings)-1]) == "chunked"
		for _, c := range codings {
			lc := strings.ToLower(c)
			if lc != "identity" && lc != "chunked" {
				return nil, werr.New(werr.InvalidHeader, "unsupported transfer coding: "+c)
			}
		}
	}

	if isChunked && hasCL {
		return nil, werr.New(werr.InvalidHeader, "CONTENT-LENGTH")
	}
	if isChunked && major == 1 && minor == 0 {
		return nil, werr.New(werr.InvalidHeader, "chunked transfer-encoding under HTTP/1.0")
	}

	switch {
	case isChunked:
		return parseChunked(r)
	case hasCL:
		return parseLength(r, contentLength)
	default:
		if closeDelimited {
			return parseEOFSentinel(r)
		}
		return NewEOF(nil), nil
	}
}

func splitCodings(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

func parseLength(r *bufreader.Reader, n int) (Reader, error) {
	data, err := readExact(r, n)
	if err != nil {
		return nil, err
	}
	four := 4
	peek, err := r.Read(&four)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(peek, sentinel) {
		if err := r.Unread(len(peek)); err != nil {
			return nil, err
		}
	}
	return NewLength(data), nil
}

func parseEOFSentinel(r *bufreader.Reader) (Reader, error) {
	data, err := r.ReadUntil(sentinel, nil)
	if err != nil {
		return nil, err
	}
	return NewEOF(data), nil
}

func readExact(r *bufreader.Reader, n int) ([]byte, error) {
	out := make([]byte, 0, n)
	for len(out) < n {
		remaining := n - len(out)
		chunk, err := r.Read(&remaining)
		if err != nil {
			return nil, err
		}
		if len(chunk) == 0 {
			return nil, werr.New(werr.NoMoreData, "connection closed while reading body")
		}
		out = append(out, chunk...)
	}
	return out, nil
}
