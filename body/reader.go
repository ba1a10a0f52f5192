// Package body implements the three body-reader variants from spec
// §4.3 (component C3): Length, Chunked and EOF, each exposing the
// strict read(n) contract from §3 plus the POSIX-style
// read/readline/readlines surface the original WSGI server exposes on
// its RequestBody (§4.3 last paragraph, supplemented from
// original_source/python-web-server/web_server/http).
//
// Grounded on fasthttp's http.go readBody/readBodyChunked/
// appendBodyFixedSize family and streaming.go's requestStream.
package body

import (
	"bytes"
	"errors"

	"github.com/wsgox/wsgox/header"
)

// ErrNegativeSize is returned by Read for a negative size, the body
// reader's ValueError-equivalent (spec §3: "negative size -> error").
var ErrNegativeSize = errors.New("body: size must be non-negative")

// Reader is the common interface satisfied by Length, Chunked and EOF.
type Reader interface {
	// Read returns up to min(n, remaining) bytes. n == 0 returns an
	// empty slice; n < 0 returns ErrNegativeSize; after exhaustion Read
	// returns an empty slice indefinitely.
	Read(n int) ([]byte, error)

	// ReadAll implements RequestBody.read(size): size < 0 means "all
	// remaining bytes".
	ReadAll(size int) []byte

	// ReadLine implements RequestBody.readline(size): bytes up to and
	// including the next '\n', or up to size bytes if size >= 0.
	ReadLine(size int) []byte

	// ReadLines implements RequestBody.readlines(hint): aggregates
	// ReadLine calls until exhaustion, or, for hint > 0, until the
	// cumulative byte count exceeds hint.
	ReadLines(hint int) [][]byte

	// Trailers returns the chunked trailer fields, or nil for Length
	// and EOF bodies.
	Trailers() header.Fields
}

// bufBody is the shared materialized-buffer-with-cursor backing every
// variant (spec §9: "Avoid dynamic dispatch across the hot path by
// inlining where possible" — the read logic lives once here and each
// variant just embeds it).
type bufBody struct {
	data []byte
	pos  int
}

func (b *bufBody) read(n int) ([]byte, error) {
	if n < 0 {
		return nil, ErrNegativeSize
	}
	if n == 0 {
		return []byte{}, nil
	}
	avail := len(b.data) - b.pos
	if avail <= 0 {
		return []byte{}, nil
	}
	take := n
	if take > avail {
		take = avail
	}
	out := b.data[b.pos : b.pos+take]
	b.pos += take
	return out, nil
}

func (b *bufBody) ReadAll(size int) []byte {
	if size < 0 {
		out := b.data[b.pos:]
		b.pos = len(b.data)
		return out
	}
	avail := len(b.data) - b.pos
	take := size
	if take > avail {
		take = avail
	}
	out := b.data[b.pos : b.pos+take]
	b.pos += take
	return out
}

func (b *bufBody) ReadLine(size int) []byte {
	rest := b.data[b.pos:]
	end := len(rest)
	if idx := bytes.IndexByte(rest, '\n'); idx >= 0 {
		end = idx + 1
	}
	if size >= 0 && size < end {
		end = size
	}
	out := rest[:end]
	b.pos += end
	return out
}

func (b *bufBody) ReadLines(hint int) [][]byte {
	var out [][]byte
	total := 0
	for b.pos < len(b.data) {
		line := b.ReadLine(-1)
		out = append(out, line)
		total += len(line)
		if hint > 0 && total > hint {
			break
		}
	}
	return out
}

// Length is the finite, Content-Length-framed body reader.
type Length struct{ bufBody }

// NewLength wraps data (already pulled off the wire) as a Length body.
func NewLength(data []byte) *Length {
	return &Length{bufBody{data: data}}
}

func (l *Length) Read(n int) ([]byte, error) { return l.read(n) }
func (l *Length) Trailers() header.Fields    { return nil }

// Chunked is the finite, chunked-transfer-encoded body reader; its
// buffer is the concatenation of decoded chunk payloads, and it
// carries any trailer fields captured from the zero chunk.
type Chunked struct {
	bufBody
	trailers header.Fields
}

// NewChunked wraps already-decoded chunk payload data plus trailers.
func NewChunked(data []byte, trailers header.Fields) *Chunked {
	return &Chunked{bufBody: bufBody{data: data}, trailers: trailers}
}

func (c *Chunked) Read(n int) ([]byte, error) { return c.read(n) }
func (c *Chunked) Trailers() header.Fields    { return c.trailers }

// EOF is the finite, close-delimited body reader: either genuinely
// empty (no framing headers, the spec's chosen default) or content
// read up to a double-CRLF sentinel when so configured.
type EOF struct{ bufBody }

// NewEOF wraps already-read close-delimited content (nil for empty).
func NewEOF(data []byte) *EOF {
	return &EOF{bufBody{data: data}}
}

func (e *EOF) Read(n int) ([]byte, error) { return e.read(n) }
func (e *EOF) Trailers() header.Fields    { return nil }
