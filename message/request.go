// Package message implements the request-line and header-block
// parser (spec §4.2, component C2) and the immutable Request value
// (spec §3, component C4).
//
// Grounded on fasthttp's header.go RequestHeader.parseFirstLine /
// parseHeaders token scanning, adapted from in-place header mutation
// to an ordered immutable-pair model, and on
// andycostintoma-go-httpx/internal/httpx's simpler immutable-request
// habit.
package message

import (
	"github.com/wsgox/wsgox/body"
	"github.com/wsgox/wsgox/header"
)

// Request is an immutable parsed HTTP/1.x request (spec §3).
type Request struct {
	Method   string
	Path     string
	Query    string
	Fragment string
	Major    int
	Minor    int
	Headers  header.Fields
	Body     body.Reader
	Trailers header.Fields
}

// HasConnectionCloseHeader reports whether Connection: close is set.
func (r *Request) HasConnectionCloseHeader() bool {
	v, ok := r.Headers.Get("CONNECTION")
	return ok && header.ContainsToken(v, "close")
}

// UpgradeHeader returns the Upgrade header's value, but only when a
// Connection: upgrade is also present (spec §3).
func (r *Request) UpgradeHeader() (string, bool) {
	conn, ok := r.Headers.Get("CONNECTION")
	if !ok || !header.ContainsToken(conn, "upgrade") {
		return "", false
	}
	return r.Headers.Get("UPGRADE")
}

// HasTransferEncodingAndContentLengthHeaders reports whether both
// framing headers are present (used by the response builder's close
// disposition rule, spec §4.4).
func (r *Request) HasTransferEncodingAndContentLengthHeaders() bool {
	return r.Headers.Has("TRANSFER-ENCODING") && r.Headers.Has("CONTENT-LENGTH")
}
