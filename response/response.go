// Package response implements the response builder and its
// DRAFT -> STATUS_SET -> READY -> DONE typestate (spec §4.4,
// component C5).
//
// Grounded on fasthttp's Response.Write (http.go) for the
// length-vs-chunked framing decision and on header.go's
// ConnectionClose/SetConnectionClose for the disposition logic; the
// date formatting is grounded on bytesconv.go's AppendHTTPDate
// (RFC1123-with-GMT, the same wire format as RFC 7231 IMF-fixdate).
package response

import (
	"bytes"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/wsgox/wsgox/header"
	"github.com/wsgox/wsgox/message"
	"github.com/wsgox/wsgox/werr"
)

type state int

const (
	stateDraft state = iota
	stateStatusSet
	stateReady
	stateDone
)

// Response is a mutable value under the DRAFT -> STATUS_SET -> READY
// -> DONE typestate from spec §4.4.
type Response struct {
	Major, Minor int

	status  string
	headers header.Fields

	bodyBlocks [][]byte
	chunked    bool

	state state
}

// Draft builds a response from the driving request: Date, Server, and
// the connection disposition (spec §4.4 "Draft").
func Draft(req *message.Request, serverName string, now time.Time) *Response {
	r := &Response{Major: req.Major, Minor: req.Minor, state: stateDraft}
	r.headers = r.headers.Append("Date", formatIMFFixdate(now))
	r.headers = r.headers.Append("Server", serverName)

	disposition := connectionDisposition(req)
	if disposition == "upgrade" {
		if v, ok := req.UpgradeHeader(); ok {
			r.headers = r.headers.Append("Upgrade", v)
		}
	}
	r.headers = r.headers.Append("Connection", disposition)
	return r
}

func connectionDisposition(req *message.Request) string {
	switch {
	case req.HasConnectionCloseHeader():
		return "close"
	case req.Major == 1 && req.Minor == 0:
		return "close"
	case req.HasTransferEncodingAndContentLengthHeaders():
		return "close"
	}
	if _, ok := req.UpgradeHeader(); ok {
		return "upgrade"
	}
	return "keep-alive"
}

// formatIMFFixdate renders t as the fixed-length HTTP date format
// ("Sun, 06 Nov 1994 08:49:37 GMT"), the same RFC1123-with-GMT-suffix
// shape fasthttp's AppendHTTPDate produces.
func formatIMFFixdate(t time.Time) string {
	return t.UTC().Format("Mon, 02 Jan 2006 15:04:05 GMT")
}

// SetStatus sets the response status exactly once. A second call is a
// programming error (spec §4.4 "set_status").
func (r *Response) SetStatus(status string) {
	if r.state != stateDraft {
		werr.Bug("Response status already set")
	}
	r.status = status
	r.state = stateStatusSet
}

// ExtendHeaders upserts application-supplied headers, case-insensitive
// and underscore-to-dash normalized. Any hop-by-hop header name is
// rejected (spec §4.4 "extend_headers").
func (r *Response) ExtendHeaders(extra header.Fields) error {
	if r.state != stateStatusSet {
		werr.Bug("extend_headers called before set_status or after set_body")
	}
	for _, f := range extra {
		name := header.Dash(f.Name)
		if header.IsHopByHop(name) {
			return werr.New(werr.InvalidHeader, f.Name)
		}
		r.upsert(name, f.Value)
	}
	return nil
}

func (r *Response) upsert(name, value string) {
	upper := header.Upper(name)
	for i := range r.headers {
		if r.headers[i].Name == upper {
			r.headers[i].Value = value
			return
		}
	}
	r.headers = r.headers.Append(name, value)
}

// SetBody installs the response body blocks exactly once, computing
// Content-Length when no framing header is present, and verifying it
// when one is (spec §4.4 "set_body").
func (r *Response) SetBody(blocks [][]byte) error {
	if r.state != stateStatusSet {
		werr.Bug("set_body called before set_status or twice")
	}
	length := 0
	for _, b := range blocks {
		length += len(b)
	}

	clValue, hasCL := r.headers.Get("CONTENT-LENGTH")
	teValue, hasTE := r.headers.Get("TRANSFER-ENCODING")

	switch {
	case !hasCL && !hasTE:
		r.headers = r.headers.Append("Content-Length", strconv.Itoa(length))
	case hasCL:
		want, err := strconv.Atoi(strings.TrimSpace(clValue))
		if err != nil || want != length {
			return fmt.Errorf("Content-Length is wrong: expected %d, got %s", length, strings.TrimSpace(clValue))
		}
	}

	r.bodyBlocks = blocks
	r.chunked = hasTE && header.ContainsToken(teValue, "chunked")
	r.state = stateReady
	return nil
}

// Status returns the status line value ("NNN Reason"), or "" before
// SetStatus.
func (r *Response) Status() string { return r.status }

// BodySet reports whether SetBody has been called.
func (r *Response) BodySet() bool { return r.state >= stateReady }

// ForceChunked installs Transfer-Encoding: chunked directly, bypassing
// the hop-by-hop restriction ExtendHeaders enforces on application
// code. Used by the cycle package when the body length is not known
// upfront (an incremental write() before any set_body call).
func (r *Response) ForceChunked() {
	if r.state != stateStatusSet {
		werr.Bug("ForceChunked called outside STATUS_SET")
	}
	r.headers = r.headers.Append("Transfer-Encoding", "chunked")
}

// Chunked reports whether the body is framed with chunked transfer
// encoding.
func (r *Response) Chunked() bool { return r.chunked }

// Headers returns the response's current header fields.
func (r *Response) Headers() header.Fields { return r.headers }

// HeadersData renders "HTTP/M.N status\r\n" + header lines + "\r\n",
// Latin-1 encoded (spec §4.4 "headers_data"). Requires status and body
// to have been set.
func (r *Response) HeadersData() []byte {
	if r.status == "" {
		werr.Bug("Response status not set")
	}
	if r.state < stateReady {
		werr.Bug("Response body not set")
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "HTTP/%d.%d %s\r\n", r.Major, r.Minor, r.status)
	for _, f := range r.headers {
		fmt.Fprintf(&buf, "%s: %s\r\n", header.TitleCase(f.Name), f.Value)
	}
	buf.WriteString("\r\n")
	return buf.Bytes()
}

// BodyStream renders the body blocks for the wire: raw blocks for
// length-framed responses, or hex-length-prefixed chunk frames for
// chunked responses (spec §4.4 "body_stream"). It does not append a
// terminating frame on its own — a trailing empty block (set by the
// caller) already serializes to "0\r\n\r\n" once framed.
func (r *Response) BodyStream() [][]byte {
	if !r.chunked {
		return r.bodyBlocks
	}
	frames := make([][]byte, len(r.bodyBlocks))
	for i, b := range r.bodyBlocks {
		frames[i] = FrameChunk(b)
	}
	r.state = stateDone
	return frames
}

// FrameChunk wraps a single body block as a chunked-transfer frame:
// hex(len)\r\n<bytes>\r\n. Exported for the cycle package's per-write
// streaming path (spec §4.5 "write(data)").
func FrameChunk(b []byte) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%x\r\n", len(b))
	buf.Write(b)
	buf.WriteString("\r\n")
	return buf.Bytes()
}

// ChunkTerminator is the final "0\r\n\r\n" frame ending a chunked body.
func ChunkTerminator() []byte { return []byte("0\r\n\r\n") }

// errorContentType is the Content-Type on synthetic error responses.
const errorContentType = "text/html"

// BadRequest builds a synthetic 400 response for a parse failure
// (spec §4.4 "Error responses").
func BadRequest(cause error, serverName string, now time.Time) *Response {
	return errorResponse("400 Bad Request", cause, serverName, now)
}

// InternalServerError builds a synthetic 500 response for an
// unhandled application exception.
func InternalServerError(cause error, serverName string, now time.Time) *Response {
	return errorResponse("500 Internal Server Error", cause, serverName, now)
}

func errorResponse(status string, cause error, serverName string, now time.Time) *Response {
	r := &Response{Major: 1, Minor: 1, state: stateDraft}
	r.headers = r.headers.Append("Date", formatIMFFixdate(now))
	r.headers = r.headers.Append("Server", serverName)
	r.headers = r.headers.Append("Connection", "close")
	r.SetStatus(status)
	r.headers = r.headers.Append("Content-Type", errorContentType)

	body := []byte(fmt.Sprintf(
		"<html><head><title>%s</title></head><body><h1>%s</h1><p>%s</p></body></html>",
		status, status, html.EscapeString(cause.Error()),
	))
	if err := r.SetBody([][]byte{body}); err != nil {
		werr.Bug("error response body framing: " + err.Error())
	}
	return r
}
