// Package cycle implements the per-request glue between a parsed
// request, the application callable, and the response builder (spec
// §4.5, component C6).
//
// Grounded on original_source/python-web-server/web_server/cycle.py's
// Cycle (start_response/write, the "headers already sent" assertion,
// the exc_info re-raise rule) and fasthttp server.go's serveConn loop
// for the surrounding per-connection shape.
package cycle

import (
	"errors"
	"io"
	"time"

	"github.com/wsgox/wsgox/compress"
	"github.com/wsgox/wsgox/header"
	"github.com/wsgox/wsgox/message"
	"github.com/wsgox/wsgox/response"
	"github.com/wsgox/wsgox/werr"
	"github.com/wsgox/wsgox/wsgienv"
)

// WriteFunc is the write(bytes) callable start_response hands back to
// the application.
type WriteFunc func(data []byte) error

// StartResponse is the start_response(status, headers, exc_info)
// callable the application invokes, at least once, before returning
// its body iterable.
type StartResponse func(status string, headers header.Fields, excInfo error) (WriteFunc, error)

// App is the application interface: a callable taking the environ and
// start_response, returning an iterable of byte blocks (spec §6).
type App func(env wsgienv.Environ, start StartResponse) ([][]byte, error)

// ErrStaleWrite is returned by a write callable bound to a response
// that start_response has since replaced via exc_info.
var ErrStaleWrite = errors.New("cycle: write called on a superseded response")

// Cycle owns one request's connection writer, environment and
// application invocation.
type Cycle struct {
	conn       io.Writer
	req        *message.Request
	serverName string
	now        func() time.Time

	resp            *response.Response
	headersSent     bool
	chunkTerminated bool
	generation      int
}

// New builds a Cycle writing to conn for req.
func New(conn io.Writer, req *message.Request, serverName string, now func() time.Time) *Cycle {
	if now == nil {
		now = time.Now
	}
	return &Cycle{conn: conn, req: req, serverName: serverName, now: now}
}

// HeadersSent reports whether response headers have already been
// flushed to the connection.
func (c *Cycle) HeadersSent() bool { return c.headersSent }

// Response returns the cycle's current response value, or nil before
// the first start_response call.
func (c *Cycle) Response() *response.Response { return c.resp }

// StartResponse implements the application-facing start_response
// contract (spec §4.5 "Rules").
func (c *Cycle) StartResponse(status string, headers header.Fields, excInfo error) (WriteFunc, error) {
	if c.resp == nil {
		return c.bindFirst(status, headers)
	}
	if excInfo == nil {
		werr.Bug("start_response called twice with no exc_info: headers already sent")
	}
	if !c.headersSent {
		return c.bindFirst(status, headers)
	}
	return nil, excInfo
}

func (c *Cycle) bindFirst(status string, headers header.Fields) (WriteFunc, error) {
	r := response.Draft(c.req, c.serverName, c.now())
	r.SetStatus(status)
	if err := r.ExtendHeaders(headers); err != nil {
		return nil, err
	}
	c.resp = r
	c.generation++
	gen := c.generation
	return func(data []byte) error {
		if gen != c.generation {
			return ErrStaleWrite
		}
		return c.Write(data)
	}, nil
}

// Write implements the write(data) callable (spec §4.5 "write(data)").
func (c *Cycle) Write(data []byte) error {
	if c.resp == nil {
		werr.Bug("write called before start_response")
	}
	if !c.headersSent {
		if err := c.ensureBodyInstalled(); err != nil {
			return err
		}
		if _, err := c.conn.Write(c.resp.HeadersData()); err != nil {
			return err
		}
		c.headersSent = true
	}
	if c.resp.Chunked() {
		if _, err := c.conn.Write(response.FrameChunk(data)); err != nil {
			return err
		}
		if len(data) == 0 {
			c.chunkTerminated = true
		}
		return nil
	}
	_, err := c.conn.Write(data)
	return err
}

// ensureBodyInstalled installs a placeholder body if the application
// is streaming via Write without ever calling set_body: body length
// is unknown upfront, so the response is forced onto chunked framing
// (spec §4.5: "if no body set, install a single-element body").
func (c *Cycle) ensureBodyInstalled() error {
	if c.resp.BodySet() {
		return nil
	}
	if !c.resp.Headers().Has("TRANSFER-ENCODING") && !c.resp.Headers().Has("CONTENT-LENGTH") {
		c.resp.ForceChunked()
	}
	return c.resp.SetBody(nil)
}

// negotiateEncoding applies a negotiated Content-Encoding to a
// fully-buffered body (spec SPEC_FULL.md §11 domain stack: gzip/br via
// compress.Blocks). It defers to the application whenever it has
// already taken a position on framing or encoding.
func (c *Cycle) negotiateEncoding(blocks [][]byte) ([][]byte, error) {
	if c.resp == nil {
		return blocks, nil
	}
	h := c.resp.Headers()
	if h.Has("CONTENT-ENCODING") || h.Has("CONTENT-LENGTH") || h.Has("TRANSFER-ENCODING") {
		return blocks, nil
	}
	acceptEncoding, _ := c.req.Headers.Get("ACCEPT-ENCODING")
	coding := compress.Negotiate(acceptEncoding)
	if coding == compress.None {
		return blocks, nil
	}
	compressed, err := compress.Blocks(blocks, coding)
	if err != nil {
		return nil, err
	}
	if err := c.resp.ExtendHeaders(header.Fields{}.Append("Content-Encoding", string(coding))); err != nil {
		return nil, err
	}
	return compressed, nil
}

// Flush completes the response after the application's body iterable
// is exhausted: it forces headers out for a body-less response, and
// emits the chunked terminator if Write never saw an empty block.
func (c *Cycle) Flush() error {
	if c.resp == nil {
		werr.Bug("flush called before start_response")
	}
	if !c.headersSent {
		if err := c.Write(nil); err != nil {
			return err
		}
	}
	if c.resp.Chunked() && !c.chunkTerminated {
		if _, err := c.conn.Write(response.ChunkTerminator()); err != nil {
			return err
		}
		c.chunkTerminated = true
	}
	return nil
}

// HandleRequest invokes app, installs its returned blocks as the
// response body (if the application never called write() to do so
// itself), streams each block out, then flushes framing (spec §4.5
// "handle_request()").
func (c *Cycle) HandleRequest(env wsgienv.Environ, app App) error {
	blocks, err := app(env, c.StartResponse)
	if err != nil {
		return err
	}
	if c.resp != nil && !c.resp.BodySet() {
		blocks, err = c.negotiateEncoding(blocks)
		if err != nil {
			return err
		}
		if err := c.resp.SetBody(blocks); err != nil {
			return err
		}
	}
	for _, b := range blocks {
		if err := c.Write(b); err != nil {
			return err
		}
	}
	return c.Flush()
}
