package message

import (
	"errors"
	"io"
	"net"
	"syscall"

	"github.com/wsgox/wsgox/bufreader"
	"github.com/wsgox/wsgox/header"
)

// Iterator yields successive requests from one accepted connection
// (spec §4.2's parse() sequence for pipelined requests).
type Iterator struct {
	r      *bufreader.Reader
	p      *Parser
	closed bool
}

// NewIterator builds an Iterator over r. Returns ErrNotImplemented if
// cfg requests obsolete line folding.
func NewIterator(r *bufreader.Reader, cfg Config) (*Iterator, error) {
	p, err := NewParser(r, cfg)
	if err != nil {
		return nil, err
	}
	return &Iterator{r: r, p: p}, nil
}

// Next returns the next request, or (nil, io.EOF) once the connection
// is done: keep-alive exhausted (ShouldClose held after the previous
// request), the peer closed, or a transient non-blocking condition was
// observed (spec §4.2, §5 "Cancellation and timeouts").
func (it *Iterator) Next() (*Request, error) {
	if it.closed {
		return nil, io.EOF
	}

	one := 1
	peek, err := it.r.Read(&one)
	if err != nil {
		it.closed = true
		var ne net.Error
		if (errors.As(err, &ne) && ne.Timeout()) || errors.Is(err, syscall.EAGAIN) || errors.Is(err, syscall.EINTR) {
			return nil, io.EOF
		}
		return nil, err
	}
	if len(peek) == 0 {
		it.closed = true
		return nil, io.EOF
	}
	if err := it.r.Unread(len(peek)); err != nil {
		it.closed = true
		return nil, err
	}

	req, err := it.p.parseOne()
	if err != nil {
		it.closed = true
		return nil, err
	}
	if ShouldClose(req) {
		it.closed = true
	}
	return req, nil
}

// ShouldClose implements spec §4.2's keep-alive table.
func ShouldClose(req *Request) bool {
	conn, ok := req.Headers.Get("CONNECTION")
	switch {
	case ok && header.ContainsToken(conn, "close"):
		return true
	case ok && header.ContainsToken(conn, "keep-alive"):
		return false
	default:
		return req.Major == 1 && req.Minor == 0
	}
}
