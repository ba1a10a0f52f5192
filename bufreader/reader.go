// Package bufreader implements the buffered socket reader (spec §4.1,
// component C1): read(n), read_until(delim, limit), unread(n) and raw
// chunk() over a growable scratch buffer with a monotonic cursor.
//
// Grounded on andycostintoma-go-httpx's internal/netx CRLF-aware
// buffered reader and on fasthttp's bufio.Reader grow-on-demand
// pattern in http.go (appendBodyFixedSize, readBodyIdentity).
package bufreader

import (
	"bytes"
	"errors"
	"io"

	"github.com/valyala/bytebufferpool"
)

// DefaultMaxChunk is the default cap on a single chunk() pull (8 KiB,
// spec §3).
const DefaultMaxChunk = 8 * 1024

var (
	// ErrNegativeSize is returned by Read and Unread for a negative
	// size argument (spec §4.1's ValueError kind).
	ErrNegativeSize = errors.New("bufreader: size must be non-negative")
	// ErrEmptyDelim is returned by ReadUntil when delim is empty.
	ErrEmptyDelim = errors.New("bufreader: delim must be non-empty")
)

// Reader wraps an io.Reader byte source with a growable scratch buffer
// and a monotonic cursor, supporting look-ahead via Unread.
type Reader struct {
	src      io.Reader
	maxChunk int

	buf    *bytebufferpool.ByteBuffer
	cursor int
}

// New wraps src. maxChunk <= 0 uses DefaultMaxChunk.
func New(src io.Reader, maxChunk int) *Reader {
	if maxChunk <= 0 {
		maxChunk = DefaultMaxChunk
	}
	buf := bytebufferpool.Get()
	buf.Reset()
	return &Reader{
		src:      src,
		maxChunk: maxChunk,
		buf:      buf,
	}
}

// Release returns the scratch buffer to the shared pool. Call once the
// connection this Reader served is done (spec §3 lifecycle: reader +
// parser + body reader live until the connection closes).
func (r *Reader) Release() {
	bytebufferpool.Put(r.buf)
	r.buf = nil
}

// Chunk pulls at most maxChunk raw bytes from the underlying source,
// appending them to the scratch buffer, and returns the bytes just
// read. Returns an empty slice with a nil error on EOF.
func (r *Reader) Chunk() ([]byte, error) {
	tmp := make([]byte, r.maxChunk)
	n, err := r.src.Read(tmp)
	if n > 0 {
		r.buf.Write(tmp[:n])
	}
	if err != nil {
		if err == io.EOF {
			return tmp[:n], nil
		}
		return tmp[:n], err
	}
	return tmp[:n], nil
}

// Read returns up to n bytes, fetching one Chunk if the buffered slice
// would otherwise be empty. n == nil means "use maxChunk".
func (r *Reader) Read(n *int) ([]byte, error) {
	size := r.maxChunk
	if n != nil {
		if *n < 0 {
			return nil, ErrNegativeSize
		}
		size = *n
	}
	if size == 0 {
		return []byte{}, nil
	}
	if r.cursor >= r.buf.Len() {
		if _, err := r.Chunk(); err != nil {
			return nil, err
		}
	}
	avail := r.buf.Len() - r.cursor
	if avail <= 0 {
		return []byte{}, nil
	}
	take := size
	if take > avail {
		take = avail
	}
	out := make([]byte, take)
	copy(out, r.buf.B[r.cursor:r.cursor+take])
	r.cursor += take
	return out, nil
}

// ReadUntil returns bytes up to and including the first occurrence of
// delim, or up to limit bytes if delim is not found within limit
// (limit == nil means unbounded), or all remaining bytes on EOF.
func (r *Reader) ReadUntil(delim []byte, limit *int) ([]byte, error) {
	if len(delim) == 0 {
		return nil, ErrEmptyDelim
	}
	for {
		tail := r.buf.B[r.cursor:]
		searchable := tail
		if limit != nil && *limit < len(searchable) {
			searchable = searchable[:*limit]
		}
		if idx := bytes.Index(searchable, delim); idx >= 0 {
			end := idx + len(delim)
			out := make([]byte, end)
			copy(out, tail[:end])
			r.cursor += end
			return out, nil
		}
		if limit != nil && len(tail) >= *limit {
			out := make([]byte, *limit)
			copy(out, tail[:*limit])
			r.cursor += *limit
			return out, nil
		}
		chunk, err := r.Chunk()
		if err != nil {
			return nil, err
		}
		if len(chunk) == 0 {
			out := make([]byte, len(tail))
			copy(out, tail)
			r.cursor = r.buf.Len()
			return out, nil
		}
	}
}

// Unread rewinds the cursor by n bytes, clamped at 0.
func (r *Reader) Unread(n int) error {
	if n < 0 {
		return ErrNegativeSize
	}
	r.cursor -= n
	if r.cursor < 0 {
		r.cursor = 0
	}
	return nil
}

// Buffered reports how many bytes are currently available without a
// further Chunk() pull.
func (r *Reader) Buffered() int {
	return r.buf.Len() - r.cursor
}
