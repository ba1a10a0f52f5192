// Package errwriter implements the WSGI error stream (spec §4.7,
// component C8): a write-only fan-out sink that tolerates encoding
// failures and silently drops writes after close.
//
// Grounded on original_source/python-web-server/web_server/wsgi.py's
// WSGIErrorStream (a io.RawIOBase fan-out over sub_streams, re-encoding
// to UTF-8 on UnicodeError); no fasthttp analogue exists since
// fasthttp has no WSGI-style error channel.
package errwriter

import (
	"io"
	"unicode/utf8"
)

// Writer fans write calls out to every configured sink, tolerating a
// sink that rejects non-UTF-8 bytes by re-encoding first.
type Writer struct {
	sinks  []io.Writer
	closed bool
}

// New builds a Writer over the given sinks (e.g. os.Stderr, a log
// file). Order is preserved; a write failure on one sink does not
// prevent writes to the others.
func New(sinks ...io.Writer) *Writer {
	return &Writer{sinks: sinks}
}

// Write fans data out to every sink. Writes after Close are silently
// dropped, mirroring the original's close-then-write tolerance.
func (w *Writer) Write(data []byte) (int, error) {
	if w.closed {
		return len(data), nil
	}
	encoded := make([]byte, 0, len(data))
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size == 1 {
			encoded = append(encoded, "�"...)
		} else {
			encoded = append(encoded, data[i:i+size]...)
		}
		i += size
	}
	for _, sink := range w.sinks {
		_, _ = sink.Write(encoded)
	}
	return len(data), nil
}

// WriteLines writes each line in sequence via Write.
func (w *Writer) WriteLines(lines [][]byte) error {
	for _, line := range lines {
		if _, err := w.Write(line); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes every sink that exposes a Flush method; a no-op for
// sinks that don't, and for a closed Writer.
func (w *Writer) Flush() {
	if w.closed {
		return
	}
	for _, sink := range w.sinks {
		if f, ok := sink.(interface{ Flush() error }); ok {
			_ = f.Flush()
		}
	}
}

// Close is idempotent.
func (w *Writer) Close() error {
	w.closed = true
	return nil
}
