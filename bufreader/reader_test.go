package bufreader

import (
	"bytes"
	"io"
	"testing"
)

func TestReadUntilFindsDelim(t *testing.T) {
	r := New(bytes.NewBufferString("GET / HTTP/1.1\r\nHost: x\r\n\r\n"), 0)
	line, err := r.ReadUntil([]byte("\r\n"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if string(line) != "GET / HTTP/1.1\r\n" {
		t.Fatalf("got %q", line)
	}
	line, err = r.ReadUntil([]byte("\r\n"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if string(line) != "Host: x\r\n" {
		t.Fatalf("got %q", line)
	}
}

func TestReadUntilLimit(t *testing.T) {
	big := bytes.Repeat([]byte("a"), 100)
	r := New(bytes.NewReader(append(big, '\r', '\n')), 0)
	limit := 10
	out, err := r.ReadUntil([]byte("\r\n"), &limit)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 10 {
		t.Fatalf("expected exactly limit bytes, got %d", len(out))
	}
}

func TestReadUntilEOF(t *testing.T) {
	r := New(bytes.NewBufferString("no delimiter here"), 0)
	out, err := r.ReadUntil([]byte("\r\n"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "no delimiter here" {
		t.Fatalf("got %q", out)
	}
}

func TestReadUntilEmptyDelim(t *testing.T) {
	r := New(bytes.NewBufferString("x"), 0)
	if _, err := r.ReadUntil(nil, nil); err != ErrEmptyDelim {
		t.Fatalf("expected ErrEmptyDelim, got %v", err)
	}
}

func TestReadNegativeSize(t *testing.T) {
	r := New(bytes.NewBufferString("x"), 0)
	n := -1
	if _, err := r.Read(&n); err != ErrNegativeSize {
		t.Fatalf("expected ErrNegativeSize, got %v", err)
	}
}

func TestReadZero(t *testing.T) {
	r := New(bytes.NewBufferString("hello"), 0)
	n := 0
	out, err := r.Read(&n)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 0 {
		t.Fatalf("expected empty read, got %q", out)
	}
}

func TestIdempotentUnread(t *testing.T) {
	r := New(bytes.NewBufferString("0123456789"), 0)
	n := 6
	first, err := r.Read(&n)
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != "012345" {
		t.Fatalf("got %q", first)
	}
	if err := r.Unread(3); err != nil {
		t.Fatal(err)
	}
	k := 3
	second, err := r.Read(&k)
	if err != nil {
		t.Fatal(err)
	}
	if string(second) != "345" {
		t.Fatalf("expected last 3 bytes of original prefix, got %q", second)
	}
}

func TestUnreadClampsAtZero(t *testing.T) {
	r := New(bytes.NewBufferString("abc"), 0)
	if err := r.Unread(100); err != nil {
		t.Fatal(err)
	}
	n := 3
	out, err := r.Read(&n)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "abc" {
		t.Fatalf("got %q", out)
	}
}

func TestChunkEmptyOnEOF(t *testing.T) {
	r := New(bytes.NewReader(nil), 4)
	b, err := r.Chunk()
	if err != nil {
		t.Fatal(err)
	}
	if len(b) != 0 {
		t.Fatalf("expected empty chunk on EOF, got %q", b)
	}
}

func TestReadExhaustionReturnsEmpty(t *testing.T) {
	r := New(bytes.NewBufferString("ab"), 0)
	n := 10
	out, err := r.Read(&n)
	if err != nil || string(out) != "ab" {
		t.Fatalf("out=%q err=%v", out, err)
	}
	out, err = r.Read(&n)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 0 {
		t.Fatalf("expected empty after exhaustion, got %q", out)
	}
	out, err = r.Read(&n)
	if err != nil || len(out) != 0 {
		t.Fatalf("expected to keep returning empty, got %q err=%v", out, err)
	}
}

var _ io.Reader = (*bytes.Buffer)(nil)
