package body

import "testing"

func TestLengthReadExhaustion(t *testing.T) {
	l := NewLength([]byte("abc"))
	out, err := l.Read(10)
	if err != nil || string(out) != "abc" {
		t.Fatalf("out=%q err=%v", out, err)
	}
	out, err = l.Read(10)
	if err != nil || len(out) != 0 {
		t.Fatalf("expected empty after exhaustion, got %q err=%v", out, err)
	}
}

func TestReadNegativeSizeIsError(t *testing.T) {
	l := NewLength([]byte("abc"))
	if _, err := l.Read(-1); err != ErrNegativeSize {
		t.Fatalf("expected ErrNegativeSize, got %v", err)
	}
}

func TestReadZeroIsEmpty(t *testing.T) {
	l := NewLength([]byte("abc"))
	out, err := l.Read(0)
	if err != nil || len(out) != 0 {
		t.Fatalf("out=%q err=%v", out, err)
	}
}

func TestReadAllNegativeMeansEverything(t *testing.T) {
	l := NewLength([]byte("hello world"))
	first := l.ReadAll(5)
	if string(first) != "hello" {
		t.Fatalf("got %q", first)
	}
	rest := l.ReadAll(-1)
	if string(rest) != " world" {
		t.Fatalf("got %q", rest)
	}
}

func TestReadLineSplitsOnNewline(t *testing.T) {
	l := NewLength([]byte("line one\nline two\n"))
	first := l.ReadLine(-1)
	if string(first) != "line one\n" {
		t.Fatalf("got %q", first)
	}
	second := l.ReadLine(-1)
	if string(second) != "line two\n" {
		t.Fatalf("got %q", second)
	}
}

func TestReadLinesAggregatesWithHint(t *testing.T) {
	l := NewLength([]byte("a\nb\nc\n"))
	lines := l.ReadLines(2)
	if len(lines) != 2 || string(lines[0]) != "a\n" || string(lines[1]) != "b\n" {
		t.Fatalf("unexpected lines: %#v", lines)
	}
}

func TestEOFEmptyByDefault(t *testing.T) {
	e := NewEOF(nil)
	out, err := e.Read(10)
	if err != nil || len(out) != 0 {
		t.Fatalf("out=%q err=%v", out, err)
	}
}
