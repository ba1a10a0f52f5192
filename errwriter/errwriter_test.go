package errwriter

import (
	"bytes"
	"testing"
)

func TestWriteFansOutToEverySink(t *testing.T) {
	var a, b bytes.Buffer
	w := New(&a, &b)
	if _, err := w.Write([]byte("hello")); err != nil {
		t.Fatal(err)
	}
	if a.String() != "hello" || b.String() != "hello" {
		t.Fatalf("got %q %q", a.String(), b.String())
	}
}

func TestWriteAfterCloseIsDropped(t *testing.T) {
	var a bytes.Buffer
	w := New(&a)
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte("late")); err != nil {
		t.Fatal(err)
	}
	if a.Len() != 0 {
		t.Fatalf("expected dropped write, got %q", a.String())
	}
}

func TestWriteReplacesInvalidUTF8(t *testing.T) {
	var a bytes.Buffer
	w := New(&a)
	if _, err := w.Write([]byte("ok\xff\xfebad")); err != nil {
		t.Fatal(err)
	}
	want := "ok��bad"
	if a.String() != want {
		t.Fatalf("got %q, want %q", a.String(), want)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	w := New()
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
}
