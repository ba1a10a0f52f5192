package body

import (
	"bytes"
	"testing"

	"github.com/wsgox/wsgox/bufreader"
	"github.com/wsgox/wsgox/header"
	"github.com/wsgox/wsgox/werr"
)

func headers(pairs ...string) header.Fields {
	var fs header.Fields
	for i := 0; i < len(pairs); i += 2 {
		fs = fs.Append(pairs[i], pairs[i+1])
	}
	return fs
}

func TestSelectLength(t *testing.T) {
	r := bufreader.New(bytes.NewBufferString("Hello, World!"), 0)
	h := headers("CONTENT-LENGTH", "13")
	rdr, err := Select(r, 1, 1, h, false)
	if err != nil {
		t.Fatal(err)
	}
	out, err := rdr.Read(100)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "Hello, World!" {
		t.Fatalf("got %q", out)
	}
}

func TestSelectChunked(t *testing.T) {
	r := bufreader.New(bytes.NewBufferString("5\r\nhello\r\n0\r\n\r\n"), 0)
	h := headers("TRANSFER-ENCODING", "chunked")
	rdr, err := Select(r, 1, 1, h, false)
	if err != nil {
		t.Fatal(err)
	}
	out, _ := rdr.Read(100)
	if string(out) != "hello" {
		t.Fatalf("got %q", out)
	}
}

func TestSelectChunkedWithTrailers(t *testing.T) {
	r := bufreader.New(bytes.NewBufferString("5\r\nhello\r\n0\r\nX-Trailer: v\r\n\r\n"), 0)
	h := headers("TRANSFER-ENCODING", "chunked")
	rdr, err := Select(r, 1, 1, h, false)
	if err != nil {
		t.Fatal(err)
	}
	tr := rdr.Trailers()
	if len(tr) != 1 || tr[0].Name != "X-TRAILER" || tr[0].Value != "v" {
		t.Fatalf("unexpected trailers: %#v", tr)
	}
}

func TestSelectNoFramingHeadersIsEmpty(t *testing.T) {
	r := bufreader.New(bytes.NewBufferString(""), 0)
	rdr, err := Select(r, 1, 1, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	out, err := rdr.Read(10)
	if err != nil || len(out) != 0 {
		t.Fatalf("expected empty body, got %q err=%v", out, err)
	}
}

func TestSelectSmugglingGuard(t *testing.T) {
	r := bufreader.New(bytes.NewBufferString(""), 0)
	h := headers("TRANSFER-ENCODING", "chunked", "CONTENT-LENGTH", "5")
	_, err := Select(r, 1, 1, h, false)
	if !werr.Is(err, werr.InvalidHeader) {
		t.Fatalf("expected InvalidHeader, got %v", err)
	}
}

func TestSelectChunkedUnderHTTP10Rejected(t *testing.T) {
	r := bufreader.New(bytes.NewBufferString(""), 0)
	h := headers("TRANSFER-ENCODING", "chunked")
	_, err := Select(r, 1, 0, h, false)
	if !werr.Is(err, werr.InvalidHeader) {
		t.Fatalf("expected InvalidHeader, got %v", err)
	}
}

func TestChunkSizeGrammarErrors(t *testing.T) {
	cases := []string{"-5\r\n", "t\r\n", "\r\n"}
	for _, c := range cases {
		r := bufreader.New(bytes.NewBufferString(c), 0)
		h := headers("TRANSFER-ENCODING", "chunked")
		_, err := Select(r, 1, 1, h, false)
		if !werr.Is(err, werr.InvalidChunkSize) {
			t.Fatalf("case %q: expected InvalidChunkSize, got %v", c, err)
		}
	}
}

func TestUnsupportedTransferCoding(t *testing.T) {
	r := bufreader.New(bytes.NewBufferString(""), 0)
	h := headers("TRANSFER-ENCODING", "bogus")
	_, err := Select(r, 1, 1, h, false)
	if !werr.Is(err, werr.UnsupportedTransferCoding) {
		t.Fatalf("expected UnsupportedTransferCoding, got %v", err)
	}
}

func TestTEGzipKnownButUndecodable(t *testing.T) {
	r := bufreader.New(bytes.NewBufferString(""), 0)
	h := headers("TRANSFER-ENCODING", "gzip")
	_, err := Select(r, 1, 1, h, false)
	if !werr.Is(err, werr.InvalidHeader) {
		t.Fatalf("expected InvalidHeader, got %v", err)
	}
}

func TestLengthReaderConsumesDoubleCRLFSentinel(t *testing.T) {
	r := bufreader.New(bytes.NewBufferString("hi\r\n\r\nGET / HTTP/1.1\r\n\r\n"), 0)
	h := headers("CONTENT-LENGTH", "2")
	rdr, err := Select(r, 1, 1, h, false)
	if err != nil {
		t.Fatal(err)
	}
	out, _ := rdr.Read(10)
	if string(out) != "hi" {
		t.Fatalf("got %q", out)
	}
	rest, _ := r.ReadUntil([]byte("\r\n"), nil)
	if string(rest) != "GET / HTTP/1.1\r\n" {
		t.Fatalf("sentinel wasn't consumed correctly, next line = %q", rest)
	}
}
