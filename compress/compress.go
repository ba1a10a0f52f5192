// Package compress negotiates and applies response content-coding
// (spec SPEC_FULL.md §11 domain stack: klauspost/compress,
// andybalholm/brotli), grounded on fasthttp's gzipBody/zstd.go
// acquire/release pooling pattern around a pooled bytebufferpool
// scratch buffer.
//
// Compression only ever applies to an already-fully-buffered response
// body (the cycle package's incremental write() path bypasses it
// entirely): a streaming chunked body has no single point to append a
// trailing compressor flush without buffering it all anyway, so this
// package never sees it.
package compress

import (
	"io"
	"strings"
	"sync"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/valyala/bytebufferpool"
)

// Coding is a negotiated Content-Encoding token.
type Coding string

const (
	None   Coding = ""
	Gzip   Coding = "gzip"
	Brotli Coding = "br"
)

// Negotiate picks a coding from a request's Accept-Encoding value. It
// prefers br over gzip when both are acceptable with an equal or
// better weight, and treats a missing/empty header, "identity", or
// "*;q=0" as None. Malformed q-values are treated as 1.
func Negotiate(acceptEncoding string) Coding {
	if acceptEncoding == "" {
		return None
	}
	weights := parseAcceptEncoding(acceptEncoding)
	best := None
	bestQ := 0.0
	for _, c := range [...]Coding{Brotli, Gzip} {
		q, ok := weights[string(c)]
		if !ok || q <= 0 {
			continue
		}
		if q > bestQ {
			best, bestQ = c, q
		}
	}
	return best
}

func parseAcceptEncoding(value string) map[string]float64 {
	out := make(map[string]float64)
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, q := part, 1.0
		if i := strings.IndexByte(part, ';'); i >= 0 {
			name = strings.TrimSpace(part[:i])
			if parsedQ, ok := parseQValue(part[i+1:]); ok {
				q = parsedQ
			}
		}
		out[strings.ToLower(name)] = q
	}
	return out
}

func parseQValue(params string) (float64, bool) {
	params = strings.TrimSpace(params)
	if !strings.HasPrefix(params, "q=") {
		return 0, false
	}
	v := strings.TrimSpace(params[len("q="):])
	var whole, frac int
	var fracDigits int
	i := 0
	for i < len(v) && v[i] >= '0' && v[i] <= '9' {
		whole = whole*10 + int(v[i]-'0')
		i++
	}
	if i == 0 {
		return 0, false
	}
	if i < len(v) && v[i] == '.' {
		i++
		for i < len(v) && v[i] >= '0' && v[i] <= '9' && fracDigits < 3 {
			frac = frac*10 + int(v[i]-'0')
			fracDigits++
			i++
		}
	}
	q := float64(whole)
	if fracDigits > 0 {
		div := 1.0
		for d := 0; d < fracDigits; d++ {
			div *= 10
		}
		q += float64(frac) / div
	}
	return q, true
}

var scratchPool bytebufferpool.Pool

var (
	gzipWriters   sync.Pool
	brotliWriters sync.Pool
)

func acquireGzipWriter(w io.Writer) *gzip.Writer {
	if v := gzipWriters.Get(); v != nil {
		zw := v.(*gzip.Writer)
		zw.Reset(w)
		return zw
	}
	zw, _ := gzip.NewWriterLevel(w, gzip.DefaultCompression)
	return zw
}

func releaseGzipWriter(zw *gzip.Writer) { gzipWriters.Put(zw) }

func acquireBrotliWriter(w io.Writer) *brotli.Writer {
	if v := brotliWriters.Get(); v != nil {
		bw := v.(*brotli.Writer)
		bw.Reset(w)
		return bw
	}
	return brotli.NewWriterLevel(w, brotli.DefaultCompression)
}

func releaseBrotliWriter(bw *brotli.Writer) { brotliWriters.Put(bw) }

// Blocks compresses body blocks under the given coding and returns a
// single framed block. None is a no-op returning blocks unchanged.
func Blocks(blocks [][]byte, coding Coding) ([][]byte, error) {
	if coding == None {
		return blocks, nil
	}

	scratch := scratchPool.Get()
	scratch.Reset()
	defer scratchPool.Put(scratch)

	var closeErr error
	switch coding {
	case Gzip:
		zw := acquireGzipWriter(scratch)
		for _, b := range blocks {
			if _, err := zw.Write(b); err != nil {
				releaseGzipWriter(zw)
				return nil, err
			}
		}
		closeErr = zw.Close()
		releaseGzipWriter(zw)
	case Brotli:
		bw := acquireBrotliWriter(scratch)
		for _, b := range blocks {
			if _, err := bw.Write(b); err != nil {
				releaseBrotliWriter(bw)
				return nil, err
			}
		}
		closeErr = bw.Close()
		releaseBrotliWriter(bw)
	default:
		return blocks, nil
	}
	if closeErr != nil {
		return nil, closeErr
	}

	out := make([]byte, len(scratch.B))
	copy(out, scratch.B)
	return [][]byte{out}, nil
}
