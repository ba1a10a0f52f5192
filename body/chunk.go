package body

import (
	"bytes"
	"strconv"

	"github.com/wsgox/wsgox/bufreader"
	"github.com/wsgox/wsgox/header"
	"github.com/wsgox/wsgox/werr"
)

// Chunk is one decoded chunk yielded by the Chunk generator (spec
// §4.3's "Chunk generator").
type Chunk struct {
	Data []byte
	Size int
}

// parseChunked runs the Chunk generator to exhaustion, concatenating
// payloads and capturing trailers from the terminating zero chunk.
// Grounded on fasthttp's readBodyChunked (http.go) and parseChunkSize/
// readHexInt (bytesconv.go), adapted to the buffered reader's
// ReadUntil instead of bufio.Reader.ReadByte.
func parseChunked(r *bufreader.Reader) (Reader, error) {
	var data []byte
	var trailers header.Fields

	for {
		c, err := nextChunk(r)
		if err != nil {
			return nil, err
		}
		if c.Size == 0 {
			trailers, err = readTrailers(r)
			if err != nil {
				return nil, err
			}
			break
		}
		data = append(data, c.Data...)
	}
	return NewChunked(data, trailers), nil
}

func nextChunk(r *bufreader.Reader) (Chunk, error) {
	size, err := readChunkSize(r)
	if err != nil {
		return Chunk{}, err
	}
	if size == 0 {
		return Chunk{Size: 0}, nil
	}
	payload, err := readExact(r, size)
	if err != nil {
		return Chunk{}, err
	}
	trailing, err := readExact(r, len(crlf))
	if err != nil {
		return Chunk{}, err
	}
	if !bytes.Equal(trailing, crlf) {
		return Chunk{}, werr.New(werr.InvalidHeader, "missing CRLF after chunk data")
	}
	return Chunk{Data: payload, Size: size}, nil
}

// readChunkSize parses the hex size line, stripping chunk extensions
// after ';' (spec §4.3 step 1).
func readChunkSize(r *bufreader.Reader) (int, error) {
	line, err := r.ReadUntil(crlf, nil)
	if err != nil {
		return 0, err
	}
	if !bytes.HasSuffix(line, crlf) {
		return 0, werr.New(werr.NoMoreData, "truncated chunk size line")
	}
	sizePart := bytes.TrimSuffix(line, crlf)
	if idx := bytes.IndexByte(sizePart, ';'); idx >= 0 {
		sizePart = sizePart[:idx]
	}
	if len(sizePart) == 0 || !isHex(sizePart) {
		return 0, werr.New(werr.InvalidChunkSize, string(sizePart))
	}
	n, err := strconv.ParseInt(string(sizePart), 16, 64)
	if err != nil {
		return 0, werr.New(werr.InvalidChunkSize, string(sizePart))
	}
	return int(n), nil
}

func isHex(b []byte) bool {
	for _, c := range b {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// readTrailers reads "Name:Value" lines until a blank CRLF line (spec
// §4.3 step 4).
func readTrailers(r *bufreader.Reader) (header.Fields, error) {
	var trailers header.Fields
	for {
		line, err := r.ReadUntil(crlf, nil)
		if err != nil {
			return nil, err
		}
		if !bytes.HasSuffix(line, crlf) {
			return nil, werr.New(werr.NoMoreData, "truncated trailer")
		}
		trimmed := bytes.TrimSuffix(line, crlf)
		if len(trimmed) == 0 {
			return trailers, nil
		}
		name, value, ok := header.SplitLine(trimmed)
		if !ok {
			return nil, werr.New(werr.InvalidHeader, "malformed trailer")
		}
		if !header.IsToken(name) {
			return nil, werr.New(werr.InvalidHeaderName, name)
		}
		trailers = trailers.Append(name, value)
	}
}
