package message

import (
	"bytes"
	"strings"

	"github.com/wsgox/wsgox/body"
	"github.com/wsgox/wsgox/bufreader"
	"github.com/wsgox/wsgox/header"
	"github.com/wsgox/wsgox/werr"
)

var crlf = []byte("\r\n")

// ErrNotImplemented is returned by NewParser when the config requests
// obsolete line folding (spec §9's final Open Question bullet).
var ErrNotImplemented = werr.New(werr.ConfigurationProblem, "permit_obsolete_folding: not implemented")

// Parser parses requests off a buffered reader (spec §4.2).
type Parser struct {
	r   *bufreader.Reader
	cfg Config
}

// NewParser builds a Parser. Returns ErrNotImplemented if
// cfg.PermitObsoleteFolding is set.
func NewParser(r *bufreader.Reader, cfg Config) (*Parser, error) {
	if cfg.PermitObsoleteFolding {
		return nil, ErrNotImplemented
	}
	return &Parser{r: r, cfg: cfg.normalize()}, nil
}

// parseOne parses one full request, including its body reader.
func (p *Parser) parseOne() (*Request, error) {
	method, target, major, minor, err := p.parseRequestLine()
	if err != nil {
		return nil, err
	}
	headers, err := p.parseHeaders()
	if err != nil {
		return nil, err
	}
	path, query, fragment := splitTarget(target)

	b, err := body.Select(p.r, major, minor, headers, p.cfg.CloseDelimitedEmptyBody)
	if err != nil {
		return nil, err
	}

	req := &Request{
		Method: method, Path: path, Query: query, Fragment: fragment,
		Major: major, Minor: minor, Headers: headers, Body: b,
	}
	req.Trailers = b.Trailers()
	return req, nil
}

func (p *Parser) parseRequestLine() (method, target string, major, minor int, err error) {
	limit := p.cfg.LimitRequestLine
	line, rerr := p.r.ReadUntil(crlf, &limit)
	if rerr != nil {
		return "", "", 0, 0, werr.Wrap(werr.InvalidRequestLine, "cannot read request line", rerr)
	}
	if len(line) == 0 {
		return "", "", 0, 0, werr.New(werr.InvalidRequestLine, "empty request line")
	}
	if !bytes.HasSuffix(line, crlf) {
		return "", "", 0, 0, werr.New(werr.LimitRequestLine, "request line exceeds limit")
	}

	trimmed := string(bytes.TrimSuffix(line, crlf))
	parts := strings.Split(trimmed, " ")
	if len(parts) != 3 {
		return "", "", 0, 0, werr.New(werr.InvalidRequestLine, "expected method, target and version")
	}
	method, target, versionStr := parts[0], parts[1], parts[2]

	if err := validateMethod(method, p.cfg.PermitUnconventionalHTTPMethod); err != nil {
		return "", "", 0, 0, err
	}
	if target == "" {
		return "", "", 0, 0, werr.New(werr.InvalidRequestLine, "empty request target")
	}
	major, minor, err = parseVersion(versionStr, p.cfg.PermitUnconventionalHTTPVersion)
	if err != nil {
		return "", "", 0, 0, err
	}
	return method, target, major, minor, nil
}

func validateMethod(m string, permit bool) error {
	if !permit {
		for i := 0; i < len(m); i++ {
			c := m[i]
			if (c >= 'a' && c <= 'z') || c == '#' {
				return werr.New(werr.InvalidRequestMethod, m)
			}
		}
		if len(m) < 3 || len(m) > 20 {
			return werr.New(werr.InvalidRequestMethod, m)
		}
	}
	if !header.IsToken(m) {
		return werr.New(werr.InvalidRequestMethod, m)
	}
	return nil
}

func (p *Parser) parseHeaders() (header.Fields, error) {
	var fields header.Fields
	count := 0
	for {
		if count >= p.cfg.LimitRequestFields {
			return nil, werr.New(werr.LimitRequestHeaders, "too many header fields")
		}
		line, err := p.r.ReadUntil(crlf, nil)
		if err != nil {
			return nil, werr.Wrap(werr.NoMoreData, "cannot read header line", err)
		}
		if !bytes.HasSuffix(line, crlf) {
			return nil, werr.New(werr.NoMoreData, "truncated header line")
		}
		if bytes.Equal(line, crlf) {
			return fields, nil
		}
		if len(line) > p.cfg.LimitRequestFieldSize {
			return nil, werr.New(werr.LimitRequestHeaders, "header line exceeds limit")
		}

		trimmed := bytes.TrimSuffix(line, crlf)
		name, value, ok := header.SplitLine(trimmed)
		if !ok {
			return nil, werr.New(werr.InvalidHeader, string(trimmed))
		}
		if !header.IsToken(name) {
			return nil, werr.New(werr.InvalidHeaderName, name)
		}
		if !header.IsValidValue(value) {
			return nil, werr.New(werr.InvalidHeader, name)
		}
		fields = fields.Append(name, value)
		count++
	}
}
