// Package wsgienv builds the application-facing environment mapping
// from a parsed request (spec §4.6, component C7).
//
// Grounded on original_source/python-web-server/web_server/wsgi.py's
// WSGIEnviron and tests/test_wsgi_environ.py's literal key/value
// expectations; the key set the spec names but does not enumerate
// comes from here.
package wsgienv

import (
	"strconv"
	"strings"

	"github.com/wsgox/wsgox/body"
	"github.com/wsgox/wsgox/errwriter"
	"github.com/wsgox/wsgox/header"
	"github.com/wsgox/wsgox/message"
	"github.com/wsgox/wsgox/werr"
)

// Environ is the CGI-style mapping passed as the first argument to an
// App (spec §4.6). Values are deliberately untyped, the Go analogue of
// Python's environ dict: strings for CGI keys, and the wsgi.* keys
// hold the body reader, error sink and protocol flags.
type Environ map[string]any

// Server names the listening address an Environ's SERVER_NAME/PORT are
// derived from.
type Server struct {
	Name string
	Port string
}

// Build constructs an Environ for req, splitting its path against
// scriptName (spec.md §6's script_name configuration option). A path
// that does not start with scriptName is a ConfigurationProblem.
func Build(req *message.Request, srv Server, scriptName string, errs *errwriter.Writer) (Environ, error) {
	scriptName, pathInfo, err := ParsePath(req.Path, scriptName)
	if err != nil {
		return nil, err
	}

	env := Environ{
		"REQUEST_METHOD":    req.Method,
		"SCRIPT_NAME":       scriptName,
		"PATH_INFO":         pathInfo,
		"QUERY_STRING":      req.Query,
		"SERVER_NAME":       srv.Name,
		"SERVER_PORT":       srv.Port,
		"SERVER_PROTOCOL":   "HTTP/" + strconv.Itoa(req.Major) + "." + strconv.Itoa(req.Minor),
		"REMOTE_ADDR":       "",
		"wsgi.version":      [2]int{1, 1},
		"wsgi.url_scheme":   "http",
		"wsgi.input":        req.Body,
		"wsgi.errors":       errs,
		"wsgi.multithread":  false,
		"wsgi.multiprocess": false,
		"wsgi.run_once":     false,
	}

	joined := map[string][]string{}
	order := []string{}
	for _, f := range req.Headers {
		key := httpKey(f.Name)
		if _, seen := joined[key]; !seen {
			order = append(order, key)
		}
		joined[key] = append(joined[key], f.Value)
	}
	for _, key := range order {
		env[key] = strings.Join(joined[key], ",")
	}

	return env, nil
}

// SetRemoteAddr supplements the environ with the accepted connection's
// peer address once known (not derivable from the request itself).
func SetRemoteAddr(env Environ, addr, port string) {
	env["REMOTE_ADDR"] = addr
	env["REMOTE_PORT"] = port
}

// httpKey rekeys a NAME_UPPER header field into its WSGI environ key:
// CONTENT_TYPE and CONTENT_LENGTH keep their bare form, everything
// else gets the HTTP_ prefix (spec §4.6).
func httpKey(nameUpper string) string {
	underscored := strings.ReplaceAll(nameUpper, "-", "_")
	switch underscored {
	case "CONTENT_TYPE", "CONTENT_LENGTH":
		return underscored
	default:
		return "HTTP_" + underscored
	}
}

// ParsePath splits path into (script_name, path_info) against the
// configured scriptName prefix (spec §4.6's parse_path). A path that
// does not carry scriptName as a prefix is a ConfigurationProblem.
func ParsePath(path, scriptName string) (string, string, error) {
	if scriptName == "" {
		return "", path, nil
	}
	if !strings.HasPrefix(path, scriptName) {
		return "", "", werr.Newf(werr.ConfigurationProblem, "script_name %q is not a prefix of path %q", scriptName, path)
	}
	return scriptName, path[len(scriptName):], nil
}

// Input is the wsgi.input contract: the request body reader (Read,
// ReadAll, ReadLine, ReadLines). It has no separate iterator.
type Input = body.Reader

// Headers reconstructs the ordered (name, value) pairs used by the
// environment's HTTP_* rekeying, exposed for callers that want the
// pre-join view instead of the comma-joined environ string.
func Headers(req *message.Request) header.Fields { return req.Headers }
