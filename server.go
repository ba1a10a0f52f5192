package wsgox

import (
	"errors"
	"io"
	"log"
	"net"
	"os"
	"sync/atomic"
	"time"

	"github.com/valyala/tcplisten"

	"github.com/wsgox/wsgox/bufreader"
	"github.com/wsgox/wsgox/cycle"
	"github.com/wsgox/wsgox/errwriter"
	"github.com/wsgox/wsgox/message"
	"github.com/wsgox/wsgox/response"
	"github.com/wsgox/wsgox/wsgienv"
)

// Logger is used for logging formatted messages (same one-method
// shape as fasthttp's Logger).
type Logger interface {
	Printf(format string, args ...interface{})
}

var defaultLogger = Logger(log.New(os.Stderr, "", log.LstdFlags))

// DefaultConcurrency is the default cap on connections served at once
// (spec §5: the core imposes no cross-connection ordering, but a
// runaway accept loop still needs a backstop).
const DefaultConcurrency = 64 * 1024

// Config collects the spec §6 enumerated tunables plus the knobs spec
// §9's final Open Question says to declare but never branch on.
type Config struct {
	LimitRequestLine                int
	LimitRequestFields              int
	LimitRequestFieldSize           int
	PermitUnconventionalHTTPMethod  bool
	PermitUnconventionalHTTPVersion bool
	ScriptName                      string

	// PermitObsoleteFolding, when true, makes every connection fail
	// immediately with message.ErrNotImplemented (spec §9).
	PermitObsoleteFolding bool

	// CloseDelimitedEmptyBody selects the EOF-reads-to-sentinel body
	// variant (spec §9's first Open Question); the default is the
	// spec's chosen EOF-over-empty.
	CloseDelimitedEmptyBody bool

	// Declared but not exercised by the core (spec §9's final bullet).
	ProxyProtocol      bool
	HeaderMap          bool
	CasefoldHTTPMethod bool

	// Concurrency caps the number of connections served at once. 0 or
	// negative selects DefaultConcurrency.
	Concurrency int
}

func (c Config) messageConfig() message.Config {
	return message.Config{
		LimitRequestLine:                c.LimitRequestLine,
		LimitRequestFields:              c.LimitRequestFields,
		LimitRequestFieldSize:           c.LimitRequestFieldSize,
		PermitUnconventionalHTTPMethod:  c.PermitUnconventionalHTTPMethod,
		PermitUnconventionalHTTPVersion: c.PermitUnconventionalHTTPVersion,
		PermitObsoleteFolding:           c.PermitObsoleteFolding,
		CloseDelimitedEmptyBody:         c.CloseDelimitedEmptyBody,
	}
}

func (c Config) concurrency() int32 {
	if c.Concurrency <= 0 {
		return DefaultConcurrency
	}
	return int32(c.Concurrency)
}

// Server runs a single application callable over the wsgox core: the
// buffered reader, request parser/iterator, environment adapter,
// cycle and response builder, wired end to end per spec §2's control
// flow.
type Server struct {
	Config

	// Name is the Server response header's product token.
	Name string

	// App is the application callable invoked per request.
	App cycle.App

	// Logger receives connection- and parse-level failures. Defaults
	// to a stdlib log.Logger over os.Stderr.
	Logger Logger

	// ErrorStream is the wsgi.errors sink handed to the application via
	// the environment. Defaults to a Writer over os.Stderr.
	ErrorStream *errwriter.Writer

	concurrency int32
}

func (s *Server) logger() Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return defaultLogger
}

func (s *Server) serverName() string {
	if s.Name != "" {
		return s.Name
	}
	return defaultServerName
}

func (s *Server) errorStream() *errwriter.Writer {
	if s.ErrorStream != nil {
		return s.ErrorStream
	}
	return errwriter.New(os.Stderr)
}

// ListenAndServe binds addr with SO_REUSEPORT (and TCP_DEFER_ACCEPT/
// TCP_FASTOPEN where supported) via tcplisten.Config, then Serves it.
func (s *Server) ListenAndServe(addr string) error {
	cfg := tcplisten.Config{
		ReusePort:   true,
		DeferAccept: true,
		FastOpen:    true,
	}
	ln, err := cfg.NewListener("tcp4", addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections from ln, handling each to completion on
// its own goroutine (spec §5: "Implementations may fan out
// connections across parallel tasks"). Serve blocks until ln returns a
// permanent error.
func (s *Server) Serve(ln net.Listener) error {
	maxConcurrency := s.Config.concurrency()
	for {
		conn, err := ln.Accept()
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				s.logger().Printf("temporary accept error: %s", netErr)
				time.Sleep(time.Second)
				continue
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		if atomic.AddInt32(&s.concurrency, 1) > maxConcurrency {
			atomic.AddInt32(&s.concurrency, -1)
			conn.Close()
			s.logger().Printf("connection refused: Concurrency=%d limit reached", maxConcurrency)
			continue
		}

		go func() {
			defer atomic.AddInt32(&s.concurrency, -1)
			s.serveConn(conn)
		}()
	}
}

// ServeConn serves HTTP requests from one already-accepted connection
// until should_close holds or the peer closes (spec §3 "Lifecycles",
// §5 "Ordering"). It always closes conn before returning.
func (s *Server) ServeConn(conn net.Conn) {
	s.serveConn(conn)
}

func (s *Server) serveConn(conn net.Conn) {
	defer conn.Close()

	host, port := splitHostPort(conn.LocalAddr())
	remoteHost, remotePort := splitHostPort(conn.RemoteAddr())

	r := bufreader.New(conn, 0)
	defer r.Release()

	it, err := message.NewIterator(r, s.Config.messageConfig())
	if err != nil {
		s.logger().Printf("cannot start connection: %s", err)
		return
	}

	for {
		req, err := it.Next()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.writeSynthetic(conn, response.BadRequest(err, s.serverName(), time.Now()))
				s.logger().Printf("parse error: %s", err)
			}
			return
		}

		env, err := wsgienv.Build(req, wsgienv.Server{Name: host, Port: port}, s.Config.ScriptName, s.errorStream())
		if err != nil {
			s.writeSynthetic(conn, response.BadRequest(err, s.serverName(), time.Now()))
			s.logger().Printf("environment build error: %s", err)
			return
		}
		wsgienv.SetRemoteAddr(env, remoteHost, remotePort)

		cyc := cycle.New(conn, req, s.serverName(), time.Now)
		if err := cyc.HandleRequest(env, s.App); err != nil {
			if cyc.HeadersSent() {
				s.logger().Printf("application error after headers sent, closing: %s", err)
				return
			}
			s.writeSynthetic(conn, response.InternalServerError(err, s.serverName(), time.Now()))
			s.logger().Printf("application error: %s", err)
			return
		}

		if message.ShouldClose(req) {
			return
		}
	}
}

func (s *Server) writeSynthetic(conn net.Conn, resp *response.Response) {
	if _, err := conn.Write(resp.HeadersData()); err != nil {
		return
	}
	for _, block := range resp.BodyStream() {
		if _, err := conn.Write(block); err != nil {
			return
		}
	}
}

func splitHostPort(addr net.Addr) (string, string) {
	if addr == nil {
		return "", ""
	}
	host, port, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String(), ""
	}
	return host, port
}
