/*
Package wsgox implements the core of an HTTP/1.x origin server: a
wire-level message parser and body-framing engine, paired with a
response assembler and a WSGI-style application cycle.

wsgox provides:

  - A buffered reader with look-ahead/unread and delimiter search
    (bufreader), feeding a request-line and header parser (message)
    enforcing RFC 9110 token grammar and configurable size limits.
  - Three body-framing strategies (body): Content-Length, chunked
    transfer-coding with trailers, and close-delimited.
  - A response builder (response) under a draft -> status-set -> ready
    -> done typestate, with Content-Length or chunked framing and
    hop-by-hop header filtering.
  - A per-request cycle (cycle) binding a start_response/write
    application contract to the wire, and a CGI-style environment
    adapter (wsgienv) translating parsed requests into the mapping the
    application sees.

Out of scope: HTTP/2 or HTTP/3 framing, TLS termination, request
routing, multi-process orchestration, and any transfer-coding beyond
chunked/identity.
*/
package wsgox
