/*
Statichost is a multi-host static HTTP/1.1 server.

Every immediate subdirectory of a content root becomes a virtual host:
the subdirectory name is the hostname, resolved and bound at startup,
and the subdirectory is that host's document root. Requests are
sandboxed to the host's directory: a request path is canonicalized
(symlinks and ".." resolved) and must still sit under the content
directory, or it is refused with a 403.

Usage:

	statichost [flags] <content-root>

Flags:

	-port         port content is served on (default 8080)
	-keep-alive   keep-alive timeout in seconds (default 2)
	-max-headers  maximum number of request headers (default 512)
	-workers      concurrent connections per host (default 4)
	-log-dir      directory for JSON log files (default "logs")
	-config       optional YAML config file; explicit flags win

Only GET and HEAD are served; other methods get a 405 with an Allow
header. A request for a directory is answered with a 301 to the
directory's index.html. Error responses use a custom <status>.html
page from the host's directory, falling back to one at the content
root, then to a built-in text body.

Modules:

  - config: flag and YAML configuration
  - logging: console plus JSON-file log sink
  - core/http: request parsing, the per-connection reader, responses
  - core/static: path resolution, sandboxing, and file handlers
  - core/sendfile: zero-copy file bodies with an open-file cache
  - core/pools: the bounded per-host connection worker pool
  - core: host discovery, per-host listeners, connection loop
  - app: process lifecycle and graceful shutdown
*/
package main
