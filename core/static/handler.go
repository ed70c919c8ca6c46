// Package static resolves request paths inside a host's content
// directory and builds the responses for them.
package static

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"

	"github.com/searchktools/statichost/core/http"
	"github.com/searchktools/statichost/core/sendfile"
	"github.com/searchktools/statichost/logging"
)

// Handler answers requests for one host.
type Handler interface {
	// Handle builds the response for one request and reports whether
	// the connection must close after it is sent.
	Handle(req *http.Request) (*http.Response, bool)
	// ErrorResponse builds a response for status with the host's
	// error pages applied.
	ErrorResponse(status int) *http.Response
}

// Dir serves files from one host's content directory. Only GET and
// HEAD are routed; the method set is closed, so this is a switch
// rather than a handler registry.
type Dir struct {
	ContentDir string // canonical
	GlobalRoot string // canonical content root, for error-page fallback
	Hostname   string
	Port       int
	Files      *sendfile.Cache
	Log        *logging.Logger
}

// Handle implements Handler.
func (d *Dir) Handle(req *http.Request) (*http.Response, bool) {
	closeConn := req.WantsClose()
	switch req.Method {
	case "GET":
		return d.get(req), closeConn
	case "HEAD":
		return d.get(req).Head(), closeConn
	default:
		resp := d.ErrorResponse(405)
		resp.SetHeader("Allow", "GET, HEAD")
		return resp, closeConn
	}
}

func (d *Dir) get(req *http.Request) *http.Response {
	res, err := Resolve(d.ContentDir, req.Path)
	if err != nil {
		d.Log.Error("%s: resolving %s: %v", d.Hostname, req.Path, err)
		return d.ErrorResponse(500)
	}
	switch res.Status {
	case StatusNonExistent:
		return d.ErrorResponse(404)
	case StatusOutOfRange:
		return d.ErrorResponse(403)
	case StatusIsDirectory:
		return d.redirect(res)
	}

	// The file is acquired before the 200 is built: once the head is
	// on the wire the status cannot be amended, so an unopenable file
	// has to fail here, as a 500.
	f, size, err := d.Files.Get(res.Path)
	if err != nil {
		d.Log.Error("%s: opening %s: %v", d.Hostname, res.Path, err)
		return d.ErrorResponse(500)
	}

	resp := http.NewResponse(200)
	resp.SetHeader("Content-Type", ContentType(res.Path))
	resp.SetFile(f, size)
	return resp
}

// redirect points a directory request at its index.html. Directory
// listings are not served.
func (d *Dir) redirect(res Resolution) *http.Response {
	resp := http.NewResponse(301)
	hostport := net.JoinHostPort(d.Hostname, strconv.Itoa(d.Port))
	resp.SetHeader("Location", fmt.Sprintf("http://%s%s/index.html", hostport, res.Rel))
	resp.SetContent(nil)
	return resp
}

// ErrorResponse implements Handler.
func (d *Dir) ErrorResponse(status int) *http.Response {
	return errorResponse(status, d.ContentDir, d.GlobalRoot, d.Log)
}

// errorResponse applies the two-level error page precedence: the
// host's own <code>.html wins over one at the content root, and with
// neither present a short inline body is substituted.
func errorResponse(status int, hostDir, globalRoot string, log *logging.Logger) *http.Response {
	resp := http.NewResponse(status)
	name := strconv.Itoa(status) + ".html"
	for _, dir := range []string{hostDir, globalRoot} {
		if dir == "" {
			continue
		}
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err != nil || info.IsDir() {
			continue
		}
		body, err := os.ReadFile(path)
		if err != nil {
			log.Warn("error page %s unreadable: %v", path, err)
			continue
		}
		resp.SetContent(body)
		resp.SetHeader("Content-Type", "text/html; charset=utf-8")
		return resp
	}
	resp.SetContent([]byte(fmt.Sprintf("Error: %d %s", status, http.StatusText(status))))
	resp.SetHeader("Content-Type", "text/plain; charset=utf-8")
	return resp
}

// ExecStub stands in for hosts backed by an executable. Dynamic hosts
// are not implemented; every request gets a 501 and the connection
// closes.
type ExecStub struct {
	GlobalRoot string
	Log        *logging.Logger
}

// Handle implements Handler.
func (s *ExecStub) Handle(req *http.Request) (*http.Response, bool) {
	resp := http.NewResponse(501)
	resp.SetContent([]byte("Dynamic hosts are not supported"))
	resp.SetHeader("Content-Type", "text/plain; charset=utf-8")
	return resp, true
}

// ErrorResponse implements Handler.
func (s *ExecStub) ErrorResponse(status int) *http.Response {
	return errorResponse(status, "", s.GlobalRoot, s.Log)
}
