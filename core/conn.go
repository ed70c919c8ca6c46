package core

import (
	"errors"
	"net"

	"github.com/searchktools/statichost/config"
	"github.com/searchktools/statichost/core/http"
	"github.com/searchktools/statichost/core/sendfile"
	"github.com/searchktools/statichost/logging"
)

// fileCache is shared by every host in the process. Only 200 bodies
// stream through it; error pages are small and read directly.
var fileCache = sendfile.NewCache(256)

// handleConn runs the request/response loop for one accepted
// connection: read a request, resolve it, write the response, then
// keep the connection or close it.
func handleConn(conn net.Conn, host *Host, cfg *config.Config, log *logging.Logger) {
	defer conn.Close()
	peer := conn.RemoteAddr()
	log.Info("%s: %s connected", host.Hostname, peer)

	for {
		var resp *http.Response
		closeAfter := false

		req, err := http.ReadRequest(conn, cfg.KeepAliveTimeout(), cfg.MaxHeaders)
		switch {
		case err == nil:
			log.Info("%s: %s %s %s", host.Hostname, peer, req.Method, req.Path)
			resp, closeAfter = host.Handler.Handle(req)
		case errors.Is(err, http.ErrConnectionClosed):
			log.Info("%s: %s disconnected", host.Hostname, peer)
			return
		case errors.Is(err, http.ErrTimeout):
			resp = host.Handler.ErrorResponse(408)
			closeAfter = true
		default:
			// Syntax errors and header floods leave the stream in an
			// unknown state; it is not safely resumable.
			resp = host.Handler.ErrorResponse(400)
			closeAfter = true
		}

		if closeAfter {
			resp.SetHeader("Connection", "close")
		} else {
			resp.SetHeader("Connection", "keep-alive")
		}
		if err := writeResponse(conn, resp); err != nil {
			log.Error("%s: %s: error writing response: %v", host.Hostname, peer, err)
			return
		}
		log.Info("%s: %s responded %s", host.Hostname, peer, resp.StatusLine())

		if closeAfter {
			log.Info("%s: %s disconnected", host.Hostname, peer)
			return
		}
	}
}

// writeResponse puts the rendered head and in-memory body on the wire,
// then streams a file-backed body when the response carries one. The
// file is already open; nothing on this path can change the status.
func writeResponse(conn net.Conn, resp *http.Response) error {
	if _, err := conn.Write(resp.Render()); err != nil {
		return err
	}
	if resp.File != nil {
		return sendfile.Send(conn, resp.File, resp.FileSize)
	}
	return nil
}
