package http

import (
	"os"
	"sort"
	"strconv"
)

// Reason phrases for every status this server can produce. 414 and 505
// are in the table but no handler emits them yet.
var statusText = map[int]string{
	200: "OK",
	301: "Moved Permanently",
	400: "Bad Request",
	403: "Forbidden",
	404: "Not Found",
	405: "Method Not Allowed",
	408: "Request Timeout",
	414: "URI Too Long",
	500: "Internal Server Error",
	501: "Not Implemented",
	505: "HTTP Version Not Supported",
}

// StatusText returns the reason phrase for a status code.
func StatusText(code int) string {
	return statusText[code]
}

// Response is one HTTP/1.1 response being assembled. The body is
// either in-memory bytes or a reference to a file streamed by the
// connection writer; never both. Header names and values are trusted
// as given; callers must not pass CR/LF in either.
type Response struct {
	Status  int
	Headers map[string]string
	Body    []byte

	// File-backed body, already open. The connection writer streams it
	// after the head; FileSize is what Content-Length reports. The file
	// may be shared between connections and is never closed here.
	File     *os.File
	FileSize int64
}

// NewResponse returns an empty response with the given status.
func NewResponse(status int) *Response {
	return &Response{
		Status:  status,
		Headers: make(map[string]string, 5),
	}
}

// SetHeader sets a response header, replacing any previous value.
func (r *Response) SetHeader(name, value string) {
	r.Headers[name] = value
}

// SetContent attaches an in-memory body and keeps Content-Length in
// step with it.
func (r *Response) SetContent(body []byte) {
	r.Body = body
	r.File = nil
	r.FileSize = 0
	r.SetHeader("Content-Length", strconv.Itoa(len(body)))
}

// SetFile attaches an open file as the body. The bytes are streamed by
// the connection writer; Content-Length is derived here.
func (r *Response) SetFile(f *os.File, size int64) {
	r.Body = nil
	r.File = f
	r.FileSize = size
	r.SetHeader("Content-Length", strconv.FormatInt(size, 10))
}

// Head returns a copy of the response with the body stripped and every
// header kept, including the Content-Length the GET body would have.
func (r *Response) Head() *Response {
	h := NewResponse(r.Status)
	for k, v := range r.Headers {
		h.Headers[k] = v
	}
	return h
}

// StatusLine returns the status line without its terminator.
func (r *Response) StatusLine() string {
	line := "HTTP/1.1 " + strconv.Itoa(r.Status)
	if text := StatusText(r.Status); text != "" {
		line += " " + text
	}
	return line
}

// RenderHead serializes the status line and headers, ending with the
// blank line. Headers are written in sorted order; clients don't care,
// tests do.
func (r *Response) RenderHead() []byte {
	names := make([]string, 0, len(r.Headers))
	for name := range r.Headers {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]byte, 0, 256)
	out = append(out, r.StatusLine()...)
	out = append(out, '\r', '\n')
	for _, name := range names {
		out = append(out, name...)
		out = append(out, ':', ' ')
		out = append(out, r.Headers[name]...)
		out = append(out, '\r', '\n')
	}
	return append(out, '\r', '\n')
}

// Render serializes the full response: head plus any in-memory body.
// A file-backed body is not included here; the connection writer
// streams it after the head.
func (r *Response) Render() []byte {
	return append(r.RenderHead(), r.Body...)
}
