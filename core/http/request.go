package http

import (
	"errors"
	"strconv"
	"strings"
)

// ErrBadContentLength reports a Content-Length header whose value is
// not a non-negative integer.
var ErrBadContentLength = errors.New("invalid Content-Length")

// Request is one parsed HTTP request head. Header names keep the case
// they arrived with; a repeated header keeps only the last value.
type Request struct {
	Method  string
	Path    string
	Proto   string // "HTTP/1.0" or "HTTP/1.1"
	Headers map[string][]byte
}

// SetHeader stores a header value under name, replacing any value
// stored under a case-variant of the same name.
func (r *Request) SetHeader(name string, value []byte) {
	if r.Headers == nil {
		r.Headers = make(map[string][]byte)
	}
	for k := range r.Headers {
		if strings.EqualFold(k, name) {
			delete(r.Headers, k)
			break
		}
	}
	r.Headers[name] = value
}

// Header looks up a header by name, ignoring case.
func (r *Request) Header(name string) ([]byte, bool) {
	if v, ok := r.Headers[name]; ok {
		return v, true
	}
	for k, v := range r.Headers {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return nil, false
}

// HeaderString returns a header value as a string, or "" when the
// header is absent.
func (r *Request) HeaderString(name string) string {
	v, _ := r.Header(name)
	return string(v)
}

// ContentLength parses the Content-Length header. It returns 0 when
// the header is absent and ErrBadContentLength when the value is not
// a non-negative integer.
func (r *Request) ContentLength() (int64, error) {
	v, ok := r.Header("Content-Length")
	if !ok {
		return 0, nil
	}
	n, err := strconv.ParseInt(string(v), 10, 64)
	if err != nil || n < 0 {
		return 0, ErrBadContentLength
	}
	return n, nil
}

// WantsClose reports whether the client asked for the connection to be
// closed after this request. HTTP/1.0 connections are never reused.
func (r *Request) WantsClose() bool {
	if r.Proto == "HTTP/1.0" {
		return true
	}
	return strings.EqualFold(r.HeaderString("Connection"), "close")
}
