package http

import (
	"bytes"
	"errors"
)

// Parse outcomes. ErrPartial means the buffer does not yet hold a
// complete request head; the caller should read more bytes and retry.
// ErrTooManyHeaders is distinct from ErrSyntax so the caller can retry
// with a larger header capacity instead of failing the request.
var (
	ErrPartial        = errors.New("incomplete request head")
	ErrTooManyHeaders = errors.New("too many headers")
	ErrSyntax         = errors.New("malformed request")
)

type headerField struct {
	name  string
	value []byte
}

// Parse reads one request head (request line, headers, empty line)
// from buf. headerCap bounds how many header fields this attempt
// accepts; a buffer holding more header lines fails with
// ErrTooManyHeaders. Parse keeps no state between attempts and never
// writes to buf, so retrying on a grown buffer is just calling it
// again. On success it also returns the number of bytes consumed up
// to and including the head terminator.
func Parse(headerCap int, buf []byte) (*Request, int, error) {
	line, off, ok := nextLine(buf, 0)
	if !ok {
		return nil, 0, ErrPartial
	}
	method, path, proto, err := parseRequestLine(line)
	if err != nil {
		return nil, 0, err
	}

	fields := make([]headerField, 0, headerCap)
	for {
		line, next, ok := nextLine(buf, off)
		if !ok {
			return nil, 0, ErrPartial
		}
		off = next
		if len(line) == 0 {
			break
		}
		if len(fields) == headerCap {
			return nil, 0, ErrTooManyHeaders
		}
		name, value, err := parseHeaderLine(line)
		if err != nil {
			return nil, 0, err
		}
		fields = append(fields, headerField{name, value})
	}

	req := &Request{
		Method:  method,
		Path:    path,
		Proto:   proto,
		Headers: make(map[string][]byte, len(fields)),
	}
	for _, f := range fields {
		req.SetHeader(f.name, f.value)
	}
	return req, off, nil
}

// nextLine returns the line starting at off without its terminator.
// Lines end in "\r\n", or a bare "\n" from sloppy clients.
func nextLine(buf []byte, off int) (line []byte, next int, ok bool) {
	i := bytes.IndexByte(buf[off:], '\n')
	if i < 0 {
		return nil, 0, false
	}
	line = buf[off : off+i]
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}
	return line, off + i + 1, true
}

func parseRequestLine(line []byte) (method, path, proto string, err error) {
	sp1 := bytes.IndexByte(line, ' ')
	if sp1 <= 0 {
		return "", "", "", ErrSyntax
	}
	sp2 := bytes.IndexByte(line[sp1+1:], ' ')
	if sp2 <= 0 {
		return "", "", "", ErrSyntax
	}
	sp2 += sp1 + 1

	if !isToken(line[:sp1]) || !isTarget(line[sp1+1:sp2]) {
		return "", "", "", ErrSyntax
	}
	switch v := string(line[sp2+1:]); v {
	case "HTTP/1.0", "HTTP/1.1":
		proto = v
	default:
		return "", "", "", ErrSyntax
	}
	return string(line[:sp1]), string(line[sp1+1 : sp2]), proto, nil
}

func parseHeaderLine(line []byte) (name string, value []byte, err error) {
	colon := bytes.IndexByte(line, ':')
	if colon <= 0 || !isToken(line[:colon]) {
		return "", nil, ErrSyntax
	}
	v := bytes.TrimSpace(line[colon+1:])
	// Values are copied out so requests stay valid after the read
	// buffer is grown or reused.
	value = make([]byte, len(v))
	copy(value, v)
	return string(line[:colon]), value, nil
}

// isToken reports whether b is a valid RFC 7230 token (method and
// header names).
func isToken(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	for _, c := range b {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		default:
			switch c {
			case '!', '#', '$', '%', '&', '\'', '*', '+', '-', '.',
				'^', '_', '`', '|', '~':
			default:
				return false
			}
		}
	}
	return true
}

// isTarget reports whether b is a plausible request target: non-empty
// visible ASCII. Anything stricter is the resolver's problem.
func isTarget(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	for _, c := range b {
		if c <= ' ' || c == 0x7f {
			return false
		}
	}
	return true
}
