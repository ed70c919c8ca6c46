package http

import (
	"errors"
	"net"
	"time"
)

// Terminal outcomes of one read-request attempt, alongside ErrSyntax
// and ErrTooManyHeaders from the parser. ErrConnectionClosed is a
// normal end of a keep-alive connection, not a failure.
var (
	ErrConnectionClosed = errors.New("connection closed by peer")
	ErrTimeout          = errors.New("request read timed out")
)

const (
	// initialHeaderCapacity is the header table size of the first
	// parse attempt; it doubles on ErrTooManyHeaders up to the
	// configured maximum.
	initialHeaderCapacity = 16

	scratchSize = 1024
)

// ReadRequest reads socket bytes until they form one complete request
// head, driving the parser after every read. The read deadline is set
// once, before the first read, so a trickling request is bounded by
// the keep-alive timeout rather than refreshed per chunk.
func ReadRequest(conn net.Conn, keepAlive time.Duration, maxHeaders int) (*Request, error) {
	if err := conn.SetReadDeadline(time.Now().Add(keepAlive)); err != nil {
		return nil, ErrConnectionClosed
	}

	scratch := make([]byte, scratchSize)
	buf := make([]byte, 0, scratchSize)
	for {
		n, err := conn.Read(scratch)
		if n > 0 {
			buf = append(buf, scratch[:n]...)
			req, done, perr := tryParse(buf, maxHeaders)
			if perr != nil {
				return nil, perr
			}
			if done {
				return req, nil
			}
		}
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				return nil, ErrTimeout
			}
			// EOF, resets and the like all end the connection.
			return nil, ErrConnectionClosed
		}
	}
}

// tryParse runs the parser over the accumulated buffer, growing the
// header capacity while the parser keeps reporting overflow. Growth is
// capped at maxHeaders; overflowing the cap is terminal, which keeps a
// header flood from growing the table without bound.
func tryParse(buf []byte, maxHeaders int) (*Request, bool, error) {
	capacity := initialHeaderCapacity
	if capacity > maxHeaders {
		capacity = maxHeaders
	}
	for {
		req, _, err := Parse(capacity, buf)
		switch {
		case err == nil:
			if _, err := req.ContentLength(); err != nil {
				return nil, false, ErrSyntax
			}
			return req, true, nil
		case errors.Is(err, ErrPartial):
			return nil, false, nil
		case errors.Is(err, ErrTooManyHeaders):
			if capacity >= maxHeaders {
				return nil, false, ErrTooManyHeaders
			}
			capacity *= 2
			if capacity > maxHeaders {
				capacity = maxHeaders
			}
		default:
			return nil, false, ErrSyntax
		}
	}
}
