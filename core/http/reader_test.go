package http

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"
)

func writeAll(t *testing.T, conn net.Conn, data string) {
	t.Helper()
	go func() {
		conn.Write([]byte(data))
	}()
}

func TestReadRequestSimple(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	writeAll(t, client, "GET /a HTTP/1.1\r\nHost: h\r\n\r\n")

	req, err := ReadRequest(server, time.Second, 512)
	if err != nil {
		t.Fatalf("ReadRequest failed: %v", err)
	}
	if req.Method != "GET" || req.Path != "/a" {
		t.Errorf("Expected GET /a, got %s %s", req.Method, req.Path)
	}
}

func TestReadRequestSplitAcrossReads(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go func() {
		chunks := []string{"GET /split HT", "TP/1.1\r\nHo", "st: h\r", "\n\r\n"}
		for _, c := range chunks {
			client.Write([]byte(c))
			time.Sleep(5 * time.Millisecond)
		}
	}()

	req, err := ReadRequest(server, time.Second, 512)
	if err != nil {
		t.Fatalf("ReadRequest failed: %v", err)
	}
	if req.Path != "/split" {
		t.Errorf("Expected path /split, got %s", req.Path)
	}
	if req.HeaderString("Host") != "h" {
		t.Errorf("Expected Host h, got %q", req.HeaderString("Host"))
	}
}

func TestReadRequestConnectionClosed(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	client.Close()

	_, err := ReadRequest(server, time.Second, 512)
	if !errors.Is(err, ErrConnectionClosed) {
		t.Errorf("Expected ErrConnectionClosed, got %v", err)
	}
}

func TestReadRequestTimeout(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	start := time.Now()
	_, err := ReadRequest(server, 50*time.Millisecond, 512)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("Expected ErrTimeout, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Timeout took too long: %v", elapsed)
	}
}

// The deadline covers the whole request, not each chunk: a client
// trickling bytes cannot keep the read alive forever.
func TestReadRequestDeadlineNotRefreshed(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go func() {
		for {
			if _, err := client.Write([]byte("X")); err != nil {
				return
			}
			time.Sleep(20 * time.Millisecond)
		}
	}()

	_, err := ReadRequest(server, 100*time.Millisecond, 512)
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("Expected ErrTimeout for trickled request, got %v", err)
	}
}

func requestWithHeaders(n int) string {
	var b strings.Builder
	b.WriteString("GET / HTTP/1.1\r\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "X-H%d: v\r\n", i)
	}
	b.WriteString("\r\n")
	return b.String()
}

func TestReadRequestHeaderGrowth(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	// 40 headers: needs the 16 -> 32 -> 64 capacity doubling.
	writeAll(t, client, requestWithHeaders(40))

	req, err := ReadRequest(server, time.Second, 512)
	if err != nil {
		t.Fatalf("ReadRequest failed: %v", err)
	}
	if len(req.Headers) != 40 {
		t.Errorf("Expected 40 headers, got %d", len(req.Headers))
	}
}

func TestReadRequestTooManyHeaders(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	writeAll(t, client, requestWithHeaders(40))

	_, err := ReadRequest(server, time.Second, 20)
	if !errors.Is(err, ErrTooManyHeaders) {
		t.Errorf("Expected ErrTooManyHeaders with max 20, got %v", err)
	}
}

func TestReadRequestBadSyntax(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	writeAll(t, client, "GET / FTP/9\r\n\r\n")

	_, err := ReadRequest(server, time.Second, 512)
	if !errors.Is(err, ErrSyntax) {
		t.Errorf("Expected ErrSyntax, got %v", err)
	}
}

func TestReadRequestBadContentLength(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	writeAll(t, client, "GET / HTTP/1.1\r\nContent-Length: banana\r\n\r\n")

	_, err := ReadRequest(server, time.Second, 512)
	if !errors.Is(err, ErrSyntax) {
		t.Errorf("Expected ErrSyntax for bad Content-Length, got %v", err)
	}
}
