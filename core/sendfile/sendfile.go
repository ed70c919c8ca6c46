// Package sendfile streams file bodies to sockets, using the
// zero-copy sendfile syscall when the destination is a TCP connection
// and plain copying otherwise. Open files are kept in a small LRU
// cache so repeated requests for the same resource skip the open.
package sendfile

import (
	"container/list"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// Cache is an LRU cache of open files keyed by path.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	order   *list.List // front = most recently used
	max     int
}

type entry struct {
	file  *os.File
	size  int64
	mtime time.Time
	elem  *list.Element
}

// NewCache returns a cache holding at most max open files.
func NewCache(max int) *Cache {
	return &Cache{
		entries: make(map[string]*entry, max),
		order:   list.New(),
		max:     max,
	}
}

// Get returns an open file and its size, opening and caching it on a
// miss. A hit is revalidated against the path's current size and
// mtime, so a file replaced on disk is reopened rather than served
// from the stale descriptor. Cached files are shared between
// connections; callers must not close them or use their file offset.
func (c *Cache) Get(path string) (*os.File, int64, error) {
	c.mu.Lock()
	if e, ok := c.entries[path]; ok {
		info, err := os.Stat(path)
		if err == nil && info.Size() == e.size && info.ModTime().Equal(e.mtime) {
			c.order.MoveToFront(e.elem)
			c.mu.Unlock()
			return e.file, e.size, nil
		}
		c.evict(path, e)
	}
	c.mu.Unlock()

	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[path]; ok {
		// Lost the race to another connection; use its entry.
		f.Close()
		c.order.MoveToFront(e.elem)
		return e.file, e.size, nil
	}
	e := &entry{file: f, size: info.Size(), mtime: info.ModTime()}
	e.elem = c.order.PushFront(path)
	c.entries[path] = e
	if c.order.Len() > c.max {
		oldest := c.order.Back()
		path := oldest.Value.(string)
		c.evict(path, c.entries[path])
	}
	return e.file, e.size, nil
}

// evict removes one entry. Callers hold c.mu.
func (c *Cache) evict(path string, e *entry) {
	e.file.Close()
	delete(c.entries, path)
	c.order.Remove(e.elem)
}

// Close closes every cached file and empties the cache.
func (c *Cache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		e.file.Close()
	}
	c.entries = make(map[string]*entry)
	c.order.Init()
}

// Send writes size bytes of f to conn, after any response head the
// caller has already written. f is typically shared with other
// connections; Send never moves its file offset.
func Send(conn net.Conn, f *os.File, size int64) error {
	if tcp, ok := conn.(*net.TCPConn); ok {
		return sendTCP(tcp, f, size)
	}
	// net.Pipe and friends: positional reads keep the shared file
	// offset untouched.
	_, err := io.Copy(conn, io.NewSectionReader(f, 0, size))
	return err
}

func sendTCP(tcp *net.TCPConn, f *os.File, size int64) error {
	rc, err := tcp.SyscallConn()
	if err != nil {
		return err
	}
	var offset int64
	var sendErr error
	werr := rc.Write(func(fd uintptr) bool {
		for offset < size {
			n, err := unix.Sendfile(int(fd), int(f.Fd()), &offset, int(size-offset))
			switch err {
			case nil:
				if n == 0 {
					sendErr = fmt.Errorf("sendfile: file truncated at %d/%d bytes", offset, size)
					return true
				}
			case unix.EINTR:
				continue
			case unix.EAGAIN:
				// Socket buffer full; wait until writable.
				return false
			default:
				sendErr = err
				return true
			}
		}
		return true
	})
	if sendErr != nil {
		return sendErr
	}
	return werr
}
