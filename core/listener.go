// Package core runs the per-host accept loops and connection handlers.
package core

import (
	"net"
	"strconv"
	"sync"

	"golang.org/x/net/netutil"

	"github.com/searchktools/statichost/config"
	"github.com/searchktools/statichost/core/pools"
	"github.com/searchktools/statichost/logging"
)

// Listener accepts connections for one host and dispatches them to a
// bounded worker pool.
type Listener struct {
	host *Host
	cfg  *config.Config
	log  *logging.Logger
	quit chan struct{}
	once sync.Once
}

// NewListener prepares a listener for host. Nothing is bound until Run.
func NewListener(host *Host, cfg *config.Config, log *logging.Logger) *Listener {
	return &Listener{
		host: host,
		cfg:  cfg,
		log:  log,
		quit: make(chan struct{}),
	}
}

// Shutdown delivers the termination token. The accept loop only
// checks it between accepts, so the supervisor also dials the host to
// wake an accept that is parked.
func (l *Listener) Shutdown() {
	l.once.Do(func() { close(l.quit) })
}

// Run binds the host's address and serves until Shutdown. A bind
// failure drops this host only. In-flight connections are left to
// finish; Run returns once the workers have drained.
func (l *Listener) Run() {
	ln, err := net.ListenTCP("tcp", l.host.Addr)
	if err != nil {
		l.log.Warn("%s: failed to bind %s: %v", l.host.Hostname, l.host.Addr, err)
		return
	}
	// The connection cap doubles as backpressure: once Workers
	// connections are open, Accept blocks until one of them closes.
	limited := netutil.LimitListener(ln, l.cfg.Workers)
	defer limited.Close()

	l.log.Info("%s: listening on http://%s (%s)",
		l.host.Hostname, net.JoinHostPort(l.host.Hostname, strconv.Itoa(l.cfg.Port)), l.host.Addr)

	pool := pools.NewConnPool(l.cfg.Workers, func(conn net.Conn) {
		handleConn(conn, l.host, l.cfg, l.log)
	})

	for {
		if l.closing() {
			break
		}
		conn, err := limited.Accept()
		if err != nil {
			if l.closing() {
				break
			}
			l.log.Error("%s: connection failed: %v", l.host.Hostname, err)
			continue
		}
		if l.closing() {
			// The supervisor's wake-up dial lands here.
			conn.Close()
			break
		}
		pool.Serve(conn)
	}

	l.log.Info("%s: closing listener", l.host.Hostname)
	pool.Close()
	pool.Wait()
}

func (l *Listener) closing() bool {
	select {
	case <-l.quit:
		return true
	default:
		return false
	}
}
