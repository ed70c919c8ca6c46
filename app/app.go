// Package app ties configuration, host discovery, and the per-host
// listeners into one server process.
package app

import (
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/searchktools/statichost/config"
	"github.com/searchktools/statichost/core"
	"github.com/searchktools/statichost/logging"
)

// App owns the set of hosts and their listeners, and fans the
// termination signal out to all of them.
type App struct {
	cfg       *config.Config
	log       *logging.Logger
	hosts     []*core.Host
	listeners []*core.Listener
	shutdown  sync.Once
}

// New discovers the hosts under the content root and prepares one
// listener per host.
func New(cfg *config.Config, log *logging.Logger) (*App, error) {
	hosts, err := core.DiscoverHosts(cfg, log)
	if err != nil {
		return nil, err
	}
	a := &App{cfg: cfg, log: log, hosts: hosts}
	for _, h := range hosts {
		a.listeners = append(a.listeners, core.NewListener(h, cfg, log))
	}
	return a, nil
}

// Run serves until every listener has stopped. SIGINT and SIGTERM
// trigger Shutdown.
func (a *App) Run() {
	if len(a.hosts) == 0 {
		a.log.Warn("no hosts under %s; nothing to serve", a.cfg.Directory)
		return
	}
	go a.awaitSignal()

	var wg sync.WaitGroup
	for _, l := range a.listeners {
		wg.Add(1)
		go func(l *core.Listener) {
			defer wg.Done()
			l.Run()
		}(l)
	}
	wg.Wait()
	a.log.Info("exiting")
}

// Shutdown stops every listener. Each gets its termination token,
// then a loopback connection: the accept loop only checks the token
// between accepts, so the dial wakes a listener parked in a blocking
// accept. Connections already being handled finish naturally.
func (a *App) Shutdown() {
	a.shutdown.Do(func() {
		a.log.Info("attempting to terminate listeners")
		for _, l := range a.listeners {
			l.Shutdown()
		}
		for _, h := range a.hosts {
			conn, err := net.DialTimeout("tcp", h.Addr.String(), time.Second)
			if err != nil {
				// Listener already gone, or never bound.
				continue
			}
			conn.Close()
		}
	})
}

func (a *App) awaitSignal() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	a.log.Info("signal received: %v; shutting down", sig)
	a.Shutdown()
}
