package core

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/net/idna"

	"github.com/searchktools/statichost/config"
	"github.com/searchktools/statichost/core/static"
	"github.com/searchktools/statichost/logging"
)

// Host is one virtual server: a hostname bound to a socket address and
// a sandboxed handler. Hosts are built once at startup and shared
// read-only between the listener and its workers.
type Host struct {
	Hostname string
	Addr     *net.TCPAddr
	Dir      string // canonical content directory; "" for executable stubs
	Handler  static.Handler
}

// DiscoverHosts builds one host per immediate subdirectory of the
// content root (the subdirectory name is the hostname) and one 501
// stub per executable file. A host whose name fails to resolve or
// whose directory is inaccessible is dropped with a warning; a bad
// host never stops the others.
func DiscoverHosts(cfg *config.Config, log *logging.Logger) ([]*Host, error) {
	entries, err := os.ReadDir(cfg.Directory)
	if err != nil {
		return nil, fmt.Errorf("failed to read content root: %w", err)
	}

	var hosts []*Host
	for _, e := range entries {
		name := e.Name()
		switch {
		case e.IsDir():
			dir, err := filepath.EvalSymlinks(filepath.Join(cfg.Directory, name))
			if err != nil {
				log.Warn("host %s: error accessing directory; ignoring: %v", name, err)
				continue
			}
			if _, err := os.ReadDir(dir); err != nil {
				log.Warn("host %s: directory inaccessible; ignoring: %v", name, err)
				continue
			}
			addr := resolveHostAddr(name, cfg.Port, log)
			if addr == nil {
				continue
			}
			hosts = append(hosts, &Host{
				Hostname: name,
				Addr:     addr,
				Dir:      dir,
				Handler: &static.Dir{
					ContentDir: dir,
					GlobalRoot: cfg.Directory,
					Hostname:   name,
					Port:       cfg.Port,
					Files:      fileCache,
					Log:        log,
				},
			})
		case e.Type().IsRegular():
			info, err := e.Info()
			if err != nil || info.Mode()&0o111 == 0 {
				continue
			}
			addr := resolveHostAddr(name, cfg.Port, log)
			if addr == nil {
				continue
			}
			hosts = append(hosts, &Host{
				Hostname: name,
				Addr:     addr,
				Handler:  &static.ExecStub{GlobalRoot: cfg.Directory, Log: log},
			})
		}
	}
	return hosts, nil
}

// resolveHostAddr resolves hostname:port at startup. Unicode directory
// names go through IDNA first so internationalized hostnames resolve
// by their punycode form.
func resolveHostAddr(hostname string, port int, log *logging.Logger) *net.TCPAddr {
	ascii, err := idna.Lookup.ToASCII(hostname)
	if err != nil {
		log.Warn("host %s: invalid hostname; ignoring: %v", hostname, err)
		return nil
	}
	addr, err := net.ResolveTCPAddr("tcp", net.JoinHostPort(ascii, strconv.Itoa(port)))
	if err != nil {
		log.Warn("host %s: address does not resolve; ignoring: %v", hostname, err)
		return nil
	}
	return addr
}
