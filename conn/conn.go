// Package conn builds TCP listeners with socket options applied.
package conn

import (
	"context"
	"net"
	"syscall"

	"github.com/database64128/tfo-go/v2"
)

// ListenerSocketOptions contains listener-specific socket options.
type ListenerSocketOptions struct {
	// Fwmark sets the listener's fwmark on Linux.
	//
	// Available on Linux.
	Fwmark int

	// FastOpenBacklog specifies the maximum number of pending TFO connections on Linux.
	// If the value is 0, Go std's listen(2) backlog is used.
	FastOpenBacklog int

	// ReusePort enables SO_REUSEPORT on the listener.
	//
	// Available on Linux.
	ReusePort bool

	// FastOpen enables TCP Fast Open on the listener.
	//
	// Available on Linux, macOS, FreeBSD, and Windows.
	FastOpen bool
}

// ListenConfig returns a [tfo.ListenConfig] with the options applied.
func (opts ListenerSocketOptions) ListenConfig() tfo.ListenConfig {
	lc := tfo.ListenConfig{
		DisableTFO: !opts.FastOpen,
		Backlog:    opts.FastOpenBacklog,
	}

	if fns := opts.controlFuncs(); len(fns) > 0 {
		lc.Control = func(network, address string, c syscall.RawConn) (err error) {
			if cerr := c.Control(func(fd uintptr) {
				for _, fn := range fns {
					if err = fn(int(fd)); err != nil {
						return
					}
				}
			}); cerr != nil {
				return cerr
			}
			return
		}
	}

	return lc
}

// Listen announces on the local network address with the options applied.
func (opts ListenerSocketOptions) Listen(ctx context.Context, network, address string) (net.Listener, error) {
	lc := opts.ListenConfig()
	return lc.Listen(ctx, network, address)
}
