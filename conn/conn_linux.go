package conn

import (
	"fmt"

	"golang.org/x/sys/unix"
)

func setFwmark(fd, fwmark int) error {
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_MARK, fwmark); err != nil {
		return fmt.Errorf("failed to set socket option SO_MARK: %w", err)
	}
	return nil
}

func setReusePort(fd int) error {
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEPORT, 1); err != nil {
		return fmt.Errorf("failed to set socket option SO_REUSEPORT: %w", err)
	}
	return nil
}

func (opts ListenerSocketOptions) controlFuncs() (fns []func(fd int) error) {
	if opts.Fwmark != 0 {
		fns = append(fns, func(fd int) error {
			return setFwmark(fd, opts.Fwmark)
		})
	}
	if opts.ReusePort {
		fns = append(fns, setReusePort)
	}
	return
}
