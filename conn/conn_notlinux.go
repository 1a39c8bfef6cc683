//go:build !linux

package conn

func (opts ListenerSocketOptions) controlFuncs() []func(fd int) error {
	return nil
}
