//go:build unix

package service

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/database64128/regdomain/registry"
	"go.uber.org/zap"
)

type reloadNotifier struct {
	sigCh  chan os.Signal
	logger *zap.Logger
	holder *registry.Holder
}

func newReloadNotifier(logger *zap.Logger, holder *registry.Holder) reloadNotifier {
	return reloadNotifier{
		sigCh:  make(chan os.Signal, 1),
		logger: logger,
		holder: holder,
	}
}

func (rn *reloadNotifier) start() {
	signal.Notify(rn.sigCh, syscall.SIGUSR1)
	go func() {
		for range rn.sigCh {
			reloadRegistry(rn.logger, rn.holder)
		}
	}()
}

func (rn *reloadNotifier) stop() {
	signal.Stop(rn.sigCh)
	close(rn.sigCh)
}
