//go:build !unix

package service

import (
	"github.com/database64128/regdomain/registry"
	"go.uber.org/zap"
)

type reloadNotifier struct{}

func newReloadNotifier(_ *zap.Logger, _ *registry.Holder) reloadNotifier {
	return reloadNotifier{}
}

func (*reloadNotifier) start() {}
func (*reloadNotifier) stop()  {}
