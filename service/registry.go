package service

import (
	"context"
	"sync"
	"time"

	"github.com/database64128/regdomain/registry"
	"go.uber.org/zap"
)

// registryService loads the suffix list on start and optionally reloads it on a timer.
type registryService struct {
	logger   *zap.Logger
	holder   *registry.Holder
	interval time.Duration
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

func newRegistryService(logger *zap.Logger, holder *registry.Holder, interval time.Duration) *registryService {
	return &registryService{
		logger:   logger,
		holder:   holder,
		interval: interval,
	}
}

// ZapField implements [regdomain.Service.ZapField].
func (s *registryService) ZapField() zap.Field {
	return zap.String("registry", s.holder.Config().Name)
}

// Start implements [regdomain.Service.Start].
func (s *registryService) Start(ctx context.Context) error {
	r, _, err := s.holder.Reload()
	if err != nil {
		return err
	}

	info := r.Info()
	s.logger.Info("Loaded suffix list",
		zap.String("name", info.Name),
		zap.String("path", s.holder.Config().Path),
		zap.Int("suffixes", info.Suffixes),
		zap.Int("slots", info.Slots),
		zap.String("fingerprint", info.Fingerprint),
	)

	if s.interval <= 0 {
		return nil
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				reloadRegistry(s.logger, s.holder)
			}
		}
	}()
	return nil
}

// Stop implements [regdomain.Service.Stop].
func (s *registryService) Stop() error {
	if s.cancel != nil {
		s.cancel()
		s.wg.Wait()
	}
	return nil
}

// reloadRegistry reloads the suffix list and logs the outcome.
func reloadRegistry(logger *zap.Logger, holder *registry.Holder) {
	name := holder.Config().Name
	r, changed, err := holder.Reload()
	if err != nil {
		logger.Warn("Failed to reload suffix list", zap.String("registry", name), zap.Error(err))
		return
	}
	if !changed {
		logger.Debug("Suffix list unchanged", zap.String("registry", name))
		return
	}
	info := r.Info()
	logger.Info("Reloaded suffix list",
		zap.String("registry", name),
		zap.Int("suffixes", info.Suffixes),
		zap.String("fingerprint", info.Fingerprint),
	)
}
