// Package regdomain extracts registrable domains from hostnames using public suffix lists.
package regdomain

import (
	"context"

	"go.uber.org/zap"
)

// Version is the current version of regdomain.
const Version = "0.3.0"

// Service is the common service abstraction in this module.
type Service interface {
	// ZapField returns a [zap.Field] that identifies the service.
	ZapField() zap.Field

	// Start starts the service.
	Start(ctx context.Context) error

	// Stop stops the service.
	Stop() error
}
