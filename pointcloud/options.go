package pointcloud

import (
	"go.uber.org/zap"

	"github.com/wippyai/draco-decoder/resource"
)

type options struct {
	logger    *zap.Logger
	observers []resource.Observer
}

// Option configures a Decoder.
type Option func(*options)

// WithLogger sets the logger used for debug tracing of decoder objects.
// nil keeps the no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithObserver receives acquire and release events for every decoder
// object of every decode call.
func WithObserver(obs resource.Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observers = append(o.observers, obs)
		}
	}
}
