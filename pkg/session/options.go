package session

import (
	"runtime"

	"github.com/bft-labs/picoparser/pkg/csi"
	"github.com/bft-labs/picoparser/pkg/log"
)

// Option configures a Session.
type Option func(*options)

type options struct {
	decoder csi.Decoder
	workers int
	logger  log.Logger
	watch   bool
}

func defaultOptions() options {
	return options{
		workers: runtime.NumCPU(),
		logger:  log.NewNoopLogger(),
	}
}

// WithDecoder sets the frame decoder. The default decodes the flat format.
func WithDecoder(dec csi.Decoder) Option {
	return func(o *options) {
		o.decoder = dec
	}
}

// WithWorkers sets the number of concurrent decodes. Values above the
// number of CPUs are reduced to it.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithLogger sets the logger. The default discards output.
func WithLogger(l log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithWatch enables a filesystem watch that logs a warning when the capture
// file is written, truncated or removed while the session is open.
func WithWatch(enabled bool) Option {
	return func(o *options) {
		o.watch = enabled
	}
}
