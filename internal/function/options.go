package function

import (
	"log/slog"

	"github.com/born-ml/mxgraph/internal/parallel"
)

// Option configures a Function.
type Option func(*options)

type options struct {
	inPlace  bool
	logger   *slog.Logger
	parallel parallel.Config
}

func defaultOptions() options {
	return options{
		inPlace:  true,
		logger:   slog.New(slog.DiscardHandler),
		parallel: parallel.DefaultConfig(),
	}
}

// WithInPlace allows operations such as reshape to write their output into the work slot
// of their dependency when nothing else reads it afterwards. Enabled by default.
func WithInPlace(enabled bool) Option {
	return func(o *options) { o.inPlace = enabled }
}

// WithLogger sets the logger used for debug tracing of construction and sweeps.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithParallel sets how EvalBatch distributes sweeps over goroutines.
func WithParallel(cfg parallel.Config) Option {
	return func(o *options) { o.parallel = cfg }
}
