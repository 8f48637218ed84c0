package nutsquery

import (
	"github.com/nutsdb/nutsquery/internal/planner"
	"github.com/prometheus/client_golang/prometheus"
)

// Options records params for creating an Engine.
type Options struct {
	// DefaultLimit is the page size of a query that sets no limit.
	DefaultLimit int

	// MaxLimit caps the page size of every query.
	MaxLimit int

	// NodeNum is the snowflake node that stamps query ids.
	NodeNum int64

	// Registerer receives the engine metrics. Nil keeps them unregistered.
	Registerer prometheus.Registerer

	// Logger receives plan and token diagnostics. Nil uses GetLogger().
	Logger ILogger
}

var DefaultOptions = Options{
	DefaultLimit: planner.DefaultLimit,
	MaxLimit:     planner.MaxLimit,
	NodeNum:      1,
}

type Option func(*Options)

func WithDefaultLimit(limit int) Option {
	return func(opt *Options) {
		opt.DefaultLimit = limit
	}
}

func WithMaxLimit(limit int) Option {
	return func(opt *Options) {
		opt.MaxLimit = limit
	}
}

func WithNodeNum(num int64) Option {
	return func(opt *Options) {
		opt.NodeNum = num
	}
}

func WithRegisterer(reg prometheus.Registerer) Option {
	return func(opt *Options) {
		opt.Registerer = reg
	}
}

func WithLogger(logger ILogger) Option {
	return func(opt *Options) {
		opt.Logger = logger
	}
}
