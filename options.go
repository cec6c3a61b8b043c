package vigil

import (
	"log/slog"

	"github.com/arloliu/vigil/internal/logging"
	"github.com/arloliu/vigil/types"
)

// Option configures a Monitor with optional dependencies.
type Option func(*monitorOptions)

// monitorOptions holds optional Monitor configuration.
type monitorOptions struct {
	hooks   *types.Hooks
	metrics types.MetricsCollector
	logger  types.Logger
}

// WithHooks sets monitoring event hooks.
//
// Parameters:
//   - hooks: Hooks structure with callback functions
//
// Returns:
//   - Option: Functional option for NewMonitor
//
// Example:
//
//	hooks := &vigil.Hooks{
//	    OnDescriptionChanged: func(ctx context.Context, prev, curr vigil.Description) error {
//	        return topology.Apply(curr)
//	    },
//	}
//	mon, _ := vigil.NewMonitor(addr, pool, proto, cfg, vigil.WithHooks(hooks))
func WithHooks(hooks *types.Hooks) Option {
	return func(o *monitorOptions) {
		o.hooks = hooks
	}
}

// WithMetrics sets a metrics collector.
//
// Parameters:
//   - metrics: MetricsCollector implementation
//
// Returns:
//   - Option: Functional option for NewMonitor
//
// Example:
//
//	metrics := myPrometheusCollector
//	mon, _ := vigil.NewMonitor(addr, pool, proto, cfg, vigil.WithMetrics(metrics))
func WithMetrics(metrics types.MetricsCollector) Option {
	return func(o *monitorOptions) {
		o.metrics = metrics
	}
}

// WithLogger sets a logger.
//
// Parameters:
//   - logger: Logger implementation (compatible with zap.SugaredLogger)
//
// Returns:
//   - Option: Functional option for NewMonitor
//
// Example:
//
//	logger := zap.NewExample().Sugar()
//	mon, _ := vigil.NewMonitor(addr, pool, proto, cfg, vigil.WithLogger(logger))
func WithLogger(logger types.Logger) Option {
	return func(o *monitorOptions) {
		o.logger = logger
	}
}

// WithSlogLogger sets a logger backed by the standard library's
// log/slog package.
//
// Convenience for consumers already using slog; equivalent to wrapping
// the slog.Logger in an adapter and passing it to WithLogger.
//
// Parameters:
//   - logger: The slog.Logger to adapt (slog.Default() is a good start)
//
// Returns:
//   - Option: Functional option for NewMonitor
//
// Example:
//
//	mon, _ := vigil.NewMonitor(addr, pool, proto, cfg,
//	    vigil.WithSlogLogger(slog.Default()))
func WithSlogLogger(logger *slog.Logger) Option {
	return func(o *monitorOptions) {
		o.logger = logging.NewSlog(logger)
	}
}
