package hazard

import "math"

// defaultThreshold is the constant multiplier applied to the registry size
// to decide when a retire set has grown large enough to justify a scan.
const defaultThreshold = 4.25

// Domain owns one hazard slot registry, shared by every Reclaimer joined to
// it. T is the node type the domain protects; a queue, stack, or any other
// hazard-pointer-reclaimed structure gets its own Domain[nodeType].
type Domain[T any] struct {
	registry  registry[T]
	threshold float64
	logger    Logger
}

// Option configures a Domain constructed via NewDomain.
type Option func(*domainConfig)

type domainConfig struct {
	threshold float64
	logger    Logger
}

// WithThreshold overrides the scan-trigger multiplier applied to the
// registry size. Must be positive; NewDomain panics otherwise. Smaller
// values scan more eagerly (lower peak unreclaimed memory, more scan
// overhead); larger values amortize scan cost across more retires.
func WithThreshold(k float64) Option {
	return func(c *domainConfig) { c.threshold = k }
}

// WithLogger overrides the Domain's diagnostic logger. Nil means use the
// package-level default (itself a no-op unless SetDefaultLogger was
// called).
func WithLogger(l Logger) Option {
	return func(c *domainConfig) { c.logger = l }
}

// NewDomain constructs a Domain with an empty registry. The registry grows
// lazily as goroutines Join it; nothing is pre-allocated.
func NewDomain[T any](opts ...Option) *Domain[T] {
	cfg := domainConfig{threshold: defaultThreshold}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.threshold <= 0 {
		panic("hazard: threshold must be positive")
	}
	logger := cfg.logger
	if logger == nil {
		logger = currentDefaultLogger()
	}
	return &Domain[T]{threshold: cfg.threshold, logger: logger}
}

// Join acquires a hazard slot for the calling goroutine and returns a
// Reclaimer bound to it. The caller must eventually call Reclaimer.Close —
// Go has no goroutine-exit hook, so the drain must be triggered explicitly
// rather than running automatically.
func (d *Domain[T]) Join() *Reclaimer[T] {
	return &Reclaimer[T]{domain: d, slot: d.registry.acquire()}
}

func (d *Domain[T]) registrySize() int64 {
	return d.registry.size()
}

func (d *Domain[T]) scanThreshold() int {
	t := int(math.Ceil(d.threshold * float64(d.registrySize())))
	if t < 1 {
		return 1
	}
	return t
}
