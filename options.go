package cytoframe

import (
	"log/slog"

	"github.com/hupe1980/cytoframe/codec"
	"github.com/hupe1980/cytoframe/container"
	"github.com/hupe1980/cytoframe/internal/resource"
	"github.com/hupe1980/cytoframe/keyword"
)

// Precision is the float width used for the event matrix in a store.
type Precision int

const (
	// Float32 stores events as 4-byte IEEE floats.
	Float32 Precision = iota
	// Float64 stores events as 8-byte IEEE floats.
	Float64
)

func (p Precision) String() string {
	if p == Float64 {
		return "float64"
	}
	return "float32"
}

func (p Precision) datatype(order container.ByteOrder) container.Datatype {
	if p == Float64 {
		return container.Float64(order)
	}
	return container.Float32(order)
}

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector
	codec            codec.Codec
	precision        Precision
	precisionSet     bool
	byteOrder        container.ByteOrder
	filter           container.Filter
	readOnly         *bool
	readParams       ReadParams
	resource         *resource.Controller
	cacheBytes       int64
	spilloverKey     string
}

// Option configures frame constructors and store operations.
type Option func(*options)

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := cytoframe.NewJSONLogger(slog.LevelInfo)
//	fr, _ := cytoframe.OpenFrame(ctx, store, "sample.cyf", cytoframe.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector for store and
// compensation operations. Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &cytoframe.BasicMetricsCollector{}
//	fr, _ := cytoframe.New(params, kw, data, cytoframe.WithMetricsCollector(metrics))
//	// ... use fr ...
//	stats := metrics.GetStats()
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithCodec configures the codec used by EncodeMessage.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithPrecision selects the float width of the stored event matrix.
// Store-backed frames default to the precision found in the store.
func WithPrecision(p Precision) Option {
	return func(o *options) {
		o.precision = p
		o.precisionSet = true
	}
}

// WithByteOrder forces the byte order of stored floats. The default is
// the byte order of the running host.
func WithByteOrder(order container.ByteOrder) Option {
	return func(o *options) {
		o.byteOrder = order
	}
}

// WithFilter selects the chunk compression used when writing stores.
func WithFilter(f container.Filter) Option {
	return func(o *options) {
		o.filter = f
	}
}

// WithReadOnly sets the initial state of the mutation guard. In-memory
// frames start writable and store-backed frames start read-only unless
// this option says otherwise.
func WithReadOnly(readOnly bool) Option {
	return func(o *options) {
		o.readOnly = &readOnly
	}
}

// WithReadParams records the parameters the FCS parser used.
func WithReadParams(p ReadParams) Option {
	return func(o *options) {
		o.readParams = p
	}
}

// WithResourceLimits caps the memory reserved for materialized event data
// of store-backed frames and the throughput of store I/O. Zero means
// unlimited.
func WithResourceLimits(memoryBytes, ioBytesPerSec int64) Option {
	return func(o *options) {
		o.resource = resource.NewController(resource.Config{
			MemoryLimitBytes:   memoryBytes,
			IOLimitBytesPerSec: ioBytesPerSec,
		})
	}
}

// WithBlockCache caches store blocks read by store-backed frames in an
// LRU cache of at most capacityBytes.
func WithBlockCache(capacityBytes int64) Option {
	return func(o *options) {
		o.cacheBytes = capacityBytes
	}
}

// WithSpilloverKeyword sets the keyword Compensation reads when called
// with an empty key. Defaults to keyword.Spillover.
func WithSpilloverKeyword(key string) Option {
	return func(o *options) {
		o.spilloverKey = key
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
		codec:            codec.Default,
		precision:        Float32,
		byteOrder:        container.NativeOrder(),
		filter:           container.FilterNone,
		readParams:       DefaultReadParams(),
		spilloverKey:     keyword.Spillover,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

func (o *options) readOnlyOr(def bool) bool {
	if o.readOnly == nil {
		return def
	}
	return *o.readOnly
}
