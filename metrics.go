package cytoframe

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordStoreWrite is called after each store export.
	// values is the number of event values written.
	RecordStoreWrite(values int, duration time.Duration, err error)

	// RecordColumnRead is called after a store-backed frame reads columns.
	RecordColumnRead(cols int, duration time.Duration, err error)

	// RecordCompensate is called after each compensation run.
	RecordCompensate(rows, markers int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordStoreWrite(int, time.Duration, error)      {}
func (NoopMetricsCollector) RecordColumnRead(int, time.Duration, error)      {}
func (NoopMetricsCollector) RecordCompensate(int, int, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
type BasicMetricsCollector struct {
	StoreWriteCount      atomic.Int64
	StoreWriteErrors     atomic.Int64
	StoreWriteValues     atomic.Int64
	StoreWriteTotalNanos atomic.Int64
	ColumnReadCount      atomic.Int64
	ColumnReadErrors     atomic.Int64
	ColumnReadColumns    atomic.Int64
	CompensateCount      atomic.Int64
	CompensateErrors     atomic.Int64
	CompensateTotalNanos atomic.Int64
}

// RecordStoreWrite implements MetricsCollector.
func (b *BasicMetricsCollector) RecordStoreWrite(values int, duration time.Duration, err error) {
	b.StoreWriteCount.Add(1)
	b.StoreWriteTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.StoreWriteErrors.Add(1)
		return
	}
	b.StoreWriteValues.Add(int64(values))
}

// RecordColumnRead implements MetricsCollector.
func (b *BasicMetricsCollector) RecordColumnRead(cols int, _ time.Duration, err error) {
	b.ColumnReadCount.Add(1)
	if err != nil {
		b.ColumnReadErrors.Add(1)
		return
	}
	b.ColumnReadColumns.Add(int64(cols))
}

// RecordCompensate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCompensate(_, _ int, duration time.Duration, err error) {
	b.CompensateCount.Add(1)
	b.CompensateTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.CompensateErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		StoreWriteCount:    b.StoreWriteCount.Load(),
		StoreWriteErrors:   b.StoreWriteErrors.Load(),
		StoreWriteValues:   b.StoreWriteValues.Load(),
		StoreWriteAvgNanos: avg(b.StoreWriteTotalNanos.Load(), b.StoreWriteCount.Load()),
		ColumnReadCount:    b.ColumnReadCount.Load(),
		ColumnReadErrors:   b.ColumnReadErrors.Load(),
		ColumnReadColumns:  b.ColumnReadColumns.Load(),
		CompensateCount:    b.CompensateCount.Load(),
		CompensateErrors:   b.CompensateErrors.Load(),
		CompensateAvgNanos: avg(b.CompensateTotalNanos.Load(), b.CompensateCount.Load()),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	StoreWriteCount    int64
	StoreWriteErrors   int64
	StoreWriteValues   int64
	StoreWriteAvgNanos int64
	ColumnReadCount    int64
	ColumnReadErrors   int64
	ColumnReadColumns  int64
	CompensateCount    int64
	CompensateErrors   int64
	CompensateAvgNanos int64
}
