package cytoframe

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/cytoframe/compensation"
	"github.com/hupe1980/cytoframe/events"
	"github.com/hupe1980/cytoframe/keyword"
	"github.com/hupe1980/cytoframe/param"
)

// Compensation parses the spillover keyword key. An empty key reads the
// configured spillover keyword. When a spillover keyword is requested but
// absent, $SPILLOVER and SPILLOVER are tried in turn.
func (f *Frame) Compensation(key string) (*compensation.Compensation, error) {
	if key == "" {
		key = f.opts.spilloverKey
	}
	candidates := []string{key}
	switch key {
	case keyword.Spillover, keyword.SpilloverFCS31, keyword.SpilloverLegacy:
		candidates = []string{key, keyword.Spillover, keyword.SpilloverFCS31, keyword.SpilloverLegacy}
	}
	for _, k := range candidates {
		if v, ok := f.keywords[k]; ok {
			c, err := compensation.Parse(v)
			if err != nil {
				return nil, translateError(fmt.Errorf("keyword %s: %w", k, err))
			}
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: keyword %s", ErrNotFound, key)
}

// Compensate multiplies the columns named by comp.Markers by the inverse
// of its spillover matrix, in place. Every marker must name a channel of
// the frame. The event matrix is untouched when a marker is missing or
// the matrix is singular. Descriptor ranges are not recomputed.
func (f *Frame) Compensate(ctx context.Context, comp *compensation.Compensation) error {
	return f.compensate(ctx, comp, false)
}

// Decompensate reverses Compensate by multiplying with the spillover
// matrix itself.
func (f *Frame) Decompensate(ctx context.Context, comp *compensation.Compensation) error {
	return f.compensate(ctx, comp, true)
}

func (f *Frame) compensate(ctx context.Context, comp *compensation.Compensation, reverse bool) (err error) {
	if err := f.checkWritable(); err != nil {
		return err
	}
	if comp == nil {
		return fmt.Errorf("%w: nil compensation", ErrInvalidArgument)
	}
	if err := comp.Validate(); err != nil {
		return translateError(err)
	}

	cols, err := f.params.Positions(comp.Markers, param.Channel)
	if err != nil {
		return translateError(err)
	}

	start := time.Now()
	defer func() {
		f.opts.metricsCollector.RecordCompensate(f.NRows(), comp.Len(), time.Since(start), err)
		f.opts.logger.LogCompensate(ctx, comp.Len(), reverse, err)
	}()

	apply := compensation.Apply
	if reverse {
		apply = compensation.Reverse
	}
	return translateError(f.data.update(ctx, f, func(m *events.Matrix) error {
		return apply(m, cols, comp)
	}))
}
