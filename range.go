package cytoframe

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/hupe1980/cytoframe/events"
	"github.com/hupe1980/cytoframe/keyword"
	"github.com/hupe1980/cytoframe/param"
)

// RangeType selects where Range takes its bounds from.
type RangeType int

const (
	// RangeInstrument reports the descriptor bounds.
	RangeInstrument RangeType = iota
	// RangeData scans the column values.
	RangeData
)

func (t RangeType) String() string {
	switch t {
	case RangeInstrument:
		return "instrument"
	case RangeData:
		return "data"
	default:
		return fmt.Sprintf("RangeType(%d)", int(t))
	}
}

// ParseRangeType parses "instrument" or "data".
func ParseRangeType(s string) (RangeType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "instrument":
		return RangeInstrument, nil
	case "data":
		return RangeData, nil
	default:
		return RangeInstrument, fmt.Errorf("%w: range type %q", ErrInvalidArgument, s)
	}
}

// Range returns the minimum and maximum of a column, either as recorded
// in its descriptor or as found in the data.
func (f *Frame) Range(ctx context.Context, name string, typ param.ColType, rt RangeType) (float64, float64, error) {
	if rt != RangeInstrument && rt != RangeData {
		return 0, 0, fmt.Errorf("%w: range type %d", ErrInvalidArgument, int(rt))
	}
	pos, err := f.ColIndex(name, typ)
	if err != nil {
		return 0, 0, err
	}
	if rt == RangeInstrument {
		p := f.params.Params()[pos]
		return p.Min, p.Max, nil
	}

	m, err := f.data.columns(ctx, []int{pos})
	if err != nil {
		return 0, 0, translateError(err)
	}
	lo, hi, err := events.Range(m.Col(0))
	if err != nil {
		return 0, 0, translateError(err)
	}
	return lo, hi, nil
}

// SetRange updates the instrument range of a column. With updateKeywords
// set, the flowCore_$PnRmin and flowCore_$PnRmax keywords mirror the new
// bounds.
func (f *Frame) SetRange(name string, typ param.ColType, minVal, maxVal float64, updateKeywords bool) error {
	if err := f.checkWritable(); err != nil {
		return err
	}
	pos, err := f.ColIndex(name, typ)
	if err != nil {
		return err
	}
	if err := f.params.SetRange(pos, minVal, maxVal); err != nil {
		return translateError(err)
	}
	if updateKeywords {
		f.keywords[keyword.RangeMinKey(pos+1)] = keyword.FormatFloat(minVal)
		f.keywords[keyword.RangeMaxKey(pos+1)] = keyword.FormatFloat(maxVal)
	}
	f.dirty = true
	return nil
}

// TimeStep returns the acquisition time represented by one unit of the
// time channel. An explicit $TIMESTEP wins. Otherwise the elapsed time
// between $BTIM and $ETIM is divided by the data span of timeChannel, and
// a frame without both clock keywords reports 1. Identical clocks report
// 0 without reading any data.
func (f *Frame) TimeStep(ctx context.Context, timeChannel string) (float64, error) {
	if v, ok := f.keywords[keyword.TimeStep]; ok {
		ts, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %s %q", ErrInvalidArgument, keyword.TimeStep, v)
		}
		return ts, nil
	}

	begin, bok := f.keywords[keyword.BeginTime]
	end, eok := f.keywords[keyword.EndTime]
	if !bok || !eok {
		return 1, nil
	}
	elapsed, err := keyword.Elapsed(begin, end)
	if err != nil {
		return 0, translateError(err)
	}
	if elapsed == 0 {
		return 0, nil
	}

	lo, hi, err := f.Range(ctx, timeChannel, param.Channel, RangeData)
	if err != nil {
		return 0, err
	}
	if hi == lo {
		return 0, fmt.Errorf("%w: time channel %s has a zero data span", ErrInvalidArgument, timeChannel)
	}
	return elapsed / (hi - lo), nil
}
