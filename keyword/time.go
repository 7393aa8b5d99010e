package keyword

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidTime is returned when a $BTIM/$ETIM value cannot be parsed.
var ErrInvalidTime = errors.New("invalid acquisition time")

// ParseClock parses an acquisition clock value into the offset since
// midnight. Accepted forms:
//
//	hh:mm:ss       (FCS 2.0)
//	hh:mm:ss:tt    (FCS 3.0, tt in 1/60 s)
//	hh:mm:ss.cc    (FCS 3.1, decimal fraction of a second)
func ParseClock(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) != 3 && len(parts) != 4 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}

	var hms [3]int
	var frac float64
	for i := 0; i < 3; i++ {
		p := parts[i]
		if i == 2 {
			if dot := strings.IndexByte(p, '.'); dot >= 0 {
				f, err := strconv.ParseFloat("0"+p[dot:], 64)
				if err != nil {
					return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
				}
				frac = f
				p = p[:dot]
			}
		}
		v, err := strconv.Atoi(p)
		if err != nil || v < 0 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
		}
		hms[i] = v
	}
	if len(parts) == 4 {
		ticks, err := strconv.Atoi(parts[3])
		if err != nil || ticks < 0 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
		}
		frac = float64(ticks) / 60
	}
	if hms[0] > 23 || hms[1] > 59 || hms[2] > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}

	d := time.Duration(hms[0])*time.Hour +
		time.Duration(hms[1])*time.Minute +
		time.Duration(hms[2])*time.Second +
		time.Duration(frac*float64(time.Second))
	return d, nil
}

// Elapsed returns the acquisition wall time between begin and end in
// seconds. An end clock earlier than begin is taken to have crossed midnight.
// Identical clocks yield zero.
func Elapsed(begin, end string) (float64, error) {
	b, err := ParseClock(begin)
	if err != nil {
		return 0, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return 0, err
	}
	if e < b {
		e += 24 * time.Hour
	}
	return (e - b).Seconds(), nil
}
