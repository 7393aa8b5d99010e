package param

import "fmt"

// Table is the ordered column descriptor store together with its
// channel and marker indexes.
//
// Every structural change made through Table keeps the indexes in sync.
// Callers replacing the descriptor slice wholesale must go through Set,
// which rebuilds both maps.
type Table struct {
	params   []Param
	channels map[string]int
	markers  map[string]int
}

// NewTable copies params and builds the index.
func NewTable(params []Param) *Table {
	t := &Table{}
	t.Set(params)
	return t
}

// Len returns the number of columns.
func (t *Table) Len() int { return len(t.params) }

// Params returns the descriptors. The slice must not be modified.
func (t *Table) Params() []Param { return t.params }

// At returns the descriptor at pos.
func (t *Table) At(pos int) (Param, error) {
	if pos < 0 || pos >= len(t.params) {
		return Param{}, fmt.Errorf("%w: %d", ErrOutOfRange, pos)
	}
	return t.params[pos], nil
}

// Set replaces all descriptors and rebuilds the index.
func (t *Table) Set(params []Param) {
	t.params = Clone(params)
	t.Rebuild()
}

// Rebuild derives the channel and marker maps from the descriptors.
// Later columns win when a name repeats, which leaves the channel map
// smaller than the descriptor list and marks the index inconsistent.
func (t *Table) Rebuild() {
	t.channels = make(map[string]int, len(t.params))
	t.markers = make(map[string]int, len(t.params))
	for i := range t.params {
		t.channels[t.params[i].Channel] = i
		t.markers[t.params[i].Marker] = i
	}
}

// IsConsistent reports whether the index covers every descriptor.
func (t *Table) IsConsistent() bool {
	return len(t.channels) == len(t.params)
}

// Lookup resolves name to a column position.
func (t *Table) Lookup(name string, typ ColType) (int, error) {
	if !t.IsConsistent() {
		return -1, fmt.Errorf("%w: %d columns, %d indexed channels", ErrNotIndexed, len(t.params), len(t.channels))
	}

	switch typ {
	case Channel:
		if pos, ok := t.channels[name]; ok {
			return pos, nil
		}
	case Marker:
		if pos, ok := t.markers[name]; ok {
			return pos, nil
		}
	case Unknown:
		cpos, cok := t.channels[name]
		mpos, mok := t.markers[name]
		switch {
		case cok && mok:
			return -1, &LookupError{Name: name, Type: typ, Err: ErrAmbiguous}
		case cok:
			return cpos, nil
		case mok:
			return mpos, nil
		}
	default:
		return -1, fmt.Errorf("%w: %d", ErrInvalidColType, int(typ))
	}
	return -1, &LookupError{Name: name, Type: typ, Err: ErrNotFound}
}

// Contains reports whether name resolves under typ.
func (t *Table) Contains(name string, typ ColType) bool {
	_, err := t.Lookup(name, typ)
	return err == nil
}

// Positions resolves every name and stops at the first one that fails.
func (t *Table) Positions(names []string, typ ColType) ([]int, error) {
	out := make([]int, len(names))
	for i, name := range names {
		pos, err := t.Lookup(name, typ)
		if err != nil {
			return nil, err
		}
		out[i] = pos
	}
	return out, nil
}

// RenameChannel renames a channel in place. Renaming to the same name is a
// no-op; renaming onto another existing channel fails without side effects.
func (t *Table) RenameChannel(oldName, newName string) error {
	pos, err := t.Lookup(oldName, Channel)
	if err != nil {
		return err
	}
	if oldName == newName {
		return nil
	}
	if _, ok := t.channels[newName]; ok {
		return &LookupError{Name: newName, Type: Channel, Err: ErrExists}
	}
	t.params[pos].Channel = newName
	delete(t.channels, oldName)
	t.channels[newName] = pos
	return nil
}

// RenameMarker renames a marker in place, mirroring RenameChannel.
func (t *Table) RenameMarker(oldName, newName string) error {
	pos, err := t.Lookup(oldName, Marker)
	if err != nil {
		return err
	}
	if oldName == newName {
		return nil
	}
	if _, ok := t.markers[newName]; ok {
		return &LookupError{Name: newName, Type: Marker, Err: ErrExists}
	}
	t.params[pos].Marker = newName
	delete(t.markers, oldName)
	t.markers[newName] = pos
	return nil
}

// SetRange updates the instrument range of the column at pos.
func (t *Table) SetRange(pos int, minVal, maxVal float64) error {
	if pos < 0 || pos >= len(t.params) {
		return fmt.Errorf("%w: %d", ErrOutOfRange, pos)
	}
	t.params[pos].Min = minVal
	t.params[pos].Max = maxVal
	return nil
}

// Select returns the descriptors at the given positions, in that order.
func (t *Table) Select(positions []int) ([]Param, error) {
	out := make([]Param, len(positions))
	for i, pos := range positions {
		if pos < 0 || pos >= len(t.params) {
			return nil, fmt.Errorf("%w: %d", ErrOutOfRange, pos)
		}
		out[i] = t.params[pos]
	}
	return out, nil
}

// Clone returns an independent copy of the table.
func (t *Table) Clone() *Table {
	return NewTable(t.params)
}
