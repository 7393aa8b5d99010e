package cytoframe

import (
	"context"
	"errors"
	"maps"
	"slices"
)

// RenameChannel renames a channel. With updateKeywords set, every keyword
// whose value equals oldName is rewritten to newName, which scans the
// whole keyword map. Renaming a channel to itself changes nothing.
func (f *Frame) RenameChannel(oldName, newName string, updateKeywords bool) error {
	if err := f.checkWritable(); err != nil {
		return err
	}
	if err := f.params.RenameChannel(oldName, newName); err != nil {
		return translateError(err)
	}
	if oldName == newName {
		return nil
	}
	n := 0
	if updateKeywords {
		n = f.keywords.ReplaceValues(oldName, newName)
	}
	f.dirty = true
	f.opts.logger.LogRename(context.Background(), "channel", oldName, newName, n)
	return nil
}

// RenameMarker renames a marker. Keywords are never touched.
func (f *Frame) RenameMarker(oldName, newName string) error {
	if err := f.checkWritable(); err != nil {
		return err
	}
	if err := f.params.RenameMarker(oldName, newName); err != nil {
		return translateError(err)
	}
	if oldName == newName {
		return nil
	}
	f.dirty = true
	f.opts.logger.LogRename(context.Background(), "marker", oldName, newName, 0)
	return nil
}

// RenameChannels applies every old to new entry of mapping as its own
// channel rename, updating keywords, in sorted order of the old names.
// Entries whose old channel does not exist are skipped; any other failure
// stops the loop and is returned, leaving earlier renames applied.
func (f *Frame) RenameChannels(mapping map[string]string) error {
	if err := f.checkWritable(); err != nil {
		return err
	}
	for _, oldName := range slices.Sorted(maps.Keys(mapping)) {
		if err := f.RenameChannel(oldName, mapping[oldName], true); err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return err
		}
	}
	return nil
}
