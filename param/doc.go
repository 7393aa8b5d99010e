// Package param holds the per-column metadata of a cytometry frame and the
// dual-keyed column index that resolves channel and marker names to column
// positions.
//
// The descriptor sequence is the source of truth for column count and
// ordering. The index is derived from it and never persisted:
//
//	tbl := param.NewTable([]param.Param{
//	    {Channel: "FSC-A"},
//	    {Channel: "B515-A", Marker: "CD4"},
//	})
//	pos, err := tbl.Lookup("CD4", param.Unknown) // 1
package param
