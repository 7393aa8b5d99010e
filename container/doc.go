// Package container implements a chunked, typed, self-describing file
// format for named n-dimensional datasets.
//
// # Layout
//
//	+---------------------------+
//	| signature (8 bytes)       |  magic "CYF1" + version, little-endian
//	+---------------------------+
//	| chunk 0 | chunk 1 | ...   |  filtered (none/LZ4/ZSTD) chunk payloads
//	+---------------------------+
//	| directory                 |  dataset descriptors + chunk tables
//	+---------------------------+
//	| footer (64 bytes)         |  directory offset/length, CRC32s
//	+---------------------------+
//
// Structural integers are always little-endian. Float datasets carry their
// own byte-order tag in the datatype, and readers decode with the tagged
// order, so a file written on a big-endian host reads back identically on a
// little-endian one.
//
// Every dataset records an unlimited maximum shape so it can later be
// extended by appending chunks. Each chunk is checksummed with CRC32
// (IEEE). Reading one chunk never requires decoding any other.
package container
