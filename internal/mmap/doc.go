// Package mmap maps store files read-only into memory so chunk reads become
// slice copies instead of syscalls.
//
// Unix uses mmap(2) with madvise(2) hints. Windows uses
// CreateFileMapping/MapViewOfFile and ignores access hints.
//
// A Mapping is safe for concurrent reads. Close is idempotent, but callers
// must not touch a slice returned by Bytes after Close.
package mmap
