// Package blobstore abstracts where frame store files live.
//
// A store file is written once, front to back, through a WritableBlob and
// becomes visible under its name only when Close succeeds. Abort discards
// it. Readers open a Blob and issue positional reads; NewReaderAt adapts a
// Blob to io.ReaderAt for the container reader.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem, mmap reads, atomic rename on commit
//   - MemoryStore: in-process map, for tests and scratch frames
//   - CachingStore: block cache in front of any other store
//   - s3.Store and minio.Store in the sub-packages
//
// Implementations must be safe for concurrent use.
package blobstore
