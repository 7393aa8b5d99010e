// Package cache holds recently read blocks of store files in memory.
//
// Blocks are keyed by blob path and block index. The LRU evicts by total
// byte size and reserves its memory through a resource.Controller when one
// is supplied, so cached blocks count against the same budget as
// materialized event data.
package cache
