// Package testutil provides testing utilities for cytoframe.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating deterministic event matrices,
// column descriptors and FCS keyword sets.
//
// # Random Events
//
//	rng := testutil.NewRNG(seed)
//	m := rng.Events(1000, 4, 1024)   // integer-valued, exact in float32
//	g := rng.GaussianEvents(1000, 4, 500, 50)
//
// # Sample Descriptors
//
//	params := testutil.SampleParams(4)   // FSC-A, SSC-A, FL1-A, FL2-A
//	kw := testutil.SampleKeywords(params)
package testutil
