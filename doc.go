// Package cytoframe provides an in-memory and store-backed container for a
// single flow cytometry sample.
//
// A Frame holds the event matrix (events x parameters), one descriptor per
// column (channel, marker, instrument range, gain, log decades, bit width),
// the FCS keywords and free-form pheno data annotations. Columns are looked
// up by channel or marker name through an index that every structural
// change keeps in sync.
//
// # Quick Start
//
// In memory, from parser output:
//
//	fr, _ := cytoframe.FromParsed(cytoframe.Parsed{
//	    Events: buf, Layout: events.RowMajor, Rows: n,
//	    Params: params, Keywords: kw, Name: "sample.fcs",
//	})
//	comp, _ := fr.Compensation("") // SPILL
//	_ = fr.Compensate(ctx, comp)
//
// Persisted, then reopened with columns read on demand:
//
//	store := blobstore.NewLocalStore("./frames")
//	_ = fr.WriteStore(ctx, store, "sample.cyf", cytoframe.WithFilter(container.FilterZSTD))
//	h5, _ := cytoframe.OpenFrame(ctx, store, "sample.cyf")
//	defer h5.Close()
//	fsc, _ := h5.ColumnsByName(ctx, []string{"FSC-A"}, param.Channel)
//
// Stores can live on S3 or MinIO as well (see blobstore/s3 and
// blobstore/minio).
//
// # Mutation Guard
//
// Every mutating method fails with ErrReadOnly while the guard is set.
// Store-backed frames start guarded:
//
//	h5.SetReadOnly(false)
//	_ = h5.SetKeyword("$CYT", "LSRII")
//	_ = h5.Flush(ctx)
//
// # Errors
//
// Errors wrap one of ErrNotFound, ErrAmbiguousName, ErrAlreadyExists,
// ErrReadOnly, ErrInvalidArgument, ErrSingularMatrix or
// ErrPreconditionFailed and can be tested with errors.Is.
package cytoframe
