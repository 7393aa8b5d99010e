// Package s3 stores frame files in Amazon S3.
//
// # Usage
//
//	store, err := s3.New(ctx, "lab-data",
//	    s3.WithPrefix("cytometry/2024/"),
//	    s3.WithRegion("eu-central-1"),
//	)
//
//	frame, err := cytoframe.OpenFrame(ctx, store, "sample01.cyf")
//
// Reads are ranged GETs, so opening a frame fetches only the container
// footer and directory. Writes stream through the multipart uploader and
// are aborted if the frame export fails part way.
package s3
