// Package minio stores frame files in MinIO or any other S3-compatible
// service through the MinIO client, with no AWS SDK involved.
//
//	store, err := minio.Dial(ctx, minio.Config{
//	    Endpoint:     "localhost:9000",
//	    AccessKey:    "minioadmin",
//	    SecretKey:    "minioadmin",
//	    Bucket:       "cytometry",
//	    CreateBucket: true,
//	})
//	err = frame.WriteStore(ctx, store, "sample01.cyf")
package minio
