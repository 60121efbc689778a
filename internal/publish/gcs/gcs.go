// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gcs implements the publish.FS interface using Google Cloud Storage.
package gcs

import (
	"context"
	"path"

	"cloud.google.com/go/storage"
	"github.com/pkg/errors"
	"google.golang.org/api/option"

	"github.com/cicd-experiments/pipeplot/internal/publish"
)

// FS implements the publish.FS interface on top of a GCS bucket.
type FS struct {
	client *storage.Client
	bucket *storage.BucketHandle
	prefix string
}

// NewFS constructs an FS that writes to the provided bucket, below
// prefix. The client is built from opts, or from the ambient
// application default credentials if opts is empty.
func NewFS(ctx context.Context, bucketName, prefix string, opts ...option.ClientOption) (*FS, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "create storage client")
	}
	return &FS{
		client: client,
		bucket: client.Bucket(bucketName),
		prefix: prefix,
	}, nil
}

// NewWriter creates a new object named name, below the prefix.
//
// The content type is derived from the metadata key
// "content-type", which is removed from the stored metadata.
func (fs *FS) NewWriter(ctx context.Context, name string, metadata map[string]string) (publish.Writer, error) {
	w := fs.bucket.Object(path.Join(fs.prefix, name)).NewWriter(ctx)
	md := make(map[string]string, len(metadata))
	for k, v := range metadata {
		if k == "content-type" {
			w.ContentType = v
			continue
		}
		md[k] = v
	}
	w.Metadata = md
	return w, nil
}

// Close releases the underlying client.
func (fs *FS) Close() error {
	return fs.client.Close()
}
