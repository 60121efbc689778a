// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package publish provides the destinations rendered charts and
// reports are written to.
package publish

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// An FS stores output files.
type FS interface {
	// NewWriter returns a Writer for a given file name.
	// When the Writer is closed, the file will be stored with the
	// given metadata and the data written to the writer.
	NewWriter(ctx context.Context, name string, metadata map[string]string) (Writer, error)
}

// A Writer is an io.Writer that can also be closed with an error.
type Writer interface {
	io.WriteCloser
	// CloseWithError cancels the writing of the file, removing
	// any partially written data.
	CloseWithError(error) error
}

// ContentType returns the MIME type to record for a file with the
// given extension (without the dot).
func ContentType(ext string) string {
	switch ext {
	case "pdf":
		return "application/pdf"
	case "png":
		return "image/png"
	case "svg":
		return "image/svg+xml"
	case "eps":
		return "application/postscript"
	case "csv":
		return "text/csv"
	case "html":
		return "text/html; charset=utf-8"
	}
	return "application/octet-stream"
}

// LocalFS writes files below a directory on the local disk.
// Metadata is discarded.
type LocalFS struct {
	Dir string
}

// NewWriter creates any missing parent directories and returns a
// Writer that atomically replaces name on Close.
func (fs *LocalFS) NewWriter(ctx context.Context, name string, metadata map[string]string) (Writer, error) {
	path := filepath.Join(fs.Dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0777); err != nil {
		return nil, errors.Wrap(err, "create output directory")
	}
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return nil, errors.Wrapf(err, "create %s", name)
	}
	return &localWriter{f: f, path: path}, nil
}

type localWriter struct {
	f    *os.File
	path string
}

func (w *localWriter) Write(p []byte) (int, error) {
	return w.f.Write(p)
}

func (w *localWriter) Close() error {
	if err := w.f.Close(); err != nil {
		os.Remove(w.f.Name())
		return err
	}
	return os.Rename(w.f.Name(), w.path)
}

func (w *localWriter) CloseWithError(error) error {
	w.f.Close()
	return os.Remove(w.f.Name())
}

// Tee returns an FS that writes every file to each of fss.
func Tee(fss ...FS) FS {
	if len(fss) == 1 {
		return fss[0]
	}
	return teeFS(fss)
}

type teeFS []FS

func (t teeFS) NewWriter(ctx context.Context, name string, metadata map[string]string) (Writer, error) {
	ws := make(teeWriter, 0, len(t))
	for _, fs := range t {
		w, err := fs.NewWriter(ctx, name, metadata)
		if err != nil {
			ws.CloseWithError(err)
			return nil, err
		}
		ws = append(ws, w)
	}
	return ws, nil
}

type teeWriter []Writer

func (t teeWriter) Write(p []byte) (int, error) {
	for _, w := range t {
		if n, err := w.Write(p); err != nil {
			return n, err
		}
	}
	return len(p), nil
}

// Close closes every writer and returns the first error.
func (t teeWriter) Close() error {
	var first error
	for _, w := range t {
		if err := w.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (t teeWriter) CloseWithError(err error) error {
	var first error
	for _, w := range t {
		if err := w.CloseWithError(err); err != nil && first == nil {
			first = err
		}
	}
	return first
}
