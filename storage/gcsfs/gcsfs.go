// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gcsfs provides a read-only fs.FS over the objects under a
// Google Cloud Storage prefix, so fio results can be normalized
// without copying them locally.
//
// Object names are split on "/" into directories, as gsutil does.
package gcsfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// ParseURL splits a gs://bucket/prefix URL into its bucket and
// prefix. The prefix has no leading or trailing slash.
func ParseURL(url string) (bucket, prefix string, err error) {
	if !IsURL(url) {
		return "", "", fmt.Errorf("%q is not a gs:// URL", url)
	}
	bucket, prefix, _ = strings.Cut(strings.TrimPrefix(url, "gs://"), "/")
	if bucket == "" {
		return "", "", fmt.Errorf("%q has no bucket", url)
	}
	return bucket, strings.Trim(prefix, "/"), nil
}

// IsURL reports whether s names a GCS location.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "gs://")
}

// objects is the subset of a bucket used by FS.
type objects interface {
	// list returns the objects and subdirectories directly under
	// dir, which is empty or ends in "/".
	list(ctx context.Context, dir string) ([]fs.FileInfo, error)
	// open opens the named object.
	open(ctx context.Context, name string) (io.ReadCloser, fs.FileInfo, error)
}

// An FS is a read-only file system over a GCS prefix.
type FS struct {
	ctx    context.Context
	objs   objects
	prefix string
	close  func() error
}

// New returns an FS over the objects under url, which has the form
// gs://bucket/prefix. If opts is empty, the application default
// credentials are used with read-only scope.
//
// ctx is used for every request made by the FS.
func New(ctx context.Context, url string, opts ...option.ClientOption) (*FS, error) {
	bucket, prefix, err := ParseURL(url)
	if err != nil {
		return nil, err
	}
	if len(opts) == 0 {
		ts, err := google.DefaultTokenSource(ctx, storage.ScopeReadOnly)
		if err != nil {
			return nil, fmt.Errorf("finding credentials: %w", err)
		}
		opts = []option.ClientOption{option.WithTokenSource(ts)}
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &FS{
		ctx:    ctx,
		objs:   &gcsObjects{client.Bucket(bucket)},
		prefix: prefix,
		close:  client.Close,
	}, nil
}

// Close releases the resources of the underlying client.
func (f *FS) Close() error {
	if f.close == nil {
		return nil
	}
	return f.close()
}

// object returns the object name of the slash-separated path name.
func (f *FS) object(name string) string {
	if name == "." {
		return f.prefix
	}
	if f.prefix == "" {
		return name
	}
	return f.prefix + "/" + name
}

// Open opens the object name for reading. Directories cannot be
// opened; use ReadDir.
func (f *FS) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	if name == "." {
		return nil, &fs.PathError{Op: "open", Path: name, Err: errors.New("is a directory")}
	}
	r, info, err := f.objs.open(f.ctx, f.object(name))
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}
	return &file{r: r, info: info}, nil
}

// ReadDir lists the directory name, sorted by file name.
func (f *FS) ReadDir(name string) ([]fs.DirEntry, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrInvalid}
	}
	dir := f.object(name)
	if dir != "" {
		dir += "/"
	}
	infos, err := f.objs.list(f.ctx, dir)
	if err != nil {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: err}
	}
	if len(infos) == 0 && name != "." {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrNotExist}
	}
	ents := make([]fs.DirEntry, len(infos))
	for i, info := range infos {
		ents[i] = fs.FileInfoToDirEntry(info)
	}
	// GCS lists in lexical object name order, which may differ
	// from name order once subdirectories' trailing "/" is gone.
	sortEntries(ents)
	return ents, nil
}

func sortEntries(ents []fs.DirEntry) {
	sort.Slice(ents, func(i, j int) bool { return ents[i].Name() < ents[j].Name() })
}

type file struct {
	r    io.ReadCloser
	info fs.FileInfo
}

func (f *file) Stat() (fs.FileInfo, error) { return f.info, nil }
func (f *file) Read(b []byte) (int, error) { return f.r.Read(b) }
func (f *file) Close() error               { return f.r.Close() }

// fileInfo describes an object or a directory prefix.
type fileInfo struct {
	name    string
	size    int64
	modTime time.Time
	dir     bool
}

func (fi *fileInfo) Name() string       { return fi.name }
func (fi *fileInfo) Size() int64        { return fi.size }
func (fi *fileInfo) ModTime() time.Time { return fi.modTime }
func (fi *fileInfo) IsDir() bool        { return fi.dir }
func (fi *fileInfo) Sys() interface{}   { return nil }

func (fi *fileInfo) Mode() fs.FileMode {
	if fi.dir {
		return fs.ModeDir | 0555
	}
	return 0444
}

type gcsObjects struct {
	b *storage.BucketHandle
}

func (g *gcsObjects) list(ctx context.Context, dir string) ([]fs.FileInfo, error) {
	it := g.b.Objects(ctx, &storage.Query{Prefix: dir, Delimiter: "/"})
	var infos []fs.FileInfo
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		if attrs.Prefix != "" {
			infos = append(infos, &fileInfo{name: path.Base(attrs.Prefix), dir: true})
			continue
		}
		name := strings.TrimPrefix(attrs.Name, dir)
		if name == "" {
			// The directory placeholder object itself.
			continue
		}
		infos = append(infos, &fileInfo{name: name, size: attrs.Size, modTime: attrs.Updated})
	}
	return infos, nil
}

func (g *gcsObjects) open(ctx context.Context, name string) (io.ReadCloser, fs.FileInfo, error) {
	r, err := g.b.Object(name).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, nil, fs.ErrNotExist
	} else if err != nil {
		return nil, nil, err
	}
	info := &fileInfo{name: path.Base(name), size: r.Attrs.Size, modTime: r.Attrs.LastModified}
	return r, info, nil
}
