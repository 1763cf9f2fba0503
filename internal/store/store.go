// Package store provides read-only access to the services document tree.
//
// Every directory in the tree is a node identified by its slash-separated path
// relative to the store root, and may hold a single page document named
// page.json. All file access goes through an os.Root so that nothing outside
// the tree can be opened, including through symlinks.
package store

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
)

const (
	// PageFile is the name of the document a node may hold.
	PageFile = "page.json"

	// RoutePrefix is the logical path of the store root.
	RoutePrefix = "/services"

	// RootFilename is the download name of the root document.
	RootFilename = "services.json"
)

// Store is a document tree rooted at a fixed directory.
type Store struct {
	dir  string
	root *os.Root
}

// Open opens the document tree rooted at dir.
func Open(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("store directory is empty")
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve store directory: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to stat store directory %s: %w", abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("store path is not a directory: %s", abs)
	}

	root, err := os.OpenRoot(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to open store directory %s: %w", abs, err)
	}

	return &Store{dir: abs, root: root}, nil
}

// Dir returns the absolute directory of the store root.
func (s *Store) Dir() string {
	return s.dir
}

// Close releases the root directory handle.
func (s *Store) Close() error {
	return s.root.Close()
}

// Stat reports the file info of a resolved document. Any failure to stat the
// file, including a symlink that leaves the tree, is reported as absence.
func (s *Store) Stat(req *ResolvedRequest) (fs.FileInfo, error) {
	info, err := s.root.Stat(req.Name)
	if err != nil {
		return nil, &NotFoundError{Path: req.LogicalPath, Cause: err}
	}
	return info, nil
}

// Open opens a resolved document for reading. The caller closes the file.
func (s *Store) Open(req *ResolvedRequest) (*os.File, error) {
	return s.root.Open(req.Name)
}

// ReadFile returns the full contents of a resolved document.
func (s *Store) ReadFile(req *ResolvedRequest) ([]byte, error) {
	f, err := s.Open(req)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(f)
}

// Walk calls fn for every node holding a page document, in lexical file order.
// Requests passed to fn are in raw-download mode.
func (s *Store) Walk(ctx context.Context, fn func(*ResolvedRequest) error) error {
	return fs.WalkDir(s.root.FS(), ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || d.Name() != PageFile {
			return nil
		}

		req, err := s.Resolve(path.Dir(p), ModeRawDownload)
		if err != nil {
			return err
		}
		return fn(req)
	})
}
