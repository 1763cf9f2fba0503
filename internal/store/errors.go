package store

import "fmt"

// NotFoundError indicates that no page document backs the requested path,
// either because the file is absent or because the path was rejected.
type NotFoundError struct {
	Path  string
	Cause error
}

func (e *NotFoundError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("document not found: %s: %v", e.Path, e.Cause)
	}
	return fmt.Sprintf("document not found: %s", e.Path)
}

func (e *NotFoundError) Unwrap() error {
	return e.Cause
}

// PathError describes a subpath that cannot name a node inside the store.
type PathError struct {
	Subpath string
	Reason  string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("invalid subpath %q: %s", e.Subpath, e.Reason)
}
