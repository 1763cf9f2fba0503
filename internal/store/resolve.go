package store

import (
	"path"
	"path/filepath"
	"strings"
)

// Mode selects how a resolved document is returned to the client.
type Mode int

const (
	// ModeHTMLPage embeds the reindented document in an HTML page.
	ModeHTMLPage Mode = iota
	// ModeRawDownload streams the stored bytes as a JSON attachment.
	ModeRawDownload
)

func (m Mode) String() string {
	switch m {
	case ModeHTMLPage:
		return "html-page"
	case ModeRawDownload:
		return "raw-download"
	default:
		return "unknown"
	}
}

// ResolvedRequest locates the page document behind a services subpath.
type ResolvedRequest struct {
	Subpath     string // normalized subpath, "." for the root
	Name        string // slash-separated file name relative to the store root
	FilePath    string // absolute canonical file location
	LogicalPath string // path echoed back to clients, e.g. /services/a/b
	Filename    string // suggested download name, e.g. a_b.json
	Mode        Mode
}

// NormalizeSubpath strips trailing slashes and maps the empty subpath to ".".
func NormalizeSubpath(subpath string) string {
	subpath = strings.TrimRight(subpath, "/")
	if subpath == "" {
		return "."
	}
	return subpath
}

// Resolve maps a services subpath onto the page document of its node.
// A subpath that could escape the store root is rejected with NotFoundError.
func (s *Store) Resolve(subpath string, mode Mode) (*ResolvedRequest, error) {
	subpath = NormalizeSubpath(subpath)

	if subpath == "." {
		return &ResolvedRequest{
			Subpath:     ".",
			Name:        PageFile,
			FilePath:    filepath.Join(s.dir, PageFile),
			LogicalPath: RoutePrefix,
			Filename:    RootFilename,
			Mode:        mode,
		}, nil
	}

	logicalPath := RoutePrefix + "/" + subpath
	if err := checkSubpath(subpath); err != nil {
		return nil, &NotFoundError{Path: logicalPath, Cause: err}
	}

	name := path.Join(subpath, PageFile)
	filePath := filepath.Join(s.dir, filepath.FromSlash(name))
	if !within(s.dir, filePath) {
		return nil, &NotFoundError{
			Path:  logicalPath,
			Cause: &PathError{Subpath: subpath, Reason: "resolves outside the store"},
		}
	}

	return &ResolvedRequest{
		Subpath:     subpath,
		Name:        name,
		FilePath:    filePath,
		LogicalPath: logicalPath,
		Filename:    strings.ReplaceAll(subpath, "/", "_") + ".json",
		Mode:        mode,
	}, nil
}

func checkSubpath(subpath string) error {
	if strings.HasPrefix(subpath, "/") {
		return &PathError{Subpath: subpath, Reason: "absolute path"}
	}
	if strings.ContainsAny(subpath, "\x00\\") {
		return &PathError{Subpath: subpath, Reason: "forbidden character"}
	}
	for _, segment := range strings.Split(subpath, "/") {
		if segment == ".." {
			return &PathError{Subpath: subpath, Reason: "parent segment"}
		}
	}
	return nil
}

// within reports whether target lies inside dir after both are cleaned.
func within(dir, target string) bool {
	rel, err := filepath.Rel(dir, target)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}
