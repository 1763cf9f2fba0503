package rendering

import (
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/jonathan/services-gateway/internal/store"
)

const (
	// ContentTypeJSON is forced on raw downloads.
	ContentTypeJSON = "application/json"
	// ContentTypeHTML is used for rendered pages and the not-found body.
	ContentTypeHTML = "text/html; charset=utf-8"
)

// Renderer produces pages from resolved requests. It keeps no state between
// requests and re-reads the store every time.
type Renderer struct {
	store *store.Store
}

// NewRenderer creates a renderer reading from the given store.
func NewRenderer(s *store.Store) *Renderer {
	return &Renderer{store: s}
}

// Page is a rendered response. Exactly one of Body (html-page) or File
// (raw-download) is set.
type Page struct {
	Mode        store.Mode
	LogicalPath string
	Filename    string
	ModTime     time.Time
	Body        []byte
	File        io.ReadSeekCloser
}

// Render checks that the resolved document exists, then renders it in the
// requested mode. Absent documents yield *store.NotFoundError; unreadable or,
// in html-page mode, unparsable documents yield *MalformedDocumentError.
func (r *Renderer) Render(req *store.ResolvedRequest) (*Page, error) {
	info, err := r.store.Stat(req)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, &MalformedDocumentError{Path: req.LogicalPath, Message: "document is a directory"}
	}

	page := &Page{
		Mode:        req.Mode,
		LogicalPath: req.LogicalPath,
		Filename:    req.Filename,
		ModTime:     info.ModTime(),
	}

	if req.Mode == store.ModeRawDownload {
		f, err := r.store.Open(req)
		if err != nil {
			return nil, &MalformedDocumentError{Path: req.LogicalPath, Message: "failed to open document", Cause: err}
		}
		page.File = f
		return page, nil
	}

	data, err := r.store.ReadFile(req)
	if err != nil {
		return nil, &MalformedDocumentError{Path: req.LogicalPath, Message: "failed to read document", Cause: err}
	}

	content, err := IndentDocument(data)
	if err != nil {
		return nil, &MalformedDocumentError{Path: req.LogicalPath, Message: "invalid JSON", Cause: err}
	}

	page.Body, err = renderShell(req.LogicalPath, content)
	if err != nil {
		return nil, err
	}
	return page, nil
}

// Write sends the page to the client. Raw downloads are served with
// http.ServeContent, so conditional and range requests work as for any file.
// The caller still closes the page.
func (p *Page) Write(w http.ResponseWriter, r *http.Request) {
	if p.File != nil {
		w.Header().Set("Content-Type", ContentTypeJSON)
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": p.Filename}))
		http.ServeContent(w, r, p.Filename, p.ModTime, p.File)
		return
	}

	w.Header().Set("Content-Type", ContentTypeHTML)
	w.Header().Set("Content-Length", strconv.Itoa(len(p.Body)))
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = w.Write(p.Body)
	}
}

// Close releases the file held by a raw-download page.
func (p *Page) Close() error {
	if p.File == nil {
		return nil
	}
	return p.File.Close()
}
