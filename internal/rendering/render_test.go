package rendering

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonathan/services-gateway/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePage(t *testing.T, dir, subpath, content string) {
	t.Helper()
	nodeDir := filepath.Join(dir, filepath.FromSlash(subpath))
	require.NoError(t, os.MkdirAll(nodeDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(nodeDir, store.PageFile), []byte(content), 0o644))
}

// newTestRenderer builds the store used across these tests:
// root {"x":1}, a {"y":[1,2,3]}, broken (invalid JSON), dir (page.json is a directory).
func newTestRenderer(t *testing.T) (*Renderer, *store.Store) {
	t.Helper()
	dir := t.TempDir()
	writePage(t, dir, ".", `{"x":1}`)
	writePage(t, dir, "a", `{"y":[1,2,3]}`)
	writePage(t, dir, "a/b", `{"name":"vercel","version":"1.0.0","tools":[{"name":"<list>"}]}`)
	writePage(t, dir, "broken", `{"x":`)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "dir", store.PageFile), 0o755))

	s, err := store.Open(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return NewRenderer(s), s
}

func render(t *testing.T, r *Renderer, s *store.Store, subpath string, mode store.Mode) (*Page, error) {
	t.Helper()
	req, err := s.Resolve(subpath, mode)
	require.NoError(t, err)
	page, err := r.Render(req)
	if page != nil {
		t.Cleanup(func() { _ = page.Close() })
	}
	return page, err
}

func preText(t *testing.T, body []byte) string {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	require.NoError(t, err)
	pre := doc.Find("pre")
	require.Equal(t, 1, pre.Length())
	return pre.Text()
}

func TestRender_HTMLPage(t *testing.T) {
	r, s := newTestRenderer(t)

	page, err := render(t, r, s, "a", store.ModeHTMLPage)
	require.NoError(t, err)

	assert.Equal(t, store.ModeHTMLPage, page.Mode)
	assert.Nil(t, page.File)
	assert.Contains(t, string(page.Body), "{\n  \"y\": [\n    1,\n    2,\n    3\n  ]\n}")
	assert.Contains(t, string(page.Body), "<title>/services/a</title>")
	assert.NotContains(t, string(page.Body), "<script")
}

func TestRender_HTMLRoundTrip(t *testing.T) {
	r, s := newTestRenderer(t)

	for _, subpath := range []string{"", "a", "a/b"} {
		t.Run(subpath, func(t *testing.T) {
			page, err := render(t, r, s, subpath, store.ModeHTMLPage)
			require.NoError(t, err)

			req, err := s.Resolve(subpath, store.ModeHTMLPage)
			require.NoError(t, err)
			stored, err := s.ReadFile(req)
			require.NoError(t, err)

			var want, got any
			require.NoError(t, json.Unmarshal(stored, &want))
			require.NoError(t, json.Unmarshal([]byte(preText(t, page.Body)), &got))
			assert.Equal(t, want, got)
		})
	}
}

func TestRender_NotFound(t *testing.T) {
	r, s := newTestRenderer(t)

	for _, mode := range []store.Mode{store.ModeHTMLPage, store.ModeRawDownload} {
		t.Run(mode.String(), func(t *testing.T) {
			page, err := render(t, r, s, "missing", mode)
			assert.Nil(t, page)

			var notFound *store.NotFoundError
			require.True(t, errors.As(err, &notFound), "expected NotFoundError, got %v", err)

			var malformed *MalformedDocumentError
			assert.False(t, errors.As(err, &malformed))
		})
	}
}

func TestRender_MalformedHTMLPage(t *testing.T) {
	r, s := newTestRenderer(t)

	page, err := render(t, r, s, "broken", store.ModeHTMLPage)
	assert.Nil(t, page)

	var malformed *MalformedDocumentError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, "/services/broken", malformed.Path)
	assert.Equal(t, "invalid JSON", malformed.Message)
}

func TestRender_MalformedRawDownloadStillServed(t *testing.T) {
	r, s := newTestRenderer(t)

	page, err := render(t, r, s, "broken", store.ModeRawDownload)
	require.NoError(t, err)
	require.NotNil(t, page.File)

	data, err := io.ReadAll(page.File)
	require.NoError(t, err)
	assert.Equal(t, `{"x":`, string(data))
}

func TestRender_DirectoryDocument(t *testing.T) {
	r, s := newTestRenderer(t)

	for _, mode := range []store.Mode{store.ModeHTMLPage, store.ModeRawDownload} {
		_, err := render(t, r, s, "dir", mode)
		var malformed *MalformedDocumentError
		assert.True(t, errors.As(err, &malformed), "mode %s", mode)
	}
}

func TestPage_WriteRawDownload(t *testing.T) {
	r, s := newTestRenderer(t)

	page, err := render(t, r, s, "", store.ModeRawDownload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/services.json", nil)
	w := httptest.NewRecorder()
	page.Write(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `{"x":1}`, w.Body.String())
	assert.Equal(t, ContentTypeJSON, w.Header().Get("Content-Type"))

	disposition, params, err := mime.ParseMediaType(w.Header().Get("Content-Disposition"))
	require.NoError(t, err)
	assert.Equal(t, "attachment", disposition)
	assert.Equal(t, "services.json", params["filename"])
	assert.NotEmpty(t, w.Header().Get("Last-Modified"))
}

func TestPage_WriteHTML(t *testing.T) {
	r, s := newTestRenderer(t)

	page, err := render(t, r, s, "a", store.ModeHTMLPage)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	page.Write(w, httptest.NewRequest(http.MethodGet, "/services/a", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, ContentTypeHTML, w.Header().Get("Content-Type"))
	assert.Equal(t, page.Body, w.Body.Bytes())

	w = httptest.NewRecorder()
	page.Write(w, httptest.NewRequest(http.MethodHead, "/services/a", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.Bytes())
}
