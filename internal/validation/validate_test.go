package validation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jonathan/services-gateway/internal/schemas"
	"github.com/jonathan/services-gateway/internal/store"
	schemafiles "github.com/jonathan/services-gateway/schemas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, pages map[string]string) *store.Store {
	t.Helper()
	dir := t.TempDir()
	for subpath, content := range pages {
		nodeDir := filepath.Join(dir, filepath.FromSlash(subpath))
		require.NoError(t, os.MkdirAll(nodeDir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(nodeDir, store.PageFile), []byte(content), 0o644))
	}

	s, err := store.Open(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestValidate_SyntaxOnly(t *testing.T) {
	s := newStore(t, map[string]string{
		".":     `{"x":1}`,
		"a":     `{"y":[1,2,3]}`,
		"a/b":   `[1, 2`,
		"c":     "\xff\xfe{}",
		"d/e/f": `null`,
	})

	report, err := Validate(context.Background(), s, Options{Workers: 2})
	require.NoError(t, err)

	var paths []string
	for _, r := range report.Results {
		paths = append(paths, r.Path)
	}
	assert.Equal(t, []string{"/services", "/services/a", "/services/a/b", "/services/c", "/services/d/e/f"}, paths)

	assert.Equal(t, 3, report.Count(StatusOK))
	assert.Equal(t, 2, report.Count(StatusMalformed))
	assert.Equal(t, 2, report.Failed())
	assert.False(t, report.OK())
	assert.Empty(t, report.Schema)
	assert.Equal(t, s.Dir(), report.Store)

	broken := report.Results[2]
	assert.Equal(t, "a/b/page.json", broken.Name)
	assert.Equal(t, StatusMalformed, broken.Status)
	assert.NotEmpty(t, broken.Errors)
}

func TestValidate_WithSchema(t *testing.T) {
	s := newStore(t, map[string]string{
		".":      `{"name":"catalogue","version":"1","tools":[]}`,
		"github": `{"name":"github","version":"2.1.0","tools":[{"name":"list-repos"}]}`,
		"slack":  `{"name":"slack","tools":[{}]}`,
		"broken": `{"name":`,
	})

	schema, err := schemas.Compile("builtin:service_page", schemafiles.ServicePage)
	require.NoError(t, err)

	report, err := Validate(context.Background(), s, Options{Schema: schema})
	require.NoError(t, err)

	byPath := make(map[string]Result)
	for _, r := range report.Results {
		byPath[r.Path] = r
	}

	assert.Equal(t, StatusOK, byPath["/services"].Status)
	assert.Equal(t, StatusOK, byPath["/services/github"].Status)
	assert.Equal(t, StatusMalformed, byPath["/services/broken"].Status)

	slack := byPath["/services/slack"]
	assert.Equal(t, StatusSchemaViolation, slack.Status)
	assert.GreaterOrEqual(t, len(slack.Errors), 2, "missing version and tool name")

	assert.Equal(t, "builtin:service_page", report.Schema)
	assert.Equal(t, 2, report.Failed())
}

func TestValidate_EmptyStore(t *testing.T) {
	s := newStore(t, nil)

	report, err := Validate(context.Background(), s, Options{})
	require.NoError(t, err)
	assert.Empty(t, report.Results)
	assert.True(t, report.OK())
}

func TestValidate_Canceled(t *testing.T) {
	s := newStore(t, map[string]string{".": `{}`})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Validate(ctx, s, Options{})
	require.Error(t, err)

	var validationErr *Error
	require.ErrorAs(t, err, &validationErr)
	assert.ErrorIs(t, err, context.Canceled)
}
