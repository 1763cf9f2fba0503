package rendering

import (
	"bytes"
	"html/template"
)

// NotFoundBody is the fixed body of 404 responses.
const NotFoundBody = "Not found\n"

const pageShell = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Path}}</title>
</head>
<body>
<pre>{{.Content}}</pre>
</body>
</html>
`

var pageTemplate = template.Must(template.New("page").Parse(pageShell))

type pageData struct {
	Path    string
	Content template.HTML
}

// renderShell wraps indented JSON in the HTML shell. content must come from
// IndentDocument, which guarantees it holds no HTML metacharacters.
func renderShell(logicalPath string, content []byte) ([]byte, error) {
	var buf bytes.Buffer
	err := pageTemplate.Execute(&buf, pageData{
		Path:    logicalPath,
		Content: template.HTML(content), //nolint:gosec // HTML metacharacters escaped by IndentDocument
	})
	if err != nil {
		return nil, &TemplateError{Message: "failed to execute page shell", Cause: err}
	}
	return buf.Bytes(), nil
}
