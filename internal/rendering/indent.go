package rendering

import (
	"bytes"
	"encoding/json"
	"errors"
	"unicode/utf8"
)

// IndentUnit is the per-level indentation of rendered documents.
const IndentUnit = "  "

var errInvalidUTF8 = errors.New("document is not valid UTF-8")

// IndentDocument reindents a JSON document with two spaces per level.
//
// Key order and number literals are kept as stored. The characters <, > and &
// inside strings are written as \u003c, \u003e and \u0026, so the result is
// still the same JSON value and can be placed inside HTML without escaping.
func IndentDocument(data []byte) ([]byte, error) {
	if !utf8.Valid(data) {
		return nil, errInvalidUTF8
	}

	var indented bytes.Buffer
	if err := json.Indent(&indented, bytes.TrimSpace(data), "", IndentUnit); err != nil {
		return nil, err
	}

	var out bytes.Buffer
	json.HTMLEscape(&out, indented.Bytes())
	return out.Bytes(), nil
}
