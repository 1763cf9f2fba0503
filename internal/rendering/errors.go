// Package rendering turns resolved page documents into HTTP responses.
package rendering

import "fmt"

// MalformedDocumentError indicates a page document that exists but could not
// be read or, in html-page mode, parsed.
type MalformedDocumentError struct {
	Path    string
	Message string
	Cause   error
}

func (e *MalformedDocumentError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed document %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("malformed document %s: %s", e.Path, e.Message)
}

func (e *MalformedDocumentError) Unwrap() error {
	return e.Cause
}

// TemplateError represents a failure executing the HTML shell.
type TemplateError struct {
	Message string
	Cause   error
}

func (e *TemplateError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("template error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("template error: %s", e.Message)
}

func (e *TemplateError) Unwrap() error {
	return e.Cause
}
