// Package schemas embeds the JSON Schemas describing documents in the
// services store.
package schemas

import _ "embed"

// ServicePage is the schema of a catalogue page: a named, versioned list of
// tools.
//
//go:embed service_page.schema.json
var ServicePage string
