// Package data holds the embedded demo schedule used when no Postgres
// backend is configured.
package data

import _ "embed"

//go:embed legs.json
var Legs []byte
