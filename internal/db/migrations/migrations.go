// Package migrations embebe los archivos SQL aplicados por goose.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
