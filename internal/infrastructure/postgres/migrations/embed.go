// Package migrations expone los scripts goose del esquema PostgreSQL.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
