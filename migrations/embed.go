// Package migrations embeds the goose SQL migrations of the canonical store.
package migrations

import "embed"

// FS holds every *.sql migration in apply order.
//
//go:embed *.sql
var FS embed.FS
