// Package migrations embeds the plan cache's Postgres schema migrations
// for golang-migrate's iofs source driver.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
