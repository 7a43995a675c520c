package migrations

import "embed"

// Files stores the Postgres SQL migrations applied by `reader-hub migrate`.
//
//go:embed *.sql
var Files embed.FS
