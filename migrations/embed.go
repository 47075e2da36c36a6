// Package migrations embeds the versioned SQL schema so binaries can
// migrate without a migrations directory on disk.
package migrations

import "embed"

// FS holds the *.up.sql and *.down.sql files of this directory.
//
//go:embed *.sql
var FS embed.FS
