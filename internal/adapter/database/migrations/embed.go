package migrations

import "embed"

// FS holds one directory of migrations per dialect.
//
//go:embed sqlite mysql postgres
var FS embed.FS
