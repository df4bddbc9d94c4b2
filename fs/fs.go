package appfs

import "embed"

// FS holds the application's embedded assets: goose migrations and
// email templates.
//
//go:embed migrations all:templates
var FS embed.FS
