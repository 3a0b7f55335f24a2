package appfs

import "embed"

// FS holds the app's static files: goose migrations and mail templates.
// Embedding keeps binaries self-contained and test runs independent of
// the working directory.
//go:embed migrations all:assets
var FS embed.FS
