// Package assets embeds the bundled screenshot themes and platform catalog.
package assets

import "embed"

//go:embed themes/*.json platforms.json
var FS embed.FS
