// Package userdesk embeds the console's templates and static files.
package userdesk

import "embed"

// In dev mode (DEV=true) both trees are read from disk instead so edits
// show up without a rebuild.

//go:embed all:frontend/static
var StaticFS embed.FS

//go:embed all:frontend/templates
var TemplateFS embed.FS
