// Package gatekeeper embeds the page templates and static files served by the web service.
package gatekeeper

import "embed"

//go:embed all:web/static
var StaticFS embed.FS

//go:embed all:web/templates
var TemplateFS embed.FS
