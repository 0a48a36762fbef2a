// Package web holds the embedded UI: page templates and static assets.
package web

import "embed"

// TemplatesFS embeds the page and fragment templates.
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS embeds css and js.
//go:embed static/*
var StaticFS embed.FS
