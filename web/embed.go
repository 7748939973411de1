// Package web holds the ledger page templates and the assets they load.
package web

import "embed"

// TemplatesFS holds the page, ledger and row templates.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS holds app.js and style.css, served under /static/.
//
//go:embed static/*
var StaticFS embed.FS
