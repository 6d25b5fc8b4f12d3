package web

import "embed"

// StaticFS embeds the single-page UI (index.html, app.js, app.css).
//
//go:embed static/*
var StaticFS embed.FS
