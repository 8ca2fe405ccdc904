package spacetraveling

import "embed"

// EmbeddedAssets contains the static assets served under /public/:
// site.js, styles.css, logo.svg
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
