package contentsite

import "embed"

// EmbeddedAssets contains static assets shipped with the framework:
// livepreview.js and site.css
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
