package content

// Mode is the rendering mode of one request, derived once from the preview
// session and passed down explicitly.
type Mode struct {
	// Draft makes unpublished revisions visible and bypasses the archive cache.
	// Globals still come from the process-wide cache.
	Draft bool
}
