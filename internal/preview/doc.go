// Package preview serves the generated site locally and rebuilds it when
// content, static assets or the page template change.
package preview
