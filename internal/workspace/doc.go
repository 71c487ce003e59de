// Package workspace manages the checkout directory used for remote content.
//
// Ephemeral workspaces (one-shot builds) get a unique mdsite-* directory that
// Cleanup removes. Persistent workspaces (the preview server) use a fixed path
// that survives between rebuilds, so the checkout can be updated in place.
package workspace
