// Package state persists what previous builds produced so incremental builds
// can skip pages whose inputs have not changed.
//
// Pages are keyed by their content-relative path. A page fingerprint covers the
// Markdown body and a digest of everything else that shapes the output (the
// template text and the base path); see Fingerprint.
package state
