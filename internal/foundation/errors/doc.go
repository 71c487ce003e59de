// Package errors provides foundational, type-safe error primitives used across mdsite.
//
// Key features:
//   - ErrorCategory: Broad error classification (config, syntax, render, filesystem, etc.)
//   - ErrorSeverity: Impact level (fatal, error, warning, info)
//   - RetryStrategy: Retry behavior (never, backoff, user action)
//   - ClassifiedError: Structured error with category, severity, and context
//   - ErrorBuilder: Fluent API for creating classified errors
//   - HTTP and CLI adapters for error presentation
//
// Example usage:
//
//	err := errors.SyntaxError("unmatched delimiter").
//		WithContext("delimiter", "**").
//		WithContext("block", 3).
//		Build()
package errors
