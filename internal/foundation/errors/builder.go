package errors

// ErrorBuilder assembles a ClassifiedError step by step.
type ErrorBuilder struct {
	err ClassifiedError
}

// NewError starts an error of the given category. Severity defaults to error
// and the error is not retried.
func NewError(category ErrorCategory, message string) *ErrorBuilder {
	return &ErrorBuilder{err: ClassifiedError{
		category: category,
		severity: SeverityError,
		retry:    RetryNever,
		message:  message,
		context:  make(ErrorContext),
	}}
}

// WrapError starts an error of the given category caused by err.
func WrapError(err error, category ErrorCategory, message string) *ErrorBuilder {
	return NewError(category, message).WithCause(err)
}

// WithCause records the underlying error, exposed through Unwrap.
func (b *ErrorBuilder) WithCause(err error) *ErrorBuilder {
	b.err.cause = err
	return b
}

// WithContext attaches a key/value pair shown by the CLI and HTTP adapters.
func (b *ErrorBuilder) WithContext(key string, value any) *ErrorBuilder {
	b.err.context[key] = value
	return b
}

// Fatal marks the error as stopping the whole run.
func (b *ErrorBuilder) Fatal() *ErrorBuilder {
	b.err.severity = SeverityFatal
	return b
}

// Retryable marks a transient failure; retry with backoff.
func (b *ErrorBuilder) Retryable() *ErrorBuilder {
	b.err.retry = RetryBackoff
	return b
}

// UserAction marks an error only the user can fix (input, credentials, config).
func (b *ErrorBuilder) UserAction() *ErrorBuilder {
	b.err.retry = RetryUserAction
	return b
}

// Build returns the error. The builder must not be reused.
func (b *ErrorBuilder) Build() *ClassifiedError {
	e := b.err
	return &e
}

// ConfigError reports an unusable configuration.
func ConfigError(message string) *ErrorBuilder {
	return NewError(CategoryConfig, message).Fatal()
}

// ValidationError reports invalid user input.
func ValidationError(message string) *ErrorBuilder {
	return NewError(CategoryValidation, message).UserAction()
}

// SyntaxError reports Markdown the converter rejects.
func SyntaxError(message string) *ErrorBuilder {
	return NewError(CategorySyntax, message).UserAction()
}

// RenderError reports a malformed HTML tree.
func RenderError(message string) *ErrorBuilder {
	return NewError(CategoryRender, message).Fatal()
}

// TemplateError reports a missing or unreadable page template.
func TemplateError(message string) *ErrorBuilder {
	return NewError(CategoryTemplate, message).UserAction()
}

// GitError reports a failed clone or fetch.
func GitError(message string) *ErrorBuilder {
	return NewError(CategoryGit, message).Retryable()
}

// FileSystemError reports a failed read, write or copy during a build.
func FileSystemError(message string) *ErrorBuilder {
	return NewError(CategoryFileSystem, message)
}

// NotFoundError reports a missing directory, repository or branch.
func NotFoundError(message string) *ErrorBuilder {
	return NewError(CategoryNotFound, message).UserAction()
}

// RuntimeError reports a failure of the running process (watcher, listener, cancellation).
func RuntimeError(message string) *ErrorBuilder {
	return NewError(CategoryRuntime, message).Fatal()
}

// InternalError reports a broken invariant.
func InternalError(message string) *ErrorBuilder {
	return NewError(CategoryInternal, message).Fatal()
}
