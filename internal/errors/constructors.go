package errors

// Convenience functions for common error patterns

// Config errors

func ConfigNotFound(path string) *InkpressError {
	return New(CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ConfigRequired(field string) *InkpressError {
	return New(CategoryConfig, SeverityFatal, "required configuration missing").
		WithContext("field", field)
}

func ValidationFailed(field, reason string) *InkpressError {
	return New(CategoryValidation, SeverityFatal, "validation failed").
		WithContext("field", field).
		WithContext("reason", reason)
}

// Content errors

func FrontMatterInvalid(path string, cause error) *InkpressError {
	return Wrap(cause, CategoryContent, SeverityFatal, "front matter is not valid YAML").
		WithContext("path", path)
}

func FrontMatterMissingField(path, field string) *InkpressError {
	return New(CategoryContent, SeverityFatal, "required front matter field missing").
		WithContext("path", path).
		WithContext("field", field)
}

func ExcerptMarkerMissing(path string) *InkpressError {
	return New(CategoryContent, SeverityFatal, "published post has no excerpt marker").
		WithContext("path", path)
}

// Build pipeline errors

func BuildFailed(stage string, cause error) *InkpressError {
	return Wrap(cause, CategoryRender, SeverityFatal, "build failed").
		WithContext("stage", stage)
}

func OutputError(operation string, cause error) *InkpressError {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, "output tree operation failed").
		WithContext("operation", operation)
}

// Publish errors

func PagesPushError(branch string, cause error) *InkpressError {
	return WrapRetryable(cause, CategoryGit, SeverityFatal, "pages branch push failed").
		WithContext("branch", branch)
}

func BucketSyncError(bucket string, cause error) *InkpressError {
	return WrapRetryable(cause, CategoryUpload, SeverityFatal, "object storage sync failed").
		WithContext("bucket", bucket)
}

// Internal errors

func InternalError(message string, cause error) *InkpressError {
	return Wrap(cause, CategoryInternal, SeverityFatal, message)
}
