package errors

// Convenience functions for common error patterns

// Config errors

func ConfigNotFound(path string) *BuildError {
	return New(CategoryConfig, SeverityFatal, "no book.yaml found").
		WithContext("path", path)
}

func ConfigInvalid(reason string) *BuildError {
	return New(CategoryConfig, SeverityFatal, "book.yaml is not valid").
		WithContext("reason", reason)
}

func ConfigRequired(fields string) *BuildError {
	return New(CategoryConfig, SeverityFatal, "book.yaml missing required fields").
		WithContext("fields", fields)
}

// Resolution errors

func BookNotFound(identifier string) *BuildError {
	return New(CategoryResolve, SeverityFatal, "book not found").
		WithContext("identifier", identifier)
}

func ArtifactMissing(name string) *BuildError {
	return New(CategoryResolve, SeverityError, "required artifact not found").
		WithContext("artifact", name)
}

func NoInputs(bookDir string) *BuildError {
	return New(CategoryResolve, SeverityFatal, "no markdown files found").
		WithContext("path", bookDir)
}

// Tool and engine errors

func ToolMissing(tool string) *BuildError {
	return New(CategoryTool, SeverityFatal, "required tool not found on PATH").
		WithContext("tool", tool)
}

func EngineFailed(label string, cause error) *BuildError {
	return Wrap(cause, CategoryEngine, SeverityFatal, "external command failed").
		WithContext("command", label)
}

// Build pipeline errors

func BuildFailed(formats string) *BuildError {
	return New(CategoryEngine, SeverityFatal, "one or more formats failed to build").
		WithContext("formats", formats)
}

func PostprocessError(cause error) *BuildError {
	return Wrap(cause, CategoryPostprocess, SeverityWarning, "container post-processing failed")
}

func WorkspaceError(operation string, cause error) *BuildError {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, "workspace operation failed").
		WithContext("operation", operation)
}

// Internal errors

func InternalError(message string, cause error) *BuildError {
	return Wrap(cause, CategoryInternal, SeverityFatal, message)
}
