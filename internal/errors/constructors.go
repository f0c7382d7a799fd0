package errors

// InvalidRoot reports that the export root does not exist or is not a directory.
// This fails before any artifact is produced.
func InvalidRoot(path string, cause error) *ExportError {
	return &ExportError{
		Category: CategoryInvalidRoot,
		Severity: SeverityFatal,
		Message:  "export root is not a readable directory",
		Path:     path,
		Cause:    cause,
	}
}

// UnreadableEntry reports a filesystem entry that could not be classified.
// The traversal excludes such entries rather than failing, so severity is warning.
func UnreadableEntry(path string, cause error) *ExportError {
	return &ExportError{
		Category: CategoryUnreadableEntry,
		Severity: SeverityWarning,
		Message:  "entry could not be classified",
		Path:     path,
		Cause:    cause,
	}
}

// RenderFailure reports that the render engine failed for a specific notebook.
func RenderFailure(notebookPath string, cause error) *ExportError {
	return &ExportError{
		Category: CategoryRender,
		Severity: SeverityError,
		Message:  "notebook render failed",
		Path:     notebookPath,
		Cause:    cause,
	}
}

// TemplateFailure reports that the index template failed for a directory.
// No further page can cross-link into that subtree, so this is fatal for it.
func TemplateFailure(dirPath string, cause error) *ExportError {
	return &ExportError{
		Category: CategoryTemplate,
		Severity: SeverityFatal,
		Message:  "index template render failed",
		Path:     dirPath,
		Cause:    cause,
	}
}

// ConfigError reports an invalid configuration value.
func ConfigError(message string) *ExportError {
	return &ExportError{
		Category: CategoryConfig,
		Severity: SeverityFatal,
		Message:  message,
	}
}
