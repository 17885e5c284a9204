package errors

// ManifestError is a specialized error type for failures in the durable
// segment registry: malformed manifest files, a marker file recording an
// unknown format version, or a failed atomic rewrite.
type ManifestError struct {
	*baseError

	// path is the manifest or marker file involved in the failure.
	path string

	// operation names what the manifest was doing: "recover",
	// "refresh_stats", "write_to_disk", "open", "parse_header".
	operation string
}

// NewManifestError creates a new manifest-specific error.
func NewManifestError(err error, code ErrorCode, msg string) *ManifestError {
	return &ManifestError{baseError: NewBaseError(err, code, msg)}
}

// WithMessage updates the error message while preserving the ManifestError type.
func (me *ManifestError) WithMessage(msg string) *ManifestError {
	me.baseError.WithMessage(msg)
	return me
}

// WithCode sets the error code while preserving the ManifestError type.
func (me *ManifestError) WithCode(code ErrorCode) *ManifestError {
	me.baseError.WithCode(code)
	return me
}

// WithDetail adds contextual information while preserving the ManifestError type.
func (me *ManifestError) WithDetail(key string, value any) *ManifestError {
	me.baseError.WithDetail(key, value)
	return me
}

// WithPath records which file was involved in the failure.
func (me *ManifestError) WithPath(path string) *ManifestError {
	me.path = path
	return me
}

// WithOperation records which manifest operation was in progress.
func (me *ManifestError) WithOperation(operation string) *ManifestError {
	me.operation = operation
	return me
}

// Path returns the file involved in the failure.
func (me *ManifestError) Path() string {
	return me.path
}

// Operation returns the manifest operation that was in progress.
func (me *ManifestError) Operation() string {
	return me.operation
}
