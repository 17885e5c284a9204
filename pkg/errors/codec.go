package errors

// CodecError is a specialized error type for blob-record encode/decode
// failures. It embeds baseError to inherit the standard error machinery,
// then adds the context needed to pinpoint exactly which stage of the codec
// pipeline failed and on what input.
type CodecError struct {
	*baseError

	// stage names which codec phase failed: "encode", "decode", "compress"
	// or "decompress".
	stage string

	// tag holds the raw compression tag byte involved in the failure, when
	// known (e.g. an unrecognized tag on decode).
	tag uint8

	// key optionally records the key the failing record belonged to, when
	// available to the caller.
	key string
}

// NewCodecError creates a new codec-specific error.
func NewCodecError(err error, code ErrorCode, msg string) *CodecError {
	return &CodecError{baseError: NewBaseError(err, code, msg)}
}

// WithMessage updates the error message while preserving the CodecError type.
func (ce *CodecError) WithMessage(msg string) *CodecError {
	ce.baseError.WithMessage(msg)
	return ce
}

// WithCode sets the error code while preserving the CodecError type.
func (ce *CodecError) WithCode(code ErrorCode) *CodecError {
	ce.baseError.WithCode(code)
	return ce
}

// WithDetail adds contextual information while preserving the CodecError type.
func (ce *CodecError) WithDetail(key string, value any) *CodecError {
	ce.baseError.WithDetail(key, value)
	return ce
}

// WithStage records which codec phase was executing when the error occurred.
func (ce *CodecError) WithStage(stage string) *CodecError {
	ce.stage = stage
	return ce
}

// WithTag records the raw compression tag byte involved in the failure.
func (ce *CodecError) WithTag(tag uint8) *CodecError {
	ce.tag = tag
	return ce
}

// WithKey records which key the failing record belonged to.
func (ce *CodecError) WithKey(key string) *CodecError {
	ce.key = key
	return ce
}

// Stage returns the codec phase that failed.
func (ce *CodecError) Stage() string {
	return ce.stage
}

// Tag returns the raw compression tag byte involved in the failure.
func (ce *CodecError) Tag() uint8 {
	return ce.tag
}

// Key returns the key the failing record belonged to, if known.
func (ce *CodecError) Key() string {
	return ce.key
}
