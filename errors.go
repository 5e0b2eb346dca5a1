package replica

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic error handling.
// Use errors.Is() to check for these error types.
var (
	// ErrCyclicStructure indicates a record or sequence transitively contains itself.
	ErrCyclicStructure = errors.New("cyclic structure")

	// ErrUnsupportedValue indicates a value that cannot be copied or encoded.
	ErrUnsupportedValue = errors.New("unsupported value")

	// ErrDepthExceeded indicates nesting deeper than the configured limit.
	ErrDepthExceeded = errors.New("depth exceeded")

	// ErrInvalidTag indicates a struct tag has an invalid format or value.
	ErrInvalidTag = errors.New("invalid tag")

	// ErrEncode indicates the codec failed to encode a record.
	ErrEncode = errors.New("encode failed")

	// ErrDecode indicates the codec failed to decode input data.
	ErrDecode = errors.New("decode failed")

	// ErrTransform indicates a member transform (mask, hash, encrypt) failed.
	ErrTransform = errors.New("transform failed")

	// ErrUnknownAlgorithm indicates a mask type, hash or cipher name with no
	// built-in implementation.
	ErrUnknownAlgorithm = errors.New("unknown algorithm")
)

// CyclicStructureError reports where a cycle was closed.
// Path names the member that refers back to one of its ancestors.
type CyclicStructureError struct {
	Path string
}

func (e *CyclicStructureError) Error() string {
	return fmt.Sprintf("%s at %s", ErrCyclicStructure.Error(), e.Path)
}

func (e *CyclicStructureError) Unwrap() error {
	return ErrCyclicStructure
}

// UnsupportedValueError reports a value the operation could not handle.
type UnsupportedValueError struct {
	Path string // Location of the value
	Type string // Kind or Go type of the value
}

func (e *UnsupportedValueError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("%s %s at %s", ErrUnsupportedValue.Error(), e.Type, e.Path)
	}
	return fmt.Sprintf("%s at %s", ErrUnsupportedValue.Error(), e.Path)
}

func (e *UnsupportedValueError) Unwrap() error {
	return ErrUnsupportedValue
}

// DepthError reports nesting beyond the configured limit.
type DepthError struct {
	Path  string
	Limit int
}

func (e *DepthError) Error() string {
	return fmt.Sprintf("%s: limit %d at %s", ErrDepthExceeded.Error(), e.Limit, e.Path)
}

func (e *DepthError) Unwrap() error {
	return ErrDepthExceeded
}

// TransformError reports a member transform that could not be applied.
type TransformError struct {
	Path string // Member being transformed
	Op   string // Transform name, e.g. "mask" or "encrypt"
	Err  error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("%s: %s at %s: %v", ErrTransform.Error(), e.Op, e.Path, e.Err)
}

// Unwrap exposes both ErrTransform and the cause to errors.Is.
func (e *TransformError) Unwrap() []error {
	return []error{ErrTransform, e.Err}
}

// TagError reports an invalid struct tag.
type TagError struct {
	Type  string // Struct type name
	Field string // Field name that carries the tag
	Tag   string // Offending tag value
}

func (e *TagError) Error() string {
	return fmt.Sprintf("%s %q (field %s.%s)", ErrInvalidTag.Error(), e.Tag, e.Type, e.Field)
}

func (e *TagError) Unwrap() error {
	return ErrInvalidTag
}

// CodecError represents an encode/decode error.
type CodecError struct {
	Err         error  // Underlying sentinel error (ErrEncode, ErrDecode)
	ContentType string // Codec content type
	Cause       error  // Original error from the codec
}

func (e *CodecError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %v", e.Err.Error(), e.ContentType, e.Cause)
	}
	return fmt.Sprintf("%s (%s)", e.Err.Error(), e.ContentType)
}

// Unwrap exposes both the sentinel and the cause to errors.Is.
func (e *CodecError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

// newCodecError creates a CodecError for encode/decode failures.
func newCodecError(sentinel error, contentType string, cause error) error {
	return &CodecError{
		Err:         sentinel,
		ContentType: contentType,
		Cause:       cause,
	}
}
