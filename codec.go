package replica

import (
	"context"
	"time"
)

// Codec provides content-type aware, order-preserving record encoding.
type Codec interface {
	// ContentType returns the MIME type for this codec (e.g., "application/json").
	ContentType() string

	// Encode writes r in key order.
	Encode(r *Record) ([]byte, error)

	// Decode reads a record, keeping the key order found in data.
	Decode(data []byte) (*Record, error)
}

// Encode encodes r with c. Failures are reported as *CodecError wrapping
// ErrEncode.
func Encode(ctx context.Context, c Codec, r *Record) ([]byte, error) {
	start := time.Now()
	data, err := c.Encode(r)
	if err != nil {
		err = newCodecError(ErrEncode, c.ContentType(), err)
		data = nil
	}
	emitEncode(ctx, c.ContentType(), len(data), time.Since(start), err)
	return data, err
}

// Decode decodes a record with c. Failures are reported as *CodecError
// wrapping ErrDecode.
func Decode(ctx context.Context, c Codec, data []byte) (*Record, error) {
	start := time.Now()
	r, err := c.Decode(data)
	if err != nil {
		err = newCodecError(ErrDecode, c.ContentType(), err)
		r = nil
	}
	emitDecode(ctx, c.ContentType(), len(data), time.Since(start), err)
	return r, err
}

// Unencodable returns the error codecs report for funcs and opaque values.
func Unencodable(p string, v Value) error {
	t := v.Kind().String()
	if x, ok := v.AsOpaque(); ok {
		t = typeName(x)
	}
	return &UnsupportedValueError{Path: p, Type: t}
}
