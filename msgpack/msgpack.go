// Package msgpack provides an order-preserving MessagePack codec for records.
package msgpack

import (
	"bytes"
	"fmt"
	"math"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"
	"github.com/zoobzio/replica"
)

// msgpackCodec implements replica.Codec for MessagePack.
type msgpackCodec struct{}

// New returns a MessagePack codec.
func New() replica.Codec {
	return &msgpackCodec{}
}

// ContentType returns the MIME type for MessagePack.
func (c *msgpackCodec) ContentType() string {
	return "application/msgpack"
}

// Encode writes r as a MessagePack map in key order.
func (c *msgpackCodec) Encode(r *replica.Record) ([]byte, error) {
	if err := replica.CheckEncodable(r); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	if err := encodeValue(enc, replica.RecordOf(r)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeValue(enc *msgpack.Encoder, v replica.Value) error {
	switch v.Kind() {
	case replica.KindNull:
		return enc.EncodeNil()
	case replica.KindBool:
		b, _ := v.AsBool()
		return enc.EncodeBool(b)
	case replica.KindInt:
		i, _ := v.AsInt()
		return enc.EncodeInt(i)
	case replica.KindFloat:
		f, _ := v.AsFloat()
		return enc.EncodeFloat64(f)
	case replica.KindString:
		s, _ := v.AsString()
		return enc.EncodeString(s)
	case replica.KindRecord:
		r, _ := v.AsRecord()
		if err := enc.EncodeMapLen(r.Len()); err != nil {
			return err
		}
		for _, k := range r.Keys() {
			if err := enc.EncodeString(k); err != nil {
				return err
			}
			ev, _ := r.Get(k)
			if err := encodeValue(enc, ev); err != nil {
				return err
			}
		}
		return nil
	case replica.KindSequence:
		s, _ := v.AsSequence()
		if err := enc.EncodeArrayLen(s.Len()); err != nil {
			return err
		}
		for _, ev := range s.Values() {
			if err := encodeValue(enc, ev); err != nil {
				return err
			}
		}
		return nil
	}
	return replica.Unencodable("$", v)
}

// Decode reads a MessagePack map, keeping key order.
func (c *msgpackCodec) Decode(data []byte) (*replica.Record, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	code, err := dec.PeekCode()
	if err != nil {
		return nil, err
	}
	if !isMap(code) {
		return nil, fmt.Errorf("expected map, got code %#x", code)
	}
	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	r, _ := v.AsRecord()
	return r, nil
}

func isMap(c byte) bool {
	return msgpcode.IsFixedMap(c) || c == msgpcode.Map16 || c == msgpcode.Map32
}

func isArray(c byte) bool {
	return msgpcode.IsFixedArray(c) || c == msgpcode.Array16 || c == msgpcode.Array32
}

func decodeValue(dec *msgpack.Decoder) (replica.Value, error) {
	code, err := dec.PeekCode()
	if err != nil {
		return replica.Null(), err
	}

	switch {
	case isMap(code):
		n, err := dec.DecodeMapLen()
		if err != nil {
			return replica.Null(), err
		}
		r := replica.NewRecord()
		for i := 0; i < n; i++ {
			key, err := dec.DecodeString()
			if err != nil {
				return replica.Null(), err
			}
			v, err := decodeValue(dec)
			if err != nil {
				return replica.Null(), err
			}
			r.Set(key, v)
		}
		return replica.RecordOf(r), nil

	case isArray(code):
		n, err := dec.DecodeArrayLen()
		if err != nil {
			return replica.Null(), err
		}
		s := replica.NewSequence()
		for i := 0; i < n; i++ {
			v, err := decodeValue(dec)
			if err != nil {
				return replica.Null(), err
			}
			s.Append(v)
		}
		return replica.SequenceOf(s), nil
	}

	x, err := dec.DecodeInterfaceLoose()
	if err != nil {
		return replica.Null(), err
	}
	switch t := x.(type) {
	case nil:
		return replica.Null(), nil
	case bool:
		return replica.Bool(t), nil
	case int64:
		return replica.Int(t), nil
	case uint64:
		if t > math.MaxInt64 {
			return replica.Float(float64(t)), nil
		}
		return replica.Int(int64(t)), nil
	case float64:
		return replica.Float(t), nil
	case string:
		return replica.String(t), nil
	case []byte:
		return replica.String(string(t)), nil
	}
	return replica.Null(), fmt.Errorf("unsupported msgpack value %T", x)
}
