// Package json provides an order-preserving JSON codec for records.
package json

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/zoobzio/replica"
)

// jsonCodec implements replica.Codec for JSON.
type jsonCodec struct{}

// New returns a JSON codec.
func New() replica.Codec {
	return &jsonCodec{}
}

// ContentType returns the MIME type for JSON.
func (c *jsonCodec) ContentType() string {
	return "application/json"
}

// Encode writes r as a JSON object in key order.
func (c *jsonCodec) Encode(r *replica.Record) ([]byte, error) {
	if err := replica.CheckEncodable(r); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := writeValue(&buf, replica.RecordOf(r)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeValue(buf *bytes.Buffer, v replica.Value) error {
	switch v.Kind() {
	case replica.KindNull:
		buf.WriteString("null")
	case replica.KindBool:
		b, _ := v.AsBool()
		buf.WriteString(strconv.FormatBool(b))
	case replica.KindInt:
		i, _ := v.AsInt()
		buf.WriteString(strconv.FormatInt(i, 10))
	case replica.KindFloat:
		f, _ := v.AsFloat()
		data, err := json.Marshal(f)
		if err != nil {
			return err
		}
		buf.Write(data)
		// Keep integral floats distinguishable from ints on decode
		if !bytes.ContainsAny(data, ".eE") {
			buf.WriteString(".0")
		}
	case replica.KindString:
		s, _ := v.AsString()
		return writeString(buf, s)
	case replica.KindRecord:
		r, _ := v.AsRecord()
		buf.WriteByte('{')
		for i, k := range r.Keys() {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeString(buf, k); err != nil {
				return err
			}
			buf.WriteByte(':')
			ev, _ := r.Get(k)
			if err := writeValue(buf, ev); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case replica.KindSequence:
		s, _ := v.AsSequence()
		buf.WriteByte('[')
		for i, ev := range s.Values() {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeValue(buf, ev); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		return replica.Unencodable("$", v)
	}
	return nil
}

func writeString(buf *bytes.Buffer, s string) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	buf.Write(data)
	return nil
}

// Decode reads a JSON object, keeping member order.
func (c *jsonCodec) Decode(data []byte) (*replica.Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if tok != json.Delim('{') {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}
	r, err := readObject(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after top-level object")
	}
	return r, nil
}

// readObject reads members after an opening brace.
func readObject(dec *json.Decoder) (*replica.Record, error) {
	r := replica.NewRecord()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", tok)
		}
		v, err := readValue(dec)
		if err != nil {
			return nil, err
		}
		r.Set(key, v)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return r, nil
}

func readValue(dec *json.Decoder) (replica.Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return replica.Null(), err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			r, err := readObject(dec)
			if err != nil {
				return replica.Null(), err
			}
			return replica.RecordOf(r), nil
		case '[':
			s := replica.NewSequence()
			for dec.More() {
				v, err := readValue(dec)
				if err != nil {
					return replica.Null(), err
				}
				s.Append(v)
			}
			if _, err := dec.Token(); err != nil {
				return replica.Null(), err
			}
			return replica.SequenceOf(s), nil
		}
		return replica.Null(), fmt.Errorf("unexpected delimiter %v", t)
	case json.Number:
		return number(t)
	case string:
		return replica.String(t), nil
	case bool:
		return replica.Bool(t), nil
	case nil:
		return replica.Null(), nil
	}
	return replica.Null(), fmt.Errorf("unexpected token %v", tok)
}

func number(n json.Number) (replica.Value, error) {
	if !strings.ContainsAny(n.String(), ".eE") {
		if i, err := n.Int64(); err == nil {
			return replica.Int(i), nil
		}
	}
	f, err := n.Float64()
	if err != nil {
		return replica.Null(), err
	}
	return replica.Float(f), nil
}
