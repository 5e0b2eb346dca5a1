// Package bson provides an order-preserving BSON codec for records.
package bson

import (
	"fmt"

	"github.com/zoobzio/replica"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// bsonCodec implements replica.Codec for BSON.
type bsonCodec struct{}

// New returns a BSON codec.
func New() replica.Codec {
	return &bsonCodec{}
}

// ContentType returns the MIME type for BSON.
func (c *bsonCodec) ContentType() string {
	return "application/bson"
}

// Encode writes r as a BSON document in key order.
func (c *bsonCodec) Encode(r *replica.Record) ([]byte, error) {
	if err := replica.CheckEncodable(r); err != nil {
		return nil, err
	}
	return bson.Marshal(toD(r))
}

func toD(r *replica.Record) bson.D {
	d := make(bson.D, 0, r.Len())
	r.Range(func(k string, v replica.Value) bool {
		d = append(d, bson.E{Key: k, Value: toBSON(v)})
		return true
	})
	return d
}

func toBSON(v replica.Value) any {
	switch v.Kind() {
	case replica.KindBool:
		b, _ := v.AsBool()
		return b
	case replica.KindInt:
		i, _ := v.AsInt()
		return i
	case replica.KindFloat:
		f, _ := v.AsFloat()
		return f
	case replica.KindString:
		s, _ := v.AsString()
		return s
	case replica.KindRecord:
		r, _ := v.AsRecord()
		return toD(r)
	case replica.KindSequence:
		s, _ := v.AsSequence()
		a := make(bson.A, 0, s.Len())
		s.Range(func(_ int, ev replica.Value) bool {
			a = append(a, toBSON(ev))
			return true
		})
		return a
	default:
		return nil
	}
}

// Decode reads a BSON document, keeping element order.
func (c *bsonCodec) Decode(data []byte) (*replica.Record, error) {
	var d bson.D
	if err := bson.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	return fromD(d)
}

func fromD(d bson.D) (*replica.Record, error) {
	r := replica.NewRecord()
	for _, e := range d {
		v, err := fromBSON(e.Value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Key, err)
		}
		r.Set(e.Key, v)
	}
	return r, nil
}

func fromBSON(x any) (replica.Value, error) {
	switch t := x.(type) {
	case nil, primitive.Null, primitive.Undefined:
		return replica.Null(), nil
	case bool:
		return replica.Bool(t), nil
	case int32:
		return replica.Int(int64(t)), nil
	case int64:
		return replica.Int(t), nil
	case float64:
		return replica.Float(t), nil
	case string:
		return replica.String(t), nil
	case bson.D:
		r, err := fromD(t)
		if err != nil {
			return replica.Null(), err
		}
		return replica.RecordOf(r), nil
	case bson.A:
		s := replica.NewSequence()
		for i, e := range t {
			v, err := fromBSON(e)
			if err != nil {
				return replica.Null(), fmt.Errorf("[%d]: %w", i, err)
			}
			s.Append(v)
		}
		return replica.SequenceOf(s), nil
	}
	return replica.Null(), fmt.Errorf("unsupported bson value %T", x)
}
