package replica

import (
	"encoding/hex"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/crypto/blake2b"
)

// Fingerprint returns a hex BLAKE2b-256 digest of r's structure and values.
//
// The digest is order-sensitive: records with the same entries in a
// different order fingerprint differently. Funcs contribute their name and
// opaque values their Go type, so value-equal acyclic records always share
// a fingerprint. Cycles fail with *CyclicStructureError.
func Fingerprint(r *Record) (string, error) {
	if err := Walk(r, func(string, Value) error { return nil }); err != nil {
		return "", err
	}

	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	enc := msgpack.NewEncoder(h)
	if err := fingerprintValue(enc, RecordOf(r)); err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// fingerprintValue writes a kind tag followed by the value's canonical form.
func fingerprintValue(enc *msgpack.Encoder, v Value) error {
	if err := enc.EncodeUint8(uint8(v.kind)); err != nil {
		return err
	}
	switch v.kind {
	case KindNull:
		return enc.EncodeNil()
	case KindBool:
		b, _ := v.AsBool()
		return enc.EncodeBool(b)
	case KindInt:
		i, _ := v.AsInt()
		return enc.EncodeInt(i)
	case KindFloat:
		f, _ := v.AsFloat()
		return enc.EncodeFloat64(f)
	case KindString:
		s, _ := v.AsString()
		return enc.EncodeString(s)
	case KindRecord:
		r, _ := v.AsRecord()
		if err := enc.EncodeMapLen(r.Len()); err != nil {
			return err
		}
		for _, k := range r.keys {
			if err := enc.EncodeString(k); err != nil {
				return err
			}
			if err := fingerprintValue(enc, r.entries[k]); err != nil {
				return err
			}
		}
		return nil
	case KindSequence:
		s, _ := v.AsSequence()
		if err := enc.EncodeArrayLen(s.Len()); err != nil {
			return err
		}
		for _, e := range s.elems {
			if err := fingerprintValue(enc, e); err != nil {
				return err
			}
		}
		return nil
	case KindFunc:
		f, _ := v.AsFunc()
		return enc.EncodeString(f.Name)
	case KindOpaque:
		x, _ := v.AsOpaque()
		return enc.EncodeString(typeName(x))
	}
	return &UnsupportedValueError{Path: "$", Type: v.kind.String()}
}
