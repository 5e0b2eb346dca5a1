package replica

import (
	"encoding/base64"
)

// transform rewrites a top-level member while it is copied. Unless discard
// is set, apply receives an independent copy of the source value.
type transform struct {
	op      string
	discard bool
	apply   func(Value) (Value, error)
}

func withTransform(t transform, keys []string) Option {
	return func(o *options) {
		if o.transforms == nil {
			o.transforms = make(map[string]transform, len(keys))
		}
		for _, k := range keys {
			o.transforms[k] = t
		}
	}
}

// WithTransform applies fn to the copied value of each given top-level key.
// The last transform registered for a key wins.
func WithTransform(op string, fn func(Value) (Value, error), keys ...string) Option {
	return withTransform(transform{op: op, apply: fn}, keys)
}

// WithMask replaces string members with m's masked form. A sequence or
// record under the key has each of its direct string members masked.
func WithMask(m Masker, keys ...string) Option {
	return withTransform(transform{
		op: "mask",
		apply: eachString(func(s string) (string, error) {
			return m.Mask(s), nil
		}),
	}, keys)
}

// WithHash replaces string members with their hash.
func WithHash(h Hasher, keys ...string) Option {
	return withTransform(transform{
		op: "hash",
		apply: eachString(func(s string) (string, error) {
			return h.Hash([]byte(s))
		}),
	}, keys)
}

// WithEncrypt replaces string members with base64 ciphertext.
func WithEncrypt(e Encryptor, keys ...string) Option {
	return withTransform(transform{
		op: "encrypt",
		apply: eachString(func(s string) (string, error) {
			ct, err := e.Encrypt([]byte(s))
			if err != nil {
				return "", err
			}
			return base64.StdEncoding.EncodeToString(ct), nil
		}),
	}, keys)
}

// WithDecrypt reverses WithEncrypt.
func WithDecrypt(e Encryptor, keys ...string) Option {
	return withTransform(transform{
		op: "decrypt",
		apply: eachString(func(s string) (string, error) {
			ct, err := base64.StdEncoding.DecodeString(s)
			if err != nil {
				return "", err
			}
			pt, err := e.Decrypt(ct)
			if err != nil {
				return "", err
			}
			return string(pt), nil
		}),
	}, keys)
}

// eachString lifts fn over a string value and over the direct string
// members of a sequence or record. Null passes through untouched.
func eachString(fn func(string) (string, error)) func(Value) (Value, error) {
	one := func(v Value) (Value, error) {
		switch v.Kind() {
		case KindNull:
			return v, nil
		case KindString:
			s, _ := v.AsString()
			out, err := fn(s)
			if err != nil {
				return Null(), err
			}
			return String(out), nil
		}
		return Null(), &UnsupportedValueError{Type: v.Kind().String()}
	}

	return func(v Value) (Value, error) {
		switch v.Kind() {
		case KindSequence:
			s, _ := v.AsSequence()
			for i, ev := range s.elems {
				out, err := one(ev)
				if err != nil {
					return Null(), err
				}
				s.elems[i] = out
			}
			return v, nil
		case KindRecord:
			r, _ := v.AsRecord()
			for _, k := range r.keys {
				out, err := one(r.entries[k])
				if err != nil {
					return Null(), err
				}
				r.entries[k] = out
			}
			return v, nil
		}
		return one(v)
	}
}

// transform applies t to the member k holding v.
func (w *walker) transform(t transform, k string, v Value, depth int) (Value, error) {
	w.path.pushKey(k)
	defer w.path.pop()

	if !t.discard {
		cv, keep, err := w.value(v, depth, false)
		if err != nil {
			return Null(), err
		}
		if !keep {
			cv = Null()
		}
		v = cv
	}

	out, err := t.apply(v)
	if err != nil {
		if uErr, ok := err.(*UnsupportedValueError); ok && uErr.Path == "" {
			uErr.Path = w.path.String()
		}
		return Null(), &TransformError{Path: w.path.String(), Op: t.op, Err: err}
	}
	return out, nil
}
