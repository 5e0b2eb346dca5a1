// Package yaml provides an order-preserving YAML codec for records.
package yaml

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/zoobzio/replica"
	"gopkg.in/yaml.v3"
)

// yamlCodec implements replica.Codec for YAML.
type yamlCodec struct{}

// New returns a YAML codec.
func New() replica.Codec {
	return &yamlCodec{}
}

// ContentType returns the MIME type for YAML.
func (c *yamlCodec) ContentType() string {
	return "application/yaml"
}

// Encode writes r as a YAML mapping in key order.
func (c *yamlCodec) Encode(r *replica.Record) ([]byte, error) {
	if err := replica.CheckEncodable(r); err != nil {
		return nil, err
	}
	return yaml.Marshal(toNode(replica.RecordOf(r)))
}

func toNode(v replica.Value) *yaml.Node {
	switch v.Kind() {
	case replica.KindBool:
		b, _ := v.AsBool()
		return scalar("!!bool", strconv.FormatBool(b))
	case replica.KindInt:
		i, _ := v.AsInt()
		return scalar("!!int", strconv.FormatInt(i, 10))
	case replica.KindFloat:
		f, _ := v.AsFloat()
		return scalar("!!float", formatFloat(f))
	case replica.KindString:
		s, _ := v.AsString()
		return scalar("!!str", s)
	case replica.KindRecord:
		r, _ := v.AsRecord()
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		r.Range(func(k string, ev replica.Value) bool {
			n.Content = append(n.Content, scalar("!!str", k), toNode(ev))
			return true
		})
		return n
	case replica.KindSequence:
		s, _ := v.AsSequence()
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		s.Range(func(_ int, ev replica.Value) bool {
			n.Content = append(n.Content, toNode(ev))
			return true
		})
		return n
	default:
		return scalar("!!null", "null")
	}
}

func scalar(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	case math.IsNaN(f):
		return ".nan"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		s += ".0"
	}
	return s
}

// Decode reads a YAML mapping document, keeping key order.
func (c *yamlCodec) Decode(data []byte) (*replica.Record, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	root := &doc
	if root.IsZero() {
		return nil, fmt.Errorf("empty document")
	}
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return nil, fmt.Errorf("empty document")
		}
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected mapping, got %s", root.ShortTag())
	}
	d := &decoder{visiting: make(map[*yaml.Node]struct{})}
	v, err := d.node(root)
	if err != nil {
		return nil, err
	}
	r, _ := v.AsRecord()
	return r, nil
}

// ErrExcessiveAliasing reports a document whose aliases expand to far more
// nodes than it spells out.
var ErrExcessiveAliasing = errors.New("document contains excessive aliasing")

// decoder expands a node tree into values. Aliases are followed, so it keeps
// the containers on the current branch to reject an alias to an ancestor,
// and it bounds expansion with the same ratio yaml.v3 applies when decoding
// into Go values.
type decoder struct {
	visiting   map[*yaml.Node]struct{}
	path       []string
	decoded    int
	aliased    int
	aliasDepth int
}

// allowedAliasRatio mirrors yaml.v3: small documents may be almost entirely
// alias expansion, large ones only a tenth.
func allowedAliasRatio(decoded int) float64 {
	switch {
	case decoded <= 400000:
		return 0.99
	case decoded >= 4000000:
		return 0.10
	}
	return 0.99 - 0.89*(float64(decoded-400000)/3600000)
}

func (d *decoder) where() string {
	return "$" + strings.Join(d.path, "")
}

func (d *decoder) node(n *yaml.Node) (replica.Value, error) {
	d.decoded++
	if d.aliasDepth > 0 {
		d.aliased++
	}
	if d.aliased > 100 && d.decoded > 1000 &&
		float64(d.aliased)/float64(d.decoded) > allowedAliasRatio(d.decoded) {
		return replica.Null(), fmt.Errorf("%w at %s", ErrExcessiveAliasing, d.where())
	}

	switch n.Kind {
	case yaml.AliasNode:
		if _, ok := d.visiting[n.Alias]; ok {
			return replica.Null(), &replica.CyclicStructureError{Path: d.where()}
		}
		d.aliasDepth++
		v, err := d.node(n.Alias)
		d.aliasDepth--
		return v, err

	case yaml.MappingNode:
		d.visiting[n] = struct{}{}
		defer delete(d.visiting, n)

		r := replica.NewRecord()
		for i := 0; i+1 < len(n.Content); i += 2 {
			var key string
			if err := n.Content[i].Decode(&key); err != nil {
				return replica.Null(), fmt.Errorf("line %d: %w", n.Content[i].Line, err)
			}
			d.path = append(d.path, "."+key)
			v, err := d.node(n.Content[i+1])
			d.path = d.path[:len(d.path)-1]
			if err != nil {
				return replica.Null(), err
			}
			r.Set(key, v)
		}
		return replica.RecordOf(r), nil

	case yaml.SequenceNode:
		d.visiting[n] = struct{}{}
		defer delete(d.visiting, n)

		s := replica.NewSequence()
		for i, child := range n.Content {
			d.path = append(d.path, "["+strconv.Itoa(i)+"]")
			v, err := d.node(child)
			d.path = d.path[:len(d.path)-1]
			if err != nil {
				return replica.Null(), err
			}
			s.Append(v)
		}
		return replica.SequenceOf(s), nil

	case yaml.ScalarNode:
		return fromScalar(n)
	}
	return replica.Null(), fmt.Errorf("line %d: unsupported node kind %d", n.Line, n.Kind)
}

func fromScalar(n *yaml.Node) (replica.Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return replica.Null(), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return replica.Null(), err
		}
		return replica.Bool(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return replica.Null(), err
		}
		return replica.Int(i), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return replica.Null(), err
		}
		return replica.Float(f), nil
	default:
		return replica.String(n.Value), nil
	}
}
