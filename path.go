package replica

import (
	"strconv"
	"strings"
)

// pathElem is one step of a traversal: a record key or a sequence index.
type pathElem struct {
	key   string
	index int
	isKey bool
}

// path is the traversal stack used to name error locations.
// It is rendered only when an error is reported.
type path []pathElem

func (p *path) pushKey(k string) { *p = append(*p, pathElem{key: k, isKey: true}) }

func (p *path) pushIndex(i int) { *p = append(*p, pathElem{index: i}) }

func (p *path) pop() { *p = (*p)[:len(*p)-1] }

// String renders the path as $.a.b[2].c.
func (p path) String() string {
	var b strings.Builder
	b.WriteString("$")
	for _, e := range p {
		if e.isKey {
			b.WriteByte('.')
			b.WriteString(e.key)
			continue
		}
		b.WriteByte('[')
		b.WriteString(strconv.Itoa(e.index))
		b.WriteByte(']')
	}
	return b.String()
}
