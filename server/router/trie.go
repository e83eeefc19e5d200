// prefix tree for router logic, it is not acessible from upper packages so use an abstraction: Router
package router

import (
	"bytes"
)

// tree node, one per path segment
type node struct {
	prefix  []byte
	ch      []node  // children in flat area for data locality to not miss the cache
	handler Handler // our handler func
}

// walk path segment by segment; with create set, missing nodes are added.
// empty segments are kept so /a and /a/ are different routes
func (n *node) walk(path []byte, create bool) *node {
	// cut first slash
	if len(path) > 0 && path[0] == '/' {
		path = path[1:]
	}

	cur := n
	if len(path) == 0 {
		return cur
	}

	for {
		end := bytes.IndexByte(path, '/')
		last := end == -1
		if last {
			end = len(path)
		}

		cur = cur.child(path[:end], create)
		if cur == nil || last {
			return cur
		}
		path = path[end+1:]
	}
}

// find child index in flat child array
func (n *node) child(seg []byte, create bool) *node {
	for i := range n.ch {
		if bytes.Equal(n.ch[i].prefix, seg) {
			return &n.ch[i]
		}
	}
	if !create {
		return nil
	}

	prefCopy := make([]byte, len(seg))
	copy(prefCopy, seg)
	n.ch = append(n.ch, node{prefix: prefCopy})
	return &n.ch[len(n.ch)-1]
}

// insert node to tree that means link path and handler
func (n *node) insert(path []byte, h Handler) {
	n.walk(path, true).handler = h
}

// handler registered for exactly this path, or nil
func (n *node) match(path []byte) Handler {
	if found := n.walk(path, false); found != nil {
		return found.handler
	}
	return nil
}
