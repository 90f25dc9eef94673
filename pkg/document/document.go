// Package document is the structured output model produced by the render
// builder: elements with ordered attributes and children. Serializers in
// pkg/renderers turn it into concrete syntax.
package document

import "strings"

// Attr is a single attribute. Order is preserved on output.
type Attr struct {
	Key string `json:"key"`
	Val string `json:"value"`
}

// Node is an element when Tag is set, a text node otherwise.
type Node struct {
	Tag      string  `json:"tag,omitempty"`
	Attrs    []Attr  `json:"attrs,omitempty"`
	Children []*Node `json:"children,omitempty"`
	Text     string  `json:"text,omitempty"`
}

// Document wraps the root node of a rendered form.
type Document struct {
	Root *Node `json:"root"`
}

// A builds an attribute.
func A(key, val string) Attr {
	return Attr{Key: key, Val: val}
}

// El builds an element node.
func El(tag string, attrs ...Attr) *Node {
	return &Node{Tag: tag, Attrs: attrs}
}

// Text builds a text node.
func Text(value string) *Node {
	return &Node{Text: value}
}

// IsText reports whether n is a text node.
func (n *Node) IsText() bool {
	return n != nil && n.Tag == ""
}

// Append adds non-nil children and returns n for chaining.
func (n *Node) Append(children ...*Node) *Node {
	for _, child := range children {
		if child != nil {
			n.Children = append(n.Children, child)
		}
	}
	return n
}

// Set adds or replaces an attribute.
func (n *Node) Set(key, val string) *Node {
	for i := range n.Attrs {
		if n.Attrs[i].Key == key {
			n.Attrs[i].Val = val
			return n
		}
	}
	n.Attrs = append(n.Attrs, Attr{Key: key, Val: val})
	return n
}

// SetIf adds the boolean attribute key when cond holds.
func (n *Node) SetIf(cond bool, key string) *Node {
	if cond {
		n.Set(key, "")
	}
	return n
}

// Attr looks up an attribute value.
func (n *Node) Attr(key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, attr := range n.Attrs {
		if attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}

// Has reports whether the attribute is present.
func (n *Node) Has(key string) bool {
	_, ok := n.Attr(key)
	return ok
}

// Walk visits n and its descendants depth-first. Returning false from fn
// skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, child := range n.Children {
		child.Walk(fn)
	}
}

// FindAll returns every descendant (including n) matching pred.
func (n *Node) FindAll(pred func(*Node) bool) []*Node {
	var out []*Node
	n.Walk(func(node *Node) bool {
		if pred(node) {
			out = append(out, node)
		}
		return true
	})
	return out
}

// Find returns the first node matching pred.
func (n *Node) Find(pred func(*Node) bool) *Node {
	matches := n.FindAll(pred)
	if len(matches) == 0 {
		return nil
	}
	return matches[0]
}

// TextContent concatenates the text of n and its descendants.
func (n *Node) TextContent() string {
	var b strings.Builder
	n.Walk(func(node *Node) bool {
		if node.IsText() {
			b.WriteString(node.Text)
		}
		return true
	})
	return b.String()
}

// ByAttr matches elements carrying key=val.
func ByAttr(key, val string) func(*Node) bool {
	return func(n *Node) bool {
		got, ok := n.Attr(key)
		return ok && got == val
	}
}

// ByTag matches elements with the given tag.
func ByTag(tag string) func(*Node) bool {
	return func(n *Node) bool {
		return n.Tag == tag
	}
}
