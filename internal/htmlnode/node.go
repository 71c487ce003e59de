// Package htmlnode holds the render-ready HTML tree produced by the Markdown converter.
//
// A Node is either a leaf (literal text, optionally wrapped in a tag) or a parent
// (a tag around an ordered list of children). Values are written verbatim: the
// Markdown dialect passes raw text through, so no escaping is applied.
package htmlnode

import (
	"io"
	"strings"

	"git.home.luguber.info/inful/mdsite/internal/foundation/errors"
)

// Attr is a single HTML attribute.
type Attr struct {
	Key   string
	Value string
}

// Attributes is an ordered attribute list. Rendering follows insertion order.
type Attributes []Attr

// HTML renders the attributes as ` key="value"` pairs, or "" when empty.
func (a Attributes) HTML() string {
	if len(a) == 0 {
		return ""
	}
	var b strings.Builder
	for _, attr := range a {
		b.WriteByte(' ')
		b.WriteString(attr.Key)
		b.WriteString(`="`)
		b.WriteString(attr.Value)
		b.WriteByte('"')
	}
	return b.String()
}

// Get returns the value for key.
func (a Attributes) Get(key string) (string, bool) {
	for _, attr := range a {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return "", false
}

// Node is an element of the HTML tree.
//
// Exactly one of Value (leaf) and Children (parent) is set. A leaf with an empty
// Tag renders as its raw value. A node built as a literal counts as a leaf when
// it has a Value and no Children.
type Node struct {
	Tag      string
	Value    string
	Children []*Node
	Attrs    Attributes

	leaf bool
}

// Leaf returns a leaf node. An empty tag yields raw text.
func Leaf(tag, value string, attrs ...Attr) *Node {
	return &Node{Tag: tag, Value: value, Attrs: attrs, leaf: true}
}

// Text returns an untagged leaf holding value.
func Text(value string) *Node {
	return Leaf("", value)
}

// Parent returns a container node owning children.
func Parent(tag string, children []*Node, attrs ...Attr) *Node {
	return &Node{Tag: tag, Children: children, Attrs: attrs}
}

// IsLeaf reports whether n holds literal text.
func (n *Node) IsLeaf() bool {
	return n.leaf || (n.Value != "" && len(n.Children) == 0)
}

// Render renders n and its subtree to an HTML string.
func (n *Node) Render() (string, error) {
	var b strings.Builder
	if err := n.render(&b); err != nil {
		return "", err
	}
	return b.String(), nil
}

// WriteTo renders n to w.
func (n *Node) WriteTo(w io.Writer) (int64, error) {
	s, err := n.Render()
	if err != nil {
		return 0, err
	}
	written, err := io.WriteString(w, s)
	return int64(written), err
}

func (n *Node) render(b *strings.Builder) error {
	if n.IsLeaf() {
		if n.Tag == "" {
			b.WriteString(n.Value)
			return nil
		}
		n.open(b)
		b.WriteString(n.Value)
		n.close(b)
		return nil
	}

	if n.Tag == "" {
		return errors.RenderError("parent node has no tag").
			WithContext("children", len(n.Children)).
			Build()
	}
	if len(n.Children) == 0 {
		return errors.RenderError("node has neither value nor children").
			WithContext("tag", n.Tag).
			Build()
	}

	n.open(b)
	for i, child := range n.Children {
		if child == nil {
			return errors.RenderError("nil child node").
				WithContext("tag", n.Tag).
				WithContext("index", i).
				Build()
		}
		if err := child.render(b); err != nil {
			return err
		}
	}
	n.close(b)
	return nil
}

func (n *Node) open(b *strings.Builder) {
	b.WriteByte('<')
	b.WriteString(n.Tag)
	b.WriteString(n.Attrs.HTML())
	b.WriteByte('>')
}

func (n *Node) close(b *strings.Builder) {
	b.WriteString("</")
	b.WriteString(n.Tag)
	b.WriteByte('>')
}
