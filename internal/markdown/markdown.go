// Package markdown converts documents written in the mdsite Markdown dialect into
// an HTML node tree, and offers goldmark-backed link analysis for linting.
package markdown

import (
	"strconv"
	"strings"

	"git.home.luguber.info/inful/mdsite/internal/blocks"
	"git.home.luguber.info/inful/mdsite/internal/foundation/errors"
	"git.home.luguber.info/inful/mdsite/internal/htmlnode"
	"git.home.luguber.info/inful/mdsite/internal/inline"
	"git.home.luguber.info/inful/mdsite/internal/logfields"
)

// RootTag wraps the converted document.
const RootTag = "div"

// ToHTML converts doc into a single root node holding one child per block.
func ToHTML(doc string) (*htmlnode.Node, error) {
	segments := blocks.Split(doc)
	children := make([]*htmlnode.Node, 0, len(segments))
	for i, block := range segments {
		typ := blocks.Classify(block)
		node, err := convertBlock(block, typ)
		if err != nil {
			return nil, annotate(err, i, typ)
		}
		children = append(children, node)
	}
	if len(children) == 0 {
		children = append(children, htmlnode.Text(""))
	}
	return htmlnode.Parent(RootTag, children), nil
}

// Render converts doc and renders the resulting tree.
func Render(doc string) (string, error) {
	root, err := ToHTML(doc)
	if err != nil {
		return "", err
	}
	return root.Render()
}

// BlockToHTML converts a single, already segmented block.
func BlockToHTML(block string) (*htmlnode.Node, error) {
	return convertBlock(block, blocks.Classify(block))
}

func convertBlock(block string, typ blocks.Type) (*htmlnode.Node, error) {
	switch typ {
	case blocks.Paragraph:
		return paragraph(block)
	case blocks.Heading:
		return heading(block)
	case blocks.Code:
		return code(block), nil
	case blocks.Quote:
		return quote(block)
	case blocks.UnorderedList:
		return list(block, "ul", func(line string) string {
			return strings.TrimPrefix(line, "- ")
		})
	case blocks.OrderedList:
		return list(block, "ol", func(line string) string {
			return line[blocks.OrderedMarkerWidth(line):]
		})
	default:
		return nil, errors.InternalError("unknown block type").
			WithContext(logfields.KeyBlockType, typ.String()).
			Build()
	}
}

func paragraph(block string) (*htmlnode.Node, error) {
	children, err := inlineChildren(strings.Join(blocks.Lines(block), " "))
	if err != nil {
		return nil, err
	}
	return htmlnode.Parent("p", children), nil
}

func heading(block string) (*htmlnode.Node, error) {
	level := blocks.HeadingLevel(block)
	children, err := inlineChildren(block[level+1:])
	if err != nil {
		return nil, err
	}
	return htmlnode.Parent("h"+strconv.Itoa(level), children), nil
}

// code keeps the body verbatim: no inline tokenization inside fences.
func code(block string) *htmlnode.Node {
	lines := blocks.Lines(block)
	var body string
	if len(lines) == 1 {
		inner := strings.TrimPrefix(block, blocks.Fence)
		inner = strings.TrimSuffix(inner, blocks.Fence)
		body = strings.TrimSpace(inner)
	} else {
		body = strings.Join(lines[1:len(lines)-1], "\n")
	}
	leaf := htmlnode.Text(body + "\n")
	return htmlnode.Parent("pre", []*htmlnode.Node{
		htmlnode.Parent("code", []*htmlnode.Node{leaf}),
	})
}

func quote(block string) (*htmlnode.Node, error) {
	var children []*htmlnode.Node
	for _, line := range blocks.Lines(block) {
		text := strings.TrimSpace(strings.TrimPrefix(line, ">"))
		leaves, err := inline.TextToHTML(text)
		if err != nil {
			return nil, err
		}
		children = append(children, leaves...)
	}
	if len(children) == 0 {
		children = append(children, htmlnode.Text(""))
	}
	return htmlnode.Parent("blockquote", children), nil
}

func list(block, tag string, strip func(string) string) (*htmlnode.Node, error) {
	lines := blocks.Lines(block)
	items := make([]*htmlnode.Node, 0, len(lines))
	for _, line := range lines {
		children, err := inlineChildren(strip(line))
		if err != nil {
			return nil, err
		}
		items = append(items, htmlnode.Parent("li", children))
	}
	return htmlnode.Parent(tag, items), nil
}

// inlineChildren tokenizes text; an empty span yields one empty text leaf so the
// enclosing container stays renderable.
func inlineChildren(text string) ([]*htmlnode.Node, error) {
	leaves, err := inline.TextToHTML(text)
	if err != nil {
		return nil, err
	}
	if len(leaves) == 0 {
		leaves = append(leaves, htmlnode.Text(""))
	}
	return leaves, nil
}

func annotate(err error, index int, typ blocks.Type) error {
	if ce, ok := errors.AsClassified(err); ok {
		return ce.WithContextMap(errors.ErrorContext{
			logfields.KeyBlock:     index + 1,
			logfields.KeyBlockType: typ.String(),
		})
	}
	return errors.WrapError(err, errors.CategoryInternal, "block conversion failed").
		WithContext(logfields.KeyBlock, index+1).
		WithContext(logfields.KeyBlockType, typ.String()).
		Build()
}
