package inline

import (
	"git.home.luguber.info/inful/mdsite/internal/foundation/errors"
	"git.home.luguber.info/inful/mdsite/internal/htmlnode"
)

// ToHTMLNode converts an inline node to its HTML leaf.
func ToHTMLNode(n TextNode) (*htmlnode.Node, error) {
	switch n.Role {
	case RolePlain:
		return htmlnode.Text(n.Text), nil
	case RoleBold:
		return htmlnode.Leaf("b", n.Text), nil
	case RoleItalic:
		return htmlnode.Leaf("i", n.Text), nil
	case RoleCode:
		return htmlnode.Leaf("code", n.Text), nil
	case RoleLink:
		return htmlnode.Leaf("a", n.Text, htmlnode.Attr{Key: "href", Value: n.URL}), nil
	case RoleImage:
		return htmlnode.Leaf("img", "",
			htmlnode.Attr{Key: "src", Value: n.URL},
			htmlnode.Attr{Key: "alt", Value: n.Text},
		), nil
	default:
		return nil, errors.InternalError("unknown inline role").
			WithContext("role", int(n.Role)).
			Build()
	}
}

// TextToHTML tokenizes text and converts every node to an HTML leaf.
func TextToHTML(text string) ([]*htmlnode.Node, error) {
	nodes, err := TextToNodes(text)
	if err != nil {
		return nil, err
	}
	leaves := make([]*htmlnode.Node, 0, len(nodes))
	for _, n := range nodes {
		leaf, err := ToHTMLNode(n)
		if err != nil {
			return nil, err
		}
		leaves = append(leaves, leaf)
	}
	return leaves, nil
}
