// Package inline tokenizes a span of Markdown text into typed inline nodes.
package inline

import (
	"fmt"

	"git.home.luguber.info/inful/mdsite/internal/foundation/errors"
)

// Role is the semantic role of an inline span.
type Role int

const (
	RolePlain Role = iota
	RoleBold
	RoleItalic
	RoleCode
	RoleLink
	RoleImage
)

var roleNames = map[Role]string{
	RolePlain:  "plain",
	RoleBold:   "bold",
	RoleItalic: "italic",
	RoleCode:   "code",
	RoleLink:   "link",
	RoleImage:  "image",
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// HasURL reports whether nodes of this role carry a destination.
func (r Role) HasURL() bool {
	return r == RoleLink || r == RoleImage
}

// TextNode is an immutable span of text with a role. URL is set only for links and images.
type TextNode struct {
	Text string
	Role Role
	URL  string
}

// Plain returns an unstyled node.
func Plain(text string) TextNode {
	return TextNode{Text: text, Role: RolePlain}
}

// Styled returns a node with a role that takes no destination.
func Styled(text string, role Role) TextNode {
	return TextNode{Text: text, Role: role}
}

// Linked returns a link or image node.
func Linked(text string, role Role, url string) TextNode {
	return TextNode{Text: text, Role: role, URL: url}
}

// Validate checks the URL invariant and the role range.
func (n TextNode) Validate() error {
	if _, ok := roleNames[n.Role]; !ok {
		return errors.InternalError("unknown inline role").
			WithContext("role", int(n.Role)).
			Build()
	}
	if !n.Role.HasURL() && n.URL != "" {
		return errors.InternalError("destination on a node that cannot carry one").
			WithContext("role", n.Role.String()).
			Build()
	}
	return nil
}

func (n TextNode) String() string {
	if n.Role.HasURL() {
		return fmt.Sprintf("TextNode(%q, %s, %q)", n.Text, n.Role, n.URL)
	}
	return fmt.Sprintf("TextNode(%q, %s)", n.Text, n.Role)
}
