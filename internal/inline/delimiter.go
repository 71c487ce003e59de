package inline

import (
	"strings"

	"git.home.luguber.info/inful/mdsite/internal/foundation/errors"
	"git.home.luguber.info/inful/mdsite/internal/logfields"
)

// Delimiters in the order TextToNodes applies them. Longer delimiters run first
// so `_` and the backtick never see the halves of `**`.
const (
	DelimiterBold   = "**"
	DelimiterItalic = "_"
	DelimiterCode   = "`"
)

// SplitDelimiter promotes delimiter-enclosed spans of every plain node to role.
//
// Nodes that already carry a role pass through. A plain node holding an odd number
// of delimiters is rejected. Pieces between delimiters alternate plain/role starting
// with plain; empty pieces are dropped without shifting the alternation.
func SplitDelimiter(nodes []TextNode, delimiter string, role Role) ([]TextNode, error) {
	if delimiter == "" {
		return nil, errors.InternalError("empty delimiter").Build()
	}

	out := make([]TextNode, 0, len(nodes))
	for _, node := range nodes {
		if node.Role != RolePlain {
			out = append(out, node)
			continue
		}

		text := node.Text
		if strings.Count(text, delimiter)%2 != 0 {
			return nil, errors.SyntaxError("unmatched delimiter").
				WithContext(logfields.KeyDelimiter, delimiter).
				WithContext("text", text).
				Build()
		}

		piece := 0
		for start := 0; ; piece++ {
			idx := strings.Index(text[start:], delimiter)
			end := len(text)
			if idx >= 0 {
				end = start + idx
			}
			if end > start {
				section := text[start:end]
				if piece%2 == 0 {
					out = append(out, Plain(section))
				} else {
					out = append(out, Styled(section, role))
				}
			}
			if idx < 0 {
				break
			}
			start = end + len(delimiter)
		}
	}
	return out, nil
}
