package inline

import "strings"

// Ref is a `[label](url)` occurrence found in text. Start and End are byte offsets
// of the whole construct, including a leading `!` for images.
type Ref struct {
	Label string
	URL   string
	Start int
	End   int
}

// ExtractImages returns every `![label](url)` in text, left to right.
func ExtractImages(text string) []Ref {
	return scanRefs(text, true)
}

// ExtractLinks returns every `[label](url)` in text that is not preceded by `!`.
func ExtractLinks(text string) []Ref {
	return scanRefs(text, false)
}

// scanRefs walks text once. Matches do not overlap or nest: labels cannot contain
// brackets and urls cannot contain parentheses.
func scanRefs(text string, image bool) []Ref {
	var refs []Ref
	for i := 0; i < len(text); {
		open := strings.IndexByte(text[i:], '[')
		if open < 0 {
			break
		}
		open += i
		bang := open > 0 && text[open-1] == '!'
		if bang != image {
			i = open + 1
			continue
		}
		ref, ok := matchRef(text, open)
		if !ok {
			i = open + 1
			continue
		}
		if image {
			ref.Start = open - 1
		}
		refs = append(refs, ref)
		i = ref.End
	}
	return refs
}

// matchRef matches `[label](url)` with the opening bracket at open.
func matchRef(text string, open int) (Ref, bool) {
	labelEnd := strings.IndexAny(text[open+1:], "[]")
	if labelEnd < 0 {
		return Ref{}, false
	}
	labelEnd += open + 1
	if text[labelEnd] != ']' || labelEnd+1 >= len(text) || text[labelEnd+1] != '(' {
		return Ref{}, false
	}
	urlStart := labelEnd + 2
	urlEnd := strings.IndexAny(text[urlStart:], "()")
	if urlEnd < 0 {
		return Ref{}, false
	}
	urlEnd += urlStart
	if text[urlEnd] != ')' {
		return Ref{}, false
	}
	return Ref{
		Label: text[open+1 : labelEnd],
		URL:   text[urlStart:urlEnd],
		Start: open,
		End:   urlEnd + 1,
	}, true
}

// SplitImages promotes every image reference in plain nodes to an image node.
func SplitImages(nodes []TextNode) []TextNode {
	return splitRefs(nodes, RoleImage, ExtractImages)
}

// SplitLinks promotes every link reference in plain nodes to a link node.
// Image references are left in place for SplitImages.
func SplitLinks(nodes []TextNode) []TextNode {
	return splitRefs(nodes, RoleLink, ExtractLinks)
}

func splitRefs(nodes []TextNode, role Role, extract func(string) []Ref) []TextNode {
	out := make([]TextNode, 0, len(nodes))
	for _, node := range nodes {
		if node.Role != RolePlain {
			out = append(out, node)
			continue
		}
		refs := extract(node.Text)
		if len(refs) == 0 {
			out = append(out, node)
			continue
		}
		cursor := 0
		for _, ref := range refs {
			if ref.Start > cursor {
				out = append(out, Plain(node.Text[cursor:ref.Start]))
			}
			out = append(out, Linked(ref.Label, role, ref.URL))
			cursor = ref.End
		}
		if cursor < len(node.Text) {
			out = append(out, Plain(node.Text[cursor:]))
		}
	}
	return out
}
