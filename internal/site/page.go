package site

import (
	"strings"

	"git.home.luguber.info/inful/mdsite/internal/foundation/errors"
	"git.home.luguber.info/inful/mdsite/internal/markdown"
)

const (
	titlePlaceholder   = "{{ Title }}"
	contentPlaceholder = "{{ Content }}"
	titleMarker        = "# "
)

// ExtractTitle returns the text of the first level-1 heading line in doc.
func ExtractTitle(doc string) (string, error) {
	for _, line := range strings.Split(doc, "\n") {
		if strings.HasPrefix(line, titleMarker) {
			return strings.TrimSpace(line[len(titleMarker):]), nil
		}
	}
	return "", errors.ValidationError("page has no title heading").
		WithContext("expected", titleMarker+"Title").
		Build()
}

// ApplyTemplate substitutes the title and content placeholders in tpl and points
// root-relative href and src attributes at basePath.
func ApplyTemplate(tpl, title, content, basePath string) string {
	out := strings.ReplaceAll(tpl, titlePlaceholder, title)
	out = strings.ReplaceAll(out, contentPlaceholder, content)
	out = strings.ReplaceAll(out, `href="/`, `href="`+basePath)
	out = strings.ReplaceAll(out, `src="/`, `src="`+basePath)
	return out
}

// RenderPage converts the Markdown document doc into a complete HTML page.
func RenderPage(tpl, doc, basePath string) (string, error) {
	title, err := ExtractTitle(doc)
	if err != nil {
		return "", err
	}
	content, err := markdown.Render(doc)
	if err != nil {
		return "", err
	}
	return ApplyTemplate(tpl, title, content, basePath), nil
}
