package inline

// TextToNodes tokenizes text into inline nodes.
//
// Passes run in a fixed order: bold, italic, code, link, image. Each pass only
// rewrites nodes that are still plain, so delimiters inside code spans or link
// labels produced by an earlier pass are left alone.
func TextToNodes(text string) ([]TextNode, error) {
	nodes := []TextNode{Plain(text)}

	var err error
	for _, pass := range delimiterPasses {
		nodes, err = SplitDelimiter(nodes, pass.delimiter, pass.role)
		if err != nil {
			return nil, err
		}
	}
	nodes = SplitLinks(nodes)
	nodes = SplitImages(nodes)
	return nodes, nil
}

var delimiterPasses = []struct {
	delimiter string
	role      Role
}{
	{DelimiterBold, RoleBold},
	{DelimiterItalic, RoleItalic},
	{DelimiterCode, RoleCode},
}
