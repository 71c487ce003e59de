package inline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/mdsite/internal/foundation/errors"
	"git.home.luguber.info/inful/mdsite/internal/logfields"
)

func TestTextNodeEquality(t *testing.T) {
	node := Styled("This is a text node", RoleBold)
	assert.Equal(t, node, Styled("This is a text node", RoleBold))
	assert.NotEqual(t, node, Styled("This is a text node?", RoleBold))
	assert.NotEqual(t, node, Styled("This is a text node", RoleImage))
	assert.NotEqual(t, Styled("x", RoleImage), Linked("x", RoleImage, "random_url"))
}

func TestTextNodeValidate(t *testing.T) {
	require.NoError(t, Linked("a", RoleLink, "/a").Validate())
	require.NoError(t, Plain("a").Validate())

	err := TextNode{Text: "a", Role: RoleBold, URL: "/a"}.Validate()
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryInternal))

	require.Error(t, TextNode{Text: "a", Role: Role(42)}.Validate())
}

func TestSplitDelimiter(t *testing.T) {
	t.Run("leading delimiter", func(t *testing.T) {
		nodes, err := SplitDelimiter([]TextNode{Plain("**bold** word")}, DelimiterBold, RoleBold)
		require.NoError(t, err)
		assert.Equal(t, []TextNode{Styled("bold", RoleBold), Plain(" word")}, nodes)
	})

	t.Run("multi pass", func(t *testing.T) {
		nodes, err := SplitDelimiter([]TextNode{Plain("Hello world _ree_ and **wow**!!!")}, DelimiterItalic, RoleItalic)
		require.NoError(t, err)
		nodes, err = SplitDelimiter(nodes, DelimiterBold, RoleBold)
		require.NoError(t, err)

		assert.Equal(t, []TextNode{
			Plain("Hello world "),
			Styled("ree", RoleItalic),
			Plain(" and "),
			Styled("wow", RoleBold),
			Plain("!!!"),
		}, nodes)
	})

	t.Run("typed nodes pass through", func(t *testing.T) {
		in := []TextNode{Styled("a_b_c", RoleCode), Plain("x `y` z")}
		nodes, err := SplitDelimiter(in, DelimiterItalic, RoleItalic)
		require.NoError(t, err)
		assert.Equal(t, in, nodes)
	})

	t.Run("adjacent delimiters drop empty pieces", func(t *testing.T) {
		nodes, err := SplitDelimiter([]TextNode{Plain("a````b")}, DelimiterCode, RoleCode)
		require.NoError(t, err)
		assert.Equal(t, []TextNode{Plain("a"), Plain("b")}, nodes)
	})

	t.Run("unmatched delimiter", func(t *testing.T) {
		_, err := SplitDelimiter([]TextNode{Plain("this is **broken")}, DelimiterBold, RoleBold)
		require.Error(t, err)
		assert.True(t, errors.HasCategory(err, errors.CategorySyntax))
		ce, ok := errors.AsClassified(err)
		require.True(t, ok)
		delim, _ := ce.Context().GetString(logfields.KeyDelimiter)
		assert.Equal(t, "**", delim)
	})
}

func TestSplitDelimiterPreservesText(t *testing.T) {
	samples := []string{
		"",
		"no delimiters at all",
		"**a**",
		"x **a** y **b** z",
		"****",
		"**a****b**",
		"_i_ and _j_",
		"``",
		"`code` tail",
		"lead `a` mid `b`",
	}
	for _, delim := range []string{DelimiterBold, DelimiterItalic, DelimiterCode} {
		for _, s := range samples {
			if strings.Count(s, delim)%2 != 0 {
				continue
			}
			nodes, err := SplitDelimiter([]TextNode{Plain(s)}, delim, RoleBold)
			require.NoError(t, err, "delimiter %q text %q", delim, s)
			var b strings.Builder
			for _, n := range nodes {
				b.WriteString(n.Text)
			}
			assert.Equal(t, strings.ReplaceAll(s, delim, ""), b.String(), "delimiter %q text %q", delim, s)
		}
	}
}

func TestSplitDelimiterRejectsUnbalanced(t *testing.T) {
	for _, tc := range []struct{ delim, text string }{
		{DelimiterBold, "**"},
		{DelimiterBold, "a **b** c **"},
		{DelimiterItalic, "snake_case"},
		{DelimiterCode, "`a` `"},
	} {
		_, err := SplitDelimiter([]TextNode{Plain(tc.text)}, tc.delim, RoleBold)
		require.Error(t, err, "delimiter %q text %q", tc.delim, tc.text)
	}
}

func TestExtractImages(t *testing.T) {
	refs := ExtractImages("This is text with a ![rick roll](https://i.imgur.com/aKaOqIh.gif) and ![obi wan](https://i.imgur.com/fJRm4Vk.jpeg)")
	require.Len(t, refs, 2)
	assert.Equal(t, "rick roll", refs[0].Label)
	assert.Equal(t, "https://i.imgur.com/aKaOqIh.gif", refs[0].URL)
	assert.Equal(t, "obi wan", refs[1].Label)
	assert.Equal(t, "https://i.imgur.com/fJRm4Vk.jpeg", refs[1].URL)
}

func TestExtractLinks(t *testing.T) {
	refs := ExtractLinks("This is text with a link [to boot dev](https://www.boot.dev) and [to youtube](https://www.youtube.com/@bootdotdev)")
	require.Len(t, refs, 2)
	assert.Equal(t, Ref{Label: "to boot dev", URL: "https://www.boot.dev", Start: 25, End: 60}, refs[0])
	assert.Equal(t, "to youtube", refs[1].Label)
	assert.Equal(t, "https://www.youtube.com/@bootdotdev", refs[1].URL)
}

func TestExtractLinksSkipsImages(t *testing.T) {
	text := "![img](a.png) and [link](b.html) and ![img2](c.png)"
	links := ExtractLinks(text)
	require.Len(t, links, 1)
	assert.Equal(t, "b.html", links[0].URL)

	images := ExtractImages(text)
	require.Len(t, images, 2)
	assert.Equal(t, 0, images[0].Start)
	assert.Equal(t, "![img](a.png)", text[images[0].Start:images[0].End])
}

func TestExtractRefsEdgeCases(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"nested brackets fall back to inner", "[a [b](c)", []string{"c"}},
		{"paren inside url rejects", "[a](b(c))", nil},
		{"space between parts rejects", "[a] (b)", nil},
		{"empty label", "[](x)", []string{"x"}},
		{"unterminated", "[a](b", nil},
		{"adjacent", "[a](1)[b](2)", []string{"1", "2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, r := range ExtractLinks(tt.text) {
				got = append(got, r.URL)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplitImages(t *testing.T) {
	nodes := SplitImages([]TextNode{Plain("This is text with an ![image](https://i.imgur.com/zjjcJKZ.png) and another ![second image](https://i.imgur.com/3elNhQu.png)")})
	assert.Equal(t, []TextNode{
		Plain("This is text with an "),
		Linked("image", RoleImage, "https://i.imgur.com/zjjcJKZ.png"),
		Plain(" and another "),
		Linked("second image", RoleImage, "https://i.imgur.com/3elNhQu.png"),
	}, nodes)

	nodes = SplitImages([]TextNode{Plain("![second image](https://i.imgur.com/3elNhQu.png) hello world")})
	assert.Equal(t, []TextNode{
		Linked("second image", RoleImage, "https://i.imgur.com/3elNhQu.png"),
		Plain(" hello world"),
	}, nodes)
}

func TestSplitLinks(t *testing.T) {
	nodes := SplitLinks([]TextNode{Plain("this is text with a link [to boot dev](https://www.boot.dev) and [to youtube](https://www.youtube.com/@bootdotdev)")})
	assert.Equal(t, []TextNode{
		Plain("this is text with a link "),
		Linked("to boot dev", RoleLink, "https://www.boot.dev"),
		Plain(" and "),
		Linked("to youtube", RoleLink, "https://www.youtube.com/@bootdotdev"),
	}, nodes)
}

func TestSplitLinkThenImage(t *testing.T) {
	nodes := SplitLinks([]TextNode{Plain("this has both a link [to somewhere](https://www.somewhere.com) and an image ![image](https://i.imgur.com/ree.png)")})
	assert.Equal(t, []TextNode{
		Plain("this has both a link "),
		Linked("to somewhere", RoleLink, "https://www.somewhere.com"),
		Plain(" and an image ![image](https://i.imgur.com/ree.png)"),
	}, nodes)

	nodes = SplitImages(nodes)
	assert.Equal(t, []TextNode{
		Plain("this has both a link "),
		Linked("to somewhere", RoleLink, "https://www.somewhere.com"),
		Plain(" and an image "),
		Linked("image", RoleImage, "https://i.imgur.com/ree.png"),
	}, nodes)
}

func TestSplitLinksRepeatedReference(t *testing.T) {
	nodes := SplitLinks([]TextNode{Plain("[a](x) and [a](x)")})
	assert.Equal(t, []TextNode{
		Linked("a", RoleLink, "x"),
		Plain(" and "),
		Linked("a", RoleLink, "x"),
	}, nodes)
}

func TestTextToNodes(t *testing.T) {
	nodes, err := TextToNodes("This is **text** with an _italic_ word and a `code block` and an ![obi wan image](https://i.imgur.com/fJRm4Vk.jpeg) and a [link](https://boot.dev)")
	require.NoError(t, err)
	assert.Equal(t, []TextNode{
		Plain("This is "),
		Styled("text", RoleBold),
		Plain(" with an "),
		Styled("italic", RoleItalic),
		Plain(" word and a "),
		Styled("code block", RoleCode),
		Plain(" and an "),
		Linked("obi wan image", RoleImage, "https://i.imgur.com/fJRm4Vk.jpeg"),
		Plain(" and a "),
		Linked("link", RoleLink, "https://boot.dev"),
	}, nodes)
}

func TestTextToNodesCodeShieldsLinks(t *testing.T) {
	nodes, err := TextToNodes("`[not](a-link)` but [this](is)")
	require.NoError(t, err)
	assert.Equal(t, []TextNode{
		Styled("[not](a-link)", RoleCode),
		Plain(" but "),
		Linked("this", RoleLink, "is"),
	}, nodes)
}

func TestTextToNodesUnmatched(t *testing.T) {
	_, err := TextToNodes("an _unclosed italic")
	require.Error(t, err)
	ce, ok := errors.AsClassified(err)
	require.True(t, ok)
	d, _ := ce.Context().GetString(logfields.KeyDelimiter)
	assert.Equal(t, "_", d)
}

func TestToHTMLNode(t *testing.T) {
	tests := []struct {
		name string
		node TextNode
		want string
	}{
		{"plain", Plain("This is a text node"), "This is a text node"},
		{"bold", Styled("this is a bold node", RoleBold), "<b>this is a bold node</b>"},
		{"italic", Styled("it", RoleItalic), "<i>it</i>"},
		{"code", Styled("x := 1", RoleCode), "<code>x := 1</code>"},
		{"link", Linked("this is a link", RoleLink, "https://www.google.com"), `<a href="https://www.google.com">this is a link</a>`},
		{"image", Linked("my alt text", RoleImage, "src/local/image.png"), `<img src="src/local/image.png" alt="my alt text"></img>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := ToHTMLNode(tt.node)
			require.NoError(t, err)
			got, err := n.Render()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	plain, err := ToHTMLNode(Plain("x"))
	require.NoError(t, err)
	assert.Empty(t, plain.Tag)
	assert.Equal(t, "x", plain.Value)

	_, err = ToHTMLNode(TextNode{Text: "x", Role: Role(99)})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryInternal))
}

func TestTextToHTML(t *testing.T) {
	leaves, err := TextToHTML("a **b** [c](d)")
	require.NoError(t, err)
	require.Len(t, leaves, 4)
	assert.Equal(t, "b", leaves[1].Tag)
	href, _ := leaves[3].Attrs.Get("href")
	assert.Equal(t, "d", href)
}
