package htmlnode

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/mdsite/internal/foundation/errors"
)

func TestAttributesHTML(t *testing.T) {
	assert.Equal(t, ` href="https://www.google.com"`, Attributes{{Key: "href", Value: "https://www.google.com"}}.HTML())
	assert.Equal(t, ` 1="this is 1" 2="this is 2"`, Attributes{{"1", "this is 1"}, {"2", "this is 2"}}.HTML())
	assert.Empty(t, Attributes(nil).HTML())
}

func TestLeafRender(t *testing.T) {
	tests := []struct {
		name string
		node *Node
		want string
	}{
		{"raw text", Text("hello"), "hello"},
		{"tagged", Leaf("p", "do we even use <p> things?"), "<p>do we even use <p> things?</p>"},
		{"with attrs", Leaf("a", "link", Attr{"href", "/x"}), `<a href="/x">link</a>`},
		{"empty value", Leaf("img", "", Attr{"src", "a.png"}, Attr{"alt", "A"}), `<img src="a.png" alt="A"></img>`},
		{"tagged literal", &Node{Tag: "p", Value: "x"}, "<p>x</p>"},
		{"untagged literal", &Node{Value: "raw"}, "raw"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.node.Render()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParentRender(t *testing.T) {
	t.Run("single child", func(t *testing.T) {
		got, err := Parent("div", []*Node{Leaf("span", "child")}).Render()
		require.NoError(t, err)
		assert.Equal(t, "<div><span>child</span></div>", got)
	})

	t.Run("multiple children", func(t *testing.T) {
		got, err := Parent("div", []*Node{
			Leaf("img", "i am an img"),
			Leaf("span", "child 2"),
			Leaf("p", "i am useless :("),
		}).Render()
		require.NoError(t, err)
		assert.Equal(t, "<div><img>i am an img</img><span>child 2</span><p>i am useless :(</p></div>", got)
	})

	t.Run("grandchildren", func(t *testing.T) {
		got, err := Parent("div", []*Node{Parent("span", []*Node{Leaf("b", "grandchild")})}).Render()
		require.NoError(t, err)
		assert.Equal(t, "<div><span><b>grandchild</b></span></div>", got)
	})

	t.Run("attributes on parent", func(t *testing.T) {
		got, err := Parent("ul", []*Node{Leaf("li", "x")}, Attr{"class", "items"}).Render()
		require.NoError(t, err)
		assert.Equal(t, `<ul class="items"><li>x</li></ul>`, got)
	})
}

func TestMalformedNodes(t *testing.T) {
	tests := []struct {
		name string
		node *Node
	}{
		{"parent without tag", Parent("", []*Node{Text("x")})},
		{"no value no children", Parent("p", nil)},
		{"zero node", &Node{}},
		{"nested malformed", Parent("div", []*Node{Parent("p", nil)})},
		{"nil child", Parent("div", []*Node{nil})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.node.Render()
			require.Error(t, err)
			assert.True(t, errors.HasCategory(err, errors.CategoryRender))
		})
	}
}

func TestIsLeaf(t *testing.T) {
	tests := []struct {
		name string
		node *Node
		want bool
	}{
		{"constructor leaf", Leaf("p", ""), true},
		{"literal with value", &Node{Tag: "p", Value: "x"}, true},
		{"parent", Parent("div", []*Node{Text("x")}), false},
		{"literal with value and children", &Node{Tag: "div", Value: "x", Children: []*Node{Text("y")}}, false},
		{"zero node", &Node{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.node.IsLeaf())
		})
	}
}

func TestWriteTo(t *testing.T) {
	var buf bytes.Buffer
	n, err := Parent("p", []*Node{Text("a "), Leaf("b", "b")}).WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, "<p>a <b>b</b></p>", buf.String())
	assert.Equal(t, int64(buf.Len()), n)
}

func TestAttributesGet(t *testing.T) {
	attrs := Attributes{{"src", "a.png"}, {"alt", "A"}}
	v, ok := attrs.Get("alt")
	assert.True(t, ok)
	assert.Equal(t, "A", v)
	_, ok = attrs.Get("href")
	assert.False(t, ok)
}
