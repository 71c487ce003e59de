package site

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/mdsite/internal/foundation/errors"
)

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"first line", "# Hello", "Hello"},
		{"surrounding space", "#   Hello there  ", "Hello there"},
		{"later line", "intro\n\n# Tolkien Fan Club\n\nbody", "Tolkien Fan Club"},
		{"first of several", "# One\n# Two", "One"},
		{"keeps inner hashes", "# C# in depth", "C# in depth"},
		{"crlf", "# Title\r\nbody", "Title"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractTitle(tt.doc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractTitleMissing(t *testing.T) {
	for _, doc := range []string{"", "no heading", "## Second level", "#NoSpace", " # indented"} {
		_, err := ExtractTitle(doc)
		require.Error(t, err, doc)
		assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
	}
}

func TestApplyTemplate(t *testing.T) {
	tpl := `<title>{{ Title }}</title><link href="/index.css"><img src="/a.png"><a href="https://x.org/">x</a>{{ Content }}`

	got := ApplyTemplate(tpl, "T", "<p>c</p>", "/")
	assert.Equal(t, `<title>T</title><link href="/index.css"><img src="/a.png"><a href="https://x.org/">x</a><p>c</p>`, got)

	got = ApplyTemplate(tpl, "T", `<a href="/about">a</a>`, "/blog/")
	assert.Equal(t, `<title>T</title><link href="/blog/index.css"><img src="/blog/a.png"><a href="https://x.org/">x</a><a href="/blog/about">a</a>`, got)
}

func TestRenderPage(t *testing.T) {
	tpl := "<html><head><title>{{ Title }}</title></head><body>{{ Content }}</body></html>"

	got, err := RenderPage(tpl, "# Home\n\nHello **world** [docs](/docs)", "/site/")
	require.NoError(t, err)
	assert.Equal(t,
		`<html><head><title>Home</title></head><body><div><h1>Home</h1><p>Hello <b>world</b> <a href="/site/docs">docs</a></p></div></body></html>`,
		got)

	_, err = RenderPage(tpl, "no title here", "/")
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))

	_, err = RenderPage(tpl, "# Title\n\nunclosed **bold", "/")
	assert.True(t, errors.HasCategory(err, errors.CategorySyntax))
}
