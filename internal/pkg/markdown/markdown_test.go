package markdown

import (
	"strings"
	"testing"
)

func TestRender(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"heading", "# Title", "<h1"},
		{"link", "[site](https://example.com)", `<a href="https://example.com"`},
		{"autolink", "see https://example.com", `<a href=`},
		{"table", "| a | b |\n| - | - |\n| 1 | 2 |", "<table"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Render(tc.in)
			if !strings.Contains(got, tc.want) {
				t.Errorf("Render(%q) = %q, missing %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestRenderBlank(t *testing.T) {
	if Render("   \n ") != "" {
		t.Error("blank input renders to empty string")
	}
}
