package selector

import (
	"strconv"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		el   Snapshot
		want string
	}{
		{
			name: "id wins over everything",
			el: Snapshot{Tag: "BUTTON", Index: 3, Attributes: map[string]string{
				"id": "submit", TestIDAttribute: "save", "class": "btn primary",
			}},
			want: "#submit",
		},
		{
			name: "test id",
			el:   Snapshot{Tag: "button", Index: 1, Attributes: map[string]string{TestIDAttribute: "save", "class": "btn"}},
			want: `[data-testid="save"]`,
		},
		{
			name: "empty id falls through",
			el:   Snapshot{Tag: "a", Index: 1, Attributes: map[string]string{"id": "", "class": "link"}},
			want: "a.link",
		},
		{
			name: "classes in declared order",
			el:   Snapshot{Tag: "DIV", Index: 2, Attributes: map[string]string{"class": "  a   b "}},
			want: "div.a.b",
		},
		{
			name: "structural fallback",
			el:   Snapshot{Tag: "SPAN", Index: 4},
			want: "span:nth-child(4)",
		},
		{
			name: "blank class attribute",
			el:   Snapshot{Tag: "li", Index: 2, Attributes: map[string]string{"class": "   "}},
			want: "li:nth-child(2)",
		},
		{
			name: "unknown position",
			el:   Snapshot{Tag: "p"},
			want: "p:nth-child(1)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.el))
		})
	}
}

func TestResolveParsedDocument(t *testing.T) {
	doc, err := html.Parse(strings.NewReader(`<html><body>
		<button id="test-button">Click Me</button>
		<div class="container">
			<a href="#" class="link">Test Link</a>
		</div>
		<ul><li>one</li><!-- note --><li>two</li>text<li data-testid="third">three</li></ul>
	</body></html>`))
	require.NoError(t, err)

	got := make([]string, 0)
	for _, n := range Elements(doc) {
		switch n.Data {
		case "button", "a", "li", "div":
			got = append(got, Resolve(n))
		}
	}

	assert.Equal(t, []string{
		"#test-button",
		"div.container",
		"a.link",
		"li:nth-child(1)",
		"li:nth-child(2)",
		`[data-testid="third"]`,
	}, got)
}

func TestNodeTextContent(t *testing.T) {
	doc, err := html.Parse(strings.NewReader(`<p id="x">  Hello <b>big</b> world  </p>`))
	require.NoError(t, err)

	for _, n := range Elements(doc) {
		if n.Data == "p" {
			assert.Equal(t, "  Hello big world  ", n.TextContent())
			return
		}
	}
	t.Fatal("paragraph not found")
}

func TestResolveProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("a non-empty id always yields #id", prop.ForAll(
		func(id, testID, class string, pos int) bool {
			el := Snapshot{Tag: "div", Index: pos, Attributes: map[string]string{
				"id": id, TestIDAttribute: testID, "class": class,
			}}
			return Resolve(el) == "#"+id
		},
		gen.Identifier(),
		gen.AlphaString(),
		gen.AlphaString(),
		gen.IntRange(1, 50),
	))

	properties.Property("bare elements resolve to their sibling position", prop.ForAll(
		func(pos int) bool {
			el := Snapshot{Tag: "TD", Index: pos}
			return Resolve(el) == "td:nth-child("+strconv.Itoa(pos)+")"
		},
		gen.IntRange(1, 1000),
	))

	properties.Property("locator is never empty", prop.ForAll(
		func(tag, class string) bool {
			el := Snapshot{Tag: tag, Attributes: map[string]string{"class": class}}
			return Resolve(el) != ""
		},
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
