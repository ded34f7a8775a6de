package selector

import (
	"strings"

	"golang.org/x/net/html"
)

// Node adapts a parsed HTML element node to Element.
type Node struct {
	*html.Node
}

func (n Node) TagName() string {
	return n.Data
}

func (n Node) Attribute(name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, name) {
			return a.Val, true
		}
	}
	return "", false
}

func (n Node) Position() int {
	pos := 1
	for s := n.PrevSibling; s != nil; s = s.PrevSibling {
		if s.Type == html.ElementNode {
			pos++
		}
	}
	return pos
}

// TextContent returns the concatenated text of all descendant text nodes,
// like the DOM textContent property.
func (n Node) TextContent() string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
		for child := c.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n.Node)
	return sb.String()
}

// Elements returns all element nodes below root in document order.
func Elements(root *html.Node) []Node {
	out := make([]Node, 0)
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.ElementNode {
			out = append(out, Node{c})
		}
		for child := c.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)
	return out
}
