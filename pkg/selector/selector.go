// Package selector derives a stable, human-readable CSS locator for a DOM
// element.
package selector

import (
	"strconv"
	"strings"
)

// TestIDAttribute is the attribute used by test suites to tag elements.
const TestIDAttribute = "data-testid"

// Element is the read-only view of a DOM element needed to build a locator.
type Element interface {
	// TagName returns the element's tag name in any case.
	TagName() string
	// Attribute returns the attribute value and whether it is present.
	Attribute(name string) (string, bool)
	// Position returns the 1-based position among the element's siblings
	// that are elements themselves.
	Position() int
}

// Resolve returns the locator of el. The first matching rule wins:
//
//	#<id>
//	[data-testid="<value>"]
//	<tag>.<class1>.<class2>
//	<tag>:nth-child(<position>)
func Resolve(el Element) string {
	if id, _ := el.Attribute("id"); id != "" {
		return "#" + id
	}

	if testID, _ := el.Attribute(TestIDAttribute); testID != "" {
		return "[" + TestIDAttribute + `="` + testID + `"]`
	}

	tag := strings.ToLower(el.TagName())

	if classes := Classes(el); len(classes) > 0 {
		return tag + "." + strings.Join(classes, ".")
	}

	pos := el.Position()
	if pos < 1 {
		pos = 1
	}
	return tag + ":nth-child(" + strconv.Itoa(pos) + ")"
}

// Classes returns the non-empty class tokens of el in declared order.
func Classes(el Element) []string {
	class, _ := el.Attribute("class")
	return strings.Fields(class)
}
