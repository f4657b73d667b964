package locator

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ParseError reports malformed page-source input. No partial recovery is
// attempted; the tree built up to the failure point is discarded.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse page source: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// degenerateBounds is the bounds value of nodes the platform never rendered.
const degenerateBounds = "[0,0][0,0]"

// node is one attributed element of the parsed page source. Attribute names
// are normalized to the Android dump vocabulary regardless of source platform;
// missing attributes default to their zero value. Children are kept in
// document order.
type node struct {
	Class       string
	Text        string
	ContentDesc string
	ResourceID  string
	Bounds      string
	Clickable   bool
	Focusable   bool
	Enabled     bool
	Displayed   bool
	Children    []*node
}

// isIOSDriver reports whether the driver-name hint refers to an XCUITest
// backend, which serializes its page source with a different attribute
// vocabulary than the Android dumps.
func isIOSDriver(driverName string) bool {
	name := strings.ToLower(driverName)
	return strings.Contains(name, "ios") || strings.Contains(name, "xcui")
}

// parseSource parses a raw page-source dump into a node tree. The stream is
// consumed token by token with an explicit element stack; live UI trees can
// be hundreds of nodes deep and this keeps the depth off the call stack.
func parseSource(raw, driverName string) (*node, error) {
	ios := isIOSDriver(driverName)
	dec := xml.NewDecoder(strings.NewReader(raw))

	var root *node
	var stack []*node
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ParseError{Err: err}
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := newNode(t, ios)
			if len(stack) == 0 {
				if root != nil {
					return nil, &ParseError{Err: fmt.Errorf("multiple root elements")}
				}
				root = n
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, n)
			}
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, &ParseError{Err: fmt.Errorf("unbalanced end element </%s>", t.Name.Local)}
			}
			stack = stack[:len(stack)-1]
		}
	}
	if len(stack) != 0 {
		return nil, &ParseError{Err: fmt.Errorf("unclosed element <%s>", stack[len(stack)-1].Class)}
	}
	if root == nil {
		return nil, &ParseError{Err: fmt.Errorf("no elements in page source")}
	}
	return root, nil
}

// newNode builds a node from a start element, mapping XCUITest attributes
// onto the Android vocabulary when ios is set: type is the class, name is the
// accessibility identifier, label (or value) is the visible text, and the
// bounds rectangle is synthesized from x/y/width/height. iOS exposes no
// resource-id and no clickable flag.
func newNode(el xml.StartElement, ios bool) *node {
	attrs := make(map[string]string, len(el.Attr))
	for _, a := range el.Attr {
		attrs[a.Name.Local] = a.Value
	}

	n := &node{}
	if ios {
		n.Class = attrs["type"]
		if n.Class == "" {
			n.Class = el.Name.Local
		}
		n.Text = attrs["label"]
		if n.Text == "" {
			n.Text = attrs["value"]
		}
		n.ContentDesc = attrs["name"]
		n.Bounds = iosBounds(attrs)
		n.Enabled = attrs["enabled"] == "true"
		n.Displayed = attrs["visible"] == "true"
		n.Focusable = attrs["accessible"] == "true"
		return n
	}

	n.Class = attrs["class"]
	if n.Class == "" {
		n.Class = el.Name.Local
	}
	n.Text = attrs["text"]
	n.ContentDesc = attrs["content-desc"]
	n.ResourceID = attrs["resource-id"]
	n.Bounds = attrs["bounds"]
	n.Clickable = attrs["clickable"] == "true"
	n.Focusable = attrs["focusable"] == "true"
	n.Enabled = attrs["enabled"] == "true"
	n.Displayed = attrs["displayed"] == "true"
	return n
}

// iosBounds synthesizes an Android-style "[x1,y1][x2,y2]" bounds string from
// the x/y/width/height attributes of an XCUITest node. Nodes without geometry
// come out as the degenerate rectangle and get excluded downstream.
func iosBounds(attrs map[string]string) string {
	x := atoi(attrs["x"])
	y := atoi(attrs["y"])
	w := atoi(attrs["width"])
	h := atoi(attrs["height"])
	return fmt.Sprintf("[%d,%d][%d,%d]", x, y, x+w, y+h)
}

func atoi(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return v
}

// walk returns the tree's nodes in pre-order (parent before children,
// matching the on-screen hierarchy) using an explicit stack.
func walk(root *node) []*node {
	var out []*node
	stack := []*node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, n)
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, n.Children[i])
		}
	}
	return out
}
