// Package dom holds the presentation state of a control: a small element tree
// parsed from the control's template. Controls write classes, text and style
// into it; front ends read them back when rendering.
package dom

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Element wraps an element node of a parsed template.
type Element struct {
	n *html.Node
}

// Parse parses a template fragment and returns its first element.
func Parse(template string) (*Element, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(template), body)
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}
	for _, n := range nodes {
		if n.Type == html.ElementNode {
			return &Element{n: n}, nil
		}
	}
	return nil, fmt.Errorf("parse template: no element in %q", strings.TrimSpace(template))
}

// MustParse is Parse for templates known at compile time.
func MustParse(template string) *Element {
	el, err := Parse(template)
	if err != nil {
		panic(err)
	}
	return el
}

// TagName returns the element's tag.
func (e *Element) TagName() string { return e.n.Data }

// ElementsByTagName returns descendants with the given tag, in document order.
func (e *Element) ElementsByTagName(tag string) []*Element {
	var out []*Element
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.Data == tag {
				out = append(out, &Element{n: c})
			}
			walk(c)
		}
	}
	walk(e.n)
	return out
}

// First returns the first descendant with the given tag, or nil.
func (e *Element) First(tag string) *Element {
	if els := e.ElementsByTagName(tag); len(els) > 0 {
		return els[0]
	}
	return nil
}

func (e *Element) attr(key string) (string, bool) {
	for _, a := range e.n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func (e *Element) setAttr(key, val string) {
	for i, a := range e.n.Attr {
		if a.Key == key {
			e.n.Attr[i].Val = val
			return
		}
	}
	e.n.Attr = append(e.n.Attr, html.Attribute{Key: key, Val: val})
}

// Attr returns an attribute value, or "" when absent.
func (e *Element) Attr(key string) string {
	v, _ := e.attr(key)
	return v
}

// Classes returns the class list.
func (e *Element) Classes() []string {
	v, _ := e.attr("class")
	return strings.Fields(v)
}

// HasClass reports whether name is in the class list.
func (e *Element) HasClass(name string) bool {
	for _, c := range e.Classes() {
		if c == name {
			return true
		}
	}
	return false
}

// AddClass appends name to the class list if missing.
func (e *Element) AddClass(name string) {
	if e.HasClass(name) {
		return
	}
	e.setAttr("class", strings.Join(append(e.Classes(), name), " "))
}

// RemoveClass drops name from the class list.
func (e *Element) RemoveClass(name string) {
	cls := e.Classes()
	kept := cls[:0]
	for _, c := range cls {
		if c != name {
			kept = append(kept, c)
		}
	}
	e.setAttr("class", strings.Join(kept, " "))
}

// SetText replaces the element's children with a single text node.
func (e *Element) SetText(s string) {
	for c := e.n.FirstChild; c != nil; {
		next := c.NextSibling
		e.n.RemoveChild(c)
		c = next
	}
	e.n.AppendChild(&html.Node{Type: html.TextNode, Data: s})
}

// Text returns the concatenated text content.
func (e *Element) Text() string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				b.WriteString(c.Data)
			}
			walk(c)
		}
	}
	walk(e.n)
	return strings.TrimSpace(b.String())
}

// SetStyle sets one inline style property.
func (e *Element) SetStyle(prop, value string) {
	props := e.styles()
	found := false
	for i := range props {
		if props[i][0] == prop {
			props[i][1] = value
			found = true
		}
	}
	if !found {
		props = append(props, [2]string{prop, value})
	}
	parts := make([]string, 0, len(props))
	for _, p := range props {
		parts = append(parts, p[0]+": "+p[1])
	}
	e.setAttr("style", strings.Join(parts, "; "))
}

// Style returns an inline style property, or "".
func (e *Element) Style(prop string) string {
	for _, p := range e.styles() {
		if p[0] == prop {
			return p[1]
		}
	}
	return ""
}

func (e *Element) styles() [][2]string {
	v, _ := e.attr("style")
	var out [][2]string
	for _, decl := range strings.Split(v, ";") {
		k, val, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		out = append(out, [2]string{strings.TrimSpace(k), strings.TrimSpace(val)})
	}
	return out
}

// Render serialises the element back to markup.
func (e *Element) Render() string {
	var buf bytes.Buffer
	if err := html.Render(&buf, e.n); err != nil {
		return ""
	}
	return buf.String()
}
