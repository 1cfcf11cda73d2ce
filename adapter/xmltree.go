package adapter

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// element is a node of a leniently parsed markup document. Tag and attribute
// names are lower case, so lookups are case insensitive.
type element struct {
	name  string
	attrs map[string]string

	// number of attributes as written, duplicates included
	nattrs int

	children []*element

	// content interleaves character data and child elements in document
	// order. Exactly one of text and child is set.
	content []chunk
}

type chunk struct {
	text  string
	child *element
}

// parseMarkup builds an element tree from content. The parser is forgiving:
// HTML entities are known, unclosed elements are closed at the end of their
// parent and any declared charset is ignored because content is already
// decoded.
func parseMarkup(content string) (*element, error) {
	d := xml.NewDecoder(strings.NewReader(content))
	d.Strict = false
	d.AutoClose = xml.HTMLAutoClose
	d.Entity = xml.HTMLEntity
	d.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil
	}

	root := &element{attrs: map[string]string{}}
	stack := []*element{root}

	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("markup error: %w", err)
		}

		top := stack[len(stack)-1]
		switch t := tok.(type) {
		case xml.StartElement:
			el := &element{
				name:   strings.ToLower(t.Name.Local),
				attrs:  make(map[string]string, len(t.Attr)),
				nattrs: len(t.Attr),
			}
			for _, a := range t.Attr {
				key := strings.ToLower(a.Name.Local)
				if _, ok := el.attrs[key]; ok {
					continue
				}
				el.attrs[key] = a.Value
			}
			top.children = append(top.children, el)
			top.content = append(top.content, chunk{child: el})
			stack = append(stack, el)

		case xml.EndElement:
			name := strings.ToLower(t.Name.Local)
			for i := len(stack) - 1; i > 0; i-- {
				if stack[i].name == name {
					stack = stack[:i]
					break
				}
			}

		case xml.CharData:
			top.content = append(top.content, chunk{text: string(t)})
		}
	}

	return root, nil
}

// attr returns the value of the named attribute.
func (e *element) attr(name string) (string, bool) {
	v, ok := e.attrs[strings.ToLower(name)]
	return v, ok
}

func (e *element) hasAttr(name string) bool {
	_, ok := e.attr(name)
	return ok
}

// text returns all character data below e, in document order.
func (e *element) text() string {
	var sb strings.Builder
	e.writeText(&sb)
	return sb.String()
}

func (e *element) writeText(sb *strings.Builder) {
	for _, c := range e.content {
		if c.child != nil {
			c.child.writeText(sb)
			continue
		}
		sb.WriteString(c.text)
	}
}

// findAll returns the descendants of e (e excluded) whose name is one of
// names, in document order.
func (e *element) findAll(names ...string) []*element {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[strings.ToLower(n)] = true
	}

	var found []*element
	var walk func(*element)
	walk = func(el *element) {
		for _, c := range el.children {
			if want[c.name] {
				found = append(found, c)
			}
			walk(c)
		}
	}
	walk(e)
	return found
}

// find returns the first descendant named name, nil if there is none.
func (e *element) find(name string) *element {
	name = strings.ToLower(name)
	for _, c := range e.children {
		if c.name == name {
			return c
		}
		if found := c.find(name); found != nil {
			return found
		}
	}
	return nil
}
