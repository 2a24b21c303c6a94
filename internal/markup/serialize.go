package markup

import (
	"strings"

	"github.com/beevik/etree"
)

// InnerMarkup serializes the full inner markup of el verbatim: child
// elements with their attributes, text, and nesting intact. The element
// itself is not included. The input tree is never mutated; serialization
// works on a copy.
func InnerMarkup(el *etree.Element) string {
	if el == nil {
		return ""
	}
	clone := el.Copy()
	doc := etree.NewDocument()
	for len(clone.Child) > 0 {
		// AddChild reparents the token, which is why this operates on the
		// clone rather than the caller's tree.
		doc.AddChild(clone.Child[0])
	}
	out, err := doc.WriteToString()
	if err != nil {
		return ""
	}
	return out
}

// TextContent returns the concatenated character data of el and all of
// its descendants, in document order.
func TextContent(el *etree.Element) string {
	if el == nil {
		return ""
	}
	var sb strings.Builder
	writeText(&sb, el)
	return sb.String()
}

func writeText(sb *strings.Builder, el *etree.Element) {
	for _, tok := range el.Child {
		switch t := tok.(type) {
		case *etree.CharData:
			sb.WriteString(t.Data)
		case *etree.Element:
			writeText(sb, t)
		}
	}
}
