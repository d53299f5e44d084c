package docparser

import (
	"sort"
	"strings"

	"golang.org/x/net/html"

	"github.com/giygas/infomed-parser/docparser/entities"
)

// styleTags are the inline elements inspected for text styling.
var styleTags = map[string]bool{
	"span":   true,
	"b":      true,
	"strong": true,
	"u":      true,
	"em":     true,
}

// ExtractStyles collects the text styles carried by the element's inline
// descendants. The export marks bold and underline either with dedicated
// tags or with the "gras" and "souligne" classes on spans.
func ExtractStyles(n *html.Node) []string {
	styles := make(map[string]bool)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && styleTags[n.Data] {
			if class, ok := attrValue(n, "class"); ok {
				for _, c := range strings.Fields(class) {
					switch c {
					case "gras":
						styles[entities.StyleBold] = true
					case "souligne":
						styles[entities.StyleUnderline] = true
					}
				}
			}
			switch n.Data {
			case "b", "strong":
				styles[entities.StyleBold] = true
			case "u":
				styles[entities.StyleUnderline] = true
			case "em":
				styles[entities.StyleItalic] = true
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}
	if len(styles) == 0 {
		return nil
	}
	sorted := make([]string, 0, len(styles))
	for s := range styles {
		sorted = append(sorted, s)
	}
	sort.Strings(sorted)
	return sorted
}
