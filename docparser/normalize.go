// Package docparser turns BDPM Notice and RCP HTML exports into block trees.
package docparser

import (
	"strings"

	"golang.org/x/net/html"
)

// textReplacer canonicalizes the typographic characters found in the exports
// so downstream regex matching works consistently.
var textReplacer = strings.NewReplacer(
	"’", "'", // right single quotation mark
	"‘", "'", // left single quotation mark
	"‑", "-", // non-breaking hyphen
	"–", "-", // en dash
	"≥", ">=",
	"≤", "<=",
)

// NormalizeText normalizes Unicode punctuation in extracted text.
func NormalizeText(text string) string {
	return textReplacer.Replace(text)
}

var superscripts = map[rune]rune{
	'0': '⁰', '1': '¹', '2': '²', '3': '³', '4': '⁴',
	'5': '⁵', '6': '⁶', '7': '⁷', '8': '⁸', '9': '⁹',
	'a': 'ᵃ', 'b': 'ᵇ', 'c': 'ᶜ', 'd': 'ᵈ', 'e': 'ᵉ',
	'f': 'ᶠ', 'g': 'ᵍ', 'h': 'ʰ', 'i': 'ⁱ', 'j': 'ʲ',
	'k': 'ᵏ', 'l': 'ˡ', 'm': 'ᵐ', 'n': 'ⁿ', 'o': 'ᵒ',
	'p': 'ᵖ', 'r': 'ʳ', 's': 'ˢ', 't': 'ᵗ', 'u': 'ᵘ',
	'v': 'ᵛ', 'w': 'ʷ', 'x': 'ˣ', 'y': 'ʸ', 'z': 'ᶻ',
	'A': 'ᴬ', 'B': 'ᴮ', 'D': 'ᴰ', 'E': 'ᴱ', 'G': 'ᴳ',
	'H': 'ᴴ', 'I': 'ᴵ', 'J': 'ᴶ', 'K': 'ᴷ', 'L': 'ᴸ',
	'M': 'ᴹ', 'N': 'ᴺ', 'O': 'ᴼ', 'P': 'ᴾ', 'R': 'ᴿ',
	'T': 'ᵀ', 'U': 'ᵁ', 'V': 'ⱽ', 'W': 'ᵂ',
	'+': '⁺', '-': '⁻', '=': '⁼', '(': '⁽', ')': '⁾',
}

var subscripts = map[rune]rune{
	'0': '₀', '1': '₁', '2': '₂', '3': '₃', '4': '₄',
	'5': '₅', '6': '₆', '7': '₇', '8': '₈', '9': '₉',
	'a': 'ₐ', 'e': 'ₑ', 'h': 'ₕ', 'i': 'ᵢ', 'j': 'ⱼ',
	'k': 'ₖ', 'l': 'ₗ', 'm': 'ₘ', 'n': 'ₙ', 'o': 'ₒ',
	'p': 'ₚ', 'r': 'ᵣ', 's': 'ₛ', 't': 'ₜ', 'u': 'ᵤ',
	'v': 'ᵥ', 'x': 'ₓ',
	'+': '₊', '-': '₋', '=': '₌', '(': '₍', ')': '₎',
}

// mapRunes rewrites each rune through the table, leaving spaces and
// unmapped characters untouched.
func mapRunes(text string, table map[rune]rune) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if mapped, ok := table[r]; ok {
			b.WriteRune(mapped)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func toSuperscript(text string) string { return mapRunes(text, superscripts) }
func toSubscript(text string) string   { return mapRunes(text, subscripts) }

// cloneNode deep-copies a subtree so text cleanup never touches the tree the
// html fields are rendered from.
func cloneNode(n *html.Node) *html.Node {
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
	}
	if len(n.Attr) > 0 {
		c.Attr = make([]html.Attribute, len(n.Attr))
		copy(c.Attr, n.Attr)
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.AppendChild(cloneNode(child))
	}
	return c
}

// nodeText concatenates every text node under n, in document order.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func findElements(root *html.Node, tag string) []*html.Node {
	var found []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag {
			found = append(found, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}
	return found
}

// replaceWithText swaps a subtree for a plain text node.
func replaceWithText(n *html.Node, text string) {
	if n.Parent == nil {
		return
	}
	n.Parent.InsertBefore(&html.Node{Type: html.TextNode, Data: text}, n)
	n.Parent.RemoveChild(n)
}

func attrValue(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// cleanClone returns a copy of the element where sup and sub subtrees have
// been replaced by their Unicode superscript and subscript renderings, and
// spans used for letter spacing have been unwrapped to their text.
func cleanClone(n *html.Node) *html.Node {
	clone := cloneNode(n)
	for _, sup := range findElements(clone, "sup") {
		replaceWithText(sup, toSuperscript(nodeText(sup)))
	}
	for _, sub := range findElements(clone, "sub") {
		replaceWithText(sub, toSubscript(nodeText(sub)))
	}
	for _, span := range findElements(clone, "span") {
		if style, ok := attrValue(span, "style"); ok && strings.Contains(style, "letter-spacing") {
			if attachedTo(clone, span) {
				replaceWithText(span, nodeText(span))
			}
		}
	}
	return clone
}

// attachedTo reports whether n still hangs off root after earlier rewrites.
func attachedTo(root, n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == root {
			return true
		}
	}
	return false
}

// CleanText extracts the element's text with sup/sub conversion, letter
// spacing removal and punctuation normalization applied.
func CleanText(n *html.Node) string {
	return NormalizeText(nodeText(cleanClone(n)))
}
