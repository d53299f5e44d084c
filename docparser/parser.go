package docparser

import (
	"fmt"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/giygas/infomed-parser/docparser/entities"
)

// Parser converts decoded document markup into block trees. It is stateless
// apart from its configuration and safe for concurrent use.
type Parser struct {
	imageBase string
}

// New returns a Parser that rewrites relative image references onto the
// given base URL.
func New(imageBaseURL string) *Parser {
	return &Parser{imageBase: imageBaseURL}
}

// Parse converts one document's markup into its ordered top-level blocks.
//
// The document structure is carried entirely by CSS classes: title classes
// open sections, bullet classes form runs collapsed into a single list node,
// the table class delegates to the table extractor and body classes become
// text blocks. A classed element consumes its whole subtree, so nothing
// inside an emitted block is ever emitted again.
func (p *Parser) Parse(content string) ([]*entities.Node, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parsing document markup: %w", err)
	}
	b := &treeBuilder{parser: p, blocks: []*entities.Node{}}
	for _, root := range doc.Selection.Nodes {
		b.walk(root, false)
	}
	b.flushBullets()
	return b.blocks, nil
}

type treeBuilder struct {
	parser *Parser
	blocks []*entities.Node
	titre1 *entities.Node
	titre2 *entities.Node

	// Active bullet run. The run stays open across elements of the same
	// bullet class and is flushed as one node when any other class shows up.
	bulletClass string
	bulletItems []string
}

// walk descends through unclassed containers and dispatches every classed
// element. Classed elements are not descended into.
func (b *treeBuilder) walk(n *html.Node, inTable bool) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		class := firstClass(c)
		if class == "" {
			b.walk(c, inTable || c.Data == "table")
			continue
		}
		b.handle(c, class, inTable)
	}
}

func isBulletClass(class string) bool {
	switch class {
	case "AmmListePuces1", "AmmListePuces2", "AmmListePuces3":
		return true
	}
	return false
}

func (b *treeBuilder) handle(el *html.Node, class string, inTable bool) {
	if class != b.bulletClass {
		b.flushBullets()
	}

	switch {
	case class == entities.ClassAnnexeTitre1 || class == entities.ClassNoticeTitre1:
		node := &entities.Node{
			Kind:     entities.KindTitle,
			Type:     class,
			Content:  CleanText(el),
			Anchor:   anchorOf(el),
			Children: []*entities.Node{},
		}
		b.blocks = append(b.blocks, node)
		b.titre1 = node
		b.titre2 = nil

	case class == entities.ClassAnnexeTitre2:
		// A subsection without an open section has nowhere to hang.
		if b.titre1 == nil {
			return
		}
		node := &entities.Node{
			Kind:     entities.KindTitle,
			Type:     class,
			Content:  CleanText(el),
			Anchor:   anchorOf(el),
			Children: []*entities.Node{},
		}
		b.titre1.Children = append(b.titre1.Children, node)
		b.titre2 = node

	case isBulletClass(class):
		b.bulletClass = class
		if !inTable {
			if text := CleanText(el); text != "" {
				b.bulletItems = append(b.bulletItems, text)
			}
		}

	case class == entities.ClassTable && el.Data == "table":
		b.add(b.parser.extractTable(el))

	case class == entities.ClassCorpsTexte || class == entities.ClassCorpsGras:
		if inTable {
			return
		}
		styles := ExtractStyles(el)
		if class == entities.ClassCorpsGras && !containsString(styles, entities.StyleBold) {
			styles = append(styles, entities.StyleBold)
			sort.Strings(styles)
		}
		node := &entities.Node{
			Kind:    entities.KindBody,
			Type:    class,
			Content: CleanText(el),
			HTML:    b.parser.RewriteImages(renderNode(el)),
			Styles:  styles,
			Anchor:  anchorOf(el),
		}
		b.add(node)

	default:
		if inTable {
			return
		}
		node := &entities.Node{
			Kind:    entities.KindGeneric,
			Type:    class,
			Content: CleanText(el),
			HTML:    b.parser.RewriteImages(renderNode(el)),
			Anchor:  anchorOf(el),
		}
		b.add(node)
	}
}

// add hangs a node off the innermost open section, or at the top level when
// no section is open.
func (b *treeBuilder) add(n *entities.Node) {
	switch {
	case b.titre2 != nil:
		b.titre2.Children = append(b.titre2.Children, n)
	case b.titre1 != nil:
		b.titre1.Children = append(b.titre1.Children, n)
	default:
		b.blocks = append(b.blocks, n)
	}
}

func (b *treeBuilder) flushBullets() {
	if b.bulletClass == "" {
		return
	}
	if len(b.bulletItems) > 0 {
		b.add(&entities.Node{
			Kind:  entities.KindBullets,
			Type:  entities.TypeBulletList,
			Items: b.bulletItems,
		})
	}
	b.bulletClass = ""
	b.bulletItems = nil
}

// firstClass returns the first class token of an element, or "" when the
// element carries no usable class attribute.
func firstClass(n *html.Node) string {
	class, ok := attrValue(n, "class")
	if !ok {
		return ""
	}
	fields := strings.Fields(class)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// anchorOf returns the name of the element's first <a> descendant, or nil
// when that link is absent or unnamed.
func anchorOf(el *html.Node) *string {
	links := findElements(el, "a")
	if len(links) == 0 {
		return nil
	}
	if name, ok := attrValue(links[0], "name"); ok && name != "" {
		return &name
	}
	return nil
}

func renderNode(n *html.Node) string {
	var b strings.Builder
	if err := html.Render(&b, n); err != nil {
		return ""
	}
	return b.String()
}

func attributesOf(n *html.Node) map[string]string {
	attrs := make(map[string]string, len(n.Attr))
	for _, a := range n.Attr {
		attrs[a.Key] = a.Val
	}
	return attrs
}

func containsString(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
