package docparser

import (
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/giygas/infomed-parser/docparser/entities"
)

var cellChildTags = map[string]bool{
	"p":    true,
	"div":  true,
	"span": true,
}

// extractTable turns a table element into its hierarchical node form:
// section wrappers (thead, tbody, tfoot) owning rows owning cells. A table
// without a tbody wrapper gets its direct rows attached to the table node.
// Every html field is rendered from the source and has its image references
// rewritten.
func (p *Parser) extractTable(el *html.Node) *entities.Node {
	table := goquery.NewDocumentFromNode(el).Selection
	node := &entities.Node{
		Kind:       entities.KindTable,
		Type:       entities.TypeTable,
		Tag:        "table",
		Attributes: attributesOf(el),
		HTML:       p.RewriteImages(renderNode(el)),
		Children:   []*entities.Node{},
	}

	if thead := table.ChildrenFiltered("thead").First(); thead.Length() > 0 {
		node.Children = append(node.Children, p.extractTableSection(thead, "thead"))
	}
	if tbody := table.ChildrenFiltered("tbody").First(); tbody.Length() > 0 {
		node.Children = append(node.Children, p.extractTableSection(tbody, "tbody"))
	} else {
		table.ChildrenFiltered("tr").Each(func(_ int, tr *goquery.Selection) {
			node.Children = append(node.Children, p.extractRow(tr))
		})
	}
	if tfoot := table.ChildrenFiltered("tfoot").First(); tfoot.Length() > 0 {
		node.Children = append(node.Children, p.extractTableSection(tfoot, "tfoot"))
	}
	return node
}

func (p *Parser) extractTableSection(sel *goquery.Selection, tag string) *entities.Node {
	node := &entities.Node{
		Kind:       entities.KindTableSection,
		Tag:        tag,
		Attributes: attributesOf(sel.Get(0)),
		Children:   []*entities.Node{},
	}
	sel.ChildrenFiltered("tr").Each(func(_ int, tr *goquery.Selection) {
		node.Children = append(node.Children, p.extractRow(tr))
	})
	return node
}

func (p *Parser) extractRow(tr *goquery.Selection) *entities.Node {
	node := &entities.Node{
		Kind:       entities.KindTableRow,
		Tag:        "tr",
		Attributes: attributesOf(tr.Get(0)),
		Children:   []*entities.Node{},
	}
	tr.ChildrenFiltered("th, td").Each(func(_ int, cell *goquery.Selection) {
		node.Children = append(node.Children, p.extractCell(cell.Get(0)))
	})
	return node
}

// extractCell captures a cell's normalized text and markup. Direct p, div
// and span children are kept only when they add something over the cell
// itself: their own text or their own styles.
func (p *Parser) extractCell(el *html.Node) *entities.Node {
	text := CleanText(el)
	node := &entities.Node{
		Kind:       entities.KindTableCell,
		Tag:        el.Data,
		Attributes: attributesOf(el),
		Text:       text,
		HTML:       p.RewriteImages(renderNode(el)),
		Children:   []*entities.Node{},
	}
	for child := el.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != html.ElementNode || !cellChildTags[child.Data] {
			continue
		}
		childText := CleanText(child)
		styles := ExtractStyles(child)
		if childText == text && len(styles) == 0 {
			continue
		}
		node.Children = append(node.Children, &entities.Node{
			Kind:       entities.KindCellPart,
			Tag:        child.Data,
			Attributes: attributesOf(child),
			Text:       childText,
			HTML:       p.RewriteImages(renderNode(child)),
			Styles:     styles,
		})
	}
	return node
}
