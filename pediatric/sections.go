package pediatric

import (
	"strings"

	"github.com/giygas/infomed-parser/docparser/entities"
)

const (
	titre3 = "AmmAnnexeTitre3"
	titre4 = "AmmAnnexeTitre4"
)

// ExtractSectionTexts returns the text blocks of one numbered RCP section,
// e.g. "4.1". The section is the first level-2 heading whose content starts
// with the prefix, looked up under the document's level-1 sections. A
// missing section yields no texts.
func ExtractSectionTexts(doc *entities.ParsedDocument, sectionPrefix string) []string {
	var texts []string
	if doc == nil {
		return texts
	}
	for _, item := range doc.Content {
		if item.Type != entities.ClassAnnexeTitre1 {
			continue
		}
		for _, child := range item.Children {
			if child.Type != entities.ClassAnnexeTitre2 {
				continue
			}
			if strings.HasPrefix(strings.TrimSpace(child.Content), sectionPrefix) {
				collectTexts(child, &texts)
				return texts
			}
		}
	}
	return texts
}

// collectTexts gathers content from a section subtree in document order.
// The section heading itself contributes nothing, level-3 and level-4
// headings count only when their wording is not purely structural, and
// bullet lists contribute one text per item.
func collectTexts(node *entities.Node, texts *[]string) {
	switch {
	case node.Type == entities.ClassAnnexeTitre2:
		// skip the heading itself
	case node.Type == titre3 || node.Type == titre4:
		trimmed := strings.TrimSpace(node.Content)
		if !headingOnlyTitles[strings.ToLower(trimmed)] {
			*texts = append(*texts, trimmed)
		}
	case strings.TrimSpace(node.Content) != "":
		*texts = append(*texts, strings.TrimSpace(node.Content))
	default:
		for _, item := range node.Items {
			if strings.TrimSpace(item) != "" {
				*texts = append(*texts, strings.TrimSpace(item))
			}
		}
	}

	for _, child := range node.Children {
		collectTexts(child, texts)
	}
}
