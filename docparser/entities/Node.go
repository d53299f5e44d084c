package entities

import (
	"encoding/json"
	"fmt"
)

// Structural classes found in the BDPM HTML exports. The first class of an
// element decides how it is parsed; anything else becomes a generic node
// typed by its raw class value.
const (
	ClassAnnexeTitre1 = "AmmAnnexeTitre1"
	ClassNoticeTitre1 = "AmmNoticeTitre1"
	ClassAnnexeTitre2 = "AmmAnnexeTitre2"
	ClassCorpsTexte   = "AmmCorpsTexte"
	ClassCorpsGras    = "AmmCorpsTexteGras"
	ClassTable        = "AmmCorpsTexteTable"

	// TypeBulletList is the synthetic type of a collapsed bullet run.
	TypeBulletList = "listePuce"
	// TypeTable is the type of a table node.
	TypeTable = "table"
)

// Text styles carried by body nodes and table cell parts.
const (
	StyleBold      = "bold"
	StyleItalic    = "italic"
	StyleUnderline = "underline"
)

// Kind discriminates the serialized shape of a Node.
type Kind int

const (
	KindTitle Kind = iota + 1
	KindBullets
	KindBody
	KindGeneric
	KindTable
	KindTableSection
	KindTableRow
	KindTableCell
	KindCellPart
)

// Node is one block of a parsed document. Which fields are meaningful, and
// which keys appear in the JSON form, depends on Kind:
//
//	KindTitle        type, content, anchor (always, possibly null), children
//	KindBullets      type "listePuce", content as a string array
//	KindBody         type, content, html, styles, anchor when present
//	KindGeneric      type, content, html, anchor when present
//	KindTable        type "table", tag "table", attributes, html, children
//	KindTableSection tag thead/tbody/tfoot, attributes, children
//	KindTableRow     tag "tr", attributes, children
//	KindTableCell    tag th/td, attributes, text, html, children
//	KindCellPart     tag, attributes, text, html, styles
//
// Nodes are never mutated after the parser inserts them into the tree.
type Node struct {
	Kind       Kind
	Type       string
	Tag        string
	Content    string
	Items      []string
	Anchor     *string
	HTML       string
	Text       string
	Styles     []string
	Attributes map[string]string
	Children   []*Node
}

func nonNilNodes(ns []*Node) []*Node {
	if ns == nil {
		return []*Node{}
	}
	return ns
}

func nonNilStrings(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}

func nonNilAttrs(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

// anchorValue reports the anchor for kinds that only serialize it when set.
func (n *Node) anchorValue() (string, bool) {
	if n.Anchor != nil && *n.Anchor != "" {
		return *n.Anchor, true
	}
	return "", false
}

func (n *Node) MarshalJSON() ([]byte, error) {
	switch n.Kind {
	case KindTitle:
		return json.Marshal(struct {
			Type     string  `json:"type"`
			Content  string  `json:"content"`
			Anchor   *string `json:"anchor"`
			Children []*Node `json:"children"`
		}{n.Type, n.Content, n.Anchor, nonNilNodes(n.Children)})
	case KindBullets:
		return json.Marshal(struct {
			Type    string   `json:"type"`
			Content []string `json:"content"`
		}{n.Type, nonNilStrings(n.Items)})
	case KindBody:
		type body struct {
			Type    string   `json:"type"`
			Content string   `json:"content"`
			HTML    string   `json:"html"`
			Styles  []string `json:"styles"`
			Anchor  string   `json:"anchor,omitempty"`
		}
		b := body{n.Type, n.Content, n.HTML, nonNilStrings(n.Styles), ""}
		if a, ok := n.anchorValue(); ok {
			b.Anchor = a
		}
		return json.Marshal(b)
	case KindGeneric:
		type generic struct {
			Type    string `json:"type"`
			Content string `json:"content"`
			HTML    string `json:"html"`
			Anchor  string `json:"anchor,omitempty"`
		}
		g := generic{n.Type, n.Content, n.HTML, ""}
		if a, ok := n.anchorValue(); ok {
			g.Anchor = a
		}
		return json.Marshal(g)
	case KindTable:
		return json.Marshal(struct {
			Type       string            `json:"type"`
			Tag        string            `json:"tag"`
			Attributes map[string]string `json:"attributes"`
			HTML       string            `json:"html"`
			Children   []*Node           `json:"children"`
		}{n.Type, n.Tag, nonNilAttrs(n.Attributes), n.HTML, nonNilNodes(n.Children)})
	case KindTableSection, KindTableRow:
		return json.Marshal(struct {
			Tag        string            `json:"tag"`
			Attributes map[string]string `json:"attributes"`
			Children   []*Node           `json:"children"`
		}{n.Tag, nonNilAttrs(n.Attributes), nonNilNodes(n.Children)})
	case KindTableCell:
		return json.Marshal(struct {
			Tag        string            `json:"tag"`
			Attributes map[string]string `json:"attributes"`
			Text       string            `json:"text"`
			HTML       string            `json:"html"`
			Children   []*Node           `json:"children"`
		}{n.Tag, nonNilAttrs(n.Attributes), n.Text, n.HTML, nonNilNodes(n.Children)})
	case KindCellPart:
		return json.Marshal(struct {
			Tag        string            `json:"tag"`
			Attributes map[string]string `json:"attributes"`
			Text       string            `json:"text"`
			HTML       string            `json:"html"`
			Styles     []string          `json:"styles"`
		}{n.Tag, nonNilAttrs(n.Attributes), n.Text, n.HTML, nonNilStrings(n.Styles)})
	default:
		return nil, fmt.Errorf("node has unknown kind %d", n.Kind)
	}
}

type nodeJSON struct {
	Type       string            `json:"type"`
	Tag        string            `json:"tag"`
	Content    json.RawMessage   `json:"content"`
	Anchor     *string           `json:"anchor"`
	HTML       string            `json:"html"`
	Text       *string           `json:"text"`
	Styles     []string          `json:"styles"`
	Attributes map[string]string `json:"attributes"`
	Children   []*Node           `json:"children"`
}

func (n *Node) UnmarshalJSON(data []byte) error {
	var raw nodeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	n.Type = raw.Type
	n.Tag = raw.Tag
	n.Anchor = raw.Anchor
	n.HTML = raw.HTML
	n.Styles = raw.Styles
	n.Attributes = raw.Attributes
	n.Children = raw.Children
	if raw.Text != nil {
		n.Text = *raw.Text
	}
	if len(raw.Content) > 0 {
		if raw.Content[0] == '[' {
			if err := json.Unmarshal(raw.Content, &n.Items); err != nil {
				return fmt.Errorf("decoding bullet content: %w", err)
			}
		} else if err := json.Unmarshal(raw.Content, &n.Content); err != nil {
			return fmt.Errorf("decoding content: %w", err)
		}
	}
	n.Kind = inferKind(&raw)
	return nil
}

// inferKind recovers the node shape from the keys present in its JSON form.
func inferKind(raw *nodeJSON) Kind {
	switch raw.Tag {
	case "tr":
		return KindTableRow
	case "thead", "tbody", "tfoot":
		return KindTableSection
	case "th", "td":
		return KindTableCell
	}
	switch raw.Type {
	case TypeTable:
		return KindTable
	case TypeBulletList:
		return KindBullets
	}
	if raw.Tag != "" && raw.Text != nil {
		return KindCellPart
	}
	if raw.Children != nil {
		return KindTitle
	}
	if raw.Styles != nil {
		return KindBody
	}
	return KindGeneric
}
