package entities

import (
	"encoding/json"
	"strings"
	"testing"
)

func marshalToMap(t *testing.T, n *Node) map[string]json.RawMessage {
	t.Helper()
	data, err := json.Marshal(n)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("Unmarshal into map failed: %v", err)
	}
	return m
}

func TestNodeMarshal_TitleCarriesAnchorKey(t *testing.T) {
	plain := &Node{Kind: KindTitle, Type: ClassNoticeTitre1, Content: "1. QU'EST-CE QUE DOLIPRANE ?"}
	m := marshalToMap(t, plain)
	anchor, ok := m["anchor"]
	if !ok {
		t.Fatal("Expected anchor key on a title without an anchor")
	}
	if string(anchor) != "null" {
		t.Errorf("Expected null anchor, got %s", anchor)
	}
	if string(m["children"]) != "[]" {
		t.Errorf("Expected empty children array, got %s", m["children"])
	}

	name := "Ann3b"
	anchored := &Node{Kind: KindTitle, Type: ClassAnnexeTitre1, Content: "NOTICE", Anchor: &name}
	m = marshalToMap(t, anchored)
	if string(m["anchor"]) != `"Ann3b"` {
		t.Errorf("Expected anchor value, got %s", m["anchor"])
	}
}

func TestNodeMarshal_BodyOmitsEmptyAnchor(t *testing.T) {
	body := &Node{Kind: KindBody, Type: ClassCorpsTexte, Content: "texte", HTML: "<p>texte</p>"}
	m := marshalToMap(t, body)
	if _, ok := m["anchor"]; ok {
		t.Error("Expected no anchor key on a body without an anchor")
	}
	if string(m["styles"]) != "[]" {
		t.Errorf("Expected empty styles array, got %s", m["styles"])
	}

	name := "Ann3bComment"
	anchored := &Node{Kind: KindBody, Type: ClassCorpsTexte, Content: "texte", Anchor: &name}
	m = marshalToMap(t, anchored)
	if string(m["anchor"]) != `"Ann3bComment"` {
		t.Errorf("Expected anchor value, got %s", m["anchor"])
	}
}

func TestNodeMarshal_BulletsContentIsArray(t *testing.T) {
	bullets := &Node{Kind: KindBullets, Type: TypeBulletList, Items: []string{"fièvre", "douleurs"}}
	data, err := json.Marshal(bullets)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	expected := `{"type":"listePuce","content":["fièvre","douleurs"]}`
	if string(data) != expected {
		t.Errorf("Expected %s, got %s", expected, data)
	}
}

func TestNodeMarshal_TableShapes(t *testing.T) {
	table := &Node{
		Kind:       KindTable,
		Type:       TypeTable,
		Tag:        "table",
		Attributes: map[string]string{"border": "1"},
		HTML:       "<table></table>",
		Children: []*Node{
			{
				Kind: KindTableSection,
				Tag:  "tbody",
				Children: []*Node{
					{
						Kind: KindTableRow,
						Tag:  "tr",
						Children: []*Node{
							{Kind: KindTableCell, Tag: "td", Text: "60 mg", HTML: "<td>60 mg</td>"},
						},
					},
				},
			},
		},
	}

	m := marshalToMap(t, table)
	if string(m["type"]) != `"table"` || string(m["tag"]) != `"table"` {
		t.Errorf("Expected table type and tag, got %s %s", m["type"], m["tag"])
	}

	data, _ := json.Marshal(table)
	if !strings.Contains(string(data), `"text":"60 mg"`) {
		t.Errorf("Expected cell text in output, got %s", data)
	}
	// Sections and rows never serialize a type key.
	var tree struct {
		Children []map[string]json.RawMessage `json:"children"`
	}
	if err := json.Unmarshal(data, &tree); err != nil {
		t.Fatal(err)
	}
	if _, ok := tree.Children[0]["type"]; ok {
		t.Error("Expected no type key on a table section")
	}
	if string(tree.Children[0]["attributes"]) != "{}" {
		t.Errorf("Expected empty attributes object, got %s", tree.Children[0]["attributes"])
	}
}

func TestNodeMarshal_CellPartStyles(t *testing.T) {
	part := &Node{Kind: KindCellPart, Tag: "p", Text: "Gras", HTML: "<p><b>Gras</b></p>", Styles: []string{StyleBold}}
	m := marshalToMap(t, part)
	if string(m["styles"]) != `["bold"]` {
		t.Errorf("Expected styles array, got %s", m["styles"])
	}
	if _, ok := m["children"]; ok {
		t.Error("Expected no children key on a cell part")
	}
}

func TestNodeMarshal_UnknownKind(t *testing.T) {
	if _, err := json.Marshal(&Node{}); err == nil {
		t.Error("Expected error for a node without a kind")
	}
}

func TestNodeUnmarshal_KindInference(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Kind
	}{
		{"row from tag", `{"tag":"tr","attributes":{},"children":[]}`, KindTableRow},
		{"section from tag", `{"tag":"tbody","attributes":{},"children":[]}`, KindTableSection},
		{"cell from tag", `{"tag":"td","attributes":{},"text":"x","html":"","children":[]}`, KindTableCell},
		{"table from type", `{"type":"table","tag":"table","attributes":{},"html":"","children":[]}`, KindTable},
		{"bullets from type", `{"type":"listePuce","content":["a"]}`, KindBullets},
		{"cell part from tag and text", `{"tag":"p","attributes":{},"text":"x","html":"","styles":[]}`, KindCellPart},
		{"title from children", `{"type":"AmmNoticeTitre1","content":"T","anchor":null,"children":[]}`, KindTitle},
		{"body from styles", `{"type":"AmmCorpsTexte","content":"t","html":"<p>t</p>","styles":[]}`, KindBody},
		{"generic fallback", `{"type":"AmmDenomination","content":"D","html":"<p>D</p>"}`, KindGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var n Node
			if err := json.Unmarshal([]byte(tt.input), &n); err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}
			if n.Kind != tt.expected {
				t.Errorf("Expected kind %d, got %d", tt.expected, n.Kind)
			}
		})
	}
}

func TestNodeUnmarshal_BulletItems(t *testing.T) {
	var n Node
	input := `{"type":"listePuce","content":["maux de tête","fièvre"]}`
	if err := json.Unmarshal([]byte(input), &n); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if len(n.Items) != 2 || n.Items[0] != "maux de tête" {
		t.Errorf("Expected bullet items decoded, got %+v", n.Items)
	}
	if n.Content != "" {
		t.Errorf("Expected string content left empty, got %q", n.Content)
	}
}

// A document written to JSONL must come back with the same structure when the
// classifier reads it.
func TestParsedDocumentRoundTrip(t *testing.T) {
	anchor := "Ann3b"
	doc := &ParsedDocument{
		Source: Source{Filename: "N61266250.htm", CIS: "61266250"},
		Content: []*Node{
			{
				Kind:    KindTitle,
				Type:    ClassNoticeTitre1,
				Anchor:  &anchor,
				Content: "3. COMMENT PRENDRE DOLIPRANE ?",
				Children: []*Node{
					{Kind: KindBody, Type: ClassCorpsTexte, Content: "Posologie", HTML: "<p>Posologie</p>", Styles: []string{StyleBold}},
					{Kind: KindBullets, Type: TypeBulletList, Items: []string{"réservé à l'adulte"}},
					{
						Kind: KindTable, Type: TypeTable, Tag: "table",
						Attributes: map[string]string{"border": "1"},
						HTML:       "<table></table>",
						Children: []*Node{
							{Kind: KindTableSection, Tag: "tbody", Children: []*Node{
								{Kind: KindTableRow, Tag: "tr", Children: []*Node{
									{Kind: KindTableCell, Tag: "td", Text: "6 mois", Children: []*Node{
										{Kind: KindCellPart, Tag: "p", Text: "6 mois", Styles: []string{StyleBold}},
									}},
								}},
							}},
						},
					},
				},
			},
		},
	}

	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded ParsedDocument
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if decoded.Source.CIS != "61266250" || decoded.Source.Filename != "N61266250.htm" {
		t.Errorf("Source lost in round trip: %+v", decoded.Source)
	}
	title := decoded.Content[0]
	if title.Kind != KindTitle || title.Anchor == nil || *title.Anchor != "Ann3b" {
		t.Errorf("Title lost in round trip: %+v", title)
	}
	if len(title.Children) != 3 {
		t.Fatalf("Expected 3 children back, got %d", len(title.Children))
	}
	kinds := []Kind{KindBody, KindBullets, KindTable}
	for i, k := range kinds {
		if title.Children[i].Kind != k {
			t.Errorf("Child %d: expected kind %d, got %d", i, k, title.Children[i].Kind)
		}
	}
	cell := title.Children[2].Children[0].Children[0].Children[0]
	if cell.Kind != KindTableCell || cell.Text != "6 mois" {
		t.Errorf("Cell lost in round trip: %+v", cell)
	}
	if part := cell.Children[0]; part.Kind != KindCellPart || part.Styles[0] != StyleBold {
		t.Errorf("Cell part lost in round trip: %+v", part)
	}
}
