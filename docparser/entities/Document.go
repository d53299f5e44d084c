package entities

// Source identifies where a parsed document came from.
type Source struct {
	Filename string `json:"filename"`
	CIS      string `json:"cis"`
}

// ParsedDocument is the envelope written to JSONL outputs: one Notice or
// RCP export turned into an ordered block tree.
type ParsedDocument struct {
	Source  Source  `json:"source"`
	Content []*Node `json:"content"`
}
