package docparser

import (
	"regexp"
	"strings"
)

// imgPattern matches img tags pointing at the relative ../images/ directory
// used by the BDPM exports. Attribute chunks around src are captured so the
// tag can be rebuilt with an absolute URL.
var imgPattern = regexp.MustCompile(`(?i)<img([^>]*?)src="\.\./images/([^"]+)"([^>]*?)(?:\s*/)?>`)

// RewriteImages converts relative image references to absolute URLs on the
// configured base and normalizes the tags to self-closing form. Content
// without an "<img" substring is returned unchanged.
func (p *Parser) RewriteImages(content string) string {
	if content == "" || !strings.Contains(content, "<img") {
		return content
	}
	return imgPattern.ReplaceAllStringFunc(content, func(tag string) string {
		parts := imgPattern.FindStringSubmatch(tag)
		return `<img` + parts[1] + `src="` + p.imageBase + parts[2] + `"` + parts[3] + ` />`
	})
}
