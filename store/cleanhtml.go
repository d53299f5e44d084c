package store

import "regexp"

// anchorWrapper matches <a name="..."> wrappers and captures their
// inner HTML. Links carrying an href attribute do not match.
var anchorWrapper = regexp.MustCompile(`(?s)<a\s+name="[^"]*"[^>]*>(.*?)</a>`)

// CleanHTML strips <a name="..."> anchor wrappers from a block's HTML,
// keeping the wrapped content. href links are preserved untouched.
func CleanHTML(html string) string {
	return anchorWrapper.ReplaceAllString(html, "$1")
}
