package pediatric

import (
	"regexp"
	"strings"
)

// PediatricKeywords are matched case-insensitively as substrings of a text
// block. Normalization upstream already folded non-breaking hyphens, so the
// hyphenated forms match both spellings found in the exports.
var PediatricKeywords = []string{
	"pédiatrie", "pédiatrique", "enfant", "enfants",
	"nourrisson", "nourrissons",
	"nouveau-né", "nouveau-nés", "nouveaux-nés",
	"prématuré", "prématurés",
	"infantile",
	"adolescent", "adolescents", "adolescente", "adolescentes",
	"juvénile", "juvéniles",
	"immature",
}

// Word boundaries in the regexp package are ASCII-only, so patterns whose
// head can sit after an accented letter anchor on an explicit non-letter
// prefix instead and report capture group 1. sp stands in for \s because
// the exports separate tokens with non-breaking spaces.
const (
	wordStart = `(?:^|[^\p{L}\p{N}_])`
	sp        = `[\s\p{Zs}]`
)

var comparator = `(?:moins` + sp + `*de` + sp + `*|[<>]=?` + sp + `*|inférieure?` + sp + `*à` + sp + `*|supérieure?` + sp + `*à` + sp + `*)?`

// agePatterns match age and weight mentions below the adult threshold:
// ages in years from 0 to 18, ages in months or days of any magnitude,
// "plus de"/"à partir de" bounds up to 17, and weights in kilograms.
var agePatterns = []*regexp.Regexp{
	regexp.MustCompile(wordStart + `((?:âgée?s?|age|âge)` + sp + `*(?:de` + sp + `*)?` + comparator + `(?:1[0-8]|[0-9])` + sp + `*ans?\b)`),
	regexp.MustCompile(wordStart + `((?:âgée?s?|age|âge)` + sp + `*(?:de` + sp + `*)?` + comparator + `[0-9]+` + sp + `*(?:mois|jours?)\b)`),
	regexp.MustCompile(wordStart + `(plus` + sp + `*de` + sp + `*(?:1[0-7]|[0-9])` + sp + `*ans\b)`),
	regexp.MustCompile(wordStart + `(à` + sp + `*partir` + sp + `*de` + sp + `*(?:1[0-7]|[0-9])` + sp + `*ans\b)`),
	regexp.MustCompile(wordStart + `((?:poids|pesant)` + sp + `*(?:de` + sp + `*)?` + comparator + `[0-9]+(?:[.,][0-9]+)?` + sp + `*kg\b)`),
}

var positivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:est|sont)` + sp + `+indiquée?s?`),
}

// negativePatternSources are reported verbatim as the matched pattern of a
// negative sentence, so their wording stays stable.
var negativePatternSources = []string{
	`ne doit pas être utilisée?`,
	`ne doivent pas être utilisée?s?`,
	`n'est pas indiquée?`,
	`ne sont pas indiquée?s?`,
	`n'est pas recommandée?`,
	`ne sont pas recommandée?s?`,
	`pas recommandable`,
	`sécurité.*?efficacité.*?n'ont pas été`,
	`sécurité.*?efficacité.*?n'a pas été`,
	`sécurité.*?efficacité.*?n'a\s*/\s*n'ont pas été`,
	`tolérance.*?efficacité.*?n'ont pas été`,
	`tolérance.*?efficacité.*?n'a pas été`,
	`n'a pas été suffisamment démontrée?`,
	`n'a pas été étudiée?`,
	`n'est pas justifiée?`,
	`il n'existe pas d'utilisation justifiée?`,
	`est déconseillée?`,
	`aucune donnée.*?disponible`,
	`aucune étude.*?effectuée`,
	`données disponibles sont limitées`,
	`peu de données`,
	`pas possible de recommander`,
	`en l'absence de données?`,
	`absence d'expérience`,
	`sans objet`,
}

var negativePatterns = compileAll(negativePatternSources)

var adultReservedPatterns = []*regexp.Regexp{
	regexp.MustCompile(`réservée?s?` + sp + `+à` + sp + `+l'adulte`),
	regexp.MustCompile(`réservée?s?` + sp + `+à` + sp + `+l` + sp + `+adulte`),
	regexp.MustCompile(`reservée?s?` + sp + `+a` + sp + `+l'adulte`),
}

// headingOnlyTitles are structural subsection headings whose wording never
// carries clinical information; they are excluded from section text.
var headingOnlyTitles = map[string]bool{
	"population pédiatrique":    true,
	"populations particulières": true,
	"posologie":                 true,
	"mode d'administration":     true,
	"durée du traitement":       true,
}

func compileAll(sources []string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, len(sources))
	for i, src := range sources {
		compiled[i] = regexp.MustCompile(src)
	}
	return compiled
}

// FindPediatricKeywords returns every pediatric keyword and age or weight
// mention present in the text, deduplicated in first-seen order.
func FindPediatricKeywords(text string) []string {
	if text == "" {
		return nil
	}
	lower := strings.ToLower(text)
	var found []string

	for _, kw := range PediatricKeywords {
		if strings.Contains(lower, kw) {
			found = append(found, kw)
		}
	}
	for _, re := range agePatterns {
		for _, m := range re.FindAllStringSubmatch(lower, -1) {
			found = append(found, m[1])
		}
	}

	return dedupe(found)
}

func dedupe(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	return out
}

// MatchNegativePattern returns the first negative phrase pattern the text
// matches, or "" when none does.
func MatchNegativePattern(text string) string {
	lower := strings.ToLower(text)
	for i, re := range negativePatterns {
		if re.MatchString(lower) {
			return negativePatternSources[i]
		}
	}
	return ""
}

// MatchesPositiveIndication reports whether the text carries an explicit
// indication phrase like "est indiqué".
func MatchesPositiveIndication(text string) bool {
	lower := strings.ToLower(text)
	for _, re := range positivePatterns {
		if re.MatchString(lower) {
			return true
		}
	}
	return false
}

// IsAdultReserved reports whether the text reserves the drug for adults.
func IsAdultReserved(text string) bool {
	lower := strings.ToLower(text)
	for _, re := range adultReservedPatterns {
		if re.MatchString(lower) {
			return true
		}
	}
	return false
}
