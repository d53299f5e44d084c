// Package pediatric classifies drugs for pediatric use from their parsed
// RCP documents.
//
// Three conditions are derived from sections 4.1, 4.2 and 4.3:
//
//	A: indication pédiatrique
//	B: contre-indication pédiatrique
//	C: sur avis d'un professionnel de santé
//
// The process is fully deterministic keyword and pattern matching; no
// machine learning and no external text analysis is involved.
package pediatric

import (
	"strings"

	"github.com/giygas/infomed-parser/docparser/entities"
)

// SentenceMatch is one text block that matched during classification.
type SentenceMatch struct {
	Text            string   `json:"text"`
	Keywords        []string `json:"keywords"`
	NegativePattern string   `json:"negative_pattern,omitempty"`
	IsPositive      bool     `json:"is_positive,omitempty"`
}

// Classification is the result for a single drug. Reasons and matches are
// evidence: they always describe everything that was found, even when the
// priority rules later turn a condition off.
type Classification struct {
	CIS         string          `json:"cis"`
	ConditionA  bool            `json:"condition_a"`
	ConditionB  bool            `json:"condition_b"`
	ConditionC  bool            `json:"condition_c"`
	AReasons    []string        `json:"a_reasons"`
	BReasons    []string        `json:"b_reasons"`
	CReasons    []string        `json:"c_reasons"`
	Matches4142 []SentenceMatch `json:"matches_41_42"`
	Matches43   []SentenceMatch `json:"matches_43"`
}

// Classify derives the pediatric conditions for one parsed RCP. The ATC
// code is optional; when present, a G03 prefix marks the drug as a
// contraceptive, which by itself puts it on professional advice.
//
// Evidence is collected first over all section texts, then the priority
// rules resolve conflicts: when C holds A is dropped, and after that when
// B holds C is dropped. Those two steps touch only the condition flags;
// the collected reasons and matches stay as found.
func Classify(doc *entities.ParsedDocument, atcCode string) *Classification {
	result := &Classification{}
	if doc != nil {
		result.CIS = doc.Source.CIS
	}

	texts4142 := append(ExtractSectionTexts(doc, "4.1"), ExtractSectionTexts(doc, "4.2")...)

	var hasAnyKeyword, hasPositive, hasNegative, hasKeywordNoIndication bool

	for _, text := range texts4142 {
		keywords := FindPediatricKeywords(text)
		if len(keywords) == 0 {
			continue
		}
		hasAnyKeyword = true

		if neg := MatchNegativePattern(text); neg != "" {
			hasNegative = true
			result.Matches4142 = append(result.Matches4142, SentenceMatch{
				Text:            text,
				Keywords:        keywords,
				NegativePattern: neg,
			})
		} else if MatchesPositiveIndication(text) {
			hasPositive = true
			result.Matches4142 = append(result.Matches4142, SentenceMatch{
				Text:       text,
				Keywords:   keywords,
				IsPositive: true,
			})
		} else {
			hasKeywordNoIndication = true
		}
	}

	adultReserved := IsAdultReserved(strings.Join(texts4142, " "))
	isContraceptive := atcCode != "" && strings.HasPrefix(strings.ToUpper(atcCode), "G03")

	if hasPositive {
		result.AReasons = append(result.AReasons, "keyword positif en 4.1/4.2")
	}
	result.ConditionA = hasPositive

	if hasNegative {
		result.CReasons = append(result.CReasons, "phrases négatives en 4.1/4.2")
	}
	if hasKeywordNoIndication && !hasPositive {
		result.CReasons = append(result.CReasons, "keyword sans indication explicite en 4.1/4.2")
	}
	if !hasAnyKeyword {
		result.CReasons = append(result.CReasons, "pas de mention pédiatrique en 4.1/4.2")
	}
	if adultReserved {
		result.CReasons = append(result.CReasons, "réservé à l'adulte")
	}
	if isContraceptive {
		result.CReasons = append(result.CReasons, "contraceptif (ATC G03)")
	}
	result.ConditionC = len(result.CReasons) > 0

	for _, text := range ExtractSectionTexts(doc, "4.3") {
		keywords := FindPediatricKeywords(text)
		if len(keywords) > 0 {
			result.Matches43 = append(result.Matches43, SentenceMatch{Text: text, Keywords: keywords})
		}
	}
	if len(result.Matches43) > 0 {
		result.BReasons = append(result.BReasons, "mention pédiatrique en 4.3")
	}
	result.ConditionB = len(result.Matches43) > 0

	// C is mutually exclusive with A: C takes priority
	if result.ConditionC {
		result.ConditionA = false
	}
	// C is mutually exclusive with B: B takes priority
	if result.ConditionB {
		result.ConditionC = false
	}

	return result
}
