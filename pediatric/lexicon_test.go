package pediatric

import (
	"reflect"
	"testing"
)

func TestFindPediatricKeywords(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{
			"no pediatric mention",
			"Traitement de l'hypertension artérielle.",
			nil,
		},
		{
			"single keyword",
			"Ce médicament est utilisé chez l'enfant.",
			[]string{"enfant"},
		},
		{
			"case insensitive",
			"POPULATION PÉDIATRIQUE",
			[]string{"pédiatrique"},
		},
		{
			"plural contains singular",
			"chez les nourrissons",
			[]string{"nourrisson", "nourrissons"},
		},
		{
			"age in years",
			"chez les patients âgés de moins de 6 ans",
			[]string{"âgés de moins de 6 ans"},
		},
		{
			"age in months with non-breaking space",
			"nourrissons âgés de 6 mois et plus",
			[]string{"nourrisson", "nourrissons", "âgés de 6 mois"},
		},
		{
			"lower age bound",
			"chez l'adulte et l'adolescent à partir de 15 ans",
			[]string{"adolescent", "à partir de 15 ans"},
		},
		{
			"upper bound form",
			"enfants de plus de 12 ans",
			[]string{"enfant", "enfants", "plus de 12 ans"},
		},
		{
			"weight mention",
			"patients dont le poids inférieur à 30 kg",
			[]string{"poids inférieur à 30 kg"},
		},
		{
			"eighteen years is adult",
			"chez les sujets de plus de 18 ans",
			nil,
		},
		{
			"nineteen years not an age match",
			"patients âgés de 19 ans",
			nil,
		},
		{
			"empty text",
			"",
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindPediatricKeywords(tt.text)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("FindPediatricKeywords(%q) = %v, expected %v", tt.text, got, tt.expected)
			}
		})
	}
}

func TestFindPediatricKeywords_Deduplicated(t *testing.T) {
	got := FindPediatricKeywords("l'enfant répond, enfant après enfant")
	if !reflect.DeepEqual(got, []string{"enfant"}) {
		t.Errorf("Expected single deduplicated keyword, got %v", got)
	}
}

func TestMatchNegativePattern(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{
			"must not be used",
			"DOLIPRANE ne doit pas être utilisé chez l'enfant de moins de 6 ans.",
			`ne doit pas être utilisée?`,
		},
		{
			"not recommended",
			"L'utilisation n'est pas recommandée chez l'enfant.",
			`n'est pas recommandée?`,
		},
		{
			"safety and efficacy not established",
			"La sécurité et l'efficacité chez les enfants n'ont pas été établies.",
			`sécurité.*?efficacité.*?n'ont pas été`,
		},
		{
			"no data available",
			"Aucune donnée n'est disponible chez l'enfant.",
			`aucune donnée.*?disponible`,
		},
		{
			"limited data",
			"Les données disponibles sont limitées dans cette population.",
			`données disponibles sont limitées`,
		},
		{
			"advised against",
			"Ce traitement est déconseillé chez l'adolescent.",
			`est déconseillée?`,
		},
		{
			"absence of data",
			"En l'absence de données chez l'enfant, ne pas administrer.",
			`en l'absence de données?`,
		},
		{
			"positive sentence",
			"Ce médicament est indiqué chez l'enfant dès 6 ans.",
			"",
		},
		{
			"empty text",
			"",
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchNegativePattern(tt.text); got != tt.expected {
				t.Errorf("MatchNegativePattern(%q) = %q, expected %q", tt.text, got, tt.expected)
			}
		})
	}
}

func TestMatchesPositiveIndication(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected bool
	}{
		{"est indique", "DOLIPRANE est indiqué chez l'enfant.", true},
		{"est indiquee", "Cette solution est indiquée chez le nourrisson.", true},
		{"sont indiques", "Ces comprimés sont indiqués dans le traitement de la fièvre.", true},
		{"uppercase", "EST INDIQUÉ dans les douleurs.", true},
		{"no indication phrase", "Utilisation chez l'enfant envisageable.", false},
		{"indication noun alone", "Indications thérapeutiques", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchesPositiveIndication(tt.text); got != tt.expected {
				t.Errorf("MatchesPositiveIndication(%q) = %v, expected %v", tt.text, got, tt.expected)
			}
		})
	}
}

func TestIsAdultReserved(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected bool
	}{
		{"standard wording", "Ce médicament est réservé à l'adulte.", true},
		{"feminine plural", "Ces formes sont réservées à l'adulte.", true},
		{"unaccented export", "Solution reservée a l'adulte.", true},
		{"adult mentioned without reservation", "Chez l'adulte et l'enfant.", false},
		{"empty text", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAdultReserved(tt.text); got != tt.expected {
				t.Errorf("IsAdultReserved(%q) = %v, expected %v", tt.text, got, tt.expected)
			}
		})
	}
}
