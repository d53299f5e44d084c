// Package validation provides corpus and input validation for the document API.
package validation

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/giygas/infomed-parser/docparser/entities"
	"github.com/giygas/infomed-parser/interfaces"
	"github.com/giygas/infomed-parser/pediatric"
)

// Pre-compiled regex patterns for performance optimization
// Compiled once at package initialization and reused for all validations
var (
	// Input validation: alphanumeric + French accents + safe punctuation
	inputRegex = regexp.MustCompile(`^[a-zA-Z0-9\s\-\.\+'àâäéèêëïîôöùûüÿç]+$`)

	// Document filenames: N or R prefix, the CIS digits, .htm extension
	filenameRegex = regexp.MustCompile(`^[NR]\d{7,8}\.htm$`)

	// Dangerous patterns as strings (faster than regex for simple substring matching)
	// strings.Contains is 5-10x faster than regex for these patterns
	dangerousPatterns = []string{
		"<script", "</script>", "javascript:", "vbscript:", "onload=", "onerror=",
		"onclick=", "onmouseover=", "onfocus=", "onblur=", "onchange=", "onsubmit=",
		"eval(", "expression(", "url(", "import ", "@import", "binding(", "behavior(",
		// SQL injection patterns
		"' or ", "\" or ", "union select", "drop table", "delete from", "insert into",
		"update set", "--", "/*", "*/", "xp_", "sp_", "exec(", "execute(",
		// Command injection patterns
		"; ", "| ", "& ", "`", "$(", "${", // Command injection
		// Path traversal patterns
		"../", "..\\", "%2e%2e", "file://", // Path traversal
		// LDAP injection patterns
		"*)(", "*|(", "*)%", // LDAP injection
		// NoSQL injection patterns
		"{$ne:", "{$gt:", "{$where:", "{$or:", "{$regex:", "{$expr:", // NoSQL injection
	}
)

// DataValidatorImpl implements the interfaces.DataValidator interface
type DataValidatorImpl struct{}

// NewDataValidator creates a new data validator
func NewDataValidator() interfaces.DataValidator {
	return &DataValidatorImpl{}
}

// ValidateDocument checks that a parsed document carries a coherent identity
func (v *DataValidatorImpl) ValidateDocument(doc *entities.ParsedDocument) error {
	if doc == nil {
		return fmt.Errorf("document is nil")
	}

	if doc.Source.CIS == "" {
		return fmt.Errorf("empty CIS for file %s", doc.Source.Filename)
	}

	if _, err := v.ValidateCIS(doc.Source.CIS); err != nil {
		return fmt.Errorf("invalid CIS for file %s: %w", doc.Source.Filename, err)
	}

	if _, err := v.ValidateFilename(doc.Source.Filename); err != nil {
		return fmt.Errorf("invalid filename for CIS %s: %w", doc.Source.CIS, err)
	}

	// The filename encodes the CIS between the type prefix and the extension
	stem := strings.TrimSuffix(doc.Source.Filename[1:], ".htm")
	if stem != doc.Source.CIS {
		return fmt.Errorf("filename %s does not match CIS %s", doc.Source.Filename, doc.Source.CIS)
	}

	return nil
}

// ValidateDataIntegrity performs comprehensive corpus validation
func (v *DataValidatorImpl) ValidateDataIntegrity(notices map[string]*entities.ParsedDocument, rcps map[string]*entities.ParsedDocument,
	classifications map[string]*pediatric.Classification) error {

	if len(notices) == 0 && len(rcps) == 0 {
		return fmt.Errorf("no documents found")
	}

	// Validate notices and their map keys
	for cis, doc := range notices {
		if err := v.ValidateDocument(doc); err != nil {
			return fmt.Errorf("invalid notice for CIS %s: %w", cis, err)
		}
		if doc.Source.CIS != cis {
			return fmt.Errorf("notice keyed under %s carries CIS %s", cis, doc.Source.CIS)
		}
	}

	// Validate RCPs and their map keys
	for cis, doc := range rcps {
		if err := v.ValidateDocument(doc); err != nil {
			return fmt.Errorf("invalid RCP for CIS %s: %w", cis, err)
		}
		if doc.Source.CIS != cis {
			return fmt.Errorf("RCP keyed under %s carries CIS %s", cis, doc.Source.CIS)
		}
	}

	// Classifications are derived from RCPs, so every classification
	// must point back to a known RCP
	for cis, classification := range classifications {
		if classification == nil {
			return fmt.Errorf("nil classification for CIS %s", cis)
		}
		if classification.CIS != cis {
			return fmt.Errorf("classification keyed under %s carries CIS %s", cis, classification.CIS)
		}
		if _, ok := rcps[cis]; !ok {
			return fmt.Errorf("classification for CIS %s has no matching RCP", cis)
		}
	}

	return nil
}

func (v *DataValidatorImpl) ReportDataQuality(
	notices map[string]*entities.ParsedDocument,
	rcps map[string]*entities.ParsedDocument,
	classifications map[string]*pediatric.Classification,
) *interfaces.DataQualityReport {
	report := &interfaces.DataQualityReport{
		EmptyDocumentsCIS:         []string{},
		MissingClassificationsCIS: []string{},
	}

	// Sorted keys keep the sampled CIS lists stable across runs
	noticeCIS := sortedKeys(notices)
	rcpCIS := sortedKeys(rcps)

	// Check 1: Count documents with no content blocks (store first 10 CIS)
	for _, cis := range noticeCIS {
		if len(notices[cis].Content) == 0 {
			report.EmptyDocuments++
			if len(report.EmptyDocumentsCIS) < 10 {
				report.EmptyDocumentsCIS = append(report.EmptyDocumentsCIS, cis)
			}
		}
	}
	for _, cis := range rcpCIS {
		if len(rcps[cis].Content) == 0 {
			report.EmptyDocuments++
			if len(report.EmptyDocumentsCIS) < 10 {
				report.EmptyDocumentsCIS = append(report.EmptyDocumentsCIS, cis)
			}
		}
	}

	// Check 2: Count notices without a matching RCP
	for _, cis := range noticeCIS {
		if _, ok := rcps[cis]; !ok {
			report.NoticesWithoutRCP++
		}
	}

	// Check 3: Count RCPs without a matching notice
	for _, cis := range rcpCIS {
		if _, ok := notices[cis]; !ok {
			report.RCPsWithoutNotice++
		}
	}

	// Check 4: Count RCPs that produced no classification (store first 10 CIS)
	for _, cis := range rcpCIS {
		if _, ok := classifications[cis]; !ok {
			report.MissingClassifications++
			if len(report.MissingClassificationsCIS) < 10 {
				report.MissingClassificationsCIS = append(report.MissingClassificationsCIS, cis)
			}
		}
	}

	// Check 5: Count classifications per pediatric condition
	for _, classification := range classifications {
		if classification == nil {
			continue
		}
		if classification.ConditionA {
			report.ConditionA++
		}
		if classification.ConditionB {
			report.ConditionB++
		}
		if classification.ConditionC {
			report.ConditionC++
		}
	}

	return report
}

// ValidateInput validates user input strings with enhanced security
func (v *DataValidatorImpl) ValidateInput(input string) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("input cannot be empty")
	}

	if len(input) < 3 {
		return fmt.Errorf("input too short: minimum 3 characters")
	}

	if len(input) > 50 {
		return fmt.Errorf("input too long: maximum 50 characters")
	}

	// Word count validation to prevent DoS attacks with many short words
	words := strings.Fields(input)
	if len(words) > 6 {
		return fmt.Errorf("search query too complex: maximum 6 words allowed")
	}

	// Check for potentially dangerous patterns using string matching (5-10x faster than regex)
	lowerInput := strings.ToLower(input)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lowerInput, pattern) {
			return fmt.Errorf("input contains potentially dangerous content")
		}
	}

	// Allow only alphanumeric characters, spaces, and safe punctuation
	// More restrictive pattern: letters, numbers, spaces, hyphens, apostrophes, periods, and plus sign
	if !inputRegex.MatchString(input) {
		return fmt.Errorf("input contains invalid characters. Only letters, numbers, spaces, hyphens, apostrophes, periods, plus sign, and common French accented characters are allowed")
	}

	// Additional checks for repeated characters (potential DoS)
	if v.hasExcessiveRepetition(input) {
		return fmt.Errorf("input contains excessive character repetition")
	}

	return nil
}

// ValidateCIS validates CIS codes
// CIS codes are numeric identifiers 7 or 8 digits long, returned as
// strings so leading zeros survive
func (v *DataValidatorImpl) ValidateCIS(input string) (string, error) {
	trimmedInput := strings.TrimSpace(input)
	if trimmedInput == "" {
		return "", fmt.Errorf("input cannot be empty")
	}

	// Reject if original input contained whitespace (spaces, tabs, etc.)
	if len(input) != len(trimmedInput) {
		return "", fmt.Errorf("input contains invalid characters. Only numeric characters are allowed")
	}

	if len(trimmedInput) != 7 && len(trimmedInput) != 8 {
		return "", fmt.Errorf("CIS should have 7 or 8 digits")
	}

	// Byte check instead of strconv.Atoi: Atoi accepts a sign prefix
	for i := 0; i < len(trimmedInput); i++ {
		if trimmedInput[i] < '0' || trimmedInput[i] > '9' {
			return "", fmt.Errorf("input contains invalid characters. Only numeric characters are allowed")
		}
	}

	return trimmedInput, nil
}

// ValidateFilename validates BDPM document filenames
// Valid names are an N (notice) or R (RCP) prefix, the CIS digits and
// the .htm extension
func (v *DataValidatorImpl) ValidateFilename(input string) (string, error) {
	trimmedInput := strings.TrimSpace(input)
	if trimmedInput == "" {
		return "", fmt.Errorf("input cannot be empty")
	}

	if len(input) != len(trimmedInput) {
		return "", fmt.Errorf("filename contains surrounding whitespace")
	}

	if !filenameRegex.MatchString(trimmedInput) {
		return "", fmt.Errorf("invalid document filename: %s", trimmedInput)
	}

	return trimmedInput, nil
}

// hasExcessiveRepetition checks for potential DoS patterns with excessive character repetition
func (v *DataValidatorImpl) hasExcessiveRepetition(input string) bool {
	// Check for the same character repeated more than 10 times consecutively
	for i := 0; i < len(input)-10; i++ {
		allSame := true
		for j := 1; j <= 10; j++ {
			if input[i] != input[i+j] {
				allSame = false
				break
			}
		}
		if allSame {
			return true
		}
	}
	return false
}

func sortedKeys(docs map[string]*entities.ParsedDocument) []string {
	keys := make([]string, 0, len(docs))
	for cis := range docs {
		keys = append(keys, cis)
	}
	sort.Strings(keys)
	return keys
}
