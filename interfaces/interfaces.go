// Package interfaces defines the core abstractions of the document
// pipeline to improve testability and separation of concerns.
package interfaces

import (
	"time"

	"github.com/giygas/infomed-parser/docparser/entities"
	"github.com/giygas/infomed-parser/pediatric"
)

// DataQualityReport summarises corpus quality issues found after an
// update cycle.
type DataQualityReport struct {
	EmptyDocuments            int      // parsed documents with no content blocks
	EmptyDocumentsCIS         []string // first 10 CIS with empty documents
	NoticesWithoutRCP         int      // CIS with a notice but no RCP
	RCPsWithoutNotice         int      // CIS with an RCP but no notice
	MissingClassifications    int      // RCPs that produced no classification
	MissingClassificationsCIS []string // first 10 CIS missing a classification
	ConditionA                int      // classifications with condition A
	ConditionB                int      // classifications with condition B
	ConditionC                int      // classifications with condition C
}

// DataStore defines the contract for corpus storage. It provides
// thread-safe access to parsed documents and classifications with
// atomic swaps for zero-downtime updates.
type DataStore interface {
	// Data retrieval methods
	GetNotices() map[string]*entities.ParsedDocument
	GetRCPs() map[string]*entities.ParsedDocument
	GetClassifications() map[string]*pediatric.Classification
	GetCISList() []string
	GetLastUpdated() time.Time
	IsUpdating() bool
	GetServerStartTime() time.Time

	// Data update methods
	UpdateData(notices map[string]*entities.ParsedDocument, rcps map[string]*entities.ParsedDocument,
		classifications map[string]*pediatric.Classification, cisList []string)
	BeginUpdate() bool
	EndUpdate()
}

// CorpusBuilder defines the contract for building the in-memory corpus
// from the configured document source and registry.
type CorpusBuilder interface {
	// BuildCorpus parses the document corpus and classifies the RCPs.
	BuildCorpus() (notices map[string]*entities.ParsedDocument, rcps map[string]*entities.ParsedDocument,
		classifications map[string]*pediatric.Classification, err error)
}

// Scheduler defines the contract for the periodic corpus refresh.
type Scheduler interface {
	Start() error
	Stop()
}

// HealthChecker defines the contract for health check functionality.
type HealthChecker interface {
	// HealthCheck returns the current health status, its details, and
	// the HTTP status code to report it with.
	HealthCheck() (status string, data map[string]any, httpStatus int)

	// CalculateNextUpdate returns the next scheduled update time
	CalculateNextUpdate() time.Time
}

// DataValidator defines the contract for corpus validation.
type DataValidator interface {
	// ValidateDocument checks a parsed document's identity fields
	ValidateDocument(doc *entities.ParsedDocument) error

	// ValidateDataIntegrity performs corpus-wide validation
	ValidateDataIntegrity(notices map[string]*entities.ParsedDocument, rcps map[string]*entities.ParsedDocument,
		classifications map[string]*pediatric.Classification) error

	// ReportDataQuality generates a report of all quality issues found
	ReportDataQuality(notices map[string]*entities.ParsedDocument, rcps map[string]*entities.ParsedDocument,
		classifications map[string]*pediatric.Classification) *DataQualityReport

	// ValidateInput validates user input strings
	ValidateInput(input string) error

	// ValidateCIS validates a CIS code, preserving leading zeros
	ValidateCIS(input string) (string, error)

	// ValidateFilename validates a BDPM document filename
	ValidateFilename(input string) (string, error)
}
