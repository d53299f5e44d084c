// Package scheduler provides automated corpus update scheduling and health
// monitoring for the document API. It handles cron-based corpus rebuilds
// and coordinates refresh operations with the data container using
// dependency injection.
package scheduler

import (
	"fmt"
	"sort"
	"time"

	"github.com/giygas/infomed-parser/docparser/entities"
	"github.com/giygas/infomed-parser/interfaces"
	"github.com/giygas/infomed-parser/logging"
	"github.com/giygas/infomed-parser/validation"
	"github.com/go-co-op/gocron"
)

// Compile-time check to ensure Scheduler implements Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

// Scheduler handles corpus updates and health monitoring using dependency injection
type Scheduler struct {
	dataStore interfaces.DataStore
	builder   interfaces.CorpusBuilder
	scheduler *gocron.Scheduler
}

// NewScheduler creates a new scheduler instance with injected dependencies
func NewScheduler(dataStore interfaces.DataStore, builder interfaces.CorpusBuilder) *Scheduler {
	return &Scheduler{
		dataStore: dataStore,
		builder:   builder,
		scheduler: gocron.NewScheduler(time.Local),
	}
}

// Start initializes the scheduler with corpus updates and health monitoring
func (s *Scheduler) Start() error {
	// Initial load
	if err := s.updateData(); err != nil {
		logging.Error("Failed to perform initial corpus load", "error", err)
		return fmt.Errorf("initial corpus load failed: %w", err)
	}

	// Schedule updates at 06:00 and 18:00 daily
	_, err := s.scheduler.Every(1).Days().At("06:00;18:00").Do(func() {
		if err := s.updateData(); err != nil {
			logging.Error("Failed to update corpus", "error", err)
		}
	})

	if err != nil {
		logging.Error("Failed to schedule updates", "error", err)
		return fmt.Errorf("failed to schedule updates: %w", err)
	}

	s.scheduler.StartAsync()

	// Start health monitoring
	s.startHealthMonitoring()

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// updateData performs a complete corpus rebuild using injected dependencies
func (s *Scheduler) updateData() error {
	// Prevent concurrent updates
	if !s.dataStore.BeginUpdate() {
		logging.Info("Update already in progress, skipping...")
		return nil
	}
	defer s.dataStore.EndUpdate()

	logging.Info(fmt.Sprintf("Starting corpus update at: %s", time.Now().Format(time.RFC3339)))
	start := time.Now()

	// Build into temporary maps (not affecting current data)
	notices, rcps, classifications, err := s.builder.BuildCorpus()
	if err != nil {
		logging.Error("Failed to build corpus", "error", err)
		return fmt.Errorf("failed to build corpus: %w", err)
	}

	validator := validation.NewDataValidator()

	// A corpus that fails integrity validation never replaces served data
	if err := validator.ValidateDataIntegrity(notices, rcps, classifications); err != nil {
		logging.Error("Corpus failed integrity validation, keeping previous data", "error", err)
		return fmt.Errorf("corpus integrity validation failed: %w", err)
	}

	report := validator.ReportDataQuality(notices, rcps, classifications)

	if report.EmptyDocuments > 0 {
		logging.Warn("Empty documents detected",
			"count", report.EmptyDocuments,
			"cis_sample", report.EmptyDocumentsCIS,
		)
	}

	if report.NoticesWithoutRCP > 0 {
		logging.Warn("Notices without a matching RCP", "count", report.NoticesWithoutRCP)
	}

	if report.RCPsWithoutNotice > 0 {
		logging.Warn("RCPs without a matching notice", "count", report.RCPsWithoutNotice)
	}

	if report.MissingClassifications > 0 {
		logging.Warn("RCPs without classifications",
			"count", report.MissingClassifications,
			"cis_sample", report.MissingClassificationsCIS,
		)
	}

	// Atomic update using injected data store
	s.dataStore.UpdateData(notices, rcps, classifications, buildCISList(notices, rcps))

	elapsed := time.Since(start)
	logging.Info("Corpus update completed",
		"duration", elapsed.String(),
		"notices", len(notices),
		"rcps", len(rcps),
		"classifications", len(classifications),
		"condition_a", report.ConditionA,
		"condition_b", report.ConditionB,
		"condition_c", report.ConditionC,
	)

	return nil
}

// buildCISList returns the sorted union of notice and RCP keys.
// Paged endpoints depend on this order being stable.
func buildCISList(notices map[string]*entities.ParsedDocument, rcps map[string]*entities.ParsedDocument) []string {
	seen := make(map[string]bool, len(notices))
	list := make([]string, 0, len(notices))

	for cis := range notices {
		seen[cis] = true
		list = append(list, cis)
	}
	for cis := range rcps {
		if !seen[cis] {
			list = append(list, cis)
		}
	}

	sort.Strings(list)
	return list
}

// startHealthMonitoring monitors the freshness of the corpus
func (s *Scheduler) startHealthMonitoring() {
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			lastUpdate := s.dataStore.GetLastUpdated()
			if time.Since(lastUpdate) > 25*time.Hour {
				logging.Warn("Corpus hasn't been updated in over 25 hours")
			}
		}
	}()
}
