// Package data provides thread-safe storage for the parsed document corpus.
// It includes the DataContainer struct with atomic operations for zero-downtime
// updates and thread-safe access to notices, RCPs and pediatric classifications.
package data

import (
	"sync/atomic"
	"time"

	"github.com/giygas/infomed-parser/docparser/entities"
	"github.com/giygas/infomed-parser/interfaces"
	"github.com/giygas/infomed-parser/logging"
	"github.com/giygas/infomed-parser/pediatric"
)

// Compile-time check to ensure DataContainer implements DataStore
var _ interfaces.DataStore = (*DataContainer)(nil)

// DataContainer holds all the data with atomic pointers for zero-downtime updates
type DataContainer struct {
	notices         atomic.Value // map[string]*entities.ParsedDocument
	rcps            atomic.Value // map[string]*entities.ParsedDocument
	classifications atomic.Value // map[string]*pediatric.Classification
	cisList         atomic.Value // []string, sorted
	lastUpdated     atomic.Value // time.Time
	updating        atomic.Bool
	serverStartTime atomic.Value // time.Time
}

// NewDataContainer creates a new DataContainer with empty data
func NewDataContainer() *DataContainer {
	dc := &DataContainer{}
	dc.notices.Store(make(map[string]*entities.ParsedDocument))
	dc.rcps.Store(make(map[string]*entities.ParsedDocument))
	dc.classifications.Store(make(map[string]*pediatric.Classification))
	dc.cisList.Store(make([]string, 0))
	dc.lastUpdated.Store(time.Time{})
	dc.serverStartTime.Store(time.Time{}) // Initialize with zero value
	return dc
}

// Thread-safe getters with type check

// GetNotices returns the notices keyed by CIS
func (dc *DataContainer) GetNotices() map[string]*entities.ParsedDocument {
	if v := dc.notices.Load(); v != nil {
		if notices, ok := v.(map[string]*entities.ParsedDocument); ok {
			return notices
		}
	}

	logging.Warn("Notices map is empty or invalid")
	return make(map[string]*entities.ParsedDocument)
}

// GetRCPs returns the RCPs keyed by CIS
func (dc *DataContainer) GetRCPs() map[string]*entities.ParsedDocument {
	if v := dc.rcps.Load(); v != nil {
		if rcps, ok := v.(map[string]*entities.ParsedDocument); ok {
			return rcps
		}
	}

	logging.Warn("RCPs map is empty or invalid")
	return make(map[string]*entities.ParsedDocument)
}

// GetClassifications returns the pediatric classifications keyed by CIS
func (dc *DataContainer) GetClassifications() map[string]*pediatric.Classification {
	if v := dc.classifications.Load(); v != nil {
		if classifications, ok := v.(map[string]*pediatric.Classification); ok {
			return classifications
		}
	}

	logging.Warn("Classifications map is empty or invalid")
	return make(map[string]*pediatric.Classification)
}

// GetCISList returns the sorted list of known CIS codes for paging
func (dc *DataContainer) GetCISList() []string {
	if v := dc.cisList.Load(); v != nil {
		if cisList, ok := v.([]string); ok {
			return cisList
		}
	}

	logging.Warn("CIS list is empty or invalid")
	return []string{}
}

// GetLastUpdated returns the timestamp of the last data update
func (dc *DataContainer) GetLastUpdated() time.Time {
	if v := dc.lastUpdated.Load(); v != nil {
		if lastUpdated, ok := v.(time.Time); ok {
			return lastUpdated
		}
	}

	logging.Warn("Could not get the last updated value")
	return time.Time{}
}

// IsUpdating returns true if a data update is currently in progress
func (dc *DataContainer) IsUpdating() bool {
	return dc.updating.Load()
}

// SetServerStartTime sets the server start time
func (dc *DataContainer) SetServerStartTime(startTime time.Time) {
	dc.serverStartTime.Store(startTime)
}

// GetServerStartTime returns the server start time
func (dc *DataContainer) GetServerStartTime() time.Time {
	if v := dc.serverStartTime.Load(); v != nil {
		if startTime, ok := v.(time.Time); ok {
			return startTime
		}
	}

	logging.Warn("Could not get the server start time value")
	return time.Time{}
}

// UpdateData atomically updates all data in the container
func (dc *DataContainer) UpdateData(notices map[string]*entities.ParsedDocument, rcps map[string]*entities.ParsedDocument,
	classifications map[string]*pediatric.Classification, cisList []string) {

	// Atomic swap (zero downtime replacement)
	dc.notices.Store(notices)
	dc.rcps.Store(rcps)
	dc.classifications.Store(classifications)
	dc.cisList.Store(cisList)
	dc.lastUpdated.Store(time.Now())
}

// BeginUpdate marks the start of a data update operation
// Returns true if update can proceed, false if another update is in progress
func (dc *DataContainer) BeginUpdate() bool {
	return dc.updating.CompareAndSwap(false, true)
}

// EndUpdate marks the end of a data update operation
func (dc *DataContainer) EndUpdate() {
	dc.updating.Store(false)
}
