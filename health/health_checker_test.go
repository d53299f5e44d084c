package health

import (
	"net/http"
	"slices"
	"testing"
	"time"

	"github.com/giygas/infomed-parser/docparser/entities"
	"github.com/giygas/infomed-parser/pediatric"
)

// MockHealthDataStore for testing
type MockHealthDataStore struct {
	notices         map[string]*entities.ParsedDocument
	rcps            map[string]*entities.ParsedDocument
	classifications map[string]*pediatric.Classification
	cisList         []string
	lastUpdated     time.Time
	isUpdating      bool
}

func (m *MockHealthDataStore) GetNotices() map[string]*entities.ParsedDocument {
	return m.notices
}

func (m *MockHealthDataStore) GetRCPs() map[string]*entities.ParsedDocument {
	return m.rcps
}

func (m *MockHealthDataStore) GetClassifications() map[string]*pediatric.Classification {
	return m.classifications
}

func (m *MockHealthDataStore) GetCISList() []string {
	return m.cisList
}

func (m *MockHealthDataStore) GetLastUpdated() time.Time {
	return m.lastUpdated
}

func (m *MockHealthDataStore) IsUpdating() bool {
	return m.isUpdating
}

func (m *MockHealthDataStore) GetServerStartTime() time.Time {
	return time.Time{} // Return zero time for mock
}

func (m *MockHealthDataStore) UpdateData(notices map[string]*entities.ParsedDocument, rcps map[string]*entities.ParsedDocument,
	classifications map[string]*pediatric.Classification, cisList []string) {
	// Not used in health tests
}

func (m *MockHealthDataStore) BeginUpdate() bool {
	return true
}

func (m *MockHealthDataStore) EndUpdate() {
	// Not used in health tests
}

func healthDoc(filename, cis string) *entities.ParsedDocument {
	return &entities.ParsedDocument{Source: entities.Source{Filename: filename, CIS: cis}}
}

func populatedStore(lastUpdated time.Time, isUpdating bool) *MockHealthDataStore {
	return &MockHealthDataStore{
		notices: map[string]*entities.ParsedDocument{
			"61266250": healthDoc("N61266250.htm", "61266250"),
			"67829209": healthDoc("N67829209.htm", "67829209"),
		},
		rcps: map[string]*entities.ParsedDocument{
			"61266250": healthDoc("R61266250.htm", "61266250"),
		},
		classifications: map[string]*pediatric.Classification{
			"61266250": {CIS: "61266250", ConditionB: true},
		},
		cisList:     []string{"61266250", "67829209"},
		lastUpdated: lastUpdated,
		isUpdating:  isUpdating,
	}
}

func TestNewHealthChecker(t *testing.T) {
	mockDataStore := &MockHealthDataStore{}

	healthChecker := NewHealthChecker(mockDataStore)

	if healthChecker == nil {
		t.Fatal("NewHealthChecker returned nil")
	}

	// Type assertion to verify it's the correct type
	if _, ok := healthChecker.(*HealthCheckerImpl); !ok {
		t.Error("NewHealthChecker should return *HealthCheckerImpl")
	}
}

func TestHealthCheck_Healthy(t *testing.T) {
	// Setup mock with recent data
	mockDataStore := populatedStore(time.Now().Add(-1*time.Hour), false)

	healthChecker := NewHealthChecker(mockDataStore)
	status, data, httpStatus := healthChecker.HealthCheck()

	if status != "healthy" {
		t.Errorf("Expected status 'healthy', got '%s'", status)
	}

	if httpStatus != http.StatusOK {
		t.Errorf("Expected HTTP status 200, got %d", httpStatus)
	}

	if data == nil {
		t.Fatal("Data should not be nil")
	}

	// Check required fields
	if _, ok := data["last_update"]; !ok {
		t.Error("Data should contain 'last_update'")
	}

	if _, ok := data["data_age_hours"]; !ok {
		t.Error("Data should contain 'data_age_hours'")
	}

	if data["notices"] != 2 {
		t.Errorf("Expected 2 notices, got %v", data["notices"])
	}

	if data["rcps"] != 1 {
		t.Errorf("Expected 1 RCP, got %v", data["rcps"])
	}

	if data["classifications"] != 1 {
		t.Errorf("Expected 1 classification, got %v", data["classifications"])
	}

	if data["is_updating"] != false {
		t.Errorf("Expected is_updating false, got %v", data["is_updating"])
	}
}

func TestHealthCheck_Unhealthy_NoData(t *testing.T) {
	// Setup mock with an empty corpus
	mockDataStore := &MockHealthDataStore{
		notices:         map[string]*entities.ParsedDocument{},
		rcps:            map[string]*entities.ParsedDocument{},
		classifications: map[string]*pediatric.Classification{},
		lastUpdated:     time.Now().Add(-1 * time.Hour),
		isUpdating:      false,
	}

	healthChecker := NewHealthChecker(mockDataStore)
	status, data, httpStatus := healthChecker.HealthCheck()

	if status != "unhealthy" {
		t.Errorf("Expected status 'unhealthy', got '%s'", status)
	}

	if httpStatus != http.StatusServiceUnavailable {
		t.Errorf("Expected HTTP status 503, got %d", httpStatus)
	}

	if data == nil {
		t.Error("Data should not be nil")
	}
}

func TestHealthCheck_Unhealthy_MissingRCPs(t *testing.T) {
	// Notices without any RCPs means no classifications can exist
	mockDataStore := &MockHealthDataStore{
		notices: map[string]*entities.ParsedDocument{
			"61266250": healthDoc("N61266250.htm", "61266250"),
		},
		rcps:        map[string]*entities.ParsedDocument{},
		lastUpdated: time.Now().Add(-1 * time.Hour),
	}

	healthChecker := NewHealthChecker(mockDataStore)
	status, _, httpStatus := healthChecker.HealthCheck()

	if status != "unhealthy" {
		t.Errorf("Expected status 'unhealthy', got '%s'", status)
	}

	if httpStatus != http.StatusServiceUnavailable {
		t.Errorf("Expected HTTP status 503, got %d", httpStatus)
	}
}

func TestHealthCheck_Unhealthy_VeryOldData(t *testing.T) {
	// Setup mock with very old data (>48 hours)
	mockDataStore := populatedStore(time.Now().Add(-49*time.Hour), false)

	healthChecker := NewHealthChecker(mockDataStore)
	status, _, httpStatus := healthChecker.HealthCheck()

	if status != "unhealthy" {
		t.Errorf("Expected status 'unhealthy', got '%s'", status)
	}

	if httpStatus != http.StatusServiceUnavailable {
		t.Errorf("Expected HTTP status 503, got %d", httpStatus)
	}
}

func TestHealthCheck_Degraded_OldData(t *testing.T) {
	// Setup mock with old data (>24 hours)
	mockDataStore := populatedStore(time.Now().Add(-25*time.Hour), false)

	healthChecker := NewHealthChecker(mockDataStore)
	status, data, httpStatus := healthChecker.HealthCheck()

	if status != "degraded" {
		t.Errorf("Expected status 'degraded', got '%s'", status)
	}

	if httpStatus != http.StatusServiceUnavailable {
		t.Errorf("Expected HTTP status 503, got %d", httpStatus)
	}

	// Check data age
	dataAge := data["data_age_hours"].(float64)
	if dataAge < 24 {
		t.Errorf("Expected data age > 24 hours, got %f", dataAge)
	}
}

func TestHealthCheck_Updating(t *testing.T) {
	// Recent data stays healthy while an update runs
	mockDataStore := populatedStore(time.Now().Add(-1*time.Hour), true)

	healthChecker := NewHealthChecker(mockDataStore)
	status, data, _ := healthChecker.HealthCheck()

	if status != "healthy" {
		t.Errorf("Expected status 'healthy', got '%s'", status)
	}

	// Check is_updating flag
	if data["is_updating"] != true {
		t.Errorf("Expected is_updating true, got %v", data["is_updating"])
	}
}

func TestHealthCheck_Degraded_StaleWhileUpdating(t *testing.T) {
	// An update running on data already >6 hours old suggests a stuck refresh
	mockDataStore := populatedStore(time.Now().Add(-7*time.Hour), true)

	healthChecker := NewHealthChecker(mockDataStore)
	status, _, httpStatus := healthChecker.HealthCheck()

	if status != "degraded" {
		t.Errorf("Expected status 'degraded', got '%s'", status)
	}

	if httpStatus != http.StatusServiceUnavailable {
		t.Errorf("Expected HTTP status 503, got %d", httpStatus)
	}
}

func TestHealthCheck_ZeroTimeLastUpdate(t *testing.T) {
	mockDataStore := populatedStore(time.Time{}, false)

	healthChecker := NewHealthChecker(mockDataStore)
	status, data, _ := healthChecker.HealthCheck()

	// With zero time, data age is far beyond 48 hours
	if status != "unhealthy" {
		t.Errorf("Expected status 'unhealthy' with zero last update, got '%s'", status)
	}

	// Check data age
	dataAge := data["data_age_hours"].(float64)
	if dataAge < 48 {
		t.Errorf("Expected data age > 48 hours with zero time, got %f", dataAge)
	}
}

func TestCalculateNextUpdate_MatchesCurrentWindow(t *testing.T) {
	mockDataStore := &MockHealthDataStore{}
	healthChecker := NewHealthChecker(mockDataStore)

	now := time.Now()

	// Calculate what the next update should be based on current time
	nextUpdate := healthChecker.CalculateNextUpdate()

	sixAM := time.Date(now.Year(), now.Month(), now.Day(), 6, 0, 0, 0, now.Location())
	sixPM := time.Date(now.Year(), now.Month(), now.Day(), 18, 0, 0, 0, now.Location())

	var expected time.Time
	if now.Before(sixAM) {
		expected = sixAM
	} else if now.Before(sixPM) {
		expected = sixPM
	} else {
		expected = sixAM.AddDate(0, 0, 1)
	}

	if !nextUpdate.Equal(expected) {
		t.Errorf("Expected next update at %v, got %v", expected, nextUpdate)
	}
}

func TestCalculateNextUpdate_AlwaysAScheduledSlot(t *testing.T) {
	mockDataStore := &MockHealthDataStore{}
	healthChecker := NewHealthChecker(mockDataStore)

	// Without time mocking, verify the result is one of the
	// possible slots: 6 AM today, 6 PM today, or 6 AM tomorrow
	nextUpdate := healthChecker.CalculateNextUpdate()

	now := time.Now()
	sixAM := time.Date(now.Year(), now.Month(), now.Day(), 6, 0, 0, 0, now.Location())
	sixPM := time.Date(now.Year(), now.Month(), now.Day(), 18, 0, 0, 0, now.Location())
	tomorrowSixAM := sixAM.AddDate(0, 0, 1)

	validTimes := []time.Time{sixAM, sixPM, tomorrowSixAM}

	valid := slices.ContainsFunc(validTimes, nextUpdate.Equal)

	if !valid {
		t.Errorf("Next update time %v is not valid (expected 6AM today, 6PM today, or 6AM tomorrow)", nextUpdate)
	}
}

func TestCalculateNextUpdate_InFuture(t *testing.T) {
	mockDataStore := &MockHealthDataStore{}
	healthChecker := NewHealthChecker(mockDataStore)

	nextUpdate := healthChecker.CalculateNextUpdate()

	if !nextUpdate.After(time.Now()) {
		t.Errorf("Next update %v should be in the future", nextUpdate)
	}
}

func BenchmarkHealthCheck(b *testing.B) {
	mockDataStore := populatedStore(time.Now().Add(-1*time.Hour), false)
	healthChecker := NewHealthChecker(mockDataStore)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		healthChecker.HealthCheck()
	}
}

func BenchmarkCalculateNextUpdate(b *testing.B) {
	mockDataStore := &MockHealthDataStore{}
	healthChecker := NewHealthChecker(mockDataStore)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		healthChecker.CalculateNextUpdate()
	}
}
