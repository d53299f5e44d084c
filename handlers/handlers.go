// Package handlers provides HTTP request handlers for the document API endpoints.
// It includes handlers for paged document listing, CIS lookup, title search,
// pediatric classification lookup, health checks, and response formatting with
// proper input validation and error handling.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/giygas/infomed-parser/data"
	"github.com/giygas/infomed-parser/docparser/entities"
	"github.com/giygas/infomed-parser/health"
	"github.com/giygas/infomed-parser/logging"
	"github.com/giygas/infomed-parser/pediatric"
	"github.com/giygas/infomed-parser/validation"
	"github.com/go-chi/chi/v5"
)

// Shared validator for all request input
var validator = validation.NewDataValidator()

// DocumentEnvelope bundles everything known about a CIS: both document
// types and the pediatric classification derived from the RCP.
type DocumentEnvelope struct {
	CIS            string                    `json:"cis"`
	Notice         *entities.ParsedDocument  `json:"notice,omitempty"`
	RCP            *entities.ParsedDocument  `json:"rcp,omitempty"`
	Classification *pediatric.Classification `json:"classification,omitempty"`
}

// SearchResult is one title match from the document search
type SearchResult struct {
	CIS   string `json:"cis"`
	Type  string `json:"type"`
	Title string `json:"title"`
}

// RespondWithJSON writes a JSON response with the standard headers
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
	w.WriteHeader(code)
	w.Write(data)
}

// formatUptimeHuman formats duration into a human-readable string
func formatUptimeHuman(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	var parts []string

	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 || hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	parts = append(parts, fmt.Sprintf("%ds", seconds))

	return strings.Join(parts, " ")
}

// buildEnvelope assembles the combined view for one CIS
func buildEnvelope(dataContainer *data.DataContainer, cis string) DocumentEnvelope {
	return DocumentEnvelope{
		CIS:            cis,
		Notice:         dataContainer.GetNotices()[cis],
		RCP:            dataContainer.GetRCPs()[cis],
		Classification: dataContainer.GetClassifications()[cis],
	}
}

// ServePagedDocuments returns paginated document envelopes ordered by CIS
func ServePagedDocuments(dataContainer *data.DataContainer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pageNumber := chi.URLParam(r, "pageNumber")
		page, err := strconv.Atoi(pageNumber)
		if err != nil || page < 1 {
			logging.Warn("Unusual user input", "pageNumber", pageNumber)
			http.Error(w, "Invalid page number", http.StatusBadRequest)
			return
		}

		cisList := dataContainer.GetCISList()
		pageSize := 10
		start := (page - 1) * pageSize
		end := start + pageSize

		if start >= len(cisList) {
			http.Error(w, "Page not found", http.StatusNotFound)
			return
		}

		if end > len(cisList) {
			end = len(cisList)
		}

		envelopes := make([]DocumentEnvelope, 0, end-start)
		for _, cis := range cisList[start:end] {
			envelopes = append(envelopes, buildEnvelope(dataContainer, cis))
		}

		totalItems := len(cisList)
		maxPage := (totalItems + pageSize - 1) / pageSize

		response := map[string]interface{}{
			"data":       envelopes,
			"page":       page,
			"pageSize":   pageSize,
			"totalItems": totalItems,
			"maxPage":    maxPage,
		}

		RespondWithJSON(w, http.StatusOK, response)
	}
}

// FindDocumentByCIS returns the combined envelope for one CIS
func FindDocumentByCIS(dataContainer *data.DataContainer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cis, err := validator.ValidateCIS(chi.URLParam(r, "cis"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		envelope := buildEnvelope(dataContainer, cis)
		if envelope.Notice == nil && envelope.RCP == nil {
			http.Error(w, "Document not found", http.StatusNotFound)
			return
		}

		RespondWithJSON(w, http.StatusOK, envelope)
	}
}

// FindNoticeByCIS returns the parsed notice for one CIS
func FindNoticeByCIS(dataContainer *data.DataContainer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cis, err := validator.ValidateCIS(chi.URLParam(r, "cis"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		notice, exists := dataContainer.GetNotices()[cis]
		if !exists {
			http.Error(w, "Notice not found", http.StatusNotFound)
			return
		}

		RespondWithJSON(w, http.StatusOK, notice)
	}
}

// FindRCPByCIS returns the parsed RCP for one CIS
func FindRCPByCIS(dataContainer *data.DataContainer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cis, err := validator.ValidateCIS(chi.URLParam(r, "cis"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		rcp, exists := dataContainer.GetRCPs()[cis]
		if !exists {
			http.Error(w, "RCP not found", http.StatusNotFound)
			return
		}

		RespondWithJSON(w, http.StatusOK, rcp)
	}
}

// SearchDocuments searches document titles for a case-insensitive substring
func SearchDocuments(dataContainer *data.DataContainer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := chi.URLParam(r, "query")

		if err := validator.ValidateInput(raw); err != nil {
			logging.Warn("Unusual user input", "query", raw)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		query := strings.ToLower(raw)

		var results []SearchResult
		results = append(results, searchTitles(dataContainer.GetNotices(), "notice", query)...)
		results = append(results, searchTitles(dataContainer.GetRCPs(), "rcp", query)...)

		if len(results) == 0 {
			http.Error(w, "No documents found", http.StatusNotFound)
			return
		}

		// Map iteration order is random
		sort.Slice(results, func(i, j int) bool {
			if results[i].CIS != results[j].CIS {
				return results[i].CIS < results[j].CIS
			}
			return results[i].Type < results[j].Type
		})

		RespondWithJSON(w, http.StatusOK, results)
	}
}

// searchTitles scans top-level title blocks for the query, one hit per document
func searchTitles(docs map[string]*entities.ParsedDocument, docType string, query string) []SearchResult {
	var results []SearchResult
	for cis, doc := range docs {
		for _, node := range doc.Content {
			if node.Kind != entities.KindTitle {
				continue
			}
			if strings.Contains(strings.ToLower(node.Content), query) {
				results = append(results, SearchResult{CIS: cis, Type: docType, Title: node.Content})
				break
			}
		}
	}
	return results
}

// ServeClassifications returns all pediatric classifications keyed by CIS
func ServeClassifications(dataContainer *data.DataContainer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		classifications := dataContainer.GetClassifications()
		RespondWithJSON(w, http.StatusOK, classifications)
	}
}

// FindClassificationByCIS returns the pediatric classification for one CIS
func FindClassificationByCIS(dataContainer *data.DataContainer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cis, err := validator.ValidateCIS(chi.URLParam(r, "cis"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		classification, exists := dataContainer.GetClassifications()[cis]
		if !exists {
			http.Error(w, "Classification not found", http.StatusNotFound)
			return
		}

		RespondWithJSON(w, http.StatusOK, classification)
	}
}

// HealthResponse defines the structure for consistent JSON ordering
type HealthResponse struct {
	Status        string                 `json:"status"`
	Uptime        string                 `json:"uptime"`
	UptimeSeconds float64                `json:"uptime_seconds"`
	Data          map[string]interface{} `json:"data"`
	System        map[string]interface{} `json:"system"`
}

// HealthCheck returns server health information.
// Status and data thresholds come from the health checker.
func HealthCheck(dataContainer *data.DataContainer) http.HandlerFunc {
	checker := health.NewHealthChecker(dataContainer)

	return func(w http.ResponseWriter, r *http.Request) {
		// Get memory statistics
		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		var uptime time.Duration
		if start := dataContainer.GetServerStartTime(); !start.IsZero() {
			uptime = time.Since(start)
		}

		status, healthData, httpStatus := checker.HealthCheck()
		healthData["next_update"] = checker.CalculateNextUpdate().Format(time.RFC3339)

		response := HealthResponse{
			Status:        status,
			Uptime:        formatUptimeHuman(uptime),
			UptimeSeconds: uptime.Seconds(),
			Data:          healthData,
			System: map[string]interface{}{
				"goroutines": runtime.NumGoroutine(),
				"memory": map[string]interface{}{
					"alloc_mb":       int(m.Alloc / 1024 / 1024),
					"total_alloc_mb": int(m.TotalAlloc / 1024 / 1024),
					"sys_mb":         int(m.Sys / 1024 / 1024),
					"num_gc":         m.NumGC,
				},
			},
		}

		RespondWithJSON(w, httpStatus, response)
	}
}
