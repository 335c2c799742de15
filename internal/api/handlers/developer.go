package handlers

import (
	"net/http"

	"github.com/avdmeer/Post-Ledger-Backend/internal/api/request"
	"github.com/avdmeer/Post-Ledger-Backend/internal/api/response"
	"github.com/avdmeer/Post-Ledger-Backend/internal/apperrors"
	"github.com/avdmeer/Post-Ledger-Backend/internal/service"
)

// DeveloperHandler handles HTTP requests for Developer endpoints.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the DeveloperService.
type DeveloperHandler struct {
	developerService *service.DeveloperService
}

// NewDeveloperHandler creates a new DeveloperHandler with the provided service dependency.
func NewDeveloperHandler(developerService *service.DeveloperService) *DeveloperHandler {
	return &DeveloperHandler{
		developerService: developerService,
	}
}

// GetLogs handles GET requests to query the system log.
//
// Endpoint: GET /api/developer/logs
// Query: level, category, startDate, endDate, source, message, sortDir, cursor, perPage
// Response: 200 OK with LogResponse
// Error: 400 Bad Request if a filter parameter is invalid
// Error: 500 Internal Server Error if the query fails
func (h *DeveloperHandler) GetLogs(w http.ResponseWriter, r *http.Request) {
	filters, err := request.ParseLogFilters(
		r.URL.Query().Get("level"),
		r.URL.Query().Get("category"),
		r.URL.Query().Get("startDate"),
		r.URL.Query().Get("endDate"),
		r.URL.Query().Get("source"),
		r.URL.Query().Get("message"),
		r.URL.Query().Get("sortDir"),
		r.URL.Query().Get("cursor"),
		r.URL.Query().Get("perPage"),
	)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "Invalid filter parameters", err.Error())
		return
	}

	logs, err := h.developerService.GetLogs(r.Context(), filters)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveLogs.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, logs)
}

// ClearLogsResponse reports how many log entries a purge removed.
type ClearLogsResponse struct {
	Deleted int64 `json:"deleted"`
}

// ClearLogs handles DELETE requests to purge the system log.
//
// Endpoint: DELETE /api/developer/logs
// Response: 200 OK with ClearLogsResponse
// Error: 500 Internal Server Error if the purge fails
func (h *DeveloperHandler) ClearLogs(w http.ResponseWriter, _ *http.Request) {
	deleted, err := h.developerService.ClearLogs()
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToDeleteLogs.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, ClearLogsResponse{Deleted: deleted})
}
