package handlers

import (
	"net/http"
	"strconv"

	"github.com/avdmeer/Post-Ledger-Backend/internal/api/response"
	"github.com/avdmeer/Post-Ledger-Backend/internal/apperrors"
	"github.com/avdmeer/Post-Ledger-Backend/internal/service"
)

// SystemHandler handles system-related HTTP requests
type SystemHandler struct {
	systemService *service.SystemService
	chainService  *service.ChainService
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(systemService *service.SystemService, chainService *service.ChainService) *SystemHandler {
	return &SystemHandler{
		systemService: systemService,
		chainService:  chainService,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Error    string `json:"error,omitempty"`
}

// Health checks the health of the system and database connectivity
func (h *SystemHandler) Health(w http.ResponseWriter, _ *http.Request) {
	if err := h.systemService.CheckHealth(); err != nil {
		resp := HealthResponse{
			Status:   "unhealthy",
			Database: "disconnected",
			Error:    err.Error(),
		}
		response.RespondJSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	resp := HealthResponse{
		Status:   "healthy",
		Database: "connected",
	}
	response.RespondJSON(w, http.StatusOK, resp)
}

// Version handles GET requests to retrieve version information and feature availability.
// Returns the application version, schema version and the features this
// deployment exposes.
//
// Endpoint: GET /api/system/version
// Response: 200 OK with VersionInfo
// Error: 500 Internal Server Error if version check fails
func (h *SystemHandler) Version(w http.ResponseWriter, _ *http.Request) {
	info, err := h.systemService.CheckVersion()
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToGetVersionInfo.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, info)
}

// ChainAudit handles POST requests to run a full chain audit on demand.
// The same audit runs on the scheduler; this endpoint exists so an operator
// can verify the ledger right after an import instead of waiting for the
// next scheduled pass.
//
// Endpoint: POST /api/system/chain-audit
// Response: 200 OK with ChainAuditReport
// Error: 500 Internal Server Error if the audit cannot read the chains
func (h *SystemHandler) ChainAudit(w http.ResponseWriter, _ *http.Request) {
	report, err := h.chainService.AuditChains()
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToAuditChains.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, report)
}

// CheckSum handles GET requests for the connectivity smoke call: it adds
// the two numbers supplied as query parameters and echoes all three values.
//
// Endpoint: GET /api/system/checksum?num1=3&num2=5
// Response: 200 OK with ChecksumResult
// Error: 400 Bad Request if either parameter is missing or not a 32-bit unsigned integer
func (h *SystemHandler) CheckSum(w http.ResponseWriter, r *http.Request) {
	num1, err1 := strconv.ParseUint(r.URL.Query().Get("num1"), 10, 32)
	num2, err2 := strconv.ParseUint(r.URL.Query().Get("num2"), 10, 32)
	if err1 != nil || err2 != nil {
		response.RespondError(w, http.StatusBadRequest, "num1 and num2 must be 32-bit unsigned integers", "")
		return
	}

	response.RespondJSON(w, http.StatusOK, h.systemService.CheckSum(uint32(num1), uint32(num2)))
}
