package handlers

import (
	"errors"
	"net/http"

	"github.com/avdmeer/Post-Ledger-Backend/internal/api/response"
	"github.com/avdmeer/Post-Ledger-Backend/internal/apperrors"
	"github.com/avdmeer/Post-Ledger-Backend/internal/service"
)

// PeerHandler handles HTTP requests for peer synchronization endpoints.
type PeerHandler struct {
	peerService *service.PeerService
}

// NewPeerHandler creates a new PeerHandler with the provided service dependency.
func NewPeerHandler(peerService *service.PeerService) *PeerHandler {
	return &PeerHandler{
		peerService: peerService,
	}
}

// ImportFromPeer handles POST requests to run an import pass against the
// configured peer right away, outside the scheduled window.
//
// Endpoint: POST /api/peer/import
// Response: 200 OK with PeerImportReport
// Error: 502 Bad Gateway if the peer cannot be reached
// Error: 500 Internal Server Error if the import fails locally
func (h *PeerHandler) ImportFromPeer(w http.ResponseWriter, r *http.Request) {
	report, err := h.peerService.ImportFromPeer(r.Context())
	if err != nil {
		if errors.Is(err, apperrors.ErrFailedToReachPeer) {
			response.RespondError(w, http.StatusBadGateway, apperrors.ErrFailedToReachPeer.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToImportRecord.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, report)
}
