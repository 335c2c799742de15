package service

import (
	"database/sql"
	"strconv"

	"github.com/avdmeer/Post-Ledger-Backend/internal/database"
	"github.com/avdmeer/Post-Ledger-Backend/internal/model"
	"github.com/avdmeer/Post-Ledger-Backend/internal/version"
)

// SystemService handles system-related operations
type SystemService struct {
	db             *sql.DB
	peerConfigured bool
}

// NewSystemService creates a new SystemService
func NewSystemService(db *sql.DB, peerConfigured bool) *SystemService {
	return &SystemService{
		db:             db,
		peerConfigured: peerConfigured,
	}
}

// CheckHealth checks the health of the system
func (s *SystemService) CheckHealth() error {
	return database.HealthCheck(s.db)
}

// CheckVersion reports the application and schema versions along with the
// features this deployment exposes.
func (s *SystemService) CheckVersion() (model.VersionInfo, error) {
	schemaVersion, err := database.SchemaVersion(s.db)
	if err != nil {
		return model.VersionInfo{}, err
	}

	return model.VersionInfo{
		AppVersion: version.Version,
		DbVersion:  strconv.FormatInt(schemaVersion, 10),
		Features: map[string]bool{
			"chain_audit": true,
			"peer_import": s.peerConfigured,
		},
	}, nil
}

// CheckSum adds two numbers. A smoke call for clients verifying they can
// reach the backend and round-trip values through it.
func (s *SystemService) CheckSum(num1, num2 uint32) model.ChecksumResult {
	return model.ChecksumResult{Num1: num1, Num2: num2, Sum: num1 + num2}
}
