package testutil

import (
	"database/sql"
	"math/rand"
	"testing"

	"github.com/fernet/fernet-go"
	"github.com/google/uuid"

	"github.com/avdmeer/Post-Ledger-Backend/internal/peer"
	"github.com/avdmeer/Post-Ledger-Backend/internal/repository"
	"github.com/avdmeer/Post-Ledger-Backend/internal/service"
	"github.com/avdmeer/Post-Ledger-Backend/internal/timestamp"
)

// TestFernetKeys generates a single throwaway signing key for tests.
func TestFernetKeys(t *testing.T) []*fernet.Key {
	t.Helper()

	key := new(fernet.Key)
	if err := key.Generate(); err != nil {
		t.Fatalf("Failed to generate test fernet key: %v", err)
	}
	return []*fernet.Key{key}
}

func NewTestAgentService(t *testing.T, db *sql.DB) *service.AgentService {
	t.Helper()

	agentRepo := repository.NewAgentRepository(db)
	recordRepo := repository.NewRecordRepository(db)

	return service.NewAgentService(
		agentRepo,
		recordRepo,
		TestFernetKeys(t),
		timestamp.DefaultTimeout,
	)
}

func NewTestChainService(t *testing.T, db *sql.DB) *service.ChainService {
	t.Helper()

	agentRepo := repository.NewAgentRepository(db)
	recordRepo := repository.NewRecordRepository(db)

	return service.NewChainService(
		agentRepo,
		recordRepo,
	)
}

func NewTestPostService(t *testing.T, db *sql.DB) *service.PostService {
	t.Helper()

	postRepo := repository.NewPostRepository(db)
	agentRepo := repository.NewAgentRepository(db)
	recordRepo := repository.NewRecordRepository(db)
	chainService := service.NewChainService(agentRepo, recordRepo)

	return service.NewPostService(
		postRepo,
		agentRepo,
		chainService,
	)
}

func NewTestDeveloperService(t *testing.T, db *sql.DB) *service.DeveloperService {
	t.Helper()

	logRepo := repository.NewLogRepository(db)
	return service.NewDeveloperService(logRepo)
}

func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()

	return service.NewSystemService(db, false)
}

// NewTestPeerService creates a PeerService backed by the given client.
// Pass a MockPeerClient to test imports without a live peer.
func NewTestPeerService(t *testing.T, db *sql.DB, client peer.Client) *service.PeerService {
	t.Helper()

	agentRepo := repository.NewAgentRepository(db)
	recordRepo := repository.NewRecordRepository(db)
	postRepo := repository.NewPostRepository(db)
	developerService := NewTestDeveloperService(t, db)

	return service.NewPeerService(
		client,
		agentRepo,
		recordRepo,
		postRepo,
		developerService,
	)
}

// MakeID generates a UUID string for use in tests.
//
// Example usage:
//
//	id := testutil.MakeID()
//	// Returns: "550e8400-e29b-41d4-a716-446655440000"
func MakeID() string {
	return uuid.New().String()
}

// MakeNickname generates a unique agent nickname for testing.
//
// Example usage:
//
//	nickname := testutil.MakeNickname("alice")
//	// Returns: "alice-1A2B3C"
func MakeNickname(base string) string {
	if base == "" {
		base = "agent"
	}
	return base + "-" + randomAlphanumeric(6)
}

// randomAlphanumeric generates a random alphanumeric string of specified length.
func randomAlphanumeric(length int) string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	for i := range result {
		//nolint:gosec // G404: Using math/rand for test data generation is acceptable
		result[i] = charset[rand.Intn(len(charset))]
	}
	return string(result)
}

// Common test constants

var (
	// ValidTimestamps contains producer timestamps that parse, covering the
	// offset, fraction, leap-second, compact and date-only forms the ledger
	// accepts.
	ValidTimestamps = []string{
		"2024-05-01T10:30:00Z",
		"2024-05-01T10:30:00+02:00",
		"2024-05-01T10:30:00.123456-07:00",
		"2016-12-31T23:59:60Z",
		"2024-05-01 10:30:00Z",
		"20240501T103000Z",
		"2024-05-01",
	}

	// InvalidTimestamps contains producer timestamps that do not parse and
	// stay raw-only on their records.
	InvalidTimestamps = []string{
		"",
		"yesterday",
		"2024-13-01T10:30:00Z",
		"2024-05-01T25:00:00Z",
		"2024-02-30",
	}
)

// RandomValidTimestamp returns a random entry from ValidTimestamps.
func RandomValidTimestamp() string {
	//nolint:gosec // G404: Using math/rand for test data generation is acceptable
	return ValidTimestamps[rand.Intn(len(ValidTimestamps))]
}

// RandomInvalidTimestamp returns a random entry from InvalidTimestamps.
func RandomInvalidTimestamp() string {
	//nolint:gosec // G404: Using math/rand for test data generation is acceptable
	return InvalidTimestamps[rand.Intn(len(InvalidTimestamps))]
}
