package service_test

import (
	"errors"
	"testing"

	"github.com/avdmeer/Post-Ledger-Backend/internal/apperrors"
	"github.com/avdmeer/Post-Ledger-Backend/internal/model"
	"github.com/avdmeer/Post-Ledger-Backend/internal/testutil"
)

// TestAgentService_RegisterAgent tests agent registration.
//
// WHY: Registration does three things at once: it claims the nickname,
// opens the chain with a genesis record and mints the only copy of the
// agent's token. If any of the three goes missing the agent is unusable.
func TestAgentService_RegisterAgent(t *testing.T) {
	t.Run("registers an agent and opens its chain", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestAgentService(t, db)

		// Execute
		registration, err := svc.RegisterAgent("alice")

		// Assert
		if err != nil {
			t.Fatalf("RegisterAgent() returned unexpected error: %v", err)
		}

		if registration.Agent.ID == "" {
			t.Error("Expected agent ID to be assigned")
		}
		if registration.Agent.Nickname != "alice" {
			t.Errorf("Expected nickname 'alice', got '%s'", registration.Agent.Nickname)
		}
		if registration.Token == "" {
			t.Error("Expected a token to be minted")
		}

		// The chain opens with a genesis record
		chain, err := testutil.NewTestChainService(t, db).GetChain(registration.Agent.ID)
		if err != nil {
			t.Fatalf("GetChain() returned unexpected error: %v", err)
		}

		if len(chain) != 1 {
			t.Fatalf("Expected 1 record, got %d", len(chain))
		}

		genesis := chain[0]
		if genesis.Type != model.RecordTypeGenesis {
			t.Errorf("Expected a genesis record, got type '%s'", genesis.Type)
		}
		if genesis.Seq != 1 {
			t.Errorf("Expected sequence 1, got %d", genesis.Seq)
		}
		if genesis.PrevID != nil {
			t.Error("Expected no previous-record link on the genesis record")
		}
		if genesis.EntryAddress != model.NewAddress([]byte("agent:"+registration.Agent.ID)) {
			t.Errorf("Expected identity-derived entry address, got %s", genesis.EntryAddress)
		}

		// Server stamps always canonicalize
		if genesis.Canonical == nil || *genesis.Canonical == "" {
			t.Error("Expected the genesis timestamp to canonicalize")
		}
	})

	t.Run("returns ErrNicknameTaken for a duplicate nickname", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestAgentService(t, db)

		_, err := svc.RegisterAgent("alice")
		if err != nil {
			t.Fatalf("First RegisterAgent() returned unexpected error: %v", err)
		}

		// Execute
		_, err = svc.RegisterAgent("alice")

		// Assert
		if !errors.Is(err, apperrors.ErrNicknameTaken) {
			t.Errorf("Expected ErrNicknameTaken, got %v", err)
		}
	})

	t.Run("handles closed database connection", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestAgentService(t, db)

		// Close database to force error
		db.Close()

		// Execute
		_, err := svc.RegisterAgent("alice")

		// Assert
		if err == nil {
			t.Error("Expected error when database is closed, got nil")
		}
	})
}

func TestAgentService_Authenticate(t *testing.T) {
	t.Run("resolves a freshly minted token to its agent", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestAgentService(t, db)

		registration, err := svc.RegisterAgent("alice")
		if err != nil {
			t.Fatalf("RegisterAgent() returned unexpected error: %v", err)
		}

		// Execute
		agent, err := svc.Authenticate(registration.Token)

		// Assert
		if err != nil {
			t.Fatalf("Authenticate() returned unexpected error: %v", err)
		}

		if agent.ID != registration.Agent.ID {
			t.Errorf("Expected agent %s, got %s", registration.Agent.ID, agent.ID)
		}
	})

	t.Run("rejects a forged token", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestAgentService(t, db)

		// Execute
		_, err := svc.Authenticate("gAAAAABforged-token-material")

		// Assert
		if !errors.Is(err, apperrors.ErrTokenInvalid) {
			t.Errorf("Expected ErrTokenInvalid, got %v", err)
		}
	})

	t.Run("rejects tokens minted under different keys", func(t *testing.T) {
		// Setup: two deployments with distinct signing keys
		db := testutil.SetupTestDB(t)
		minting := testutil.NewTestAgentService(t, db)
		verifying := testutil.NewTestAgentService(t, db)

		registration, err := minting.RegisterAgent("alice")
		if err != nil {
			t.Fatalf("RegisterAgent() returned unexpected error: %v", err)
		}

		// Execute
		_, err = verifying.Authenticate(registration.Token)

		// Assert
		if !errors.Is(err, apperrors.ErrTokenInvalid) {
			t.Errorf("Expected ErrTokenInvalid for a foreign token, got %v", err)
		}
	})
}
