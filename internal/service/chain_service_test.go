package service_test

import (
	"errors"
	"testing"

	"github.com/avdmeer/Post-Ledger-Backend/internal/apperrors"
	"github.com/avdmeer/Post-Ledger-Backend/internal/model"
	"github.com/avdmeer/Post-Ledger-Backend/internal/testutil"
	"github.com/avdmeer/Post-Ledger-Backend/internal/timestamp"
)

func TestChainService_CommitRecord(t *testing.T) {
	t.Run("appends records with increasing sequence and linkage", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestChainService(t, db)

		agent, genesis := testutil.CreateAgentWithChain(t, db, "alice")
		entry := testutil.CreatePost(t, db, "first post")

		// Execute
		record, err := svc.CommitRecord(agent.ID, model.RecordTypePost, entry.Address, nil, timestamp.New("2024-05-01T10:30:00Z"))

		// Assert
		if err != nil {
			t.Fatalf("CommitRecord() returned unexpected error: %v", err)
		}

		if record.Seq != 2 {
			t.Errorf("Expected sequence 2, got %d", record.Seq)
		}
		if record.PrevID == nil || *record.PrevID != genesis.ID {
			t.Error("Expected the record to link back to the genesis record")
		}
		if record.Canonical == nil || *record.Canonical != "2024-05-01T10:30:00+00:00" {
			t.Errorf("Expected canonical '2024-05-01T10:30:00+00:00', got %v", record.Canonical)
		}

		// A second commit extends the chain further
		second := testutil.CreatePost(t, db, "second post")
		next, err := svc.CommitRecord(agent.ID, model.RecordTypePost, second.Address, nil, timestamp.New("2024-05-01T11:00:00Z"))
		if err != nil {
			t.Fatalf("CommitRecord() returned unexpected error: %v", err)
		}

		if next.Seq != 3 {
			t.Errorf("Expected sequence 3, got %d", next.Seq)
		}
		if next.PrevID == nil || *next.PrevID != record.ID {
			t.Error("Expected the record to link back to the previous commit")
		}
	})

	t.Run("commits an unparsable timestamp without a canonical form", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestChainService(t, db)

		agent, _ := testutil.CreateAgentWithChain(t, db, "alice")
		entry := testutil.CreatePost(t, db, "undatable post")

		// Execute
		record, err := svc.CommitRecord(agent.ID, model.RecordTypePost, entry.Address, nil, timestamp.New("five minutes ago"))

		// Assert: committed, raw kept, no canonical form invented
		if err != nil {
			t.Fatalf("CommitRecord() returned unexpected error: %v", err)
		}

		if record.Timestamp.Raw() != "five minutes ago" {
			t.Errorf("Expected raw timestamp preserved, got '%s'", record.Timestamp.Raw())
		}
		if record.Canonical != nil {
			t.Errorf("Expected no canonical form, got %q", *record.Canonical)
		}
	})

	t.Run("fails for an agent whose chain has no genesis record", func(t *testing.T) {
		// Setup: an agent row without any records
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestChainService(t, db)

		agent := testutil.CreateAgent(t, db, "chainless")
		entry := testutil.CreatePost(t, db, "orphan post")

		// Execute
		_, err := svc.CommitRecord(agent.ID, model.RecordTypePost, entry.Address, nil, timestamp.New("2024-05-01T10:30:00Z"))

		// Assert
		if !errors.Is(err, apperrors.ErrDataInconsistency) {
			t.Errorf("Expected ErrDataInconsistency, got %v", err)
		}
	})
}

// TestChainService_AuditChains tests the stored-chain audit.
//
// WHY: The audit is the only process that looks at every record after
// commit. It must find linkage damage and timestamp problems without ever
// repairing them: raw timestamps are kept verbatim so a later, more
// permissive reading stays possible.
func TestChainService_AuditChains(t *testing.T) {
	t.Run("reports a clean ledger as clean", func(t *testing.T) {
		// Setup: two agents, each with a genesis record and one post
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestChainService(t, db)

		alice, aliceGenesis := testutil.CreateAgentWithChain(t, db, "alice")
		testutil.CommitPost(t, db, alice.ID, "alice's post", 2, aliceGenesis.ID)
		bob, bobGenesis := testutil.CreateAgentWithChain(t, db, "bob")
		testutil.CommitPost(t, db, bob.ID, "bob's post", 2, bobGenesis.ID)

		// Execute
		report, err := svc.AuditChains()

		// Assert
		if err != nil {
			t.Fatalf("AuditChains() returned unexpected error: %v", err)
		}

		if report.AgentsChecked != 2 {
			t.Errorf("Expected 2 agents checked, got %d", report.AgentsChecked)
		}
		if report.RecordsChecked != 4 {
			t.Errorf("Expected 4 records checked, got %d", report.RecordsChecked)
		}
		if report.Issues() != 0 {
			t.Errorf("Expected no issues, got %d: %+v", report.Issues(), report)
		}
	})

	t.Run("reports unparsable timestamps without repairing them", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestChainService(t, db)

		agent, genesis := testutil.CreateAgentWithChain(t, db, "alice")
		post := testutil.NewPost().WithContent("undated").WithDateCreated("not a timestamp").Build(t, db)
		bad := testutil.NewRecord(agent.ID).
			AsPost(post.Address).
			WithTimestamp("not a timestamp").
			WithSeq(2).WithPrev(genesis.ID).
			Build(t, db)

		// Execute
		report, err := svc.AuditChains()

		// Assert
		if err != nil {
			t.Fatalf("AuditChains() returned unexpected error: %v", err)
		}

		if len(report.InvalidTimestamps) != 1 {
			t.Fatalf("Expected 1 invalid timestamp, got %d", len(report.InvalidTimestamps))
		}
		if report.InvalidTimestamps[0].RecordID != bad.ID {
			t.Errorf("Expected record %s flagged, got %s", bad.ID, report.InvalidTimestamps[0].RecordID)
		}
		if len(report.CanonicalDrift) != 0 {
			t.Errorf("Expected no drift for an honest unparsable record, got %d", len(report.CanonicalDrift))
		}
		if len(report.BrokenLinks) != 0 {
			t.Errorf("Expected no broken links, got %d", len(report.BrokenLinks))
		}

		// The raw text survives the audit untouched
		chain, err := svc.GetChain(agent.ID)
		if err != nil {
			t.Fatalf("GetChain() returned unexpected error: %v", err)
		}
		if chain[1].Timestamp.Raw() != "not a timestamp" {
			t.Errorf("Expected raw timestamp preserved, got '%s'", chain[1].Timestamp.Raw())
		}
	})

	t.Run("reports canonical drift", func(t *testing.T) {
		// Setup: the stored canonical form uses "Z", the canonical rendering
		// never does, so the audit must flag it
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestChainService(t, db)

		agent, genesis := testutil.CreateAgentWithChain(t, db, "alice")
		post := testutil.CreatePost(t, db, "drifted post")
		stale := "2024-05-01T10:30:00Z"
		drifted := testutil.NewRecord(agent.ID).
			AsPost(post.Address).
			WithTimestamp("2024-05-01T10:30:00Z").
			WithCanonical(&stale).
			WithSeq(2).WithPrev(genesis.ID).
			Build(t, db)

		// Execute
		report, err := svc.AuditChains()

		// Assert
		if err != nil {
			t.Fatalf("AuditChains() returned unexpected error: %v", err)
		}

		if len(report.CanonicalDrift) != 1 {
			t.Fatalf("Expected 1 drift issue, got %d", len(report.CanonicalDrift))
		}
		if report.CanonicalDrift[0].RecordID != drifted.ID {
			t.Errorf("Expected record %s flagged, got %s", drifted.ID, report.CanonicalDrift[0].RecordID)
		}
	})

	t.Run("reports a missing canonical form", func(t *testing.T) {
		// Setup: a parsable timestamp stored without its canonical form
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestChainService(t, db)

		agent, genesis := testutil.CreateAgentWithChain(t, db, "alice")
		post := testutil.CreatePost(t, db, "uncanonicalized post")
		testutil.NewRecord(agent.ID).
			AsPost(post.Address).
			WithTimestamp("2024-05-01T10:30:00Z").
			WithCanonical(nil).
			WithSeq(2).WithPrev(genesis.ID).
			Build(t, db)

		// Execute
		report, err := svc.AuditChains()

		// Assert
		if err != nil {
			t.Fatalf("AuditChains() returned unexpected error: %v", err)
		}

		if len(report.CanonicalDrift) != 1 {
			t.Fatalf("Expected 1 drift issue, got %d", len(report.CanonicalDrift))
		}
	})

	t.Run("reports sequence gaps", func(t *testing.T) {
		// Setup: sequence 3 directly after the genesis record
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestChainService(t, db)

		agent, genesis := testutil.CreateAgentWithChain(t, db, "alice")
		post := testutil.CreatePost(t, db, "gapped post")
		gapped := testutil.NewRecord(agent.ID).
			AsPost(post.Address).
			WithTimestamp("2024-05-01T10:30:00Z").
			WithSeq(3).WithPrev(genesis.ID).
			Build(t, db)

		// Execute
		report, err := svc.AuditChains()

		// Assert
		if err != nil {
			t.Fatalf("AuditChains() returned unexpected error: %v", err)
		}

		if len(report.BrokenLinks) != 1 {
			t.Fatalf("Expected 1 broken link, got %d: %+v", len(report.BrokenLinks), report.BrokenLinks)
		}
		if report.BrokenLinks[0].RecordID != gapped.ID {
			t.Errorf("Expected record %s flagged, got %s", gapped.ID, report.BrokenLinks[0].RecordID)
		}
	})

	t.Run("reports a previous-record link into another chain", func(t *testing.T) {
		// Setup: bob's second record claims alice's genesis as its parent
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestChainService(t, db)

		_, aliceGenesis := testutil.CreateAgentWithChain(t, db, "alice")
		bob, _ := testutil.CreateAgentWithChain(t, db, "bob")
		post := testutil.CreatePost(t, db, "cross-linked post")
		crossed := testutil.NewRecord(bob.ID).
			AsPost(post.Address).
			WithTimestamp("2024-05-01T10:30:00Z").
			WithSeq(2).WithPrev(aliceGenesis.ID).
			Build(t, db)

		// Execute
		report, err := svc.AuditChains()

		// Assert
		if err != nil {
			t.Fatalf("AuditChains() returned unexpected error: %v", err)
		}

		if len(report.BrokenLinks) != 1 {
			t.Fatalf("Expected 1 broken link, got %d: %+v", len(report.BrokenLinks), report.BrokenLinks)
		}
		if report.BrokenLinks[0].RecordID != crossed.ID {
			t.Errorf("Expected record %s flagged, got %s", crossed.ID, report.BrokenLinks[0].RecordID)
		}
	})

	t.Run("reports an agent without a genesis record", func(t *testing.T) {
		// Setup: an agent row with no records at all
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestChainService(t, db)

		agent := testutil.CreateAgent(t, db, "chainless")

		// Execute
		report, err := svc.AuditChains()

		// Assert
		if err != nil {
			t.Fatalf("AuditChains() returned unexpected error: %v", err)
		}

		if len(report.BrokenLinks) != 1 {
			t.Fatalf("Expected 1 broken link, got %d", len(report.BrokenLinks))
		}
		if report.BrokenLinks[0].AgentID != agent.ID {
			t.Errorf("Expected agent %s flagged, got %s", agent.ID, report.BrokenLinks[0].AgentID)
		}
	})

	t.Run("reports committed records whose entries never arrived", func(t *testing.T) {
		// Setup: a post record without a stored entry, the shape a peer
		// import leaves behind when the peer stops serving an entry
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestChainService(t, db)

		agent, genesis := testutil.CreateAgentWithChain(t, db, "alice")
		missing := model.NewAddress([]byte("entry the peer never served"))
		orphan := testutil.NewRecord(agent.ID).
			AsPost(missing).
			WithTimestamp("2024-05-01T10:30:00Z").
			WithSeq(2).WithPrev(genesis.ID).
			Build(t, db)

		// Execute
		report, err := svc.AuditChains()

		// Assert
		if err != nil {
			t.Fatalf("AuditChains() returned unexpected error: %v", err)
		}

		if len(report.BrokenLinks) != 1 {
			t.Fatalf("Expected 1 broken link, got %d: %+v", len(report.BrokenLinks), report.BrokenLinks)
		}
		if report.BrokenLinks[0].RecordID != orphan.ID {
			t.Errorf("Expected record %s flagged, got %s", orphan.ID, report.BrokenLinks[0].RecordID)
		}
	})

	t.Run("handles closed database connection", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestChainService(t, db)

		// Close database to force error
		db.Close()

		// Execute
		_, err := svc.AuditChains()

		// Assert
		if err == nil {
			t.Error("Expected error when database is closed, got nil")
		}
	})
}
