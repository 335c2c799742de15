package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/avdmeer/Post-Ledger-Backend/internal/apperrors"
	"github.com/avdmeer/Post-Ledger-Backend/internal/model"
	"github.com/avdmeer/Post-Ledger-Backend/internal/peer"
	"github.com/avdmeer/Post-Ledger-Backend/internal/testutil"
)

// TestPeerService_ImportFromPeer tests chain replication from another backend.
//
// WHY: Import must be faithful, not corrective. A peer's timestamps are
// stored exactly as served, parsable or not, and a second import of the
// same chain must skip what is already here instead of duplicating it.
func TestPeerService_ImportFromPeer(t *testing.T) {
	t.Run("imports a full chain with its entries", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		mock := testutil.NewMockPeerClient().
			ServeChain(testutil.CreateRemoteChain("remote-alice", "first post", "second post"))
		svc := testutil.NewTestPeerService(t, db, mock)

		// Execute
		report, err := svc.ImportFromPeer(context.Background())

		// Assert
		if err != nil {
			t.Fatalf("ImportFromPeer() returned unexpected error: %v", err)
		}

		if report.AgentsSeen != 1 {
			t.Errorf("Expected 1 agent seen, got %d", report.AgentsSeen)
		}
		if report.AgentsCreated != 1 {
			t.Errorf("Expected 1 agent created, got %d", report.AgentsCreated)
		}
		if report.RecordsImported != 3 {
			t.Errorf("Expected 3 records imported, got %d", report.RecordsImported)
		}
		if report.PostsFetched != 2 {
			t.Errorf("Expected 2 posts fetched, got %d", report.PostsFetched)
		}

		testutil.AssertRowCount(t, db, "agents", 1)
		testutil.AssertRowCount(t, db, "records", 3)
		testutil.AssertRowCount(t, db, "posts", 2)
	})

	t.Run("preserves unparsable timestamps exactly as served", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)

		agent, records, posts := testutil.CreateRemoteChain("remote-alice", "an old claim")
		records[1].Timestamp = "three days ago"
		records[1].Canonical = nil
		posts[0].DateCreatedRaw = "three days ago"

		mock := testutil.NewMockPeerClient().ServeChain(agent, records, posts)
		svc := testutil.NewTestPeerService(t, db, mock)

		// Execute
		if _, err := svc.ImportFromPeer(context.Background()); err != nil {
			t.Fatalf("ImportFromPeer() returned unexpected error: %v", err)
		}

		// Assert: the record carries the claim verbatim, with no canonical form
		chain, err := testutil.NewTestChainService(t, db).GetChain(agent.ID)
		if err != nil {
			t.Fatalf("GetChain() returned unexpected error: %v", err)
		}
		if len(chain) != 2 {
			t.Fatalf("Expected 2 records, got %d", len(chain))
		}
		if chain[1].Timestamp.Raw() != "three days ago" {
			t.Errorf("Expected raw claim preserved verbatim, got '%s'", chain[1].Timestamp.Raw())
		}
		if chain[1].Canonical != nil {
			t.Errorf("Expected no canonical form, got '%s'", *chain[1].Canonical)
		}

		// The entry keeps the claim too, and renders the failure instead of a date
		stored, err := testutil.NewTestPostService(t, db).GetPost(model.NewAddress([]byte("an old claim")))
		if err != nil {
			t.Fatalf("GetPost() returned unexpected error: %v", err)
		}
		if stored.DateCreatedRaw != "three days ago" {
			t.Errorf("Expected raw claim on the entry, got '%s'", stored.DateCreatedRaw)
		}
		if stored.DateCreated != "" {
			t.Errorf("Expected no canonical date, got '%s'", stored.DateCreated)
		}
		if stored.TimestampError == "" {
			t.Error("Expected a timestamp error on the entry")
		}
	})

	t.Run("tolerates entries the peer no longer serves", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)

		agent, records, posts := testutil.CreateRemoteChain("remote-alice", "vanished post")
		mock := testutil.NewMockPeerClient().
			ServeChain(agent, records, posts).
			DropPost(posts[0].Address)
		svc := testutil.NewTestPeerService(t, db, mock)

		// Execute
		report, err := svc.ImportFromPeer(context.Background())

		// Assert: the record still lands, the entry stays missing
		if err != nil {
			t.Fatalf("ImportFromPeer() returned unexpected error: %v", err)
		}
		if report.RecordsImported != 2 {
			t.Errorf("Expected 2 records imported, got %d", report.RecordsImported)
		}
		if report.PostsFetched != 0 {
			t.Errorf("Expected 0 posts fetched, got %d", report.PostsFetched)
		}

		testutil.AssertRowCount(t, db, "records", 2)
		testutil.AssertRowCount(t, db, "posts", 0)
	})

	t.Run("drops entries whose content does not match their address", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)

		agent, records, posts := testutil.CreateRemoteChain("remote-mallory", "original words")
		posts[0].Content = "tampered words" // Address stays the hash of the original

		mock := testutil.NewMockPeerClient().ServeChain(agent, records, posts)
		svc := testutil.NewTestPeerService(t, db, mock)

		// Execute
		report, err := svc.ImportFromPeer(context.Background())

		// Assert
		if err != nil {
			t.Fatalf("ImportFromPeer() returned unexpected error: %v", err)
		}
		if report.PostsFetched != 0 {
			t.Errorf("Expected 0 posts fetched, got %d", report.PostsFetched)
		}

		testutil.AssertRowCount(t, db, "records", 2)
		testutil.AssertRowCount(t, db, "posts", 0)
	})

	t.Run("resumes where the previous import stopped", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)

		agent, records, posts := testutil.CreateRemoteChain("remote-alice", "first post")
		mock := testutil.NewMockPeerClient().ServeChain(agent, records, posts)
		svc := testutil.NewTestPeerService(t, db, mock)

		if _, err := svc.ImportFromPeer(context.Background()); err != nil {
			t.Fatalf("ImportFromPeer() returned unexpected error: %v", err)
		}

		// The peer's chain grows by one record between imports
		canonical := "2024-06-01T00:00:00+00:00"
		prevID := records[len(records)-1].ID
		extension := peer.RemoteRecord{
			ID:           testutil.MakeID(),
			AgentID:      agent.ID,
			Type:         model.RecordTypePost,
			EntryAddress: string(model.NewAddress([]byte("a later post"))),
			Timestamp:    "2024-06-01T00:00:00Z",
			Canonical:    &canonical,
			PrevID:       &prevID,
			Seq:          3,
		}
		mock.Records[agent.ID] = append(mock.Records[agent.ID], extension)
		mock.Posts[extension.EntryAddress] = peer.RemotePost{
			Address:        extension.EntryAddress,
			Content:        "a later post",
			DateCreatedRaw: "2024-06-01T00:00:00Z",
		}

		// Execute
		report, err := svc.ImportFromPeer(context.Background())

		// Assert: only the extension moves
		if err != nil {
			t.Fatalf("ImportFromPeer() returned unexpected error: %v", err)
		}
		if report.AgentsCreated != 0 {
			t.Errorf("Expected 0 agents created, got %d", report.AgentsCreated)
		}
		if report.RecordsSkipped != 2 {
			t.Errorf("Expected 2 records skipped, got %d", report.RecordsSkipped)
		}
		if report.RecordsImported != 1 {
			t.Errorf("Expected 1 record imported, got %d", report.RecordsImported)
		}

		testutil.AssertRowCount(t, db, "records", 3)
		testutil.AssertRowCount(t, db, "posts", 2)
	})

	t.Run("returns ErrFailedToReachPeer when the peer is down", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		mock := testutil.NewMockPeerClient().WithError(errors.New("connection refused"))
		svc := testutil.NewTestPeerService(t, db, mock)

		// Execute
		_, err := svc.ImportFromPeer(context.Background())

		// Assert
		if !errors.Is(err, apperrors.ErrFailedToReachPeer) {
			t.Errorf("Expected ErrFailedToReachPeer, got %v", err)
		}
	})
}
