package testutil

import (
	"context"
	"fmt"
	"time"

	"github.com/avdmeer/Post-Ledger-Backend/internal/model"
	"github.com/avdmeer/Post-Ledger-Backend/internal/peer"
	"github.com/avdmeer/Post-Ledger-Backend/internal/timestamp"
)

// MockPeerClient is a mock implementation of peer.Client for testing.
// It serves predefined agents, records and posts instead of making HTTP
// calls to a live backend.
type MockPeerClient struct {
	// Agents is the agent list served by FetchAgents
	Agents []peer.RemoteAgent
	// Records maps agent IDs to the chains served by FetchAgentRecords
	Records map[string][]peer.RemoteRecord
	// Posts maps addresses to the entries served by FetchPost
	Posts map[string]peer.RemotePost
	// MockError is the error to return from every fetch method
	MockError error
	// FetchCount tracks how many fetch calls were made
	FetchCount int
}

// NewMockPeerClient creates an empty mock peer client.
func NewMockPeerClient() *MockPeerClient {
	return &MockPeerClient{
		Records: make(map[string][]peer.RemoteRecord),
		Posts:   make(map[string]peer.RemotePost),
	}
}

// FetchAgents mocks the agent listing.
func (m *MockPeerClient) FetchAgents(_ context.Context) ([]peer.RemoteAgent, error) {
	m.FetchCount++
	if m.MockError != nil {
		return nil, m.MockError
	}
	return m.Agents, nil
}

// FetchAgentRecords mocks the chain listing for one agent.
func (m *MockPeerClient) FetchAgentRecords(_ context.Context, agentID string) ([]peer.RemoteRecord, error) {
	m.FetchCount++
	if m.MockError != nil {
		return nil, m.MockError
	}
	return m.Records[agentID], nil
}

// FetchPost mocks the entry lookup. Addresses that were never served fail
// the way a live peer fails: with an error, not an empty entry.
func (m *MockPeerClient) FetchPost(_ context.Context, address string) (peer.RemotePost, error) {
	m.FetchCount++
	if m.MockError != nil {
		return peer.RemotePost{}, m.MockError
	}
	post, ok := m.Posts[address]
	if !ok {
		return peer.RemotePost{}, fmt.Errorf("peer returned 404 for /api/posts/%s", address)
	}
	return post, nil
}

// WithError configures the mock to fail every fetch with the given error.
func (m *MockPeerClient) WithError(err error) *MockPeerClient {
	m.MockError = err
	return m
}

// ServeChain registers an agent, its records and its entries with the mock.
func (m *MockPeerClient) ServeChain(agent peer.RemoteAgent, records []peer.RemoteRecord, posts []peer.RemotePost) *MockPeerClient {
	m.Agents = append(m.Agents, agent)
	m.Records[agent.ID] = records
	for _, post := range posts {
		m.Posts[post.Address] = post
	}
	return m
}

// DropPost removes an entry so FetchPost fails for its address. Useful for
// testing records whose entries the peer no longer serves.
func (m *MockPeerClient) DropPost(address string) *MockPeerClient {
	delete(m.Posts, address)
	return m
}

// CreateRemoteChain fabricates a consistent remote agent: a genesis record
// followed by one post record per content string, with sequence numbers,
// previous-record links and content addresses all coherent. The returned
// slices are ready to pass to ServeChain.
func CreateRemoteChain(nickname string, contents ...string) (peer.RemoteAgent, []peer.RemoteRecord, []peer.RemotePost) {
	agentID := MakeID()
	now := time.Now().UTC().Format(time.RFC3339)

	agent := peer.RemoteAgent{
		ID:        agentID,
		Nickname:  nickname,
		CreatedAt: now,
	}

	records := make([]peer.RemoteRecord, 0, len(contents)+1)
	genesis := peer.RemoteRecord{
		ID:           MakeID(),
		AgentID:      agentID,
		Type:         model.RecordTypeGenesis,
		EntryAddress: string(model.NewAddress([]byte("agent:" + agentID))),
		Timestamp:    now,
		Canonical:    canonicalOf(now),
		Seq:          1,
	}
	records = append(records, genesis)

	posts := make([]peer.RemotePost, 0, len(contents))
	prevID := genesis.ID
	for i, content := range contents {
		address := string(model.NewAddress([]byte(content)))
		posts = append(posts, peer.RemotePost{
			Address:        address,
			Content:        content,
			DateCreatedRaw: now,
		})

		prev := prevID
		record := peer.RemoteRecord{
			ID:           MakeID(),
			AgentID:      agentID,
			Type:         model.RecordTypePost,
			EntryAddress: address,
			Timestamp:    now,
			Canonical:    canonicalOf(now),
			PrevID:       &prev,
			Seq:          i + 2,
		}
		records = append(records, record)
		prevID = record.ID
	}

	return agent, records, posts
}

// canonicalOf renders the canonical form of a raw timestamp, or nil when it
// does not parse, matching what a well-behaved peer serves.
func canonicalOf(raw string) *string {
	instant, err := timestamp.New(raw).Instant()
	if err != nil {
		return nil
	}
	canonical := instant.RFC3339()
	return &canonical
}
