package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/avdmeer/Post-Ledger-Backend/internal/model"
	"github.com/avdmeer/Post-Ledger-Backend/internal/timestamp"
)

// AgentBuilder provides a fluent interface for creating test agents.
//
// Example usage:
//
//	// Simple creation with defaults
//	agent := testutil.NewAgent().Build(t, db)
//
//	// Customized agent
//	agent := testutil.NewAgent().
//	    WithNickname("alice").
//	    WithCreatedAt(someTime).
//	    Build(t, db)
type AgentBuilder struct {
	ID        string
	Nickname  string
	CreatedAt time.Time
}

// NewAgent creates an AgentBuilder with sensible defaults.
func NewAgent() *AgentBuilder {
	return &AgentBuilder{
		ID:        MakeID(),
		Nickname:  MakeNickname("agent"),
		CreatedAt: time.Now().UTC(),
	}
}

// WithID sets a custom ID.
func (b *AgentBuilder) WithID(id string) *AgentBuilder {
	b.ID = id
	return b
}

// WithNickname sets a custom nickname.
func (b *AgentBuilder) WithNickname(nickname string) *AgentBuilder {
	b.Nickname = nickname
	return b
}

// WithCreatedAt sets the registration time.
func (b *AgentBuilder) WithCreatedAt(createdAt time.Time) *AgentBuilder {
	b.CreatedAt = createdAt
	return b
}

// Build creates the agent in the database and returns it.
// Only the agent row is written; use BuildWithChain when the test needs
// a genesis record too.
func (b *AgentBuilder) Build(t *testing.T, db *sql.DB) model.Agent {
	t.Helper()

	query := `
		INSERT INTO agents (id, nickname, created_at)
		VALUES (?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.Nickname, b.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		t.Fatalf("Failed to create test agent: %v", err)
	}

	return model.Agent{
		ID:        b.ID,
		Nickname:  b.Nickname,
		CreatedAt: b.CreatedAt.UTC(),
	}
}

// BuildWithChain creates the agent plus its genesis record, mirroring what
// registration does. Most chain and post tests want this form.
func (b *AgentBuilder) BuildWithChain(t *testing.T, db *sql.DB) (model.Agent, model.Record) {
	t.Helper()

	agent := b.Build(t, db)
	genesis := NewRecord(agent.ID).Build(t, db)
	return agent, genesis
}

// Convenience functions

// CreateAgent creates an agent with the given nickname and default values.
//
// Example usage:
//
//	agent := testutil.CreateAgent(t, db, "alice")
func CreateAgent(t *testing.T, db *sql.DB, nickname string) model.Agent {
	t.Helper()
	return NewAgent().WithNickname(nickname).Build(t, db)
}

// CreateAgentWithChain creates an agent together with its genesis record.
//
// Example usage:
//
//	agent, genesis := testutil.CreateAgentWithChain(t, db, "alice")
func CreateAgentWithChain(t *testing.T, db *sql.DB, nickname string) (model.Agent, model.Record) {
	t.Helper()
	return NewAgent().WithNickname(nickname).BuildWithChain(t, db)
}

// CreateAgents creates multiple agents with unique nicknames.
//
// Example usage:
//
//	agents := testutil.CreateAgents(t, db, 5)
//	// Creates 5 agents with auto-generated nicknames
func CreateAgents(t *testing.T, db *sql.DB, count int) []model.Agent {
	t.Helper()

	agents := make([]model.Agent, count)
	for i := 0; i < count; i++ {
		agents[i] = NewAgent().Build(t, db)
	}
	return agents
}

// RecordBuilder provides a fluent interface for creating chain records.
// The zero configuration produces a genesis record; use the With* methods
// to shape post records.
//
// Example usage:
//
//	genesis := testutil.NewRecord(agent.ID).Build(t, db)
//
//	record := testutil.NewRecord(agent.ID).
//	    AsPost(post.Address).
//	    WithSeq(2).
//	    WithPrev(genesis.ID).
//	    WithTimestamp("2024-05-01T10:30:00+02:00").
//	    Build(t, db)
type RecordBuilder struct {
	ID           string
	AgentID      string
	Type         string
	EntryAddress model.Address
	InReplyTo    *model.Address
	Timestamp    string
	Canonical    *string
	PrevID       *string
	Seq          int
}

// NewRecord creates a RecordBuilder shaped like a genesis record.
func NewRecord(agentID string) *RecordBuilder {
	b := &RecordBuilder{
		ID:           MakeID(),
		AgentID:      agentID,
		Type:         model.RecordTypeGenesis,
		EntryAddress: model.NewAddress([]byte("agent:" + agentID)),
		Seq:          1,
	}
	return b.WithTimestamp(time.Now().UTC().Format(time.RFC3339))
}

// WithID sets a custom ID.
func (b *RecordBuilder) WithID(id string) *RecordBuilder {
	b.ID = id
	return b
}

// AsPost turns the record into a post record for the given entry.
func (b *RecordBuilder) AsPost(entryAddress model.Address) *RecordBuilder {
	b.Type = model.RecordTypePost
	b.EntryAddress = entryAddress
	return b
}

// WithInReplyTo sets the reply target.
func (b *RecordBuilder) WithInReplyTo(address model.Address) *RecordBuilder {
	b.InReplyTo = &address
	return b
}

// WithTimestamp sets the raw timestamp and recomputes the canonical form.
// Unparsable text leaves the canonical form unset, matching how commits
// store such records.
func (b *RecordBuilder) WithTimestamp(raw string) *RecordBuilder {
	b.Timestamp = raw
	b.Canonical = nil
	if instant, err := timestamp.New(raw).Instant(); err == nil {
		canonical := instant.RFC3339()
		b.Canonical = &canonical
	}
	return b
}

// WithCanonical overrides the stored canonical form, bypassing the
// recomputation done by WithTimestamp. Audit tests use this to plant drift.
func (b *RecordBuilder) WithCanonical(canonical *string) *RecordBuilder {
	b.Canonical = canonical
	return b
}

// WithPrev links the record to its predecessor.
func (b *RecordBuilder) WithPrev(prevID string) *RecordBuilder {
	b.PrevID = &prevID
	return b
}

// WithSeq sets the chain position.
func (b *RecordBuilder) WithSeq(seq int) *RecordBuilder {
	b.Seq = seq
	return b
}

// Build creates the record in the database and returns it.
func (b *RecordBuilder) Build(t *testing.T, db *sql.DB) model.Record {
	t.Helper()

	query := `
		INSERT INTO records (id, agent_id, type, entry_address, in_reply_to, timestamp, canonical, prev_id, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var inReplyTo any
	if b.InReplyTo != nil {
		inReplyTo = string(*b.InReplyTo)
	}

	var canonical any
	if b.Canonical != nil {
		canonical = *b.Canonical
	}

	var prevID any
	if b.PrevID != nil {
		prevID = *b.PrevID
	}

	_, err := db.Exec(query,
		b.ID, b.AgentID, b.Type, string(b.EntryAddress),
		inReplyTo, b.Timestamp, canonical, prevID, b.Seq)
	if err != nil {
		t.Fatalf("Failed to create test record: %v", err)
	}

	return model.Record{
		ID:           b.ID,
		AgentID:      b.AgentID,
		Type:         b.Type,
		EntryAddress: b.EntryAddress,
		InReplyTo:    b.InReplyTo,
		Timestamp:    timestamp.New(b.Timestamp),
		Canonical:    b.Canonical,
		PrevID:       b.PrevID,
		Seq:          b.Seq,
	}
}

// PostBuilder provides a fluent interface for creating post entries.
// The address always follows the content, so WithContent is the only way
// to change it; use WithAddress only to plant a corrupt entry.
//
// Example usage:
//
//	post := testutil.NewPost().
//	    WithContent("hello world").
//	    WithDateCreated("2024-05-01T10:30:00Z").
//	    Build(t, db)
type PostBuilder struct {
	Address     model.Address
	Content     string
	DateCreated string
}

// NewPost creates a PostBuilder with sensible defaults.
func NewPost() *PostBuilder {
	b := &PostBuilder{
		DateCreated: time.Now().UTC().Format(time.RFC3339),
	}
	return b.WithContent("post " + randomAlphanumeric(8))
}

// WithContent sets the content and recomputes the address.
func (b *PostBuilder) WithContent(content string) *PostBuilder {
	b.Content = content
	b.Address = model.NewAddress([]byte(content))
	return b
}

// WithDateCreated sets the raw producer timestamp. Any string is accepted;
// entries keep whatever the producer claimed.
func (b *PostBuilder) WithDateCreated(raw string) *PostBuilder {
	b.DateCreated = raw
	return b
}

// WithAddress overrides the content address. The result no longer hashes
// to its content, which is exactly what integrity tests need.
func (b *PostBuilder) WithAddress(address model.Address) *PostBuilder {
	b.Address = address
	return b
}

// Build creates the post in the database and returns it.
func (b *PostBuilder) Build(t *testing.T, db *sql.DB) model.Post {
	t.Helper()

	query := `
		INSERT INTO posts (address, content, date_created)
		VALUES (?, ?, ?)
	`

	_, err := db.Exec(query, string(b.Address), b.Content, b.DateCreated)
	if err != nil {
		t.Fatalf("Failed to create test post: %v", err)
	}

	return model.Post{
		Address:     b.Address,
		Content:     b.Content,
		DateCreated: timestamp.New(b.DateCreated),
	}
}

// CreatePost creates a post with the given content and default values.
func CreatePost(t *testing.T, db *sql.DB, content string) model.Post {
	t.Helper()
	return NewPost().WithContent(content).Build(t, db)
}

// CommitPost creates a post entry plus the record committing it to the
// agent's chain, returning both. The caller supplies the chain position.
//
// Example usage:
//
//	agent, genesis := testutil.CreateAgentWithChain(t, db, "alice")
//	post, record := testutil.CommitPost(t, db, agent.ID, "hello", 2, genesis.ID)
func CommitPost(t *testing.T, db *sql.DB, agentID, content string, seq int, prevID string) (model.Post, model.Record) {
	t.Helper()

	post := NewPost().WithContent(content).Build(t, db)
	record := NewRecord(agentID).
		AsPost(post.Address).
		WithTimestamp(post.DateCreated.Raw()).
		WithSeq(seq).
		WithPrev(prevID).
		Build(t, db)
	return post, record
}

// LogBuilder provides a fluent interface for creating system log entries.
//
// Example usage:
//
//	testutil.NewLog().
//	    WithLevel("error").
//	    WithCategory("chain").
//	    WithMessage("audit failed").
//	    Build(t, db)
type LogBuilder struct {
	ID        string
	Timestamp time.Time
	Level     string
	Category  string
	Message   string
	Details   string
	Source    string
}

// NewLog creates a LogBuilder with sensible defaults.
func NewLog() *LogBuilder {
	return &LogBuilder{
		ID:        MakeID(),
		Timestamp: time.Now().UTC(),
		Level:     "info",
		Category:  "system",
		Message:   "test log entry " + randomAlphanumeric(6),
	}
}

// WithID sets a custom ID.
func (b *LogBuilder) WithID(id string) *LogBuilder {
	b.ID = id
	return b
}

// WithTimestamp sets the log time.
func (b *LogBuilder) WithTimestamp(ts time.Time) *LogBuilder {
	b.Timestamp = ts
	return b
}

// WithLevel sets the severity.
func (b *LogBuilder) WithLevel(level string) *LogBuilder {
	b.Level = level
	return b
}

// WithCategory sets the category.
func (b *LogBuilder) WithCategory(category string) *LogBuilder {
	b.Category = category
	return b
}

// WithMessage sets the message.
func (b *LogBuilder) WithMessage(message string) *LogBuilder {
	b.Message = message
	return b
}

// WithDetails sets the details payload.
func (b *LogBuilder) WithDetails(details string) *LogBuilder {
	b.Details = details
	return b
}

// WithSource sets the source.
func (b *LogBuilder) WithSource(source string) *LogBuilder {
	b.Source = source
	return b
}

// Build creates the log entry in the database.
func (b *LogBuilder) Build(t *testing.T, db *sql.DB) {
	t.Helper()

	query := `
		INSERT INTO system_logs (id, timestamp, level, category, message, details, source)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	var details any
	if b.Details != "" {
		details = b.Details
	}

	var source any
	if b.Source != "" {
		source = b.Source
	}

	_, err := db.Exec(query,
		b.ID, b.Timestamp.UTC().Format(time.RFC3339Nano),
		b.Level, b.Category, b.Message, details, source)
	if err != nil {
		t.Fatalf("Failed to create test log entry: %v", err)
	}
}
