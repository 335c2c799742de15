package peer

// RemoteAgent is an agent as served by a peer backend.
type RemoteAgent struct {
	ID        string `json:"id"`
	Nickname  string `json:"nickname"`
	CreatedAt string `json:"createdAt"`
}

// RemoteRecord is a chain record as served by a peer backend. The raw
// timestamp travels as an opaque string; transport never normalizes it.
type RemoteRecord struct {
	ID           string  `json:"id"`
	AgentID      string  `json:"agentId"`
	Type         string  `json:"type"`
	EntryAddress string  `json:"entryAddress"`
	InReplyTo    *string `json:"inReplyTo,omitempty"`
	Timestamp    string  `json:"timestamp"`
	Canonical    *string `json:"canonical,omitempty"`
	PrevID       *string `json:"prevId,omitempty"`
	Seq          int     `json:"seq"`
}

// RemotePost is a post entry as served by a peer backend. Only the raw
// timestamp is carried over; the canonical form is recomputed locally.
type RemotePost struct {
	Address        string `json:"address"`
	Content        string `json:"content"`
	DateCreatedRaw string `json:"dateCreatedRaw"`
}
