package model

import "github.com/avdmeer/Post-Ledger-Backend/internal/timestamp"

// Record types. A chain opens with exactly one genesis record; every
// subsequent record commits a post entry.
const (
	RecordTypeGenesis = "genesis"
	RecordTypePost    = "post"
)

// Record is one link in an agent's chain: it binds an entry address to the
// agent, a sequence number, the previous record and the producer-supplied
// timestamp. The raw timestamp is stored exactly as received; Canonical is
// filled only when it validates, so unparsable timestamps survive import
// without being silently repaired.
type Record struct {
	ID           string              `json:"id"`
	AgentID      string              `json:"agentId"`
	Type         string              `json:"type"`
	EntryAddress Address             `json:"entryAddress"`
	InReplyTo    *Address            `json:"inReplyTo,omitempty"`
	Timestamp    timestamp.Timestamp `json:"timestamp"`
	Canonical    *string             `json:"canonical,omitempty"`
	PrevID       *string             `json:"prevId,omitempty"`
	Seq          int                 `json:"seq"`
}

// ChainAuditReport summarizes one audit pass over the stored chains.
type ChainAuditReport struct {
	AgentsChecked     int          `json:"agentsChecked"`
	RecordsChecked    int          `json:"recordsChecked"`
	InvalidTimestamps []AuditIssue `json:"invalidTimestamps,omitempty"`
	CanonicalDrift    []AuditIssue `json:"canonicalDrift,omitempty"`
	BrokenLinks       []AuditIssue `json:"brokenLinks,omitempty"`
}

// AuditIssue points at a single record that failed an audit check.
type AuditIssue struct {
	RecordID string `json:"recordId"`
	AgentID  string `json:"agentId"`
	Detail   string `json:"detail"`
}

// Issues reports whether the audit found anything wrong.
func (r ChainAuditReport) Issues() int {
	return len(r.InvalidTimestamps) + len(r.CanonicalDrift) + len(r.BrokenLinks)
}
