package model

import "github.com/avdmeer/Post-Ledger-Backend/internal/timestamp"

// Post is the entry type of the ledger: a short piece of content plus the
// creation timestamp exactly as the producer wrote it. The entry is
// addressed by its content alone, so hashing a post before committing it
// yields the address it will have once committed.
type Post struct {
	Address     Address             `json:"address"`
	Content     string              `json:"content"`
	DateCreated timestamp.Timestamp `json:"dateCreated"`
}

// RecordedPost pairs a chain record with the post entry it committed.
// Used for chain-scoped listings, where the record supplies reply linkage
// and commit order.
type RecordedPost struct {
	Record Record `json:"record"`
	Post   Post   `json:"post"`
}

// PostResponse is the API view of a post: the entry plus both views of its
// timestamp. DateCreated carries the canonical RFC 3339 form and stays
// empty when the raw text does not validate; TimestampError then explains
// why.
type PostResponse struct {
	Address        Address  `json:"address"`
	Content        string   `json:"content"`
	DateCreatedRaw string   `json:"dateCreatedRaw"`
	DateCreated    string   `json:"dateCreated,omitempty"`
	TimestampError string   `json:"timestampError,omitempty"`
	InReplyTo      *Address `json:"inReplyTo,omitempty"`
}
