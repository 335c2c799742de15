package request

// CreatePostRequest commits a post to the caller's chain. Timestamp is the
// producer's own clock reading in any ISO 8601 spelling; it is stored as
// given and validated only when compared, so an unusual value does not
// block the commit. When empty, the server stamps the record itself.
type CreatePostRequest struct {
	Content   string `json:"content"`
	InReplyTo string `json:"inReplyTo,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

type HashPostRequest struct {
	Content string `json:"content"`
}
