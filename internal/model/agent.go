package model

import "time"

// Agent represents a publishing identity from the database. Each agent
// owns one append-only chain of records, opened by a genesis record at
// registration time.
type Agent struct {
	ID        string    `json:"id"`
	Nickname  string    `json:"nickname"`
	CreatedAt time.Time `json:"createdAt"`
}

// AgentRegistration is returned once, at registration. The token is minted
// from the configured fernet keys and cannot be recovered later.
type AgentRegistration struct {
	Agent Agent  `json:"agent"`
	Token string `json:"token"`
}
