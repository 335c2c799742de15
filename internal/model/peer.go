package model

// PeerImportReport summarizes one import pass from the configured peer.
type PeerImportReport struct {
	AgentsSeen      int `json:"agentsSeen"`
	AgentsCreated   int `json:"agentsCreated"`
	RecordsImported int `json:"recordsImported"`
	PostsFetched    int `json:"postsFetched"`
	RecordsSkipped  int `json:"recordsSkipped"`
}
