package request

type RegisterAgentRequest struct {
	Nickname string `json:"nickname"`
}
