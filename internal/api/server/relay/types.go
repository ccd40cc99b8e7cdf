package relay

// ActionChat is the only action the relay emits.
const ActionChat = "CHAT"

// ChatTurnRequest is one inbound chat turn.
type ChatTurnRequest struct {
	Text     string `json:"text"`
	UserName string `json:"userName"`
	UserID   string `json:"userId"`
	Version  string `json:"version"` // accepted, unused
}

// ChatTurnResponse carries the full accumulated reply.
type ChatTurnResponse struct {
	Text   string `json:"text"`
	Action string `json:"action"`
}
