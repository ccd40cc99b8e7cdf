package relay

import (
	"strings"

	"github.com/bz888/agent-relay/internal/api/server/client"
)

// BuildPrompt returns the system persona followed by the user's text.
// userName and userId are substituted as literal text, without escaping.
func BuildPrompt(persona string, req ChatTurnRequest) []client.ChatMessage {
	system := strings.NewReplacer(
		"{userName}", req.UserName,
		"{userId}", req.UserID,
	).Replace(persona)

	return []client.ChatMessage{
		{Role: client.RoleSystem, Content: system},
		{Role: client.RoleUser, Content: req.Text},
	}
}
