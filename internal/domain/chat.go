package domain

// ChatRole identifies the author of a conversation turn.
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatTurn is a single message in the conversation history supplied with a
// chat request. History persistence belongs to the caller.
type ChatTurn struct {
	Role    ChatRole
	Content string
}
