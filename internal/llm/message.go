package llm

// Message roles, matching the OpenAI chat schema.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single chat turn. Order within a conversation is
// chronological, oldest first.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
