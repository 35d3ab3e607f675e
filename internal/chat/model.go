package chat

// Request is the body of POST /api/chat. SessionID is optional; requests
// without one share the default conversation.
type Request struct {
	Message   string `json:"message" validate:"required"`
	Location  string `json:"location" validate:"required"`
	SessionID string `json:"session_id"`
}

// Response carries the assistant's reply.
type Response struct {
	Reply string `json:"reply"`
}
