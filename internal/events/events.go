package events

import "time"

// Stream and subject constants.
const (
	StreamEvents = "CROPWEATHER_EVENTS"

	SubjectChatTurn = "cropweather.events.chat"
	SubjectAnalysis = "cropweather.events.analysis"
)

// ChatTurnEvent is published after every answered chat turn, including
// degraded turns where the reply is the apology fallback.
type ChatTurnEvent struct {
	RequestID string    `json:"request_id"`
	SessionID string    `json:"session_id"`
	Location  string    `json:"location"`
	Degraded  bool      `json:"degraded"`
	Timestamp time.Time `json:"timestamp"`
}

// AnalysisEvent is published after a weather analysis is generated.
type AnalysisEvent struct {
	RequestID    string    `json:"request_id"`
	Location     string    `json:"location"`
	Crop         string    `json:"crop"`
	InsightCount int       `json:"insight_count"`
	Degraded     bool      `json:"degraded"`
	Timestamp    time.Time `json:"timestamp"`
}
