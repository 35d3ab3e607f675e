package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cropweather-ai/cropweather/internal/conversation"
	"github.com/cropweather-ai/cropweather/internal/events"
	"github.com/cropweather-ai/cropweather/internal/knowledge"
	"github.com/cropweather-ai/cropweather/internal/llm"
	"github.com/cropweather-ai/cropweather/internal/metrics"
	"github.com/cropweather-ai/cropweather/internal/middleware"
)

const systemPrompt = `You are a helpful farming assistant.
Provide accurate, practical advice based on the knowledge base.
Consider the user's location and specific needs.
Always respond in the SAME language as the user's question.`

// apologyReply is returned when the completion call fails. The turn is still
// recorded so the conversation window stays consistent.
const apologyReply = "I'm sorry, I encountered an error trying to generate a response. Please try again."

// Service answers farming questions with retrieval-augmented completions.
type Service struct {
	store     knowledge.Store
	completer llm.Completer
	memory    conversation.Store
	publisher *events.Publisher
	topN      int
}

func NewService(store knowledge.Store, completer llm.Completer, memory conversation.Store, publisher *events.Publisher, topN int) *Service {
	return &Service{
		store:     store,
		completer: completer,
		memory:    memory,
		publisher: publisher,
		topN:      topN,
	}
}

// Answer runs one conversation turn: retrieve context, complete against the
// session history, and record both sides of the exchange. A completion
// failure degrades to an apology instead of an error; a retrieval failure
// is an error because there is nothing to ground the answer on.
func (s *Service) Answer(ctx context.Context, sessionID, query, location string) (string, error) {
	docs, _, err := s.store.Query(ctx, query, location, s.topN)
	if err != nil {
		metrics.ChatTurnsTotal.WithLabelValues("retrieval_error").Inc()
		return "", fmt.Errorf("querying knowledge base: %w", err)
	}
	kbContext := strings.Join(docs, "\n")

	userPrompt := fmt.Sprintf(`Question: %s

Location: %s

Knowledge Base:
%s

Please provide a detailed, helpful answer:`, query, location, kbContext)

	history, err := s.memory.History(ctx, sessionID)
	if err != nil {
		slog.Warn("loading conversation history", "session_id", sessionID, "error", err)
		history = nil
	}

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: systemPrompt})
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: userPrompt})

	degraded := false
	reply, err := s.completer.Complete(ctx, messages)
	if err != nil {
		slog.Error("completion failed, degrading to apology", "session_id", sessionID, "error", err)
		reply = apologyReply
		degraded = true
	}

	// The full retrieval-augmented prompt is stored, not the bare question,
	// so later turns keep the grounding context.
	if err := s.memory.Append(ctx, sessionID,
		llm.Message{Role: llm.RoleUser, Content: userPrompt},
		llm.Message{Role: llm.RoleAssistant, Content: reply},
	); err != nil {
		slog.Warn("recording conversation turn", "session_id", sessionID, "error", err)
	}

	outcome := "ok"
	if degraded {
		outcome = "degraded"
	}
	metrics.ChatTurnsTotal.WithLabelValues(outcome).Inc()

	if err := s.publisher.PublishChatTurn(ctx, events.ChatTurnEvent{
		RequestID: middleware.GetRequestID(ctx),
		SessionID: sessionID,
		Location:  location,
		Degraded:  degraded,
		Timestamp: time.Now().UTC(),
	}); err != nil {
		slog.Warn("publishing chat turn event", "error", err)
	}

	return reply, nil
}
