package chat

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(kb *stubKnowledge, completer *stubCompleter, memory *memoryStore) *Handler {
	return NewHandler(NewService(kb, completer, memory, nil, 2))
}

func doChat(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Chat(rec, req)
	return rec
}

func TestHandler_ChatReturnsReply(t *testing.T) {
	kb := &stubKnowledge{docs: []string{"doc"}}
	completer := &stubCompleter{reply: "Sow wheat in November."}
	h := newTestHandler(kb, completer, newMemoryStore())

	rec := doChat(t, h, `{"message": "when to sow wheat?", "location": "Ludhiana"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Sow wheat in November.", resp.Reply)
}

func TestHandler_ChatDefaultsSession(t *testing.T) {
	kb := &stubKnowledge{docs: []string{"doc"}}
	completer := &stubCompleter{reply: "ok"}
	memory := newMemoryStore()
	h := newTestHandler(kb, completer, memory)

	rec := doChat(t, h, `{"message": "hi", "location": "Pune"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, memory.entries["default"], 2)
}

func TestHandler_ChatUsesRequestSession(t *testing.T) {
	kb := &stubKnowledge{docs: []string{"doc"}}
	completer := &stubCompleter{reply: "ok"}
	memory := newMemoryStore()
	h := newTestHandler(kb, completer, memory)

	rec := doChat(t, h, `{"message": "hi", "location": "Pune", "session_id": "farmer-7"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, memory.entries["farmer-7"], 2)
	assert.Empty(t, memory.entries["default"])
}

func TestHandler_ChatRejectsMalformedBody(t *testing.T) {
	h := newTestHandler(&stubKnowledge{}, &stubCompleter{}, newMemoryStore())

	rec := doChat(t, h, `{not json`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_ChatRejectsMissingFields(t *testing.T) {
	h := newTestHandler(&stubKnowledge{}, &stubCompleter{}, newMemoryStore())

	rec := doChat(t, h, `{"message": "hi"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "error")
}

func TestHandler_ChatReturns500OnRetrievalFailure(t *testing.T) {
	kb := &stubKnowledge{err: errors.New("db down")}
	h := newTestHandler(kb, &stubCompleter{}, newMemoryStore())

	rec := doChat(t, h, `{"message": "hi", "location": "Pune"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "db down")
}
