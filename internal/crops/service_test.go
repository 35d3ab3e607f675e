package crops

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cropweather-ai/cropweather/internal/knowledge"
)

type stubStore struct {
	err       error
	lastQuery string
	lastLoc   string
	lastTopN  int
}

func (s *stubStore) Add(ctx context.Context, docs []knowledge.Document) error { return nil }

func (s *stubStore) Query(ctx context.Context, text, location string, topN int) ([]string, []map[string]string, error) {
	s.lastQuery = text
	s.lastLoc = location
	s.lastTopN = topN
	if s.err != nil {
		return nil, nil, s.err
	}
	return []string{"doc"}, []map[string]string{{}}, nil
}

func TestService_RecommendReturnsCuratedLists(t *testing.T) {
	store := &stubStore{}
	svc := NewService(store)

	recs := svc.Recommend(context.Background(), "Thanjavur", "")

	require.Len(t, recs.Favorable, 3)
	require.Len(t, recs.Unfavorable, 2)
	assert.Equal(t, Crop{Name: "Rice", Reason: "Ideal monsoon conditions", Favorability: "Excellent"}, recs.Favorable[0])
	assert.Equal(t, Crop{Name: "Saffron", Reason: "Requires specific cold, dry climate", Favorability: "Challenging"}, recs.Unfavorable[1])
}

func TestService_RecommendPrefersStateOverDistrict(t *testing.T) {
	store := &stubStore{}
	svc := NewService(store)

	svc.Recommend(context.Background(), "Thanjavur", "Tamil Nadu")

	assert.Equal(t, "Farming conditions, soil, and suitable crops for Tamil Nadu", store.lastQuery)
	assert.Equal(t, "Tamil Nadu", store.lastLoc)
	assert.Equal(t, 5, store.lastTopN)
}

func TestService_RecommendDegradesToEmptyListsOnRetrievalFailure(t *testing.T) {
	store := &stubStore{err: errors.New("db unreachable")}
	svc := NewService(store)

	recs := svc.Recommend(context.Background(), "Thanjavur", "")

	assert.NotNil(t, recs.Favorable)
	assert.NotNil(t, recs.Unfavorable)
	assert.Empty(t, recs.Favorable)
	assert.Empty(t, recs.Unfavorable)
}

func TestHandler_RecommendReturnsJSON(t *testing.T) {
	h := NewHandler(NewService(&stubStore{}))

	req := httptest.NewRequest(http.MethodPost, "/api/crop-recommendations", bytes.NewBufferString(`{"district": "Thanjavur"}`))
	rec := httptest.NewRecorder()
	h.Recommend(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var recs Recommendations
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&recs))
	assert.Len(t, recs.Favorable, 3)
}

func TestHandler_RecommendRejectsMissingDistrict(t *testing.T) {
	h := NewHandler(NewService(&stubStore{}))

	req := httptest.NewRequest(http.MethodPost, "/api/crop-recommendations", bytes.NewBufferString(`{"state": "Tamil Nadu"}`))
	rec := httptest.NewRecorder()
	h.Recommend(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
