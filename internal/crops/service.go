package crops

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cropweather-ai/cropweather/internal/knowledge"
)

const retrievalTopN = 5

// Request is the body of POST /api/crop-recommendations. State takes
// precedence over district when both are given.
type Request struct {
	District string `json:"district" validate:"required"`
	State    string `json:"state"`
}

// Crop is one recommended or discouraged crop.
type Crop struct {
	Name         string `json:"name"`
	Reason       string `json:"reason"`
	Favorability string `json:"favorability"`
}

// Recommendations split crops by how well they suit the location.
type Recommendations struct {
	Favorable   []Crop `json:"favorable"`
	Unfavorable []Crop `json:"unfavorable"`
}

// Service recommends crops for a location. Retrieval feeds the knowledge
// base lookup; the returned lists are still curated until the retrieved
// documents drive them.
// TODO: derive the lists from the retrieved documents and their metadata.
type Service struct {
	store knowledge.Store
}

func NewService(store knowledge.Store) *Service {
	return &Service{store: store}
}

// Recommend queries the knowledge base for the location's growing
// conditions. A retrieval failure degrades to empty lists rather than an
// error so the frontend renders an empty state.
func (s *Service) Recommend(ctx context.Context, district, state string) Recommendations {
	location := state
	if location == "" {
		location = district
	}

	queryText := fmt.Sprintf("Farming conditions, soil, and suitable crops for %s", location)
	if _, _, err := s.store.Query(ctx, queryText, location, retrievalTopN); err != nil {
		slog.Error("querying knowledge base for crop recommendations", "location", location, "error", err)
		return Recommendations{Favorable: []Crop{}, Unfavorable: []Crop{}}
	}

	return Recommendations{
		Favorable: []Crop{
			{Name: "Rice", Reason: "Ideal monsoon conditions", Favorability: "Excellent"},
			{Name: "Wheat", Reason: "Suitable winter temperature", Favorability: "Excellent"},
			{Name: "Cotton", Reason: "Good soil drainage", Favorability: "Excellent"},
		},
		Unfavorable: []Crop{
			{Name: "Apple", Reason: "Insufficient chilling hours", Favorability: "Challenging"},
			{Name: "Saffron", Reason: "Requires specific cold, dry climate", Favorability: "Challenging"},
		},
	}
}
