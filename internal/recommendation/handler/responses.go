package handler

import (
	"time"

	"clinrec/internal/recommendation"
)

// RecommendationResponse is the HTTP response for POST /evaluate and
// GET /recommendation/{id}. The owner is deliberately omitted.
type RecommendationResponse struct {
	PatientID        string `json:"patient_id"`
	RecommendationID string `json:"recommendation_id"`
	Recommendation   string `json:"recommendation"`
	Timestamp        string `json:"timestamp"`
}

// FromRecommendation converts a domain recommendation to an HTTP response.
func FromRecommendation(rec *recommendation.Recommendation) *RecommendationResponse {
	return &RecommendationResponse{
		PatientID:        rec.PatientID,
		RecommendationID: rec.RecommendationID,
		Recommendation:   rec.Text,
		Timestamp:        rec.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}
