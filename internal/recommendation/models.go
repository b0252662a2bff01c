// Package recommendation holds the domain model for clinical recommendations:
// patient attributes in, recommendation out, owned by the principal who asked.
package recommendation

import "time"

// PatientData is one patient's attributes for a single evaluation. Patients
// are not separately modeled; each evaluation mints a fresh patient identity.
type PatientData struct {
	Name          string
	Age           int
	HeightCm      int
	WeightKg      int
	RecentSurgery bool
	// Description is optional free text. When present, the engine attempts
	// remote generation before falling back to the rules.
	Description string
}

// BMI computes the body-mass index from the metric attributes.
func (p PatientData) BMI() float64 {
	heightM := float64(p.HeightCm) / 100.0
	return float64(p.WeightKg) / (heightM * heightM)
}

// Recommendation is the immutable outcome of one evaluation. Created exactly
// once, never updated, never deleted.
type Recommendation struct {
	RecommendationID string
	PatientID        string
	Text             string
	CreatedAt        time.Time
	// Owner is the username of the principal who created the recommendation.
	// Used solely for access control.
	Owner string
}

// Event is the wire snapshot of a recommendation published to the queue.
// The consumer treats each delivery as an independent append; duplicates are
// possible and acceptable.
type Event struct {
	Timestamp        string `json:"timestamp"`
	RecommendationID string `json:"recommendation_id"`
	PatientID        string `json:"patient_id"`
	Recommendation   string `json:"recommendation"`
}

// NewEvent snapshots a recommendation for publishing.
func NewEvent(rec Recommendation) Event {
	return Event{
		Timestamp:        rec.CreatedAt.UTC().Format(time.RFC3339Nano),
		RecommendationID: rec.RecommendationID,
		PatientID:        rec.PatientID,
		Recommendation:   rec.Text,
	}
}
