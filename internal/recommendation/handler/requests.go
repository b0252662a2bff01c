package handler

import (
	"strings"

	"clinrec/internal/recommendation"
	dErrors "clinrec/pkg/domain-errors"
)

// EvaluateRequest is the HTTP request body for POST /evaluate.
type EvaluateRequest struct {
	PatientData *PatientPayload `json:"patient_data"`
}

// PatientPayload carries one patient's attributes. Required fields are
// pointers so a missing field can be told apart from a zero value.
type PatientPayload struct {
	Name          *string `json:"name"`
	Age           *int    `json:"age"`
	Height        *int    `json:"height"`
	Weight        *int    `json:"weight"`
	RecentSurgery *bool   `json:"recent_surgery"`
	AIDescription *string `json:"ai_description"`
}

// Validate checks presence and ranges, failing on the first violation.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *EvaluateRequest) Validate() error {
	if r == nil || r.PatientData == nil {
		return dErrors.New(dErrors.CodeBadRequest, "missing 'patient_data' in the request body")
	}

	p := r.PatientData
	if p.Name == nil || strings.TrimSpace(*p.Name) == "" {
		return dErrors.New(dErrors.CodeValidation, "patient_data.name is required")
	}
	if p.Age == nil {
		return dErrors.New(dErrors.CodeValidation, "patient_data.age is required")
	}
	if *p.Age < 0 {
		return dErrors.New(dErrors.CodeValidation, "patient_data.age must not be negative")
	}
	if p.Height == nil {
		return dErrors.New(dErrors.CodeValidation, "patient_data.height is required")
	}
	if *p.Height <= 0 {
		return dErrors.New(dErrors.CodeValidation, "patient_data.height must be positive")
	}
	if p.Weight == nil {
		return dErrors.New(dErrors.CodeValidation, "patient_data.weight is required")
	}
	if *p.Weight <= 0 {
		return dErrors.New(dErrors.CodeValidation, "patient_data.weight must be positive")
	}
	if p.RecentSurgery == nil {
		return dErrors.New(dErrors.CodeValidation, "patient_data.recent_surgery is required")
	}

	return nil
}

// Patient returns the validated attributes as the domain type.
func (r *EvaluateRequest) Patient() recommendation.PatientData {
	p := r.PatientData
	patient := recommendation.PatientData{
		Name:          strings.TrimSpace(*p.Name),
		Age:           *p.Age,
		HeightCm:      *p.Height,
		WeightKg:      *p.Weight,
		RecentSurgery: *p.RecentSurgery,
	}
	if p.AIDescription != nil {
		patient.Description = *p.AIDescription
	}
	return patient
}
