// Package engine turns patient attributes into recommendation text. Rules are
// pure domain logic; an optional remote generator is consulted first and any
// failure there falls through to the rules, so Decide never fails.
package engine

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"clinrec/internal/recommendation"
)

// Generator produces recommendation text from patient attributes. Remote
// implementations may take a network round trip; the engine bounds it.
type Generator interface {
	Generate(ctx context.Context, patient recommendation.PatientData, bmi float64) (string, error)
}

// Recommendation phrases produced by the rules.
const (
	PhysicalTherapy      = "Physical Therapy"
	WeightManagement     = "Weight Management Program"
	PostOpRehabilitation = "Post-Op Rehabilitation Plan"
	GeneralCheckup       = "General Health Checkup"
)

const defaultGenerateTimeout = 10 * time.Second

// Engine decides on a recommendation. The zero value is not usable; construct
// with New.
type Engine struct {
	generator Generator
	timeout   time.Duration
	logger    *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithGenerator enables the remote generation path.
func WithGenerator(g Generator) Option {
	return func(e *Engine) {
		e.generator = g
	}
}

// WithGenerateTimeout bounds the remote generation call.
func WithGenerateTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// New constructs an engine. Without WithGenerator it is purely rule-based.
func New(logger *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		timeout: defaultGenerateTimeout,
		logger:  logger,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Decide produces the recommendation text for one patient. The remote
// generator is attempted only when a description is present; a timeout,
// error, or empty result falls through to the deterministic rules.
func (e *Engine) Decide(ctx context.Context, patient recommendation.PatientData) string {
	if e.generator != nil && patient.Description != "" {
		genCtx, cancel := context.WithTimeout(ctx, e.timeout)
		text, err := e.generator.Generate(genCtx, patient, patient.BMI())
		cancel()
		if err != nil {
			e.logger.WarnContext(ctx, "remote generation failed, using rules", "error", err)
		} else if text = strings.TrimSpace(text); text != "" {
			return text
		}
	}
	return Evaluate(patient)
}

// Evaluate applies the deterministic rule set. Rules are evaluated
// independently, not mutually exclusively, and matched phrases keep a fixed
// order.
func Evaluate(patient recommendation.PatientData) string {
	var matched []string

	if patient.Age >= 65 && strings.Contains(strings.ToLower(patient.Description), "chronic pain") {
		matched = append(matched, PhysicalTherapy)
	}
	if patient.BMI() >= 30 {
		matched = append(matched, WeightManagement)
	}
	if patient.RecentSurgery {
		matched = append(matched, PostOpRehabilitation)
	}
	if len(matched) == 0 {
		matched = append(matched, GeneralCheckup)
	}

	return strings.Join(matched, ". ") + "."
}
