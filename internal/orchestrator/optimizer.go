package orchestrator

import (
	"time"

	"github.com/google/uuid"

	"github.com/adaptix/adaptix/internal/adaptation"
	"github.com/adaptix/adaptix/internal/config"
	"github.com/adaptix/adaptix/internal/device"
	"github.com/adaptix/adaptix/internal/intent"
	"github.com/adaptix/adaptix/internal/persona"
	"github.com/adaptix/adaptix/internal/signals"
)

// Inputs bundles the raw signals one optimization pass consumes.
type Inputs struct {
	UserAgent string                          `json:"user_agent"`
	Behavior  signals.BehaviorSignal          `json:"behavior"`
	Device    signals.DeviceCapabilityProfile `json:"device"`
	Path      signals.NavigationPath          `json:"path"`
	Metrics   signals.UXMetrics               `json:"metrics"`
}

// Optimizer composes the four engines into the single facade the service
// exposes. The classifier, profiler and scorer are pure; the adaptation
// engine carries the only mutable state (its outcome history), so one
// Optimizer serves exactly one visitor session.
type Optimizer struct {
	personas    *persona.Classifier
	devices     *device.Profiler
	intents     *intent.Scorer
	adaptations *adaptation.Engine
}

func New(cfg config.ScoringConfig) *Optimizer {
	return &Optimizer{
		personas:    persona.NewClassifier(cfg.Persona),
		devices:     device.NewProfiler(),
		intents:     intent.NewScorer(cfg.Intent),
		adaptations: adaptation.NewEngine(cfg.Adaptation),
	}
}

// Optimize runs all four engines over one set of inputs and composes the
// published profile. Each call supersedes any previous profile wholesale.
func (o *Optimizer) Optimize(sessionID string, in Inputs) signals.OptimizationProfile {
	now := time.Now()

	p := o.personas.Classify(in.UserAgent, in.Behavior)
	p.ID = uuid.New().String()
	p.DetectedAt = now
	p.UpdatedAt = now

	return signals.OptimizationProfile{
		ProfileID:   uuid.New().String(),
		SessionID:   sessionID,
		Persona:     p,
		Layout:      o.devices.Optimize(in.Device),
		Intent:      o.intents.Recognize(in.Path),
		Adjustments: o.adaptations.Adapt(in.Metrics),
		GeneratedAt: now,
	}
}

// ClassifyPersona exposes the persona engine on its own.
func (o *Optimizer) ClassifyPersona(userAgent string, b signals.BehaviorSignal) signals.PersonaProfile {
	now := time.Now()
	p := o.personas.Classify(userAgent, b)
	p.ID = uuid.New().String()
	p.DetectedAt = now
	p.UpdatedAt = now
	return p
}

// OptimizeForDevice exposes the device engine on its own.
func (o *Optimizer) OptimizeForDevice(d signals.DeviceCapabilityProfile) signals.OptimizedLayout {
	return o.devices.Optimize(d)
}

// RecognizeIntent exposes the intent engine on its own.
func (o *Optimizer) RecognizeIntent(p signals.NavigationPath) signals.PurchaseIntentProfile {
	return o.intents.Recognize(p)
}

// Adapt exposes the adaptation engine on its own.
func (o *Optimizer) Adapt(m signals.UXMetrics) signals.AdjustmentSet {
	return o.adaptations.Adapt(m)
}

// RecordOutcome feeds one observed adjustment outcome into the learning loop.
func (o *Optimizer) RecordOutcome(adj signals.AdjustmentSet, after signals.UXMetrics) {
	o.adaptations.RecordOutcome(adj, after)
}

// OutcomeHistory returns the retained adjustment outcomes, oldest first.
func (o *Optimizer) OutcomeHistory() []adaptation.OutcomeRecord {
	return o.adaptations.History()
}
