package intent

import (
	"strings"

	"github.com/adaptix/adaptix/internal/config"
	"github.com/adaptix/adaptix/internal/signals"
)

// highIntentKeywords flag pages whose visit alone suggests buying interest.
var highIntentKeywords = []string{"pricing", "checkout", "compare", "demo", "trial", "contact"}

// funnelKeywords are ordered by purchase readiness; the deepest matched
// stage drives the progression score.
var funnelKeywords = []string{"product", "pricing", "checkout", "payment"}

// contentKeywords flag research-style content pages.
var contentKeywords = []string{"blog", "article", "guide", "tutorial", "review"}

// ctaKeywords flag interaction targets that count as call-to-action use.
var ctaKeywords = []string{"buy", "cta", "add-to-cart", "signup", "subscribe", "purchase"}

// interactionWeights rank interaction types by the commitment they imply.
var interactionWeights = map[string]float64{
	"click":  0.3,
	"hover":  0.2,
	"scroll": 0.1,
	"form":   0.4,
}

const maxInteractionWeight = 0.4

// Scorer maps a navigation path to a purchase intent profile. Scoring is
// deterministic; paths with fewer than two timestamps degrade to score 0 at
// the awareness stage.
type Scorer struct {
	cfg config.IntentConfig
}

func NewScorer(cfg config.IntentConfig) *Scorer {
	if cfg.Weights == (config.IntentWeights{}) {
		cfg = config.DefaultScoring().Intent
	}
	return &Scorer{cfg: cfg}
}

func (s *Scorer) Recognize(p signals.NavigationPath) signals.PurchaseIntentProfile {
	indicators := buildIndicators(p)

	if len(p.Timestamps) < 2 || len(p.Pages) == 0 {
		return signals.PurchaseIntentProfile{
			Score:      0,
			Stage:      signals.StageAwareness,
			Indicators: indicators,
			Urgency:    signals.LevelLow,
			Confidence: 0,
		}
	}

	progression := funnelProgression(p.Pages)

	weighted := s.cfg.Weights.PageSequence*pageSequenceScore(p.Pages, progression) +
		s.cfg.Weights.TimeAllocation*s.timeAllocationScore(p.Timestamps) +
		s.cfg.Weights.InteractionDepth*interactionDepthScore(p.Interactions) +
		s.cfg.Weights.ContentConsumption*contentConsumptionScore(p.Pages) +
		s.cfg.Weights.RepeatVisits*repeatVisitScore(p.Pages)

	// Completing the funnel is far stronger evidence than any weighted mix
	// of browsing signals, so depth of progression scales the final score.
	score := clamp(weighted*100*(1+progression), 0, 100)

	stage := s.stageFor(score)
	urgency := s.urgency(p)

	confidence := score
	if len(p.Pages) < 3 {
		confidence *= 0.8
	}
	if len(p.Interactions) < 5 {
		confidence *= 0.9
	}

	return signals.PurchaseIntentProfile{
		Score:               score,
		Stage:               stage,
		Indicators:          indicators,
		Urgency:             urgency,
		Confidence:          clamp(confidence, 0, 100),
		PredictedConversion: clamp(score*stageMultiplier(stage)*urgencyMultiplier(urgency), 0, 100),
	}
}

// pageSequenceScore combines the high-intent page fraction (0.6) with funnel
// progression (0.4).
func pageSequenceScore(pages []string, progression float64) float64 {
	matched := 0
	for _, page := range pages {
		if containsAny(page, highIntentKeywords) {
			matched++
		}
	}
	fraction := float64(matched) / float64(len(pages))
	return 0.6*fraction + 0.4*progression
}

// funnelProgression is the deepest matched funnel stage index over the
// stage count: a path reaching payment scores 1.0.
func funnelProgression(pages []string) float64 {
	deepest := 0
	for i, keyword := range funnelKeywords {
		for _, page := range pages {
			if strings.Contains(strings.ToLower(page), keyword) {
				deepest = i + 1
				break
			}
		}
	}
	return float64(deepest) / float64(len(funnelKeywords))
}

// timeAllocationScore normalizes the mean inter-page dwell against the
// configured reference, capped at 1.0.
func (s *Scorer) timeAllocationScore(timestamps []int64) float64 {
	var totalMs int64
	for i := 1; i < len(timestamps); i++ {
		delta := timestamps[i] - timestamps[i-1]
		if delta > 0 {
			totalMs += delta
		}
	}
	meanSec := float64(totalMs) / 1000 / float64(len(timestamps)-1)
	return clamp(meanSec/s.cfg.DwellReferenceSec, 0, 1)
}

// interactionDepthScore averages the per-type weights and normalizes against
// the heaviest weight so an all-form session scores 1.0.
func interactionDepthScore(events []signals.InteractionEvent) float64 {
	if len(events) == 0 {
		return 0
	}
	var sum float64
	for _, e := range events {
		sum += interactionWeights[strings.ToLower(e.Type)]
	}
	return clamp(sum/float64(len(events))/maxInteractionWeight, 0, 1)
}

func contentConsumptionScore(pages []string) float64 {
	matched := 0
	for _, page := range pages {
		if containsAny(page, contentKeywords) {
			matched++
		}
	}
	return float64(matched) / float64(len(pages))
}

// repeatVisitScore is the fraction of page visits that revisit an
// already-seen page.
func repeatVisitScore(pages []string) float64 {
	seen := make(map[string]bool, len(pages))
	revisits := 0
	for _, page := range pages {
		if seen[page] {
			revisits++
		}
		seen[page] = true
	}
	return float64(revisits) / float64(len(pages))
}

func (s *Scorer) stageFor(score float64) signals.FunnelStage {
	switch {
	case score >= s.cfg.PurchaseThreshold:
		return signals.StagePurchase
	case score >= s.cfg.DecisionThreshold:
		return signals.StageDecision
	case score >= s.cfg.ConsiderationThreshold:
		return signals.StageConsideration
	}
	return signals.StageAwareness
}

// urgency is derived from the interaction rate per minute of session.
func (s *Scorer) urgency(p signals.NavigationPath) signals.Level {
	spanMs := p.Timestamps[len(p.Timestamps)-1] - p.Timestamps[0]
	if spanMs <= 0 || len(p.Interactions) == 0 {
		return signals.LevelLow
	}
	rate := float64(len(p.Interactions)) / (float64(spanMs) / 60000)
	switch {
	case rate > s.cfg.HighUrgencyRate:
		return signals.LevelHigh
	case rate > s.cfg.MediumUrgencyRate:
		return signals.LevelMedium
	}
	return signals.LevelLow
}

func stageMultiplier(stage signals.FunnelStage) float64 {
	switch stage {
	case signals.StagePurchase:
		return 0.9
	case signals.StageDecision:
		return 0.6
	case signals.StageConsideration:
		return 0.3
	}
	return 0.1
}

func urgencyMultiplier(u signals.Level) float64 {
	switch u {
	case signals.LevelHigh:
		return 1.2
	case signals.LevelMedium:
		return 1.0
	}
	return 0.8
}

func buildIndicators(p signals.NavigationPath) signals.IntentIndicators {
	ind := signals.IntentIndicators{PageViews: len(p.Pages)}

	if len(p.Timestamps) >= 2 {
		var totalMs int64
		for i := 1; i < len(p.Timestamps); i++ {
			if delta := p.Timestamps[i] - p.Timestamps[i-1]; delta > 0 {
				totalMs += delta
			}
		}
		ind.TimeOnPageSec = float64(totalMs) / 1000 / float64(len(p.Timestamps)-1)
	}

	for _, page := range p.Pages {
		lower := strings.ToLower(page)
		if strings.Contains(lower, "pricing") {
			ind.PricingPageViews++
		}
		if strings.Contains(lower, "compare") || strings.Contains(lower, "vs") {
			ind.ComparisonActions++
		}
	}
	for _, e := range p.Interactions {
		if containsAny(e.Target, ctaKeywords) {
			ind.CTAInteractions++
		}
		if strings.Contains(strings.ToLower(e.Target), "compare") {
			ind.ComparisonActions++
		}
	}
	return ind
}

func containsAny(s string, keywords []string) bool {
	lower := strings.ToLower(s)
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
