package intent

import (
	"testing"

	"github.com/adaptix/adaptix/internal/config"
	"github.com/adaptix/adaptix/internal/signals"
)

func newTestScorer() *Scorer {
	return NewScorer(config.DefaultScoring().Intent)
}

// fullFunnelPath walks home to payment over three minutes.
func fullFunnelPath() signals.NavigationPath {
	base := int64(1700000000000)
	return signals.NavigationPath{
		Pages:      []string{"/home", "/products", "/pricing", "/checkout", "/payment"},
		Timestamps: []int64{base, base + 30000, base + 60000, base + 120000, base + 180000},
		Interactions: []signals.InteractionEvent{
			{Type: "click", Target: "buy-now-button", Timestamp: base + 55000},
			{Type: "click", Target: "plan-selector", Timestamp: base + 65000},
			{Type: "hover", Target: "pricing-table", Timestamp: base + 70000},
			{Type: "scroll", Target: "body", Timestamp: base + 90000},
			{Type: "form", Target: "checkout-form", Timestamp: base + 150000},
			{Type: "click", Target: "pay-button", Timestamp: base + 175000},
		},
		ExitPage: "/payment",
	}
}

func TestRecognizeFullFunnel(t *testing.T) {
	s := newTestScorer()
	profile := s.Recognize(fullFunnelPath())

	if profile.Stage != signals.StagePurchase {
		t.Fatalf("stage = %q, want purchase", profile.Stage)
	}
	if profile.Score < 80 {
		t.Errorf("score = %.1f, want >= 80", profile.Score)
	}
	if profile.Indicators.PricingPageViews != 1 {
		t.Errorf("pricing views = %d, want 1", profile.Indicators.PricingPageViews)
	}
	if profile.Indicators.CTAInteractions == 0 {
		t.Error("expected CTA interactions to be counted")
	}
	if profile.Confidence <= 0 || profile.Confidence > 100 {
		t.Errorf("confidence = %.1f out of range", profile.Confidence)
	}
	if profile.PredictedConversion <= 0 || profile.PredictedConversion > 100 {
		t.Errorf("predicted conversion = %.1f out of range", profile.PredictedConversion)
	}
}

func TestRecognizeDegenerate(t *testing.T) {
	s := newTestScorer()

	cases := map[string]signals.NavigationPath{
		"empty path":       {},
		"single timestamp": {Pages: []string{"/home"}, Timestamps: []int64{1700000000000}},
		"no pages":         {Timestamps: []int64{1, 2}},
	}

	for name, path := range cases {
		t.Run(name, func(t *testing.T) {
			profile := s.Recognize(path)
			if profile.Score != 0 {
				t.Errorf("score = %.1f, want 0", profile.Score)
			}
			if profile.Stage != signals.StageAwareness {
				t.Errorf("stage = %q, want awareness", profile.Stage)
			}
		})
	}
}

func TestStageMonotoneInScore(t *testing.T) {
	s := newTestScorer()

	stageRank := map[signals.FunnelStage]int{
		signals.StageAwareness:     0,
		signals.StageConsideration: 1,
		signals.StageDecision:      2,
		signals.StagePurchase:      3,
	}

	base := int64(1700000000000)
	paths := []signals.NavigationPath{
		{
			Pages:      []string{"/home", "/about"},
			Timestamps: []int64{base, base + 5000},
		},
		{
			Pages:      []string{"/home", "/blog/guide", "/products"},
			Timestamps: []int64{base, base + 40000, base + 80000},
		},
		{
			Pages:      []string{"/home", "/products", "/pricing"},
			Timestamps: []int64{base, base + 50000, base + 110000},
			Interactions: []signals.InteractionEvent{
				{Type: "click", Target: "pricing-link"},
				{Type: "form", Target: "trial-form"},
			},
		},
		fullFunnelPath(),
	}

	type result struct {
		score float64
		stage signals.FunnelStage
	}
	results := make([]result, 0, len(paths))
	for _, p := range paths {
		profile := s.Recognize(p)
		results = append(results, result{profile.Score, profile.Stage})
	}

	for i := 1; i < len(results); i++ {
		if results[i].score < results[i-1].score {
			t.Fatalf("test paths not ordered by score: %.1f then %.1f", results[i-1].score, results[i].score)
		}
		if stageRank[results[i].stage] < stageRank[results[i-1].stage] {
			t.Errorf("stage rank decreased while score rose: %q (%.1f) then %q (%.1f)",
				results[i-1].stage, results[i-1].score, results[i].stage, results[i].score)
		}
	}
}

func TestUrgency(t *testing.T) {
	s := newTestScorer()
	base := int64(1700000000000)

	t.Run("high interaction rate", func(t *testing.T) {
		interactions := make([]signals.InteractionEvent, 12)
		for i := range interactions {
			interactions[i] = signals.InteractionEvent{Type: "click", Target: "option"}
		}
		profile := s.Recognize(signals.NavigationPath{
			Pages:        []string{"/home", "/pricing"},
			Timestamps:   []int64{base, base + 60000}, // one minute
			Interactions: interactions,
		})
		if profile.Urgency != signals.LevelHigh {
			t.Errorf("urgency = %q, want high", profile.Urgency)
		}
	})

	t.Run("no interactions", func(t *testing.T) {
		profile := s.Recognize(signals.NavigationPath{
			Pages:      []string{"/home", "/pricing"},
			Timestamps: []int64{base, base + 60000},
		})
		if profile.Urgency != signals.LevelLow {
			t.Errorf("urgency = %q, want low", profile.Urgency)
		}
	})

	t.Run("zero time span guards division", func(t *testing.T) {
		profile := s.Recognize(signals.NavigationPath{
			Pages:        []string{"/home", "/pricing"},
			Timestamps:   []int64{base, base},
			Interactions: []signals.InteractionEvent{{Type: "click"}},
		})
		if profile.Urgency != signals.LevelLow {
			t.Errorf("urgency = %q, want low", profile.Urgency)
		}
	})
}

func TestConfidenceDiscounts(t *testing.T) {
	s := newTestScorer()
	base := int64(1700000000000)

	// Two pages, one interaction: both discounts apply.
	profile := s.Recognize(signals.NavigationPath{
		Pages:        []string{"/pricing", "/checkout"},
		Timestamps:   []int64{base, base + 60000},
		Interactions: []signals.InteractionEvent{{Type: "click", Target: "buy"}},
	})

	want := profile.Score * 0.8 * 0.9
	if diff := profile.Confidence - want; diff > 0.001 || diff < -0.001 {
		t.Errorf("confidence = %.3f, want %.3f (score %.3f discounted)", profile.Confidence, want, profile.Score)
	}
}

func TestRepeatVisitScore(t *testing.T) {
	if got := repeatVisitScore([]string{"/a", "/b", "/a", "/a"}); got != 0.5 {
		t.Errorf("repeat score = %.2f, want 0.5", got)
	}
	if got := repeatVisitScore([]string{"/a", "/b"}); got != 0 {
		t.Errorf("repeat score = %.2f, want 0", got)
	}
}
