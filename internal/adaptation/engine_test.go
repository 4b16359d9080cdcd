package adaptation

import (
	"reflect"
	"testing"

	"github.com/adaptix/adaptix/internal/config"
	"github.com/adaptix/adaptix/internal/signals"
)

func newTestEngine() *Engine {
	return NewEngine(config.DefaultScoring().Adaptation)
}

func slowMetrics(loadMs float64) signals.UXMetrics {
	return signals.UXMetrics{
		Performance: signals.PerformanceMetrics{LoadTimeMs: loadMs},
		Engagement:  signals.EngagementMetrics{ScrollDepth: 0.7},
		Conversion:  signals.ConversionMetrics{ConversionRate: 0.05},
	}
}

func TestAdaptCriticalLoadTime(t *testing.T) {
	e := newTestEngine()

	set := e.Adapt(slowMetrics(6000))

	if set.Performance == nil {
		t.Fatal("expected performance bundle for 6000ms load")
	}
	if !set.Performance.ReduceImageQuality {
		t.Error("expected reduce_image_quality above the critical threshold")
	}
	if !set.Performance.EnableLazyLoading || !set.Performance.DeferScripts {
		t.Error("expected base performance toggles")
	}
	if set.Engagement != nil || set.Conversion != nil {
		t.Error("unrelated bundles should be absent")
	}
}

func TestAdaptModeratelySlowLoadTime(t *testing.T) {
	e := newTestEngine()

	set := e.Adapt(slowMetrics(4000))
	if set.Performance == nil {
		t.Fatal("expected performance bundle for 4000ms load")
	}
	if set.Performance.ReduceImageQuality {
		t.Error("reduce_image_quality should stay off below the critical threshold")
	}
}

func TestAdaptEngagementAndConversion(t *testing.T) {
	e := newTestEngine()

	set := e.Adapt(signals.UXMetrics{
		Performance: signals.PerformanceMetrics{LoadTimeMs: 1000},
		Engagement:  signals.EngagementMetrics{ScrollDepth: 0.1},
		Conversion:  signals.ConversionMetrics{ConversionRate: 0.005},
	})

	if set.Engagement == nil {
		t.Fatal("expected engagement bundle for scroll depth 0.1")
	}
	if set.Conversion == nil {
		t.Fatal("expected conversion bundle for conversion rate 0.005")
	}
	if set.Performance != nil {
		t.Error("performance bundle should be absent for a fast page")
	}
}

func TestAdaptHealthyMetricsEmpty(t *testing.T) {
	e := newTestEngine()

	set := e.Adapt(signals.UXMetrics{
		Performance: signals.PerformanceMetrics{LoadTimeMs: 900},
		Engagement:  signals.EngagementMetrics{ScrollDepth: 0.8},
		Conversion:  signals.ConversionMetrics{ConversionRate: 0.08},
	})
	if !set.Empty() {
		t.Errorf("expected empty set, got %+v", set)
	}
}

func TestAdaptConditionalToggles(t *testing.T) {
	e := newTestEngine()

	set := e.Adapt(signals.UXMetrics{
		Engagement: signals.EngagementMetrics{ScrollDepth: 0.1, BounceRate: 0.7},
		Conversion: signals.ConversionMetrics{ConversionRate: 0.005, AbandonmentRate: 0.6},
	})

	if set.Engagement == nil || !set.Engagement.ShowExitIntentPrompt {
		t.Error("expected exit-intent prompt with bounce rate 0.7")
	}
	if set.Conversion == nil || !set.Conversion.SimplifyCheckout {
		t.Error("expected simplified checkout with abandonment 0.6")
	}
}

func TestAdaptIdempotent(t *testing.T) {
	e := newTestEngine()
	m := slowMetrics(6000)

	// Seed some history so the learning path runs too.
	e.RecordOutcome(e.Adapt(m), slowMetrics(2000))

	first := e.Adapt(m)
	for i := 0; i < 5; i++ {
		if got := e.Adapt(m); !reflect.DeepEqual(got, first) {
			t.Fatalf("call %d differed: %+v vs %+v", i, got, first)
		}
	}
}

func TestHistoryBound(t *testing.T) {
	e := newTestEngine()

	for i := 0; i < 101; i++ {
		e.RecordOutcome(signals.AdjustmentSet{
			Performance: &signals.PerformanceAdjustments{EnableLazyLoading: true},
		}, slowMetrics(float64(i)))
	}

	if got := e.HistoryLen(); got != 100 {
		t.Fatalf("history length = %d, want 100", got)
	}

	records := e.History()
	if len(records) != 100 {
		t.Fatalf("history records = %d, want 100", len(records))
	}
	// The first record (load time 0) must have been evicted.
	if records[0].After.Performance.LoadTimeMs != 1 {
		t.Errorf("oldest record load time = %.0f, want 1 (record 0 evicted)",
			records[0].After.Performance.LoadTimeMs)
	}
	if records[99].After.Performance.LoadTimeMs != 100 {
		t.Errorf("newest record load time = %.0f, want 100",
			records[99].After.Performance.LoadTimeMs)
	}
}

func TestRegressionGuardStripsAggressiveToggles(t *testing.T) {
	e := newTestEngine()

	// Past performance adjustments that never helped: scroll depth and
	// conversion at zero, load time pinned at the ceiling.
	bad := signals.UXMetrics{
		Performance: signals.PerformanceMetrics{LoadTimeMs: 10000},
	}
	for i := 0; i < 5; i++ {
		e.RecordOutcome(signals.AdjustmentSet{
			Performance: &signals.PerformanceAdjustments{EnableLazyLoading: true},
		}, bad)
	}

	set := e.Adapt(slowMetrics(6000))
	if set.Performance == nil {
		t.Fatal("expected performance bundle")
	}
	if set.Performance.ReduceImageQuality {
		t.Error("regression guard should strip reduce_image_quality")
	}
	if !set.Performance.EnableLazyLoading {
		t.Error("non-aggressive toggles must survive the regression guard")
	}
}

func TestReinforcementForcesAggressiveToggles(t *testing.T) {
	e := newTestEngine()

	good := signals.UXMetrics{
		Performance: signals.PerformanceMetrics{LoadTimeMs: 500},
		Engagement:  signals.EngagementMetrics{ScrollDepth: 0.9},
		Conversion:  signals.ConversionMetrics{ConversionRate: 0.05},
	}
	for i := 0; i < 5; i++ {
		e.RecordOutcome(signals.AdjustmentSet{
			Performance: &signals.PerformanceAdjustments{EnableLazyLoading: true},
		}, good)
	}

	// 4000ms would not normally trip reduce_image_quality.
	set := e.Adapt(slowMetrics(4000))
	if set.Performance == nil {
		t.Fatal("expected performance bundle")
	}
	if !set.Performance.ReduceImageQuality {
		t.Error("reinforcement should force reduce_image_quality on")
	}
}

func TestLearningIgnoresUnrelatedBundles(t *testing.T) {
	e := newTestEngine()

	// Only engagement history exists; a performance-only adjustment set
	// shares no bundle with it, so learning must not fire.
	for i := 0; i < 5; i++ {
		e.RecordOutcome(signals.AdjustmentSet{
			Engagement: &signals.EngagementAdjustments{AddJumpLinks: true},
		}, signals.UXMetrics{Engagement: signals.EngagementMetrics{ScrollDepth: 0.9}})
	}

	set := e.Adapt(slowMetrics(4000))
	if set.Performance == nil {
		t.Fatal("expected performance bundle")
	}
	if set.Performance.ReduceImageQuality {
		t.Error("unrelated history must not reinforce the performance bundle")
	}
}
