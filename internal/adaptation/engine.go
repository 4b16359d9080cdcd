package adaptation

import (
	"container/ring"
	"sync"
	"time"

	"github.com/adaptix/adaptix/internal/config"
	"github.com/adaptix/adaptix/internal/signals"
)

// loadTimeCeilingMs normalizes load time in the improvement proxy: anything
// at or beyond this counts as zero improvement on the performance axis.
const loadTimeCeilingMs = 10000

// OutcomeRecord pairs an applied adjustment set with the metrics observed
// afterwards.
type OutcomeRecord struct {
	Adjustments signals.AdjustmentSet `json:"adjustments"`
	After       signals.UXMetrics     `json:"after"`
	RecordedAt  time.Time             `json:"recorded_at"`
}

// Engine turns a UX metrics snapshot into corrective adjustment bundles and
// scales their aggressiveness from the recorded outcomes of earlier
// adjustments. The outcome history lives in a fixed-capacity ring buffer, so
// the memory bound is structural: the 101st record overwrites the oldest.
//
// Adapt is read-only and therefore idempotent for a frozen snapshot and
// unchanged history; RecordOutcome is the sole mutator. This is a moving-
// average feedback control over hand-tuned thresholds, not a trained model.
type Engine struct {
	cfg config.AdaptationConfig

	mu      sync.Mutex
	history *ring.Ring
	stored  int
}

func NewEngine(cfg config.AdaptationConfig) *Engine {
	if cfg.HistorySize == 0 {
		cfg = config.DefaultScoring().Adaptation
	}
	return &Engine{
		cfg:     cfg,
		history: ring.New(cfg.HistorySize),
	}
}

// Adapt never fails; when no threshold trips, the returned set is empty.
func (e *Engine) Adapt(m signals.UXMetrics) signals.AdjustmentSet {
	set := e.compose(m)
	if set.Empty() {
		return set
	}
	return e.applyLearning(set)
}

// RecordOutcome appends one adjustment/outcome pair to the bounded history.
func (e *Engine) RecordOutcome(adj signals.AdjustmentSet, after signals.UXMetrics) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.history.Value = OutcomeRecord{
		Adjustments: adj,
		After:       after,
		RecordedAt:  time.Now(),
	}
	e.history = e.history.Next()
	if e.stored < e.cfg.HistorySize {
		e.stored++
	}
}

// HistoryLen reports how many outcome records are currently retained.
func (e *Engine) HistoryLen() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stored
}

// History returns the retained outcome records, oldest first.
func (e *Engine) History() []OutcomeRecord {
	e.mu.Lock()
	defer e.mu.Unlock()

	records := make([]OutcomeRecord, 0, e.stored)
	e.history.Do(func(v interface{}) {
		if v == nil {
			return
		}
		records = append(records, v.(OutcomeRecord))
	})
	return records
}

func (e *Engine) compose(m signals.UXMetrics) signals.AdjustmentSet {
	var set signals.AdjustmentSet

	if m.Performance.LoadTimeMs > e.cfg.SlowLoadMs {
		set.Performance = &signals.PerformanceAdjustments{
			EnableLazyLoading:    true,
			DeferScripts:         true,
			ReduceImageQuality:   m.Performance.LoadTimeMs > e.cfg.CriticalLoadMs,
			InlineCriticalAssets: m.Performance.RenderTimeMs > e.cfg.SlowRenderMs,
		}
	}

	if m.Engagement.ScrollDepth < e.cfg.LowScrollDepth {
		set.Engagement = &signals.EngagementAdjustments{
			RaiseCTAProminence:   true,
			AddJumpLinks:         true,
			ShowExitIntentPrompt: m.Engagement.BounceRate > e.cfg.HighBounceRate,
		}
	}

	if m.Conversion.ConversionRate < e.cfg.LowConversionRate {
		set.Conversion = &signals.ConversionAdjustments{
			HighlightTrustSignals: true,
			ShowSocialProof:       true,
			SimplifyCheckout:      m.Conversion.AbandonmentRate > e.cfg.HighAbandonmentRate,
		}
	}

	return set
}

// applyLearning scans the history for records sharing at least one active
// bundle with the current set and averages their improvement proxy. A poor
// average strips the most aggressive toggles (regression guard); a strong
// average force-enables them (reinforcement).
func (e *Engine) applyLearning(set signals.AdjustmentSet) signals.AdjustmentSet {
	e.mu.Lock()
	defer e.mu.Unlock()

	var sum float64
	matches := 0
	e.history.Do(func(v interface{}) {
		if v == nil {
			return
		}
		rec := v.(OutcomeRecord)
		if !sharesBundle(set, rec.Adjustments) {
			return
		}
		sum += improvement(rec.After)
		matches++
	})

	if matches == 0 {
		return set
	}

	avg := sum / float64(matches)
	switch {
	case avg < e.cfg.RegressionFloor:
		stripAggressive(&set)
	case avg > e.cfg.ReinforceCeiling:
		reinforceAggressive(&set)
	}
	return set
}

// improvement is the proxy signal the feedback loop averages: engagement
// depth, conversion rate, and inverted normalized load time.
func improvement(m signals.UXMetrics) float64 {
	loadScore := 1 - m.Performance.LoadTimeMs/loadTimeCeilingMs
	if loadScore < 0 {
		loadScore = 0
	}
	return (m.Engagement.ScrollDepth + m.Conversion.ConversionRate + loadScore) / 3
}

func sharesBundle(a, b signals.AdjustmentSet) bool {
	return (a.Performance != nil && b.Performance != nil) ||
		(a.Engagement != nil && b.Engagement != nil) ||
		(a.Conversion != nil && b.Conversion != nil)
}

// The aggressive toggles are the ones with visible user impact; they are the
// first stripped and the first reinforced.
func stripAggressive(set *signals.AdjustmentSet) {
	if set.Performance != nil {
		set.Performance.ReduceImageQuality = false
	}
	if set.Engagement != nil {
		set.Engagement.ShowExitIntentPrompt = false
	}
	if set.Conversion != nil {
		set.Conversion.AddUrgencyBanner = false
	}
}

func reinforceAggressive(set *signals.AdjustmentSet) {
	if set.Performance != nil {
		set.Performance.ReduceImageQuality = true
	}
	if set.Engagement != nil {
		set.Engagement.ShowExitIntentPrompt = true
	}
	if set.Conversion != nil {
		set.Conversion.AddUrgencyBanner = true
	}
}
