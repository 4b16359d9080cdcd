package storage

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/adaptix/adaptix/internal/adaptation"
	"github.com/adaptix/adaptix/internal/signals"
)

const sinkBufferSize = 100

// Sink buffers profile and outcome rows and writes them to ClickHouse in
// batches on a timer or when a buffer fills. Write failures are logged and
// the rows dropped; analytics loss never affects the optimization path. A
// nil Sink discards everything.
type Sink struct {
	ch *ClickHouse

	mu       sync.Mutex
	profiles []ProfileRow
	outcomes []OutcomeRow

	ticker *time.Ticker
	done   chan struct{}
}

func NewSink(ch *ClickHouse, flushInterval time.Duration) *Sink {
	if ch == nil {
		return nil
	}
	if flushInterval <= 0 {
		flushInterval = 5 * time.Second
	}
	s := &Sink{
		ch:       ch,
		profiles: make([]ProfileRow, 0, sinkBufferSize),
		outcomes: make([]OutcomeRow, 0, sinkBufferSize),
		ticker:   time.NewTicker(flushInterval),
		done:     make(chan struct{}),
	}
	go s.flushLoop()
	return s
}

// AddProfile queues one computed optimization profile for analytics.
func (s *Sink) AddProfile(siteID string, deviceClass signals.DeviceClass, p signals.OptimizationProfile) {
	if s == nil {
		return
	}
	row := ProfileRow{
		ProfileID:           p.ProfileID,
		SessionID:           p.SessionID,
		SiteID:              siteID,
		Variant:             string(p.Persona.Variant),
		Confidence:          p.Persona.Confidence,
		DeviceClass:         string(deviceClass),
		IntentScore:         p.Intent.Score,
		IntentStage:         string(p.Intent.Stage),
		Urgency:             string(p.Intent.Urgency),
		PredictedConversion: p.Intent.PredictedConversion,
		HasPerformanceAdj:   boolFlag(p.Adjustments.Performance != nil),
		HasEngagementAdj:    boolFlag(p.Adjustments.Engagement != nil),
		HasConversionAdj:    boolFlag(p.Adjustments.Conversion != nil),
		GeneratedAt:         p.GeneratedAt,
	}

	s.mu.Lock()
	s.profiles = append(s.profiles, row)
	shouldFlush := len(s.profiles) >= sinkBufferSize
	s.mu.Unlock()

	if shouldFlush {
		s.Flush()
	}
}

// AddOutcome queues one adaptation outcome for analytics.
func (s *Sink) AddOutcome(siteID, sessionID string, rec adaptation.OutcomeRecord) {
	if s == nil {
		return
	}
	row := OutcomeRow{
		SessionID:         sessionID,
		SiteID:            siteID,
		HasPerformanceAdj: boolFlag(rec.Adjustments.Performance != nil),
		HasEngagementAdj:  boolFlag(rec.Adjustments.Engagement != nil),
		HasConversionAdj:  boolFlag(rec.Adjustments.Conversion != nil),
		LoadTimeMs:        rec.After.Performance.LoadTimeMs,
		ScrollDepth:       rec.After.Engagement.ScrollDepth,
		ConversionRate:    rec.After.Conversion.ConversionRate,
		AbandonmentRate:   rec.After.Conversion.AbandonmentRate,
		BounceRate:        rec.After.Engagement.BounceRate,
		RecordedAt:        rec.RecordedAt,
	}

	s.mu.Lock()
	s.outcomes = append(s.outcomes, row)
	shouldFlush := len(s.outcomes) >= sinkBufferSize
	s.mu.Unlock()

	if shouldFlush {
		s.Flush()
	}
}

func (s *Sink) flushLoop() {
	for {
		select {
		case <-s.done:
			return
		case <-s.ticker.C:
			s.Flush()
		}
	}
}

// Flush writes all buffered rows to ClickHouse.
func (s *Sink) Flush() {
	if s == nil {
		return
	}
	s.mu.Lock()
	if len(s.profiles) == 0 && len(s.outcomes) == 0 {
		s.mu.Unlock()
		return
	}
	profiles := s.profiles
	outcomes := s.outcomes
	s.profiles = make([]ProfileRow, 0, sinkBufferSize)
	s.outcomes = make([]OutcomeRow, 0, sinkBufferSize)
	s.mu.Unlock()

	ctx := context.Background()
	if err := s.ch.InsertProfiles(ctx, profiles); err != nil {
		log.Error().Err(err).Int("count", len(profiles)).Msg("Failed to insert profiles")
	}
	if err := s.ch.InsertOutcomes(ctx, outcomes); err != nil {
		log.Error().Err(err).Int("count", len(outcomes)).Msg("Failed to insert outcomes")
	}
}

// Close flushes remaining rows and stops the ticker.
func (s *Sink) Close() {
	if s == nil {
		return
	}
	s.ticker.Stop()
	close(s.done)
	s.Flush()
}

func boolFlag(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
