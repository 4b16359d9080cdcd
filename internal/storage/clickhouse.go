package storage

import (
	"context"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/adaptix/adaptix/internal/config"
)

type ClickHouse struct {
	conn driver.Conn
}

// ProfileRow represents a row in the optimization_profiles table.
type ProfileRow struct {
	ProfileID           string
	SessionID           string
	SiteID              string
	Variant             string
	Confidence          float64
	DeviceClass         string
	IntentScore         float64
	IntentStage         string
	Urgency             string
	PredictedConversion float64
	HasPerformanceAdj   uint8
	HasEngagementAdj    uint8
	HasConversionAdj    uint8
	GeneratedAt         time.Time
}

// OutcomeRow represents a row in the adaptation_outcomes table.
type OutcomeRow struct {
	SessionID         string
	SiteID            string
	HasPerformanceAdj uint8
	HasEngagementAdj  uint8
	HasConversionAdj  uint8
	LoadTimeMs        float64
	ScrollDepth       float64
	ConversionRate    float64
	AbandonmentRate   float64
	BounceRate        float64
	RecordedAt        time.Time
}

func NewClickHouse(cfg config.ClickHouseConfig) (*ClickHouse, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{cfg.Addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		MaxOpenConns: cfg.MaxOpenConns,
		MaxIdleConns: cfg.MaxIdleConns,
	})
	if err != nil {
		return nil, err
	}

	// Test connection
	if err := conn.Ping(context.Background()); err != nil {
		return nil, err
	}

	return &ClickHouse{conn: conn}, nil
}

func (c *ClickHouse) InsertProfiles(ctx context.Context, profiles []ProfileRow) error {
	if len(profiles) == 0 {
		return nil
	}

	batch, err := c.conn.PrepareBatch(ctx, `
		INSERT INTO optimization_profiles (
			profile_id, session_id, site_id, variant, confidence, device_class,
			intent_score, intent_stage, urgency, predicted_conversion,
			has_performance_adj, has_engagement_adj, has_conversion_adj,
			generated_at
		)
	`)
	if err != nil {
		return err
	}

	for _, p := range profiles {
		err := batch.Append(
			p.ProfileID, p.SessionID, p.SiteID, p.Variant, p.Confidence, p.DeviceClass,
			p.IntentScore, p.IntentStage, p.Urgency, p.PredictedConversion,
			p.HasPerformanceAdj, p.HasEngagementAdj, p.HasConversionAdj,
			p.GeneratedAt,
		)
		if err != nil {
			return err
		}
	}

	return batch.Send()
}

func (c *ClickHouse) InsertOutcomes(ctx context.Context, outcomes []OutcomeRow) error {
	if len(outcomes) == 0 {
		return nil
	}

	batch, err := c.conn.PrepareBatch(ctx, `
		INSERT INTO adaptation_outcomes (
			session_id, site_id,
			has_performance_adj, has_engagement_adj, has_conversion_adj,
			load_time_ms, scroll_depth, conversion_rate, abandonment_rate,
			bounce_rate, recorded_at
		)
	`)
	if err != nil {
		return err
	}

	for _, o := range outcomes {
		err := batch.Append(
			o.SessionID, o.SiteID,
			o.HasPerformanceAdj, o.HasEngagementAdj, o.HasConversionAdj,
			o.LoadTimeMs, o.ScrollDepth, o.ConversionRate, o.AbandonmentRate,
			o.BounceRate, o.RecordedAt,
		)
		if err != nil {
			return err
		}
	}

	return batch.Send()
}

func (c *ClickHouse) Close() error {
	return c.conn.Close()
}
