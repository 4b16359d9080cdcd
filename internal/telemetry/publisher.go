package telemetry

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"github.com/adaptix/adaptix/internal/config"
)

// Event is one telemetry record. Properties carries free-form extras.
type Event struct {
	EventID      string                 `json:"event_id"`
	Name         string                 `json:"name"`
	Timestamp    int64                  `json:"timestamp"`
	SiteID       string                 `json:"site_id"`
	SessionID    string                 `json:"session_id"`
	Persona      string                 `json:"persona,omitempty"`
	Confidence   float64                `json:"confidence,omitempty"`
	DeviceClass  string                 `json:"device_class,omitempty"`
	IntentStage  string                 `json:"intent_stage,omitempty"`
	IntentScore  float64                `json:"intent_score,omitempty"`
	Properties   map[string]interface{} `json:"properties,omitempty"`
}

// Publisher buffers events and ships them to Kafka in batches, on a timer
// and when the buffer fills. Publishing is fire-and-forget: transport
// failures are logged and never surface to callers. A nil Publisher is safe
// to use and drops everything.
type Publisher struct {
	writer *kafka.Writer

	mu        sync.Mutex
	buf       []Event
	batchSize int

	ticker *time.Ticker
	done   chan struct{}
}

// NewPublisher returns nil when no brokers are configured; callers treat a
// nil publisher as disabled telemetry.
func NewPublisher(kafkaCfg config.KafkaConfig, telCfg config.TelemetryConfig) *Publisher {
	if len(kafkaCfg.Brokers) == 0 {
		return nil
	}
	topic := kafkaCfg.Topics["telemetry"]
	if topic == "" {
		topic = "adaptix.telemetry"
	}

	p := &Publisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(kafkaCfg.Brokers...),
			Topic:                  topic,
			Balancer:               &kafka.LeastBytes{},
			BatchSize:              telCfg.BatchSize,
			BatchTimeout:           time.Millisecond * 100,
			AllowAutoTopicCreation: true,
		},
		buf:       make([]Event, 0, telCfg.BatchSize),
		batchSize: telCfg.BatchSize,
		ticker:    time.NewTicker(telCfg.FlushInterval),
		done:      make(chan struct{}),
	}
	go p.flushLoop()

	log.Info().Str("topic", topic).Msg("Telemetry publisher initialized")
	return p
}

// Publish queues one event. The event ID and timestamp are filled in when
// absent.
func (p *Publisher) Publish(e Event) {
	if p == nil {
		return
	}
	if e.EventID == "" {
		e.EventID = uuid.New().String()
	}
	if e.Timestamp == 0 {
		e.Timestamp = time.Now().UnixMilli()
	}

	p.mu.Lock()
	p.buf = append(p.buf, e)
	shouldFlush := len(p.buf) >= p.batchSize
	p.mu.Unlock()

	if shouldFlush {
		p.Flush()
	}
}

func (p *Publisher) flushLoop() {
	for {
		select {
		case <-p.done:
			return
		case <-p.ticker.C:
			p.Flush()
		}
	}
}

// Flush writes all buffered events to Kafka.
func (p *Publisher) Flush() {
	if p == nil {
		return
	}
	p.mu.Lock()
	if len(p.buf) == 0 {
		p.mu.Unlock()
		return
	}
	events := p.buf
	p.buf = make([]Event, 0, p.batchSize)
	p.mu.Unlock()

	messages := make([]kafka.Message, 0, len(events))
	for _, e := range events {
		data, err := json.Marshal(e)
		if err != nil {
			log.Error().Err(err).Str("name", e.Name).Msg("Failed to marshal telemetry event")
			continue
		}
		messages = append(messages, kafka.Message{
			Key:   []byte(e.SiteID),
			Value: data,
		})
	}
	if len(messages) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.writer.WriteMessages(ctx, messages...); err != nil {
		log.Error().Err(err).Int("count", len(messages)).Msg("Failed to publish telemetry batch")
	}
}

// Close flushes pending events and shuts the writer down.
func (p *Publisher) Close() {
	if p == nil {
		return
	}
	p.ticker.Stop()
	close(p.done)
	p.Flush()
	if err := p.writer.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close telemetry writer")
	}
}
