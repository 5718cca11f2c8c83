package events

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

const (
	streamName = "QUALITY_EVENTS"

	SubjectSampleIntake         = "quality.sample.intake"
	SubjectPositionsRegenerated = "quality.storage.positions_regenerated"
)

var (
	publisher     *Publisher
	publisherOnce sync.Once
	publisherMu   sync.RWMutex
)

// Publisher publishes domain events to NATS JetStream
type Publisher struct {
	js     nats.JetStreamContext
	logger *logrus.Entry
}

// SampleIntakeEvent is emitted when a sample is registered
type SampleIntakeEvent struct {
	SampleID       uuid.UUID `json:"sample_id"`
	ClientID       uuid.UUID `json:"client_id"`
	LaboratoryID   uuid.UUID `json:"laboratory_id"`
	TrackingNumber string    `json:"tracking_number"`
	Origin         string    `json:"origin"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// PositionsRegeneratedEvent is emitted after a shelf grid rebuild
type PositionsRegeneratedEvent struct {
	LaboratoryID       uuid.UUID `json:"laboratory_id"`
	ShelfID            uuid.UUID `json:"shelf_id"`
	PositionsGenerated int       `json:"positions_generated"`
	OccurredAt         time.Time `json:"occurred_at"`
}

// InitPublisher initializes the singleton JetStream publisher. Publishing is
// disabled (all publish calls become no-ops) when url is empty.
func InitPublisher(url string, logger *logrus.Logger) error {
	var initErr error
	publisherOnce.Do(func() {
		if url == "" {
			logger.Warn("NATS_URL not set, event publishing disabled")
			return
		}

		nc, err := nats.Connect(url,
			nats.Name("quality-service"),
			nats.MaxReconnects(-1),
			nats.ReconnectWait(2*time.Second),
		)
		if err != nil {
			initErr = err
			return
		}

		js, err := nc.JetStream()
		if err != nil {
			initErr = err
			return
		}

		if _, err := js.AddStream(&nats.StreamConfig{
			Name:     streamName,
			Subjects: []string{"quality.>"},
		}); err != nil && err != nats.ErrStreamNameAlreadyInUse {
			logger.WithError(err).Warn("Failed to ensure QUALITY_EVENTS stream")
		}

		publisherMu.Lock()
		publisher = &Publisher{
			js:     js,
			logger: logger.WithField("component", "events.publisher"),
		}
		publisherMu.Unlock()

		logger.Info("NATS events publisher initialized for quality-service")
	})
	return initErr
}

// GetPublisher returns the singleton publisher, or nil when disabled
func GetPublisher() *Publisher {
	publisherMu.RLock()
	defer publisherMu.RUnlock()
	return publisher
}

// PublishSampleIntake publishes a sample intake event
func (p *Publisher) PublishSampleIntake(event SampleIntakeEvent) {
	event.OccurredAt = time.Now().UTC()
	p.publish(SubjectSampleIntake, event)
}

// PublishPositionsRegenerated publishes a shelf regeneration event
func (p *Publisher) PublishPositionsRegenerated(event PositionsRegeneratedEvent) {
	event.OccurredAt = time.Now().UTC()
	p.publish(SubjectPositionsRegenerated, event)
}

func (p *Publisher) publish(subject string, event interface{}) {
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.WithError(err).WithField("subject", subject).Error("Failed to marshal event")
		return
	}
	if _, err := p.js.Publish(subject, payload); err != nil {
		p.logger.WithError(err).WithField("subject", subject).Warn("Failed to publish event")
	}
}
