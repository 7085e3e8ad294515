package kafka

import (
	"time"

	"github.com/IBM/sarama"
)

type Config struct {
	Addrs []string `envconfig:"KAFKA_ADDRS"`
}

func (c Config) Enabled() bool { return len(c.Addrs) > 0 }

const ResolutionsTopic = `classshelf.resolutions`

// EventResolution is published whenever a request or checkout leaves its
// active state: request approved/denied, checkout returned.
type EventResolution struct {
	EventID    string    `json:"eventId"`
	Kind       string    `json:"kind"` // request_approved | request_denied | checkout_returned
	RequestID  int       `json:"requestId,omitempty"`
	CheckoutID int       `json:"checkoutId,omitempty"`
	BookID     int       `json:"bookId"`
	StudentID  int       `json:"studentId"`
	TeacherID  int       `json:"teacherId"`
	OccurredAt time.Time `json:"occurredAt"`
}

func NewProducer(cfg Config) (sarama.SyncProducer, error) {
	defaultCfg := sarama.NewConfig()

	defaultCfg.Producer.RequiredAcks = sarama.WaitForAll
	defaultCfg.Producer.Return.Successes = true

	return sarama.NewSyncProducer(cfg.Addrs, defaultCfg)
}
