package service

import (
	"encoding/json"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MadiBrom/ClassShelf/pkg/kafka"
)

// publishResolution feeds the best-effort "recently resolved" stream after a
// unit commits. Delivery trouble is logged, never propagated: the
// transactional core does not depend on the feed.
func (s *Service) publishResolution(event kafka.EventResolution) {
	if s.producer == nil {
		return
	}
	event.EventID = uuid.NewString()
	event.OccurredAt = time.Now().UTC()
	data, err := json.Marshal(event)
	if err != nil {
		s.log.Error("marshal resolution event", zap.Error(err))
		return
	}
	msg := &sarama.ProducerMessage{
		Topic: kafka.ResolutionsTopic,
		Key:   sarama.StringEncoder(event.EventID),
		Value: sarama.StringEncoder(data),
	}
	if _, _, err := s.producer.SendMessage(msg); err != nil {
		s.log.Warn("publish resolution event",
			zap.String("kind", event.Kind), zap.Error(err))
	}
}
