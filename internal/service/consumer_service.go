package service

import (
	"context"
	"encoding/json"

	"vegan-agent-be/internal/pkg/logger"
	"vegan-agent-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService feeds in-process scan events into the stats tallies.
type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	stats     IStatsService
	logger    logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	stats IStatsService,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		stats:     stats,
		logger:    log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(msg *message.Message) {
	var evt events.ScanCompleted
	if err := json.Unmarshal(msg.Payload, &evt); err != nil {
		cs.logger.Error("ConsumerService", "Failed to unmarshal scan event", map[string]interface{}{
			"error":      err.Error(),
			"message_id": msg.UUID,
		})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	cs.stats.Record(evt)
	cs.logger.Debug("ConsumerService", "Scan event recorded", map[string]interface{}{
		"event_id": evt.ID,
		"verdict":  evt.Verdict,
		"status":   evt.Status,
	})
	msg.Ack()
}
