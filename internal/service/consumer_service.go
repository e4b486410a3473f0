// FILE: internal/service/consumer_service.go
package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"regassist-be/internal/dto"
	"regassist-be/internal/entity"
	"regassist-be/internal/repository/unitofwork"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the usage topic and persists one audit row per
// answered request. Runs off the request path so a slow insert never
// delays a delivery.
type consumerService struct {
	pubSub     *gochannel.GoChannel
	topicName  string
	uowFactory unitofwork.RepositoryFactory
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
) IConsumerService {
	return &consumerService{
		pubSub:     pubSub,
		topicName:  topicName,
		uowFactory: uowFactory,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishUsageMessage
	err := json.Unmarshal(msg.Payload, &payload)
	if err != nil {
		log.Printf("[ERROR] Failed to unmarshal usage message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}
	if payload.RequestId == "" {
		log.Printf("[ERROR] Usage message without request id, dropping")
		msg.Ack()
		return
	}

	log.Printf("[INFO] Recording usage for request %s (stage=%s)", payload.RequestId, payload.Stage)

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	// Redelivery after a crashed Ack would double-count; one row per
	// request id.
	existing, err := uow.UsageRecordRepository().FindByRequestId(ctx, payload.RequestId)
	if err != nil {
		log.Printf("[ERROR] Failed to check usage record for %s: %v", payload.RequestId, err)
		msg.Nack() // Nack for retriable errors
		return
	}
	if existing != nil {
		log.Printf("[INFO] Usage record already exists for request %s, skipping", payload.RequestId)
		msg.Ack()
		return
	}

	record := &entity.UsageRecord{
		Id:               uuid.New(),
		RequestId:        payload.RequestId,
		QASessionId:      payload.QASessionId,
		Stage:            payload.Stage,
		GoldenServed:     payload.Flags.GoldenServed,
		CacheHit:         payload.Flags.CacheHit,
		Streamed:         payload.Flags.Streamed,
		Provider:         payload.Provider,
		Model:            payload.Model,
		PromptTokens:     payload.Tokens.Prompt,
		CompletionTokens: payload.Tokens.Completion,
		ToolRounds:       payload.ToolRounds,
		DurationMs:       payload.DurationMs,
		Decisions:        payload.Decisions,
		Metrics:          payload.Metrics,
		NodeHistory:      payload.NodeHistory,
		CreatedAt:        time.Now(),
	}

	if err := uow.Begin(ctx); err != nil {
		log.Printf("[ERROR] Failed to begin transaction: %v", err)
		msg.Nack()
		return
	}
	defer uow.Rollback()

	if err := uow.UsageRecordRepository().Create(ctx, record); err != nil {
		log.Printf("[ERROR] Failed to create usage record for %s: %v", payload.RequestId, err)
		msg.Nack()
		return
	}

	if err := uow.Commit(); err != nil {
		log.Printf("[ERROR] Failed to commit transaction: %v", err)
		msg.Nack()
		return
	}

	log.Printf("[SUCCESS] Usage recorded for request %s: provider=%s duration=%dms", payload.RequestId, payload.Provider, payload.DurationMs)
	msg.Ack()
}
