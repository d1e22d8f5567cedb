package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"nivora-be/internal/dto"
	"nivora-be/internal/model"
	"nivora-be/internal/repository/unitofwork"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the activity topic and persists each message as a
// system_logs row. Audit writes happen off the request path so a slow insert
// never delays the mutation that produced it.
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
	var payload dto.ActivityMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal activity message: %v", err)
		msg.Ack() // malformed payloads never succeed on retry
		return
	}

	details := string(msg.Payload)
	module := "activity"

	entry := &model.SystemLog{
		Level:     "INFO",
		Module:    &module,
		Message:   fmt.Sprintf("%s user=%s entity=%s", payload.Action, payload.UserId, payload.EntityId),
		Details:   &details,
		CreatedAt: payload.OccurredAt,
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.SystemLogRepository().Create(ctx, entry); err != nil {
		log.Printf("[ERROR] Failed to persist activity %s: %v", payload.Action, err)
		msg.Nack()
		return
	}

	msg.Ack()
}
