package service

import (
	"context"
	"encoding/json"
	"log"

	"ai-journaling-be/internal/dto"
	"ai-journaling-be/internal/repository/specification"
	"ai-journaling-be/internal/repository/unitofwork"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// IConsumerService drains the write-content indexing queue in the background.
type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub     *gochannel.GoChannel
	topicName  string
	uowFactory unitofwork.RepositoryFactory
	ragService IRAGService
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	ragService IRAGService,
) IConsumerService {
	return &consumerService{
		pubSub:     pubSub,
		topicName:  topicName,
		uowFactory: uowFactory,
		ragService: ragService,
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
	var payload dto.PublishIndexJournalMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal index message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	journal, err := uow.JournalRepository().FindOne(ctx, specification.ByID{ID: payload.JournalId})
	if err != nil {
		log.Printf("[ERROR] Failed to load journal %s: %v", payload.JournalId, err)
		msg.Nack()
		return
	}
	if journal == nil {
		// Journal deleted between enqueue and processing. Nothing to do.
		msg.Ack()
		return
	}

	if err := cs.ragService.IndexWriteContent(ctx, journal.Id, journal.SessionId, journal.Title, journal.WriteContent); err != nil {
		log.Printf("[ERROR] Failed to index write content for journal %s: %v", payload.JournalId, err)
		msg.Nack()
		return
	}

	log.Printf("[INFO] Indexed write content for journal %s", payload.JournalId)
	msg.Ack()
}
