package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/opechapo/kara-backend/internal/events"
	"github.com/opechapo/kara-backend/internal/models"
	"github.com/opechapo/kara-backend/internal/repositories"
	"go.uber.org/zap"
)

type ChatService struct {
	messageRepo *repositories.MessageRepo
	productRepo *repositories.ProductRepo
	publisher   events.Publisher
	log         *zap.Logger
}

func NewChatService(messageRepo *repositories.MessageRepo, productRepo *repositories.ProductRepo, publisher events.Publisher, log *zap.Logger) *ChatService {
	return &ChatService{messageRepo: messageRepo, productRepo: productRepo, publisher: publisher, log: log}
}

// Send delivers a message about a product. Threads run strictly between
// a prospective buyer and the product owner: anyone can message the
// owner, the owner replies to a named receiver.
func (s *ChatService) Send(ctx context.Context, senderID uuid.UUID, productID uuid.UUID, receiverID *uuid.UUID, body string) (*models.Message, error) {
	if body == "" {
		return nil, badRequest("Message body is required")
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, notFound("Product not found or deleted")
	}

	var to uuid.UUID
	if senderID == product.OwnerID {
		if receiverID == nil {
			return nil, badRequest("Receiver is required when messaging as the seller")
		}
		to = *receiverID
	} else {
		to = product.OwnerID
	}
	if to == senderID {
		return nil, badRequest("Cannot message yourself")
	}

	m := &models.Message{
		ProductID:  productID,
		SenderID:   senderID,
		ReceiverID: to,
		Body:       body,
	}
	if err := s.messageRepo.Create(ctx, m); err != nil {
		return nil, err
	}

	_ = s.publisher.Publish(ctx, events.StreamNotify, events.Event{
		Type: events.EventChatMessage,
		Payload: map[string]any{
			"message_id":  m.ID.String(),
			"product_id":  productID.String(),
			"sender_id":   senderID.String(),
			"receiver_id": to.String(),
			"body":        body,
		},
	})
	return m, nil
}

// History returns the caller's thread with the other party about a
// product.
func (s *ChatService) History(ctx context.Context, callerID, productID uuid.UUID, otherID *uuid.UUID) ([]models.Message, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, notFound("Product not found or deleted")
	}

	var a, b uuid.UUID
	if callerID == product.OwnerID {
		if otherID == nil {
			return nil, badRequest("Counterparty is required when reading as the seller")
		}
		a, b = callerID, *otherID
	} else {
		a, b = callerID, product.OwnerID
	}
	return s.messageRepo.ListConversation(ctx, productID, a, b)
}
