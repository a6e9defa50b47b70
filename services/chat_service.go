package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/abadojack/whatlanggo"
	"github.com/google/uuid"

	"chatline/contract"
	"chatline/domain"
	"chatline/domain/event"
	"chatline/errors"
	"chatline/moderation"
	"chatline/repositories"
	"chatline/search"
)

type IChatService interface {
	SendMessage(ctx context.Context, cmd SendMessageCommand) (domain.Message, error)
	GetConversation(userA, userB string) ([]domain.Message, error)
	ListContacts(userID string) ([]repositories.User, error)
	SearchMessages(ctx context.Context, userID, terms string, limit int) ([]search.Hit, error)
}

// SendMessageCommand is a sending intent. Image is a base64 payload,
// optionally with a data-URL prefix.
type SendMessageCommand struct {
	SenderID   string
	ReceiverID string
	Text       string
	Image      string
}

type ChatService struct {
	messageRepository repositories.IMessageRepository
	userRepository    repositories.IUserRepository
	imageRepository   repositories.IImageRepository
	index             search.IMessageIndex
	moderator         moderation.Moderator
	dispatcher        contract.IDispatcher
	log               *slog.Logger
}

func NewChatService(
	messageRepository repositories.IMessageRepository,
	userRepository repositories.IUserRepository,
	imageRepository repositories.IImageRepository,
	index search.IMessageIndex,
	moderator moderation.Moderator,
	dispatcher contract.IDispatcher,
	log *slog.Logger,
) *ChatService {
	return &ChatService{
		messageRepository: messageRepository,
		userRepository:    userRepository,
		imageRepository:   imageRepository,
		index:             index,
		moderator:         moderator,
		dispatcher:        dispatcher,
		log:               log,
	}
}

// SendMessage persists a message and hands it to the dispatcher for
// best-effort delivery. Persistence failures fail the request; indexing
// and delivery failures do not, so a stored message may still miss an
// online recipient.
func (s *ChatService) SendMessage(ctx context.Context, cmd SendMessageCommand) (domain.Message, error) {
	if cmd.Text == "" && cmd.Image == "" {
		return domain.Message{}, errors.ErrEmptyMessage
	}

	message := domain.Message{
		ID:         uuid.New(),
		SenderID:   cmd.SenderID,
		ReceiverID: cmd.ReceiverID,
		Text:       s.moderator.Censor(cmd.Text),
		CreatedAt:  time.Now().UTC(),
	}

	if message.Text != "" {
		info := whatlanggo.Detect(message.Text)
		if info.IsReliable() {
			message.Lang = whatlanggo.LangToString(info.Lang)
		}
	}

	if cmd.Image != "" {
		data, contentType, err := decodeImagePayload(cmd.Image)
		if err != nil {
			return domain.Message{}, err
		}
		imageID, err := s.imageRepository.StoreImage(data, contentType)
		if err != nil {
			return domain.Message{}, err
		}
		message.ImageURL = "/images/" + imageID
	}

	if err := s.messageRepository.StoreMessage(message); err != nil {
		return domain.Message{}, err
	}

	if err := s.index.Index(message); err != nil {
		s.log.Error("message indexing failed", "message_id", message.ID, "error", err)
	}

	s.dispatcher.Deliver(ctx, message.ReceiverID, event.NewMessage{Message: message})

	return message, nil
}

func (s *ChatService) GetConversation(userA, userB string) ([]domain.Message, error) {
	return s.messageRepository.GetConversation(userA, userB)
}

func (s *ChatService) ListContacts(userID string) ([]repositories.User, error) {
	return s.userRepository.ListUsersExcept(userID)
}

func (s *ChatService) SearchMessages(ctx context.Context, userID, terms string, limit int) ([]search.Hit, error) {
	return s.index.Search(ctx, userID, terms, limit)
}
