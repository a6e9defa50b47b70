package services

import (
	"context"
	"encoding/base64"
	"log/slog"
	"sync"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"chatline/domain"
	"chatline/domain/event"
	"chatline/errors"
	"chatline/moderation"
	"chatline/repositories"
	"chatline/search"
)

type delivery struct {
	UserID string
	Event  event.DomainEvent
}

// captureDispatcher records deliveries instead of touching connections.
type captureDispatcher struct {
	mu         sync.Mutex
	deliveries []delivery
}

func (d *captureDispatcher) Deliver(_ context.Context, userID string, e event.DomainEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.deliveries = append(d.deliveries, delivery{UserID: userID, Event: e})
}

func (d *captureDispatcher) BroadcastOnline(context.Context) {}

func (d *captureDispatcher) Deliveries() []delivery {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]delivery(nil), d.deliveries...)
}

func newChatService(t *testing.T, censoredWords []string) (*ChatService, *captureDispatcher, repositories.IImageRepository) {
	t.Helper()
	db := openTestDB(t)
	log := slog.Default()

	index, err := search.NewMessageIndex(t.TempDir(), log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	moderator, err := moderation.NewModerator(censoredWords, '*', log)
	require.NoError(t, err)

	dispatcher := &captureDispatcher{}
	imageRepository := repositories.NewImageRepository(db)
	svc := NewChatService(
		repositories.NewMessageRepository(db, log, nil),
		repositories.NewUserRepository(db),
		imageRepository,
		index,
		moderator,
		dispatcher,
		log,
	)
	return svc, dispatcher, imageRepository
}

func TestChatService_SendMessage(t *testing.T) {
	svc, dispatcher, _ := newChatService(t, []string{"badger"})

	t.Run("should persist, censor and deliver a text message", func(t *testing.T) {
		req := require.New(t)
		sent, err := svc.SendMessage(context.Background(), SendMessageCommand{
			SenderID:   "alice",
			ReceiverID: "bob",
			Text:       "a wild badger appeared",
		})
		req.NoError(err)
		req.Equal("a wild ****** appeared", sent.Text)
		req.False(sent.CreatedAt.IsZero())

		history, err := svc.GetConversation("alice", "bob")
		req.NoError(err)
		req.Equal([]string{sent.ID.String()}, messageIDs(history))

		deliveries := dispatcher.Deliveries()
		req.Len(deliveries, 1)
		req.Equal("bob", deliveries[0].UserID)
		delivered, ok := deliveries[0].Event.(event.NewMessage)
		req.True(ok)
		req.Equal(sent, delivered.Message)
	})

	t.Run("should reject a message with no text and no image", func(t *testing.T) {
		req := require.New(t)
		_, err := svc.SendMessage(context.Background(), SendMessageCommand{
			SenderID:   "alice",
			ReceiverID: "bob",
		})
		req.ErrorIs(err, errors.ErrEmptyMessage)
	})
}

func TestChatService_SendMessage_With_Image(t *testing.T) {
	req := require.New(t)
	svc, dispatcher, images := newChatService(t, nil)

	payload := base64.StdEncoding.EncodeToString(pngHeader)
	sent, err := svc.SendMessage(context.Background(), SendMessageCommand{
		SenderID:   "alice",
		ReceiverID: "bob",
		Image:      payload,
	})
	req.NoError(err)
	req.Contains(sent.ImageURL, "/images/")
	req.Empty(sent.Text)

	// The referenced blob is retrievable.
	imageID := sent.ImageURL[len("/images/"):]
	data, contentType, err := images.GetImage(imageID)
	req.NoError(err)
	req.Equal(pngHeader, data)
	req.Equal("image/png", contentType)

	req.Len(dispatcher.Deliveries(), 1)
}

func TestChatService_Detects_Message_Language(t *testing.T) {
	req := require.New(t)
	svc, _, _ := newChatService(t, nil)

	sent, err := svc.SendMessage(context.Background(), SendMessageCommand{
		SenderID:   "alice",
		ReceiverID: "bob",
		Text:       "the quick brown fox jumps over the lazy dog while the sun sets behind the quiet hills",
	})
	req.NoError(err)
	req.Equal("eng", sent.Lang)
}

func TestChatService_SearchMessages(t *testing.T) {
	req := require.New(t)
	svc, _, _ := newChatService(t, nil)

	sent, err := svc.SendMessage(context.Background(), SendMessageCommand{
		SenderID:   "alice",
		ReceiverID: "bob",
		Text:       "the quarterly invoice is ready",
	})
	req.NoError(err)
	_, err = svc.SendMessage(context.Background(), SendMessageCommand{
		SenderID:   "clara",
		ReceiverID: "dan",
		Text:       "another invoice elsewhere",
	})
	req.NoError(err)

	hits, err := svc.SearchMessages(context.Background(), "alice", "invoice", 10)
	req.NoError(err)
	req.Len(hits, 1)
	req.Equal(sent.ID.String(), hits[0].MessageID)
}

func TestChatService_ListContacts(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	log := slog.Default()
	users := repositories.NewUserRepository(db)

	alice, err := users.CreateUser("alice@example.com", "Alice", "hash")
	req.NoError(err)
	_, err = users.CreateUser("bob@example.com", "Bob", "hash")
	req.NoError(err)

	index, err := search.NewMessageIndex(t.TempDir(), log)
	req.NoError(err)
	t.Cleanup(func() { _ = index.Close() })
	moderator, err := moderation.NewModerator(nil, '*', log)
	req.NoError(err)

	svc := NewChatService(
		repositories.NewMessageRepository(db, log, nil),
		users,
		repositories.NewImageRepository(db),
		index, moderator, &captureDispatcher{}, log,
	)

	contacts, err := svc.ListContacts(alice.ID)
	req.NoError(err)
	req.Len(contacts, 1)
	req.Equal("bob@example.com", contacts[0].Email)
}

func messageIDs(messages []domain.Message) []string {
	return lo.Map(messages, func(m domain.Message, _ int) string { return m.ID.String() })
}
