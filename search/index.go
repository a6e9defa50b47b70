// Package search maintains a full-text index of message text and answers
// relevance-ranked queries scoped to one user's conversations.
package search

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/blugelabs/bluge"

	"chatline/domain"
)

type IMessageIndex interface {
	Index(message domain.Message) error
	Search(ctx context.Context, userID, terms string, limit int) ([]Hit, error)
	Close() error
}

// Hit is one search result. Text is the censored text as stored.
type Hit struct {
	MessageID string  `json:"messageId"`
	Text      string  `json:"text"`
	Score     float64 `json:"score"`
}

type MessageIndex struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func NewMessageIndex(path string, log *slog.Logger) (*MessageIndex, error) {
	writer, err := bluge.OpenWriter(bluge.DefaultConfig(path))
	if err != nil {
		return nil, fmt.Errorf("opening search index failed: %w", err)
	}
	return &MessageIndex{writer: writer, log: log}, nil
}

// Index adds or replaces a message document. Image-only messages carry no
// searchable text and are skipped.
func (i *MessageIndex) Index(message domain.Message) error {
	if message.Text == "" {
		return nil
	}
	doc := bluge.NewDocument(message.ID.String()).
		AddField(bluge.NewTextField("text", message.Text).StoreValue()).
		AddField(bluge.NewKeywordField("sender", message.SenderID)).
		AddField(bluge.NewKeywordField("receiver", message.ReceiverID)).
		AddField(bluge.NewDateTimeField("at", message.CreatedAt))
	return i.writer.Update(doc.ID(), doc)
}

// Search matches terms against message text, restricted to messages the
// user sent or received, ranked by score.
func (i *MessageIndex) Search(ctx context.Context, userID, terms string, limit int) ([]Hit, error) {
	reader, err := i.writer.Reader()
	if err != nil {
		return nil, fmt.Errorf("opening index reader failed: %w", err)
	}
	defer func() { _ = reader.Close() }()

	match := bluge.NewMatchQuery(terms).SetField("text")
	participant := bluge.NewBooleanQuery().
		AddShould(bluge.NewTermQuery(userID).SetField("sender")).
		AddShould(bluge.NewTermQuery(userID).SetField("receiver")).
		SetMinShould(1)
	query := bluge.NewBooleanQuery().AddMust(match, participant)

	iterator, err := reader.Search(ctx, bluge.NewTopNSearch(limit, query))
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	var hits []Hit
	for {
		next, err := iterator.Next()
		if err != nil {
			return nil, fmt.Errorf("iterating results failed: %w", err)
		}
		if next == nil {
			break
		}
		hit := Hit{Score: next.Score}
		err = next.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case "_id":
				hit.MessageID = string(value)
			case "text":
				hit.Text = string(value)
			}
			return true
		})
		if err != nil {
			return nil, err
		}
		hits = append(hits, hit)
	}
	i.log.Debug("search completed", "user_id", userID, "hits", len(hits))
	return hits, nil
}

func (i *MessageIndex) Close() error {
	return i.writer.Close()
}
