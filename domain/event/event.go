// Package event defines the server-to-client events pushed over live
// connections and their wire names.
package event

import "chatline/domain"

// Wire names. Clients subscribe to these literals, do not rename.
const (
	OnlineUsersName = "getOnlineUsers"
	NewMessageName  = "newMessage"
)

type DomainEvent interface {
	EventName() string
}

// OnlineUsers carries the full current online user set. Order is not
// meaningful.
type OnlineUsers struct {
	UserIDs []string
}

func (OnlineUsers) EventName() string { return OnlineUsersName }

// NewMessage carries the persisted message record delivered to its
// recipient.
type NewMessage struct {
	Message domain.Message
}

func (NewMessage) EventName() string { return NewMessageName }
