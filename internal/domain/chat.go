package domain

import "time"

// ChatSender distinguishes message authors within a session.
type ChatSender string

const (
	SenderUser ChatSender = "user"
	SenderBot  ChatSender = "bot"
)

// ChatMessage is one entry in a session transcript.
type ChatMessage struct {
	ID        string
	Content   string
	Sender    ChatSender
	Timestamp time.Time
}

// ChatSession is an ordered, append-only message sequence exchanged with
// the conversational assistant. It feeds the classifier when a session is
// handed off to a human as a ticket.
type ChatSession struct {
	ID        string
	Title     string
	Messages  []ChatMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}
