package models

import "encoding/json"

// AdminsRoom is the broadcast group of privileged connections.
const AdminsRoom = "admins"

// Server to client events.
const (
	EventConnected      = "connected"
	EventNewMessage     = "new_message"
	EventMessageSent    = "message_sent"
	EventMessageReplied = "message_replied"
	EventMessageStatus  = "message_status"
	EventTyping         = "typing"
)

// Client to server events.
const (
	EventJoinAdmins       = "join_admins"
	EventReplyMessage     = "reply_message"
	EventMessageDelivered = "message_delivered"
	EventMessageRead      = "message_read"
	EventTypingStart      = "typing_start"
	EventTypingStop       = "typing_stop"
)

// Frame is the JSON envelope exchanged over the realtime channel.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type ReplyMessagePayload struct {
	MessageID string `json:"messageId"`
	ReplyText string `json:"replyText"`
}

type MessageRefPayload struct {
	MessageID string `json:"messageId"`
}

type TypingPayload struct {
	Email string `json:"email"`
}

type TypingEvent struct {
	Identity string `json:"identity"`
	IsTyping bool   `json:"isTyping"`
}

type ConnectedEvent struct {
	ID    string `json:"id"`
	Admin bool   `json:"admin"`
}
