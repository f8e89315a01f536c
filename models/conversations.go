package models

import "time"

// ConversationSummary is one row of the admin inbox, built from the messages
// sharing a conversation id.
type ConversationSummary struct {
	ConversationID string        `json:"conversationId"`
	Email          string        `json:"email"`
	FirstName      string        `json:"firstName"`
	LastName       string        `json:"lastName"`
	LastMessage    string        `json:"lastMessage"`
	LastStatus     MessageStatus `json:"lastStatus"`
	MessageCount   int           `json:"messageCount"`
	Unread         int           `json:"unread"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}
