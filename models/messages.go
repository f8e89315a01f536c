package models

type MessageStatus string

const (
	MessageSent      MessageStatus = "sent"
	MessageDelivered MessageStatus = "delivered"
	MessageRead      MessageStatus = "read"
)

func (s MessageStatus) Valid() bool {
	switch s {
	case MessageSent, MessageDelivered, MessageRead:
		return true
	}
	return false
}

type Message struct {
	Model
	FirstName      string        `json:"firstName"`
	LastName       string        `json:"lastName"`
	Email          string        `json:"email" gorm:"index"`
	Phone          string        `json:"phone"`
	Body           string        `json:"message" gorm:"column:message;type:text;not null"`
	Reply          string        `json:"reply,omitempty" gorm:"type:text"`
	Status         MessageStatus `json:"status" gorm:"type:varchar(16);not null;default:sent"`
	ConversationID string        `json:"conversationId" gorm:"index;not null"`

	// CreatedBy is empty for anonymous senders.
	CreatedBy string `json:"createdBy,omitempty" gorm:"index"`
}

// MessageFilter narrows a message listing. Zero values match everything.
type MessageFilter struct {
	Search         string
	CreatedBy      string
	ConversationID string
}

// MessageUpdate carries the mutable fields of a message; nil means unchanged.
type MessageUpdate struct {
	Reply  *string
	Status *MessageStatus
}

func (u MessageUpdate) Fields() map[string]interface{} {
	fields := map[string]interface{}{}
	if u.Reply != nil {
		fields["reply"] = *u.Reply
	}
	if u.Status != nil {
		fields["status"] = string(*u.Status)
	}
	return fields
}

type SubmitMessageRequest struct {
	FirstName      string `json:"firstName" conform:"trim"`
	LastName       string `json:"lastName" conform:"trim"`
	Email          string `json:"email" conform:"trim"`
	Phone          string `json:"phone" conform:"trim"`
	Message        string `json:"message"`
	ConversationID string `json:"conversationId" conform:"trim"`
}

type ReplyRequest struct {
	Reply string `json:"reply"`
}

type StatusRequest struct {
	Status string `json:"status" binding:"required" conform:"trim"`
}

type DeleteMessageResponse struct {
	OK bool   `json:"ok"`
	ID string `json:"id"`
}
