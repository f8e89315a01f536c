package services

import (
	"sort"
	"strings"

	"github.com/techagentng/carefront/models"
)

// ResolveConversationID picks the grouping key of a new message: the explicit
// id, else the authenticated creator, else the sender's email.
func ResolveConversationID(explicitID, creatorID, senderEmail string) string {
	if id := strings.TrimSpace(explicitID); id != "" {
		return id
	}
	if creatorID != "" {
		return creatorID
	}
	return senderEmail
}

// GroupConversations folds messages into one summary per conversation,
// most recently active first. Sender details come from the latest message.
func GroupConversations(messages []models.Message) []models.ConversationSummary {
	byID := map[string]*models.ConversationSummary{}
	order := []string{}

	for _, m := range messages {
		s, ok := byID[m.ConversationID]
		if !ok {
			s = &models.ConversationSummary{ConversationID: m.ConversationID}
			byID[m.ConversationID] = s
			order = append(order, m.ConversationID)
		}
		s.MessageCount++
		if m.Status != models.MessageRead {
			s.Unread++
		}
		if s.UpdatedAt.IsZero() || m.CreatedAt.After(s.UpdatedAt) {
			s.UpdatedAt = m.CreatedAt
			s.Email = m.Email
			s.FirstName = m.FirstName
			s.LastName = m.LastName
			s.LastMessage = m.Body
			s.LastStatus = m.Status
		}
	}

	out := make([]models.ConversationSummary, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}
