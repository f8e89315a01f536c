package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	stderrors "errors"
	"strings"
	"time"

	"github.com/techagentng/carefront/db"
	errs "github.com/techagentng/carefront/errors"
	"github.com/techagentng/carefront/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Broadcaster fans events out to connected realtime clients.
type Broadcaster interface {
	Broadcast(event string, payload interface{})
	BroadcastToRoom(room, event string, payload interface{})
}

// ReplyNotifier tells the original sender that a reply was posted.
type ReplyNotifier interface {
	NotifyReply(ctx context.Context, message *models.Message) error
}

// IdempotencyStore deduplicates retried submissions.
type IdempotencyStore interface {
	Reserve(ctx context.Context, key, fingerprint string) (existing db.Reservation, reserved bool, err error)
	Complete(ctx context.Context, key, fingerprint, messageID string) error
	Release(ctx context.Context, key string) error
}

// SubmitPolicy decides whether an anonymous caller may submit.
type SubmitPolicy int

const (
	// AllowAnonymous is used for first-contact messages from the public form.
	AllowAnonymous SubmitPolicy = iota
	// RequireIdentity is used when appending a turn to an existing conversation.
	RequireIdentity
)

const notifyTimeout = 15 * time.Second

type MessageService interface {
	Submit(ctx context.Context, req models.SubmitMessageRequest, identity *models.Identity, policy SubmitPolicy) (*models.Message, error)
	// SubmitIdempotent returns the earlier message and replayed=true when the
	// same caller repeats the same request under key.
	SubmitIdempotent(ctx context.Context, key string, req models.SubmitMessageRequest, identity *models.Identity, policy SubmitPolicy) (msg *models.Message, replayed bool, err error)
	List(ctx context.Context, search string, mine bool, identity *models.Identity) ([]models.Message, error)
	ListConversations(ctx context.Context, search string, identity *models.Identity) ([]models.ConversationSummary, error)
	Remove(ctx context.Context, id string, identity *models.Identity) error
	Reply(ctx context.Context, id, replyText string, identity *models.Identity) (*models.Message, error)
	MarkStatus(ctx context.Context, id string, status models.MessageStatus) (*models.Message, error)
	NotifyTyping(identity string, isTyping bool)
}

type messageService struct {
	repo        db.MessageRepository
	broadcaster Broadcaster
	notifier    ReplyNotifier
	idempotency IdempotencyStore
	logger      *zap.Logger
}

// MessageServiceOption configures optional collaborators.
type MessageServiceOption func(*messageService)

func WithReplyNotifier(n ReplyNotifier) MessageServiceOption {
	return func(s *messageService) { s.notifier = n }
}

func WithIdempotencyStore(store IdempotencyStore) MessageServiceOption {
	return func(s *messageService) { s.idempotency = store }
}

func NewMessageService(repo db.MessageRepository, broadcaster Broadcaster, logger *zap.Logger, opts ...MessageServiceOption) MessageService {
	s := &messageService{
		repo:        repo,
		broadcaster: broadcaster,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func validateSubmit(req models.SubmitMessageRequest, identity *models.Identity, policy SubmitPolicy) error {
	if policy == RequireIdentity && identity == nil {
		return errs.Unauthenticated("Authentication required")
	}
	if strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Message) == "" {
		return errs.Validation("First name, email, and message are required")
	}
	return nil
}

func (s *messageService) Submit(ctx context.Context, req models.SubmitMessageRequest, identity *models.Identity, policy SubmitPolicy) (*models.Message, error) {
	if err := validateSubmit(req, identity, policy); err != nil {
		return nil, err
	}

	creatorID := creatorOf(identity)
	msg := &models.Message{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Phone:          req.Phone,
		Body:           req.Message,
		Status:         models.MessageSent,
		ConversationID: ResolveConversationID(req.ConversationID, creatorID, req.Email),
		CreatedBy:      creatorID,
	}
	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, errs.Persistence(err)
	}

	s.broadcaster.BroadcastToRoom(models.AdminsRoom, models.EventNewMessage, msg)
	s.broadcaster.Broadcast(models.EventMessageSent, msg)
	return msg, nil
}

// SubmitIdempotent scopes key to the caller (identity id, else sender email)
// and only replays a message to a request with the same fingerprint.
func (s *messageService) SubmitIdempotent(ctx context.Context, key string, req models.SubmitMessageRequest, identity *models.Identity, policy SubmitPolicy) (*models.Message, bool, error) {
	if key == "" || s.idempotency == nil {
		msg, err := s.Submit(ctx, req, identity, policy)
		return msg, false, err
	}
	if err := validateSubmit(req, identity, policy); err != nil {
		return nil, false, err
	}

	scoped := scopedIdempotencyKey(key, req, identity)
	fingerprint := submissionFingerprint(req, identity)

	existing, reserved, err := s.idempotency.Reserve(ctx, scoped, fingerprint)
	if err != nil {
		// the store is an optimisation; fall through to a plain submit
		s.logger.Warn("idempotency store unavailable", zap.Error(err))
		msg, err := s.Submit(ctx, req, identity, policy)
		return msg, false, err
	}
	if !reserved {
		return s.replay(ctx, existing, fingerprint, req, identity)
	}

	msg, err := s.Submit(ctx, req, identity, policy)
	if err != nil {
		s.releaseKey(ctx, scoped)
		return nil, false, err
	}
	if err := s.idempotency.Complete(ctx, scoped, fingerprint, msg.ID); err != nil {
		s.logger.Warn("completing idempotency key", zap.Error(err), zap.String("message_id", msg.ID))
		s.releaseKey(ctx, scoped)
	}
	return msg, false, nil
}

func (s *messageService) replay(ctx context.Context, existing db.Reservation, fingerprint string, req models.SubmitMessageRequest, identity *models.Identity) (*models.Message, bool, error) {
	if existing.Fingerprint != fingerprint {
		return nil, false, errs.Conflict("Idempotency-Key was already used for a different request")
	}
	if existing.Pending() {
		return nil, false, errs.Conflict("A request with this Idempotency-Key is already in progress")
	}
	msg, err := s.repo.FindByID(ctx, existing.MessageID)
	if err != nil {
		return nil, false, storeError(err, "Message not found")
	}
	if msg.CreatedBy != creatorOf(identity) || !strings.EqualFold(msg.Email, strings.TrimSpace(req.Email)) {
		return nil, false, errs.Conflict("Idempotency-Key was already used for a different request")
	}
	return msg, true, nil
}

func (s *messageService) releaseKey(ctx context.Context, key string) {
	if err := s.idempotency.Release(ctx, key); err != nil {
		s.logger.Warn("releasing idempotency key", zap.Error(err))
	}
}

func creatorOf(identity *models.Identity) string {
	if identity == nil {
		return ""
	}
	return identity.ID
}

func scopedIdempotencyKey(key string, req models.SubmitMessageRequest, identity *models.Identity) string {
	scope := "anon:" + strings.ToLower(strings.TrimSpace(req.Email))
	if identity != nil {
		scope = "user:" + identity.ID
	}
	sum := sha256.Sum256([]byte(scope + "\x00" + key))
	return hex.EncodeToString(sum[:])
}

func submissionFingerprint(req models.SubmitMessageRequest, identity *models.Identity) string {
	h := sha256.New()
	for _, part := range []string{
		creatorOf(identity),
		strings.TrimSpace(req.FirstName),
		strings.TrimSpace(req.LastName),
		strings.ToLower(strings.TrimSpace(req.Email)),
		strings.TrimSpace(req.Phone),
		req.Message,
		strings.TrimSpace(req.ConversationID),
	} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// List requires an identity; mine narrows the result to the caller's own messages.
func (s *messageService) List(ctx context.Context, search string, mine bool, identity *models.Identity) ([]models.Message, error) {
	if identity == nil {
		return nil, errs.Unauthenticated("Authentication required")
	}
	filter := models.MessageFilter{Search: search}
	if mine {
		filter.CreatedBy = identity.ID
	}
	messages, err := s.repo.List(ctx, filter, db.MaxListResults)
	if err != nil {
		return nil, errs.Persistence(err)
	}
	return messages, nil
}

func (s *messageService) ListConversations(ctx context.Context, search string, identity *models.Identity) ([]models.ConversationSummary, error) {
	messages, err := s.List(ctx, search, !identity.IsPrivileged(), identity)
	if err != nil {
		return nil, err
	}
	return GroupConversations(messages), nil
}

func (s *messageService) Remove(ctx context.Context, id string, identity *models.Identity) error {
	if identity == nil {
		return errs.Unauthenticated("Authentication required")
	}
	msg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return storeError(err, "Message not found")
	}
	if !canDelete(msg, identity) {
		return errs.Forbidden("Not allowed to delete this message")
	}
	// zero rows means a concurrent delete got there first
	if _, err := s.repo.Delete(ctx, id); err != nil {
		return errs.Persistence(err)
	}
	return nil
}

func canDelete(msg *models.Message, identity *models.Identity) bool {
	if identity.IsPrivileged() {
		return true
	}
	if identity.ID != "" && identity.ID == msg.CreatedBy {
		return true
	}
	return identity.Email != "" && strings.EqualFold(identity.Email, msg.Email)
}

func (s *messageService) Reply(ctx context.Context, id, replyText string, identity *models.Identity) (*models.Message, error) {
	if !identity.IsPrivileged() {
		return nil, errs.Forbidden("Only admins can reply to messages")
	}
	if strings.TrimSpace(replyText) == "" {
		return nil, errs.Validation("Reply text is required")
	}

	msg, err := s.repo.Update(ctx, id, models.MessageUpdate{Reply: &replyText})
	if err != nil {
		return nil, storeError(err, "Message not found")
	}

	s.broadcaster.Broadcast(models.EventMessageReplied, msg)
	s.notifyReply(msg)
	return msg, nil
}

func (s *messageService) notifyReply(msg *models.Message) {
	if s.notifier == nil || msg.Email == "" {
		return
	}
	m := *msg
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := s.notifier.NotifyReply(ctx, &m); err != nil {
			s.logger.Warn("reply notification failed", zap.Error(err), zap.String("message_id", m.ID))
		}
	}()
}

// MarkStatus performs no ordering check between sent, delivered and read.
func (s *messageService) MarkStatus(ctx context.Context, id string, status models.MessageStatus) (*models.Message, error) {
	if !status.Valid() {
		return nil, errs.Validation("Status must be one of sent, delivered, read")
	}
	msg, err := s.repo.Update(ctx, id, models.MessageUpdate{Status: &status})
	if err != nil {
		return nil, storeError(err, "Message not found")
	}

	s.broadcaster.BroadcastToRoom(models.AdminsRoom, models.EventMessageStatus, msg)
	s.broadcaster.Broadcast(models.EventMessageStatus, msg)
	return msg, nil
}

func (s *messageService) NotifyTyping(identity string, isTyping bool) {
	s.broadcaster.BroadcastToRoom(models.AdminsRoom, models.EventTyping, models.TypingEvent{
		Identity: identity,
		IsTyping: isTyping,
	})
}

// storeError maps a repository error onto the API error taxonomy.
func storeError(err error, notFound string) error {
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return errs.NotFound(notFound)
	}
	return errs.Persistence(err)
}
