package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/techagentng/carefront/db"
	"github.com/techagentng/carefront/models"
	"gorm.io/gorm"
)

var _ db.MessageRepository = (*memMessageRepo)(nil)

// memMessageRepo is an in-memory MessageRepository. Set failWith to make every
// call fail.
type memMessageRepo struct {
	mu       sync.Mutex
	messages map[string]models.Message
	clock    time.Time
	failWith error

	CreateCallCount int32
	UpdateCallCount int32
	DeleteCallCount int32
}

func newMemMessageRepo() *memMessageRepo {
	return &memMessageRepo{messages: map[string]models.Message{}, clock: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)}
}

func (r *memMessageRepo) Create(ctx context.Context, m *models.Message) error {
	atomic.AddInt32(&r.CreateCallCount, 1)
	if r.failWith != nil {
		return r.failWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	r.clock = r.clock.Add(time.Minute)
	m.CreatedAt, m.UpdatedAt = r.clock, r.clock
	r.messages[m.ID] = *m
	return nil
}

func (r *memMessageRepo) List(ctx context.Context, f models.MessageFilter, limit int) ([]models.Message, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Message{}
	for _, m := range r.messages {
		if f.Search != "" && !strings.Contains(strings.ToLower(m.Body), strings.ToLower(f.Search)) {
			continue
		}
		if f.CreatedBy != "" && m.CreatedBy != f.CreatedBy {
			continue
		}
		if f.ConversationID != "" && m.ConversationID != f.ConversationID {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memMessageRepo) FindByID(ctx context.Context, id string) (*models.Message, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.messages[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &m, nil
}

func (r *memMessageRepo) Update(ctx context.Context, id string, u models.MessageUpdate) (*models.Message, error) {
	atomic.AddInt32(&r.UpdateCallCount, 1)
	if r.failWith != nil {
		return nil, r.failWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.messages[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if u.Reply != nil {
		m.Reply = *u.Reply
	}
	if u.Status != nil {
		m.Status = *u.Status
	}
	m.UpdatedAt = time.Now()
	r.messages[id] = m
	return &m, nil
}

func (r *memMessageRepo) Delete(ctx context.Context, id string) (int64, error) {
	atomic.AddInt32(&r.DeleteCallCount, 1)
	if r.failWith != nil {
		return 0, r.failWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.messages[id]; !ok {
		return 0, nil
	}
	delete(r.messages, id)
	return 1, nil
}

func (r *memMessageRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.messages)
}

type sentEvent struct {
	Room    string
	Event   string
	Payload interface{}
}

// recordingBroadcaster captures every emitted event; Room is empty for
// broadcasts to everyone.
type recordingBroadcaster struct {
	mu     sync.Mutex
	events []sentEvent
}

func (b *recordingBroadcaster) Broadcast(event string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, sentEvent{Event: event, Payload: payload})
}

func (b *recordingBroadcaster) BroadcastToRoom(room, event string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, sentEvent{Room: room, Event: event, Payload: payload})
}

func (b *recordingBroadcaster) count(room, event string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, e := range b.events {
		if e.Room == room && e.Event == event {
			n++
		}
	}
	return n
}

func (b *recordingBroadcaster) total() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.events)
}

type mockNotifier struct {
	calls chan *models.Message
	err   error
}

func (n *mockNotifier) NotifyReply(ctx context.Context, m *models.Message) error {
	n.calls <- m
	return n.err
}

type mockIdempotencyStore struct {
	mu          sync.Mutex
	keys        map[string]db.Reservation
	err         error
	completeErr error
	released    int32
}

func newMockIdempotencyStore() *mockIdempotencyStore {
	return &mockIdempotencyStore{keys: map[string]db.Reservation{}}
}

func (s *mockIdempotencyStore) Reserve(ctx context.Context, key, fingerprint string) (db.Reservation, bool, error) {
	if s.err != nil {
		return db.Reservation{}, false, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.keys[key]; ok {
		return v, false, nil
	}
	s.keys[key] = db.Reservation{Fingerprint: fingerprint}
	return db.Reservation{}, true, nil
}

func (s *mockIdempotencyStore) Complete(ctx context.Context, key, fingerprint, id string) error {
	if s.completeErr != nil {
		return s.completeErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[key] = db.Reservation{MessageID: id, Fingerprint: fingerprint}
	return nil
}

func (s *mockIdempotencyStore) Release(ctx context.Context, key string) error {
	atomic.AddInt32(&s.released, 1)
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, key)
	return nil
}

func (s *mockIdempotencyStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.keys)
}

var errStoreDown = errors.New("connection refused")
