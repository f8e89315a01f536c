package db

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const idempotencyPrefix = "carefront:idem:"

// pendingTTL bounds how long an unfinished reservation blocks retries.
const pendingTTL = time.Minute

// Reservation is what a key holds: the fingerprint of the request that
// claimed it and, once created, the resulting message id.
type Reservation struct {
	MessageID   string `json:"id,omitempty"`
	Fingerprint string `json:"fp"`
}

// Pending reports whether the request holding the key is still in flight.
func (r Reservation) Pending() bool {
	return r.MessageID == ""
}

// IdempotencyStore remembers which message a client-supplied key produced.
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{client: client, ttl: ttl}
}

func (s *IdempotencyStore) reservationTTL() time.Duration {
	if s.ttl > 0 && s.ttl < pendingTTL {
		return s.ttl
	}
	return pendingTTL
}

// Reserve claims key for the request identified by fingerprint. When the key
// is already claimed it returns the stored reservation instead.
func (s *IdempotencyStore) Reserve(ctx context.Context, key, fingerprint string) (Reservation, bool, error) {
	pending, err := json.Marshal(Reservation{Fingerprint: fingerprint})
	if err != nil {
		return Reservation{}, false, err
	}

	for attempt := 0; attempt < 2; attempt++ {
		ok, err := s.client.SetNX(ctx, idempotencyPrefix+key, pending, s.reservationTTL()).Result()
		if err != nil {
			return Reservation{}, false, errors.Wrap(err, "reserving idempotency key")
		}
		if ok {
			return Reservation{}, true, nil
		}

		val, err := s.client.Get(ctx, idempotencyPrefix+key).Bytes()
		if err == redis.Nil {
			// expired between SETNX and GET
			continue
		}
		if err != nil {
			return Reservation{}, false, errors.Wrap(err, "reading idempotency key")
		}
		var existing Reservation
		if err := json.Unmarshal(val, &existing); err != nil {
			return Reservation{}, false, errors.Wrap(err, "decoding idempotency key")
		}
		return existing, false, nil
	}
	return Reservation{}, false, errors.New("idempotency key kept expiring")
}

// Complete records the message id created under key for the full TTL.
func (s *IdempotencyStore) Complete(ctx context.Context, key, fingerprint, messageID string) error {
	val, err := json.Marshal(Reservation{MessageID: messageID, Fingerprint: fingerprint})
	if err != nil {
		return err
	}
	return errors.Wrap(s.client.Set(ctx, idempotencyPrefix+key, val, s.ttl).Err(), "completing idempotency key")
}

// Release frees key after a failed creation so the client can retry.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return errors.Wrap(s.client.Del(ctx, idempotencyPrefix+key).Err(), "releasing idempotency key")
}
