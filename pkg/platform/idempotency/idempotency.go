// Package idempotency replays the stored response of a POST retried with the
// same Idempotency-Key. A key reused for a different request is a conflict.
package idempotency

import (
	"context"
	"encoding/hex"
	"time"

	"golang.org/x/crypto/sha3"
)

// DefaultTTL is how long a stored response stays replayable.
const DefaultTTL = 24 * time.Hour

// Record is a stored response.
type Record struct {
	Fingerprint string    `json:"fingerprint"`
	Status      int       `json:"status"`
	ContentType string    `json:"content_type,omitempty"`
	Body        []byte    `json:"body,omitempty"`
	StoredAt    time.Time `json:"stored_at"`
}

// Store keeps records by key. Get returns sentinel.ErrNotFound for unknown
// or expired keys. Put keeps the first record written for a key.
type Store interface {
	Get(ctx context.Context, key string) (*Record, error)
	Put(ctx context.Context, key string, record Record, ttl time.Duration) error
}

// Fingerprint hashes the parts of a request that must match for a replay.
func Fingerprint(method, path, caller string, body []byte) string {
	h := sha3.New256()
	for _, part := range [][]byte{[]byte(method), []byte(path), []byte(caller)} {
		h.Write(part)
		h.Write([]byte{0})
	}
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}
