// Package session holds parsed uploads between parse time and export time.
//
// A session is created once per successful parse, never mutated afterwards,
// and removed either when it is exported (TakeOnce) or when it outlives the
// store's time-to-live. Expired, consumed and unknown ids are all reported
// as ErrNotFound so callers cannot tell them apart.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/Zuo-Peng/chatx/internal/parse"
	"github.com/Zuo-Peng/chatx/internal/stats"
	"github.com/google/uuid"
)

// ErrNotFound covers unknown, expired and already exported sessions alike.
var ErrNotFound = errors.New("session not found or expired")

// DefaultTTL applies when a store is built with a non-positive TTL.
const DefaultTTL = time.Hour

type Session struct {
	ID             string
	BaseName       string
	CreatedAt      time.Time
	Records        []parse.Record
	Stats          stats.Summary
	FilesProcessed int
	Errors         []parse.FileError
}

// New builds a session around a parse result with a fresh random id.
func New(baseName string, result *parse.ParseResult, now time.Time) *Session {
	return &Session{
		ID:             uuid.NewString(),
		BaseName:       baseName,
		CreatedAt:      now,
		Records:        result.Records,
		Stats:          stats.Compute(result.Records),
		FilesProcessed: result.FilesProcessed,
		Errors:         result.Errors,
	}
}

// Store keeps sessions for a bounded time. Implementations must be safe for
// concurrent use; removal is atomic with respect to Get and TakeOnce.
type Store interface {
	Put(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	// TakeOnce returns the session and removes it in one step. Only one of
	// several concurrent callers for the same id succeeds.
	TakeOnce(ctx context.Context, id string) (*Session, error)
	// SweepExpired removes every session older than the TTL at now and
	// reports how many were removed.
	SweepExpired(ctx context.Context, now time.Time) (int, error)
}

type options struct {
	now func() time.Time
}

type Option func(*options)

// WithClock replaces time.Now for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func expired(created, now time.Time, ttl time.Duration) bool {
	return now.Sub(created) > ttl
}

func normalizeTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return DefaultTTL
	}
	return ttl
}
