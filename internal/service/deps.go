package service

import (
	"context"
	"time"

	"github.com/fortuna/courtside/internal/store"
)

// Cache stores aggregate results between writes. Entries live in a
// generation; Invalidate moves to a new one.
type Cache interface {
	Generation(ctx context.Context) (int64, error)
	Get(ctx context.Context, gen int64, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, gen int64, key string, value interface{}, ttl time.Duration) error
	// Invalidate makes every previously stored entry unreachable.
	Invalidate(ctx context.Context) error
}

// Publisher announces stat changes to downstream consumers.
type Publisher interface {
	PublishStatEvent(ctx context.Context, eventType string, stat *store.Stat) error
}

// Stat event types.
const (
	EventStatCreated   = "stat.created"
	EventStatUpdated   = "stat.updated"
	EventStatCorrected = "stat.corrected"
	EventStatDeleted   = "stat.deleted"
)

type nopCache struct{}

func (nopCache) Generation(context.Context) (int64, error)                            { return 0, nil }
func (nopCache) Get(context.Context, int64, string, interface{}) (bool, error)        { return false, nil }
func (nopCache) Set(context.Context, int64, string, interface{}, time.Duration) error { return nil }
func (nopCache) Invalidate(context.Context) error                                     { return nil }

type nopPublisher struct{}

func (nopPublisher) PublishStatEvent(context.Context, string, *store.Stat) error { return nil }

// NopCache never stores anything.
func NopCache() Cache { return nopCache{} }

// NopPublisher drops every event.
func NopPublisher() Publisher { return nopPublisher{} }
