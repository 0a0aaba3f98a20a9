package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/farhanadi/ticketbook/internal/models"
)

const (
	eventListKey = "events:list"
	eventListTTL = 30 * time.Second
)

// EventCache keeps the public event listing in Redis for a short window.
// It is best-effort: every method degrades to a miss or a no-op on error,
// the request itself never fails because of the cache.
type EventCache struct {
	client *redis.Client
}

func NewEventCache(client *redis.Client) *EventCache {
	return &EventCache{client: client}
}

func (ec *EventCache) GetEvents(ctx context.Context) ([]models.Event, bool) {
	payload, err := ec.client.Get(ctx, eventListKey).Bytes()
	if err != nil {
		return nil, false
	}

	var events []models.Event
	if err := json.Unmarshal(payload, &events); err != nil {
		return nil, false
	}
	return events, true
}

func (ec *EventCache) SetEvents(ctx context.Context, events []models.Event) {
	payload, err := json.Marshal(events)
	if err != nil {
		return
	}
	ec.client.Set(ctx, eventListKey, payload, eventListTTL)
}

func (ec *EventCache) Invalidate(ctx context.Context) {
	ec.client.Del(ctx, eventListKey)
}
