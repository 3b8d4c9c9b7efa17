package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/ds124wfegd/eventhub/internal/entity"

	"github.com/redis/go-redis/v9"
)

const eventKeyPrefix = "event:"

// EventCache keeps event details in Redis for ttl.
type EventCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewEventCache(client *redis.Client, ttl time.Duration) *EventCache {
	return &EventCache{
		client: client,
		ttl:    ttl,
	}
}

func eventKey(id int64) string {
	return eventKeyPrefix + strconv.FormatInt(id, 10)
}

func (c *EventCache) SetEvent(ctx context.Context, event *entity.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, eventKey(event.ID), data, c.ttl).Err()
}

// GetEvent returns (nil, nil) on a cache miss.
func (c *EventCache) GetEvent(ctx context.Context, id int64) (*entity.Event, error) {
	data, err := c.client.Get(ctx, eventKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var event entity.Event
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

func (c *EventCache) DeleteEvent(ctx context.Context, id int64) error {
	return c.client.Del(ctx, eventKey(id)).Err()
}
