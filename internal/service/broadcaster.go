package service

import (
	"context"
	"encoding/json"
	"log"

	"farmdirect-backend/internal/model"

	"github.com/redis/go-redis/v9"
)

// Broadcaster fans an auction event out to whoever is watching the channel.
// Publishing is fire-and-forget: a slow or failed transport must never block
// or fail the state change that produced the event.
type Broadcaster interface {
	Publish(channel string, event *model.WSEvent)
}

// AuctionChannel names the per-auction event channel.
func AuctionChannel(auctionID string) string {
	return "auction:" + auctionID
}

// RedisBroadcaster mirrors events to Redis pub/sub so horizontally scaled
// instances (or external consumers) see the same stream as local websocket
// clients.
type RedisBroadcaster struct {
	client *redis.Client
}

func NewRedisBroadcaster(redisURL string) (*RedisBroadcaster, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return &RedisBroadcaster{client: redis.NewClient(opts)}, nil
}

func (b *RedisBroadcaster) Publish(channel string, event *model.WSEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	if err := b.client.Publish(context.Background(), channel, data).Err(); err != nil {
		log.Printf("REDIS: publish %s failed: %v", channel, err)
	}
}

func (b *RedisBroadcaster) Close() error {
	return b.client.Close()
}

// MultiBroadcaster publishes to every configured transport.
type MultiBroadcaster []Broadcaster

func (m MultiBroadcaster) Publish(channel string, event *model.WSEvent) {
	for _, b := range m {
		b.Publish(channel, event)
	}
}
