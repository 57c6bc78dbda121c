package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"artbid-api/internal/common"
	"artbid-api/internal/entity"
	"artbid-api/internal/service"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const subscriptionBuffer = 64

func NewClient(ctx context.Context, addr string, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()

		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

func channelFor(auctionId uuid.UUID) string {
	return common.RedisEventChannelPrefix + auctionId.String()
}

// EventBus publishes auction events on per-auction Redis channels and lets
// watchers subscribe to them.
type EventBus struct {
	client *redis.Client
}

func NewEventBus(client *redis.Client) *EventBus {
	return &EventBus{client: client}
}

func (b *EventBus) Publish(ctx context.Context, event *entity.AuctionEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal auction event: %w", err)
	}

	if err := b.client.Publish(ctx, channelFor(event.AuctionId), payload).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}

	return nil
}

func (b *EventBus) Subscribe(ctx context.Context, auctionId uuid.UUID) (service.Subscription, error) {
	pubsub := b.client.Subscribe(ctx, channelFor(auctionId))
	// Receive waits for the subscription confirmation.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()

		return nil, fmt.Errorf("redis subscribe: %w", err)
	}

	sub := &subscription{
		pubsub:   pubsub,
		messages: make(chan []byte, subscriptionBuffer),
		done:     make(chan struct{}),
	}
	go sub.forward()

	return sub, nil
}

type subscription struct {
	pubsub    *redis.PubSub
	messages  chan []byte
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

func (s *subscription) forward() {
	defer close(s.messages)

	ch := s.pubsub.Channel()
	for {
		select {
		case <-s.done:
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			select {
			case s.messages <- []byte(msg.Payload):
			case <-s.done:
				return
			}
		}
	}
}

func (s *subscription) Messages() <-chan []byte {
	return s.messages
}

func (s *subscription) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		s.closeErr = s.pubsub.Close()
	})

	return s.closeErr
}
