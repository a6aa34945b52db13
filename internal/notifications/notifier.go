// Package notifications provides real-time notification delivery over Redis pub/sub.
// The durable record is the notifications table; this channel is a best-effort
// live tail for connected consumers.
package notifications

import (
	"context"
	"encoding/json"
	"log"
	"runtime/debug"

	"moltboard/internal/models"

	"github.com/redis/go-redis/v9"
)

// Notifier provides helpers to publish notifications into Redis channels
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishAgent sends a notification payload to an agent's channel.
// A nil Redis client makes every publish a no-op.
func (n *Notifier) PublishAgent(ctx context.Context, agentID string, notification *models.Notification) error {
	if n.rdb == nil {
		return nil
	}
	payload, err := json.Marshal(notification)
	if err != nil {
		return err
	}
	return n.rdb.Publish(ctx, "notifications:agent:"+agentID, payload).Err()
}

// StartPatternSubscriber subscribes to `notifications:agent:*` and calls
// onMessage for each incoming message with channel and payload.
func (n *Notifier) StartPatternSubscriber(
	ctx context.Context, onMessage func(channel string, payload string),
) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, "notifications:agent:*")
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							log.Printf("PANIC in PatternSubscriber: %v\n%s", r, debug.Stack())
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}
