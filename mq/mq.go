// Package mq carries catalog events between processes over Redis pub/sub so
// every instance can push them to its own map viewers.
package mq

import (
	"context"
	"encoding/json"

	"campusexplorer/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Publisher struct {
	conn    *redis.Client
	channel string
	log     *zap.Logger
}

func NewPublisher(conn *redis.Client, channel string, log *zap.Logger) *Publisher {
	return &Publisher{conn: conn, channel: channel, log: log}
}

// Notify publishes the event. Delivery is best effort; a failed publish is
// logged and the committed change stands.
func (p *Publisher) Notify(ctx context.Context, event models.CatalogEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		p.log.Error("encode catalog event", zap.Error(err))
		return
	}
	if err := p.conn.Publish(ctx, p.channel, data).Err(); err != nil {
		p.log.Warn("publish catalog event", zap.String("channel", p.channel), zap.Error(err))
		return
	}
	p.log.Debug("catalog event published", zap.String("action", string(event.Action)), zap.String("id", event.Key))
}

// Subscribe delivers events from channel to handle until ctx is done. It
// returns once the subscription is confirmed so no event published after the
// call can be missed.
func Subscribe(ctx context.Context, conn *redis.Client, channel string, log *zap.Logger, handle func(models.CatalogEvent)) (<-chan struct{}, error) {
	sub := conn.Subscribe(ctx, channel)
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer sub.Close()

		ch := sub.Channel()
		log.Info("listening for catalog events", zap.String("channel", channel))
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var event models.CatalogEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					log.Warn("drop malformed catalog event", zap.Error(err))
					continue
				}
				handle(event)
			}
		}
	}()
	return done, nil
}

// Fanout sends every event to each notifier in turn.
type Fanout []interface {
	Notify(ctx context.Context, event models.CatalogEvent)
}

func (f Fanout) Notify(ctx context.Context, event models.CatalogEvent) {
	for _, n := range f {
		n.Notify(ctx, event)
	}
}
