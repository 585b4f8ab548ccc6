package live

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/essyessentials/storefront-backend/pkg/logger"
	redislib "github.com/redis/go-redis/v9"
)

// Change topics carried on the bus.
const (
	TopicProducts    = "products"
	TopicOrders      = "orders"
	TopicCollections = "collections"
	TopicSettings    = "settings"
)

// Publisher announces that the data behind a topic changed.
type Publisher interface {
	Publish(ctx context.Context, topic string) error
}

type pubsubClient interface {
	Publish(ctx context.Context, channel string, message any) error
	Subscribe(ctx context.Context, channels ...string) (*redislib.PubSub, error)
	ChangesChannel() string
}

// Bus fans change notifications out to every API instance over Redis pub/sub.
// Instances receive their own publications too, so handlers run once per
// change on every instance.
type Bus struct {
	client pubsubClient
	logg   *logger.Logger

	mu       sync.RWMutex
	handlers map[string][]func(context.Context)
}

func NewBus(client pubsubClient, logg *logger.Logger) (*Bus, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Bus{client: client, logg: logg, handlers: map[string][]func(context.Context){}}, nil
}

func (b *Bus) Publish(ctx context.Context, topic string) error {
	if err := b.client.Publish(ctx, b.client.ChangesChannel(), topic); err != nil {
		return fmt.Errorf("publish %s change: %w", topic, err)
	}
	return nil
}

// On registers fn to run whenever topic changes.
func (b *Bus) On(topic string, fn func(context.Context)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[topic] = append(b.handlers[topic], fn)
}

// Run consumes change notifications until ctx is cancelled.
func (b *Bus) Run(ctx context.Context) error {
	sub, err := b.client.Subscribe(ctx, b.client.ChangesChannel())
	if err != nil {
		return err
	}
	defer sub.Close()

	b.logg.Info(ctx, "live.bus.subscribed")
	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return fmt.Errorf("change subscription closed")
			}
			b.dispatch(ctx, strings.TrimSpace(msg.Payload))
		}
	}
}

func (b *Bus) dispatch(ctx context.Context, topic string) {
	b.mu.RLock()
	handlers := append([]func(context.Context){}, b.handlers[topic]...)
	b.mu.RUnlock()

	if len(handlers) == 0 {
		b.logg.Debug(b.logg.WithField(ctx, "topic", topic), "live.bus.unhandled_topic")
		return
	}
	for _, fn := range handlers {
		fn(ctx)
	}
}
