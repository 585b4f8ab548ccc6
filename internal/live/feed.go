package live

import (
	"context"
	"sync"

	"github.com/essyessentials/storefront-backend/pkg/logger"
)

// Loader reads the full current collection.
type Loader[T any] func(ctx context.Context) ([]T, error)

// Feed turns change notifications into full snapshots for its subscribers.
type Feed[T any] struct {
	name string
	load Loader[T]
	logg *logger.Logger

	mu   sync.Mutex
	subs map[*Subscription[T]]struct{}
}

func NewFeed[T any](name string, load Loader[T], logg *logger.Logger) *Feed[T] {
	return &Feed[T]{
		name: name,
		load: load,
		logg: logg,
		subs: map[*Subscription[T]]struct{}{},
	}
}

// Subscribe returns a subscription whose channel already holds the current
// snapshot. The subscription ends when ctx is done or Close is called.
func (f *Feed[T]) Subscribe(ctx context.Context) (*Subscription[T], error) {
	snapshot, err := f.load(ctx)
	if err != nil {
		return nil, err
	}

	sub := &Subscription[T]{
		feed: f,
		ch:   make(chan []T, 1),
		done: make(chan struct{}),
	}
	sub.ch <- snapshot

	f.mu.Lock()
	f.subs[sub] = struct{}{}
	f.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			sub.Close()
		case <-sub.done:
		}
	}()
	return sub, nil
}

// Notify reloads the collection and hands the new snapshot to every
// subscriber. A subscriber that has not consumed the previous snapshot only
// sees the newest one.
func (f *Feed[T]) Notify(ctx context.Context) {
	if f.Subscribers() == 0 {
		return
	}
	snapshot, err := f.load(ctx)
	if err != nil {
		f.logg.Error(f.logg.WithField(ctx, "feed", f.name), "live.feed.reload_failed", err)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for sub := range f.subs {
		sub.offer(snapshot)
	}
}

func (f *Feed[T]) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

func (f *Feed[T]) remove(sub *Subscription[T]) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.subs, sub)
	close(sub.ch)
}

// Subscription is a stream of full snapshots.
type Subscription[T any] struct {
	feed *Feed[T]
	ch   chan []T
	done chan struct{}
	once sync.Once
}

// C yields snapshots and is closed after Close.
func (s *Subscription[T]) C() <-chan []T {
	return s.ch
}

// Close unsubscribes. Safe to call more than once and from any goroutine.
func (s *Subscription[T]) Close() {
	s.once.Do(func() {
		close(s.done)
		s.feed.remove(s)
	})
}

// offer must be called with the feed lock held.
func (s *Subscription[T]) offer(snapshot []T) {
	select {
	case <-s.ch:
	default:
	}
	select {
	case s.ch <- snapshot:
	default:
	}
}
