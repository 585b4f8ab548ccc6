package settings

import (
	"context"
	"fmt"
	"sync"

	"github.com/essyessentials/storefront-backend/internal/live"
	"github.com/essyessentials/storefront-backend/pkg/db/models"
	"github.com/essyessentials/storefront-backend/pkg/logger"
)

type loader interface {
	Load(ctx context.Context) (models.StoreSettings, error)
}

type changeSource interface {
	On(topic string, fn func(context.Context))
}

// Provider owns the in-memory copy of the store settings. Components read
// settings through it and never from a package-level variable.
type Provider struct {
	repo loader
	logg *logger.Logger

	mu      sync.RWMutex
	current models.StoreSettings
	subs    map[int]chan models.StoreSettings
	nextID  int
}

// NewProvider starts from the defaults; call Refresh to load stored values.
func NewProvider(repo loader, logg *logger.Logger) (*Provider, error) {
	if repo == nil {
		return nil, fmt.Errorf("settings repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Provider{
		repo:    repo,
		logg:    logg,
		current: models.DefaultStoreSettings(),
		subs:    map[int]chan models.StoreSettings{},
	}, nil
}

// Current returns a copy of the latest settings.
func (p *Provider) Current() models.StoreSettings {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current.Clone()
}

// Refresh reloads settings from the database and notifies subscribers.
func (p *Provider) Refresh(ctx context.Context) error {
	s, err := p.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	p.Set(s)
	return nil
}

// Set replaces the current settings and notifies subscribers.
func (p *Provider) Set(s models.StoreSettings) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = s.Clone()
	for _, ch := range p.subs {
		offer(ch, p.current.Clone())
	}
}

// Subscribe yields the current settings immediately and then every update.
// Slow readers only see the newest value. The returned func unsubscribes and
// may be called any number of times.
func (p *Provider) Subscribe() (<-chan models.StoreSettings, func()) {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	ch := make(chan models.StoreSettings, 1)
	ch <- p.current.Clone()
	p.subs[id] = ch
	p.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			delete(p.subs, id)
			close(ch)
		})
	}
}

// Watch refreshes whenever another instance reports a settings change.
func (p *Provider) Watch(source changeSource) {
	source.On(live.TopicSettings, func(ctx context.Context) {
		if err := p.Refresh(ctx); err != nil {
			p.logg.Error(ctx, "settings.refresh_failed", err)
		}
	})
}

func offer(ch chan models.StoreSettings, s models.StoreSettings) {
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- s:
	default:
	}
}
