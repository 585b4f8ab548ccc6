package settings

import (
	"bytes"
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/essyessentials/storefront-backend/internal/live"
	"github.com/essyessentials/storefront-backend/pkg/db/dbtest"
	"github.com/essyessentials/storefront-backend/pkg/db/models"
	pkgerrors "github.com/essyessentials/storefront-backend/pkg/errors"
	"github.com/essyessentials/storefront-backend/pkg/logger"
	"github.com/essyessentials/storefront-backend/pkg/types"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: &bytes.Buffer{}})
}

type recordingPublisher struct{ topics []string }

func (r *recordingPublisher) Publish(ctx context.Context, topic string) error {
	r.topics = append(r.topics, topic)
	return nil
}

type fakeSource struct {
	handlers map[string][]func(context.Context)
}

func (f *fakeSource) On(topic string, fn func(context.Context)) {
	if f.handlers == nil {
		f.handlers = map[string][]func(context.Context){}
	}
	f.handlers[topic] = append(f.handlers[topic], fn)
}

func (f *fakeSource) fire(topic string) {
	for _, fn := range f.handlers[topic] {
		fn(context.Background())
	}
}

type failingLoader struct{}

func (failingLoader) Load(context.Context) (models.StoreSettings, error) {
	return models.StoreSettings{}, errors.New("db down")
}

func newFixture(t *testing.T) (*Repository, *Provider, Service, *recordingPublisher) {
	t.Helper()
	repo := NewRepository(dbtest.Open(t, &models.StoreSettings{}))
	provider, err := NewProvider(repo, testLogger())
	require.NoError(t, err)
	pub := &recordingPublisher{}
	svc, err := NewService(repo, provider, pub, testLogger())
	require.NoError(t, err)
	return repo, provider, svc, pub
}

func TestRepositoryDefaultsAndUpsert(t *testing.T) {
	repo, _, _, _ := newFixture(t)
	ctx := context.Background()

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Essyessentials", loaded.StoreName)
	assert.True(t, loaded.AllowPickup)
	assert.True(t, loaded.AllowAddressNotListed)
	assert.Equal(t, "#6d28d9", loaded.Theme.Button)

	loaded.StoreName = "Essy"
	require.NoError(t, repo.Save(ctx, &loaded))
	loaded.Tagline = "Glow"
	require.NoError(t, repo.Save(ctx, &loaded))

	again, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Essy", again.StoreName)
	assert.Equal(t, "Glow", again.Tagline)
	assert.Equal(t, models.StoreSettingsID, again.ID)
}

func TestProviderSubscribeEmitsCurrentThenUpdates(t *testing.T) {
	_, provider, _, _ := newFixture(t)

	ch, unsubscribe := provider.Subscribe()
	first := <-ch
	assert.Equal(t, "Essyessentials", first.StoreName)

	next := models.DefaultStoreSettings()
	next.StoreName = "Renamed"
	provider.Set(next)

	select {
	case got := <-ch:
		assert.Equal(t, "Renamed", got.StoreName)
	case <-time.After(time.Second):
		t.Fatal("expected update")
	}

	unsubscribe()
	unsubscribe()
	_, open := <-ch
	assert.False(t, open)

	provider.Set(next)
}

func TestProviderCurrentIsACopy(t *testing.T) {
	_, provider, _, _ := newFixture(t)
	s := models.DefaultStoreSettings()
	s.ShippingBlocks = []types.ShippingOption{{ID: "sb_aaaaaa", Title: "Lagos", Fee: 2000}}
	provider.Set(s)

	got := provider.Current()
	got.ShippingBlocks[0].Fee = 1
	assert.Equal(t, int64(2000), provider.Current().ShippingBlocks[0].Fee)
}

func TestProviderWatchRefreshesFromStore(t *testing.T) {
	repo, provider, _, _ := newFixture(t)
	ctx := context.Background()
	source := &fakeSource{}
	provider.Watch(source)

	stored := models.DefaultStoreSettings()
	stored.StoreName = "From another instance"
	require.NoError(t, repo.Save(ctx, &stored))

	assert.Equal(t, "Essyessentials", provider.Current().StoreName)
	source.fire(live.TopicSettings)
	assert.Equal(t, "From another instance", provider.Current().StoreName)
}

func TestProviderRefreshError(t *testing.T) {
	provider, err := NewProvider(failingLoader{}, testLogger())
	require.NoError(t, err)
	assert.Error(t, provider.Refresh(context.Background()))
	assert.Equal(t, "Essyessentials", provider.Current().StoreName)
}

func TestServiceShippingBlocks(t *testing.T) {
	_, provider, svc, pub := newFixture(t)
	ctx := context.Background()

	updated, err := svc.AddShippingBlock(ctx, ShippingBlockInput{Title: " Lagos Mainland ", Fee: 2500})
	require.NoError(t, err)
	require.Len(t, updated.ShippingBlocks, 1)
	block := updated.ShippingBlocks[0]
	assert.Regexp(t, regexp.MustCompile(`^sb_[0-9a-z]{6}$`), block.ID)
	assert.Equal(t, "Lagos Mainland", block.Title)
	assert.Equal(t, block.ID, provider.Current().ShippingBlocks[0].ID)
	assert.Equal(t, []string{live.TopicSettings}, pub.topics)

	_, err = svc.AddShippingBlock(ctx, ShippingBlockInput{Title: "Island", Fee: -1})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.RemoveShippingBlock(ctx, "sb_missing")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	removed, err := svc.RemoveShippingBlock(ctx, block.ID)
	require.NoError(t, err)
	assert.Empty(t, removed.ShippingBlocks)
	assert.Empty(t, provider.Current().ShippingBlocks)
}

func TestServiceUpdateAndLogo(t *testing.T) {
	_, provider, svc, _ := newFixture(t)
	ctx := context.Background()

	_, err := svc.Update(ctx, UpdateInput{StoreName: " "})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.Update(ctx, UpdateInput{
		StoreName:      "Essy",
		WhatsAppNumber: "+234 801 234 5678",
		Bank:           types.BankDetails{AccountName: "Essy", AccountNumber: "0123456789", BankName: "GTB"},
		AllowPickup:    false,
	})
	require.NoError(t, err)

	withLogo, err := svc.SetLogo(ctx, "https://cdn/logo.png")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/logo.png", withLogo.LogoURL)
	assert.Equal(t, "Essy", withLogo.StoreName)

	current := svc.Get(ctx)
	assert.False(t, current.AllowPickup)
	assert.Equal(t, "GTB", current.Bank.BankName)
	assert.Equal(t, current, provider.Current())
}
