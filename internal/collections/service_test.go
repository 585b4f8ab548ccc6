package collections

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/essyessentials/storefront-backend/pkg/db/dbtest"
	"github.com/essyessentials/storefront-backend/pkg/db/models"
	pkgerrors "github.com/essyessentials/storefront-backend/pkg/errors"
	"github.com/essyessentials/storefront-backend/pkg/logger"
)

type recordingPublisher struct{ topics []string }

func (r *recordingPublisher) Publish(ctx context.Context, topic string) error {
	r.topics = append(r.topics, topic)
	return nil
}

func newTestService(t *testing.T) (Service, *recordingPublisher) {
	t.Helper()
	conn := dbtest.Open(t, &models.Collection{})
	pub := &recordingPublisher{}
	svc, err := NewService(NewRepository(conn), pub, logger.New(logger.Options{ServiceName: "test", Output: &bytes.Buffer{}}))
	require.NoError(t, err)
	return svc, pub
}

func TestCollectionsListedByName(t *testing.T) {
	svc, pub := newTestService(t)
	ctx := context.Background()

	for _, name := range []string{"Skincare", "Gifts", "Haircare"} {
		_, err := svc.Create(ctx, name)
		require.NoError(t, err)
	}

	rows, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Gifts", rows[0].Name)
	assert.Equal(t, "Haircare", rows[1].Name)
	assert.Equal(t, "Skincare", rows[2].Name)
	assert.Len(t, pub.topics, 3)
}

func TestCollectionCreateRules(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "   ")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)

	_, err = svc.Create(ctx, " Gifts ")
	require.NoError(t, err)
	_, err = svc.Create(ctx, "Gifts")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)
}

func TestCollectionDelete(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "Gifts")
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, created.ID))

	rows, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)

	err = svc.Delete(ctx, uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)
}
