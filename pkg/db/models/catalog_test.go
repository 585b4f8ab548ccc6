package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestProductPrimaryImage(t *testing.T) {
	assert.Equal(t, "", Product{}.PrimaryImage())
	assert.Equal(t, "https://img/a.png", Product{Images: []string{"https://img/a.png", "https://img/b.png"}}.PrimaryImage())
}

func TestProductPageKey(t *testing.T) {
	p := Product{ID: uuid.New(), CreatedAt: time.Unix(1700000000, 0)}
	key := p.PageKey()
	assert.Equal(t, p.ID, key.ID)
	assert.True(t, p.CreatedAt.Equal(key.CreatedAt))
}
