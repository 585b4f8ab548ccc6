package collections

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/essyessentials/storefront-backend/internal/live"
	"github.com/essyessentials/storefront-backend/pkg/db"
	"github.com/essyessentials/storefront-backend/pkg/db/models"
	pkgerrors "github.com/essyessentials/storefront-backend/pkg/errors"
	"github.com/essyessentials/storefront-backend/pkg/logger"
)

// Service manages the named tags products are grouped by.
type Service interface {
	List(ctx context.Context) ([]models.Collection, error)
	Create(ctx context.Context, name string) (*models.Collection, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo    *Repository
	changes live.Publisher
	logg    *logger.Logger
}

func NewService(repo *Repository, changes live.Publisher, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("collection repository required")
	}
	if changes == nil {
		return nil, fmt.Errorf("change publisher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, changes: changes, logg: logg}, nil
}

func (s *service) List(ctx context.Context) ([]models.Collection, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list collections")
	}
	return rows, nil
}

func (s *service) Create(ctx context.Context, name string) (*models.Collection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	created, err := s.repo.Create(ctx, &models.Collection{Name: name})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "collection already exists").
				WithDetails(map[string]any{"name": name})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert collection")
	}
	s.publish(ctx)
	return created, nil
}

// Delete removes the tag only. Products keep the name in their
// collection_names until edited.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "collection not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete collection")
	}
	s.publish(ctx)
	return nil
}

func (s *service) publish(ctx context.Context) {
	if err := s.changes.Publish(ctx, live.TopicCollections); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "collection.change.publish_failed")
	}
}
