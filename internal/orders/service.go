package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/essyessentials/storefront-backend/internal/live"
	"github.com/essyessentials/storefront-backend/pkg/db"
	"github.com/essyessentials/storefront-backend/pkg/db/models"
	"github.com/essyessentials/storefront-backend/pkg/enums"
	pkgerrors "github.com/essyessentials/storefront-backend/pkg/errors"
	"github.com/essyessentials/storefront-backend/pkg/logger"
	"github.com/essyessentials/storefront-backend/pkg/metrics"
	"github.com/essyessentials/storefront-backend/pkg/pagination"
)

type statusNotifier interface {
	StatusChanged(ctx context.Context, order *models.Order) error
}

// Service defines the admin order operations.
type Service interface {
	List(ctx context.Context, input ListInput) (*OrderListResult, error)
	ListAll(ctx context.Context) ([]models.Order, error)
	Get(ctx context.Context, id uuid.UUID) (*OrderDetail, error)
	SetStatus(ctx context.Context, id uuid.UUID, status string) (*models.Order, error)
	Summary(ctx context.Context) (*Summary, error)
}

// ListInput captures admin list parameters.
type ListInput struct {
	Status     string
	Pagination pagination.Params
}

type service struct {
	repo     Repository
	notifier statusNotifier
	changes  live.Publisher
	metrics  *metrics.CheckoutMetrics
	logg     *logger.Logger
	now      func() time.Time
}

func NewService(repo Repository, notifier statusNotifier, changes live.Publisher, m *metrics.CheckoutMetrics, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("status notifier required")
	}
	if changes == nil {
		return nil, fmt.Errorf("change publisher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:     repo,
		notifier: notifier,
		changes:  changes,
		metrics:  m,
		logg:     logg,
		now:      time.Now,
	}, nil
}

func (s *service) List(ctx context.Context, input ListInput) (*OrderListResult, error) {
	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	filter := ListFilter{Limit: pagination.NormalizeLimit(input.Pagination.Limit), Cursor: cursor}
	if input.Status != "" {
		status, err := enums.ParseOrderStatus(input.Status)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		filter.Status = &status
	}

	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	page, next := pagination.Trim(rows, filter.Limit)
	result := &OrderListResult{Orders: page, NextCursor: next}
	if result.Orders == nil {
		result.Orders = []models.Order{}
	}
	return result, nil
}

func (s *service) ListAll(ctx context.Context) ([]models.Order, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return rows, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*OrderDetail, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return &OrderDetail{Order: order, Gain: Gain(order)}, nil
}

// SetStatus accepts any named status regardless of the current one. The
// customer email afterwards is best effort and never undoes the write.
func (s *service) SetStatus(ctx context.Context, id uuid.UUID, status string) (*models.Order, error) {
	next, err := enums.ParseOrderStatus(status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order status").
			WithDetails(map[string]any{"allowed": enums.OrderStatuses()})
	}

	if err := s.repo.UpdateStatus(ctx, id, next, s.now().UTC()); err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	s.metrics.IncStatusChange(next.String())

	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithFields(s.logg.WithOrderID(ctx, order.ID.String()), map[string]any{"status": next.String()})
	s.logg.Info(ctx, "order.status.updated")

	if err := s.notifier.StatusChanged(ctx, order); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "order.status.email_failed")
	}
	if err := s.changes.Publish(ctx, live.TopicOrders); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "order.change.publish_failed")
	}
	return order, nil
}

func (s *service) Summary(ctx context.Context) (*Summary, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return summarize(rows), nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}
