package checkout

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/essyessentials/storefront-backend/internal/cart"
	"github.com/essyessentials/storefront-backend/internal/live"
	"github.com/essyessentials/storefront-backend/internal/media"
	"github.com/essyessentials/storefront-backend/internal/notifications"
	"github.com/essyessentials/storefront-backend/internal/shipping"
	"github.com/essyessentials/storefront-backend/pkg/db/models"
	pkgerrors "github.com/essyessentials/storefront-backend/pkg/errors"
	"github.com/essyessentials/storefront-backend/pkg/logger"
	"github.com/essyessentials/storefront-backend/pkg/metrics"
	"github.com/essyessentials/storefront-backend/pkg/money"
	"github.com/essyessentials/storefront-backend/pkg/types"
	"github.com/essyessentials/storefront-backend/pkg/whatsapp"
)

type cartReader interface {
	Get(ctx context.Context, token string) (cart.Cart, error)
	Clear(ctx context.Context, token string) error
}

type settingsReader interface {
	Current() models.StoreSettings
}

type proofUploader interface {
	UploadImage(ctx context.Context, kind media.Kind, file media.File) (string, error)
}

type orderWriter interface {
	Create(ctx context.Context, order *models.Order) error
}

type placementNotifier interface {
	OrderPlacedCustomer(ctx context.Context, order *models.Order) error
	OrderPlacedAdmin(ctx context.Context, order *models.Order) error
}

// Service places orders from a shopper's cart.
type Service interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*Result, error)
}

// PlaceOrderInput is everything the shopper submits at checkout. Proof is
// nil when no file was attached.
type PlaceOrderInput struct {
	CartToken        string
	Customer         types.Customer
	Address          types.Address
	ShippingOptionID string
	Proof            *media.File
}

// Result is returned once the order row exists. It marshals to the
// shopper's view of the order.
type Result struct {
	Order       *models.Order
	WhatsAppURL string
}

// Deps wires the checkout service.
type Deps struct {
	Carts      cartReader
	Settings   settingsReader
	Uploads    proofUploader
	Orders     orderWriter
	Stock      StockDecrementer
	Notifier   placementNotifier
	Changes    live.Publisher
	PostCommit *PostCommit
	Formatter  money.Formatter
	Metrics    *metrics.CheckoutMetrics
	Logger     *logger.Logger
}

type service struct {
	Deps
	now         func() time.Time
	orderNumber func(time.Time) int64
}

func NewService(deps Deps) (Service, error) {
	switch {
	case deps.Carts == nil:
		return nil, fmt.Errorf("cart service required")
	case deps.Settings == nil:
		return nil, fmt.Errorf("settings provider required")
	case deps.Uploads == nil:
		return nil, fmt.Errorf("media service required")
	case deps.Orders == nil:
		return nil, fmt.Errorf("orders repository required")
	case deps.Stock == nil:
		return nil, fmt.Errorf("stock decrementer required")
	case deps.Notifier == nil:
		return nil, fmt.Errorf("notifier required")
	case deps.Changes == nil:
		return nil, fmt.Errorf("change publisher required")
	case deps.PostCommit == nil:
		return nil, fmt.Errorf("post-commit runner required")
	case deps.Logger == nil:
		return nil, fmt.Errorf("logger required")
	}
	return &service{Deps: deps, now: time.Now, orderNumber: newOrderNumber}, nil
}

// newOrderNumber is the placement time in milliseconds plus a small random
// offset. Collisions are improbable, not impossible.
func newOrderNumber(at time.Time) int64 {
	return at.UnixMilli() + rand.Int64N(9000)
}

func (s *service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*Result, error) {
	ctx = s.Logger.WithCartToken(ctx, input.CartToken)

	c, err := s.Carts.Get(ctx, input.CartToken)
	if err != nil {
		return nil, err
	}
	settings := s.Settings.Current()
	option, err := validate(c, input.Customer, input.ShippingOptionID, shipping.Resolve(settings), input.Proof != nil)
	if err != nil {
		s.reject(ctx, err)
		return nil, err
	}

	var proofURL *string
	if shipping.RequiresPaymentProof(option.ID) {
		url, err := s.Uploads.UploadImage(ctx, media.KindPaymentProof, *input.Proof)
		if err != nil {
			err = uploadError(err)
			s.reject(ctx, err)
			return nil, err
		}
		proofURL = &url
	}

	now := s.now().UTC()
	items := c.Snapshot()
	subtotal := c.Subtotal()
	order := &models.Order{
		OrderNumber:     s.orderNumber(now),
		Items:           items,
		Subtotal:        subtotal,
		Shipping:        option,
		Total:           subtotal + option.Fee,
		Customer:        input.Customer,
		Address:         input.Address,
		PaymentProofURL: proofURL,
		Status:          shipping.InitialStatus(option.ID),
	}
	if err := s.Orders.Create(ctx, order); err != nil {
		s.Logger.Error(ctx, "checkout.order.persist_failed", err)
		err := pkgerrors.Wrap(pkgerrors.CodeOrderFailed, err, "order could not be placed").WithReason(ReasonOrderFailed)
		s.reject(ctx, err)
		return nil, err
	}

	ctx = s.Logger.WithOrderID(ctx, order.ID.String())
	s.Metrics.IncPlaced(option.ID, order.Status.String())
	s.Logger.Info(s.Logger.WithFields(ctx, map[string]any{
		"order_number": order.OrderNumber,
		"shipping":     option.ID,
		"total":        order.Total,
		"status":       order.Status.String(),
	}), "checkout.order.placed")

	_ = s.PostCommit.Run(ctx, s.postCommitTasks(order, input.CartToken))

	result := &Result{Order: order}
	if link, ok := whatsapp.Link(settings.WhatsAppNumber, notifications.WhatsAppText(order, s.Formatter)); ok {
		result.WhatsAppURL = link
	}
	return result, nil
}

func (s *service) postCommitTasks(order *models.Order, cartToken string) []Task {
	tasks := make([]Task, 0, len(order.Items)+5)
	if shipping.DecrementsStock(order.Shipping.ID) {
		for _, item := range order.Items {
			tasks = append(tasks, Task{
				Name: "stock_decrement",
				Run: func(ctx context.Context) error {
					id, err := uuid.Parse(item.ProductID)
					if err != nil {
						return fmt.Errorf("product %q: %w", item.ProductID, err)
					}
					return s.Stock.Decrement(ctx, id, item.Quantity)
				},
			})
		}
	}
	return append(tasks,
		Task{Name: "customer_email", Run: func(ctx context.Context) error {
			return s.Notifier.OrderPlacedCustomer(ctx, order)
		}},
		Task{Name: "admin_email", Run: func(ctx context.Context) error {
			return s.Notifier.OrderPlacedAdmin(ctx, order)
		}},
		Task{Name: "publish_orders", Run: func(ctx context.Context) error {
			return s.Changes.Publish(ctx, live.TopicOrders)
		}},
		Task{Name: "publish_products", Run: func(ctx context.Context) error {
			return s.Changes.Publish(ctx, live.TopicProducts)
		}},
		Task{Name: "clear_cart", Run: func(ctx context.Context) error {
			return s.Carts.Clear(ctx, cartToken)
		}},
	)
}

func (s *service) reject(ctx context.Context, err error) {
	reason := pkgerrors.ReasonOf(err)
	s.Metrics.IncRejected(reason)
	s.Logger.Warn(s.Logger.WithField(ctx, "reason", reason), "checkout.order.rejected")
}

// uploadError keeps media validation failures as VALIDATION_ERROR and turns
// everything else into UPLOAD_FAILED.
func uploadError(err error) error {
	if pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		typed := pkgerrors.As(err)
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, typed.Message()).
			WithDetails(typed.Details()).
			WithReason(ReasonInvalidPaymentProof)
	}
	return pkgerrors.Wrap(pkgerrors.CodeUploadFailed, err, "payment proof upload failed").WithReason(ReasonUploadFailed)
}
