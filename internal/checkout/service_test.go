package checkout

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/essyessentials/storefront-backend/internal/cart"
	"github.com/essyessentials/storefront-backend/internal/live"
	"github.com/essyessentials/storefront-backend/internal/media"
	"github.com/essyessentials/storefront-backend/internal/orders"
	product "github.com/essyessentials/storefront-backend/internal/products"
	"github.com/essyessentials/storefront-backend/pkg/config"
	"github.com/essyessentials/storefront-backend/pkg/db/dbtest"
	"github.com/essyessentials/storefront-backend/pkg/db/models"
	"github.com/essyessentials/storefront-backend/pkg/enums"
	pkgerrors "github.com/essyessentials/storefront-backend/pkg/errors"
	"github.com/essyessentials/storefront-backend/pkg/logger"
	"github.com/essyessentials/storefront-backend/pkg/money"
	"github.com/essyessentials/storefront-backend/pkg/types"
)

type stubCarts struct {
	cart    cart.Cart
	cleared []string
}

func (s *stubCarts) Get(ctx context.Context, token string) (cart.Cart, error) {
	return s.cart, nil
}

func (s *stubCarts) Clear(ctx context.Context, token string) error {
	s.cleared = append(s.cleared, token)
	return nil
}

type staticSettings struct{ settings models.StoreSettings }

func (s staticSettings) Current() models.StoreSettings { return s.settings }

type stubUploader struct {
	calls int
	url   string
	err   error
}

func (s *stubUploader) UploadImage(ctx context.Context, kind media.Kind, file media.File) (string, error) {
	s.calls++
	return s.url, s.err
}

type stubNotifier struct {
	mu       sync.Mutex
	customer int
	admin    int
	err      error
}

func (s *stubNotifier) OrderPlacedCustomer(ctx context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customer++
	return s.err
}

func (s *stubNotifier) OrderPlacedAdmin(ctx context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.admin++
	return s.err
}

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
}

func (r *recordingPublisher) Publish(ctx context.Context, topic string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.topics = append(r.topics, topic)
	return nil
}

type failingOrders struct{}

func (failingOrders) Create(ctx context.Context, order *models.Order) error {
	return errors.New("connection reset")
}

type fixture struct {
	db       *gorm.DB
	products *product.Repository
	orders   orders.Repository
	carts    *stubCarts
	uploader *stubUploader
	notifier *stubNotifier
	pub      *recordingPublisher
	settings models.StoreSettings
	logs     *bytes.Buffer
	logg     *logger.Logger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.Open(t, &models.Product{}, &models.Order{})
	logs := &bytes.Buffer{}
	settings := models.DefaultStoreSettings()
	settings.WhatsAppNumber = "+234 801 234 5678"
	settings.ShippingBlocks = []types.ShippingOption{{ID: "sb_lekki1", Title: "Lekki", Fee: 1500}}
	return &fixture{
		db:       db,
		products: product.NewRepository(db),
		orders:   orders.NewRepository(db),
		carts:    &stubCarts{},
		uploader: &stubUploader{url: "https://img.example.com/proof.png"},
		notifier: &stubNotifier{},
		pub:      &recordingPublisher{},
		settings: settings,
		logs:     logs,
		logg:     logger.New(logger.Options{ServiceName: "test", Level: zerolog.DebugLevel, Output: logs}),
	}
}

func (f *fixture) service(t *testing.T, policy string, writer orderWriter) Service {
	t.Helper()
	stock, err := NewStockDecrementer(policy, f.products, nil, f.logg)
	require.NoError(t, err)
	post, err := NewPostCommit(nil, f.logg)
	require.NoError(t, err)
	if writer == nil {
		writer = f.orders
	}
	svc, err := NewService(Deps{
		Carts:      f.carts,
		Settings:   staticSettings{settings: f.settings},
		Uploads:    f.uploader,
		Orders:     writer,
		Stock:      stock,
		Notifier:   f.notifier,
		Changes:    f.pub,
		PostCommit: post,
		Formatter:  money.NewFormatter("₦"),
		Logger:     f.logg,
	})
	require.NoError(t, err)
	return svc
}

func (f *fixture) seedProduct(t *testing.T, price int64, stock int) models.Product {
	t.Helper()
	p, err := f.products.Create(context.Background(), &models.Product{Name: "Shea Butter", Price: price, OriginalCost: price / 2, Stock: stock})
	require.NoError(t, err)
	return *p
}

func (f *fixture) stockOf(t *testing.T, id uuid.UUID) int {
	t.Helper()
	p, err := f.products.GetByID(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}

func (f *fixture) orderCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&models.Order{}).Count(&n).Error)
	return n
}

func validCustomer() types.Customer {
	return types.Customer{Name: "Ada Obi", Email: "ada@example.com", Phone: "08012345678"}
}

func proof() *media.File {
	return &media.File{Filename: "receipt.png", Body: strings.NewReader("png")}
}

func TestPlaceOrderPickup(t *testing.T) {
	f := newFixture(t)
	p := f.seedProduct(t, 1000, 5)
	f.carts.cart.Add(p, cart.AddOptions{Quantity: 2})

	res, err := f.service(t, config.StockPolicyBestEffort, nil).PlaceOrder(context.Background(), PlaceOrderInput{
		CartToken:        "tok",
		Customer:         validCustomer(),
		Address:          types.Address{Line: "1 Marina", City: "Lagos", State: "Lagos"},
		ShippingOptionID: enums.ShippingOptionPickup,
		Proof:            proof(),
	})
	require.NoError(t, err)

	order := res.Order
	assert.Equal(t, int64(2000), order.Subtotal)
	assert.Equal(t, int64(2000), order.Total)
	assert.Equal(t, enums.OrderStatusAwaitingConfirmation, order.Status)
	require.NotNil(t, order.PaymentProofURL)
	assert.Equal(t, "https://img.example.com/proof.png", *order.PaymentProofURL)
	assert.Equal(t, 3, f.stockOf(t, p.ID))
	assert.Equal(t, []string{"tok"}, f.carts.cleared)
	assert.Equal(t, 1, f.notifier.customer)
	assert.Equal(t, 1, f.notifier.admin)
	assert.ElementsMatch(t, []string{live.TopicOrders, live.TopicProducts}, f.pub.topics)
	assert.True(t, strings.HasPrefix(res.WhatsAppURL, "https://wa.me/2348012345678?text="), res.WhatsAppURL)

	stored, err := f.orders.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.Items, stored.Items)
}

func TestPlaceOrderZoneFeeAddsToTotal(t *testing.T) {
	f := newFixture(t)
	p := f.seedProduct(t, 1000, 5)
	f.carts.cart.Add(p, cart.AddOptions{Quantity: 2})

	res, err := f.service(t, config.StockPolicyBestEffort, nil).PlaceOrder(context.Background(), PlaceOrderInput{
		CartToken:        "tok",
		Customer:         validCustomer(),
		ShippingOptionID: "sb_lekki1",
		Proof:            proof(),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3500), res.Order.Total)
	assert.Equal(t, "Lekki", res.Order.Shipping.Title)
}

func TestPlaceOrderStockpileLeavesStock(t *testing.T) {
	f := newFixture(t)
	p := f.seedProduct(t, 1000, 5)
	f.carts.cart.Add(p, cart.AddOptions{Quantity: 2})

	res, err := f.service(t, config.StockPolicyBestEffort, nil).PlaceOrder(context.Background(), PlaceOrderInput{
		CartToken:        "tok",
		Customer:         validCustomer(),
		ShippingOptionID: enums.ShippingOptionStockpile,
	})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusStockpile, res.Order.Status)
	assert.Nil(t, res.Order.PaymentProofURL)
	assert.Zero(t, f.uploader.calls)
	assert.Equal(t, 5, f.stockOf(t, p.ID))
}

func TestPlaceOrderAddressNotListedNeedsNoProof(t *testing.T) {
	f := newFixture(t)
	p := f.seedProduct(t, 1000, 5)
	f.carts.cart.Add(p, cart.AddOptions{Quantity: 1})

	res, err := f.service(t, config.StockPolicyBestEffort, nil).PlaceOrder(context.Background(), PlaceOrderInput{
		CartToken:        "tok",
		Customer:         validCustomer(),
		ShippingOptionID: enums.ShippingOptionAddressNotListed,
	})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPendingDeliveryFee, res.Order.Status)
	assert.Equal(t, 4, f.stockOf(t, p.ID))
}

func TestPlaceOrderValidationOrder(t *testing.T) {
	f := newFixture(t)
	p := f.seedProduct(t, 1000, 5)
	svc := f.service(t, config.StockPolicyBestEffort, nil)

	cases := []struct {
		name   string
		fill   bool
		input  PlaceOrderInput
		reason string
	}{
		{"empty cart wins over everything", false, PlaceOrderInput{}, ReasonEmptyCart},
		{"missing phone", true, PlaceOrderInput{Customer: types.Customer{Name: "Ada", Email: "a@b.c", Phone: " "}}, ReasonIncompleteCustomerInfo},
		{"no shipping", true, PlaceOrderInput{Customer: validCustomer()}, ReasonNoShippingSelected},
		{"unknown shipping", true, PlaceOrderInput{Customer: validCustomer(), ShippingOptionID: "sb_gone"}, ReasonNoShippingSelected},
		{"missing proof", true, PlaceOrderInput{Customer: validCustomer(), ShippingOptionID: enums.ShippingOptionPickup}, ReasonMissingPaymentProof},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f.carts.cart = cart.Cart{}
			if tc.fill {
				f.carts.cart.Add(p, cart.AddOptions{Quantity: 1})
			}
			_, err := svc.PlaceOrder(context.Background(), tc.input)
			require.Error(t, err)
			assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
			assert.Equal(t, tc.reason, pkgerrors.ReasonOf(err))
		})
	}
	assert.Zero(t, f.orderCount(t))
	assert.Zero(t, f.uploader.calls)
	assert.Equal(t, 5, f.stockOf(t, p.ID))
}

func TestPlaceOrderUploadFailureCreatesNoOrder(t *testing.T) {
	f := newFixture(t)
	p := f.seedProduct(t, 1000, 5)
	f.carts.cart.Add(p, cart.AddOptions{Quantity: 1})
	f.uploader.err = pkgerrors.Wrap(pkgerrors.CodeDependency, errors.New("timeout"), "upload image")

	_, err := f.service(t, config.StockPolicyBestEffort, nil).PlaceOrder(context.Background(), PlaceOrderInput{
		CartToken:        "tok",
		Customer:         validCustomer(),
		ShippingOptionID: enums.ShippingOptionPickup,
		Proof:            proof(),
	})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUploadFailed), "got %v", err)
	assert.Equal(t, ReasonUploadFailed, pkgerrors.ReasonOf(err))
	assert.Zero(t, f.orderCount(t))
	assert.Empty(t, f.carts.cleared)
}

func TestPlaceOrderRejectsNonImageProof(t *testing.T) {
	f := newFixture(t)
	p := f.seedProduct(t, 1000, 5)
	f.carts.cart.Add(p, cart.AddOptions{Quantity: 1})
	f.uploader.err = pkgerrors.New(pkgerrors.CodeValidation, "unsupported file type")

	_, err := f.service(t, config.StockPolicyBestEffort, nil).PlaceOrder(context.Background(), PlaceOrderInput{
		CartToken:        "tok",
		Customer:         validCustomer(),
		ShippingOptionID: enums.ShippingOptionPickup,
		Proof:            proof(),
	})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
	assert.Equal(t, ReasonInvalidPaymentProof, pkgerrors.ReasonOf(err))
	assert.Zero(t, f.orderCount(t))
}

func TestPlaceOrderPersistFailure(t *testing.T) {
	f := newFixture(t)
	p := f.seedProduct(t, 1000, 5)
	f.carts.cart.Add(p, cart.AddOptions{Quantity: 1})

	_, err := f.service(t, config.StockPolicyBestEffort, failingOrders{}).PlaceOrder(context.Background(), PlaceOrderInput{
		CartToken:        "tok",
		Customer:         validCustomer(),
		ShippingOptionID: enums.ShippingOptionStockpile,
	})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeOrderFailed), "got %v", err)
	assert.Equal(t, ReasonOrderFailed, pkgerrors.ReasonOf(err))
	assert.Zero(t, f.notifier.customer)
	assert.Empty(t, f.carts.cleared)
}

func TestPlaceOrderPostCommitFailuresDoNotFailPlacement(t *testing.T) {
	f := newFixture(t)
	p := f.seedProduct(t, 1000, 5)
	f.carts.cart.Add(p, cart.AddOptions{Quantity: 1})
	f.notifier.err = errors.New("emailjs: 500")
	require.NoError(t, f.products.Delete(context.Background(), p.ID))

	res, err := f.service(t, config.StockPolicyBestEffort, nil).PlaceOrder(context.Background(), PlaceOrderInput{
		CartToken:        "tok",
		Customer:         validCustomer(),
		ShippingOptionID: enums.ShippingOptionPickup,
		Proof:            proof(),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), f.orderCount(t))
	assert.Equal(t, "Shea Butter", res.Order.Items[0].Name)
	assert.Equal(t, []string{"tok"}, f.carts.cleared)
	assert.Contains(t, f.logs.String(), "checkout.post_commit.failed")
}

func TestPlaceOrderWithoutWhatsAppNumber(t *testing.T) {
	f := newFixture(t)
	f.settings.WhatsAppNumber = ""
	p := f.seedProduct(t, 1000, 5)
	f.carts.cart.Add(p, cart.AddOptions{Quantity: 1})

	res, err := f.service(t, config.StockPolicyBestEffort, nil).PlaceOrder(context.Background(), PlaceOrderInput{
		CartToken:        "tok",
		Customer:         validCustomer(),
		ShippingOptionID: enums.ShippingOptionStockpile,
	})
	require.NoError(t, err)
	assert.Empty(t, res.WhatsAppURL)
}

func TestPlaceOrderStockFloorsAtZero(t *testing.T) {
	for _, policy := range []string{config.StockPolicyBestEffort, config.StockPolicyAtomic} {
		t.Run(policy, func(t *testing.T) {
			f := newFixture(t)
			p := f.seedProduct(t, 1000, 1)
			f.carts.cart.Add(p, cart.AddOptions{Quantity: 3})

			_, err := f.service(t, policy, nil).PlaceOrder(context.Background(), PlaceOrderInput{
				CartToken:        "tok",
				Customer:         validCustomer(),
				ShippingOptionID: enums.ShippingOptionPickup,
				Proof:            proof(),
			})
			require.NoError(t, err)
			assert.Equal(t, 0, f.stockOf(t, p.ID))
		})
	}
}
