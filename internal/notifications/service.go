package notifications

import (
	"context"
	"errors"
	"fmt"

	"github.com/essyessentials/storefront-backend/pkg/db/models"
	"github.com/essyessentials/storefront-backend/pkg/emailjs"
	"github.com/essyessentials/storefront-backend/pkg/logger"
	"github.com/essyessentials/storefront-backend/pkg/money"
)

// Templates names the EmailJS template per email.
type Templates struct {
	Customer string
	Admin    string
	Status   string
}

type settingsReader interface {
	Current() models.StoreSettings
}

// Service sends order emails. Sends are attempted once; callers decide
// whether a failure matters.
type Service interface {
	OrderPlacedCustomer(ctx context.Context, order *models.Order) error
	OrderPlacedAdmin(ctx context.Context, order *models.Order) error
	StatusChanged(ctx context.Context, order *models.Order) error
}

type service struct {
	sender    emailjs.Sender
	templates Templates
	settings  settingsReader
	money     money.Formatter
	logg      *logger.Logger
}

func NewService(sender emailjs.Sender, templates Templates, settings settingsReader, f money.Formatter, logg *logger.Logger) (Service, error) {
	if sender == nil {
		return nil, fmt.Errorf("email sender required")
	}
	if settings == nil {
		return nil, fmt.Errorf("settings provider required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{sender: sender, templates: templates, settings: settings, money: f, logg: logg}, nil
}

func (s *service) OrderPlacedCustomer(ctx context.Context, order *models.Order) error {
	return s.send(ctx, "customer", s.templates.Customer, order)
}

func (s *service) OrderPlacedAdmin(ctx context.Context, order *models.Order) error {
	return s.send(ctx, "admin", s.templates.Admin, order)
}

func (s *service) StatusChanged(ctx context.Context, order *models.Order) error {
	return s.send(ctx, "status", s.templates.Status, order)
}

func (s *service) send(ctx context.Context, kind, templateID string, order *models.Order) error {
	ctx = s.logg.WithFields(ctx, map[string]any{
		"email":        kind,
		"order_number": order.OrderNumber,
	})
	if templateID == "" {
		s.logg.Debug(ctx, "notification.email.skipped_no_template")
		return nil
	}

	payload := BuildPayload(s.settings.Current().StoreName, order, s.money)
	if err := s.sender.Send(ctx, templateID, payload); err != nil {
		if errors.Is(err, emailjs.ErrDisabled) {
			s.logg.Debug(ctx, "notification.email.disabled")
			return nil
		}
		return fmt.Errorf("send %s email: %w", kind, err)
	}
	s.logg.Info(ctx, "notification.email.sent")
	return nil
}
