package settings

import (
	"context"
	"fmt"
	"strings"

	"github.com/essyessentials/storefront-backend/internal/live"
	"github.com/essyessentials/storefront-backend/pkg/db/models"
	"github.com/essyessentials/storefront-backend/pkg/enums"
	pkgerrors "github.com/essyessentials/storefront-backend/pkg/errors"
	"github.com/essyessentials/storefront-backend/pkg/logger"
	"github.com/essyessentials/storefront-backend/pkg/security"
	"github.com/essyessentials/storefront-backend/pkg/types"
)

const shippingBlockIDLength = 6

// Service holds the admin operations on store settings.
type Service interface {
	Get(ctx context.Context) models.StoreSettings
	Update(ctx context.Context, input UpdateInput) (models.StoreSettings, error)
	AddShippingBlock(ctx context.Context, input ShippingBlockInput) (models.StoreSettings, error)
	RemoveShippingBlock(ctx context.Context, id string) (models.StoreSettings, error)
	SetLogo(ctx context.Context, url string) (models.StoreSettings, error)
}

// UpdateInput replaces the editable settings fields. Shipping blocks and the
// logo have their own operations.
type UpdateInput struct {
	StoreName             string
	Tagline               string
	ContactEmail          string
	WhatsAppNumber        string
	Bank                  types.BankDetails
	Announcement          string
	Theme                 types.Theme
	AllowPickup           bool
	AllowAddressNotListed bool
}

type ShippingBlockInput struct {
	Title       string
	Fee         int64
	Description string
}

type saver interface {
	loader
	Save(ctx context.Context, s *models.StoreSettings) error
}

type service struct {
	repo     saver
	provider *Provider
	changes  live.Publisher
	logg     *logger.Logger
}

func NewService(repo saver, provider *Provider, changes live.Publisher, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("settings repository required")
	}
	if provider == nil {
		return nil, fmt.Errorf("settings provider required")
	}
	if changes == nil {
		return nil, fmt.Errorf("change publisher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, provider: provider, changes: changes, logg: logg}, nil
}

func (s *service) Get(ctx context.Context) models.StoreSettings {
	return s.provider.Current()
}

func (s *service) Update(ctx context.Context, input UpdateInput) (models.StoreSettings, error) {
	name := strings.TrimSpace(input.StoreName)
	if name == "" {
		return models.StoreSettings{}, pkgerrors.New(pkgerrors.CodeValidation, "store_name is required")
	}
	return s.mutate(ctx, func(st *models.StoreSettings) error {
		st.StoreName = name
		st.Tagline = strings.TrimSpace(input.Tagline)
		st.ContactEmail = strings.TrimSpace(input.ContactEmail)
		st.WhatsAppNumber = strings.TrimSpace(input.WhatsAppNumber)
		st.Bank = input.Bank
		st.Announcement = strings.TrimSpace(input.Announcement)
		st.Theme = input.Theme
		st.AllowPickup = input.AllowPickup
		st.AllowAddressNotListed = input.AllowAddressNotListed
		return nil
	})
}

// AddShippingBlock appends a block with a generated "sb_" id.
func (s *service) AddShippingBlock(ctx context.Context, input ShippingBlockInput) (models.StoreSettings, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return models.StoreSettings{}, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if input.Fee < 0 {
		return models.StoreSettings{}, pkgerrors.New(pkgerrors.CodeValidation, "fee cannot be negative")
	}
	suffix, err := security.RandomString(shippingBlockIDLength, security.Base36Alphabet)
	if err != nil {
		return models.StoreSettings{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate shipping block id")
	}

	return s.mutate(ctx, func(st *models.StoreSettings) error {
		st.ShippingBlocks = append(st.ShippingBlocks, types.ShippingOption{
			ID:          enums.ShippingBlockIDPrefix + suffix,
			Title:       title,
			Fee:         input.Fee,
			Description: strings.TrimSpace(input.Description),
		})
		return nil
	})
}

func (s *service) RemoveShippingBlock(ctx context.Context, id string) (models.StoreSettings, error) {
	return s.mutate(ctx, func(st *models.StoreSettings) error {
		kept := make([]types.ShippingOption, 0, len(st.ShippingBlocks))
		for _, block := range st.ShippingBlocks {
			if block.ID != id {
				kept = append(kept, block)
			}
		}
		if len(kept) == len(st.ShippingBlocks) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "shipping block not found")
		}
		st.ShippingBlocks = kept
		return nil
	})
}

func (s *service) SetLogo(ctx context.Context, url string) (models.StoreSettings, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return models.StoreSettings{}, pkgerrors.New(pkgerrors.CodeValidation, "logo url is required")
	}
	return s.mutate(ctx, func(st *models.StoreSettings) error {
		st.LogoURL = url
		return nil
	})
}

// mutate applies fn to the stored settings, saves, and hands the result to
// the provider before announcing the change to other instances.
func (s *service) mutate(ctx context.Context, fn func(*models.StoreSettings) error) (models.StoreSettings, error) {
	current, err := s.repo.Load(ctx)
	if err != nil {
		return models.StoreSettings{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load settings")
	}
	if err := fn(&current); err != nil {
		return models.StoreSettings{}, err
	}
	if err := s.repo.Save(ctx, &current); err != nil {
		return models.StoreSettings{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save settings")
	}

	s.provider.Set(current)
	if err := s.changes.Publish(ctx, live.TopicSettings); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "settings.change.publish_failed")
	}
	return current.Clone(), nil
}
