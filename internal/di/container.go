package di

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kitzone/api/internal/notifications"
	"github.com/kitzone/api/internal/platform/config"
	"github.com/kitzone/api/internal/repositories"
	"github.com/kitzone/api/internal/services"
)

// Services bundles the service-layer contracts that handlers rely upon. Concrete implementations
// are assembled via dependency injection in NewContainer.
type Services struct {
	Catalog   services.CatalogService
	Cart      services.CartService
	Wishlist  services.WishlistService
	Reviews   services.ReviewService
	Discounts services.DiscountService
	Orders    services.OrderService
	Checkout  services.CheckoutService
	Contact   services.ContactService
	Counters  services.CounterService
	Media     services.MediaService
	System    services.SystemService
}

// Deps carries the externally constructed collaborators the container wires
// into services: the repository registry plus transport clients owned by main.
type Deps struct {
	Config       config.Config
	Repositories repositories.Registry
	Mailer       notifications.Mailer
	Events       services.OrderEventPublisher
	MediaSigner  services.URLSigner
	Build        services.BuildInfo
	Logger       *zap.Logger
}

// Container wires repositories and services for runtime use.
type Container struct {
	Config       config.Config
	Repositories repositories.Registry
	Services     Services
}

// NewContainer constructs the runtime dependency graph. Tests can supply
// in-memory registries and stub mailers through Deps.
func NewContainer(deps Deps) (*Container, error) {
	if deps.Repositories == nil {
		return nil, errors.New("repositories registry is required")
	}

	svc, err := buildServices(deps)
	if err != nil {
		return nil, err
	}

	return &Container{
		Config:       deps.Config,
		Repositories: deps.Repositories,
		Services:     svc,
	}, nil
}

// Close releases resources such as repository clients.
func (c *Container) Close(ctx context.Context) error {
	if c == nil || c.Repositories == nil {
		return nil
	}
	return c.Repositories.Close(ctx)
}

func buildServices(deps Deps) (Services, error) {
	var svc Services
	reg := deps.Repositories
	cfg := deps.Config

	mailer := deps.Mailer
	if mailer == nil {
		mailer = notifications.NoopMailer{}
	}
	logFn := eventLogger(deps.Logger)
	pricing := pricingRules(cfg.Checkout)

	discounts, err := services.NewDiscountService(services.DiscountServiceDeps{
		Discounts: reg.Discounts(),
	})
	if err != nil {
		return Services{}, fmt.Errorf("build discount service: %w", err)
	}
	svc.Discounts = discounts

	counters, err := services.NewCounterService(services.CounterServiceDeps{
		Counters: reg.Counters(),
	})
	if err != nil {
		return Services{}, fmt.Errorf("build counter service: %w", err)
	}
	svc.Counters = counters

	catalog, err := services.NewCatalogService(services.CatalogServiceDeps{
		Products: reg.Products(),
	})
	if err != nil {
		return Services{}, fmt.Errorf("build catalog service: %w", err)
	}
	svc.Catalog = catalog

	cart, err := services.NewCartService(services.CartServiceDeps{
		Carts:     reg.Carts(),
		Products:  reg.Products(),
		Discounts: discounts,
		Pricing:   pricing,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build cart service: %w", err)
	}
	svc.Cart = cart

	wishlist, err := services.NewWishlistService(services.WishlistServiceDeps{
		Wishlists: reg.Wishlists(),
		Products:  reg.Products(),
	})
	if err != nil {
		return Services{}, fmt.Errorf("build wishlist service: %w", err)
	}
	svc.Wishlist = wishlist

	reviews, err := services.NewReviewService(services.ReviewServiceDeps{
		Reviews:  reg.Reviews(),
		Products: reg.Products(),
	})
	if err != nil {
		return Services{}, fmt.Errorf("build review service: %w", err)
	}
	svc.Reviews = reviews

	orders, err := services.NewOrderService(services.OrderServiceDeps{
		Orders:     reg.Orders(),
		Profiles:   reg.Profiles(),
		Mailer:     mailer,
		StaffEmail: cfg.Mail.StaffAddress,
		Events:     deps.Events,
		Logger:     logFn,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build order service: %w", err)
	}
	svc.Orders = orders

	checkout, err := services.NewCheckoutService(services.CheckoutServiceDeps{
		Carts:     reg.Carts(),
		Products:  reg.Products(),
		Orders:    reg.Orders(),
		Discounts: discounts,
		Store:     reg.Discounts(),
		Numbers:   counters,
		Mailer:    mailer,
		Events:    deps.Events,
		Pricing:   pricing,
		Logger:    logFn,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build checkout service: %w", err)
	}
	svc.Checkout = checkout

	contact, err := services.NewContactService(services.ContactServiceDeps{
		Mailer:     mailer,
		StaffEmail: cfg.Mail.StaffAddress,
		Logger:     logFn,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build contact service: %w", err)
	}
	svc.Contact = contact

	system, err := services.NewSystemService(services.SystemServiceDeps{
		Health: reg.Health(),
		Build:  deps.Build,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build system service: %w", err)
	}
	svc.System = system

	if deps.MediaSigner != nil && cfg.Storage.MediaBucket != "" {
		media, err := services.NewMediaService(services.MediaServiceDeps{
			Signer:       deps.MediaSigner,
			Bucket:       cfg.Storage.MediaBucket,
			UploadExpiry: cfg.Storage.SignedURLExpiry,
		})
		if err != nil {
			return Services{}, fmt.Errorf("build media service: %w", err)
		}
		svc.Media = media
	}

	return svc, nil
}

func pricingRules(cfg config.CheckoutConfig) services.PricingRules {
	rules := services.DefaultPricingRules()
	if cfg.Currency != "" {
		rules.Currency = cfg.Currency
	}
	if cfg.FreeShippingThreshold > 0 {
		rules.FreeShippingThreshold = cfg.FreeShippingThreshold
	}
	if cfg.FlatShippingFee > 0 {
		rules.FlatShippingFee = cfg.FlatShippingFee
	}
	return rules
}

// eventLogger adapts zap to the event-plus-fields logging callback services expect.
func eventLogger(base *zap.Logger) func(ctx context.Context, event string, fields map[string]any) {
	if base == nil {
		return nil
	}
	return func(_ context.Context, event string, fields map[string]any) {
		zapFields := make([]zap.Field, 0, len(fields))
		for key, value := range fields {
			zapFields = append(zapFields, zap.Any(key, value))
		}
		base.Info(event, zapFields...)
	}
}
