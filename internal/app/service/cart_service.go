package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/storefront/storefront-backend/internal/app/model"
	"github.com/storefront/storefront-backend/internal/app/repository"
	"github.com/storefront/storefront-backend/pkg/cart"
	"github.com/storefront/storefront-backend/pkg/logger"
	"github.com/storefront/storefront-backend/pkg/pricing"
	"gorm.io/gorm"
)

// CartView is a session together with its priced totals. Summary ignores
// gift cards; Checkout deducts the ones applied to the session.
type CartView struct {
	Session  cart.Session
	Summary  pricing.Summary
	Checkout pricing.Summary
}

func (v *CartView) Display() pricing.Display {
	return v.Summary.Display()
}

// sessionStore loads, prices and saves cart sessions for the services that
// mutate them.
type sessionStore struct {
	repo repository.CartSessionRepository
	calc pricing.Calculator
}

// load returns the stored session, or a new empty one for an unknown id.
func (s sessionStore) load(ctx context.Context, id string) (cart.Session, error) {
	session, err := s.repo.Load(ctx, id)
	if errors.Is(err, cart.ErrSessionNotFound) {
		return cart.New(id), nil
	}
	if err != nil {
		logger.Error("Failed to load cart session", err, map[string]interface{}{
			"session_id": id,
		})
		return cart.Session{}, err
	}
	return session, nil
}

func (s sessionStore) save(ctx context.Context, session cart.Session) (*CartView, error) {
	session.UpdatedAt = time.Now()
	if err := s.repo.Save(ctx, session); err != nil {
		logger.Error("Failed to save cart session", err, map[string]interface{}{
			"session_id": session.ID,
		})
		return nil, err
	}
	return s.view(session), nil
}

func (s sessionStore) view(session cart.Session) *CartView {
	return &CartView{
		Session:  session,
		Summary:  session.Quote(s.calc),
		Checkout: session.CheckoutQuote(s.calc),
	}
}

type AddItemInput struct {
	ProductID  uint
	VariantSKU string
	Size       string
	Color      string
	Quantity   int
}

type CartService interface {
	GetCart(ctx context.Context, sessionID string) (*CartView, error)
	AddItem(ctx context.Context, sessionID string, userID *uint, input AddItemInput) (*CartView, error)
	UpdateQuantity(ctx context.Context, sessionID string, key cart.Key, quantity int) (*CartView, error)
	RemoveItem(ctx context.Context, sessionID string, key cart.Key) (*CartView, error)
	ClearCart(ctx context.Context, sessionID string) (*CartView, error)
	// PurgeStale deletes sessions idle for longer than maxAge.
	PurgeStale(ctx context.Context, maxAge time.Duration) (int64, error)
}

type cartService struct {
	sessionStore
	productRepo repository.ProductRepository
	variantRepo repository.VariantRepository
}

func NewCartService(
	sessions repository.CartSessionRepository,
	productRepo repository.ProductRepository,
	variantRepo repository.VariantRepository,
	calc pricing.Calculator,
) CartService {
	return &cartService{
		sessionStore: sessionStore{repo: sessions, calc: calc},
		productRepo:  productRepo,
		variantRepo:  variantRepo,
	}
}

func (s *cartService) GetCart(ctx context.Context, sessionID string) (*CartView, error) {
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.view(session), nil
}

// resolved is the purchasable unit an AddItem request points at.
type resolved struct {
	item  cart.Item
	stock int
}

func (s *cartService) resolve(input AddItemInput) (*resolved, error) {
	product, err := s.productRepo.FindByID(input.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	r := &resolved{
		item: cart.Item{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.EffectivePrice(),
			ImageURL:  product.ImageURL,
			Quantity:  input.Quantity,
			Size:      strings.TrimSpace(input.Size),
			Color:     strings.TrimSpace(input.Color),
		},
		stock: product.StockQuantity,
	}

	v, err := s.findVariant(product.ID, input)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return r, nil
	}

	r.item.UnitPrice = v.EffectivePrice()
	r.item.ProductCode = v.SKU
	r.stock = v.StockQuantity
	if r.item.Size == "" {
		r.item.Size = v.Attribute("size")
	}
	if r.item.Color == "" {
		r.item.Color = v.Attribute("color")
	}
	return r, nil
}

// findVariant picks the variant by SKU, or by size and color when the
// product has variants. It returns nil for products sold without variants.
func (s *cartService) findVariant(productID uint, input AddItemInput) (*model.ProductVariant, error) {
	if input.VariantSKU != "" {
		v, err := s.variantRepo.FindBySKU(strings.TrimSpace(input.VariantSKU))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrVariantNotFound
			}
			return nil, err
		}
		if v.ProductID != productID || !matchesVariant(v, input.Size, input.Color) {
			return nil, ErrVariantMismatch
		}
		return v, nil
	}

	variants, err := s.variantRepo.FindByProductID(productID)
	if err != nil {
		return nil, err
	}
	if len(variants) == 0 {
		return nil, nil
	}
	for i := range variants {
		if matchesVariant(&variants[i], input.Size, input.Color) {
			return &variants[i], nil
		}
	}
	return nil, ErrVariantNotFound
}

// matchesVariant compares the requested size and color with the variant's
// attributes. Blank requests and attributes the variant lacks match anything.
func matchesVariant(v *model.ProductVariant, size, color string) bool {
	check := func(name, want string) bool {
		want = strings.TrimSpace(want)
		got := v.Attribute(name)
		return want == "" || got == "" || strings.EqualFold(got, want)
	}
	return check("size", size) && check("color", color)
}

func (s *cartService) AddItem(ctx context.Context, sessionID string, userID *uint, input AddItemInput) (*CartView, error) {
	logger.Info("Adding item to cart", map[string]interface{}{
		"session_id":  sessionID,
		"product_id":  input.ProductID,
		"variant_sku": input.VariantSKU,
		"quantity":    input.Quantity,
	})

	if input.Quantity < 1 {
		return nil, cart.ErrInvalidQuantity
	}

	r, err := s.resolve(input)
	if err != nil {
		logger.Warn("Cart item could not be resolved", map[string]interface{}{
			"product_id": input.ProductID,
			"error":      err.Error(),
		})
		return nil, err
	}

	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if userID != nil {
		session.UserID = userID
	}

	inCart := session.UnitsOf(r.item.ProductID, r.item.ProductCode)
	if inCart+input.Quantity > r.stock {
		logger.Warn("Add to cart failed: insufficient stock", map[string]interface{}{
			"product_id": input.ProductID,
			"requested":  inCart + input.Quantity,
			"available":  r.stock,
		})
		return nil, ErrInsufficientStock
	}

	next, err := session.AddItem(r.item)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, next)
}

func (s *cartService) UpdateQuantity(ctx context.Context, sessionID string, key cart.Key, quantity int) (*CartView, error) {
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	item, ok := session.Find(key)
	if !ok {
		return nil, cart.ErrItemNotFound
	}
	if quantity >= 1 {
		r, err := s.resolve(AddItemInput{
			ProductID:  item.ProductID,
			VariantSKU: item.ProductCode,
			Size:       item.Size,
			Color:      item.Color,
			Quantity:   quantity,
		})
		if err != nil {
			return nil, err
		}
		others := session.UnitsOf(item.ProductID, item.ProductCode) - item.Quantity
		if others+quantity > r.stock {
			logger.Warn("Cart update failed: insufficient stock", map[string]interface{}{
				"product_id": item.ProductID,
				"requested":  others + quantity,
				"available":  r.stock,
			})
			return nil, ErrInsufficientStock
		}
	}

	next, err := session.UpdateQuantity(key, quantity)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, next)
}

func (s *cartService) RemoveItem(ctx context.Context, sessionID string, key cart.Key) (*CartView, error) {
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	next, err := session.RemoveItem(key)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, next)
}

func (s *cartService) ClearCart(ctx context.Context, sessionID string) (*CartView, error) {
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, session.Clear())
}

func (s *cartService) PurgeStale(ctx context.Context, maxAge time.Duration) (int64, error) {
	n, err := s.repo.PurgeOlderThan(ctx, time.Now().Add(-maxAge))
	if err != nil {
		logger.Error("Failed to purge stale cart sessions", err)
		return 0, err
	}
	if n > 0 {
		logger.Info("Stale cart sessions purged", map[string]interface{}{
			"count": n,
		})
	}
	return n, nil
}
