package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/storefront/storefront-backend/internal/app/model"
	"github.com/storefront/storefront-backend/internal/app/repository"
	"github.com/storefront/storefront-backend/pkg/cart"
	"github.com/storefront/storefront-backend/pkg/logger"
	"github.com/storefront/storefront-backend/pkg/metrics"
	"github.com/storefront/storefront-backend/pkg/payment/simulator"
	"github.com/storefront/storefront-backend/pkg/pricing"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrCheckoutNotStarted        = errors.New("checkout not started")
	ErrInvalidCheckoutTransition = errors.New("invalid checkout transition")
	ErrInvalidCheckoutForm       = errors.New("invalid checkout form")
	ErrEmptyCart                 = errors.New("cart is empty")
)

// FormError lists the invalid fields of a checkout form.
type FormError struct {
	Fields map[string]string
}

func (e *FormError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		names = append(names, f)
	}
	return fmt.Sprintf("invalid checkout form: %s", strings.Join(names, ", "))
}

func (e *FormError) Is(target error) bool {
	return target == ErrInvalidCheckoutForm
}

type CheckoutForm struct {
	Name          string
	Email         string
	Phone         string
	AddressLine   string
	City          string
	PostalCode    string
	Country       string
	GiftCardCodes []string
}

// Validate returns a *FormError naming every missing or malformed field.
func (f CheckoutForm) Validate() error {
	fields := make(map[string]string)
	required := map[string]string{
		"name":         f.Name,
		"email":        f.Email,
		"phone":        f.Phone,
		"address_line": f.AddressLine,
		"city":         f.City,
		"postal_code":  f.PostalCode,
		"country":      f.Country,
	}
	for name, value := range required {
		if strings.TrimSpace(value) == "" {
			fields[name] = "is required"
		}
	}
	if _, ok := fields["email"]; !ok {
		if _, err := mail.ParseAddress(strings.TrimSpace(f.Email)); err != nil {
			fields["email"] = "is not a valid email address"
		}
	}
	if _, ok := fields["phone"]; !ok && !validPhone(f.Phone) {
		fields["phone"] = "is not a valid phone number"
	}
	if len(fields) > 0 {
		return &FormError{Fields: fields}
	}
	return nil
}

// validPhone accepts 7 to 15 digits with optional +, spaces, dashes, dots
// and parentheses.
func validPhone(phone string) bool {
	digits := 0
	for i, r := range strings.TrimSpace(phone) {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+' && i == 0:
		case r == ' ' || r == '-' || r == '.' || r == '(' || r == ')':
		default:
			return false
		}
	}
	return digits >= 7 && digits <= 15
}

// CheckoutView is the state shown at each checkout step.
type CheckoutView struct {
	Session *model.CheckoutSession
	Cart    *CartView
	Order   *model.Order
}

type CheckoutService interface {
	Start(ctx context.Context, sessionID string, userID uint) (*CheckoutView, error)
	Get(ctx context.Context, sessionID string, userID uint) (*CheckoutView, error)
	SubmitForm(ctx context.Context, sessionID string, userID uint, form CheckoutForm) (*CheckoutView, error)
	Back(ctx context.Context, sessionID string, userID uint) (*CheckoutView, error)
	// Pay places the order. Card input errors keep the payment step; any
	// other failure rolls back and returns the flow to the form step with
	// the error recorded on the session.
	Pay(ctx context.Context, sessionID string, userID uint, card simulator.Card) (*CheckoutView, error)
}

type checkoutService struct {
	sessionStore
	db           *gorm.DB
	checkoutRepo repository.CheckoutRepository
	userRepo     repository.UserRepository
	orderRepo    repository.OrderRepository
	giftCards    GiftCardService
	payments     *simulator.Client
}

func NewCheckoutService(
	db *gorm.DB,
	checkoutRepo repository.CheckoutRepository,
	userRepo repository.UserRepository,
	orderRepo repository.OrderRepository,
	sessions repository.CartSessionRepository,
	giftCards GiftCardService,
	payments *simulator.Client,
	calc pricing.Calculator,
) CheckoutService {
	return &checkoutService{
		sessionStore: sessionStore{repo: sessions, calc: calc},
		db:           db,
		checkoutRepo: checkoutRepo,
		userRepo:     userRepo,
		orderRepo:    orderRepo,
		giftCards:    giftCards,
		payments:     payments,
	}
}

func (s *checkoutService) loadUser(userID uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// loadSession returns the user's checkout session for sessionID.
func (s *checkoutService) loadSession(sessionID string, userID uint) (*model.CheckoutSession, error) {
	cs, err := s.checkoutRepo.FindByID(sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCheckoutNotStarted
		}
		return nil, err
	}
	if cs.UserID != userID {
		return nil, ErrCheckoutNotStarted
	}
	return cs, nil
}

func (s *checkoutService) transition(cs *model.CheckoutSession, next model.CheckoutStep) error {
	if !cs.Step.CanTransition(next) {
		logger.Warn("Checkout transition rejected", map[string]interface{}{
			"session_id": cs.ID,
			"from":       cs.Step,
			"to":         next,
		})
		return fmt.Errorf("%w: %s -> %s", ErrInvalidCheckoutTransition, cs.Step, next)
	}
	cs.Step = next
	return nil
}

func (s *checkoutService) Start(ctx context.Context, sessionID string, userID uint) (*CheckoutView, error) {
	logger.Info("Starting checkout", map[string]interface{}{
		"session_id": sessionID,
		"user_id":    userID,
	})

	user, err := s.loadUser(userID)
	if err != nil {
		return nil, err
	}
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsEmpty() {
		return nil, ErrEmptyCart
	}

	cs, err := s.checkoutRepo.FindByID(sessionID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && (cs.UserID != userID || cs.Step == model.StepConfirmation)):
		cs = &model.CheckoutSession{
			ID:           sessionID,
			UserID:       userID,
			ContactName:  user.Name,
			ContactEmail: user.Email,
			ContactPhone: user.Phone,
			AddressLine:  user.Address,
		}
	case err != nil:
		return nil, err
	}
	cs.Step = model.StepForm
	cs.LastError = ""

	if err := s.checkoutRepo.Save(cs); err != nil {
		return nil, err
	}
	return &CheckoutView{Session: cs, Cart: s.view(session)}, nil
}

func (s *checkoutService) Get(ctx context.Context, sessionID string, userID uint) (*CheckoutView, error) {
	cs, err := s.loadSession(sessionID, userID)
	if err != nil {
		return nil, err
	}
	view := &CheckoutView{Session: cs}
	if cs.OrderID != nil {
		if order, err := s.orderRepo.FindByID(*cs.OrderID); err == nil {
			view.Order = order
		}
	}
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	view.Cart = s.view(session)
	return view, nil
}

func (s *checkoutService) SubmitForm(ctx context.Context, sessionID string, userID uint, form CheckoutForm) (*CheckoutView, error) {
	cs, err := s.loadSession(sessionID, userID)
	if err != nil {
		return nil, err
	}
	if !cs.Step.CanTransition(model.StepPayment) {
		return nil, s.transition(cs, model.StepPayment)
	}
	if err := form.Validate(); err != nil {
		return nil, err
	}

	user, err := s.loadUser(userID)
	if err != nil {
		return nil, err
	}
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsEmpty() {
		return nil, ErrEmptyCart
	}

	for _, code := range form.GiftCardCodes {
		if strings.TrimSpace(code) == "" {
			continue
		}
		card, err := s.giftCards.Validate(code, user.Email)
		if err != nil {
			return nil, err
		}
		next, err := session.ApplyGiftCard(cart.GiftCard{Code: card.Code, Amount: card.Amount, ExpiresAt: card.ExpiresAt})
		if err != nil && !errors.Is(err, cart.ErrGiftCardAlreadyApplied) {
			return nil, err
		}
		if err == nil {
			session = next
		}
	}
	view, err := s.save(ctx, session)
	if err != nil {
		return nil, err
	}

	codes := make([]string, 0, len(session.GiftCards))
	for _, g := range session.GiftCards {
		codes = append(codes, g.Code)
	}

	cs.ContactName = strings.TrimSpace(form.Name)
	cs.ContactEmail = strings.ToLower(strings.TrimSpace(form.Email))
	cs.ContactPhone = strings.TrimSpace(form.Phone)
	cs.AddressLine = strings.TrimSpace(form.AddressLine)
	cs.City = strings.TrimSpace(form.City)
	cs.PostalCode = strings.TrimSpace(form.PostalCode)
	cs.Country = strings.TrimSpace(form.Country)
	cs.GiftCardCodes = strings.Join(codes, ",")
	cs.LastError = ""
	if err := s.transition(cs, model.StepPayment); err != nil {
		return nil, err
	}
	if err := s.checkoutRepo.Save(cs); err != nil {
		return nil, err
	}

	logger.Info("Checkout form submitted", map[string]interface{}{
		"session_id":  sessionID,
		"final_total": pricing.Format(view.Checkout.FinalTotal),
	})
	return &CheckoutView{Session: cs, Cart: view}, nil
}

func (s *checkoutService) Back(ctx context.Context, sessionID string, userID uint) (*CheckoutView, error) {
	cs, err := s.loadSession(sessionID, userID)
	if err != nil {
		return nil, err
	}
	if err := s.transition(cs, model.StepForm); err != nil {
		return nil, err
	}
	if err := s.checkoutRepo.Save(cs); err != nil {
		return nil, err
	}
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &CheckoutView{Session: cs, Cart: s.view(session)}, nil
}

func (s *checkoutService) Pay(ctx context.Context, sessionID string, userID uint, card simulator.Card) (*CheckoutView, error) {
	logger.Info("Processing checkout payment", map[string]interface{}{
		"session_id": sessionID,
		"user_id":    userID,
	})

	cs, err := s.loadSession(sessionID, userID)
	if err != nil {
		return nil, err
	}
	if !cs.Step.CanTransition(model.StepConfirmation) {
		return nil, s.transition(cs, model.StepConfirmation)
	}

	user, err := s.loadUser(userID)
	if err != nil {
		return nil, err
	}
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	quote := session.CheckoutQuote(s.calc)
	if quote.FinalTotal.IsPositive() {
		if err := simulator.ValidateCard(card, time.Now()); err != nil {
			return nil, err
		}
	}

	order, err := s.placeOrder(ctx, cs, user, session, card)
	if err != nil {
		metrics.CheckoutsTotal.WithLabelValues("failed").Inc()
		logger.Warn("Checkout failed, returning to form", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		cs.Step = model.StepForm
		cs.LastError = failureMessage(err)
		if saveErr := s.checkoutRepo.Save(cs); saveErr != nil {
			logger.Error("Failed to record checkout failure", saveErr, map[string]interface{}{
				"session_id": sessionID,
			})
		}
		return nil, err
	}

	metrics.CheckoutsTotal.WithLabelValues("success").Inc()
	metrics.GiftCardsRedeemed.Add(float64(len(session.GiftCards)))

	cleared, err := s.save(ctx, session.Clear())
	if err != nil {
		// the order stands; a stale cart is only cosmetic
		logger.Error("Failed to clear cart after checkout", err, map[string]interface{}{
			"session_id": sessionID,
			"order_id":   order.ID,
		})
		cleared = s.view(session.Clear())
	}

	orderID := order.ID
	cs.Step = model.StepConfirmation
	cs.OrderID = &orderID
	cs.LastError = ""
	if err := s.checkoutRepo.Save(cs); err != nil {
		logger.Error("Failed to save confirmed checkout session", err, map[string]interface{}{
			"session_id": sessionID,
			"order_id":   order.ID,
		})
	}

	logger.Info("Checkout completed", map[string]interface{}{
		"session_id":  sessionID,
		"order_id":    order.ID,
		"final_total": order.FinalTotal.StringFixed(2),
	})
	return &CheckoutView{Session: cs, Cart: cleared, Order: order}, nil
}

// placeOrder runs the whole write sequence in one transaction: profile,
// order, gift-card consumption, order items, stock and payment.
func (s *checkoutService) placeOrder(ctx context.Context, cs *model.CheckoutSession, user *model.User, session cart.Session, card simulator.Card) (placed *model.Order, err error) {
	if session.IsEmpty() {
		return nil, ErrEmptyCart
	}
	now := time.Now()

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			placed, err = nil, fmt.Errorf("checkout panic: %v", r)
			logger.Error("Panic during checkout, rolling back", err, map[string]interface{}{
				"session_id": cs.ID,
			})
		}
	}()

	// Gift cards are re-read under lock so two checkouts cannot spend the
	// same card; the stored amount wins over the session copy.
	lockedCards := make([]model.GiftCard, 0, len(session.GiftCards))
	pricedCards := make([]pricing.GiftCard, 0, len(session.GiftCards))
	for _, g := range session.GiftCards {
		var gc model.GiftCard
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("code = ?", g.Code).
			First(&gc).Error; err != nil {
			tx.Rollback()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrGiftCardNotFound
			}
			return nil, err
		}
		if err := CheckGiftCard(&gc, user.Email, now); err != nil {
			tx.Rollback()
			return nil, err
		}
		lockedCards = append(lockedCards, gc)
		pricedCards = append(pricedCards, pricing.GiftCard{Code: gc.Code, Amount: gc.Amount})
	}

	summary := s.calc.Checkout(session.PricingItems(), session.PricingDiscounts(), pricedCards)

	profile := map[string]interface{}{}
	if cs.ContactPhone != "" {
		profile["phone"] = cs.ContactPhone
	}
	if address := formatAddress(cs); address != "" {
		profile["address"] = address
	}
	if len(profile) > 0 {
		if err := tx.Model(&model.User{}).Where("id = ?", user.ID).Updates(profile).Error; err != nil {
			tx.Rollback()
			logger.Error("Failed to update profile during checkout", err, map[string]interface{}{
				"user_id": user.ID,
			})
			return nil, err
		}
	}

	order := &model.Order{
		UserID:        user.ID,
		Status:        model.OrderStatusPending,
		PaymentStatus: model.PaymentStatusPending,
		Subtotal:      pricing.Round(summary.Subtotal),
		DiscountTotal: pricing.Round(summary.DiscountTotal),
		Tax:           pricing.Round(summary.Tax),
		Total:         pricing.Round(summary.Total),
		GiftCardTotal: pricing.Round(summary.GiftCardTotal),
		FinalTotal:    pricing.Round(summary.FinalTotal),
		ContactName:   cs.ContactName,
		ContactEmail:  cs.ContactEmail,
		ContactPhone:  cs.ContactPhone,
		AddressLine:   cs.AddressLine,
		City:          cs.City,
		PostalCode:    cs.PostalCode,
		Country:       cs.Country,
	}
	if err := tx.Create(order).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to create order", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, err
	}

	for _, gc := range lockedCards {
		if err := tx.Model(&model.GiftCard{}).Where("id = ?", gc.ID).Updates(map[string]interface{}{
			"used":     true,
			"used_at":  now,
			"order_id": order.ID,
		}).Error; err != nil {
			tx.Rollback()
			logger.Error("Failed to consume gift card", err, map[string]interface{}{
				"gift_card_id": gc.ID,
				"order_id":     order.ID,
			})
			return nil, err
		}
	}

	items := make([]model.OrderItem, len(session.Items))
	for i, it := range session.Items {
		line := summary.Lines[i]
		pct := line.Discount
		if !line.Gross.IsZero() {
			pct = line.Discount.Div(line.Gross).Mul(hundredPercent)
		}
		items[i] = model.OrderItem{
			OrderID:            order.ID,
			ProductID:          it.ProductID,
			ProductName:        it.Name,
			ProductCode:        it.ProductCode,
			Size:               it.Size,
			Color:              it.Color,
			Quantity:           it.Quantity,
			UnitPrice:          it.UnitPrice,
			DiscountPercentage: pricing.Round(pct),
			DiscountCode:       line.DiscountCode,
			LineTotal:          pricing.Round(line.Net),
		}
		if err := s.reserveStock(tx, it); err != nil {
			tx.Rollback()
			return nil, err
		}
	}
	if err := tx.Create(&items).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to create order items", err, map[string]interface{}{
			"order_id": order.ID,
		})
		return nil, err
	}

	charge, err := s.payments.Charge(ctx, simulator.ChargeRequest{
		OrderRef: fmt.Sprintf("order-%d", order.ID),
		Amount:   order.FinalTotal,
		Card:     card,
	})
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	paidAt := charge.ApprovedAt
	if err := tx.Model(order).Updates(map[string]interface{}{
		"status":            model.OrderStatusConfirmed,
		"payment_status":    model.PaymentStatusCompleted,
		"payment_provider":  charge.Provider,
		"payment_reference": charge.Reference,
		"card_last4":        charge.Last4,
		"paid_at":           paidAt,
	}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit checkout transaction", err, map[string]interface{}{
			"order_id": order.ID,
		})
		return nil, err
	}

	return s.orderRepo.FindByID(order.ID)
}

var hundredPercent = decimal.NewFromInt(100)

// reserveStock locks the variant (or the product when the line has no
// variant) and takes the line's quantity from its stock.
func (s *checkoutService) reserveStock(tx *gorm.DB, it cart.Item) error {
	if it.ProductCode != "" {
		var v model.ProductVariant
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("sku = ?", it.ProductCode).
			First(&v).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrVariantNotFound
			}
			return err
		}
		if v.StockQuantity < it.Quantity {
			logger.Warn("Checkout failed: insufficient variant stock", map[string]interface{}{
				"sku":       v.SKU,
				"requested": it.Quantity,
				"available": v.StockQuantity,
			})
			return ErrInsufficientStock
		}
		return tx.Model(&model.ProductVariant{}).Where("id = ?", v.ID).
			Update("stock_quantity", gorm.Expr("stock_quantity - ?", it.Quantity)).Error
	}

	var p model.Product
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, it.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	if p.StockQuantity < it.Quantity {
		logger.Warn("Checkout failed: insufficient product stock", map[string]interface{}{
			"product_id": p.ID,
			"requested":  it.Quantity,
			"available":  p.StockQuantity,
		})
		return ErrInsufficientStock
	}
	return tx.Model(&model.Product{}).Where("id = ?", p.ID).
		Update("stock_quantity", gorm.Expr("stock_quantity - ?", it.Quantity)).Error
}

func formatAddress(cs *model.CheckoutSession) string {
	parts := make([]string, 0, 4)
	for _, p := range []string{cs.AddressLine, strings.TrimSpace(cs.PostalCode + " " + cs.City), cs.Country} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, strings.TrimSpace(p))
		}
	}
	return strings.Join(parts, ", ")
}

// failureMessage is the text stored on the session for the form step.
func failureMessage(err error) string {
	known := []error{
		ErrEmptyCart,
		ErrInsufficientStock,
		ErrGiftCardNotFound,
		ErrGiftCardUsed,
		ErrGiftCardExpired,
		ErrGiftCardNotOwned,
		ErrVariantNotFound,
		ErrProductNotFound,
		simulator.ErrPaymentDeclined,
	}
	for _, k := range known {
		if errors.Is(err, k) {
			return k.Error()
		}
	}
	return "the order could not be completed, please try again"
}
