package order

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tarzi-api/internal/domain"
	"tarzi-api/internal/pricing"
)

// Notifier is told about every successful status change. Notification is
// fire-and-forget: a failing notifier never fails the transition.
type Notifier interface {
	OrderStatusChanged(ctx context.Context, o *domain.Order, previous domain.OrderStatus) error
}

// Service owns the order state machine: pending -> processing -> shipped ->
// delivered, with cancelled reachable from the first two states. Guard
// violations are typed errors and leave the order unchanged.
type Service struct {
	repo     orderRepo
	products productRepo
	notifier Notifier
	logger   *log.Logger
	now      func() time.Time
}

type orderRepo interface {
	Create(ctx context.Context, o *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetByNumber(ctx context.Context, orderNumber string) (*domain.Order, error)
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error)
	Update(ctx context.Context, o *domain.Order) error
	RatingsByProduct(ctx context.Context, productID string) ([]int, error)
}

type productRepo interface {
	SetRating(ctx context.Context, productID string, rating decimal.Decimal, numReviews int) error
}

func New(repo orderRepo, products productRepo, notifier Notifier, logger *log.Logger) *Service {
	return &Service{
		repo:     repo,
		products: products,
		notifier: notifier,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

type CheckoutInput struct {
	ShippingAddress domain.Address `json:"shippingAddress"`
	PaymentMethod   string         `json:"paymentMethod"`
}

// CheckoutResult carries the created order plus the stubbed payment session
// the client redirects to. There is no real gateway behind it.
type CheckoutResult struct {
	Order            *domain.Order `json:"order"`
	PaymentSessionID string        `json:"paymentSessionId"`
}

// Checkout snapshots a finalized cart into a new pending order. The cart must
// have at least one line and every line needs a measurement profile.
func (s *Service) Checkout(ctx context.Context, customerID string, cart *domain.Cart, in CheckoutInput) (*CheckoutResult, error) {
	if len(cart.Lines) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", domain.ErrValidation)
	}
	for _, line := range cart.Lines {
		if strings.TrimSpace(line.MeasurementID) == "" {
			return nil, fmt.Errorf("%w: line %s has no measurement profile", domain.ErrValidation, line.ProductID)
		}
	}
	if strings.TrimSpace(in.PaymentMethod) == "" {
		return nil, fmt.Errorf("%w: payment method required", domain.ErrValidation)
	}
	if strings.TrimSpace(in.ShippingAddress.Street) == "" || strings.TrimSpace(in.ShippingAddress.City) == "" {
		return nil, fmt.Errorf("%w: shipping address incomplete", domain.ErrValidation)
	}

	now := s.now()
	o := &domain.Order{
		ID:              uuid.NewString(),
		OrderNumber:     newOrderNumber(),
		CustomerID:      customerID,
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   in.PaymentMethod,
		Subtotal:        cart.Subtotal,
		ShippingCost:    cart.ShippingCost,
		TaxAmount:       cart.TaxAmount,
		Discount:        cart.Discount,
		TotalPrice:      cart.TotalPrice,
		Status:          domain.OrderPending,
		Timeline:        []domain.TimelineEntry{{Status: "created", Date: now}},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	for _, line := range cart.Lines {
		o.Lines = append(o.Lines, domain.OrderLine{
			ID:            uuid.NewString(),
			ProductID:     line.ProductID,
			ProductName:   line.ProductName,
			FabricChoice:  line.FabricChoice,
			ColorChoice:   line.ColorChoice,
			MeasurementID: line.MeasurementID,
			Quantity:      line.Quantity,
			UnitPrice:     line.UnitPrice,
		})
	}

	if err := s.repo.Create(ctx, o); err != nil {
		return nil, err
	}
	s.notify(ctx, o, "")

	return &CheckoutResult{Order: o, PaymentSessionID: "pay_" + uuid.NewString()}, nil
}

func (s *Service) Get(ctx context.Context, customerID, orderID string) (*domain.Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.CustomerID != customerID {
		return nil, domain.ErrNotFound
	}
	return o, nil
}

func (s *Service) GetByNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	return s.repo.GetByNumber(ctx, orderNumber)
}

func (s *Service) ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error) {
	return s.repo.ListByCustomer(ctx, customerID)
}

// Advance moves an order one step along the linear chain. trackingNumber is
// only recorded when moving into processing.
func (s *Service) Advance(ctx context.Context, orderID string, next domain.OrderStatus, trackingNumber, note string) (*domain.Order, error) {
	if !next.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrIllegalTransition, next)
	}
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.Status.CanAdvanceTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrIllegalTransition, o.Status, next)
	}

	previous := o.Status
	o.Status = next
	if next == domain.OrderProcessing && trackingNumber != "" {
		o.TrackingNumber = trackingNumber
	}
	now := s.now()
	o.Timeline = append(o.Timeline, domain.TimelineEntry{Status: string(next), Note: note, Date: now})
	o.UpdatedAt = now

	if err := s.repo.Update(ctx, o); err != nil {
		return nil, err
	}
	s.notify(ctx, o, previous)
	return o, nil
}

// Cancel is legal only while the order is pending or processing. Cancelling
// twice is rejected with ErrAlreadyCancelled rather than silently succeeding.
func (s *Service) Cancel(ctx context.Context, customerID, orderID, reason string) (*domain.Order, error) {
	o, err := s.Get(ctx, customerID, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status == domain.OrderCancelled {
		return nil, domain.ErrAlreadyCancelled
	}
	if !o.Status.Cancellable() {
		return nil, fmt.Errorf("%w: cannot cancel once %s", domain.ErrIllegalTransition, o.Status)
	}

	previous := o.Status
	o.Status = domain.OrderCancelled
	o.Notes = reason
	now := s.now()
	o.Timeline = append(o.Timeline, domain.TimelineEntry{Status: string(domain.OrderCancelled), Note: reason, Date: now})
	o.UpdatedAt = now

	if err := s.repo.Update(ctx, o); err != nil {
		return nil, err
	}
	s.notify(ctx, o, previous)
	return o, nil
}

// Rate attaches a one-time rating to a delivered order, then recomputes each
// involved product's aggregate as the mean over all rated orders carrying
// that product. The recomputation is a full re-scan; volumes are small and
// correctness wins over incremental bookkeeping.
func (s *Service) Rate(ctx context.Context, customerID, orderID string, rate int, comment string) (*domain.Order, error) {
	if rate < 1 || rate > 5 {
		return nil, domain.ErrInvalidRating
	}
	o, err := s.Get(ctx, customerID, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status != domain.OrderDelivered {
		return nil, fmt.Errorf("%w: can only rate a delivered order", domain.ErrIllegalTransition)
	}
	if o.Rating != nil {
		return nil, fmt.Errorf("%w: order is already rated", domain.ErrIllegalTransition)
	}

	now := s.now()
	o.Rating = &domain.Rating{Rate: rate, Comment: comment, Date: now}
	o.Timeline = append(o.Timeline, domain.TimelineEntry{Status: "rated", Date: now})
	o.UpdatedAt = now

	if err := s.repo.Update(ctx, o); err != nil {
		return nil, err
	}

	if err := s.refreshProductRatings(ctx, o); err != nil {
		// the rating itself is saved; the aggregate catches up on the next one
		s.logger.Printf("refresh product ratings for order %s: %v", o.ID, err)
	}
	return o, nil
}

func (s *Service) refreshProductRatings(ctx context.Context, o *domain.Order) error {
	seen := make(map[string]bool)
	for _, line := range o.Lines {
		if seen[line.ProductID] {
			continue
		}
		seen[line.ProductID] = true

		rates, err := s.repo.RatingsByProduct(ctx, line.ProductID)
		if err != nil {
			return err
		}
		if len(rates) == 0 {
			continue
		}
		sum := 0
		for _, r := range rates {
			sum += r
		}
		avg := pricing.Round2(decimal.NewFromInt(int64(sum)).Div(decimal.NewFromInt(int64(len(rates)))))
		if err := s.products.SetRating(ctx, line.ProductID, avg, len(rates)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) notify(ctx context.Context, o *domain.Order, previous domain.OrderStatus) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.OrderStatusChanged(ctx, o, previous); err != nil {
		s.logger.Printf("notify order %s (%s -> %s): %v", o.OrderNumber, previous, o.Status, err)
	}
}

// newOrderNumber builds the short human-readable code customers quote in
// support emails, e.g. TRZ-9F2C41AB.
func newOrderNumber() string {
	id := uuid.New()
	return "TRZ-" + strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:8])
}
