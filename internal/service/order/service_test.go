package order

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/shopspring/decimal"

	"tarzi-api/internal/domain"
)

type stubRepo struct {
	orders    map[string]*domain.Order
	createErr error
	updateErr error
	updates   int
	ratings   map[string][]int
}

func newStubRepo() *stubRepo {
	return &stubRepo{orders: make(map[string]*domain.Order), ratings: make(map[string][]int)}
}

func (s *stubRepo) Create(_ context.Context, o *domain.Order) error {
	if s.createErr != nil {
		return s.createErr
	}
	cp := *o
	s.orders[o.ID] = &cp
	return nil
}

func (s *stubRepo) GetByID(_ context.Context, id string) (*domain.Order, error) {
	o, ok := s.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *stubRepo) GetByNumber(_ context.Context, number string) (*domain.Order, error) {
	for _, o := range s.orders {
		if o.OrderNumber == number {
			cp := *o
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubRepo) ListByCustomer(_ context.Context, customerID string) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range s.orders {
		if o.CustomerID == customerID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (s *stubRepo) Update(_ context.Context, o *domain.Order) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	if _, ok := s.orders[o.ID]; !ok {
		return domain.ErrNotFound
	}
	s.updates++
	cp := *o
	s.orders[o.ID] = &cp
	return nil
}

func (s *stubRepo) RatingsByProduct(_ context.Context, productID string) ([]int, error) {
	var rates []int
	rates = append(rates, s.ratings[productID]...)
	for _, o := range s.orders {
		if o.Rating == nil {
			continue
		}
		for _, l := range o.Lines {
			if l.ProductID == productID {
				rates = append(rates, o.Rating.Rate)
				break
			}
		}
	}
	return rates, nil
}

type stubProducts struct {
	lastProduct string
	lastRating  decimal.Decimal
	lastReviews int
	calls       int
	err         error
}

func (s *stubProducts) SetRating(_ context.Context, productID string, rating decimal.Decimal, numReviews int) error {
	s.calls++
	s.lastProduct = productID
	s.lastRating = rating
	s.lastReviews = numReviews
	return s.err
}

type stubNotifier struct {
	calls int
	err   error
}

func (s *stubNotifier) OrderStatusChanged(_ context.Context, _ *domain.Order, _ domain.OrderStatus) error {
	s.calls++
	return s.err
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func testCart() *domain.Cart {
	cust := "cust"
	return &domain.Cart{
		ID:         "cart",
		CustomerID: &cust,
		Lines: []domain.CartLine{
			{ID: "l1", ProductID: "suit", ProductName: "Tailored Suit", MeasurementID: "m1", Quantity: 1, UnitPrice: dec("299")},
			{ID: "l2", ProductID: "shirt", ProductName: "Dress Shirt", MeasurementID: "m2", Quantity: 2, UnitPrice: dec("199")},
		},
		Subtotal:     dec("697.00"),
		ShippingCost: dec("0"),
		TaxAmount:    dec("104.55"),
		Discount:     dec("0"),
		TotalPrice:   dec("801.55"),
	}
}

func testService(repo *stubRepo, products *stubProducts, notifier Notifier) *Service {
	return New(repo, products, notifier, log.New(io.Discard, "", 0))
}

func checkout(t *testing.T, svc *Service) *domain.Order {
	t.Helper()
	res, err := svc.Checkout(context.Background(), "cust", testCart(), CheckoutInput{
		ShippingAddress: domain.Address{FullName: "A B", Street: "1 Main St", City: "Riyadh", Country: "SA"},
		PaymentMethod:   "card",
	})
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	return res.Order
}

func TestCheckoutCreatesPendingOrder(t *testing.T) {
	repo := newStubRepo()
	notifier := &stubNotifier{}
	svc := testService(repo, &stubProducts{}, notifier)

	o := checkout(t, svc)
	if o.Status != domain.OrderPending {
		t.Fatalf("status = %s, want pending", o.Status)
	}
	if len(o.OrderNumber) != 12 || o.OrderNumber[:4] != "TRZ-" {
		t.Fatalf("unexpected order number %q", o.OrderNumber)
	}
	if len(o.Timeline) != 1 || o.Timeline[0].Status != "created" {
		t.Fatalf("unexpected timeline %+v", o.Timeline)
	}
	if !o.TotalPrice.Equal(dec("801.55")) {
		t.Fatalf("totalPrice = %s, want 801.55", o.TotalPrice)
	}
	if len(o.Lines) != 2 {
		t.Fatalf("expected 2 snapshot lines, got %d", len(o.Lines))
	}
	if notifier.calls != 1 {
		t.Fatalf("expected creation notification, got %d calls", notifier.calls)
	}
}

func TestCheckoutValidation(t *testing.T) {
	svc := testService(newStubRepo(), &stubProducts{}, nil)
	ctx := context.Background()
	addr := domain.Address{FullName: "A B", Street: "1 Main St", City: "Riyadh", Country: "SA"}

	cust := "cust"
	empty := &domain.Cart{ID: "c", CustomerID: &cust}
	if _, err := svc.Checkout(ctx, "cust", empty, CheckoutInput{ShippingAddress: addr, PaymentMethod: "card"}); err == nil {
		t.Fatalf("expected empty cart error")
	}

	noMeasurement := testCart()
	noMeasurement.Lines[1].MeasurementID = ""
	if _, err := svc.Checkout(ctx, "cust", noMeasurement, CheckoutInput{ShippingAddress: addr, PaymentMethod: "card"}); err == nil {
		t.Fatalf("expected missing measurement error")
	}

	if _, err := svc.Checkout(ctx, "cust", testCart(), CheckoutInput{ShippingAddress: addr}); err == nil {
		t.Fatalf("expected payment method error")
	}

	if _, err := svc.Checkout(ctx, "cust", testCart(), CheckoutInput{PaymentMethod: "card"}); err == nil {
		t.Fatalf("expected address error")
	}
}

func TestAdvanceHappyPath(t *testing.T) {
	repo := newStubRepo()
	notifier := &stubNotifier{}
	svc := testService(repo, &stubProducts{}, notifier)
	o := checkout(t, svc)

	for _, next := range []domain.OrderStatus{domain.OrderProcessing, domain.OrderShipped, domain.OrderDelivered} {
		updated, err := svc.Advance(context.Background(), o.ID, next, "", "")
		if err != nil {
			t.Fatalf("Advance to %s: %v", next, err)
		}
		if updated.Status != next {
			t.Fatalf("status = %s, want %s", updated.Status, next)
		}
	}

	final, _ := repo.GetByID(context.Background(), o.ID)
	if len(final.Timeline) != 4 {
		t.Fatalf("expected 4 timeline entries, got %d", len(final.Timeline))
	}
	if notifier.calls != 4 {
		t.Fatalf("expected 4 notifications, got %d", notifier.calls)
	}
}

func TestAdvanceRecordsTrackingNumber(t *testing.T) {
	repo := newStubRepo()
	svc := testService(repo, &stubProducts{}, nil)
	o := checkout(t, svc)

	updated, err := svc.Advance(context.Background(), o.ID, domain.OrderProcessing, "TRK-42", "cutting started")
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if updated.TrackingNumber != "TRK-42" {
		t.Fatalf("trackingNumber = %q, want TRK-42", updated.TrackingNumber)
	}
	if updated.Timeline[len(updated.Timeline)-1].Note != "cutting started" {
		t.Fatalf("note not recorded: %+v", updated.Timeline)
	}
}

func TestAdvanceRejectsIllegalTargets(t *testing.T) {
	repo := newStubRepo()
	svc := testService(repo, &stubProducts{}, nil)
	o := checkout(t, svc)
	ctx := context.Background()

	illegal := []domain.OrderStatus{domain.OrderShipped, domain.OrderDelivered, domain.OrderPending, domain.OrderCancelled}
	for _, next := range illegal {
		if _, err := svc.Advance(ctx, o.ID, next, "", ""); !errors.Is(err, domain.ErrIllegalTransition) {
			t.Fatalf("pending -> %s: expected ErrIllegalTransition, got %v", next, err)
		}
	}
	if _, err := svc.Advance(ctx, o.ID, "mangled", "", ""); !errors.Is(err, domain.ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition for unknown status, got %v", err)
	}

	got, _ := repo.GetByID(ctx, o.ID)
	if got.Status != domain.OrderPending || len(got.Timeline) != 1 {
		t.Fatalf("rejected advance mutated the order: %+v", got)
	}
}

func TestStateMachineClosureFromTerminalStates(t *testing.T) {
	ctx := context.Background()
	targets := []domain.OrderStatus{
		domain.OrderPending, domain.OrderProcessing, domain.OrderShipped,
		domain.OrderDelivered, domain.OrderCancelled,
	}

	for _, terminal := range []domain.OrderStatus{domain.OrderDelivered, domain.OrderCancelled} {
		repo := newStubRepo()
		svc := testService(repo, &stubProducts{}, nil)
		o := checkout(t, svc)
		repo.orders[o.ID].Status = terminal

		for _, next := range targets {
			if _, err := svc.Advance(ctx, o.ID, next, "", ""); !errors.Is(err, domain.ErrIllegalTransition) {
				t.Fatalf("%s -> %s: expected ErrIllegalTransition, got %v", terminal, next, err)
			}
		}
	}
}

func TestCancelFromEarlyStates(t *testing.T) {
	ctx := context.Background()
	for _, from := range []domain.OrderStatus{domain.OrderPending, domain.OrderProcessing} {
		repo := newStubRepo()
		svc := testService(repo, &stubProducts{}, nil)
		o := checkout(t, svc)
		repo.orders[o.ID].Status = from

		cancelled, err := svc.Cancel(ctx, "cust", o.ID, "changed my mind")
		if err != nil {
			t.Fatalf("Cancel from %s: %v", from, err)
		}
		if cancelled.Status != domain.OrderCancelled || cancelled.Notes != "changed my mind" {
			t.Fatalf("unexpected order after cancel: %+v", cancelled)
		}

		if _, err := svc.Cancel(ctx, "cust", o.ID, "again"); !errors.Is(err, domain.ErrAlreadyCancelled) {
			t.Fatalf("second cancel: expected ErrAlreadyCancelled, got %v", err)
		}
	}
}

func TestCancelRejectedOnceShipped(t *testing.T) {
	ctx := context.Background()
	for _, from := range []domain.OrderStatus{domain.OrderShipped, domain.OrderDelivered} {
		repo := newStubRepo()
		svc := testService(repo, &stubProducts{}, nil)
		o := checkout(t, svc)
		repo.orders[o.ID].Status = from

		if _, err := svc.Cancel(ctx, "cust", o.ID, ""); !errors.Is(err, domain.ErrIllegalTransition) {
			t.Fatalf("cancel from %s: expected ErrIllegalTransition, got %v", from, err)
		}
	}
}

func TestCancelChecksOwnership(t *testing.T) {
	repo := newStubRepo()
	svc := testService(repo, &stubProducts{}, nil)
	o := checkout(t, svc)

	if _, err := svc.Cancel(context.Background(), "other", o.ID, ""); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign order, got %v", err)
	}
}

func TestRateGating(t *testing.T) {
	ctx := context.Background()
	repo := newStubRepo()
	svc := testService(repo, &stubProducts{}, nil)
	o := checkout(t, svc)

	if _, err := svc.Rate(ctx, "cust", o.ID, 5, ""); !errors.Is(err, domain.ErrIllegalTransition) {
		t.Fatalf("rating a pending order: expected ErrIllegalTransition, got %v", err)
	}

	repo.orders[o.ID].Status = domain.OrderDelivered
	for _, bad := range []int{0, 6, -1} {
		if _, err := svc.Rate(ctx, "cust", o.ID, bad, ""); !errors.Is(err, domain.ErrInvalidRating) {
			t.Fatalf("rate %d: expected ErrInvalidRating, got %v", bad, err)
		}
	}

	rated, err := svc.Rate(ctx, "cust", o.ID, 4, "great fit")
	if err != nil {
		t.Fatalf("Rate: %v", err)
	}
	if rated.Rating == nil || rated.Rating.Rate != 4 || rated.Rating.Comment != "great fit" {
		t.Fatalf("rating not attached: %+v", rated.Rating)
	}

	if _, err := svc.Rate(ctx, "cust", o.ID, 5, ""); !errors.Is(err, domain.ErrIllegalTransition) {
		t.Fatalf("second rate: expected ErrIllegalTransition, got %v", err)
	}
}

func TestRateRecomputesProductAggregates(t *testing.T) {
	ctx := context.Background()
	repo := newStubRepo()
	products := &stubProducts{}
	svc := testService(repo, products, nil)
	o := checkout(t, svc)
	repo.orders[o.ID].Status = domain.OrderDelivered

	// two earlier rated orders already carry the suit
	repo.ratings["suit"] = []int{5, 2}

	if _, err := svc.Rate(ctx, "cust", o.ID, 4, ""); err != nil {
		t.Fatalf("Rate: %v", err)
	}

	// one SetRating per distinct product in the order
	if products.calls != 2 {
		t.Fatalf("expected 2 aggregate updates, got %d", products.calls)
	}
	// the shirt was rated last: only this order carries it
	if products.lastProduct != "shirt" || products.lastReviews != 1 || !products.lastRating.Equal(dec("4")) {
		t.Fatalf("unexpected shirt aggregate: %s %s %d", products.lastProduct, products.lastRating, products.lastReviews)
	}
}

func TestRateAggregateMean(t *testing.T) {
	ctx := context.Background()
	repo := newStubRepo()
	products := &stubProducts{}
	svc := testService(repo, products, nil)

	cust := "cust"
	cart := &domain.Cart{
		ID:         "cart",
		CustomerID: &cust,
		Lines: []domain.CartLine{
			{ID: "l1", ProductID: "suit", MeasurementID: "m1", Quantity: 1, UnitPrice: dec("299")},
		},
		Subtotal: dec("299"), ShippingCost: dec("50"), TaxAmount: dec("44.85"), TotalPrice: dec("393.85"),
	}
	res, err := svc.Checkout(ctx, "cust", cart, CheckoutInput{
		ShippingAddress: domain.Address{FullName: "A B", Street: "1 Main St", City: "Riyadh", Country: "SA"},
		PaymentMethod:   "cod",
	})
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	repo.orders[res.Order.ID].Status = domain.OrderDelivered
	repo.ratings["suit"] = []int{5, 4}

	if _, err := svc.Rate(ctx, "cust", res.Order.ID, 4, ""); err != nil {
		t.Fatalf("Rate: %v", err)
	}
	// mean(5, 4, 4) = 4.33
	if !products.lastRating.Equal(dec("4.33")) || products.lastReviews != 3 {
		t.Fatalf("aggregate = %s over %d, want 4.33 over 3", products.lastRating, products.lastReviews)
	}
}

func TestNotifierFailureDoesNotFailTransition(t *testing.T) {
	repo := newStubRepo()
	notifier := &stubNotifier{err: errors.New("smtp down")}
	svc := testService(repo, &stubProducts{}, notifier)
	o := checkout(t, svc)

	updated, err := svc.Advance(context.Background(), o.ID, domain.OrderProcessing, "", "")
	if err != nil {
		t.Fatalf("Advance failed because of notifier: %v", err)
	}
	if updated.Status != domain.OrderProcessing {
		t.Fatalf("status = %s, want processing", updated.Status)
	}
}

func TestTrackByNumber(t *testing.T) {
	repo := newStubRepo()
	svc := testService(repo, &stubProducts{}, nil)
	o := checkout(t, svc)

	got, err := svc.GetByNumber(context.Background(), o.OrderNumber)
	if err != nil {
		t.Fatalf("GetByNumber: %v", err)
	}
	if got.ID != o.ID {
		t.Fatalf("wrong order: %+v", got)
	}
}
