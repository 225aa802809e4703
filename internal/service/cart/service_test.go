package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"tarzi-api/internal/domain"
	"tarzi-api/internal/guestcart"
)

type stubCartRepo struct {
	carts   map[string]*domain.Cart
	saveErr error
	saved   int
}

func newStubCartRepo() *stubCartRepo {
	return &stubCartRepo{carts: make(map[string]*domain.Cart)}
}

func (s *stubCartRepo) GetByCustomer(_ context.Context, customerID string) (*domain.Cart, error) {
	cart, ok := s.carts[customerID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *cart
	return &cp, nil
}

func (s *stubCartRepo) Save(_ context.Context, cart *domain.Cart) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved++
	cp := *cart
	s.carts[*cart.CustomerID] = &cp
	return nil
}

type stubProductRepo struct {
	products map[string]*domain.Product
	err      error
}

func (s *stubProductRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	p, ok := s.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func testService() (*Service, *stubCartRepo) {
	repo := newStubCartRepo()
	products := &stubProductRepo{products: map[string]*domain.Product{
		"suit":  {ID: "suit", Name: "Tailored Suit", BasePrice: dec("299"), Active: true},
		"shirt": {ID: "shirt", Name: "Dress Shirt", BasePrice: dec("199"), Active: true},
		"vest":  {ID: "vest", Name: "Waistcoat", BasePrice: dec("99"), Active: false},
	}}
	return New(repo, guestcart.NewMemory(), products), repo
}

func TestAddLinePricesFromCatalog(t *testing.T) {
	svc, repo := testService()
	cart, err := svc.AddLine(context.Background(), "cust", AddLineInput{
		ProductID:     "suit",
		FabricChoice:  "wool",
		MeasurementID: "m1",
		Quantity:      1,
	})
	if err != nil {
		t.Fatalf("AddLine: %v", err)
	}
	if len(cart.Lines) != 1 || !cart.Lines[0].UnitPrice.Equal(dec("299")) {
		t.Fatalf("unexpected lines: %+v", cart.Lines)
	}
	if cart.CustomerID == nil || *cart.CustomerID != "cust" {
		t.Fatalf("cart not owned by customer: %+v", cart)
	}
	if repo.saved != 1 {
		t.Fatalf("expected one save, got %d", repo.saved)
	}
}

func TestAddLineValidation(t *testing.T) {
	svc, _ := testService()
	ctx := context.Background()

	if _, err := svc.AddLine(ctx, "cust", AddLineInput{ProductID: "", Quantity: 1}); err == nil {
		t.Fatalf("expected productId error")
	}
	if _, err := svc.AddLine(ctx, "cust", AddLineInput{ProductID: "suit", Quantity: 0}); !errors.Is(err, domain.ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
	if _, err := svc.AddLine(ctx, "cust", AddLineInput{ProductID: "ghost", Quantity: 1}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.AddLine(ctx, "cust", AddLineInput{ProductID: "vest", Quantity: 1}); err == nil {
		t.Fatalf("expected unavailable product error")
	}
}

func TestAddLineMergesAcrossCalls(t *testing.T) {
	svc, _ := testService()
	ctx := context.Background()
	in := AddLineInput{ProductID: "shirt", FabricChoice: "cotton", MeasurementID: "m2", Quantity: 1}

	if _, err := svc.AddLine(ctx, "cust", in); err != nil {
		t.Fatalf("first add: %v", err)
	}
	in.Quantity = 2
	cart, err := svc.AddLine(ctx, "cust", in)
	if err != nil {
		t.Fatalf("second add: %v", err)
	}
	if len(cart.Lines) != 1 || cart.Lines[0].Quantity != 3 {
		t.Fatalf("expected merged quantity 3, got %+v", cart.Lines)
	}
	if !cart.Subtotal.Equal(dec("597")) {
		t.Fatalf("subtotal = %s, want 597", cart.Subtotal)
	}
}

func TestGuestCartIsSessionScoped(t *testing.T) {
	svc, repo := testService()
	ctx := context.Background()
	key := svc.NewGuestSession()

	cart, err := svc.AddGuestLine(ctx, key, AddLineInput{ProductID: "suit", MeasurementID: "m1", Quantity: 1})
	if err != nil {
		t.Fatalf("AddGuestLine: %v", err)
	}
	if cart.SessionKey == nil || *cart.SessionKey != key {
		t.Fatalf("guest cart missing session key: %+v", cart)
	}
	if cart.CustomerID != nil {
		t.Fatalf("guest cart has customer owner")
	}
	if repo.saved != 0 {
		t.Fatalf("guest mutation hit the customer repo")
	}

	other := svc.NewGuestSession()
	empty, err := svc.GetGuest(ctx, other)
	if err != nil {
		t.Fatalf("GetGuest: %v", err)
	}
	if len(empty.Lines) != 0 {
		t.Fatalf("sessions leak lines: %+v", empty.Lines)
	}
}

func TestCouponErrorsPassThroughUnchanged(t *testing.T) {
	svc, repo := testService()
	ctx := context.Background()

	if _, err := svc.AddLine(ctx, "cust", AddLineInput{ProductID: "suit", MeasurementID: "m1", Quantity: 1}); err != nil {
		t.Fatalf("AddLine: %v", err)
	}
	before := repo.carts["cust"].TotalPrice

	if _, err := svc.ApplyCoupon(ctx, "cust", "BOGUS"); !errors.Is(err, domain.ErrInvalidCoupon) {
		t.Fatalf("expected ErrInvalidCoupon, got %v", err)
	}
	if !repo.carts["cust"].TotalPrice.Equal(before) {
		t.Fatalf("rejected coupon was persisted")
	}

	cart, err := svc.ApplyCoupon(ctx, "cust", "WELCOME10")
	if err != nil {
		t.Fatalf("ApplyCoupon: %v", err)
	}
	if !cart.Discount.Equal(dec("29.90")) {
		t.Fatalf("discount = %s, want 29.90", cart.Discount)
	}
}

func TestAdoptGuestCartMerges(t *testing.T) {
	svc, repo := testService()
	ctx := context.Background()
	key := svc.NewGuestSession()

	if _, err := svc.AddGuestLine(ctx, key, AddLineInput{ProductID: "suit", FabricChoice: "wool", MeasurementID: "m1", Quantity: 1}); err != nil {
		t.Fatalf("guest add: %v", err)
	}
	if _, err := svc.AddGuestLine(ctx, key, AddLineInput{ProductID: "shirt", MeasurementID: "m2", Quantity: 2}); err != nil {
		t.Fatalf("guest add: %v", err)
	}
	if _, err := svc.AddLine(ctx, "cust", AddLineInput{ProductID: "suit", FabricChoice: "wool", MeasurementID: "m1", Quantity: 1}); err != nil {
		t.Fatalf("customer add: %v", err)
	}

	cart, err := svc.AdoptGuestCart(ctx, "cust", key)
	if err != nil {
		t.Fatalf("AdoptGuestCart: %v", err)
	}
	if len(cart.Lines) != 2 {
		t.Fatalf("expected 2 lines after merge, got %d", len(cart.Lines))
	}
	for _, l := range cart.Lines {
		if l.ProductID == "suit" && l.Quantity != 2 {
			t.Fatalf("suit line not merged: %+v", l)
		}
	}
	if _, ok := repo.carts["cust"]; !ok {
		t.Fatalf("merged cart not persisted")
	}

	// the guest cart is gone afterwards
	empty, err := svc.GetGuest(ctx, key)
	if err != nil {
		t.Fatalf("GetGuest after adopt: %v", err)
	}
	if len(empty.Lines) != 0 {
		t.Fatalf("guest cart survived adoption: %+v", empty.Lines)
	}
}

func TestAdoptGuestCartWithoutGuestCart(t *testing.T) {
	svc, _ := testService()
	ctx := context.Background()
	if _, err := svc.AddLine(ctx, "cust", AddLineInput{ProductID: "suit", MeasurementID: "m1", Quantity: 1}); err != nil {
		t.Fatalf("AddLine: %v", err)
	}

	cart, err := svc.AdoptGuestCart(ctx, "cust", "never-used")
	if err != nil {
		t.Fatalf("AdoptGuestCart: %v", err)
	}
	if len(cart.Lines) != 1 {
		t.Fatalf("customer cart lost lines: %+v", cart.Lines)
	}
}

func TestClearEmptiesCart(t *testing.T) {
	svc, _ := testService()
	ctx := context.Background()
	if _, err := svc.AddLine(ctx, "cust", AddLineInput{ProductID: "suit", MeasurementID: "m1", Quantity: 2}); err != nil {
		t.Fatalf("AddLine: %v", err)
	}

	cart, err := svc.Clear(ctx, "cust")
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if len(cart.Lines) != 0 || !cart.TotalPrice.IsZero() {
		t.Fatalf("clear left state: %+v", cart)
	}
}
