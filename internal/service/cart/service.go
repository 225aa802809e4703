package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"tarzi-api/internal/domain"
	"tarzi-api/internal/guestcart"
	"tarzi-api/internal/pricing"
)

// Service orchestrates cart mutations for both storage modes: customer carts
// live in the cart repository, guest carts in the session-keyed store. Every
// mutation loads the cart, runs the pricing core, and saves the whole cart
// back (read-modify-write, single writer per cart).
type Service struct {
	repo     cartRepo
	guests   guestcart.Store
	products productRepo
}

type cartRepo interface {
	GetByCustomer(ctx context.Context, customerID string) (*domain.Cart, error)
	Save(ctx context.Context, cart *domain.Cart) error
}

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

func New(repo cartRepo, guests guestcart.Store, products productRepo) *Service {
	return &Service{repo: repo, guests: guests, products: products}
}

type AddLineInput struct {
	ProductID     string `json:"productId"`
	FabricChoice  string `json:"fabricChoice,omitempty"`
	ColorChoice   string `json:"colorChoice,omitempty"`
	MeasurementID string `json:"measurementId,omitempty"`
	Quantity      int    `json:"quantity"`
}

// NewGuestSession issues an opaque session key for a guest cart. The cart
// itself is created lazily on first mutation.
func (s *Service) NewGuestSession() string {
	return uuid.NewString()
}

func (s *Service) Get(ctx context.Context, customerID string) (*domain.Cart, error) {
	return s.load(ctx, owner{customerID: customerID})
}

func (s *Service) GetGuest(ctx context.Context, sessionKey string) (*domain.Cart, error) {
	return s.load(ctx, owner{sessionKey: sessionKey})
}

func (s *Service) AddLine(ctx context.Context, customerID string, in AddLineInput) (*domain.Cart, error) {
	return s.addLine(ctx, owner{customerID: customerID}, in)
}

func (s *Service) AddGuestLine(ctx context.Context, sessionKey string, in AddLineInput) (*domain.Cart, error) {
	return s.addLine(ctx, owner{sessionKey: sessionKey}, in)
}

func (s *Service) SetQuantity(ctx context.Context, customerID, lineID string, quantity int) (*domain.Cart, error) {
	return s.mutate(ctx, owner{customerID: customerID}, func(cart *domain.Cart) error {
		return pricing.SetQuantity(cart, lineID, quantity)
	})
}

func (s *Service) SetGuestQuantity(ctx context.Context, sessionKey, lineID string, quantity int) (*domain.Cart, error) {
	return s.mutate(ctx, owner{sessionKey: sessionKey}, func(cart *domain.Cart) error {
		return pricing.SetQuantity(cart, lineID, quantity)
	})
}

func (s *Service) RemoveLine(ctx context.Context, customerID, lineID string) (*domain.Cart, error) {
	return s.mutate(ctx, owner{customerID: customerID}, func(cart *domain.Cart) error {
		pricing.RemoveLine(cart, lineID)
		return nil
	})
}

func (s *Service) RemoveGuestLine(ctx context.Context, sessionKey, lineID string) (*domain.Cart, error) {
	return s.mutate(ctx, owner{sessionKey: sessionKey}, func(cart *domain.Cart) error {
		pricing.RemoveLine(cart, lineID)
		return nil
	})
}

func (s *Service) ApplyCoupon(ctx context.Context, customerID, code string) (*domain.Cart, error) {
	return s.mutate(ctx, owner{customerID: customerID}, func(cart *domain.Cart) error {
		return pricing.ApplyCoupon(cart, code)
	})
}

func (s *Service) ApplyGuestCoupon(ctx context.Context, sessionKey, code string) (*domain.Cart, error) {
	return s.mutate(ctx, owner{sessionKey: sessionKey}, func(cart *domain.Cart) error {
		return pricing.ApplyCoupon(cart, code)
	})
}

func (s *Service) Clear(ctx context.Context, customerID string) (*domain.Cart, error) {
	return s.mutate(ctx, owner{customerID: customerID}, func(cart *domain.Cart) error {
		pricing.Clear(cart)
		return nil
	})
}

func (s *Service) ClearGuest(ctx context.Context, sessionKey string) (*domain.Cart, error) {
	return s.mutate(ctx, owner{sessionKey: sessionKey}, func(cart *domain.Cart) error {
		pricing.Clear(cart)
		return nil
	})
}

// AdoptGuestCart merges a guest cart into the customer's cart on login, line
// by line with the usual merge semantics, then deletes the guest key. The
// customer's coupon (if any) is kept; the guest coupon is dropped.
func (s *Service) AdoptGuestCart(ctx context.Context, customerID, sessionKey string) (*domain.Cart, error) {
	guest, err := s.guests.Get(ctx, sessionKey)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// nothing to adopt
			return s.load(ctx, owner{customerID: customerID})
		}
		return nil, err
	}

	cart, err := s.load(ctx, owner{customerID: customerID})
	if err != nil {
		return nil, err
	}
	for _, line := range guest.Lines {
		line.ID = ""
		if err := pricing.AddLine(cart, line); err != nil {
			return nil, fmt.Errorf("adopt line %s: %w", line.ProductID, err)
		}
	}
	if err := s.repo.Save(ctx, cart); err != nil {
		return nil, err
	}
	if err := s.guests.Delete(ctx, sessionKey); err != nil {
		return nil, err
	}
	return cart, nil
}

type owner struct {
	customerID string
	sessionKey string
}

func (s *Service) addLine(ctx context.Context, own owner, in AddLineInput) (*domain.Cart, error) {
	if strings.TrimSpace(in.ProductID) == "" {
		return nil, fmt.Errorf("%w: productId required", domain.ErrValidation)
	}
	if in.Quantity < 1 {
		return nil, domain.ErrInvalidQuantity
	}

	product, err := s.products.GetByID(ctx, in.ProductID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("product %s: %w", in.ProductID, domain.ErrNotFound)
		}
		return nil, err
	}
	if !product.Active {
		return nil, fmt.Errorf("%w: product %s is not available", domain.ErrValidation, in.ProductID)
	}

	// Price is captured here and trusted for the cart's lifetime; recompute
	// never re-fetches the catalog.
	candidate := domain.CartLine{
		ProductID:     product.ID,
		ProductName:   product.Name,
		FabricChoice:  in.FabricChoice,
		ColorChoice:   in.ColorChoice,
		MeasurementID: in.MeasurementID,
		Quantity:      in.Quantity,
		UnitPrice:     product.BasePrice,
	}

	return s.mutate(ctx, own, func(cart *domain.Cart) error {
		return pricing.AddLine(cart, candidate)
	})
}

func (s *Service) mutate(ctx context.Context, own owner, fn func(*domain.Cart) error) (*domain.Cart, error) {
	cart, err := s.load(ctx, own)
	if err != nil {
		return nil, err
	}
	if err := fn(cart); err != nil {
		return nil, err
	}
	if err := s.save(ctx, own, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// load fetches the owner's cart, creating an empty one in the right storage
// mode when none exists yet.
func (s *Service) load(ctx context.Context, own owner) (*domain.Cart, error) {
	switch {
	case own.customerID != "":
		cart, err := s.repo.GetByCustomer(ctx, own.customerID)
		if errors.Is(err, domain.ErrNotFound) {
			return s.newCart(own), nil
		}
		return cart, err
	case own.sessionKey != "":
		cart, err := s.guests.Get(ctx, own.sessionKey)
		if errors.Is(err, domain.ErrNotFound) {
			return s.newCart(own), nil
		}
		return cart, err
	default:
		return nil, errors.New("cart owner required")
	}
}

func (s *Service) save(ctx context.Context, own owner, cart *domain.Cart) error {
	if own.customerID != "" {
		return s.repo.Save(ctx, cart)
	}
	return s.guests.Set(ctx, own.sessionKey, cart)
}

func (s *Service) newCart(own owner) *domain.Cart {
	cart := &domain.Cart{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}
	if own.customerID != "" {
		id := own.customerID
		cart.CustomerID = &id
	} else {
		key := own.sessionKey
		cart.SessionKey = &key
	}
	pricing.Recompute(cart)
	return cart
}
