package guestcart

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"tarzi-api/internal/domain"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	key := "sess-1"
	cart := &domain.Cart{
		ID:         "c1",
		SessionKey: &key,
		Lines: []domain.CartLine{
			{ID: "l1", ProductID: "p1", Quantity: 2, UnitPrice: decimal.NewFromInt(199)},
		},
		Subtotal: decimal.NewFromInt(398),
	}

	if err := store.Set(ctx, key, cart); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != "c1" || len(got.Lines) != 1 || got.Lines[0].Quantity != 2 {
		t.Fatalf("unexpected cart: %+v", got)
	}
	if !got.Subtotal.Equal(decimal.NewFromInt(398)) {
		t.Fatalf("subtotal = %s, want 398", got.Subtotal)
	}
}

func TestMemoryStoreMissingKey(t *testing.T) {
	store := NewMemory()
	if _, err := store.Get(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	key := "sess-2"

	if err := store.Set(ctx, key, &domain.Cart{ID: "c2", SessionKey: &key}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, key); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
