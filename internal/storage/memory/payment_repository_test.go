package memory

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/commerce/internal/domain"
)

func makeProcessing(id, orderID string) domain.Payment {
	now := time.Now().UTC()
	return domain.Payment{
		ID:          id,
		OrderID:     orderID,
		UserID:      "user-1",
		AmountMinor: 400,
		Status:      domain.PaymentStatusProcessing,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestPaymentRepository_CreateProcessingClaimsSlot(t *testing.T) {
	repo := NewPaymentRepository()

	if err := repo.CreateProcessing(makeProcessing("payment-1", "order-1")); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if err := repo.CreateProcessing(makeProcessing("payment-2", "order-1")); !errors.Is(err, domain.ErrPaymentExists) {
		t.Fatalf("expected ErrPaymentExists, got %v", err)
	}
}

func TestPaymentRepository_PaidHoldsSlotDeclinedDoesNot(t *testing.T) {
	repo := NewPaymentRepository()

	if err := repo.CreateProcessing(makeProcessing("payment-1", "order-1")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repo.Settle("payment-1", domain.PaymentStatusDeclined, "txn-1"); err != nil {
		t.Fatalf("settle declined: %v", err)
	}

	// DECLINED слот не удерживает: новая попытка проходит.
	if err := repo.CreateProcessing(makeProcessing("payment-2", "order-1")); err != nil {
		t.Fatalf("retry after decline: %v", err)
	}
	if _, err := repo.Settle("payment-2", domain.PaymentStatusPaid, "txn-2"); err != nil {
		t.Fatalf("settle paid: %v", err)
	}

	// После PAID слот занят окончательно.
	if err := repo.CreateProcessing(makeProcessing("payment-3", "order-1")); !errors.Is(err, domain.ErrPaymentExists) {
		t.Fatalf("expected ErrPaymentExists after paid, got %v", err)
	}
}

func TestPaymentRepository_SettleUnknownPayment(t *testing.T) {
	repo := NewPaymentRepository()
	if _, err := repo.Settle("missing", domain.PaymentStatusPaid, "txn"); !errors.Is(err, domain.ErrPaymentNotFound) {
		t.Fatalf("expected ErrPaymentNotFound, got %v", err)
	}
}

func TestPaymentRepository_ConcurrentClaims(t *testing.T) {
	repo := NewPaymentRepository()

	const attempts = 32
	var wg sync.WaitGroup
	var mu sync.Mutex
	claimed := 0

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			payment := makeProcessing("", "order-1")
			payment.ID = payment.OrderID + "-" + string(rune('a'+n))
			if err := repo.CreateProcessing(payment); err == nil {
				mu.Lock()
				claimed++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	if claimed != 1 {
		t.Fatalf("expected exactly one claimed slot, got %d", claimed)
	}
}

func TestPaymentRepository_ListByOrder(t *testing.T) {
	repo := NewPaymentRepository()

	first := makeProcessing("payment-1", "order-1")
	first.CreatedAt = time.Now().UTC().Add(-time.Minute)
	if err := repo.CreateProcessing(first); err != nil {
		t.Fatalf("create first: %v", err)
	}
	if _, err := repo.Settle("payment-1", domain.PaymentStatusDeclined, "txn-1"); err != nil {
		t.Fatalf("settle first: %v", err)
	}
	if err := repo.CreateProcessing(makeProcessing("payment-2", "order-1")); err != nil {
		t.Fatalf("create second: %v", err)
	}

	payments, err := repo.ListByOrder("order-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(payments) != 2 || payments[0].ID != "payment-1" {
		t.Fatalf("expected oldest-first listing, got %+v", payments)
	}
}
