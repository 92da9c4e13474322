package domain_test

import (
	"testing"
	"time"

	"github.com/vladislavdragonenkov/commerce/internal/domain"
)

func makePayment() domain.Payment {
	now := time.Now().UTC()
	return domain.Payment{
		ID:            "payment-1",
		OrderID:       "order-1",
		UserID:        "user-1",
		TransactionID: "txn-1",
		AmountMinor:   400,
		Status:        domain.PaymentStatusPaid,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestPaymentValidate_Ok(t *testing.T) {
	payment := makePayment()
	if errs := payment.Validate(); len(errs) != 0 {
		t.Fatalf("expected no validation errors, got %v", errs)
	}
}

func TestPaymentValidate_Errors(t *testing.T) {
	cases := []struct {
		name string
		mut  func(p *domain.Payment)
	}{
		{
			name: "no order",
			mut: func(p *domain.Payment) {
				p.OrderID = ""
			},
		},
		{
			name: "no user",
			mut: func(p *domain.Payment) {
				p.UserID = ""
			},
		},
		{
			name: "negative amount",
			mut: func(p *domain.Payment) {
				p.AmountMinor = -1
			},
		},
		{
			name: "unknown status",
			mut: func(p *domain.Payment) {
				p.Status = "SETTLED"
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			payment := makePayment()
			tc.mut(&payment)
			if errs := payment.Validate(); len(errs) == 0 {
				t.Fatalf("expected validation errors, got none")
			}
		})
	}
}

func TestPaymentStatusLive(t *testing.T) {
	cases := []struct {
		status domain.PaymentStatus
		live   bool
	}{
		{domain.PaymentStatusPaid, true},
		{domain.PaymentStatusProcessing, true},
		{domain.PaymentStatusDeclined, false},
		{domain.PaymentStatusCancelled, false},
		{domain.PaymentStatusRefunded, false},
	}

	for _, tc := range cases {
		if got := tc.status.Live(); got != tc.live {
			t.Fatalf("status %s: expected live=%v, got %v", tc.status, tc.live, got)
		}
	}
}
