package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/commerce/internal/domain"
	"github.com/vladislavdragonenkov/commerce/internal/gateway"
)

func makePaymentWorkflow(f fixtures, gw domain.CardGateway) *PaymentWorkflow {
	return NewPaymentWorkflowWithoutMetrics(f.users, f.orders, f.payments, gw, f.outbox, nil)
}

func checkoutOrder(t *testing.T, f fixtures) domain.Order {
	t.Helper()

	order, err := makeOrderWorkflow(f).CreateOrder(context.Background(), "user-1", []string{"product-1"})
	if err != nil {
		t.Fatalf("checkout order: %v", err)
	}
	return order
}

func TestCreatePayment_Success(t *testing.T) {
	f := makeFixtures(t)
	gw := gateway.NewMockGateway()
	wf := makePaymentWorkflow(f, gw)
	order := checkoutOrder(t, f)

	payment, err := wf.CreatePayment(context.Background(), "user-1", order.ID, "tok1", 400)
	if err != nil {
		t.Fatalf("create payment: %v", err)
	}
	if payment.Status != domain.PaymentStatusPaid {
		t.Fatalf("expected PAID, got %s", payment.Status)
	}
	if payment.AmountMinor != 400 {
		t.Fatalf("expected amount 400, got %d", payment.AmountMinor)
	}
	if payment.TransactionID == "" {
		t.Fatal("expected transaction reference from gateway")
	}
	if gw.ChargeCalls != 1 || gw.LastAmount != 400 || gw.LastToken != "tok1" {
		t.Fatalf("unexpected gateway interaction: %+v", gw)
	}
}

func TestCreatePayment_SecondAttemptConflicts(t *testing.T) {
	f := makeFixtures(t)
	gw := gateway.NewMockGateway()
	wf := makePaymentWorkflow(f, gw)
	order := checkoutOrder(t, f)

	if _, err := wf.CreatePayment(context.Background(), "user-1", order.ID, "tok1", 400); err != nil {
		t.Fatalf("first payment: %v", err)
	}

	// Конфликт независимо от присланной суммы и токена.
	if _, err := wf.CreatePayment(context.Background(), "user-1", order.ID, "tok2", 999); !errors.Is(err, domain.ErrPaymentExists) {
		t.Fatalf("expected ErrPaymentExists, got %v", err)
	}
	if gw.ChargeCalls != 1 {
		t.Fatalf("gateway must not be charged twice, calls=%d", gw.ChargeCalls)
	}
}

func TestCreatePayment_DeclinedPersistsDurableRecord(t *testing.T) {
	f := makeFixtures(t)
	gw := gateway.NewMockGateway()
	gw.ChargeSuccess = false
	wf := makePaymentWorkflow(f, gw)
	order := checkoutOrder(t, f)

	_, err := wf.CreatePayment(context.Background(), "user-1", order.ID, "tok1", 400)
	if !errors.Is(err, domain.ErrPaymentDeclined) {
		t.Fatalf("expected ErrPaymentDeclined, got %v", err)
	}

	payments, listErr := f.payments.ListByOrder(order.ID)
	if listErr != nil {
		t.Fatalf("list payments: %v", listErr)
	}
	if len(payments) != 1 {
		t.Fatalf("expected exactly one payment record, got %d", len(payments))
	}
	declined := payments[0]
	if declined.Status != domain.PaymentStatusDeclined {
		t.Fatalf("expected DECLINED, got %s", declined.Status)
	}
	if declined.AmountMinor != order.TotalMinor {
		t.Fatalf("declined amount %d != order total %d", declined.AmountMinor, order.TotalMinor)
	}
	if declined.TransactionID == "" {
		t.Fatal("declined record must carry a transaction reference")
	}
}

func TestCreatePayment_RetryAfterDeclineSucceeds(t *testing.T) {
	f := makeFixtures(t)
	gw := gateway.NewMockGateway()
	gw.ChargeSuccess = false
	wf := makePaymentWorkflow(f, gw)
	order := checkoutOrder(t, f)

	if _, err := wf.CreatePayment(context.Background(), "user-1", order.ID, "tok1", 400); !errors.Is(err, domain.ErrPaymentDeclined) {
		t.Fatalf("expected decline, got %v", err)
	}

	gw.ChargeSuccess = true
	payment, err := wf.CreatePayment(context.Background(), "user-1", order.ID, "tok1", 400)
	if err != nil {
		t.Fatalf("retry after decline: %v", err)
	}
	if payment.Status != domain.PaymentStatusPaid {
		t.Fatalf("expected PAID after retry, got %s", payment.Status)
	}

	payments, err := f.payments.ListByOrder(order.ID)
	if err != nil {
		t.Fatalf("list payments: %v", err)
	}
	if len(payments) != 2 {
		t.Fatalf("expected declined + paid records, got %d", len(payments))
	}
}

func TestCreatePayment_GatewayTimeoutSettlesDeclined(t *testing.T) {
	f := makeFixtures(t)
	gw := gateway.NewMockGateway()
	gw.ChargeDelay = func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}
	wf := makePaymentWorkflow(f, gw)
	wf.SetChargeTimeout(20 * time.Millisecond)
	order := checkoutOrder(t, f)

	_, err := wf.CreatePayment(context.Background(), "user-1", order.ID, "tok1", 400)
	if !errors.Is(err, domain.ErrPaymentDeclined) {
		t.Fatalf("expected ErrPaymentDeclined on timeout, got %v", err)
	}

	// Подвисших PROCESSING-записей быть не должно.
	payments, listErr := f.payments.ListByOrder(order.ID)
	if listErr != nil {
		t.Fatalf("list payments: %v", listErr)
	}
	if len(payments) != 1 || payments[0].Status != domain.PaymentStatusDeclined {
		t.Fatalf("expected single DECLINED record, got %+v", payments)
	}
}

func TestCreatePayment_InfrastructureErrorPropagates(t *testing.T) {
	f := makeFixtures(t)
	gw := gateway.NewMockGateway()
	infraErr := errors.New("gateway unreachable")
	gw.ChargeErr = infraErr
	wf := makePaymentWorkflow(f, gw)
	order := checkoutOrder(t, f)

	_, err := wf.CreatePayment(context.Background(), "user-1", order.ID, "tok1", 400)
	if !errors.Is(err, infraErr) {
		t.Fatalf("expected wrapped infrastructure error, got %v", err)
	}
	if errors.Is(err, domain.ErrPaymentDeclined) {
		t.Fatal("infrastructure failure must not be classified as a decline")
	}

	// Исход неизвестен, но PROCESSING-запись не брошена подвисшей.
	payments, listErr := f.payments.ListByOrder(order.ID)
	if listErr != nil {
		t.Fatalf("list payments: %v", listErr)
	}
	if len(payments) != 1 || payments[0].Status != domain.PaymentStatusDeclined {
		t.Fatalf("expected DECLINED record after infra failure, got %+v", payments)
	}
}

func TestCreatePayment_Failures(t *testing.T) {
	f := makeFixtures(t)
	gw := gateway.NewMockGateway()
	wf := makePaymentWorkflow(f, gw)
	order := checkoutOrder(t, f)

	cases := []struct {
		name    string
		userID  string
		orderID string
		amount  int64
		wantErr error
	}{
		{
			name:    "unknown user",
			userID:  "ghost",
			orderID: order.ID,
			amount:  400,
			wantErr: domain.ErrUserNotFound,
		},
		{
			name:    "unknown order",
			userID:  "user-1",
			orderID: "ghost",
			amount:  400,
			wantErr: domain.ErrOrderNotFound,
		},
		{
			name:    "stale amount",
			userID:  "user-1",
			orderID: order.ID,
			amount:  399,
			wantErr: domain.ErrAmountMismatch,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := wf.CreatePayment(context.Background(), tc.userID, tc.orderID, "tok1", tc.amount); !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}

	if gw.ChargeCalls != 0 {
		t.Fatalf("gateway must not be charged on failed checks, calls=%d", gw.ChargeCalls)
	}
}

func TestCreatePayment_ForeignOrderLooksMissing(t *testing.T) {
	f := makeFixtures(t)
	f.users.Put(domain.User{ID: "user-2", Email: "other@example.com"})
	gw := gateway.NewMockGateway()
	wf := makePaymentWorkflow(f, gw)
	order := checkoutOrder(t, f)

	if _, err := wf.CreatePayment(context.Background(), "user-2", order.ID, "tok1", 400); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound for foreign order, got %v", err)
	}
}

func TestCreatePaymentToken(t *testing.T) {
	f := makeFixtures(t)
	gw := gateway.NewMockGateway()
	wf := makePaymentWorkflow(f, gw)

	token, err := wf.CreatePaymentToken(context.Background())
	if err != nil {
		t.Fatalf("create token: %v", err)
	}
	if token.Token == "" {
		t.Fatal("expected non-empty token")
	}
	if gw.TokenizeCalls != 1 {
		t.Fatalf("expected one tokenize call, got %d", gw.TokenizeCalls)
	}
}
