package domain_test

import (
	"testing"
	"time"

	"github.com/vladislavdragonenkov/commerce/internal/domain"
)

// helper для создания базового заказа с одним товаром.
func makeOrder() domain.Order {
	now := time.Now().UTC()
	return domain.Order{
		ID:     "order-1",
		UserID: "user-1",
		Products: []domain.Product{
			{
				ID:         "product-1",
				Name:       "basic-license",
				PriceMinor: 400,
				Status:     domain.ProductStatusActive,
				CreatedAt:  now,
			},
		},
		TaxMinor:   0,
		TotalMinor: 400,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestOrderValidateInvariants_Ok(t *testing.T) {
	order := makeOrder()
	if errs := order.ValidateInvariants(); len(errs) != 0 {
		t.Fatalf("expected no validation errors, got %v", errs)
	}
}

func TestOrderValidateInvariants_Errors(t *testing.T) {
	cases := []struct {
		name string
		mut  func(o *domain.Order)
	}{
		{
			name: "no user",
			mut: func(o *domain.Order) {
				o.UserID = ""
			},
		},
		{
			name: "no products",
			mut: func(o *domain.Order) {
				o.Products = nil
			},
		},
		{
			name: "negative tax",
			mut: func(o *domain.Order) {
				o.TaxMinor = -1
			},
		},
		{
			name: "negative price",
			mut: func(o *domain.Order) {
				o.Products[0].PriceMinor = -5
			},
		},
		{
			name: "total mismatch",
			mut: func(o *domain.Order) {
				o.TotalMinor = 999
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			order := makeOrder()
			tc.mut(&order)
			if errs := order.ValidateInvariants(); len(errs) == 0 {
				t.Fatalf("expected validation errors, got none")
			}
		})
	}
}

func TestOrderTotalIncludesTax(t *testing.T) {
	order := makeOrder()
	order.Products = append(order.Products, domain.Product{
		ID:         "product-2",
		PriceMinor: 250,
	})
	order.TaxMinor = 50
	order.TotalMinor = 700

	if errs := order.ValidateInvariants(); len(errs) != 0 {
		t.Fatalf("expected no validation errors, got %v", errs)
	}
}

func TestOrderProductIDs_KeepsDuplicates(t *testing.T) {
	order := makeOrder()
	order.Products = append(order.Products, order.Products[0])
	order.TotalMinor = 800

	ids := order.ProductIDs()
	if len(ids) != 2 || ids[0] != "product-1" || ids[1] != "product-1" {
		t.Fatalf("expected duplicated product ids, got %v", ids)
	}
}
