package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPGateway_ChargeSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/charges" || r.Method != http.MethodPost {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var req chargeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.AmountMinor != 400 || req.MethodToken != "tok1" {
			t.Fatalf("unexpected charge payload: %+v", req)
		}
		_ = json.NewEncoder(w).Encode(chargeResponse{Success: true, TransactionID: "txn-42"})
	}))
	defer server.Close()

	gw := NewHTTPGateway(server.URL, server.Client(), nil)
	result, err := gw.Charge(context.Background(), 400, "tok1")
	if err != nil {
		t.Fatalf("charge: %v", err)
	}
	if !result.Success || result.TransactionID != "txn-42" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestHTTPGateway_ChargeDeclined(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_ = json.NewEncoder(w).Encode(chargeResponse{Success: false, TransactionID: "txn-declined"})
	}))
	defer server.Close()

	gw := NewHTTPGateway(server.URL, server.Client(), nil)
	result, err := gw.Charge(context.Background(), 400, "tok1")
	if err != nil {
		t.Fatalf("declined charge must not be an error: %v", err)
	}
	if result.Success {
		t.Fatal("expected declined result")
	}
	if result.TransactionID != "txn-declined" {
		t.Fatalf("unexpected transaction id: %q", result.TransactionID)
	}
}

func TestHTTPGateway_ChargeTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	gw := NewHTTPGateway(server.URL, server.Client(), nil)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := gw.Charge(ctx, 400, "tok1"); err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestHTTPGateway_Tokenize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tokens" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(tokenResponse{Token: "tok-7"})
	}))
	defer server.Close()

	gw := NewHTTPGateway(server.URL, server.Client(), nil)
	token, err := gw.Tokenize(context.Background())
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	if token.Token != "tok-7" {
		t.Fatalf("unexpected token: %+v", token)
	}
}
