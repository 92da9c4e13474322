package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/commerce/internal/domain"
)

const defaultHTTPTimeout = 15 * time.Second

// HTTPGateway — клиент платёжного шлюза поверх его HTTP API.
// Протокол шлюза: POST /charges и POST /tokens с JSON-телами.
type HTTPGateway struct {
	baseURL string
	client  *http.Client
	logger  *log.Entry
}

// NewHTTPGateway создаёт клиент шлюза. client=nil означает клиент
// по умолчанию с таймаутом defaultHTTPTimeout.
func NewHTTPGateway(baseURL string, client *http.Client, logger *log.Entry) *HTTPGateway {
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	if logger == nil {
		logger = log.New().WithField("component", "card-gateway")
	}
	return &HTTPGateway{
		baseURL: baseURL,
		client:  client,
		logger:  logger,
	}
}

type chargeRequest struct {
	AmountMinor int64  `json:"amount_minor"`
	MethodToken string `json:"method_token"`
}

type chargeResponse struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transaction_id"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// Charge списывает сумму через шлюз. Отказ шлюза (HTTP 402 или
// success=false) — бизнес-исход, не ошибка; ошибкой считаются только
// инфраструктурные сбои.
func (g *HTTPGateway) Charge(ctx context.Context, amountMinor int64, methodToken string) (domain.ChargeResult, error) {
	body, err := json.Marshal(chargeRequest{
		AmountMinor: amountMinor,
		MethodToken: methodToken,
	})
	if err != nil {
		return domain.ChargeResult{}, fmt.Errorf("marshal charge request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/charges", bytes.NewReader(body))
	if err != nil {
		return domain.ChargeResult{}, fmt.Errorf("build charge request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return domain.ChargeResult{}, fmt.Errorf("gateway charge request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPaymentRequired {
		return domain.ChargeResult{}, fmt.Errorf("gateway charge: unexpected status %d", resp.StatusCode)
	}

	var decoded chargeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.ChargeResult{}, fmt.Errorf("decode charge response: %w", err)
	}

	g.logger.WithFields(log.Fields{
		"success":        decoded.Success,
		"transaction_id": decoded.TransactionID,
	}).Debug("gateway charge completed")

	return domain.ChargeResult{
		Success:       decoded.Success,
		TransactionID: decoded.TransactionID,
	}, nil
}

// Tokenize запрашивает клиентский токенизационный хэндл.
func (g *HTTPGateway) Tokenize(ctx context.Context) (domain.PaymentToken, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/tokens", nil)
	if err != nil {
		return domain.PaymentToken{}, fmt.Errorf("build token request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return domain.PaymentToken{}, fmt.Errorf("gateway token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.PaymentToken{}, fmt.Errorf("gateway tokenize: unexpected status %d", resp.StatusCode)
	}

	var decoded tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.PaymentToken{}, fmt.Errorf("decode token response: %w", err)
	}

	return domain.PaymentToken{Token: decoded.Token}, nil
}

var _ domain.CardGateway = (*HTTPGateway)(nil)
