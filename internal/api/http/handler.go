package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/commerce/internal/domain"
	"github.com/vladislavdragonenkov/commerce/internal/workflow"
)

// Handler — JSON-обработчики транзакционного слоя. Зависит только от
// workflow и read-интерфейсов хранилища; сессионного слоя нет,
// пользователь приходит в заголовке X-User-ID.
type Handler struct {
	orders        *workflow.OrderWorkflow
	payments      *workflow.PaymentWorkflow
	registrations *workflow.RegistrationWorkflow

	orderRepo        domain.OrderRepository
	paymentRepo      domain.PaymentRepository
	registrationRepo domain.RegistrationRepository

	logger *log.Entry
}

// NewHandler создаёт HTTP handler поверх workflow-слоя.
func NewHandler(
	orders *workflow.OrderWorkflow,
	payments *workflow.PaymentWorkflow,
	registrations *workflow.RegistrationWorkflow,
	orderRepo domain.OrderRepository,
	paymentRepo domain.PaymentRepository,
	registrationRepo domain.RegistrationRepository,
	logger *log.Entry,
) *Handler {
	if logger == nil {
		logger = log.WithField("component", "http-api")
	}
	return &Handler{
		orders:           orders,
		payments:         payments,
		registrations:    registrations,
		orderRepo:        orderRepo,
		paymentRepo:      paymentRepo,
		registrationRepo: registrationRepo,
		logger:           logger,
	}
}

type orderRequest struct {
	ProductIDs []string `json:"product_ids"`
}

type orderResponse struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	ProductIDs []string  `json:"product_ids"`
	TaxMinor   int64     `json:"tax_minor"`
	TotalMinor int64     `json:"total_minor"`
	CreatedAt  time.Time `json:"created_at"`
}

type paymentRequest struct {
	OrderID     string `json:"order_id"`
	AmountMinor int64  `json:"amount_minor"`
	MethodToken string `json:"method_token"`
}

type paymentResponse struct {
	ID            string    `json:"id"`
	OrderID       string    `json:"order_id"`
	UserID        string    `json:"user_id"`
	TransactionID string    `json:"transaction_id,omitempty"`
	AmountMinor   int64     `json:"amount_minor"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

type registrationRequest struct {
	ProductID string `json:"product_id"`
	OrderID   string `json:"order_id"`
}

type registrationResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ProductID string    `json:"product_id"`
	OrderID   string    `json:"order_id"`
	Domain    string    `json:"domain"`
	CreatedAt time.Time `json:"created_at"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// PostOrders обрабатывает POST /orders.
func (h *Handler) PostOrders(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json body"})
		return
	}

	order, err := h.orders.CreateOrder(r.Context(), userID(r), req.ProductIDs)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, toOrderResponse(order))
}

// GetOrder обрабатывает GET /orders/{id}. Чужие заказы неотличимы
// от отсутствующих.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request, id string) {
	order, err := h.orderRepo.GetForUser(id, userID(r))
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, toOrderResponse(order))
}

// PostPayments обрабатывает POST /payments.
func (h *Handler) PostPayments(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json body"})
		return
	}
	if req.OrderID == "" {
		h.writeError(w, domain.ErrOrderIDRequired)
		return
	}

	payment, err := h.payments.CreatePayment(r.Context(), userID(r), req.OrderID, req.MethodToken, req.AmountMinor)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, toPaymentResponse(payment))
}

// PostPaymentToken обрабатывает POST /payments/token.
func (h *Handler) PostPaymentToken(w http.ResponseWriter, r *http.Request) {
	token, err := h.payments.CreatePaymentToken(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, tokenResponse{Token: token.Token})
}

// GetPayment обрабатывает GET /payments/{id}.
func (h *Handler) GetPayment(w http.ResponseWriter, r *http.Request, id string) {
	payment, err := h.paymentRepo.Get(id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if payment.UserID != userID(r) {
		h.writeError(w, domain.ErrPaymentNotFound)
		return
	}

	h.writeJSON(w, http.StatusOK, toPaymentResponse(payment))
}

// PostRegistrations обрабатывает POST /registrations. Домен выводится
// из Origin-заголовка запроса.
func (h *Handler) PostRegistrations(w http.ResponseWriter, r *http.Request) {
	var req registrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json body"})
		return
	}

	domainName := workflow.DomainFromOrigin(r.Header.Get("Origin"))

	registration, err := h.registrations.CreateRegistration(
		r.Context(), userID(r), req.ProductID, req.OrderID, domainName,
	)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, toRegistrationResponse(registration))
}

// GetRegistration обрабатывает GET /registrations/{id}.
func (h *Handler) GetRegistration(w http.ResponseWriter, r *http.Request, id string) {
	registration, err := h.registrationRepo.Get(id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if registration.UserID != userID(r) {
		h.writeError(w, domain.ErrRegistrationNotFound)
		return
	}

	h.writeJSON(w, http.StatusOK, toRegistrationResponse(registration))
}

func toOrderResponse(order domain.Order) orderResponse {
	return orderResponse{
		ID:         order.ID,
		UserID:     order.UserID,
		ProductIDs: order.ProductIDs(),
		TaxMinor:   order.TaxMinor,
		TotalMinor: order.TotalMinor,
		CreatedAt:  order.CreatedAt,
	}
}

func toPaymentResponse(payment domain.Payment) paymentResponse {
	return paymentResponse{
		ID:            payment.ID,
		OrderID:       payment.OrderID,
		UserID:        payment.UserID,
		TransactionID: payment.TransactionID,
		AmountMinor:   payment.AmountMinor,
		Status:        string(payment.Status),
		CreatedAt:     payment.CreatedAt,
	}
}

func toRegistrationResponse(registration domain.Registration) registrationResponse {
	return registrationResponse{
		ID:        registration.ID,
		UserID:    registration.UserID,
		ProductID: registration.ProductID,
		OrderID:   registration.OrderID,
		Domain:    registration.Domain,
		CreatedAt: registration.CreatedAt,
	}
}

// writeError переводит доменную ошибку в HTTP-статус.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch {
	case domain.IsNotFound(err):
		status = http.StatusNotFound
	case domain.IsConflict(err), errors.Is(err, domain.ErrQuotaExceeded):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrPaymentDeclined):
		status = http.StatusPaymentRequired
	case errors.Is(err, domain.ErrAmountMismatch),
		errors.Is(err, domain.ErrProductDiscontinued),
		errors.Is(err, domain.ErrProductIDsRequired),
		errors.Is(err, domain.ErrProductIDRequired),
		errors.Is(err, domain.ErrOrderIDRequired),
		errors.Is(err, domain.ErrUserIDRequired),
		errors.Is(err, domain.ErrDomainRequired),
		errors.Is(err, domain.ErrPaymentAmountNegative):
		status = http.StatusUnprocessableEntity
	}

	if status == http.StatusInternalServerError {
		h.logger.WithError(err).Error("request failed")
		h.writeJSON(w, status, errorResponse{Error: "internal error"})
		return
	}

	h.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.WithError(err).Error("encode response failed")
	}
}
