package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

const headerUserID = "X-User-ID"

// userID достаёт идентификатор пользователя из заголовка запроса.
// Middleware requireUserID гарантирует, что он непуст.
func userID(r *http.Request) string {
	return r.Header.Get(headerUserID)
}

// requireUserID отклоняет запросы без X-User-ID: сессионного слоя в
// сервисе нет, но анонимные обращения к workflow не имеют смысла.
func requireUserID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(headerUserID) == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(errorResponse{Error: "X-User-ID header is required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// NewRouter собирает HTTP-роутер сервиса. healthHandler и
// metricsHandler опциональны: nil отключает соответствующий endpoint.
func NewRouter(handler *Handler, healthHandler http.Handler, metricsHandler http.Handler) chi.Router {
	router := chi.NewRouter()

	router.Route("/orders", func(r chi.Router) {
		r.Use(requireUserID)
		r.Post("/", handler.PostOrders)
		r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
			handler.GetOrder(w, r, chi.URLParam(r, "id"))
		})
	})

	router.Route("/payments", func(r chi.Router) {
		r.Use(requireUserID)
		r.Post("/", handler.PostPayments)
		r.Post("/token", handler.PostPaymentToken)
		r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
			handler.GetPayment(w, r, chi.URLParam(r, "id"))
		})
	})

	router.Route("/registrations", func(r chi.Router) {
		r.Use(requireUserID)
		r.Post("/", handler.PostRegistrations)
		r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
			handler.GetRegistration(w, r, chi.URLParam(r, "id"))
		})
	})

	// Health и metrics без авторизации.
	if healthHandler != nil {
		router.Method(http.MethodGet, "/healthz", healthHandler)
	}
	if metricsHandler != nil {
		router.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	return router
}
