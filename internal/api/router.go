package api

import (
	"log/slog"
	"net/http"

	"parkeasy/internal/auth"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

type Handlers struct {
	Auth      *AuthHandler
	Admin     *AdminHandler
	Spots     *SpotHandler
	Bookings  *UserReservationHandler
	Stripe    *StripeWebhookHandler
	WebSocket http.Handler
}

// NewRouter wires every route and wraps them with request ids, access
// logging, CORS and panic recovery.
func NewRouter(h Handlers, tokens *auth.TokenManager, corsOrigins []string, log *slog.Logger) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth/signup", h.Auth.Signup).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", h.Auth.Login).Methods(http.MethodPost)
	api.HandleFunc("/stripe/webhook", h.Stripe.HandleWebhook).Methods(http.MethodPost)
	if h.WebSocket != nil {
		api.Handle("/ws", h.WebSocket).Methods(http.MethodGet)
	}

	// Public inventory reads.
	api.HandleFunc("/parking", h.Spots.List).Methods(http.MethodGet)
	api.HandleFunc("/parking/available", h.Spots.ListAvailable).Methods(http.MethodGet)

	requireAuth := auth.Middleware(tokens, respondError)
	requireAdmin := auth.RequireAdmin(respondError)

	user := api.PathPrefix("/user").Subrouter()
	user.Use(requireAuth)
	user.HandleFunc("/profile", h.Auth.Profile).Methods(http.MethodGet)
	user.Handle("/all", requireAdmin(http.HandlerFunc(h.Admin.ListAccounts))).Methods(http.MethodGet)
	user.Handle("/{id}", requireAdmin(http.HandlerFunc(h.Admin.DeleteAccount))).Methods(http.MethodDelete)

	// Registered before /parking/{id} so the literal segments win.
	bookings := api.PathPrefix("/parking").Subrouter()
	bookings.Use(requireAuth)
	bookings.HandleFunc("/history/user", h.Bookings.History).Methods(http.MethodGet)
	bookings.Handle("/bookings/all", requireAdmin(http.HandlerFunc(h.Admin.ListBookings))).Methods(http.MethodGet)
	bookings.Handle("/bookings/summary", requireAdmin(http.HandlerFunc(h.Admin.Summary))).Methods(http.MethodGet)
	bookings.HandleFunc("/bookings/{id}/qr", h.Bookings.EntryQRCode).Methods(http.MethodGet)
	bookings.HandleFunc("/bookings/{id}/receipt", h.Bookings.Receipt).Methods(http.MethodGet)
	bookings.HandleFunc("/bookings/{id}/checkout", h.Bookings.Checkout).Methods(http.MethodPost)
	bookings.HandleFunc("/{id}/book", h.Bookings.Book).Methods(http.MethodPost)
	bookings.HandleFunc("/{id}/release", h.Bookings.Release).Methods(http.MethodPost)
	bookings.Handle("", requireAdmin(http.HandlerFunc(h.Spots.Create))).Methods(http.MethodPost)
	bookings.Handle("/{id}", requireAdmin(http.HandlerFunc(h.Spots.Update))).Methods(http.MethodPut)
	bookings.Handle("/{id}", requireAdmin(http.HandlerFunc(h.Spots.Delete))).Methods(http.MethodDelete)

	api.HandleFunc("/parking/{id}", h.Spots.Get).Methods(http.MethodGet)

	cors := handlers.CORS(
		handlers.AllowedOrigins(corsOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type", requestIDHeader}),
		handlers.ExposedHeaders([]string{requestIDHeader}),
		handlers.AllowCredentials(),
	)
	recovery := handlers.RecoveryHandler(handlers.RecoveryLogger(recoveryLogger{log: log}))

	var handler http.Handler = r
	handler = cors(handler)
	handler = recovery(handler)
	handler = handlers.CustomLoggingHandler(nil, handler, accessLog(log))
	return withRequestID(handler)
}
