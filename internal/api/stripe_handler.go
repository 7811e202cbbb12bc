package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/stripe/stripe-go/v82"
)

type WebhookParser interface {
	ParseWebhook(payload []byte, signature string) (stripe.Event, error)
}

type PaymentEvents interface {
	SessionCompleted(ctx context.Context, sessionID, paymentIntentID string) error
	ChargeRefunded(ctx context.Context, paymentIntentID string) error
}

// StripeWebhookHandler applies Stripe payment events. A nil Parser means
// payments are not configured.
type StripeWebhookHandler struct {
	Parser   WebhookParser
	Payments PaymentEvents
	log      *slog.Logger
}

func NewStripeWebhookHandler(parser WebhookParser, payments PaymentEvents, log *slog.Logger) *StripeWebhookHandler {
	return &StripeWebhookHandler{Parser: parser, Payments: payments, log: log}
}

func (h *StripeWebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	if h.Parser == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	const maxWebhookBytes = int64(65536)
	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBytes)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		h.log.Warn("stripe webhook: read body", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	event, err := h.Parser.ParseWebhook(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		h.log.Warn("stripe webhook: signature verification failed", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil || sess.ID == "" {
			h.log.Warn("stripe webhook: bad checkout.session payload", "error", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		paymentIntentID := ""
		if sess.PaymentIntent != nil {
			paymentIntentID = sess.PaymentIntent.ID
		}
		if err := h.Payments.SessionCompleted(r.Context(), sess.ID, paymentIntentID); err != nil {
			h.log.Error("stripe webhook: mark session paid", "session_id", sess.ID, "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

	case "charge.refunded":
		var charge stripe.Charge
		if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
			h.log.Warn("stripe webhook: bad charge payload", "error", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if charge.PaymentIntent != nil && charge.PaymentIntent.ID != "" {
			if err := h.Payments.ChargeRefunded(r.Context(), charge.PaymentIntent.ID); err != nil {
				h.log.Error("stripe webhook: mark refunded", "payment_intent", charge.PaymentIntent.ID, "error", err)
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
		}

	default:
		h.log.Debug("stripe webhook: unhandled event", "type", event.Type)
	}

	w.WriteHeader(http.StatusOK)
}
