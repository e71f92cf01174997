package billing

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinicdesk/clinic-scheduling/internal/clinic"
)

const signatureHeader = "X-Webhook-Signature"

// providerEvent is the subset of the provider's webhook payload we consume.
type providerEvent struct {
	Type string `json:"type"`
	Data struct {
		ClinicID string `json:"clinic_id"`
		Status   string `json:"status"`
	} `json:"data"`
}

// WebhookHandler ingests subscription lifecycle events from the payment
// provider and keeps the clinic's plan status in sync.
type WebhookHandler struct {
	secret  []byte
	clinics *clinic.Service
	log     zerolog.Logger
}

func NewWebhookHandler(secret string, clinics *clinic.Service, log zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{
		secret:  []byte(secret),
		clinics: clinics,
		log:     log,
	}
}

func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(w, "could not read body", http.StatusBadRequest)
		return
	}

	if !h.verify(body, r.Header.Get(signatureHeader)) {
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	var ev providerEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		http.Error(w, "malformed payload", http.StatusBadRequest)
		return
	}

	clinicID, err := uuid.Parse(ev.Data.ClinicID)
	if err != nil {
		http.Error(w, "invalid clinic id", http.StatusBadRequest)
		return
	}

	switch ev.Type {
	case "subscription.updated":
		status, ok := MapProviderStatus(ev.Data.Status)
		if !ok {
			// Unknown provider status: acknowledge so the provider stops
			// retrying, but leave the clinic untouched.
			h.log.Warn().Str("status", ev.Data.Status).Msg("unknown provider subscription status")
			w.WriteHeader(http.StatusOK)
			return
		}
		if err := h.setPlan(r.Context(), w, clinicID, status); err != nil {
			return
		}

	case "subscription.deleted":
		// Deletion downgrades to the expired baseline.
		if err := h.setPlan(r.Context(), w, clinicID, clinic.PlanExpired); err != nil {
			return
		}

	default:
		h.log.Debug().Str("type", ev.Type).Msg("ignoring webhook event")
	}

	w.WriteHeader(http.StatusOK)
}

func (h *WebhookHandler) setPlan(ctx context.Context, w http.ResponseWriter, clinicID uuid.UUID, status clinic.PlanStatus) error {
	_, err := h.clinics.SetPlanStatus(ctx, clinicID, status)
	if err != nil {
		if errors.Is(err, clinic.ErrClinicNotFound) {
			http.Error(w, "clinic not found", http.StatusNotFound)
			return err
		}
		h.log.Error().Err(err).Str("clinic_id", clinicID.String()).Msg("plan status update failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return err
	}
	return nil
}

func (h *WebhookHandler) verify(body []byte, signature string) bool {
	if len(h.secret) == 0 || signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, h.secret)
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}
