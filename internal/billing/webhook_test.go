package billing

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicdesk/clinic-scheduling/internal/clinic"
)

type fakeClinicRepo struct {
	clinics map[uuid.UUID]*clinic.Clinic
}

func (f *fakeClinicRepo) GetClinicByID(ctx context.Context, id uuid.UUID) (*clinic.Clinic, error) {
	c, ok := f.clinics[id]
	if !ok {
		return nil, clinic.ErrClinicNotFound
	}
	return c, nil
}

func (f *fakeClinicRepo) UpdatePlanStatus(ctx context.Context, id uuid.UUID, status clinic.PlanStatus) (*clinic.Clinic, error) {
	c, ok := f.clinics[id]
	if !ok {
		return nil, clinic.ErrClinicNotFound
	}
	c.PlanStatus = status
	return c, nil
}

func (f *fakeClinicRepo) GetStaffByID(ctx context.Context, clinicID, id uuid.UUID) (*clinic.StaffUser, error) {
	return nil, clinic.ErrStaffNotFound
}

func (f *fakeClinicRepo) ListStaff(ctx context.Context, clinicID uuid.UUID) ([]clinic.StaffUser, error) {
	return nil, nil
}

const testSecret = "whsec_test"

func sign(body []byte) string {
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func postWebhook(t *testing.T, h *WebhookHandler, body string, signed bool) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/webhooks/billing", bytes.NewReader([]byte(body)))
	if signed {
		req.Header.Set("X-Webhook-Signature", sign([]byte(body)))
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func newWebhookFixture() (*WebhookHandler, *fakeClinicRepo, uuid.UUID) {
	clinicID := uuid.New()
	repo := &fakeClinicRepo{clinics: map[uuid.UUID]*clinic.Clinic{
		clinicID: {ID: clinicID, Name: "Vida Clinic", PlanStatus: clinic.PlanTrial},
	}}
	h := NewWebhookHandler(testSecret, clinic.NewService(repo), zerolog.Nop())
	return h, repo, clinicID
}

func TestMapProviderStatus(t *testing.T) {
	cases := []struct {
		in   string
		want clinic.PlanStatus
		ok   bool
	}{
		{"active", clinic.PlanActive, true},
		{"trialing", clinic.PlanTrial, true},
		{"canceled", clinic.PlanCancelled, true},
		{"cancelled", clinic.PlanCancelled, true},
		{"unpaid", clinic.PlanExpired, true},
		{"past_due", clinic.PlanExpired, true},
		{"incomplete_expired", clinic.PlanExpired, true},
		{"something_new", "", false},
	}

	for _, tc := range cases {
		got, ok := MapProviderStatus(tc.in)
		assert.Equal(t, tc.ok, ok, "status %q", tc.in)
		assert.Equal(t, tc.want, got, "status %q", tc.in)
	}
}

func TestWebhookUpdatesPlanStatus(t *testing.T) {
	h, repo, clinicID := newWebhookFixture()

	body := `{"type":"subscription.updated","data":{"clinic_id":"` + clinicID.String() + `","status":"active"}}`
	rec := postWebhook(t, h, body, true)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, clinic.PlanActive, repo.clinics[clinicID].PlanStatus)
}

func TestWebhookDeletionDowngradesClinic(t *testing.T) {
	h, repo, clinicID := newWebhookFixture()

	body := `{"type":"subscription.deleted","data":{"clinic_id":"` + clinicID.String() + `","status":"canceled"}}`
	rec := postWebhook(t, h, body, true)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, clinic.PlanExpired, repo.clinics[clinicID].PlanStatus)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	h, repo, clinicID := newWebhookFixture()

	body := `{"type":"subscription.updated","data":{"clinic_id":"` + clinicID.String() + `","status":"active"}}`
	rec := postWebhook(t, h, body, false)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, clinic.PlanTrial, repo.clinics[clinicID].PlanStatus)
}

func TestWebhookIgnoresUnknownProviderStatus(t *testing.T) {
	h, repo, clinicID := newWebhookFixture()

	body := `{"type":"subscription.updated","data":{"clinic_id":"` + clinicID.String() + `","status":"odd_status"}}`
	rec := postWebhook(t, h, body, true)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, clinic.PlanTrial, repo.clinics[clinicID].PlanStatus)
}

func TestWebhookUnknownClinic(t *testing.T) {
	h, _, _ := newWebhookFixture()

	body := `{"type":"subscription.updated","data":{"clinic_id":"` + uuid.NewString() + `","status":"active"}}`
	rec := postWebhook(t, h, body, true)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
